/*
Package config provides settings files for named events.

# Overview

config loads a settings document from YAML or JSON and resolves the
effective settings for each named event: a default block plus per-event
overrides. The hub package applies these when materializing events, but
the document can equally be consumed directly.

# Settings Files

A settings document has a default block and per-event overrides:

	default:
	  enabled: true
	events:
	  order.placed:
	    throttle: 250ms
	  order.audit:
	    enabled: false

Load it by path (format detected by extension) or from bytes:

	settings, err := config.FromFile("events.yaml")
	settings, err = config.FromYAML(yamlBytes)
	settings, err = config.FromJSON(jsonBytes)

# Resolution

For overlays an event's overrides on the defaults; only fields the
override sets replace the default:

	es := settings.For("order.placed")
	// es.Enabled from default block, es.Throttle = 250ms

# Durations

Throttle intervals decode from Go duration strings or numeric seconds:

	throttle: 250ms   # duration string
	throttle: 2       # 2 seconds
	throttle: 0.5     # 500 milliseconds

# Thread Safety

Settings values are plain data and safe for concurrent reads. Loaders
return a fresh document per call.
*/
package config
