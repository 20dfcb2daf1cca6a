package config

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that decodes from Go duration strings
// ("250ms", "1h30m") or numeric seconds (integer or float).
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := parseDuration(raw)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := parseDuration(raw)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// parseDuration converts a decoded scalar into a duration.
func parseDuration(raw any) (time.Duration, error) {
	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("parse duration %q: %w", v, err)
		}
		return parsed, nil
	case int:
		return time.Duration(v) * time.Second, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("unsupported duration value %v (%T)", raw, raw)
	}
}

// EventSettings configures one named event.
// Zero values mean "not set": a nil Enabled leaves the enabled flag
// alone, a zero Throttle sets no throttle.
type EventSettings struct {
	// Enabled controls whether the event starts delivering fires.
	Enabled *bool `yaml:"enabled" json:"enabled"`

	// Throttle is the minimum interval between successful fires.
	Throttle Duration `yaml:"throttle" json:"throttle"`
}

// Settings is a full settings document: defaults plus per-event
// overrides keyed by event name.
//
// Example YAML:
//
//	default:
//	  enabled: true
//	events:
//	  order.placed:
//	    throttle: 250ms
//	  order.audit:
//	    enabled: false
type Settings struct {
	// Default applies to every event without an override.
	Default EventSettings `yaml:"default" json:"default"`

	// Events holds per-event overrides, keyed by event name.
	Events map[string]EventSettings `yaml:"events" json:"events"`
}

// For resolves the effective settings for a named event by overlaying
// the event's overrides on the defaults. Only fields the override sets
// replace the default.
func (s Settings) For(name string) EventSettings {
	effective := s.Default
	override, ok := s.Events[name]
	if !ok {
		return effective
	}
	if override.Enabled != nil {
		effective.Enabled = override.Enabled
	}
	if override.Throttle != 0 {
		effective.Throttle = override.Throttle
	}
	return effective
}

// Validate checks that all throttle intervals are non-negative.
func (s Settings) Validate() error {
	if s.Default.Throttle < 0 {
		return fmt.Errorf("default: throttle must not be negative, got %s", s.Default.Throttle.Std())
	}
	for name, es := range s.Events {
		if es.Throttle < 0 {
			return fmt.Errorf("event %q: throttle must not be negative, got %s", name, es.Throttle.Std())
		}
	}
	return nil
}
