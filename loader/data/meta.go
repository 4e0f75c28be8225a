// Copyright 2018 Benjamin Estes. All rights reserved.  Use of this
// source code is governed by an MIT-style license that can be found
// in the LICENSE file.

package data

import (
	"encoding/json"
	"fmt"
	"time"
)

// Meta is the bookkeeping record kept for every loaded URL.
type Meta struct {
	URL       string      `json:"url" yaml:"url"`
	Extension string      `json:"extension" yaml:"extension"`
	Kind      ContentKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	Imports   []string    `json:"imports" yaml:"imports"`
	Types     string      `json:"types" yaml:"types"`
	Path      string      `json:"path" yaml:"path"`
	Time      time.Time   `json:"time" yaml:"time"`
	TTL       Duration    `json:"ttl" yaml:"ttl"`
}

// Expired reports whether m is older than its ttl at now. A zero ttl
// never expires.
func (m *Meta) Expired(now time.Time) bool {
	if m == nil || m.TTL.Duration <= 0 {
		return false
	}
	return now.After(m.Time.Add(m.TTL.Duration))
}

// Duration wraps time.Duration to marshal as a human-readable string.
type Duration struct {
	time.Duration
}

// DurationFrom creates a Duration from a standard time.Duration.
func DurationFrom(d time.Duration) Duration {
	return Duration{Duration: d}
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Duration.String())
}

// UnmarshalJSON accepts a duration string or a number of milliseconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		d.Duration = 0
		return nil
	}
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		return d.UnmarshalText([]byte(v))
	case float64:
		d.Duration = time.Duration(v * float64(time.Millisecond))
		return nil
	default:
		return fmt.Errorf("unsupported duration type %T", raw)
	}
}

// MarshalYAML emits the duration as a string.
func (d Duration) MarshalYAML() (any, error) {
	return d.Duration.String(), nil
}
