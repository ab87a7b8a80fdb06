// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "encoding/json"

// Section is one named group of numeric metrics (e.g. the ADS "indicators"
// block). Decoding drops non-numeric values: a key that is absent or
// non-numeric is unknown, never zero.
type Section map[string]float64

// UnmarshalJSON keeps only the numeric members of the object.
func (s *Section) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Section, len(raw))
	for key, val := range raw {
		var n float64
		if err := json.Unmarshal(val, &n); err == nil {
			out[key] = n
		}
	}
	*s = out
	return nil
}

// Value returns the metric for key and whether it is known.
func (s Section) Value(key string) (float64, bool) {
	v, ok := s[key]
	return v, ok
}

// MetricsSnapshot is one day's capture of the academic metrics. The JSON
// keys, spaces included, match the ADS metrics payload and the existing
// ads_history.json files, which load unchanged.
type MetricsSnapshot struct {
	Indicators    Section `json:"indicators"`
	CitationStats Section `json:"citation stats"`
	BasicStats    Section `json:"basic stats"`
}

// MetricsHistory maps an ISO date string (YYYY-MM-DD) to that day's
// snapshot. ISO date strings sort lexicographically in calendar order,
// which the delta computation relies on. At most one snapshot per date;
// re-running on the same date overwrites it.
type MetricsHistory map[string]MetricsSnapshot

// IndicatorDelta is the change in one fractional indicator.
type IndicatorDelta struct {
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
	Delta    float64 `json:"delta"`
}

// CountDelta is the change in one integer count.
type CountDelta struct {
	Current  int `json:"current"`
	Previous int `json:"previous"`
	Delta    int `json:"delta"`
}

// MetricsDelta reports the differences between today's snapshot and the
// most recent prior one. It is computed fresh each run and never persisted.
// ComparedTo is empty only when no prior snapshot exists; the per-section
// maps hold only keys whose value actually changed.
type MetricsDelta struct {
	ComparedTo string                    `json:"compared_to,omitempty"`
	Indicators map[string]IndicatorDelta `json:"indicators,omitempty"`
	Citations  map[string]CountDelta     `json:"citations,omitempty"`
	Papers     *CountDelta               `json:"papers,omitempty"`
}

// IsEmpty reports whether no comparison was possible (first run, or the
// history holds only today's entry).
func (d MetricsDelta) IsEmpty() bool {
	return d.ComparedTo == ""
}

// HasChanges reports whether any metric actually moved.
func (d MetricsDelta) HasChanges() bool {
	return len(d.Indicators) > 0 || len(d.Citations) > 0 || d.Papers != nil
}
