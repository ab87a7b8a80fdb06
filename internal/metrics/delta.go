// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"math"
	"sort"

	"github.com/snlongmore/morning-report/pkg/types"
)

// indicatorKeys is the fixed set of ADS indicators compared day to day.
// Keys outside this list are ignored so that schema drift in the metrics
// payload never produces noise in the briefing.
var indicatorKeys = []string{"h", "g", "m", "i10", "i100", "tori", "riq", "read10"}

// citationKeys is the fixed set of citation-stats counts compared day to
// day. These are integer counts and are reported without rounding.
var citationKeys = []string{"total number of citations", "number of citing papers"}

// paperCountKey is the only basic-stats value worth reporting.
const paperCountKey = "number of papers"

// ComputeDelta compares today's snapshot against the most recent prior
// entry in history and reports every tracked metric that changed.
//
// The comparison entry is the greatest date key that is not equal to today,
// not the greatest key strictly less than today: the distinction guards
// same-day re-runs, where today's entry was already written earlier and must
// not be compared against itself.
//
// ComputeDelta is pure. It never mutates history, and an empty history (the
// first-ever run) yields an empty delta rather than an error. ComparedTo is
// set whenever a valid previous date exists, even if every tracked metric
// is unchanged.
func ComputeDelta(current types.MetricsSnapshot, history types.MetricsHistory, today string) types.MetricsDelta {
	if len(history) == 0 {
		return types.MetricsDelta{}
	}

	dates := make([]string, 0, len(history))
	for d := range history {
		if d != today {
			dates = append(dates, d)
		}
	}
	if len(dates) == 0 {
		return types.MetricsDelta{}
	}
	sort.Strings(dates)

	prevDate := dates[len(dates)-1]
	previous := history[prevDate]

	delta := types.MetricsDelta{ComparedTo: prevDate}
	delta.Indicators = indicatorDeltas(current.Indicators, previous.Indicators)
	delta.Citations = citationDeltas(current.CitationStats, previous.CitationStats)
	delta.Papers = paperDelta(current.BasicStats, previous.BasicStats)
	return delta
}

// indicatorDeltas compares the fixed indicator keys, rounding differences
// to 2 decimal places. Only non-zero changes are reported. Returns nil
// when either section is absent or nothing changed.
func indicatorDeltas(curr, prev types.Section) map[string]types.IndicatorDelta {
	if len(curr) == 0 || len(prev) == 0 {
		return nil
	}

	var out map[string]types.IndicatorDelta
	for _, key := range indicatorKeys {
		c, okc := curr.Value(key)
		p, okp := prev.Value(key)
		if !okc || !okp {
			continue
		}
		diff := math.Round((c-p)*100) / 100
		if diff == 0 {
			continue
		}
		if out == nil {
			out = make(map[string]types.IndicatorDelta)
		}
		out[key] = types.IndicatorDelta{Current: c, Previous: p, Delta: diff}
	}
	return out
}

// citationDeltas compares the fixed citation-count keys as integers.
func citationDeltas(curr, prev types.Section) map[string]types.CountDelta {
	if len(curr) == 0 || len(prev) == 0 {
		return nil
	}

	var out map[string]types.CountDelta
	for _, key := range citationKeys {
		c, okc := curr.Value(key)
		p, okp := prev.Value(key)
		if !okc || !okp {
			continue
		}
		diff := int(c) - int(p)
		if diff == 0 {
			continue
		}
		if out == nil {
			out = make(map[string]types.CountDelta)
		}
		out[key] = types.CountDelta{Current: int(c), Previous: int(p), Delta: diff}
	}
	return out
}

// paperDelta compares the paper count, the only basic stat tracked.
func paperDelta(curr, prev types.Section) *types.CountDelta {
	if len(curr) == 0 || len(prev) == 0 {
		return nil
	}

	c, okc := curr.Value(paperCountKey)
	p, okp := prev.Value(paperCountKey)
	if !okc || !okp || int(c) == int(p) {
		return nil
	}
	return &types.CountDelta{Current: int(c), Previous: int(p), Delta: int(c) - int(p)}
}
