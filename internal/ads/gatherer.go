// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ads

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/snlongmore/morning-report/internal/gather"
	"github.com/snlongmore/morning-report/internal/metrics"
	"github.com/snlongmore/morning-report/pkg/types"
)

// defaultAuthor is the configured fallback author query.
const defaultAuthor = "longmore, s.n."

// CitationSummary is the reduced citation-stats block in the payload.
type CitationSummary struct {
	TotalCitations *float64 `json:"total_citations"`
	CitingPapers   *float64 `json:"citing_papers"`
	SelfCitations  *float64 `json:"self_citations"`
}

// BasicSummary is the reduced basic-stats block in the payload.
type BasicSummary struct {
	TotalPapers *float64 `json:"total_papers"`
	TotalReads  *float64 `json:"total_reads"`
	RecentReads *float64 `json:"recent_reads"`
}

// Report is the metrics gatherer payload.
type Report struct {
	Author        string             `json:"author"`
	NumBibcodes   int                `json:"num_bibcodes"`
	Indicators    types.Section      `json:"indicators"`
	CitationStats CitationSummary    `json:"citation_stats"`
	BasicStats    BasicSummary       `json:"basic_stats"`
	Deltas        types.MetricsDelta `json:"deltas"`
}

// Gatherer fetches the author's ADS metrics, computes the day-over-day
// delta against the persisted history, and records today's snapshot.
type Gatherer struct {
	cfg    types.ADSConfig
	client *Client
	store  *metrics.Store
	log    *logrus.Logger

	// today is injectable for tests; empty means the current date.
	today string
}

// NewGatherer returns an ADS metrics gatherer persisting into store.
func NewGatherer(cfg types.ADSConfig, client *Client, store *metrics.Store, log *logrus.Logger) *Gatherer {
	if cfg.Author == "" {
		cfg.Author = defaultAuthor
	}
	return &Gatherer{cfg: cfg, client: client, store: store, log: log}
}

// Name implements gather.Gatherer.
func (g *Gatherer) Name() string { return string(gather.SourceADS) }

// Available reports whether an API token is configured. An unexpanded
// ${VAR} placeholder counts as unset.
func (g *Gatherer) Available() bool {
	return g.cfg.APIToken != "" && !strings.HasPrefix(g.cfg.APIToken, "${")
}

// Gather runs the metrics pipeline. The ordering is load-bearing: the
// delta is computed against the history as it stood before this run, and
// only then is today's snapshot recorded. A corrupt history file aborts
// the run instead of being treated as empty: resetting the baseline
// silently would poison every future delta.
func (g *Gatherer) Gather(ctx context.Context) (any, error) {
	bibcodes, err := g.client.AuthorBibcodes(ctx, g.cfg.Author)
	if err != nil {
		return nil, err
	}
	if len(bibcodes) == 0 {
		return nil, fmt.Errorf("no papers found for author %q", g.cfg.Author)
	}

	snapshot, err := g.client.Metrics(ctx, bibcodes)
	if err != nil {
		return nil, err
	}

	history, err := g.store.Load()
	if err != nil {
		return nil, err
	}

	today := g.today
	if today == "" {
		today = metrics.Today()
	}

	delta := metrics.ComputeDelta(snapshot, history, today)
	if err := g.store.Record(today, snapshot, history); err != nil {
		return nil, err
	}

	g.log.WithFields(logrus.Fields{
		"author":   g.cfg.Author,
		"bibcodes": len(bibcodes),
		"changes":  delta.HasChanges(),
	}).Info("recorded metrics snapshot")

	return Report{
		Author:      g.cfg.Author,
		NumBibcodes: len(bibcodes),
		Indicators:  snapshot.Indicators,
		CitationStats: CitationSummary{
			TotalCitations: sectionValue(snapshot.CitationStats, "total number of citations"),
			CitingPapers:   sectionValue(snapshot.CitationStats, "number of citing papers"),
			SelfCitations:  sectionValue(snapshot.CitationStats, "number of self-citations"),
		},
		BasicStats: BasicSummary{
			TotalPapers: sectionValue(snapshot.BasicStats, "number of papers"),
			TotalReads:  sectionValue(snapshot.BasicStats, "total number of reads"),
			RecentReads: sectionValue(snapshot.BasicStats, "recent number of reads"),
		},
		Deltas: delta,
	}, nil
}

// sectionValue returns a pointer to the metric, or nil when unknown, so
// the payload distinguishes "missing" from zero.
func sectionValue(s types.Section, key string) *float64 {
	if v, ok := s.Value(key); ok {
		return &v
	}
	return nil
}
