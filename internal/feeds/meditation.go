// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feeds

import (
	"context"
	"fmt"

	"github.com/snlongmore/morning-report/internal/gather"
	"github.com/snlongmore/morning-report/pkg/types"
)

// defaultMeditationFeed is the CAC daily meditation.
const defaultMeditationFeed = "https://cac.org/category/daily-meditations/feed/"

// MeditationReport is the meditation gatherer payload.
type MeditationReport struct {
	Items []Item `json:"items"`
}

// MeditationGatherer fetches the latest entry of the daily meditation feed.
type MeditationGatherer struct {
	cfg        types.MeditationConfig
	aggregator *Aggregator
}

// NewMeditationGatherer returns a meditation gatherer.
func NewMeditationGatherer(cfg types.MeditationConfig, aggregator *Aggregator) *MeditationGatherer {
	return &MeditationGatherer{cfg: cfg, aggregator: aggregator}
}

// Name implements gather.Gatherer.
func (g *MeditationGatherer) Name() string { return string(gather.SourceMeditation) }

// Available implements gather.Gatherer.
func (g *MeditationGatherer) Available() bool { return true }

// Gather fetches the newest meditation entry.
func (g *MeditationGatherer) Gather(ctx context.Context) (any, error) {
	feedURL := g.cfg.FeedURL
	if feedURL == "" {
		feedURL = defaultMeditationFeed
	}

	categories := g.aggregator.Fetch(ctx, map[string][]string{"meditation": {feedURL}}, 1)
	items := categories["meditation"]
	if len(items) == 0 {
		return nil, fmt.Errorf("meditation feed %s returned no entries", feedURL)
	}
	return MeditationReport{Items: items}, nil
}
