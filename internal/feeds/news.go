// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feeds

import (
	"context"

	"github.com/snlongmore/morning-report/internal/gather"
	"github.com/snlongmore/morning-report/pkg/types"
)

// defaultFeeds is used when no feeds are configured.
var defaultFeeds = map[string][]string{
	"Astronomy": {
		"https://www.eso.org/public/news/feed/",
		"https://www.nasa.gov/rss/dyn/breaking_news.rss",
	},
	"AI/ML": {
		"https://news.ycombinator.com/rss",
	},
	"Shipping": {
		"https://gcaptain.com/feed/",
		"https://splash247.com/feed/",
	},
	"Crypto": {
		"https://cointelegraph.com/rss",
	},
}

// NewsReport is the news gatherer payload.
type NewsReport struct {
	Categories    map[string][]Item `json:"categories"`
	TotalArticles int               `json:"total_articles"`
}

// NewsGatherer collects categorized headlines from RSS feeds.
type NewsGatherer struct {
	cfg        types.NewsConfig
	aggregator *Aggregator
}

// NewNewsGatherer returns a news gatherer.
func NewNewsGatherer(cfg types.NewsConfig, aggregator *Aggregator) *NewsGatherer {
	return &NewsGatherer{cfg: cfg, aggregator: aggregator}
}

// Name implements gather.Gatherer.
func (g *NewsGatherer) Name() string { return string(gather.SourceNews) }

// Available implements gather.Gatherer. Feeds need no credentials.
func (g *NewsGatherer) Available() bool { return true }

// Gather fetches every configured (or default) feed category.
func (g *NewsGatherer) Gather(ctx context.Context) (any, error) {
	feeds := g.cfg.Feeds
	if len(feeds) == 0 {
		feeds = defaultFeeds
	}

	categories := g.aggregator.Fetch(ctx, feeds, g.cfg.MaxPerCategory)

	total := 0
	for _, items := range categories {
		total += len(items)
	}
	return NewsReport{Categories: categories, TotalArticles: total}, nil
}
