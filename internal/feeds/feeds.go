// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package feeds aggregates RSS/Atom feeds into briefing items and backs
// the news and meditation gatherers.
package feeds

import (
	"context"
	"net/http"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/mmcdole/gofeed"
	"github.com/sirupsen/logrus"
)

// Item is one feed entry reduced to briefing fields. Summary and Content
// are converted from HTML to markdown so they can be embedded in the
// briefing verbatim.
type Item struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Published string `json:"published"`
	Source    string `json:"source"`
	Summary   string `json:"summary,omitempty"`
	Content   string `json:"content,omitempty"`
}

// Aggregator fetches and parses feeds grouped by category.
type Aggregator struct {
	parser    *gofeed.Parser
	converter *md.Converter
	log       *logrus.Logger
}

// NewAggregator returns an aggregator using client for feed fetches.
func NewAggregator(client *http.Client, userAgent string, log *logrus.Logger) *Aggregator {
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = userAgent
	return &Aggregator{
		parser:    parser,
		converter: md.NewConverter("", true, nil),
		log:       log,
	}
}

// Fetch parses every feed in each category and returns up to maxPerCategory
// items per category, in feed order. A feed that fails to fetch or parse is
// logged and skipped; an unreachable feed must not cost the briefing its
// other categories.
func (a *Aggregator) Fetch(ctx context.Context, feeds map[string][]string, maxPerCategory int) map[string][]Item {
	if maxPerCategory <= 0 {
		maxPerCategory = 5
	}

	results := make(map[string][]Item, len(feeds))
	for category, urls := range feeds {
		var items []Item
		for _, url := range urls {
			feed, err := a.parser.ParseURLWithContext(url, ctx)
			if err != nil {
				a.log.WithFields(logrus.Fields{"feed": url, "error": err}).Warn("feed parse failed")
				continue
			}

			source := feed.Title
			if source == "" {
				source = url
			}
			for i, entry := range feed.Items {
				if i == maxPerCategory {
					break
				}
				items = append(items, a.item(entry, source))
			}
		}
		if len(items) > maxPerCategory {
			items = items[:maxPerCategory]
		}
		results[category] = items
	}
	return results
}

func (a *Aggregator) item(entry *gofeed.Item, source string) Item {
	item := Item{
		Title:     entry.Title,
		Link:      entry.Link,
		Published: entry.Published,
		Source:    source,
	}
	item.Summary = a.plainText(entry.Description)
	item.Content = a.plainText(entry.Content)
	return item
}

// plainText converts an HTML fragment to markdown and collapses the
// whitespace feed publishers love to pad with.
func (a *Aggregator) plainText(html string) string {
	if html == "" {
		return ""
	}
	text, err := a.converter.ConvertString(html)
	if err != nil {
		// Fall back to the raw value rather than dropping the entry.
		text = html
	}
	return strings.Join(strings.Fields(text), " ")
}
