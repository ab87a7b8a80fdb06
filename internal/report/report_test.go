// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snlongmore/morning-report/internal/ads"
	"github.com/snlongmore/morning-report/internal/arxiv"
	"github.com/snlongmore/morning-report/internal/feeds"
	"github.com/snlongmore/morning-report/internal/gather"
	"github.com/snlongmore/morning-report/pkg/types"
)

func quietLog() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func f64(v float64) *float64 { return &v }

func sampleResults() (order []gather.Source, results map[gather.Source]gather.Result) {
	order = []gather.Source{gather.SourceArxiv, gather.SourceADS, gather.SourceNews, gather.SourceWeather}
	results = map[gather.Source]gather.Result{
		gather.SourceArxiv: {Status: gather.StatusOK, Data: arxiv.Report{
			Date:                  "2026-08-31",
			CategoriesSearched:    []string{"astro-ph.GA"},
			TotalPapers:           1,
			TierCounts:            map[string]int{"tier2": 1},
			ADSCitationsAvailable: true,
			Tiers: map[string][]arxiv.PaperSummary{
				"tier2": {{
					ArxivID:         "2608.00002",
					Title:           "Star formation survey",
					Authors:         []string{"Jane Doe"},
					AuthorCount:     8,
					AbsURL:          "https://arxiv.org/abs/2608.00002",
					Tier:            2,
					TierLabel:       "tier2",
					Reason:          types.ReasonCoreTopic,
					MatchedKeywords: []string{"star formation"},
				}},
			},
		}},
		gather.SourceADS: {Status: gather.StatusOK, Data: ads.Report{
			Author:      "doe, j.",
			NumBibcodes: 120,
			Indicators:  types.Section{"h": 40, "g": 75},
			CitationStats: ads.CitationSummary{
				TotalCitations: f64(9876),
				CitingPapers:   f64(5432),
			},
			BasicStats: ads.BasicSummary{TotalPapers: f64(120)},
			Deltas: types.MetricsDelta{
				ComparedTo: "2026-08-30",
				Indicators: map[string]types.IndicatorDelta{
					"h": {Current: 40, Previous: 39, Delta: 1},
				},
				Citations: map[string]types.CountDelta{
					"total number of citations": {Current: 9876, Previous: 9870, Delta: 6},
				},
			},
		}},
		gather.SourceNews: {Status: gather.StatusError, Error: "all feeds unreachable"},
		gather.SourceWeather: {Status: gather.StatusSkipped,
			Reason: "weather gatherer is not available"},
	}
	return order, results
}

func TestRenderSections(t *testing.T) {
	order, results := sampleResults()
	md := Render("2026-08-31", order, results)

	assert.Contains(t, md, "# Morning Report: 2026-08-31")

	// arXiv section.
	assert.Contains(t, md, "## New Papers")
	assert.Contains(t, md, "Tier 2: Core research topics (1)")
	assert.Contains(t, md, "[Star formation survey](https://arxiv.org/abs/2608.00002)")
	assert.Contains(t, md, "et al. (8 authors)")
	assert.Contains(t, md, "Keywords: star formation")

	// Metrics section.
	assert.Contains(t, md, "## Citation Metrics")
	assert.Contains(t, md, "Total citations: 9876 (+6)")
	assert.Contains(t, md, "h-index: 40")
	assert.Contains(t, md, "Indicator changes since 2026-08-30")
	assert.Contains(t, md, "h: 40 (+1)")

	// Failed and skipped sections get notes, not bodies.
	assert.Contains(t, md, "## News")
	assert.Contains(t, md, "_Unavailable: all feeds unreachable_")
	assert.Contains(t, md, "## Weather")
	assert.Contains(t, md, "_Skipped: weather gatherer is not available_")
}

func TestRenderOmitsMissingSources(t *testing.T) {
	order := []gather.Source{gather.SourceArxiv, gather.SourceMarkets}
	results := map[gather.Source]gather.Result{
		gather.SourceMarkets: {Status: gather.StatusOK, Data: gather.MarketsReport{
			Crypto: map[string]gather.CryptoQuote{
				"bitcoin": {PriceUSD: 61234.56, Change24hPct: -1.23},
			},
		}},
	}
	md := Render("2026-08-31", order, results)

	assert.NotContains(t, md, "## New Papers")
	assert.Contains(t, md, "## Markets")
	assert.Contains(t, md, "bitcoin: $61234.56 (-1.23% 24h)")
}

func TestRenderMeditationAndGitHub(t *testing.T) {
	order := []gather.Source{gather.SourceMeditation, gather.SourceGitHub}
	results := map[gather.Source]gather.Result{
		gather.SourceMeditation: {Status: gather.StatusOK, Data: feeds.MeditationReport{
			Items: []feeds.Item{{Title: "On Stillness", Link: "https://example.org/m", Content: "Be still."}},
		}},
		gather.SourceGitHub: {Status: gather.StatusOK, Data: gather.GitHubReport{
			NotificationCount: 3,
			PRsToReview: []gather.SearchItem{func() gather.SearchItem {
				var s gather.SearchItem
				s.Title = "Fix flaky test"
				s.URL = "https://github.com/org/repo/pull/1"
				s.Repository.NameWithOwner = "org/repo"
				return s
			}()},
		}},
	}
	md := Render("2026-08-31", order, results)

	assert.Contains(t, md, "## Daily Meditation")
	assert.Contains(t, md, "**[On Stillness](https://example.org/m)**")
	assert.Contains(t, md, "Be still.")
	assert.Contains(t, md, "3 unread notifications")
	assert.Contains(t, md, "### Review requested")
	assert.Contains(t, md, "[Fix flaky test](https://github.com/org/repo/pull/1) (org/repo)")
}

func TestGenerateWritesMarkdownAndSidecar(t *testing.T) {
	dir := t.TempDir()
	gen := NewGenerator(dir, quietLog())

	order, results := sampleResults()
	mdPath, err := gen.Generate("2026-08-31", order, results)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2026-08-31.md"), mdPath)

	md, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Contains(t, string(md), "# Morning Report: 2026-08-31")

	raw, err := os.ReadFile(filepath.Join(dir, "2026-08-31.json"))
	require.NoError(t, err)

	var sidecar map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw, &sidecar))
	assert.Equal(t, "ok", sidecar["arxiv"]["status"])
	assert.Equal(t, "error", sidecar["news"]["status"])
}
