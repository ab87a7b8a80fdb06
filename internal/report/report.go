// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders gathered briefing data into a Markdown document
// and writes it, with a JSON sidecar of the raw results, under the
// briefings directory.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/snlongmore/morning-report/internal/ads"
	"github.com/snlongmore/morning-report/internal/arxiv"
	"github.com/snlongmore/morning-report/internal/feeds"
	"github.com/snlongmore/morning-report/internal/gather"
	"github.com/snlongmore/morning-report/pkg/types"
)

// sectionTitles maps sources to their briefing headings.
var sectionTitles = map[gather.Source]string{
	gather.SourceArxiv:      "New Papers",
	gather.SourceADS:        "Citation Metrics",
	gather.SourceNews:       "News",
	gather.SourceMeditation: "Daily Meditation",
	gather.SourceWeather:    "Weather",
	gather.SourceMarkets:    "Markets",
	gather.SourceGitHub:     "GitHub",
}

// Generator writes briefing documents into a directory.
type Generator struct {
	Dir string
	Log *logrus.Logger
}

// NewGenerator returns a generator rooted at briefingsDir.
func NewGenerator(briefingsDir string, log *logrus.Logger) *Generator {
	return &Generator{Dir: briefingsDir, Log: log}
}

// Generate renders the results into briefingsDir/[date].md and writes the
// raw results to briefingsDir/[date].json. It returns the Markdown path.
func (g *Generator) Generate(date string, order []gather.Source, results map[gather.Source]gather.Result) (string, error) {
	if err := os.MkdirAll(g.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating briefings directory: %w", err)
	}

	mdPath := filepath.Join(g.Dir, date+".md")
	if err := os.WriteFile(mdPath, []byte(Render(date, order, results)), 0o644); err != nil {
		return "", fmt.Errorf("writing briefing: %w", err)
	}

	jsonPath := filepath.Join(g.Dir, date+".json")
	raw, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling results: %w", err)
	}
	if err := os.WriteFile(jsonPath, raw, 0o644); err != nil {
		return "", fmt.Errorf("writing results sidecar: %w", err)
	}

	g.Log.WithFields(logrus.Fields{"briefing": mdPath, "sections": len(results)}).Info("briefing written")
	return mdPath, nil
}

// Render produces the Markdown briefing. Sources appear in the given
// order; sources missing from results are omitted, skipped and failed
// sources get a one-line note instead of a section body.
func Render(date string, order []gather.Source, results map[gather.Source]gather.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Morning Report: %s\n", date)

	for _, src := range order {
		res, ok := results[src]
		if !ok {
			continue
		}

		title := sectionTitles[src]
		if title == "" {
			title = string(src)
		}
		fmt.Fprintf(&b, "\n## %s\n\n", title)

		switch res.Status {
		case gather.StatusSkipped:
			fmt.Fprintf(&b, "_Skipped: %s_\n", res.Reason)
		case gather.StatusError:
			fmt.Fprintf(&b, "_Unavailable: %s_\n", res.Error)
		default:
			renderSection(&b, res.Data)
		}
	}
	return b.String()
}

func renderSection(b *strings.Builder, data any) {
	switch v := data.(type) {
	case arxiv.Report:
		renderPapers(b, v)
	case ads.Report:
		renderMetrics(b, v)
	case feeds.NewsReport:
		renderNews(b, v)
	case feeds.MeditationReport:
		renderMeditation(b, v)
	case gather.WeatherReport:
		renderWeather(b, v)
	case gather.MarketsReport:
		renderMarkets(b, v)
	case gather.GitHubReport:
		renderGitHub(b, v)
	default:
		// Unknown payloads still appear in the JSON sidecar.
		fmt.Fprintf(b, "_No renderer for this section._\n")
	}
}

func renderPapers(b *strings.Builder, r arxiv.Report) {
	fmt.Fprintf(b, "%d matched papers across %s.\n", r.TotalPapers,
		strings.Join(r.CategoriesSearched, ", "))
	if !r.ADSCitationsAvailable {
		fmt.Fprintf(b, "\n_Citation matching unavailable for this run._\n")
	}

	labels := []struct {
		key     string
		heading string
	}{
		{"tier1", "Tier 1: Cites your work"},
		{"tier2", "Tier 2: Core research topics"},
		{"tier3", "Tier 3: COOL project topics"},
	}
	for _, l := range labels {
		papers := r.Tiers[l.key]
		if len(papers) == 0 {
			continue
		}
		fmt.Fprintf(b, "\n### %s (%d)\n\n", l.heading, len(papers))
		for _, p := range papers {
			authors := strings.Join(p.Authors, ", ")
			if p.AuthorCount > len(p.Authors) {
				authors += fmt.Sprintf(" et al. (%d authors)", p.AuthorCount)
			}
			fmt.Fprintf(b, "- [%s](%s) (%s)\n  %s\n", p.Title, p.AbsURL, p.ArxivID, authors)
			if len(p.MatchedKeywords) > 0 {
				fmt.Fprintf(b, "  Keywords: %s\n", strings.Join(p.MatchedKeywords, ", "))
			}
		}
	}
	if r.PDFsDownloaded > 0 {
		fmt.Fprintf(b, "\n%d PDFs downloaded to the archive.\n", r.PDFsDownloaded)
	}
}

func renderMetrics(b *strings.Builder, r ads.Report) {
	fmt.Fprintf(b, "Metrics for %s (%d papers indexed).\n\n", r.Author, r.NumBibcodes)

	if r.CitationStats.TotalCitations != nil {
		fmt.Fprintf(b, "- Total citations: %.0f%s\n", *r.CitationStats.TotalCitations,
			deltaNote(r.Deltas.Citations["total number of citations"]))
	}
	if r.CitationStats.CitingPapers != nil {
		fmt.Fprintf(b, "- Citing papers: %.0f%s\n", *r.CitationStats.CitingPapers,
			deltaNote(r.Deltas.Citations["number of citing papers"]))
	}
	if r.BasicStats.TotalPapers != nil {
		note := ""
		if r.Deltas.Papers != nil && r.Deltas.Papers.Delta != 0 {
			note = fmt.Sprintf(" (%+d since %s)", r.Deltas.Papers.Delta, r.Deltas.ComparedTo)
		}
		fmt.Fprintf(b, "- Papers: %.0f%s\n", *r.BasicStats.TotalPapers, note)
	}

	if h, ok := r.Indicators.Value("h"); ok {
		fmt.Fprintf(b, "- h-index: %g\n", h)
	}
	if g, ok := r.Indicators.Value("g"); ok {
		fmt.Fprintf(b, "- g-index: %g\n", g)
	}

	if len(r.Deltas.Indicators) > 0 {
		fmt.Fprintf(b, "\nIndicator changes since %s:\n\n", r.Deltas.ComparedTo)
		keys := make([]string, 0, len(r.Deltas.Indicators))
		for k := range r.Deltas.Indicators {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			d := r.Deltas.Indicators[k]
			fmt.Fprintf(b, "- %s: %g (%+g)\n", k, d.Current, d.Delta)
		}
	} else if r.Deltas.ComparedTo != "" {
		fmt.Fprintf(b, "\nNo indicator changes since %s.\n", r.Deltas.ComparedTo)
	}
}

func deltaNote(d types.CountDelta) string {
	if d.Delta == 0 {
		return ""
	}
	return fmt.Sprintf(" (%+d)", d.Delta)
}

func renderNews(b *strings.Builder, r feeds.NewsReport) {
	fmt.Fprintf(b, "%d articles.\n", r.TotalArticles)

	categories := make([]string, 0, len(r.Categories))
	for c := range r.Categories {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		items := r.Categories[c]
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(b, "\n### %s\n\n", c)
		for _, item := range items {
			fmt.Fprintf(b, "- [%s](%s) (%s)\n", item.Title, item.Link, item.Source)
		}
	}
}

func renderMeditation(b *strings.Builder, r feeds.MeditationReport) {
	for _, item := range r.Items {
		fmt.Fprintf(b, "**[%s](%s)**\n", item.Title, item.Link)
		if item.Content != "" {
			fmt.Fprintf(b, "\n%s\n", item.Content)
		}
	}
}

func renderWeather(b *strings.Builder, r gather.WeatherReport) {
	locations := make([]string, 0, len(r.Locations))
	for l := range r.Locations {
		locations = append(locations, l)
	}
	sort.Strings(locations)
	for _, l := range locations {
		fc := r.Locations[l]
		if fc.Error != "" {
			fmt.Fprintf(b, "- **%s**: unavailable (%s)\n", l, fc.Error)
			continue
		}
		if fc.Current != nil {
			fmt.Fprintf(b, "- **%s**: %s, %.1f C (feels like %.1f C), humidity %d%%\n",
				l, fc.Current.Description, fc.Current.Temp, fc.Current.FeelsLike, fc.Current.Humidity)
		}
	}
}

func renderMarkets(b *strings.Builder, r gather.MarketsReport) {
	coins := make([]string, 0, len(r.Crypto))
	for c := range r.Crypto {
		coins = append(coins, c)
	}
	sort.Strings(coins)
	for _, c := range coins {
		q := r.Crypto[c]
		if q.Error != "" {
			fmt.Fprintf(b, "- %s: unavailable (%s)\n", c, q.Error)
			continue
		}
		fmt.Fprintf(b, "- %s: $%.2f (%+.2f%% 24h)\n", c, q.PriceUSD, q.Change24hPct)
	}

	tickers := make([]string, 0, len(r.Stocks))
	for s := range r.Stocks {
		tickers = append(tickers, s)
	}
	sort.Strings(tickers)
	for _, s := range tickers {
		q := r.Stocks[s]
		if q.Error != "" {
			fmt.Fprintf(b, "- %s: unavailable (%s)\n", s, q.Error)
			continue
		}
		fmt.Fprintf(b, "- %s: %.2f %s (%+.2f%%)\n", s, q.Price, q.Currency, q.ChangePct)
	}
}

func renderGitHub(b *strings.Builder, r gather.GitHubReport) {
	fmt.Fprintf(b, "%d unread notifications.\n", r.NotificationCount)

	if len(r.PRsToReview) > 0 {
		fmt.Fprintf(b, "\n### Review requested\n\n")
		for _, pr := range r.PRsToReview {
			fmt.Fprintf(b, "- [%s](%s) (%s)\n", pr.Title, pr.URL, pr.Repository.NameWithOwner)
		}
	}
	if len(r.AssignedIssues) > 0 {
		fmt.Fprintf(b, "\n### Assigned issues\n\n")
		for _, issue := range r.AssignedIssues {
			fmt.Fprintf(b, "- [%s](%s) (%s)\n", issue.Title, issue.URL, issue.Repository.NameWithOwner)
		}
	}
	if len(r.Notifications) > 0 {
		fmt.Fprintf(b, "\n### Notifications\n\n")
		for _, n := range r.Notifications {
			fmt.Fprintf(b, "- %s: %s (%s)\n", n.Repo, n.Title, n.Reason)
		}
	}
}
