// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/snlongmore/morning-report/internal/classify"
	"github.com/snlongmore/morning-report/internal/gather"
	"github.com/snlongmore/morning-report/pkg/types"
)

// CiterSource looks up recent papers citing an author. The ADS client
// implements this; the gatherer treats it as optional.
type CiterSource interface {
	RecentCiters(ctx context.Context, author string, lookbackDays int) (classify.CitationIndex, error)
}

// Archiver records classified papers for a briefing date.
type Archiver interface {
	RecordPapers(ctx context.Context, date string, groups types.TierGroups) error
}

// Downloader fetches paper PDFs into the local archive. It returns the
// number of files actually written.
type Downloader interface {
	DownloadPDFs(ctx context.Context, papers []types.ClassifiedPaper, date string) int
}

// PaperSummary is the per-paper payload entry in the briefing report.
type PaperSummary struct {
	ArxivID         string   `json:"arxiv_id"`
	Title           string   `json:"title"`
	Authors         []string `json:"authors"`
	AuthorCount     int      `json:"author_count"`
	PrimaryCategory string   `json:"primary_category"`
	AbsURL          string   `json:"abs_url"`
	Tier            int      `json:"tier"`
	TierLabel       string   `json:"tier_label"`
	Reason          string   `json:"reason"`
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
}

// Report is the arXiv gatherer payload.
type Report struct {
	Date                  string                    `json:"date"`
	CategoriesSearched    []string                  `json:"categories_searched"`
	TotalPapers           int                       `json:"total_papers"`
	TierCounts            map[string]int            `json:"tier_counts"`
	Tiers                 map[string][]PaperSummary `json:"tiers"`
	PDFsDownloaded        int                       `json:"pdfs_downloaded"`
	ADSCitationsAvailable bool                      `json:"ads_citations_available"`
}

// authorDisplayCap limits how many author names each summary carries.
const authorDisplayCap = 5

// Gatherer fetches new arXiv listings, classifies them against the
// configured research interests, archives the results, and downloads
// PDFs for the top tiers.
type Gatherer struct {
	cfg    types.ArxivConfig
	ads    types.ADSConfig
	client *FeedClient
	citers CiterSource
	store  Archiver
	pdfs   Downloader
	log    *logrus.Logger

	today string
}

// NewGatherer wires an arXiv gatherer. citers, store, and pdfs may be
// nil; the corresponding steps are skipped.
func NewGatherer(cfg types.ArxivConfig, ads types.ADSConfig, client *FeedClient, citers CiterSource, store Archiver, pdfs Downloader, log *logrus.Logger, today string) *Gatherer {
	return &Gatherer{
		cfg:    cfg,
		ads:    ads,
		client: client,
		citers: citers,
		store:  store,
		pdfs:   pdfs,
		log:    log,
		today:  today,
	}
}

func (g *Gatherer) Name() string { return string(gather.SourceArxiv) }

func (g *Gatherer) Available() bool { return len(g.cfg.Categories) > 0 }

func (g *Gatherer) Gather(ctx context.Context) (any, error) {
	papers, err := g.client.Fetch(ctx, g.cfg.Categories, g.cfg.LookbackDays, g.cfg.MaxResults)
	if err != nil {
		return nil, fmt.Errorf("fetching arXiv listings: %w", err)
	}
	g.log.WithField("papers", len(papers)).Info("fetched arXiv listings")

	citers := classify.NewCitationIndex()
	citersAvailable := false
	if g.citers != nil {
		idx, err := g.citers.RecentCiters(ctx, g.ads.Author, g.ads.CiterLookbackDays)
		if err != nil {
			g.log.WithError(err).Warn("citation lookup failed, classifying without it")
		} else {
			citers = idx
			citersAvailable = true
		}
	}

	groups := classify.ClassifyAll(papers, g.cfg.Tier2Keywords, g.cfg.Tier3Keywords, citers)

	if g.store != nil {
		if err := g.store.RecordPapers(ctx, g.today, groups); err != nil {
			g.log.WithError(err).Warn("archiving papers failed")
		}
	}

	downloaded := 0
	if g.pdfs != nil {
		var toFetch []types.ClassifiedPaper
		toFetch = append(toFetch, groups[types.Tier1]...)
		toFetch = append(toFetch, groups[types.Tier2]...)
		downloaded = g.pdfs.DownloadPDFs(ctx, toFetch, g.today)
	}

	report := Report{
		Date:                  g.today,
		CategoriesSearched:    g.cfg.Categories,
		TotalPapers:           groups.Total(),
		TierCounts:            make(map[string]int),
		Tiers:                 make(map[string][]PaperSummary),
		PDFsDownloaded:        downloaded,
		ADSCitationsAvailable: citersAvailable,
	}
	for tier, papers := range groups {
		label := tierLabel(tier)
		report.TierCounts[label] = len(papers)
		summaries := make([]PaperSummary, 0, len(papers))
		for _, p := range papers {
			summaries = append(summaries, summarize(p))
		}
		report.Tiers[label] = summaries
	}
	return report, nil
}

func summarize(p types.ClassifiedPaper) PaperSummary {
	authors := p.Authors
	if len(authors) > authorDisplayCap {
		authors = authors[:authorDisplayCap]
	}
	return PaperSummary{
		ArxivID:         p.ArxivID,
		Title:           p.Title,
		Authors:         authors,
		AuthorCount:     len(p.Authors),
		PrimaryCategory: p.PrimaryCategory,
		AbsURL:          p.AbsURL,
		Tier:            int(p.Tier),
		TierLabel:       tierLabel(p.Tier),
		Reason:          p.Reason,
		MatchedKeywords: p.MatchedKeywords,
	}
}

func tierLabel(t types.Tier) string {
	return fmt.Sprintf("tier%d", int(t))
}
