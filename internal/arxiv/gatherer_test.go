// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snlongmore/morning-report/internal/classify"
	"github.com/snlongmore/morning-report/pkg/types"
)

func quietLog() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeCiters struct {
	index classify.CitationIndex
	err   error
}

func (f *fakeCiters) RecentCiters(ctx context.Context, author string, lookbackDays int) (classify.CitationIndex, error) {
	return f.index, f.err
}

type fakeArchive struct {
	date   string
	groups types.TierGroups
	err    error
}

func (f *fakeArchive) RecordPapers(ctx context.Context, date string, groups types.TierGroups) error {
	f.date = date
	f.groups = groups
	return f.err
}

type fakeDownloader struct {
	got []types.ClassifiedPaper
}

func (f *fakeDownloader) DownloadPDFs(ctx context.Context, papers []types.ClassifiedPaper, date string) int {
	f.got = papers
	return len(papers)
}

func listingServer(t *testing.T, entries ...string) func() {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, atomFeedXML(entries...))
	}))
	oldBase := arxivAPIBase
	arxivAPIBase = server.URL
	return func() {
		arxivAPIBase = oldBase
		server.Close()
	}
}

func testConfig() types.ArxivConfig {
	return types.ArxivConfig{
		Categories:    []string{"astro-ph.GA"},
		Tier2Keywords: []string{"star formation"},
		Tier3Keywords: []string{"machine learning"},
	}
}

func TestGathererAvailable(t *testing.T) {
	g := NewGatherer(testConfig(), types.ADSConfig{}, nil, nil, nil, nil, quietLog(), "2026-08-31")
	assert.True(t, g.Available())

	g = NewGatherer(types.ArxivConfig{}, types.ADSConfig{}, nil, nil, nil, nil, quietLog(), "2026-08-31")
	assert.False(t, g.Available())
}

func TestGatherClassifiesAndReports(t *testing.T) {
	cleanup := listingServer(t,
		atomEntryXML("2608.00001v1", "Cited Paper", "Unrelated topic.", "astro-ph.GA", "astro-ph.GA"),
		atomEntryXML("2608.00002v1", "Star formation in dwarf galaxies", "We observe.", "astro-ph.GA", "astro-ph.GA"),
		atomEntryXML("2608.00003v1", "Machine learning for spectra", "We train.", "astro-ph.GA", "astro-ph.GA"),
		atomEntryXML("2608.00004v1", "Exoplanet atmospheres", "We model.", "astro-ph.EP", "astro-ph.EP"),
	)
	defer cleanup()

	citers := classify.NewCitationIndex()
	citers.Add("2608.00001")

	archive := &fakeArchive{}
	pdfs := &fakeDownloader{}
	g := NewGatherer(testConfig(), types.ADSConfig{Author: "doe, j."},
		testClient(), &fakeCiters{index: citers}, archive, pdfs, quietLog(), "2026-08-31")

	data, err := g.Gather(context.Background())
	require.NoError(t, err)
	report, ok := data.(Report)
	require.True(t, ok)

	assert.Equal(t, "2026-08-31", report.Date)
	assert.Equal(t, 3, report.TotalPapers, "unmatched papers dropped")
	assert.True(t, report.ADSCitationsAvailable)
	assert.Equal(t, map[string]int{"tier1": 1, "tier2": 1, "tier3": 1}, report.TierCounts)

	require.Len(t, report.Tiers["tier1"], 1)
	tier1 := report.Tiers["tier1"][0]
	assert.Equal(t, "2608.00001", tier1.ArxivID)
	assert.Equal(t, types.ReasonCitesYou, tier1.Reason)
	assert.Equal(t, 1, tier1.Tier)

	require.Len(t, report.Tiers["tier2"], 1)
	assert.Equal(t, []string{"star formation"}, report.Tiers["tier2"][0].MatchedKeywords)

	// Tiers 1 and 2 get PDFs, tier 3 does not.
	assert.Equal(t, 2, report.PDFsDownloaded)
	require.Len(t, pdfs.got, 2)
	assert.Equal(t, "2608.00001", pdfs.got[0].ArxivID)
	assert.Equal(t, "2608.00002", pdfs.got[1].ArxivID)

	assert.Equal(t, "2026-08-31", archive.date)
	assert.Equal(t, 3, archive.groups.Total())
}

func TestGatherCiterFailureDegrades(t *testing.T) {
	cleanup := listingServer(t,
		atomEntryXML("2608.00001v1", "Cited Paper", "Unrelated topic.", "astro-ph.GA", "astro-ph.GA"),
		atomEntryXML("2608.00002v1", "Star formation survey", "We observe.", "astro-ph.GA", "astro-ph.GA"),
	)
	defer cleanup()

	g := NewGatherer(testConfig(), types.ADSConfig{Author: "doe, j."},
		testClient(), &fakeCiters{err: errors.New("ADS down")}, nil, nil, quietLog(), "2026-08-31")

	data, err := g.Gather(context.Background())
	require.NoError(t, err, "citation failure must not fail the gather")
	report := data.(Report)

	assert.False(t, report.ADSCitationsAvailable)
	assert.Empty(t, report.Tiers["tier1"], "cannot reach tier 1 without citations")
	assert.Len(t, report.Tiers["tier2"], 1)
}

func TestGatherNoCiterSource(t *testing.T) {
	cleanup := listingServer(t,
		atomEntryXML("2608.00002v1", "Star formation survey", "We observe.", "astro-ph.GA", "astro-ph.GA"),
	)
	defer cleanup()

	g := NewGatherer(testConfig(), types.ADSConfig{}, testClient(), nil, nil, nil, quietLog(), "2026-08-31")

	data, err := g.Gather(context.Background())
	require.NoError(t, err)
	report := data.(Report)
	assert.False(t, report.ADSCitationsAvailable)
	assert.Equal(t, 1, report.TotalPapers)
}

func TestGatherArchiveFailureDegrades(t *testing.T) {
	cleanup := listingServer(t,
		atomEntryXML("2608.00002v1", "Star formation survey", "We observe.", "astro-ph.GA", "astro-ph.GA"),
	)
	defer cleanup()

	archive := &fakeArchive{err: errors.New("disk full")}
	g := NewGatherer(testConfig(), types.ADSConfig{}, testClient(), nil, archive, nil, quietLog(), "2026-08-31")

	_, err := g.Gather(context.Background())
	assert.NoError(t, err, "archive failure must not fail the gather")
}

func TestGatherFetchFailurePropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()
	oldBase := arxivAPIBase
	arxivAPIBase = server.URL
	defer func() { arxivAPIBase = oldBase }()

	g := NewGatherer(testConfig(), types.ADSConfig{}, testClient(), nil, nil, nil, quietLog(), "2026-08-31")
	_, err := g.Gather(context.Background())
	assert.ErrorContains(t, err, "fetching arXiv listings")
}

func TestSummarizeCapsAuthors(t *testing.T) {
	p := types.ClassifiedPaper{
		Paper: types.Paper{
			ArxivID: "2608.00001",
			Authors: []string{"A", "B", "C", "D", "E", "F", "G"},
		},
		TierResult: types.TierResult{Tier: types.Tier2, Reason: types.ReasonCoreTopic},
	}
	s := summarize(p)
	assert.Len(t, s.Authors, 5)
	assert.Equal(t, 7, s.AuthorCount)
	assert.Equal(t, "tier2", s.TierLabel)
}
