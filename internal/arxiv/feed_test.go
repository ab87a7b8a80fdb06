// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snlongmore/morning-report/internal/httputil"
)

func testClient() *FeedClient {
	return &FeedClient{HTTP: &httputil.RetryClient{
		HTTP:      http.DefaultClient,
		UserAgent: "morning-report-test",
	}}
}

func atomEntryXML(id, title, summary, primary string, cats ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<entry>
		<id>http://arxiv.org/abs/%s</id>
		<title>%s</title>
		<summary>%s</summary>
		<published>2026-08-30T18:00:00Z</published>
		<updated>2026-08-30T18:00:00Z</updated>
		<author><name>Jane Doe</name></author>
		<author><name>Bob Smith</name></author>
		<arxiv:primary_category term="%s"/>
		<arxiv:comment>12 pages, 4 figures</arxiv:comment>`, id, title, summary, primary)
	for _, cat := range cats {
		fmt.Fprintf(&b, `<category term=%q/>`, cat)
	}
	b.WriteString(`</entry>`)
	return b.String()
}

func atomFeedXML(entries ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:arxiv="http://arxiv.org/schemas/atom">
` + strings.Join(entries, "\n") + `
</feed>`
}

func TestFetchParsesEntries(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_query")
		fmt.Fprint(w, atomFeedXML(
			atomEntryXML("2608.01234v2", "Dense Gas in the CMZ", "We study star formation.", "astro-ph.GA", "astro-ph.GA", "astro-ph.SR"),
		))
	}))
	defer server.Close()

	oldBase := arxivAPIBase
	arxivAPIBase = server.URL
	defer func() { arxivAPIBase = oldBase }()

	papers, err := testClient().Fetch(context.Background(), []string{"astro-ph.GA", "astro-ph.SR"}, 1, 50)
	require.NoError(t, err)
	require.Len(t, papers, 1)

	p := papers[0]
	assert.Equal(t, "2608.01234", p.ArxivID, "version suffix stripped")
	assert.Equal(t, "Dense Gas in the CMZ", p.Title)
	assert.Equal(t, "We study star formation.", p.Abstract)
	assert.Equal(t, []string{"Jane Doe", "Bob Smith"}, p.Authors)
	assert.Equal(t, "astro-ph.GA", p.PrimaryCategory)
	assert.Equal(t, []string{"astro-ph.GA", "astro-ph.SR"}, p.Categories)
	assert.Equal(t, "12 pages, 4 figures", p.Comment)
	assert.Equal(t, "https://arxiv.org/abs/2608.01234", p.AbsURL)
	assert.Equal(t, "https://arxiv.org/pdf/2608.01234", p.PDFURL)

	assert.Contains(t, gotQuery, "(cat:astro-ph.GA OR cat:astro-ph.SR)")
	assert.Contains(t, gotQuery, "submittedDate:[")
}

func TestFetchDeduplicatesCrossListings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, atomFeedXML(
			atomEntryXML("2608.01234v1", "First", "A.", "astro-ph.GA", "astro-ph.GA"),
			atomEntryXML("2608.01234v1", "First again", "A.", "astro-ph.SR", "astro-ph.SR"),
			atomEntryXML("2608.05678v1", "Second", "B.", "astro-ph.GA", "astro-ph.GA"),
		))
	}))
	defer server.Close()

	oldBase := arxivAPIBase
	arxivAPIBase = server.URL
	defer func() { arxivAPIBase = oldBase }()

	papers, err := testClient().Fetch(context.Background(), []string{"astro-ph.GA"}, 1, 50)
	require.NoError(t, err)
	require.Len(t, papers, 2)
	assert.Equal(t, "First", papers[0].Title, "first listing wins")
	assert.Equal(t, "2608.05678", papers[1].ArxivID)
}

func TestFetchCollapsesTitleWhitespace(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, atomFeedXML(
			atomEntryXML("2608.01234v1", "A Very Long\n  Wrapped Title", "A.", "astro-ph.GA", "astro-ph.GA"),
		))
	}))
	defer server.Close()

	oldBase := arxivAPIBase
	arxivAPIBase = server.URL
	defer func() { arxivAPIBase = oldBase }()

	papers, err := testClient().Fetch(context.Background(), []string{"astro-ph.GA"}, 1, 50)
	require.NoError(t, err)
	require.Len(t, papers, 1)
	assert.Equal(t, "A Very Long Wrapped Title", papers[0].Title)
}

func TestFetchNoCategories(t *testing.T) {
	_, err := testClient().Fetch(context.Background(), nil, 1, 50)
	assert.ErrorContains(t, err, "no arXiv categories")
}

func TestFetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	oldBase := arxivAPIBase
	arxivAPIBase = server.URL
	defer func() { arxivAPIBase = oldBase }()

	_, err := testClient().Fetch(context.Background(), []string{"astro-ph.GA"}, 1, 50)
	assert.ErrorContains(t, err, "HTTP 400")
}

func TestCanonicalID(t *testing.T) {
	tests := []struct {
		idURL string
		want  string
	}{
		{"http://arxiv.org/abs/2301.07041v2", "2301.07041"},
		{"http://arxiv.org/abs/2301.07041", "2301.07041"},
		{"http://arxiv.org/abs/astro-ph/0601001v1", "astro-ph/0601001"},
		{"http://example.com/nothing", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, canonicalID(tt.idURL), tt.idURL)
	}
}
