// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package arxiv fetches new listings from the arXiv Atom API and turns
// them into tier-classified briefing entries.
package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/snlongmore/morning-report/internal/httputil"
	"github.com/snlongmore/morning-report/pkg/types"
)

// arxivAPIBase is the arXiv query endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

const (
	defaultLookbackDays = 1
	defaultMaxResults   = 200
)

// FeedClient fetches recent submissions across a set of categories.
type FeedClient struct {
	HTTP *httputil.RetryClient
}

// Fetch returns papers submitted in the lookback window for the given
// categories, newest first, deduplicated by canonical ID. Cross-listed
// papers appear once, under the first category listing encountered.
func (c *FeedClient) Fetch(ctx context.Context, categories []string, lookbackDays, maxResults int) ([]types.Paper, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("no arXiv categories configured")
	}
	if lookbackDays <= 0 {
		lookbackDays = defaultLookbackDays
	}
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	now := time.Now()
	from := now.AddDate(0, 0, -lookbackDays).Format("20060102") + "000000"
	to := now.Format("20060102") + "235959"

	catTerms := make([]string, len(categories))
	for i, cat := range categories {
		catTerms[i] = "cat:" + cat
	}
	query := fmt.Sprintf("(%s) AND submittedDate:[%s TO %s]",
		strings.Join(catTerms, " OR "), from, to)

	params := url.Values{
		"search_query": {query},
		"sortBy":       {"submittedDate"},
		"sortOrder":    {"descending"},
		"max_results":  {strconv.Itoa(maxResults)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, arxivAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.HTTP.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv feed: %w", err)
	}

	seen := make(map[string]struct{}, len(feed.Entries))
	var papers []types.Paper
	for _, entry := range feed.Entries {
		id := canonicalID(entry.ID)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		paper := types.Paper{
			ArxivID:         id,
			Title:           collapseSpace(entry.Title),
			Abstract:        strings.TrimSpace(entry.Summary),
			PrimaryCategory: entry.PrimaryCategory.Term,
			Published:       entry.Published,
			Updated:         entry.Updated,
			Comment:         strings.TrimSpace(entry.Comment),
			AbsURL:          "https://arxiv.org/abs/" + id,
			PDFURL:          "https://arxiv.org/pdf/" + id,
		}
		for _, a := range entry.Authors {
			paper.Authors = append(paper.Authors, strings.TrimSpace(a.Name))
		}
		for _, cat := range entry.Categories {
			paper.Categories = append(paper.Categories, cat.Term)
		}
		papers = append(papers, paper)
	}
	return papers, nil
}

// arXiv Atom feed XML structures.
type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID              string         `xml:"id"`
	Title           string         `xml:"title"`
	Summary         string         `xml:"summary"`
	Published       string         `xml:"published"`
	Updated         string         `xml:"updated"`
	Authors         []atomAuthor   `xml:"author"`
	Categories      []atomCategory `xml:"category"`
	PrimaryCategory atomCategory   `xml:"http://arxiv.org/schemas/atom primary_category"`
	Comment         string         `xml:"http://arxiv.org/schemas/atom comment"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

// canonicalID pulls the arXiv ID from the entry's <id> URL and strips the
// version suffix (e.g. "http://arxiv.org/abs/2301.07041v2" to "2301.07041").
func canonicalID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
