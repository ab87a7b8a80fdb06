// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ads talks to the NASA ADS API: author metrics for the delta
// tracker and recent citing papers for tier 1 classification.
package ads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/snlongmore/morning-report/internal/classify"
	"github.com/snlongmore/morning-report/internal/httputil"
	"github.com/snlongmore/morning-report/pkg/types"
)

// adsAPIBase is the ADS API root. Declared as a var so tests can
// substitute an httptest server.
var adsAPIBase = "https://api.adsabs.harvard.edu/v1"

// bibcodeRows caps the author bibcode search; no single author has more
// papers than this.
const bibcodeRows = 2000

// Client is an authenticated ADS API client.
type Client struct {
	HTTP  *httputil.RetryClient
	Token string
}

// AuthorBibcodes returns every bibcode for the author in the astronomy
// collection.
func (c *Client) AuthorBibcodes(ctx context.Context, author string) ([]string, error) {
	params := url.Values{
		"q":    {fmt.Sprintf("author:%q", author)},
		"fl":   {"bibcode"},
		"rows": {fmt.Sprintf("%d", bibcodeRows)},
		"fq":   {"database:astronomy"},
	}

	var sr searchResponse
	if err := c.getJSON(ctx, "/search/query?"+params.Encode(), &sr); err != nil {
		return nil, err
	}

	bibcodes := make([]string, 0, len(sr.Response.Docs))
	for _, doc := range sr.Response.Docs {
		bibcodes = append(bibcodes, doc.Bibcode)
	}
	return bibcodes, nil
}

// Metrics fetches the aggregate metrics for a set of bibcodes and reduces
// the response to the three tracked sections.
func (c *Client) Metrics(ctx context.Context, bibcodes []string) (types.MetricsSnapshot, error) {
	body, err := json.Marshal(map[string]any{
		"bibcodes": bibcodes,
		"types":    []string{"basic", "citations", "indicators"},
	})
	if err != nil {
		return types.MetricsSnapshot{}, fmt.Errorf("encoding metrics request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, adsAPIBase+"/metrics", bytes.NewReader(body))
	if err != nil {
		return types.MetricsSnapshot{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(ctx, req)
	if err != nil {
		return types.MetricsSnapshot{}, fmt.Errorf("ADS metrics request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.MetricsSnapshot{}, fmt.Errorf("ADS metrics returned HTTP %d", resp.StatusCode)
	}

	var snapshot types.MetricsSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return types.MetricsSnapshot{}, fmt.Errorf("parsing ADS metrics response: %w", err)
	}
	return snapshot, nil
}

// RecentCiters finds papers from the last lookback window that cite any of
// the author's papers, returning a citation index of their bibcodes and
// arXiv IDs. New preprints take days to be indexed by ADS, so the window
// is wider than the arXiv listing window.
func (c *Client) RecentCiters(ctx context.Context, author string, lookbackDays int) (classify.CitationIndex, error) {
	if lookbackDays <= 0 {
		lookbackDays = 7
	}
	cutoff := time.Now().AddDate(0, 0, -lookbackDays).Format("2006-01")

	params := url.Values{
		"q":    {fmt.Sprintf("citations(author:%q) AND pubdate:[%s TO *]", author, cutoff)},
		"fl":   {"bibcode,title,author,identifier"},
		"rows": {"200"},
	}

	var sr searchResponse
	if err := c.getJSON(ctx, "/search/query?"+params.Encode(), &sr); err != nil {
		return nil, err
	}

	citers := classify.NewCitationIndex()
	for _, doc := range sr.Response.Docs {
		citers.Add(doc.Bibcode)
		for _, ident := range doc.Identifier {
			// ADS identifier lists include arXiv IDs as "arXiv:2602.12345",
			// which is how listing entries are matched back to citers.
			if strings.HasPrefix(ident, "arXiv:") {
				citers.Add(strings.TrimPrefix(ident, "arXiv:"))
			}
		}
	}
	return citers, nil
}

// searchResponse mirrors the fields used from /search/query.
type searchResponse struct {
	Response struct {
		Docs []struct {
			Bibcode    string   `json:"bibcode"`
			Identifier []string `json:"identifier"`
		} `json:"docs"`
	} `json:"response"`
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, adsAPIBase+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.HTTP.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("ADS API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ADS API returned HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing ADS response: %w", err)
	}
	return nil
}
