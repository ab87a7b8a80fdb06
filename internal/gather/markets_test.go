// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gather

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
	"github.com/snlongmore/morning-report/pkg/types"
)

func TestMarketsGatherCrypto(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "bitcoin,ethereum", r.URL.Query().Get("ids"))
		fmt.Fprint(w, `{
		  "bitcoin": {"usd": 97123.5, "usd_24h_change": 2.3456, "usd_market_cap": 1.9e12},
		  "ethereum": {"usd": 3100.1, "usd_24h_change": -1.111, "usd_market_cap": 3.7e11}
		}`)
	}))
	defer ts.Close()
	oldBase := coingeckoAPIBase
	coingeckoAPIBase = ts.URL
	defer func() { coingeckoAPIBase = oldBase }()

	g := NewMarketsGatherer(types.MarketsConfig{Crypto: []string{"bitcoin", "ethereum"}},
		&httputil.RetryClient{HTTP: ts.Client()}, quietLog())

	data, err := g.Gather(context.Background())
	require.NoError(t, err)

	report := data.(MarketsReport)
	require.Len(t, report.Crypto, 2)
	assert.Equal(t, 97123.5, report.Crypto["bitcoin"].PriceUSD)
	assert.Equal(t, 2.35, report.Crypto["bitcoin"].Change24hPct)
	assert.Equal(t, -1.11, report.Crypto["ethereum"].Change24hPct)
}

func TestMarketsGatherCryptoUnknownToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"bitcoin": {"usd": 97123.5}}`)
	}))
	defer ts.Close()
	oldBase := coingeckoAPIBase
	coingeckoAPIBase = ts.URL
	defer func() { coingeckoAPIBase = oldBase }()

	g := NewMarketsGatherer(types.MarketsConfig{Crypto: []string{"bitcoin", "dogequeen"}},
		&httputil.RetryClient{HTTP: ts.Client()}, quietLog())

	data, err := g.Gather(context.Background())
	require.NoError(t, err)

	report := data.(MarketsReport)
	assert.Empty(t, report.Crypto["bitcoin"].Error)
	assert.Equal(t, "not found on CoinGecko", report.Crypto["dogequeen"].Error)
}

func TestMarketsGatherTickers(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/VWRL.L"):
			fmt.Fprint(w, `{"chart": {"result": [{"meta": {"regularMarketPrice": 112.34, "chartPreviousClose": 110.0, "currency": "GBP"}}]}}`)
		case strings.HasSuffix(r.URL.Path, "/BROKEN"):
			fmt.Fprint(w, `{"chart": {"result": [], "error": {"description": "No data found"}}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()
	oldBase := yahooAPIBase
	yahooAPIBase = ts.URL
	defer func() { yahooAPIBase = oldBase }()

	g := NewMarketsGatherer(types.MarketsConfig{Stocks: []string{"VWRL.L", "BROKEN"}},
		&httputil.RetryClient{HTTP: ts.Client()}, quietLog())

	data, err := g.Gather(context.Background())
	require.NoError(t, err)

	report := data.(MarketsReport)
	good := report.Stocks["VWRL.L"]
	assert.Equal(t, 112.34, good.Price)
	assert.Equal(t, 110.0, good.PreviousClose)
	assert.Equal(t, 2.13, good.ChangePct)
	assert.Equal(t, "GBP", good.Currency)
	assert.Contains(t, report.Stocks["BROKEN"].Error, "No data found")
}

func TestMarketsGathererDefaultsToCrypto(t *testing.T) {
	g := NewMarketsGatherer(types.MarketsConfig{}, &httputil.RetryClient{HTTP: http.DefaultClient}, quietLog())

	assert.True(t, g.Available())
	assert.Equal(t, []string{"bitcoin", "ethereum"}, g.cfg.Crypto)
}
