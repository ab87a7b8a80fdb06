// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/snlongmore/morning-report/internal/httputil"
	"github.com/snlongmore/morning-report/pkg/types"
)

// API bases as vars so tests can point them at httptest servers.
var (
	coingeckoAPIBase = "https://api.coingecko.com/api/v3"
	yahooAPIBase     = "https://query1.finance.yahoo.com/v8/finance/chart"
)

// CryptoQuote is one token's price snapshot from CoinGecko.
type CryptoQuote struct {
	PriceUSD     float64 `json:"price_usd"`
	Change24hPct float64 `json:"change_24h_pct"`
	MarketCapUSD float64 `json:"market_cap_usd"`
	Error        string  `json:"error,omitempty"`
}

// TickerQuote is one symbol's snapshot from the Yahoo chart API.
type TickerQuote struct {
	Price         float64 `json:"price"`
	PreviousClose float64 `json:"previous_close"`
	ChangePct     float64 `json:"change_pct"`
	Currency      string  `json:"currency"`
	Error         string  `json:"error,omitempty"`
}

// MarketsReport is the markets gatherer payload.
type MarketsReport struct {
	Crypto map[string]CryptoQuote `json:"crypto,omitempty"`
	Stocks map[string]TickerQuote `json:"stocks,omitempty"`
}

// MarketsGatherer fetches crypto prices (one batched CoinGecko call) and
// stock/fund quotes (one Yahoo chart call per ticker).
type MarketsGatherer struct {
	cfg    types.MarketsConfig
	client *httputil.RetryClient
	log    *logrus.Logger
}

// NewMarketsGatherer returns a markets gatherer.
func NewMarketsGatherer(cfg types.MarketsConfig, client *httputil.RetryClient, log *logrus.Logger) *MarketsGatherer {
	if len(cfg.Crypto) == 0 && len(cfg.Stocks) == 0 && len(cfg.Funds) == 0 {
		cfg.Crypto = []string{"bitcoin", "ethereum"}
	}
	return &MarketsGatherer{cfg: cfg, client: client, log: log}
}

// Name implements Gatherer.
func (g *MarketsGatherer) Name() string { return string(SourceMarkets) }

// Available implements Gatherer. Both upstream APIs are keyless.
func (g *MarketsGatherer) Available() bool { return true }

// Gather fetches all configured markets. Individual symbols that fail are
// recorded inline rather than failing the source.
func (g *MarketsGatherer) Gather(ctx context.Context) (any, error) {
	report := MarketsReport{}

	if len(g.cfg.Crypto) > 0 {
		crypto, err := g.fetchCrypto(ctx)
		if err != nil {
			return nil, err
		}
		report.Crypto = crypto
	}

	tickers := append(append([]string{}, g.cfg.Stocks...), g.cfg.Funds...)
	if len(tickers) > 0 {
		report.Stocks = make(map[string]TickerQuote, len(tickers))
		for _, ticker := range tickers {
			quote, err := g.fetchTicker(ctx, ticker)
			if err != nil {
				g.log.WithFields(logrus.Fields{"ticker": ticker, "error": err}).Warn("quote fetch failed")
				report.Stocks[ticker] = TickerQuote{Error: err.Error()}
				continue
			}
			report.Stocks[ticker] = quote
		}
	}

	return report, nil
}

func (g *MarketsGatherer) fetchCrypto(ctx context.Context) (map[string]CryptoQuote, error) {
	params := url.Values{}
	params.Set("ids", strings.Join(g.cfg.Crypto, ","))
	params.Set("vs_currencies", "usd")
	params.Set("include_24hr_change", "true")
	params.Set("include_market_cap", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		coingeckoAPIBase+"/simple/price?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := g.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("CoinGecko request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("CoinGecko returned HTTP %d", resp.StatusCode)
	}

	var payload map[string]struct {
		USD          float64 `json:"usd"`
		USD24hChange float64 `json:"usd_24h_change"`
		USDMarketCap float64 `json:"usd_market_cap"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("parsing CoinGecko response: %w", err)
	}

	quotes := make(map[string]CryptoQuote, len(g.cfg.Crypto))
	for _, id := range g.cfg.Crypto {
		info, ok := payload[id]
		if !ok {
			quotes[id] = CryptoQuote{Error: "not found on CoinGecko"}
			continue
		}
		quotes[id] = CryptoQuote{
			PriceUSD:     info.USD,
			Change24hPct: round2(info.USD24hChange),
			MarketCapUSD: info.USDMarketCap,
		}
	}
	return quotes, nil
}

// yahooChart mirrors the fields used from the chart response.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"chartPreviousClose"`
				Currency           string  `json:"currency"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (g *MarketsGatherer) fetchTicker(ctx context.Context, ticker string) (TickerQuote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		yahooAPIBase+"/"+url.PathEscape(ticker)+"?interval=1d&range=1d", nil)
	if err != nil {
		return TickerQuote{}, fmt.Errorf("creating request: %w", err)
	}

	resp, err := g.client.Do(ctx, req)
	if err != nil {
		return TickerQuote{}, fmt.Errorf("Yahoo chart request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return TickerQuote{}, fmt.Errorf("Yahoo chart returned HTTP %d for %s", resp.StatusCode, ticker)
	}

	var payload yahooChart
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return TickerQuote{}, fmt.Errorf("parsing Yahoo chart response: %w", err)
	}
	if payload.Chart.Error != nil {
		return TickerQuote{}, fmt.Errorf("Yahoo chart error for %s: %s", ticker, payload.Chart.Error.Description)
	}
	if len(payload.Chart.Result) == 0 {
		return TickerQuote{}, fmt.Errorf("no data for %s", ticker)
	}

	meta := payload.Chart.Result[0].Meta
	quote := TickerQuote{
		Price:         round2(meta.RegularMarketPrice),
		PreviousClose: round2(meta.PreviousClose),
		Currency:      meta.Currency,
	}
	if meta.PreviousClose != 0 {
		quote.ChangePct = round2((meta.RegularMarketPrice - meta.PreviousClose) / meta.PreviousClose * 100)
	}
	return quote, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
