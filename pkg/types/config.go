// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by gatherers that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "morning-report/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// ArxivConfig holds settings for the arXiv paper gatherer.
type ArxivConfig struct {
	// Categories lists the arXiv categories to watch (e.g. "astro-ph.GA").
	Categories []string `json:"categories" yaml:"categories" mapstructure:"categories"`

	// Tier2Keywords match core research topics. Order defines the order
	// matched keywords are reported in, not precedence.
	Tier2Keywords []string `json:"tier2_keywords" yaml:"tier2_keywords" mapstructure:"tier2_keywords"`

	// Tier3Keywords match broader project topics.
	Tier3Keywords []string `json:"tier3_keywords" yaml:"tier3_keywords" mapstructure:"tier3_keywords"`

	// LookbackDays is how far back the submission window reaches (default 1).
	LookbackDays int `json:"lookback_days" yaml:"lookback_days" mapstructure:"lookback_days"`

	// MaxResults caps the number of feed entries fetched (default 200).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// PapersDir is the root directory for downloaded PDFs.
	PapersDir string `json:"papers_dir" yaml:"papers_dir" mapstructure:"papers_dir"`
}

// ADSConfig holds settings for the NASA ADS metrics gatherer.
type ADSConfig struct {
	// APIToken authenticates against the ADS API. The gatherer is skipped
	// when the token is missing or an unexpanded ${VAR} placeholder.
	APIToken string `json:"api_token,omitempty" yaml:"api_token,omitempty" mapstructure:"api_token"`

	// Author is the ADS author query string (e.g. "longmore, s.n.").
	Author string `json:"author" yaml:"author" mapstructure:"author"`

	// CiterLookbackDays is how far back the citing-paper search reaches.
	// New preprints take days to appear in ADS, so this defaults to 7.
	CiterLookbackDays int `json:"citer_lookback_days" yaml:"citer_lookback_days" mapstructure:"citer_lookback_days"`
}

// NewsConfig holds settings for the RSS news gatherer.
type NewsConfig struct {
	// Feeds maps a category name to its feed URLs.
	Feeds map[string][]string `json:"feeds" yaml:"feeds" mapstructure:"feeds"`

	// MaxPerCategory caps the number of items kept per category (default 5).
	MaxPerCategory int `json:"max_per_category" yaml:"max_per_category" mapstructure:"max_per_category"`
}

// MeditationConfig holds settings for the daily meditation gatherer.
type MeditationConfig struct {
	// FeedURL is the meditation RSS feed.
	FeedURL string `json:"feed_url" yaml:"feed_url" mapstructure:"feed_url"`
}

// WeatherConfig holds settings for the OpenWeatherMap gatherer.
type WeatherConfig struct {
	// APIKey authenticates against OpenWeatherMap.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Locations lists the place names to forecast.
	Locations []string `json:"locations" yaml:"locations" mapstructure:"locations"`
}

// MarketsConfig holds settings for the markets gatherer.
type MarketsConfig struct {
	// Crypto lists CoinGecko token IDs (e.g. "bitcoin").
	Crypto []string `json:"crypto" yaml:"crypto" mapstructure:"crypto"`

	// Stocks and Funds list ticker symbols resolved via the Yahoo chart API.
	Stocks []string `json:"stocks" yaml:"stocks" mapstructure:"stocks"`
	Funds  []string `json:"funds" yaml:"funds" mapstructure:"funds"`
}

// GitHubConfig holds settings for the GitHub gatherer, which shells out to
// the gh CLI rather than talking to the API directly.
type GitHubConfig struct {
	// CommandTimeout bounds each gh invocation (default 15s).
	CommandTimeout time.Duration `json:"command_timeout" yaml:"command_timeout" mapstructure:"command_timeout"`
}

// ReportConfig holds settings for briefing output.
type ReportConfig struct {
	// OutputDir is where dated briefings and raw data land (default "briefings").
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`
}

// Config groups every subsystem's configuration.
type Config struct {
	HTTP       HTTPConfig       `json:"http" yaml:"http" mapstructure:"http"`
	Arxiv      ArxivConfig      `json:"arxiv" yaml:"arxiv" mapstructure:"arxiv"`
	ADS        ADSConfig        `json:"ads" yaml:"ads" mapstructure:"ads"`
	News       NewsConfig       `json:"news" yaml:"news" mapstructure:"news"`
	Meditation MeditationConfig `json:"meditation" yaml:"meditation" mapstructure:"meditation"`
	Weather    WeatherConfig    `json:"weather" yaml:"weather" mapstructure:"weather"`
	Markets    MarketsConfig    `json:"markets" yaml:"markets" mapstructure:"markets"`
	GitHub     GitHubConfig     `json:"github" yaml:"github" mapstructure:"github"`
	Report     ReportConfig     `json:"report" yaml:"report" mapstructure:"report"`
}
