// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the morning-report CLI.
package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/snlongmore/morning-report/internal/secrets"
	"github.com/snlongmore/morning-report/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "morning-report/0.1"
)

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback if set, otherwise the secret value for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the morning-report CLI.
var rootCmd = &cobra.Command{
	Use:   "morning-report",
	Short: "Daily research briefing generator",
	Long: `morning-report assembles a daily briefing: new arXiv papers classified
against your research interests, citation metrics with day-over-day changes,
news, weather, markets, and GitHub activity.

Each briefing section comes from a gatherer; a failing gatherer degrades its
section instead of failing the run. Run 'morning-report gather' to produce
today's briefing.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./morning-report.yaml or ~/.config/morning-report/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("morning-report")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "morning-report"))
		}
	}

	viper.SetEnvPrefix("MORNING_REPORT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the process logger honoring --verbose.
func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if verbose, _ := rootCmd.PersistentFlags().GetBool("verbose"); verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

// loadConfig unmarshals the viper configuration, applies defaults, and
// resolves credentials from loaded secrets and ${VAR} references.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing configuration: %w", err)
	}

	if cfg.HTTP.Timeout <= 0 {
		cfg.HTTP.Timeout = defaultTimeout
	}
	if cfg.HTTP.UserAgent == "" {
		cfg.HTTP.UserAgent = defaultUserAgent
	}
	if cfg.Arxiv.PapersDir == "" {
		cfg.Arxiv.PapersDir = "papers"
	}
	if cfg.Report.OutputDir == "" {
		cfg.Report.OutputDir = "briefings"
	}

	cfg.ADS.APIToken = secretDefault("ads-api-token", secrets.Expand(cfg.ADS.APIToken))
	cfg.Weather.APIKey = secretDefault("openweather-api-key", secrets.Expand(cfg.Weather.APIKey))

	return cfg, nil
}

// httpClient returns the shared HTTP client built from config.
func httpClient(cfg types.Config) *http.Client {
	return &http.Client{Timeout: cfg.HTTP.Timeout}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
