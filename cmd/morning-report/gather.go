// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/snlongmore/morning-report/internal/ads"
	"github.com/snlongmore/morning-report/internal/archive"
	"github.com/snlongmore/morning-report/internal/arxiv"
	"github.com/snlongmore/morning-report/internal/feeds"
	"github.com/snlongmore/morning-report/internal/gather"
	"github.com/snlongmore/morning-report/internal/httputil"
	"github.com/snlongmore/morning-report/internal/metrics"
	"github.com/snlongmore/morning-report/internal/report"
	"github.com/snlongmore/morning-report/pkg/types"
)

// metricsHistoryFile is where daily ADS snapshots persist between runs.
const metricsHistoryFile = "ads_history.json"

var gatherCmd = &cobra.Command{
	Use:   "gather",
	Short: "Run the gatherers and write today's briefing",
	Long: `Gather runs every configured data source concurrently, classifies new
arXiv papers, computes citation metric changes, and writes the briefing as
Markdown with a JSON sidecar of the raw data.

Sources without credentials are skipped; a failing source appears in the
briefing as unavailable rather than aborting the run.`,
	RunE: runGather,
}

func init() {
	gatherCmd.Flags().String("only", "", "comma-separated sources to run (default: all)")
	gatherCmd.Flags().String("date", "", "briefing date, YYYY-MM-DD (default: today)")
	gatherCmd.Flags().Bool("skip-report", false, "gather data without writing the briefing")
	gatherCmd.Flags().String("history", metricsHistoryFile, "path to the metrics history file")

	rootCmd.AddCommand(gatherCmd)
}

func runGather(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger()

	date, _ := cmd.Flags().GetString("date")
	if date == "" {
		date = metrics.Today()
	}
	historyPath, _ := cmd.Flags().GetString("history")

	registry, cleanup := buildRegistry(cfg, log, date, historyPath)
	defer cleanup()

	var only []gather.Source
	if onlyFlag, _ := cmd.Flags().GetString("only"); onlyFlag != "" {
		for _, s := range strings.Split(onlyFlag, ",") {
			only = append(only, gather.Source(strings.TrimSpace(s)))
		}
	}

	results, err := gather.RunAll(cmd.Context(), registry, only, log)
	if err != nil {
		return err
	}

	for _, src := range registry.Ordered() {
		res, ok := results[src]
		if !ok {
			continue
		}
		switch res.Status {
		case gather.StatusOK:
			fmt.Printf("ok      %s\n", src)
		case gather.StatusSkipped:
			fmt.Printf("skipped %s (%s)\n", src, res.Reason)
		case gather.StatusError:
			fmt.Printf("error   %s (%s)\n", src, res.Error)
		}
	}

	if skip, _ := cmd.Flags().GetBool("skip-report"); skip {
		return nil
	}

	gen := report.NewGenerator(cfg.Report.OutputDir, log)
	path, err := gen.Generate(date, registry.Ordered(), results)
	if err != nil {
		return err
	}
	fmt.Printf("\nBriefing written to %s\n", path)
	return nil
}

// buildRegistry wires every gatherer with the shared HTTP client. The
// returned cleanup closes the paper archive.
func buildRegistry(cfg types.Config, log *logrus.Logger, date, historyPath string) (gather.Registry, func()) {
	retry := &httputil.RetryClient{
		HTTP:      httpClient(cfg),
		UserAgent: cfg.HTTP.UserAgent,
		Log:       log,
	}
	aggregator := feeds.NewAggregator(httpClient(cfg), cfg.HTTP.UserAgent, log)
	adsClient := &ads.Client{HTTP: retry, Token: cfg.ADS.APIToken}
	historyStore := metrics.NewStore(historyPath)

	// The archive is shared across runs; failure to open it degrades the
	// arXiv gatherer to fetch-and-classify only.
	var paperStore *archive.Store
	store, err := archive.NewStore(cfg.Arxiv.PapersDir)
	if err != nil {
		log.WithError(err).Warn("paper archive unavailable")
		fmt.Fprintf(os.Stderr, "warning: paper archive unavailable: %v\n", err)
	} else {
		paperStore = store
	}

	var citers arxiv.CiterSource
	if cfg.ADS.APIToken != "" {
		citers = adsClient
	}

	registry := gather.Registry{
		gather.SourceArxiv: func() gather.Gatherer {
			feedClient := &arxiv.FeedClient{HTTP: retry}
			pdfs := archive.NewPDFFetcher(retry, cfg.Arxiv.PapersDir, log)
			var archiver arxiv.Archiver
			if paperStore != nil {
				archiver = paperStore
			}
			return arxiv.NewGatherer(cfg.Arxiv, cfg.ADS, feedClient, citers, archiver, pdfs, log, date)
		},
		gather.SourceADS: func() gather.Gatherer {
			return ads.NewGatherer(cfg.ADS, adsClient, historyStore, log)
		},
		gather.SourceNews: func() gather.Gatherer {
			return feeds.NewNewsGatherer(cfg.News, aggregator)
		},
		gather.SourceMeditation: func() gather.Gatherer {
			return feeds.NewMeditationGatherer(cfg.Meditation, aggregator)
		},
		gather.SourceWeather: func() gather.Gatherer {
			return gather.NewWeatherGatherer(cfg.Weather, retry, log)
		},
		gather.SourceMarkets: func() gather.Gatherer {
			return gather.NewMarketsGatherer(cfg.Markets, retry, log)
		},
		gather.SourceGitHub: func() gather.Gatherer {
			return gather.NewGitHubGatherer(cfg.GitHub, log)
		},
	}

	cleanup := func() {
		if paperStore != nil {
			paperStore.Close()
		}
	}
	return registry, cleanup
}
