// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/snlongmore/morning-report/internal/ads"
	"github.com/snlongmore/morning-report/internal/gather"
	"github.com/snlongmore/morning-report/internal/httputil"
	"github.com/snlongmore/morning-report/internal/metrics"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Fetch citation metrics and show changes since the last run",
	Long: `Metrics runs only the ADS citation pipeline: it fetches the author's
current metrics, compares them against the stored history, prints the
result, and records today's snapshot.`,
	RunE: runMetrics,
}

func init() {
	metricsCmd.Flags().String("history", metricsHistoryFile, "path to the metrics history file")

	rootCmd.AddCommand(metricsCmd)
}

func runMetrics(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger()

	retry := &httputil.RetryClient{
		HTTP:      httpClient(cfg),
		UserAgent: cfg.HTTP.UserAgent,
		Log:       log,
	}
	historyPath, _ := cmd.Flags().GetString("history")

	client := &ads.Client{HTTP: retry, Token: cfg.ADS.APIToken}
	gatherer := ads.NewGatherer(cfg.ADS, client, metrics.NewStore(historyPath), log)

	res := gather.SafeGather(cmd.Context(), gatherer, log)
	switch res.Status {
	case gather.StatusSkipped:
		return fmt.Errorf("%s", res.Reason)
	case gather.StatusError:
		return fmt.Errorf("%s", res.Error)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res.Data)
}
