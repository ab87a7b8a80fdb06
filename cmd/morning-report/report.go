// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/snlongmore/morning-report/internal/metrics"
)

var reportCmd = &cobra.Command{
	Use:   "report [date]",
	Short: "Print a previously written briefing",
	Long:  `Report prints the Markdown briefing for a date (default: today).`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	date := metrics.Today()
	if len(args) == 1 {
		date = args[0]
	}

	path := filepath.Join(cfg.Report.OutputDir, date+".md")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no briefing for %s (run 'morning-report gather' first)", date)
		}
		return fmt.Errorf("reading briefing: %w", err)
	}

	fmt.Print(string(data))
	return nil
}
