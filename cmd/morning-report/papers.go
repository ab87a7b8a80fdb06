// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/snlongmore/morning-report/internal/archive"
	"github.com/snlongmore/morning-report/internal/metrics"
	"github.com/snlongmore/morning-report/pkg/types"
)

var papersCmd = &cobra.Command{
	Use:   "papers [date]",
	Short: "List archived papers for a briefing date",
	Long: `Papers lists the classified papers recorded in the archive for a
briefing date (default: today). With --dates it lists the available
briefing dates instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPapers,
}

func init() {
	papersCmd.Flags().String("papers-dir", "", "paper archive directory (default: from config)")
	papersCmd.Flags().Bool("dates", false, "list available briefing dates")
	papersCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(papersCmd)
}

func runPapers(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	papersDir, _ := cmd.Flags().GetString("papers-dir")
	if papersDir == "" {
		papersDir = cfg.Arxiv.PapersDir
	}

	store, err := archive.NewStore(papersDir)
	if err != nil {
		return err
	}
	defer store.Close()

	if listDates, _ := cmd.Flags().GetBool("dates"); listDates {
		dates, err := store.Dates(cmd.Context())
		if err != nil {
			return err
		}
		for _, d := range dates {
			fmt.Println(d)
		}
		return nil
	}

	date := metrics.Today()
	if len(args) == 1 {
		date = args[0]
	}

	groups, err := store.PapersForDate(cmd.Context(), date)
	if err != nil {
		return err
	}
	if groups.Total() == 0 {
		fmt.Printf("no papers archived for %s\n", date)
		return nil
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(groups)
	}

	for _, tier := range []types.Tier{types.Tier1, types.Tier2, types.Tier3} {
		papers := groups[tier]
		if len(papers) == 0 {
			continue
		}
		fmt.Printf("Tier %d (%d papers)\n", int(tier), len(papers))
		for _, p := range papers {
			fmt.Printf("  %-16s %s\n", p.ArxivID, p.Title)
			if len(p.MatchedKeywords) > 0 {
				fmt.Printf("  %-16s matched: %s\n", "", strings.Join(p.MatchedKeywords, ", "))
			}
		}
	}
	return nil
}
