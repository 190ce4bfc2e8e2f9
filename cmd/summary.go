package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ga2230/reefscout/internal/report"
)

// summaryCmd is the cobra command for displaying a high-level store overview.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a high-level overview of the store",
	Long: `Display aggregate facts about the stored records: record count, distinct
teams scouted, time range and match type breakdown.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	ov, err := db.Overview()
	if err != nil {
		return fmt.Errorf("get overview: %w", err)
	}
	if ov.TotalRecords == 0 {
		fmt.Fprintln(os.Stdout, "No records stored yet. Run 'reefscout add' or 'reefscout import <file>' to add some.")
		return nil
	}
	report.PrintSummary(os.Stdout, ov)
	return nil
}
