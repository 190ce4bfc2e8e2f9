package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ga2230/reefscout/internal/model"
	"github.com/ga2230/reefscout/internal/report"
)

var listTeam string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored scouting records",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listTeam, "team", "", "only show records for this team")
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := db.ReadAll()
	if err != nil {
		return fmt.Errorf("read records: %w", err)
	}
	if listTeam != "" {
		var filtered []model.MatchRecord
		for _, r := range records {
			if r.TeamNumber == listTeam {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stdout, "No records stored yet. Run 'reefscout add' or 'reefscout import <file>' to add some.")
		return nil
	}
	report.PrintEntries(os.Stdout, records)
	fmt.Fprintf(os.Stdout, "\n(%d records)\n", len(records))
	return nil
}
