package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ga2230/reefscout/internal/report"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the scouting store",
	Long: `Run an arbitrary SQL query against the store and print results as a table.

Schema:
  match_records(seq, id, team_number TEXT, match_type, match_number, timestamp, payload)

payload holds the full record as JSON. Use SQLite's json_extract to reach nested fields:
  SELECT team_number, AVG(json_extract(payload, '$.auto.l4')) FROM match_records GROUP BY team_number`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return err
	}

	report.PrintQuery(os.Stdout, cols, rows)
	return nil
}
