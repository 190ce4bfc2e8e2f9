package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ga2230/reefscout/internal/aggregator"
	"github.com/ga2230/reefscout/internal/report"
)

var compareView viewFlags

var compareCmd = &cobra.Command{
	Use:   "compare <team> [<team>...]",
	Short: "Compare up to 8 teams side by side",
	Long: `Print the chosen teams' metrics side by side in leaderboard rank order.
The best value in each row is marked with "*".`,
	Args: cobra.RangeArgs(1, aggregator.MaxCompare),
	RunE: runCompare,
}

func init() {
	compareView.bind(compareCmd, false)
}

func runCompare(cmd *cobra.Command, args []string) error {
	for _, t := range args {
		if !isKnownTeam(t) {
			return fmt.Errorf("team %s is not in the known team list", t)
		}
	}
	opts, err := compareView.options()
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	stats, _, src, err := computeStats(cmd.Context(), db, opts)
	if err != nil {
		return err
	}
	selected := aggregator.Select(stats, args, aggregator.MaxCompare)
	if compareView.jsonOut {
		return writeJSON(os.Stdout, selected)
	}
	printRatingsStatus(os.Stderr, src)
	report.PrintComparison(os.Stdout, selected)
	return nil
}
