package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ga2230/reefscout/internal/aggregator"
	"github.com/ga2230/reefscout/internal/report"
)

var teamView viewFlags

var teamCmd = &cobra.Command{
	Use:   "team <team-number>",
	Short: "Show one team's averages, capabilities and match history",
	Args:  cobra.ExactArgs(1),
	RunE:  runTeam,
}

func init() {
	teamView.bind(teamCmd, false)
}

func runTeam(cmd *cobra.Command, args []string) error {
	team := args[0]
	if !isKnownTeam(team) {
		return fmt.Errorf("team %s is not in the known team list", team)
	}
	opts, err := teamView.options()
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	stats, records, src, err := computeStats(cmd.Context(), db, opts)
	if err != nil {
		return err
	}
	detail := aggregator.Detail(team, records, aggregator.Find(stats, team))
	if teamView.jsonOut {
		return writeJSON(os.Stdout, detail)
	}
	printRatingsStatus(os.Stderr, src)
	report.PrintTeamDetail(os.Stdout, detail)
	return nil
}

func isKnownTeam(team string) bool {
	for _, t := range cfg.Teams {
		if t == team {
			return true
		}
	}
	return false
}
