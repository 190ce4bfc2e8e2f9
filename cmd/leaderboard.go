package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ga2230/reefscout/internal/aggregator"
	"github.com/ga2230/reefscout/internal/model"
	"github.com/ga2230/reefscout/internal/ratings"
	"github.com/ga2230/reefscout/internal/report"
	"github.com/ga2230/reefscout/internal/storage"
)

// viewFlags are the aggregation settings shared by the read commands.
type viewFlags struct {
	sort           string
	asc            bool
	excludeDefense bool
	epa            bool
	search         string
	jsonOut        bool
}

func (v *viewFlags) bind(cmd *cobra.Command, withSort bool) {
	if withSort {
		cmd.Flags().StringVarP(&v.sort, "sort", "s", "overall", "metric to rank by (overall, total, auto, teleop, coral, accuracy, algae, l4..l1, net, processor, defence, epa, matches)")
		cmd.Flags().BoolVar(&v.asc, "asc", false, "sort ascending instead of best-first")
		cmd.Flags().StringVar(&v.search, "search", "", "only show teams whose number contains this text")
	}
	cmd.Flags().BoolVar(&v.excludeDefense, "exclude-defense", false, "drop matches where the robot played defence")
	cmd.Flags().BoolVar(&v.epa, "epa", false, "blend Statbotics EPA into auto, teleop and total (3:2 local to EPA)")
	cmd.Flags().BoolVar(&v.jsonOut, "json", false, "print JSON instead of a table")
}

func (v viewFlags) options() (aggregator.Options, error) {
	opts := aggregator.DefaultOptions()
	if v.sort != "" {
		k, err := model.ParseMetricKey(v.sort)
		if err != nil {
			return opts, err
		}
		opts.SortKey = k
	}
	opts.SortDescending = !v.asc
	opts.ExcludeDefense = v.excludeDefense
	opts.BlendExternal = v.epa
	opts.Search = v.search
	return opts, nil
}

// computeStats reads every record and aggregates them. Ratings are fetched
// when blending or when ranking by EPA.
func computeStats(ctx context.Context, db *storage.DB, opts aggregator.Options) ([]model.TeamStat, []model.MatchRecord, *ratings.Source, error) {
	records, err := db.ReadAll()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("read records: %w", err)
	}
	ext, src := loadRatings(ctx, opts.BlendExternal || opts.SortKey == model.MetricEPA)
	return aggregator.Aggregate(records, cfg.Teams, opts, ext), records, src, nil
}

func printRatingsStatus(w io.Writer, src *ratings.Source) {
	if src == nil {
		return
	}
	st, n, at := src.Status()
	report.PrintRatingsStatus(w, st, n, at)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var (
	lbView   viewFlags
	lbGroups string
)

var leaderboardCmd = &cobra.Command{
	Use:     "leaderboard",
	Aliases: []string{"lb"},
	Short:   "Rank every known team by averaged performance",
	Long: `Aggregate all stored records into per-team averages and print them ranked.

Teams with no scouted matches are listed with zeroed metrics. Use --groups to
limit the columns to Summary, Coral, Algae, Misc and/or API.`,
	Args: cobra.NoArgs,
	RunE: runLeaderboard,
}

func init() {
	lbView.bind(leaderboardCmd, true)
	leaderboardCmd.Flags().StringVar(&lbGroups, "groups", "", "comma-separated column groups to show (Summary,Coral,Algae,Misc,API)")
}

func runLeaderboard(cmd *cobra.Command, args []string) error {
	opts, err := lbView.options()
	if err != nil {
		return err
	}
	groups, err := report.ParseGroups(lbGroups)
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
	if lbView.jsonOut {
		return writeJSON(os.Stdout, stats)
	}
	printRatingsStatus(os.Stderr, src)
	if len(stats) == 0 {
		fmt.Fprintln(os.Stdout, "No teams match.")
		return nil
	}
	report.PrintLeaderboard(os.Stdout, stats, report.LeaderboardOptions{
		Groups:  groups,
		SortKey: opts.SortKey,
		Desc:    opts.SortDescending,
	})
	return nil
}
