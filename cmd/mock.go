package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ga2230/reefscout/internal/mock"
)

var (
	mockSeed  int64
	mockMin   int
	mockMax   int
	mockForce bool
	mockNow   int64
)

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Fill the store with generated records for every known team",
	Long: `Generate plausible scouting records for each known team and replace the store
with them. Teams get a random skill tier so the leaderboard has some spread.
The same --seed always produces the same records: timestamps then count back
from a fixed base time unless --now (unix milliseconds) names another.`,
	Args: cobra.NoArgs,
	RunE: runMock,
}

func init() {
	def := mock.DefaultOptions()
	mockCmd.Flags().Int64Var(&mockSeed, "seed", 0, "random seed (default: current time)")
	mockCmd.Flags().IntVar(&mockMin, "min", def.MinMatches, "minimum matches per team")
	mockCmd.Flags().IntVar(&mockMax, "max", def.MaxMatches, "maximum matches per team")
	mockCmd.Flags().Int64Var(&mockNow, "now", 0, "timestamp of each team's latest match, unix ms (default: current time, or a fixed time with --seed)")
	mockCmd.Flags().BoolVarP(&mockForce, "force", "f", false, "overwrite a store that already has records")
}

func runMock(cmd *cobra.Command, args []string) error {
	if mockMin < 0 || mockMax < mockMin {
		return fmt.Errorf("invalid match range %d..%d", mockMin, mockMax)
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if !mockForce {
		ov, err := db.Overview()
		if err != nil {
			return fmt.Errorf("get overview: %w", err)
		}
		if ov.TotalRecords > 0 {
			fmt.Fprintf(os.Stderr, "The store already holds %d records; mock data would replace them.\n", ov.TotalRecords)
			fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
			return nil
		}
	}

	seed := mockSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	opts := mock.DefaultOptions()
	if mockSeed != 0 {
		opts = mock.SeededOptions()
	}
	if mockNow != 0 {
		opts.Now = time.UnixMilli(mockNow)
	}
	opts.MinMatches, opts.MaxMatches = mockMin, mockMax

	records := mock.New(seed).Records(cfg.Teams, opts)
	if err := db.OverwriteAll(records); err != nil {
		return fmt.Errorf("store mock records: %w", err)
	}
	logger.Info("mock data generated", zap.Int64("seed", seed), zap.Int("records", len(records)))
	fmt.Fprintf(os.Stdout, "Generated %d records for %d teams (seed %d).\n", len(records), len(cfg.Teams), seed)
	return nil
}
