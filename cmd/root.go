package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ga2230/reefscout/internal/config"
	"github.com/ga2230/reefscout/internal/logging"
	"github.com/ga2230/reefscout/internal/model"
	"github.com/ga2230/reefscout/internal/ratings"
	"github.com/ga2230/reefscout/internal/statbotics"
	"github.com/ga2230/reefscout/internal/storage"
)

var (
	dbPath    string
	teamsFlag string
	logLevel  string

	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "reefscout",
	Short: "FRC REEFSCAPE scouting statistics",
	Long: `Store match scouting records and rank teams by their averaged performance,
optionally blended with Statbotics EPA ratings.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) { _ = logger.Sync() },
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to SQLite database (default $SCOUT_DB or ~/.reefscout/scouting.db)")
	rootCmd.PersistentFlags().StringVar(&teamsFlag, "teams", "", "comma-separated known team list (default $SCOUT_TEAMS or the built-in district list)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default $LOG_LEVEL or info)")

	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(teamCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(mockCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(shellCmd)
}

// setup loads configuration, applies flag overrides and builds the logger.
func setup(cmd *cobra.Command, _ []string) error {
	cfg = config.Load()
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	dbPath = cfg.DBPath
	if teamsFlag != "" {
		if teams := config.ParseTeams(teamsFlag); len(teams) > 0 {
			cfg.Teams = teams
		}
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	l, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		return err
	}
	logger = l
	return nil
}

// openStore creates the database directory if needed and opens the store.
func openStore() (*storage.DB, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}

// newRatingsSource builds the Statbotics-backed source, with a Redis
// snapshot cache when REDIS_URL is set. The returned func releases Redis.
func newRatingsSource(ctx context.Context) (*ratings.Source, func()) {
	var cache ratings.Cache
	closeFn := func() {}
	if cfg.RedisURL != "" {
		client, err := ratings.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, ratings will not be cached", zap.Error(err))
		} else {
			cache = ratings.NewRedisCache(client, cfg.RatingsCacheTTL)
			closeFn = func() { client.Close() }
		}
	}
	client := statbotics.NewClient(cfg.StatboticsURL)
	return ratings.NewSource(client, cache, cfg.EPAYear, logger), closeFn
}

// loadRatings fetches external ratings when wanted, nil otherwise.
func loadRatings(ctx context.Context, want bool) (model.Ratings, *ratings.Source) {
	if !want {
		return nil, nil
	}
	src, closeFn := newRatingsSource(ctx)
	defer closeFn()
	return src.Get(ctx), src
}
