package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ga2230/reefscout/internal/archive"
)

var importCmd = &cobra.Command{
	Use:   "import <file | url | ->",
	Short: "Replace the store with records from a JSON export",
	Long: `Read a JSON array of records (as written by 'reefscout export' or the scouting
form) and replace the whole store with it. Every record is validated first;
if any record is invalid nothing is changed. Use "-" to read from stdin.
Files or URLs ending in .zst, .gz or .bz2 are decompressed first.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := archive.Read(args[0])
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Import(data); err != nil {
		return fmt.Errorf("import %s: %w", args[0], err)
	}
	ov, err := db.Overview()
	if err != nil {
		return fmt.Errorf("get overview: %w", err)
	}
	logger.Info("store imported", zap.String("source", args[0]), zap.Int("records", ov.TotalRecords))
	fmt.Fprintf(os.Stdout, "Imported %d records for %d teams.\n", ov.TotalRecords, ov.UniqueTeams)
	return nil
}
