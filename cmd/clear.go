package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var clearForce bool

// clearCmd removes every stored record.
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every stored scouting record",
	Long:  "Permanently delete all match records in the store. Export first if you want a backup.",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func init() {
	clearCmd.Flags().BoolVarP(&clearForce, "force", "f", false, "skip confirmation prompt")
}

func runClear(cmd *cobra.Command, args []string) error {
	if !clearForce {
		fmt.Fprintf(os.Stderr, "This will permanently delete every record in: %s\n", dbPath)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Clear(); err != nil {
		return err
	}
	logger.Info("store cleared")
	fmt.Fprintf(os.Stdout, "Cleared: %s\n", dbPath)
	return nil
}
