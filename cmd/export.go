package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ga2230/reefscout/internal/archive"
	"github.com/ga2230/reefscout/internal/model"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every stored record as a JSON array",
	Long: `Write all stored records, in insertion order, as an indented JSON array.
The output can be loaded back with 'reefscout import'. An --out path ending in
.zst or .gz is compressed.

Example:
  reefscout export --out backup.json.zst`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file path (default: stdout)")
}

func runExport(_ *cobra.Command, _ []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := db.ReadAll()
	if err != nil {
		return fmt.Errorf("read records: %w", err)
	}
	if records == nil {
		records = []model.MatchRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}

	if exportOut == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := archive.Write(exportOut, append(data, '\n')); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %d records to %s\n", len(records), exportOut)
	return nil
}
