package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vesselcad/pkg/standards/sqlitestore"
)

var importCmd = &cobra.Command{
	Use:   "import [table] [file.csv...]",
	Short: "Load standards tables from CSV files",
	Long: `Imports CSV rows into the standards database. The table is "flanges" or
"dimensions"; the CSV header names the columns.

Example:
  vesselcad import --db standards.db flanges en1092-1_pn16.csv`,
	Args: cobra.MinimumNArgs(2),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if dbPath == "" {
		return fmt.Errorf("import requires --db")
	}
	store, err := sqlitestore.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening standards database: %w", err)
	}
	defer store.Close()

	table := args[0]
	total := 0
	for _, path := range args[1:] {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		n, err := store.ImportCSV(ctx, table, f)
		f.Close()
		if err != nil {
			return fmt.Errorf("importing %s: %w", path, err)
		}
		logger.Info("imported table rows",
			zap.String("table", table),
			zap.String("file", path),
			zap.Int("rows", n))
		total += n
	}
	fmt.Printf("imported %d rows into %s\n", total, table)
	return nil
}
