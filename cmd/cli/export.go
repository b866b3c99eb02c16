package main

import (
	"fmt"
	"os"

	"github.com/comparely/catalog-service/internal/database"
	"github.com/comparely/catalog-service/internal/export"
	"github.com/comparely/catalog-service/internal/types"
	"github.com/spf13/cobra"
)

var exportOut string

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog to an Excel workbook",
	Long: `Write every category and its embedded products to an .xlsx workbook with one
sheet for categories and one for products.`,
	Example: `  catalog export --out catalog.xlsx`,
	Args:    cobra.NoArgs,
	RunE:    runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportOut, "out", "catalog.xlsx", "Output file")
}

func runExport(cmd *cobra.Command, args []string) error {
	if err := requireConfig(cmd); err != nil {
		return err
	}
	ctx := cmd.Context()

	store, _, err := openStores(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	docs, err := store.Find(ctx, types.Filter{})
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}

	f, err := os.Create(exportOut)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", exportOut, err)
	}
	defer f.Close()

	summary, err := export.WriteWorkbook(f, docs)
	if err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	logger.Info().
		Str("file", exportOut).
		Int("categories", summary.Categories).
		Int("products", summary.Products).
		Msg("Catalog exported")
	return nil
}
