package main

import (
	"fmt"

	"github.com/comparely/catalog-service/internal/database"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down|version]",
	Short: "Manage the database schema",
	Example: `  catalog migrate
  catalog migrate down
  catalog migrate version`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"up", "down", "version"},
	RunE:      runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if err := requireConfig(cmd); err != nil {
		return err
	}
	if cfg.Database.Driver != "postgres" {
		return fmt.Errorf("migrations need the postgres driver, not %q", cfg.Database.Driver)
	}
	ctx := cmd.Context()
	url := cfg.Database.URL

	action := "up"
	if len(args) == 1 {
		action = args[0]
	}
	switch action {
	case "up":
		if err := database.Migrate(ctx, url); err != nil {
			return err
		}
	case "down":
		if err := database.Rollback(ctx, url); err != nil {
			return err
		}
	case "version":
	default:
		return fmt.Errorf("unknown migrate action %q", action)
	}

	version, err := database.MigrationVersion(ctx, url)
	if err != nil {
		return err
	}
	fmt.Printf("schema version: %d\n", version)
	return nil
}
