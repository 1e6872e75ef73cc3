package cmd

import (
	"context"
	"errors"

	"github.com/go-kit/kit/log/level"
	"github.com/spf13/cobra"

	"github.com/Qalifah/freight/inmem"
	"github.com/Qalifah/freight/location"
	"github.com/Qalifah/freight/postgres"
)

var migrateSeed bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the trade-lane tables in the configured database",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateSeed, "seed", false, "load the demo data set after migrating")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if cfg.DatabaseURL == "" {
		return errors.New("migrate: --database-url or DATABASE_URL is required")
	}
	ctx := context.Background()
	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	level.Info(logger).Log("msg", "schema up to date")
	if !migrateSeed {
		return nil
	}

	if err := postgres.Load(ctx, db, postgres.Dataset{
		Points:     location.SamplePoints(),
		Containers: inmem.SampleContainers(),
		Legs:       inmem.SampleLegs(),
		DropFees:   inmem.SampleDropFees(),
	}); err != nil {
		return err
	}
	level.Info(logger).Log("msg", "demo data set loaded")
	return nil
}
