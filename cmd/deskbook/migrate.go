package main

import (
	"context"
	"fmt"
	"time"

	"deskbook/internal/bookings/repository"
	mongoMigration "deskbook/internal/migrations/mongo"
	postgresMigration "deskbook/internal/migrations/postgres"
	"deskbook/pkg/config"
	"deskbook/pkg/model"

	"github.com/spf13/cobra"
)

const (
	JobName          = "deskbook-migrate"
	migrationTimeout = 120 * time.Second
)

func newMigrateCmd() *cobra.Command {
	var seedPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create collections, tables and indexes for the configured storage driver",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), migrationTimeout)
			defer cancel()

			cfg := config.Load(JobName)
			defer cfg.GracefulShutdown()

			var seed []*model.Desk
			if seedPath != "" {
				var err error
				if seed, err = repository.LoadDeskSeed(seedPath); err != nil {
					return err
				}
			}

			cfg.Log.Info("Starting migration job", "storage_driver", cfg.StorageDriver)
			if err := migrate(ctx, cfg, seed); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			cfg.Log.Info("Migration completed successfully")
			return nil
		},
	}

	cmd.Flags().StringVar(&seedPath, "seed", "", "JSON file of desks to upsert after migrating")
	return cmd
}

func migrate(ctx context.Context, cfg *config.Config, seed []*model.Desk) error {
	switch cfg.StorageDriver {
	case config.DriverMongo:
		cfg.SetMongo()
		db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
		if err := mongoMigration.RunMigration(ctx, db, cfg.Log); err != nil {
			return err
		}
		return mongoMigration.SeedDesks(ctx, db, seed, cfg.Log)
	case config.DriverPostgres:
		cfg.SetPostgres()
		if err := postgresMigration.RunMigration(ctx, cfg.Client.Postgres, cfg.Log); err != nil {
			return err
		}
		return postgresMigration.SeedDesks(ctx, cfg.Client.Postgres, seed, cfg.Log)
	default:
		cfg.Log.Info("Nothing to migrate for storage driver", "storage_driver", cfg.StorageDriver)
		return nil
	}
}
