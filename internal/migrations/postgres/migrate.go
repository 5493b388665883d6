package postgres

import (
	"context"
	"fmt"

	"deskbook/pkg/logger"
	"deskbook/pkg/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Statements are idempotent and run in order.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS desks (
		id          BIGINT PRIMARY KEY CHECK (id > 0),
		building_id BIGINT NOT NULL,
		floor       INTEGER NOT NULL,
		label       TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS desks_building_floor_idx ON desks (building_id, floor)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id         BIGSERIAL PRIMARY KEY,
		desk_id    BIGINT NOT NULL REFERENCES desks (id),
		user_id    BIGINT NOT NULL CHECK (user_id > 0),
		date_from  DATE NOT NULL,
		date_to    DATE NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT bookings_range_chk CHECK (date_from <= date_to)
	)`,
	`CREATE INDEX IF NOT EXISTS bookings_desk_from_idx ON bookings (desk_id, date_from)`,
	`CREATE INDEX IF NOT EXISTS bookings_user_from_idx ON bookings (user_id, date_from)`,
}

const upsertDesk = `INSERT INTO desks (id, building_id, floor, label) VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET building_id = EXCLUDED.building_id, floor = EXCLUDED.floor, label = EXCLUDED.label`

func RunMigration(ctx context.Context, pool *pgxpool.Pool, log *logger.Logger) error {
	log.Info("Running Postgres migrations", "statements", len(schema))

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i, stmt := range schema {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration statement %d failed: %w", i+1, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}

	log.Info("All Postgres migrations applied")
	return nil
}

// SeedDesks upserts desks by id in one round trip.
func SeedDesks(ctx context.Context, pool *pgxpool.Pool, desks []*model.Desk, log *logger.Logger) error {
	if len(desks) == 0 {
		return nil
	}

	if err := pool.SendBatch(ctx, seedBatch(desks)).Close(); err != nil {
		return fmt.Errorf("failed to seed desks: %w", err)
	}
	log.Info("Seeded desks", "count", len(desks))
	return nil
}

func seedBatch(desks []*model.Desk) *pgx.Batch {
	batch := &pgx.Batch{}
	for _, d := range desks {
		batch.Queue(upsertDesk, d.ID, d.BuildingID, d.Floor, d.Label)
	}
	return batch
}
