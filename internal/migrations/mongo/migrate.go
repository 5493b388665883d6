package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"deskbook/internal/bookings/repository"
	"deskbook/internal/migrations/mongo/validators"
	"deskbook/pkg/logger"
	"deskbook/pkg/model"
)

var (
	BookingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "desk_id", Value: 1},
			{Key: "date_from", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "date_from", Value: 1},
		}},
	}

	DesksIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "building_id", Value: 1},
			{Key: "floor", Value: 1},
		}},
	}

	// Expired locks are also swept on acquire; the TTL index removes the ones
	// nobody contends for again.
	LocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
)

type collectionDef struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func collections() map[string]collectionDef {
	return map[string]collectionDef{
		repository.BookingsCollection: {Indexes: BookingsIndexes, Validator: validators.BookingValidator},
		repository.DesksCollection:    {Indexes: DesksIndexes, Validator: validators.DeskValidator},
		repository.CountersCollection: {},
		repository.LocksCollection:    {Indexes: LocksIndexes},
	}
}

func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for name, def := range collections() {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if len(def.Indexes) == 0 {
			continue
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	log.Info("All Mongo migrations applied")
	return nil
}

// SeedDesks upserts desks by id; existing desks take the seeded values.
func SeedDesks(ctx context.Context, db *mongo.Database, desks []*model.Desk, log *logger.Logger) error {
	if len(desks) == 0 {
		return nil
	}

	writes := make([]mongo.WriteModel, 0, len(desks))
	for _, d := range desks {
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": d.ID}).
			SetReplacement(d).
			SetUpsert(true))
	}

	res, err := db.Collection(repository.DesksCollection).BulkWrite(ctx, writes)
	if err != nil {
		return fmt.Errorf("failed to seed desks: %w", err)
	}
	log.Info("Seeded desks", "upserted", res.UpsertedCount, "modified", res.ModifiedCount)
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection()
		if validator != nil {
			opts.SetValidator(validator)
		}
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	if validator == nil {
		return nil
	}
	log.Info("Collection exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
