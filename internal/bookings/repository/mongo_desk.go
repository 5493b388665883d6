package repository

import (
	"context"
	"errors"
	"fmt"

	bookingserrors "deskbook/internal/bookings/errors"
	"deskbook/pkg/config"
	"deskbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoDeskRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoDeskRepository(cfg *config.Config) DeskRepository {
	return &mongoDeskRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(DesksCollection),
	}
}

func (r *mongoDeskRepository) FindByID(ctx context.Context, id int64) (*model.Desk, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var desk model.Desk
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&desk); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find desk: %w", err)
	}
	return &desk, nil
}

func (r *mongoDeskRepository) List(ctx context.Context, filter model.DeskFilter) ([]*model.Desk, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{
		{Key: "building_id", Value: 1},
		{Key: "floor", Value: 1},
		{Key: "_id", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, deskFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list desks: %w", err)
	}
	defer cursor.Close(ctx)

	var desks []*model.Desk
	if err := cursor.All(ctx, &desks); err != nil {
		return nil, fmt.Errorf("failed to decode desks: %w", err)
	}
	return desks, nil
}

func deskFilter(f model.DeskFilter) bson.M {
	filter := bson.M{}
	if f.BuildingID != 0 {
		filter["building_id"] = f.BuildingID
	}
	if f.Floor != nil {
		filter["floor"] = *f.Floor
	}
	return filter
}
