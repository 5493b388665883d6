package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CounterRepository hands out increasing int64 ids per sequence name.
type CounterRepository interface {
	Next(ctx context.Context, name string) (int64, error)
}

type mongoCounterRepository struct {
	collection *mongo.Collection
}

func NewCounterRepository(db *mongo.Database) CounterRepository {
	return &mongoCounterRepository{collection: db.Collection(CountersCollection)}
}

func (r *mongoCounterRepository) Next(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s id: %w", name, err)
	}
	return counter.Seq, nil
}
