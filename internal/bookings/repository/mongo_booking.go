package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "deskbook/internal/bookings/errors"
	"deskbook/pkg/config"
	mongotx "deskbook/pkg/db/mongo"
	"deskbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var sortByFrom = bson.D{{Key: "date_from", Value: 1}, {Key: "_id", Value: 1}}

type mongoBookingRepository struct {
	cfg        *config.Config
	client     *mongo.Client
	collection *mongo.Collection
	counters   CounterRepository
	locks      BookingLockRepository
	txManager  mongotx.TransactionManager
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		client:     cfg.Client.Mongo,
		collection: db.Collection(BookingsCollection),
		counters:   NewCounterRepository(db),
		locks:      NewBookingLockRepository(db, cfg.BookingLockTTL, cfg.Log),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// A SessionContext is returned unchanged with a no-op cancel, since wrapping
// it would detach the operation from the transaction.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id int64) (*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var booking model.Booking
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindByDesk(ctx context.Context, deskID int64) ([]*model.Booking, error) {
	return r.find(ctx, bson.M{"desk_id": deskID})
}

func (r *mongoBookingRepository) FindByUser(ctx context.Context, userID int64) ([]*model.Booking, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

func (r *mongoBookingRepository) find(ctx context.Context, filter bson.M) ([]*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(sortByFrom))
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

// InsertIfAdmissible serializes writers on the desk with an advisory lock
// document, then reads, checks and inserts inside one transaction.
func (r *mongoBookingRepository) InsertIfAdmissible(ctx context.Context, b *model.Booking, check AdmissionCheck) error {
	release, err := r.locks.Acquire(ctx, b.DeskID)
	if err != nil {
		return err
	}
	defer release()

	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	return r.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existing, err := r.FindByDesk(sessCtx, b.DeskID)
		if err != nil {
			return err
		}
		if err := check(existing); err != nil {
			return err
		}

		id, err := r.counters.Next(sessCtx, BookingsCollection)
		if err != nil {
			return err
		}

		b.ID = id
		b.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
		if _, err := r.collection.InsertOne(sessCtx, b); err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}
		return nil
	})
}

func (r *mongoBookingRepository) Delete(ctx context.Context, id int64) (*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	var removed model.Booking
	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&removed)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete booking: %w", err)
	}

	return &removed, nil
}

func (r *mongoBookingRepository) Ping(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, r.cfg.MongoConnTimeout)
	defer cancel()
	return r.client.Ping(ctx, readpref.Primary())
}
