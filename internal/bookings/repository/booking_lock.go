package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	bookingserrors "deskbook/internal/bookings/errors"
	"deskbook/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	lockAttempts = 5
	lockBackoff  = 25 * time.Millisecond
)

type BookingLock struct {
	ID        string    `bson:"_id"`
	DeskID    int64     `bson:"desk_id"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

// BookingLockRepository holds one advisory lock document per desk. The
// unique _id makes a second insert fail with a duplicate key error.
type BookingLockRepository interface {
	// Acquire retries while the desk is held and gives up with ErrDeskBusy.
	// The returned func releases the lock.
	Acquire(ctx context.Context, deskID int64) (func(), error)
}

type mongoBookingLockRepository struct {
	collection *mongo.Collection
	ttl        time.Duration
	log        *logger.Logger
}

func NewBookingLockRepository(db *mongo.Database, ttl time.Duration, log *logger.Logger) BookingLockRepository {
	return &mongoBookingLockRepository{
		collection: db.Collection(LocksCollection),
		ttl:        ttl,
		log:        log,
	}
}

func lockID(deskID int64) string {
	return "desk_lock_" + strconv.FormatInt(deskID, 10)
}

func (r *mongoBookingLockRepository) Acquire(ctx context.Context, deskID int64) (func(), error) {
	id := lockID(deskID)

	for attempt := 1; ; attempt++ {
		now := time.Now().UTC()
		_, err := r.collection.InsertOne(ctx, BookingLock{
			ID:        id,
			DeskID:    deskID,
			ExpiresAt: now.Add(r.ttl),
			CreatedAt: now,
		})
		if err == nil {
			return func() { r.release(id) }, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("failed to acquire desk lock: %w", err)
		}

		// A holder that died leaves its lock behind until the TTL monitor runs.
		if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "expires_at": bson.M{"$lt": now}}); err != nil {
			r.log.Warn("Failed to clear expired desk lock", "lock_id", id, "error", err)
		}

		if attempt == lockAttempts {
			return nil, fmt.Errorf("%w: desk %d", bookingserrors.ErrDeskBusy, deskID)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * lockBackoff):
		}
	}
}

// release runs on its own context so a cancelled request still frees the desk.
func (r *mongoBookingLockRepository) release(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		r.log.Warn("Failed to release desk lock", "lock_id", id, "error", err)
	}
}
