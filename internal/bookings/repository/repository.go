package repository

import (
	"context"

	"deskbook/pkg/model"
)

const (
	BookingsCollection = "Bookings"
	DesksCollection    = "Desks"
	CountersCollection = "Counters"
	LocksCollection    = "Booking_locks"
)

// AdmissionCheck decides whether a booking may join a desk's current bookings.
// A non-nil error refuses the insert and is returned unchanged.
type AdmissionCheck func(existing []*model.Booking) error

type BookingRepository interface {
	FindByID(ctx context.Context, id int64) (*model.Booking, error)
	FindByDesk(ctx context.Context, deskID int64) ([]*model.Booking, error)
	FindByUser(ctx context.Context, userID int64) ([]*model.Booking, error)
	// InsertIfAdmissible reads the desk's bookings, runs check and inserts b
	// as one step that no concurrent insert on the same desk can interleave
	// with. On success b.ID and b.CreatedAt are set.
	InsertIfAdmissible(ctx context.Context, b *model.Booking, check AdmissionCheck) error
	// Delete removes the booking and returns what was removed.
	Delete(ctx context.Context, id int64) (*model.Booking, error)
	Ping(ctx context.Context) error
}

type DeskRepository interface {
	FindByID(ctx context.Context, id int64) (*model.Desk, error)
	List(ctx context.Context, filter model.DeskFilter) ([]*model.Desk, error)
}
