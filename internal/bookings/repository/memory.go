package repository

import (
	"context"
	"sync"
	"time"

	bookingserrors "deskbook/internal/bookings/errors"
	"deskbook/pkg/model"
)

// MemoryStore keeps desks and bookings in process. One mutex covers every
// booking write, which makes InsertIfAdmissible trivially atomic.
type MemoryStore struct {
	mu       sync.RWMutex
	desks    map[int64]*model.Desk
	bookings map[int64]*model.Booking
	nextID   int64
	now      func() time.Time
}

func NewMemoryStore(desks ...*model.Desk) *MemoryStore {
	s := &MemoryStore{
		desks:    make(map[int64]*model.Desk, len(desks)),
		bookings: make(map[int64]*model.Booking),
		now:      time.Now,
	}
	for _, d := range desks {
		c := *d
		s.desks[d.ID] = &c
	}
	return s
}

// Bookings and Desks expose the store through the repository contracts.
func (s *MemoryStore) Bookings() BookingRepository { return memoryBookings{s} }

func (s *MemoryStore) Desks() DeskRepository { return memoryDesks{s} }

type memoryBookings struct{ s *MemoryStore }

func copyBooking(b *model.Booking) *model.Booking {
	c := *b
	return &c
}

func (r memoryBookings) FindByID(_ context.Context, id int64) (*model.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	return copyBooking(b), nil
}

func (r memoryBookings) FindByDesk(_ context.Context, deskID int64) ([]*model.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.selectLocked(func(b *model.Booking) bool { return b.DeskID == deskID }), nil
}

func (r memoryBookings) FindByUser(_ context.Context, userID int64) ([]*model.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.selectLocked(func(b *model.Booking) bool { return b.UserID == userID }), nil
}

func (s *MemoryStore) selectLocked(keep func(*model.Booking) bool) []*model.Booking {
	var out []*model.Booking
	for _, b := range s.bookings {
		if keep(b) {
			out = append(out, copyBooking(b))
		}
	}
	model.SortByFrom(out)
	return out
}

func (r memoryBookings) InsertIfAdmissible(ctx context.Context, b *model.Booking, check AdmissionCheck) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.desks[b.DeskID]; !ok {
		return bookingserrors.ErrNotFound
	}

	existing := r.s.selectLocked(func(e *model.Booking) bool { return e.DeskID == b.DeskID })
	if err := check(existing); err != nil {
		return err
	}

	r.s.nextID++
	b.ID = r.s.nextID
	b.CreatedAt = r.s.now().UTC()
	r.s.bookings[b.ID] = copyBooking(b)
	return nil
}

func (r memoryBookings) Delete(_ context.Context, id int64) (*model.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	delete(r.s.bookings, id)
	return b, nil
}

func (r memoryBookings) Ping(context.Context) error { return nil }

type memoryDesks struct{ s *MemoryStore }

func (r memoryDesks) FindByID(_ context.Context, id int64) (*model.Desk, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	d, ok := r.s.desks[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	c := *d
	return &c, nil
}

func (r memoryDesks) List(_ context.Context, filter model.DeskFilter) ([]*model.Desk, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*model.Desk
	for _, d := range r.s.desks {
		if filter.Match(d) {
			c := *d
			out = append(out, &c)
		}
	}
	sortDesks(out)
	return out, nil
}
