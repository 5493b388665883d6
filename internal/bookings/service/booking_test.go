package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	bookingserrors "deskbook/internal/bookings/errors"
	"deskbook/internal/bookings/events"
	"deskbook/internal/bookings/repository"
	"deskbook/internal/bookings/validator"
	"deskbook/pkg/logger"
	"deskbook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// fakeBookingRepository lets a test override single calls.
type fakeBookingRepository struct {
	repository.BookingRepository
	insertFunc func(ctx context.Context, b *model.Booking, check repository.AdmissionCheck) error
	deleteFunc func(ctx context.Context, id int64) (*model.Booking, error)
}

func (f *fakeBookingRepository) InsertIfAdmissible(ctx context.Context, b *model.Booking, check repository.AdmissionCheck) error {
	return f.insertFunc(ctx, b, check)
}

func (f *fakeBookingRepository) Delete(ctx context.Context, id int64) (*model.Booking, error) {
	return f.deleteFunc(ctx, id)
}

func testDesks() []*model.Desk {
	return []*model.Desk{
		{ID: 1, BuildingID: 10, Floor: 1, Label: "1A"},
		{ID: 2, BuildingID: 10, Floor: 2, Label: "2A"},
	}
}

func newTestService(t *testing.T, opts ...Option) (BookingService, *recordingPublisher) {
	t.Helper()
	store := repository.NewMemoryStore(testDesks()...)
	pub := &recordingPublisher{}
	opts = append([]Option{WithClock(fixedClock), WithPublisher(pub)}, opts...)
	svc := NewBookingService(store.Bookings(), store.Desks(), validator.NewBookingValidator(logger.Discard()), logger.Discard(), opts...)
	return svc, pub
}

func TestAddBooking_FailureOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		deskID   int64
		from, to string
		want     error
	}{
		{"malformed date beats unknown desk", 999, "2025-13-01", "2025-06-02", bookingserrors.ErrInvalidDateFormat},
		{"malformed to", 1, "2025-06-10", "June 12", bookingserrors.ErrInvalidDateFormat},
		{"reversed beats past", 999, "2025-05-10", "2025-05-01", bookingserrors.ErrInvalidDateRange},
		{"past beats unknown desk", 999, "2025-05-31", "2025-06-02", bookingserrors.ErrDateInPast},
		{"unknown desk", 999, "2025-06-10", "2025-06-12", bookingserrors.ErrDeskNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddBooking(ctx, tt.deskID, 7, tt.from, tt.to)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAddBooking_FormatErrorCarriesFields(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AddBooking(context.Background(), 1, 7, "bad", "2025-06-02")
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "dateFrom", verrs[0].Field)
}

func TestAddBooking_TodayIsAllowed(t *testing.T) {
	svc, _ := newTestService(t)

	b, err := svc.AddBooking(context.Background(), 1, 7, "2025-06-01", "2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, int64(1), b.ID)
	assert.Equal(t, "2025-06-01..2025-06-01", b.Dates.String())
}

func TestAddBooking_TodayFollowsLocation(t *testing.T) {
	// 23:30 UTC on May 31 is already June 1 in Tokyo.
	late := time.Date(2025, 5, 31, 23, 30, 0, 0, time.UTC)
	tokyo := time.FixedZone("JST", 9*3600)
	ctx := context.Background()

	utc, _ := newTestService(t, WithClock(func() time.Time { return late }))
	_, err := utc.AddBooking(ctx, 1, 7, "2025-05-31", "2025-05-31")
	require.NoError(t, err)

	jst, _ := newTestService(t, WithClock(func() time.Time { return late }), WithLocation(tokyo))
	_, err = jst.AddBooking(ctx, 1, 7, "2025-05-31", "2025-05-31")
	assert.ErrorIs(t, err, bookingserrors.ErrDateInPast)
}

func TestAddBooking_OverlapRules(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddBooking(ctx, 1, 7, "2025-06-10", "2025-06-12")
	require.NoError(t, err)

	tests := []struct {
		name     string
		deskID   int64
		from, to string
		wantErr  bool
	}{
		{"overlapping", 1, "2025-06-11", "2025-06-15", true},
		{"identical", 1, "2025-06-10", "2025-06-12", true},
		{"inside", 1, "2025-06-11", "2025-06-11", true},
		{"other desk", 2, "2025-06-10", "2025-06-12", false},
		{"starts on last day", 1, "2025-06-12", "2025-06-14", false},
		{"ends on first day", 1, "2025-06-08", "2025-06-10", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddBooking(ctx, tt.deskID, 8, tt.from, tt.to)
			if tt.wantErr {
				assert.ErrorIs(t, err, bookingserrors.ErrDeskAlreadyBooked)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCancelBooking_FreesDates(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	b, err := svc.AddBooking(ctx, 1, 7, "2025-06-10", "2025-06-12")
	require.NoError(t, err)

	require.NoError(t, svc.CancelBooking(ctx, b.ID))
	_, err = svc.GetBooking(ctx, b.ID)
	assert.ErrorIs(t, err, bookingserrors.ErrBookingNotFound)

	again, err := svc.AddBooking(ctx, 1, 8, "2025-06-10", "2025-06-12")
	require.NoError(t, err)
	assert.NotEqual(t, b.ID, again.ID)

	assert.Equal(t, []string{events.TypeBookingCreated, events.TypeBookingCancelled, events.TypeBookingCreated}, pub.types())
}

func TestCancelBooking_Unknown(t *testing.T) {
	svc, pub := newTestService(t)

	err := svc.CancelBooking(context.Background(), 42)
	assert.ErrorIs(t, err, bookingserrors.ErrBookingNotFound)
	assert.Empty(t, pub.types())
}

func TestReadQueries(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, r := range [][2]string{
		{"2025-06-20", "2025-06-21"},
		{"2025-06-10", "2025-06-12"},
		{"2025-06-12", "2025-06-14"},
	} {
		_, err := svc.AddBooking(ctx, 1, 7, r[0], r[1])
		require.NoError(t, err)
	}

	available, err := svc.IsAvailableOn(ctx, 1, "2025-06-11")
	require.NoError(t, err)
	assert.False(t, available)

	available, err = svc.IsAvailableOn(ctx, 1, "2025-06-15")
	require.NoError(t, err)
	assert.True(t, available)

	on, err := svc.BookingsOn(ctx, 1, "2025-06-12")
	require.NoError(t, err)
	assert.Len(t, on, 2)
	assert.Equal(t, "2025-06-10..2025-06-12", on[0].Dates.String())

	overlapping, err := svc.BookingsOverlapping(ctx, 1, "2025-06-14", "2025-06-20")
	require.NoError(t, err)
	assert.Len(t, overlapping, 0)

	overlapping, err = svc.BookingsOverlapping(ctx, 1, "2025-06-13", "2025-06-19")
	require.NoError(t, err)
	assert.Len(t, overlapping, 1)

	upcoming, err := svc.UpcomingForDesk(ctx, 1, "2025-06-12")
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, "2025-06-12..2025-06-14", upcoming[0].Dates.String())
	assert.Equal(t, "2025-06-20..2025-06-21", upcoming[1].Dates.String())

	all, err := svc.ListForDesk(ctx, 1)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2025-06-10..2025-06-12", all[0].Dates.String())

	mine, err := svc.ListForUser(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, mine, 3)

	none, err := svc.ListForUser(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReadQueries_Errors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.IsAvailableOn(ctx, 999, "2025-06-11")
	assert.ErrorIs(t, err, bookingserrors.ErrDeskNotFound)

	_, err = svc.IsAvailableOn(ctx, 1, "11/06/2025")
	assert.ErrorIs(t, err, bookingserrors.ErrInvalidDateFormat)

	_, err = svc.BookingsOverlapping(ctx, 1, "2025-06-20", "2025-06-10")
	assert.ErrorIs(t, err, bookingserrors.ErrInvalidDateRange)

	_, err = svc.UpcomingForDesk(ctx, 999, "2025-06-01")
	assert.ErrorIs(t, err, bookingserrors.ErrDeskNotFound)

	_, err = svc.ListForDesk(ctx, 999)
	assert.ErrorIs(t, err, bookingserrors.ErrDeskNotFound)
}

func TestListDesks(t *testing.T) {
	svc, _ := newTestService(t)
	floor := 2

	desks, err := svc.ListDesks(context.Background(), model.DeskFilter{BuildingID: 10, Floor: &floor})
	require.NoError(t, err)
	require.Len(t, desks, 1)
	assert.Equal(t, int64(2), desks[0].ID)
}

func TestAddBooking_ConcurrentOverlapping(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	const workers = 16
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		refused  int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(user int64) {
			defer wg.Done()
			_, err := svc.AddBooking(ctx, 1, user, "2025-06-10", "2025-06-12")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, bookingserrors.ErrDeskAlreadyBooked):
				refused++
			}
		}(int64(i + 1))
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	assert.Equal(t, workers-1, refused)
}

func TestAddBooking_PersistenceFailure(t *testing.T) {
	store := repository.NewMemoryStore(testDesks()...)
	storageErr := errors.New("connection reset")
	repo := &fakeBookingRepository{
		insertFunc: func(context.Context, *model.Booking, repository.AdmissionCheck) error {
			return storageErr
		},
	}
	pub := &recordingPublisher{}
	svc := NewBookingService(repo, store.Desks(), validator.NewBookingValidator(logger.Discard()), logger.Discard(),
		WithClock(fixedClock), WithPublisher(pub))

	_, err := svc.AddBooking(context.Background(), 1, 7, "2025-06-10", "2025-06-12")
	assert.ErrorIs(t, err, bookingserrors.ErrPersistenceFailure)
	assert.ErrorIs(t, err, storageErr)
	assert.Empty(t, pub.types())
}

func TestAddBooking_DeskBusyPassesThrough(t *testing.T) {
	store := repository.NewMemoryStore(testDesks()...)
	repo := &fakeBookingRepository{
		insertFunc: func(context.Context, *model.Booking, repository.AdmissionCheck) error {
			return bookingserrors.ErrDeskBusy
		},
	}
	svc := NewBookingService(repo, store.Desks(), validator.NewBookingValidator(logger.Discard()), logger.Discard(),
		WithClock(fixedClock))

	_, err := svc.AddBooking(context.Background(), 1, 7, "2025-06-10", "2025-06-12")
	assert.ErrorIs(t, err, bookingserrors.ErrDeskBusy)
	assert.NotErrorIs(t, err, bookingserrors.ErrPersistenceFailure)
}

func TestCancelBooking_PersistenceFailure(t *testing.T) {
	store := repository.NewMemoryStore(testDesks()...)
	repo := &fakeBookingRepository{
		deleteFunc: func(context.Context, int64) (*model.Booking, error) {
			return nil, errors.New("timeout")
		},
	}
	svc := NewBookingService(repo, store.Desks(), validator.NewBookingValidator(logger.Discard()), logger.Discard())

	err := svc.CancelBooking(context.Background(), 1)
	assert.ErrorIs(t, err, bookingserrors.ErrPersistenceFailure)
}

func TestPublishFailureIsNotReturned(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc, _ := newTestService(t, WithPublisher(pub))

	b, err := svc.AddBooking(context.Background(), 1, 7, "2025-06-10", "2025-06-12")
	require.NoError(t, err)
	require.Len(t, pub.events, 1)

	e := pub.events[0]
	assert.Equal(t, events.TypeBookingCreated, e.Type)
	assert.Equal(t, b.ID, e.BookingID)
	assert.Equal(t, "2025-06-10", e.DateFrom)
	assert.Equal(t, fixedNow, e.OccurredAt)
}
