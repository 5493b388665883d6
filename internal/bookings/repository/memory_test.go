package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	bookingserrors "deskbook/internal/bookings/errors"
	"deskbook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBooking(t *testing.T, deskID, userID int64, from, to string) *model.Booking {
	t.Helper()
	r, err := model.ParseDateRange(from, to)
	require.NoError(t, err)
	return &model.Booking{DeskID: deskID, UserID: userID, Dates: r}
}

func allowAll([]*model.Booking) error { return nil }

func refuseOverlap(candidate *model.Booking) AdmissionCheck {
	return func(existing []*model.Booking) error {
		for _, e := range existing {
			if e.Dates.Overlaps(candidate.Dates) {
				return bookingserrors.ErrDeskAlreadyBooked
			}
		}
		return nil
	}
}

func testStore() *MemoryStore {
	return NewMemoryStore(
		&model.Desk{ID: 1, BuildingID: 10, Floor: 1, Label: "A-1"},
		&model.Desk{ID: 2, BuildingID: 10, Floor: 2, Label: "A-2"},
		&model.Desk{ID: 3, BuildingID: 20, Floor: 1, Label: "B-1"},
	)
}

func TestMemory_InsertAssignsIDs(t *testing.T) {
	repo := testStore().Bookings()
	ctx := context.Background()

	first := newBooking(t, 1, 7, "2025-06-10", "2025-06-12")
	second := newBooking(t, 2, 7, "2025-06-10", "2025-06-12")
	require.NoError(t, repo.InsertIfAdmissible(ctx, first, allowAll))
	require.NoError(t, repo.InsertIfAdmissible(ctx, second, allowAll))

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.False(t, first.CreatedAt.IsZero())

	got, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Dates, got.Dates)
}

func TestMemory_CheckSeesDeskBookingsOnly(t *testing.T) {
	repo := testStore().Bookings()
	ctx := context.Background()

	require.NoError(t, repo.InsertIfAdmissible(ctx, newBooking(t, 1, 7, "2025-06-10", "2025-06-12"), allowAll))

	var seen []*model.Booking
	err := repo.InsertIfAdmissible(ctx, newBooking(t, 2, 7, "2025-06-10", "2025-06-12"), func(existing []*model.Booking) error {
		seen = existing
		return nil
	})
	require.NoError(t, err)
	assert.Empty(t, seen)
}

func TestMemory_RefusedInsertLeavesNoTrace(t *testing.T) {
	repo := testStore().Bookings()
	ctx := context.Background()

	require.NoError(t, repo.InsertIfAdmissible(ctx, newBooking(t, 1, 7, "2025-06-10", "2025-06-12"), allowAll))

	clash := newBooking(t, 1, 8, "2025-06-11", "2025-06-13")
	err := repo.InsertIfAdmissible(ctx, clash, refuseOverlap(clash))
	assert.ErrorIs(t, err, bookingserrors.ErrDeskAlreadyBooked)
	assert.Zero(t, clash.ID)

	bookings, err := repo.FindByDesk(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
}

func TestMemory_UnknownDesk(t *testing.T) {
	repo := testStore().Bookings()
	err := repo.InsertIfAdmissible(context.Background(), newBooking(t, 999, 7, "2025-06-10", "2025-06-12"), allowAll)
	assert.ErrorIs(t, err, bookingserrors.ErrNotFound)
}

func TestMemory_DeleteReturnsRemoved(t *testing.T) {
	repo := testStore().Bookings()
	ctx := context.Background()

	b := newBooking(t, 1, 7, "2025-06-10", "2025-06-12")
	require.NoError(t, repo.InsertIfAdmissible(ctx, b, allowAll))

	removed, err := repo.Delete(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, removed.ID)

	_, err = repo.Delete(ctx, b.ID)
	assert.ErrorIs(t, err, bookingserrors.ErrNotFound)
	_, err = repo.FindByID(ctx, b.ID)
	assert.ErrorIs(t, err, bookingserrors.ErrNotFound)
}

func TestMemory_FindByUserSorted(t *testing.T) {
	repo := testStore().Bookings()
	ctx := context.Background()

	require.NoError(t, repo.InsertIfAdmissible(ctx, newBooking(t, 1, 7, "2025-07-01", "2025-07-02"), allowAll))
	require.NoError(t, repo.InsertIfAdmissible(ctx, newBooking(t, 2, 7, "2025-06-01", "2025-06-02"), allowAll))
	require.NoError(t, repo.InsertIfAdmissible(ctx, newBooking(t, 3, 8, "2025-05-01", "2025-05-02"), allowAll))

	got, err := repo.FindByUser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2025-06-01", model.FormatDate(got[0].Dates.From))
	assert.Equal(t, "2025-07-01", model.FormatDate(got[1].Dates.From))
}

func TestMemory_ReturnedBookingsAreCopies(t *testing.T) {
	repo := testStore().Bookings()
	ctx := context.Background()

	b := newBooking(t, 1, 7, "2025-06-10", "2025-06-12")
	require.NoError(t, repo.InsertIfAdmissible(ctx, b, allowAll))
	b.UserID = 99

	got, err := repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.UserID)
}

func TestMemory_ConcurrentOverlappingInserts(t *testing.T) {
	repo := testStore().Bookings()
	ctx := context.Background()

	const workers = 32
	var (
		wg       sync.WaitGroup
		accepted int32
		refused  int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(user int64) {
			defer wg.Done()
			b := &model.Booking{DeskID: 1, UserID: user}
			b.Dates, _ = model.ParseDateRange("2025-06-10", "2025-06-12")
			err := repo.InsertIfAdmissible(ctx, b, refuseOverlap(b))
			switch {
			case err == nil:
				atomic.AddInt32(&accepted, 1)
			case errors.Is(err, bookingserrors.ErrDeskAlreadyBooked):
				atomic.AddInt32(&refused, 1)
			}
		}(int64(i + 1))
	}
	wg.Wait()

	assert.Equal(t, int32(1), accepted)
	assert.Equal(t, int32(workers-1), refused)
}

func TestMemoryDesks_List(t *testing.T) {
	desks := testStore().Desks()
	ctx := context.Background()

	all, err := desks.List(ctx, model.DeskFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{all[0].ID, all[1].ID, all[2].ID})

	floor := 1
	got, err := desks.List(ctx, model.DeskFilter{BuildingID: 10, Floor: &floor})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A-1", got[0].Label)

	_, err = desks.FindByID(ctx, 42)
	assert.ErrorIs(t, err, bookingserrors.ErrNotFound)
}

func TestDeskListQuery(t *testing.T) {
	query, args := deskListQuery(model.DeskFilter{})
	assert.Equal(t, "SELECT id, building_id, floor, label FROM desks ORDER BY building_id, floor, id", query)
	assert.Empty(t, args)

	floor := 3
	query, args = deskListQuery(model.DeskFilter{BuildingID: 5, Floor: &floor})
	assert.Contains(t, query, "WHERE building_id = $1 AND floor = $2")
	assert.Equal(t, []any{int64(5), 3}, args)
}

func TestLoadDeskSeed(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "desks.json")
	require.NoError(t, os.WriteFile(good, []byte(`[{"id":1,"buildingId":10,"floor":1,"label":"A-1"}]`), 0o600))
	desks, err := LoadDeskSeed(good)
	require.NoError(t, err)
	require.Len(t, desks, 1)
	assert.Equal(t, int64(10), desks[0].BuildingID)

	dup := filepath.Join(dir, "dup.json")
	require.NoError(t, os.WriteFile(dup, []byte(`[{"id":1},{"id":1}]`), 0o600))
	_, err = LoadDeskSeed(dup)
	assert.ErrorContains(t, err, "duplicate desk id 1")
}
