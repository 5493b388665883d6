package policy

import (
	"testing"
	"time"

	"deskbook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func booking(t *testing.T, id int64, from, to string) *model.Booking {
	t.Helper()
	r, err := model.ParseDateRange(from, to)
	require.NoError(t, err)
	return &model.Booking{ID: id, DeskID: 1, UserID: 1, Dates: r}
}

func dateRange(t *testing.T, from, to string) model.DateRange {
	t.Helper()
	r, err := model.ParseDateRange(from, to)
	require.NoError(t, err)
	return r
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

func ids(bookings []*model.Booking) []int64 {
	out := make([]int64, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, b.ID)
	}
	return out
}

func TestIsBookingAllowed(t *testing.T) {
	existing := []*model.Booking{
		booking(t, 1, "2025-06-10", "2025-06-12"),
		booking(t, 2, "2025-06-20", "2025-06-20"),
	}

	tests := []struct {
		name     string
		from, to string
		want     bool
	}{
		{"before everything", "2025-06-01", "2025-06-05", true},
		{"overlaps first", "2025-06-11", "2025-06-13", false},
		{"starts on first end", "2025-06-12", "2025-06-14", true},
		{"ends on first start", "2025-06-08", "2025-06-10", true},
		{"between", "2025-06-13", "2025-06-19", true},
		{"covers single day", "2025-06-18", "2025-06-22", false},
		{"same single day", "2025-06-20", "2025-06-20", false},
		{"adjacent to single day", "2025-06-20", "2025-06-23", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBookingAllowed(existing, dateRange(t, tt.from, tt.to)))
		})
	}
}

func TestIsBookingAllowed_EmptySet(t *testing.T) {
	assert.True(t, IsBookingAllowed(nil, dateRange(t, "2025-06-10", "2025-06-12")))
	assert.True(t, IsBookingAllowed([]*model.Booking{}, dateRange(t, "2025-06-10", "2025-06-10")))
}

func TestFirstConflict_PicksEarliest(t *testing.T) {
	existing := []*model.Booking{
		booking(t, 5, "2025-06-15", "2025-06-16"),
		booking(t, 4, "2025-06-10", "2025-06-11"),
	}

	c := FirstConflict(existing, dateRange(t, "2025-06-09", "2025-06-20"))
	require.NotNil(t, c)
	assert.Equal(t, int64(4), c.ID)
	assert.Nil(t, FirstConflict(existing, dateRange(t, "2025-06-11", "2025-06-15")))
}

func TestIsAvailableOn(t *testing.T) {
	existing := []*model.Booking{booking(t, 1, "2025-06-10", "2025-06-12")}

	assert.True(t, IsAvailableOn(existing, day(t, "2025-06-09")))
	assert.False(t, IsAvailableOn(existing, day(t, "2025-06-10")))
	assert.False(t, IsAvailableOn(existing, day(t, "2025-06-12")))
	assert.True(t, IsAvailableOn(existing, day(t, "2025-06-13")))

	first := IsAvailableOn(existing, day(t, "2025-06-11"))
	assert.Equal(t, first, IsAvailableOn(existing, day(t, "2025-06-11")))
}

func TestBookingsContaining(t *testing.T) {
	existing := []*model.Booking{
		booking(t, 3, "2025-06-12", "2025-06-14"),
		booking(t, 1, "2025-06-10", "2025-06-12"),
		booking(t, 2, "2025-06-15", "2025-06-15"),
	}

	got := BookingsContaining(existing, day(t, "2025-06-12"))
	assert.Equal(t, []int64{1, 3}, ids(got))

	again := BookingsContaining(existing, day(t, "2025-06-12"))
	assert.Equal(t, ids(got), ids(again))
	assert.Empty(t, BookingsContaining(existing, day(t, "2025-06-20")))
}

func TestBookingsFrom(t *testing.T) {
	existing := []*model.Booking{
		booking(t, 3, "2025-07-01", "2025-07-02"),
		booking(t, 1, "2025-06-01", "2025-06-30"),
		booking(t, 2, "2025-06-15", "2025-06-16"),
	}

	got := BookingsFrom(existing, day(t, "2025-06-15"))
	assert.Equal(t, []int64{2, 3}, ids(got))
}

func TestBookingsOverlapping(t *testing.T) {
	existing := []*model.Booking{
		booking(t, 1, "2025-06-01", "2025-06-05"),
		booking(t, 2, "2025-06-05", "2025-06-08"),
		booking(t, 3, "2025-06-10", "2025-06-12"),
	}

	got := BookingsOverlapping(existing, dateRange(t, "2025-06-08", "2025-06-11"))
	assert.Equal(t, []int64{3}, ids(got))

	got = BookingsOverlapping(existing, dateRange(t, "2025-06-04", "2025-06-06"))
	assert.Equal(t, []int64{1, 2}, ids(got))
}

func TestFilter_DeduplicatesAndDoesNotAlias(t *testing.T) {
	b := booking(t, 1, "2025-06-10", "2025-06-12")
	existing := []*model.Booking{b, b, nil}

	got := BookingsContaining(existing, day(t, "2025-06-11"))
	assert.Equal(t, []int64{1}, ids(got))

	got[0] = nil
	assert.NotNil(t, existing[0])
}
