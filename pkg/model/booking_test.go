package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBooking_MarshalJSON(t *testing.T) {
	b := Booking{ID: 7, DeskID: 1, UserID: 2, Dates: mustRange(t, "2025-06-10", "2025-06-12")}

	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"deskId":1,"userId":2,"dateFrom":"2025-06-10","dateTo":"2025-06-12"}`, string(data))
}

func TestBooking_UnmarshalJSON_FieldNames(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"canonical", `{"id":7,"deskId":1,"userId":2,"dateFrom":"2025-06-10","dateTo":"2025-06-12"}`},
		{"legacy", `{"id":7,"desk_id":1,"user_id":2,"date":"2025-06-10","date_to":"2025-06-12"}`},
		{"mixed", `{"id":7,"deskId":1,"user_id":2,"date":"2025-06-10","dateTo":"2025-06-12"}`},
		{"canonical wins", `{"id":7,"deskId":1,"desk_id":99,"userId":2,"dateFrom":"2025-06-10","date":"2020-01-01","dateTo":"2025-06-12"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b Booking
			require.NoError(t, json.Unmarshal([]byte(tt.body), &b))
			assert.Equal(t, int64(7), b.ID)
			assert.Equal(t, int64(1), b.DeskID)
			assert.Equal(t, int64(2), b.UserID)
			assert.Equal(t, "2025-06-10..2025-06-12", b.Dates.String())
		})
	}
}

func TestBooking_UnmarshalJSON_BadDates(t *testing.T) {
	var b Booking
	err := json.Unmarshal([]byte(`{"deskId":1,"userId":2,"dateFrom":"tomorrow","dateTo":"2025-06-12"}`), &b)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestCreateBookingRequest_KeepsRawDates(t *testing.T) {
	var req CreateBookingRequest
	require.NoError(t, json.Unmarshal([]byte(`{"desk_id":3,"user_id":4,"date":"not-a-date","date_to":"2025-06-02"}`), &req))
	assert.Equal(t, CreateBookingRequest{DeskID: 3, UserID: 4, DateFrom: "not-a-date", DateTo: "2025-06-02"}, req)
}

func TestSortByFrom(t *testing.T) {
	bookings := []*Booking{
		{ID: 3, Dates: mustRange(t, "2025-06-20", "2025-06-21")},
		{ID: 2, Dates: mustRange(t, "2025-06-10", "2025-06-11")},
		{ID: 1, Dates: mustRange(t, "2025-06-10", "2025-06-10")},
	}
	SortByFrom(bookings)

	ids := []int64{bookings[0].ID, bookings[1].ID, bookings[2].ID}
	assert.Equal(t, []int64{1, 2, 3}, ids)
}

func TestDeskFilter_Match(t *testing.T) {
	floor := 2
	d := &Desk{ID: 1, BuildingID: 10, Floor: 2}

	assert.True(t, DeskFilter{}.Match(d))
	assert.True(t, DeskFilter{BuildingID: 10, Floor: &floor}.Match(d))
	assert.False(t, DeskFilter{BuildingID: 11}.Match(d))
	other := 3
	assert.False(t, DeskFilter{Floor: &other}.Match(d))
}
