package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

type Booking struct {
	ID        int64     `bson:"_id"`
	DeskID    int64     `bson:"desk_id"`
	UserID    int64     `bson:"user_id"`
	Dates     DateRange `bson:",inline"`
	CreatedAt time.Time `bson:"created_at"`
}

// CreateBookingRequest carries a reservation request as it arrives from the
// outside; dates stay raw strings so the booking engine owns their validation.
type CreateBookingRequest struct {
	DeskID   int64  `json:"deskId" validate:"required,gt=0"`
	UserID   int64  `json:"userId" validate:"required,gt=0"`
	DateFrom string `json:"dateFrom"`
	DateTo   string `json:"dateTo"`
}

// bookingWire lists every field name the surrounding system has used for a
// booking. The snake_case and "date" forms are read-only fallbacks.
type bookingWire struct {
	ID         int64   `json:"id"`
	DeskID     *int64  `json:"deskId,omitempty"`
	UserID     *int64  `json:"userId,omitempty"`
	DateFrom   *string `json:"dateFrom,omitempty"`
	DateTo     *string `json:"dateTo,omitempty"`
	LegacyDesk *int64  `json:"desk_id,omitempty"`
	LegacyUser *int64  `json:"user_id,omitempty"`
	LegacyFrom *string `json:"date,omitempty"`
	LegacyTo   *string `json:"date_to,omitempty"`
}

func (w bookingWire) resolve() (deskID, userID int64, from, to string) {
	deskID = firstInt(w.DeskID, w.LegacyDesk)
	userID = firstInt(w.UserID, w.LegacyUser)
	from = firstString(w.DateFrom, w.LegacyFrom)
	to = firstString(w.DateTo, w.LegacyTo)
	return
}

func (b Booking) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID       int64  `json:"id"`
		DeskID   int64  `json:"deskId"`
		UserID   int64  `json:"userId"`
		DateFrom string `json:"dateFrom"`
		DateTo   string `json:"dateTo"`
	}{
		ID:       b.ID,
		DeskID:   b.DeskID,
		UserID:   b.UserID,
		DateFrom: FormatDate(b.Dates.From),
		DateTo:   FormatDate(b.Dates.To),
	})
}

func (b *Booking) UnmarshalJSON(data []byte) error {
	var w bookingWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	deskID, userID, from, to := w.resolve()
	dates, err := ParseDateRange(from, to)
	if err != nil {
		return fmt.Errorf("booking %d: %w", w.ID, err)
	}
	*b = Booking{
		ID:     w.ID,
		DeskID: deskID,
		UserID: userID,
		Dates:  dates,
	}
	return nil
}

func (r *CreateBookingRequest) UnmarshalJSON(data []byte) error {
	var w bookingWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	r.DeskID, r.UserID, r.DateFrom, r.DateTo = w.resolve()
	return nil
}

// SortByFrom orders bookings by start date, then id, in place.
func SortByFrom(bookings []*Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		a, b := bookings[i], bookings[j]
		if !a.Dates.From.Equal(b.Dates.From) {
			return a.Dates.From.Before(b.Dates.From)
		}
		return a.ID < b.ID
	})
}

func firstInt(vals ...*int64) int64 {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return 0
}

func firstString(vals ...*string) string {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return ""
}
