// Package policy decides whether a desk can take a new booking and answers the
// read-only availability questions asked by the UI. It works on whatever
// booking set the caller hands it and never touches storage.
package policy

import (
	"time"

	"deskbook/pkg/model"
)

// IsBookingAllowed reports whether candidate can be added next to existing.
// Adjacent ranges are admissible.
func IsBookingAllowed(existing []*model.Booking, candidate model.DateRange) bool {
	return FirstConflict(existing, candidate) == nil
}

// FirstConflict returns the earliest-starting booking whose range overlaps
// candidate, or nil.
func FirstConflict(existing []*model.Booking, candidate model.DateRange) *model.Booking {
	var conflict *model.Booking
	for _, b := range existing {
		if b == nil || !b.Dates.Overlaps(candidate) {
			continue
		}
		if conflict == nil || b.Dates.From.Before(conflict.Dates.From) {
			conflict = b
		}
	}
	return conflict
}

// IsAvailableOn reports whether no booking holds the desk on date.
func IsAvailableOn(bookings []*model.Booking, date time.Time) bool {
	for _, b := range bookings {
		if b != nil && b.Dates.Contains(date) {
			return false
		}
	}
	return true
}

// BookingsContaining returns the bookings whose range includes date, ordered by
// start date.
func BookingsContaining(bookings []*model.Booking, date time.Time) []*model.Booking {
	return filter(bookings, func(b *model.Booking) bool {
		return b.Dates.Contains(date)
	})
}

// BookingsFrom returns the bookings starting on or after date, ordered by start
// date. Used for "upcoming" views.
func BookingsFrom(bookings []*model.Booking, date time.Time) []*model.Booking {
	date = model.DateOf(date)
	return filter(bookings, func(b *model.Booking) bool {
		return !b.Dates.From.Before(date)
	})
}

// BookingsOverlapping returns the bookings that overlap period, ordered by
// start date. Bookings merely adjacent to period are left out.
func BookingsOverlapping(bookings []*model.Booking, period model.DateRange) []*model.Booking {
	return filter(bookings, func(b *model.Booking) bool {
		return b.Dates.Overlaps(period)
	})
}

// filter always returns a fresh slice, deduplicated by id, so results can be
// iterated again or re-sorted by callers without aliasing the input.
func filter(bookings []*model.Booking, keep func(*model.Booking) bool) []*model.Booking {
	out := make([]*model.Booking, 0, len(bookings))
	seen := make(map[int64]struct{}, len(bookings))
	for _, b := range bookings {
		if b == nil || !keep(b) {
			continue
		}
		if b.ID != 0 {
			if _, dup := seen[b.ID]; dup {
				continue
			}
			seen[b.ID] = struct{}{}
		}
		out = append(out, b)
	}
	model.SortByFrom(out)
	return out
}
