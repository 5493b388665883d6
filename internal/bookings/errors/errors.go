package errors

import "errors"

// Booking lifecycle outcomes. Every one of them is a recoverable business
// result; callers match them with errors.Is.
var (
	ErrInvalidDateFormat = errors.New("dates must be valid calendar dates in YYYY-MM-DD format")

	ErrInvalidDateRange = errors.New("date_from must not be after date_to")

	ErrDateInPast = errors.New("booking cannot start in the past")

	ErrDeskNotFound = errors.New("desk not found")

	ErrDeskAlreadyBooked = errors.New("desk is already booked for the requested dates")

	ErrBookingNotFound = errors.New("booking not found")

	ErrPersistenceFailure = errors.New("booking storage failure")
)

// Repository level sentinels.
var (
	ErrNotFound = errors.New("record not found")

	// ErrDeskBusy means another writer holds the desk lock right now.
	ErrDeskBusy = errors.New("desk is being booked by another request")
)
