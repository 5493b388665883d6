package model

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the only accepted external date form.
const DateLayout = "2006-01-02"

var (
	ErrInvalidDate      = errors.New("date must be a valid calendar date in YYYY-MM-DD format")
	ErrInvalidDateRange = errors.New("date_from must not be after date_to")
)

// DateRange is a closed interval of calendar dates. Both bounds are stored as
// midnight UTC so that equality and ordering compare days, never instants.
type DateRange struct {
	From time.Time `bson:"date_from" json:"-"`
	To   time.Time `bson:"date_to" json:"-"`
}

// ParseDate parses a strict YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// DateOf returns the calendar date of t as seen in t's own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a calendar date in DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func NewDateRange(from, to time.Time) (DateRange, error) {
	from, to = DateOf(from), DateOf(to)
	if from.After(to) {
		return DateRange{}, ErrInvalidDateRange
	}
	return DateRange{From: from, To: to}, nil
}

// ParseDateRange builds a range from two external date strings. On any failure
// the zero DateRange is returned, which reports Valid() == false.
func ParseDateRange(from, to string) (DateRange, error) {
	f, err := ParseDate(from)
	if err != nil {
		return DateRange{}, err
	}
	t, err := ParseDate(to)
	if err != nil {
		return DateRange{}, err
	}
	return NewDateRange(f, t)
}

// SingleDay is the range [d, d].
func SingleDay(d time.Time) DateRange {
	d = DateOf(d)
	return DateRange{From: d, To: d}
}

func (r DateRange) Valid() bool {
	return !r.From.IsZero() && !r.To.IsZero() && !r.From.After(r.To)
}

// Contains reports whether from <= d <= to.
func (r DateRange) Contains(d time.Time) bool {
	d = DateOf(d)
	return !d.Before(r.From) && !d.After(r.To)
}

// Overlaps reports whether the two ranges share a calendar day. Adjacent
// ranges (one ends on the day the other starts) meet at a seam and do not
// overlap; that test runs before the general interval test. Identical ranges
// always overlap, which keeps single-day ranges overlapping themselves.
func (r DateRange) Overlaps(o DateRange) bool {
	if r.From.Equal(o.From) && r.To.Equal(o.To) {
		return true
	}
	if r.To.Equal(o.From) || o.To.Equal(r.From) {
		return false
	}
	return !(r.To.Before(o.From) || r.From.After(o.To))
}

// Days is the number of calendar days covered, bounds included.
func (r DateRange) Days() int {
	if !r.Valid() {
		return 0
	}
	return int(r.To.Sub(r.From).Hours()/24) + 1
}

func (r DateRange) String() string {
	return FormatDate(r.From) + ".." + FormatDate(r.To)
}
