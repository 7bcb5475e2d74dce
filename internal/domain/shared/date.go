package shared

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar date with no time-of-day and no timezone. Rental
// intervals are expressed in calendar days; using a bare date instead of a
// timestamp avoids off-by-one-day errors around midnight and DST boundaries.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a date in the 2006-01-02 layout.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, NewValidationError(fmt.Sprintf("invalid date %q (use YYYY-MM-DD)", s))
	}
	return DateOf(t), nil
}

// DateOf truncates t to its calendar date in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Time returns the date at midnight UTC, for persistence as a DATE column.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string { return d.Time().Format(DateLayout) }

// AddDays returns the date n calendar days later.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

// DaysUntil returns the number of calendar days from d to other.
func (d Date) DaysUntil(other Date) int {
	return int(other.Time().Sub(d.Time()).Hours() / 24)
}

// IsZero reports whether d is the zero value.
func (d Date) IsZero() bool { return d == Date{} }

// DateRange is a half-open calendar interval [From, Until). The end date is
// exclusive so the boundary day is never counted twice.
type DateRange struct {
	From  Date
	Until Date
}

// NewDateRange validates that until is strictly after from.
func NewDateRange(from, until Date) (DateRange, error) {
	if !from.Before(until) {
		return DateRange{}, NewValidationError("drop-off date must be after pickup date")
	}
	return DateRange{From: from, Until: until}, nil
}

// Days returns the day-count of the interval.
func (r DateRange) Days() int { return r.From.DaysUntil(r.Until) }

// Overlaps reports whether two half-open intervals intersect.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.From.Before(other.Until) && other.From.Before(r.Until)
}

// Contains reports whether day falls inside the interval.
func (r DateRange) Contains(day Date) bool {
	return !day.Before(r.From) && day.Before(r.Until)
}

// EachDay calls fn for every day in the interval, in order.
func (r DateRange) EachDay(fn func(Date)) {
	for day := r.From; day.Before(r.Until); day = day.AddDays(1) {
		fn(day)
	}
}
