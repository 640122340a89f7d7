// Package dateutil provides calendar-day parsing and comparison utilities.
//
// Appointment dates are civil days: the location carried by a time.Time is
// never consulted when comparing them, only its year, month and day.
package dateutil

import (
	"errors"
	"strings"
	"time"
)

// Layout is the wire and storage format for calendar days.
const Layout = "2006-01-02"

// Validation errors.
var (
	ErrInvalidDateFormat  = errors.New("date must be in YYYY-MM-DD format")
	ErrEndDateBeforeStart = errors.New("end date must be on or after start date")
	ErrInvalidMonthFormat = errors.New("month must be in YYYY-MM format")
)

// DateRange represents a validated, inclusive range of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange creates a new DateRange with validation.
// startDate can be empty (defaults to today) or in YYYY-MM-DD format.
// endDate can be empty (defaults to startDate) or in YYYY-MM-DD format.
func NewDateRange(startDate, endDate string, now time.Time) (*DateRange, error) {
	start, err := ParseDateOr(startDate, now)
	if err != nil {
		return nil, err
	}

	end := start
	if endDate != "" {
		end, err = ParseDate(endDate)
		if err != nil {
			return nil, err
		}
	}

	if CompareDays(end, start) < 0 {
		return nil, ErrEndDateBeforeStart
	}

	return &DateRange{Start: start, End: end}, nil
}

// Contains reports whether date falls within the range (inclusive).
func (r DateRange) Contains(date time.Time) bool {
	return CompareDays(date, r.Start) >= 0 && CompareDays(date, r.End) <= 0
}

// ParseDate parses a date string in YYYY-MM-DD format.
// The result is midnight UTC of that civil day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(Layout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return t, nil
}

// ParseDateOr parses s like ParseDate but returns the civil day of now when s
// is empty or "today".
func ParseDateOr(s string, now time.Time) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return Day(now), nil
	case "tomorrow":
		return Day(now).AddDate(0, 0, 1), nil
	case "yesterday":
		return Day(now).AddDate(0, 0, -1), nil
	}
	return ParseDate(s)
}

// ParseMonth parses a YYYY-MM string and returns the first day of that month.
// An empty string yields the month containing now.
func ParseMonth(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return FirstOfMonth(now), nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, ErrInvalidMonthFormat
	}
	return t, nil
}

// Day returns the civil day of t as midnight UTC.
// Use it to turn a wall-clock instant (time.Now) into a comparable date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CompareDays compares the civil days of a and b, ignoring time of day and location.
// It returns -1 if a is before b, 0 if they are the same day, and +1 otherwise.
func CompareDays(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	switch {
	case ay != by:
		return cmpInt(ay, by)
	case am != bm:
		return cmpInt(int(am), int(bm))
	default:
		return cmpInt(ad, bd)
	}
}

// SameDay reports whether a and b fall on the same civil day.
func SameDay(a, b time.Time) bool {
	return CompareDays(a, b) == 0
}

// Key formats the civil day of t as YYYY-MM-DD, usable as a map key.
func Key(t time.Time) string {
	return Day(t).Format(Layout)
}

// WeekRange returns the Monday and Sunday of the ISO week containing t.
func WeekRange(t time.Time) (monday, sunday time.Time) {
	t = Day(t)
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday becomes day 7 in ISO week
	}
	monday = t.AddDate(0, 0, -(weekday - 1))
	sunday = monday.AddDate(0, 0, 6)
	return monday, sunday
}

// FirstOfMonth returns the first civil day of the month containing t.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthRange returns the first and last civil day of the month containing t.
func MonthRange(t time.Time) (first, last time.Time) {
	first = FirstOfMonth(t)
	last = first.AddDate(0, 1, -1)
	return first, last
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
