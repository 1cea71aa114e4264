// Package dates provides calendar-date helpers. A calendar date is a
// time.Time at 00:00 UTC; every date stored or compared by the engine is
// normalized through Normalize first.
package dates

import (
	"fmt"
	"time"
)

// Layout is the wire format for calendar dates.
const Layout = "2006-01-02"

// Normalize drops the clock and zone from t, keeping its calendar date as
// seen in t's own location.
func Normalize(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date builds a normalized calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Parse parses a YYYY-MM-DD string into a normalized date.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// Format renders a date as YYYY-MM-DD.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Today returns the current calendar date in loc (UTC when loc is nil).
func Today(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return Normalize(time.Now().In(loc))
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampedDate builds year/month/day, moving day back to the last valid day
// of the month when the month is shorter (31 -> 30, 28 or 29).
func ClampedDate(year int, month time.Month, day int) time.Time {
	if last := DaysIn(year, month); day > last {
		day = last
	}
	return Date(year, month, day)
}

// AddMonths moves t by n calendar months, clamping the day to the target
// month's length (Aug 31 - 6 months = Feb 28/29).
func AddMonths(t time.Time, n int) time.Time {
	// time.Date normalizes the month overflow on the first of the month.
	first := Date(t.Year(), t.Month()+time.Month(n), 1)
	return ClampedDate(first.Year(), first.Month(), t.Day())
}

// MonthRange returns the first and last calendar day of month/year.
func MonthRange(month, year int) (start, end time.Time) {
	start = Date(year, time.Month(month), 1)
	end = Date(year, time.Month(month), DaysIn(year, time.Month(month)))
	return start, end
}

// MonthsBetween returns the number of whole calendar months from a to b,
// ignoring days (Jan 31 -> Feb 1 is one month).
func MonthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Normalize(b).Sub(Normalize(a)).Hours() / 24)
}
