// Package schedule computes the calendar occurrences of a recurring expense.
//
// Each frequency has its own Stepper. Occurrence k is always derived from
// the anchor date rather than from occurrence k-1, so a monthly anchor on
// the 31st lands on Feb 28 and is back on Mar 31 the month after.
package schedule

import (
	"fmt"
	"time"

	"finloan/internal/dates"
	apperrors "finloan/internal/errors"
	"finloan/internal/models"
)

// Stepper is the per-frequency strategy.
type Stepper interface {
	// Occurrence returns the k-th occurrence (k >= 0) for anchor.
	Occurrence(anchor time.Time, k int) time.Time
	// Steps returns a lower bound on the index of the first occurrence on
	// or after d. It never overshoots: Occurrence(anchor, Steps-1) < d.
	Steps(anchor, d time.Time) int
}

type dailyStepper struct{}

func (dailyStepper) Occurrence(anchor time.Time, k int) time.Time {
	return anchor.AddDate(0, 0, k)
}

func (dailyStepper) Steps(anchor, d time.Time) int {
	return dates.DaysBetween(anchor, d)
}

type weeklyStepper struct{}

func (weeklyStepper) Occurrence(anchor time.Time, k int) time.Time {
	return anchor.AddDate(0, 0, 7*k)
}

func (weeklyStepper) Steps(anchor, d time.Time) int {
	return dates.DaysBetween(anchor, d) / 7
}

type monthlyStepper struct{}

func (monthlyStepper) Occurrence(anchor time.Time, k int) time.Time {
	return dates.AddMonths(anchor, k)
}

func (monthlyStepper) Steps(anchor, d time.Time) int {
	return dates.MonthsBetween(anchor, d)
}

type yearlyStepper struct{}

func (yearlyStepper) Occurrence(anchor time.Time, k int) time.Time {
	return dates.ClampedDate(anchor.Year()+k, anchor.Month(), anchor.Day())
}

func (yearlyStepper) Steps(anchor, d time.Time) int {
	return d.Year() - anchor.Year()
}

var steppers = map[models.RecurrenceFrequency]Stepper{
	models.FrequencyDaily:   dailyStepper{},
	models.FrequencyWeekly:  weeklyStepper{},
	models.FrequencyMonthly: monthlyStepper{},
	models.FrequencyYearly:  yearlyStepper{},
}

// For returns the Stepper for a frequency, or ErrInvalidFrequency.
func For(freq models.RecurrenceFrequency) (Stepper, error) {
	s, ok := steppers[freq]
	if !ok {
		return nil, apperrors.Wrap(apperrors.ErrInvalidFrequency, fmt.Errorf("unknown frequency %q", freq))
	}
	return s, nil
}

// Due returns the occurrences of a definition that still need to be
// materialized as of asOf: every occurrence on or after anchor, strictly
// after last (when set), and on or before asOf, in ascending order.
// An anchor after asOf yields nothing.
func Due(freq models.RecurrenceFrequency, anchor time.Time, last *time.Time, asOf time.Time) ([]time.Time, error) {
	s, err := For(freq)
	if err != nil {
		return nil, err
	}

	anchor = dates.Normalize(anchor)
	asOf = dates.Normalize(asOf)
	if anchor.After(asOf) {
		return nil, nil
	}

	var out []time.Time
	for k := firstIndex(s, anchor, last); ; k++ {
		occ := s.Occurrence(anchor, k)
		if occ.After(asOf) {
			return out, nil
		}
		out = append(out, occ)
	}
}

// Next returns the first occurrence strictly after last (or the anchor
// itself when last is nil), regardless of any reference date.
func Next(freq models.RecurrenceFrequency, anchor time.Time, last *time.Time) (time.Time, error) {
	s, err := For(freq)
	if err != nil {
		return time.Time{}, err
	}
	anchor = dates.Normalize(anchor)
	return s.Occurrence(anchor, firstIndex(s, anchor, last)), nil
}

// firstIndex is the index of the first occurrence after the cursor.
func firstIndex(s Stepper, anchor time.Time, last *time.Time) int {
	if last == nil {
		return 0
	}
	cursor := dates.Normalize(*last)
	k := s.Steps(anchor, cursor)
	if k < 0 {
		k = 0
	}
	for !s.Occurrence(anchor, k).After(cursor) {
		k++
	}
	return k
}
