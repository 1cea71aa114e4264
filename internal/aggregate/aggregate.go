// Package aggregate computes spending totals over a set of expenses.
// Functions are pure: callers fetch the expenses for a window and pass
// them in. Amounts are summed with exact decimal arithmetic.
package aggregate

import (
	"sort"
	"time"

	"finloan/internal/dates"
	apperrors "finloan/internal/errors"
	"finloan/internal/models"

	"github.com/shopspring/decimal"
)

// DailyTotal is the amount spent on one calendar day.
type DailyTotal struct {
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// CategoryTotal is the amount spent in one category, with the number of
// expenses that contributed to it.
type CategoryTotal struct {
	Category models.ExpenseCategory `json:"category"`
	Amount   decimal.Decimal        `json:"amount"`
	Count    int                    `json:"count"`
}

// Window is a closed calendar-date interval [Start, End].
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow normalizes start and end and fails with ErrInvalidRange when
// start is after end. A single-day window (start == end) is valid.
func NewWindow(start, end time.Time) (Window, error) {
	w := Window{Start: dates.Normalize(start), End: dates.Normalize(end)}
	if w.Start.After(w.End) {
		return Window{}, apperrors.ErrInvalidRange
	}
	return w, nil
}

// MonthWindow returns the window covering a whole calendar month.
func MonthWindow(month, year int) Window {
	start, end := dates.MonthRange(month, year)
	return Window{Start: start, End: end}
}

// Contains reports whether d falls inside the window, both ends inclusive.
func (w Window) Contains(d time.Time) bool {
	d = dates.Normalize(d)
	return !d.Before(w.Start) && !d.After(w.End)
}

// Total sums the amounts of expenses dated inside w. No matches yield zero.
func Total(expenses []models.Expense, w Window) decimal.Decimal {
	total := decimal.Zero
	for i := range expenses {
		if w.Contains(expenses[i].Date) {
			total = total.Add(expenses[i].Amount)
		}
	}
	return total
}

// ByCategory groups the amounts of expenses dated inside w by category.
// Categories with no expenses in the window are absent from the result.
func ByCategory(expenses []models.Expense, w Window) map[models.ExpenseCategory]decimal.Decimal {
	out := make(map[models.ExpenseCategory]decimal.Decimal)
	for i := range expenses {
		e := &expenses[i]
		if !w.Contains(e.Date) {
			continue
		}
		out[e.Category] = out[e.Category].Add(e.Amount)
	}
	return out
}

// Breakdown is ByCategory as a slice sorted by amount descending (ties by
// category name), with per-category expense counts.
func Breakdown(expenses []models.Expense, w Window) []CategoryTotal {
	idx := make(map[models.ExpenseCategory]int)
	var out []CategoryTotal
	for i := range expenses {
		e := &expenses[i]
		if !w.Contains(e.Date) {
			continue
		}
		j, ok := idx[e.Category]
		if !ok {
			j = len(out)
			idx[e.Category] = j
			out = append(out, CategoryTotal{Category: e.Category, Amount: decimal.Zero})
		}
		out[j].Amount = out[j].Amount.Add(e.Amount)
		out[j].Count++
	}
	sort.Slice(out, func(a, b int) bool {
		if c := out[a].Amount.Cmp(out[b].Amount); c != 0 {
			return c > 0
		}
		return out[a].Category < out[b].Category
	})
	return out
}

// Daily returns one entry per day inside w that has at least one expense,
// ordered by date ascending. Days without expenses are skipped.
func Daily(expenses []models.Expense, w Window) []DailyTotal {
	byDay := make(map[time.Time]decimal.Decimal)
	for i := range expenses {
		e := &expenses[i]
		if !w.Contains(e.Date) {
			continue
		}
		day := dates.Normalize(e.Date)
		byDay[day] = byDay[day].Add(e.Amount)
	}

	out := make([]DailyTotal, 0, len(byDay))
	for day, amount := range byDay {
		out = append(out, DailyTotal{Date: day, Amount: amount})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Date.Before(out[b].Date) })
	return out
}
