package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecurrenceFrequency is the cadence of a recurring expense.
type RecurrenceFrequency string

const (
	FrequencyDaily   RecurrenceFrequency = "DAILY"
	FrequencyWeekly  RecurrenceFrequency = "WEEKLY"
	FrequencyMonthly RecurrenceFrequency = "MONTHLY"
	FrequencyYearly  RecurrenceFrequency = "YEARLY"
)

// RecurrenceFrequencies returns every supported frequency, shortest first.
func RecurrenceFrequencies() []RecurrenceFrequency {
	return []RecurrenceFrequency{FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly}
}

// IsValid reports whether f is a supported frequency.
func (f RecurrenceFrequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// RecurringExpense is a template that generates expenses on a cadence,
// anchored at StartDate. LastMaterializedDate is the projection cursor:
// the latest occurrence already written as an Expense, or nil if none.
type RecurringExpense struct {
	Base
	UserID               string              `gorm:"type:uuid;not null;index" json:"user_id"`
	Name                 string              `gorm:"not null" json:"name"`
	Amount               decimal.Decimal     `gorm:"type:numeric(14,2);not null" json:"amount"`
	Category             ExpenseCategory     `gorm:"not null" json:"category"`
	Frequency            RecurrenceFrequency `gorm:"not null" json:"frequency"`
	StartDate            time.Time           `gorm:"not null" json:"start_date"`
	LastMaterializedDate *time.Time          `json:"last_materialized_date,omitempty"`
	IsActive             bool                `gorm:"not null;default:true;index" json:"is_active"`

	// NextOccurrence is derived on read: the next date the projector will
	// materialize.
	NextOccurrence *time.Time `gorm:"-" json:"next_occurrence,omitempty"`
}
