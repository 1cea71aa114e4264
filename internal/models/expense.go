package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a single spend event. Date is a calendar date (00:00 UTC).
//
// Expenses materialized from a recurring template carry RecurringExpenseID;
// the unique index on (recurring_expense_id, date) guarantees a calendar
// occurrence is stored at most once. Manual expenses leave it NULL and
// never collide.
type Expense struct {
	Base
	UserID             string          `gorm:"type:uuid;not null;index:idx_expenses_user_date,priority:1" json:"user_id"`
	Description        string          `gorm:"not null" json:"description"`
	Amount             decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Category           ExpenseCategory `gorm:"not null;index" json:"category"`
	Date               time.Time       `gorm:"not null;index:idx_expenses_user_date,priority:2;uniqueIndex:uq_expenses_occurrence,priority:2" json:"date"`
	RecurringExpenseID *string         `gorm:"type:uuid;uniqueIndex:uq_expenses_occurrence,priority:1" json:"recurring_expense_id,omitempty"`
}
