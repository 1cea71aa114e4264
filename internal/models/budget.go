package models

import (
	"github.com/shopspring/decimal"
)

// BudgetStatus is the derived over/under state of a budget.
type BudgetStatus string

const (
	BudgetStatusSafe      BudgetStatus = "SAFE"
	BudgetStatusOverLimit BudgetStatus = "OVER_LIMIT"
)

// Budget is a spending ceiling for one category in one calendar month.
// At most one budget exists per (user, category, month, year).
//
// Spent and the fields after it are never stored: they are derived from the
// user's expenses each time the budget is read (see ApplySpent).
type Budget struct {
	Base
	UserID       string          `gorm:"type:uuid;not null;uniqueIndex:uq_budgets_user_category_period,priority:1" json:"user_id"`
	Category     ExpenseCategory `gorm:"not null;uniqueIndex:uq_budgets_user_category_period,priority:2" json:"category"`
	MonthlyLimit decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"monthly_limit"`
	Month        int             `gorm:"not null;uniqueIndex:uq_budgets_user_category_period,priority:3" json:"month"`
	Year         int             `gorm:"not null;uniqueIndex:uq_budgets_user_category_period,priority:4" json:"year"`

	Spent        decimal.Decimal `gorm:"-" json:"spent"`
	Remaining    decimal.Decimal `gorm:"-" json:"remaining"`
	Utilization  float64         `gorm:"-" json:"utilization"`
	Status       BudgetStatus    `gorm:"-" json:"status"`
	IsOverBudget bool            `gorm:"-" json:"is_over_budget"`
}

// ApplySpent fills the derived fields from the amount spent in the budget's
// category and month. Over-limit is strict: spending exactly the limit is SAFE.
func (b *Budget) ApplySpent(spent decimal.Decimal) {
	b.Spent = spent
	b.Remaining = b.MonthlyLimit.Sub(spent)
	b.IsOverBudget = spent.GreaterThan(b.MonthlyLimit)

	if b.MonthlyLimit.IsPositive() {
		b.Utilization = spent.Div(b.MonthlyLimit).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	} else {
		b.Utilization = 0
	}

	if b.IsOverBudget {
		b.Status = BudgetStatusOverLimit
	} else {
		b.Status = BudgetStatusSafe
	}
}
