package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetOverLimit is emitted when an expense mutation pushes a budget from
// SAFE to OVER_LIMIT.
type BudgetOverLimit struct {
	BudgetID     string          `json:"budget_id"`
	Category     string          `json:"category"`
	Month        int             `json:"month"`
	Year         int             `json:"year"`
	MonthlyLimit decimal.Decimal `json:"monthly_limit"`
	Spent        decimal.Decimal `json:"spent"`
	ExpenseID    string          `json:"expense_id"`
}

// RecurringMaterialized is emitted once per definition per projection run
// that wrote at least one expense.
type RecurringMaterialized struct {
	RecurringExpenseID string      `json:"recurring_expense_id"`
	ExpenseIDs         []string    `json:"expense_ids"`
	Dates              []time.Time `json:"dates"`
	AsOf               time.Time   `json:"as_of"`
}
