package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"finloan/internal/aggregate"
	"finloan/internal/models"
	"finloan/internal/pagination"
)

// IdentityClaims is what the identity provider vouches for about a caller.
type IdentityClaims struct {
	ExternalID string
	Email      string
	FirstName  string
	LastName   string
}

// ProfileUpdate holds optional profile changes; nil fields are left alone.
type ProfileUpdate struct {
	FirstName            *string
	LastName             *string
	PreferredCurrency    *string
	TimeZone             *string
	SalaryCreditDay      *int
	NotificationsEnabled *bool
	AIInsightsEnabled    *bool
	DarkModeEnabled      *bool
	FinancialHealthScore *int
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	ResolveIdentity(claims IdentityClaims) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	UpdateProfile(userID string, update ProfileUpdate) (*models.User, error)
	DeleteUser(userID string) error
}

// ExpenseFilter holds optional filter parameters for listing expenses.
// FromDate and ToDate are inclusive.
type ExpenseFilter struct {
	FromDate *time.Time
	ToDate   *time.Time
	Category *models.ExpenseCategory
}

// ExpenseUpdate holds optional expense changes; nil fields are left alone.
type ExpenseUpdate struct {
	Description *string
	Amount      *decimal.Decimal
	Category    *models.ExpenseCategory
	Date        *time.Time
}

// ExpenseServicer defines the contract for expense-related business logic,
// including the aggregate reads over a user's expenses.
type ExpenseServicer interface {
	CreateExpense(userID, description string, amount decimal.Decimal, category models.ExpenseCategory, date time.Time) (*models.Expense, error)
	GetExpenseByID(userID, expenseID string) (*models.Expense, error)
	UpdateExpense(userID, expenseID string, update ExpenseUpdate) (*models.Expense, error)
	DeleteExpense(userID, expenseID string) error
	ListExpenses(userID string, page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error)
	TotalExpenses(userID string, startDate, endDate time.Time) (decimal.Decimal, error)
	ExpensesByCategory(userID string, startDate, endDate time.Time) (map[models.ExpenseCategory]decimal.Decimal, error)
	DailyExpenses(userID string, startDate, endDate time.Time) ([]aggregate.DailyTotal, error)
}

// BudgetServicer defines the contract for budget-related business logic.
// Every budget it returns carries freshly derived spent/status fields.
type BudgetServicer interface {
	CreateBudget(userID string, category models.ExpenseCategory, monthlyLimit decimal.Decimal, month, year int) (*models.Budget, error)
	GetBudgetByID(userID, budgetID string) (*models.Budget, error)
	UpdateBudget(userID, budgetID string, monthlyLimit *decimal.Decimal, category *models.ExpenseCategory) (*models.Budget, error)
	DeleteBudget(userID, budgetID string) error
	ListBudgetsForMonth(userID string, month, year int) ([]models.Budget, error)
	ListAllBudgets(userID string) ([]models.Budget, error)
	GetBudgetStatus(budget *models.Budget) (models.BudgetStatus, error)
	GetBudgetForExpense(userID string, category models.ExpenseCategory, date time.Time) (*models.Budget, error)
}

// RecurringExpenseUpdate holds optional template changes. Frequency and
// start date are fixed at creation.
type RecurringExpenseUpdate struct {
	Name     *string
	Amount   *decimal.Decimal
	Category *models.ExpenseCategory
	IsActive *bool
}

// RecurringExpenseServicer defines the contract for recurring expense templates.
type RecurringExpenseServicer interface {
	CreateRecurringExpense(userID, name string, amount decimal.Decimal, category models.ExpenseCategory, frequency models.RecurrenceFrequency, startDate time.Time) (*models.RecurringExpense, error)
	GetRecurringExpenseByID(userID, recurringID string) (*models.RecurringExpense, error)
	ListRecurringExpenses(userID string, isActive *bool) ([]models.RecurringExpense, error)
	UpdateRecurringExpense(userID, recurringID string, update RecurringExpenseUpdate) (*models.RecurringExpense, error)
	DeleteRecurringExpense(userID, recurringID string) error
}

// DefinitionError reports a recurring expense that could not be projected.
type DefinitionError struct {
	RecurringExpenseID string `json:"recurring_expense_id"`
	Code               string `json:"code"`
	Message            string `json:"message"`
	Err                error  `json:"-"`
}

// RunResult summarizes one projection run.
type RunResult struct {
	AsOf         time.Time         `json:"as_of"`
	Definitions  int               `json:"definitions"`
	Materialized int               `json:"materialized"`
	Skipped      int               `json:"skipped"`
	Errors       []DefinitionError `json:"errors"`
}

// ProjectionServicer materializes due occurrences of recurring expenses.
type ProjectionServicer interface {
	Run(ctx context.Context, asOf time.Time) (*RunResult, error)
	RunForUser(ctx context.Context, userID string, asOf time.Time) (*RunResult, error)
}

// InsightsOverview is the pre-aggregated spending snapshot handed to the
// conversational assistant.
type InsightsOverview struct {
	AsOf                  time.Time                 `json:"as_of"`
	Currency              string                    `json:"currency"`
	SpentThisMonth        decimal.Decimal           `json:"spent_this_month"`
	MonthlyBudget         decimal.Decimal           `json:"monthly_budget"`
	ExpenseCountThisMonth int                       `json:"expense_count_this_month"`
	SpentLastSixMonths    decimal.Decimal           `json:"spent_last_6_months"`
	MonthlyAverage        decimal.Decimal           `json:"monthly_average"`
	LifetimeSpending      decimal.Decimal           `json:"lifetime_spending"`
	CategoryBreakdown     []aggregate.CategoryTotal `json:"category_breakdown"`
	BudgetCount           int                       `json:"budget_count"`
	OverLimitBudgets      []models.Budget           `json:"over_limit_budgets"`
}

// InsightsServicer builds spending snapshots.
type InsightsServicer interface {
	GetOverview(userID string, asOf time.Time) (*InsightsOverview, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
