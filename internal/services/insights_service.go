package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"finloan/internal/aggregate"
	"finloan/internal/dates"
	"finloan/internal/models"
)

// lookbackMonths is the window used for the trailing spend and monthly average.
const lookbackMonths = 6

// insightsService assembles read-only spending snapshots.
type insightsService struct {
	db      *gorm.DB
	users   UserServicer
	budgets BudgetServicer
}

// NewInsightsService creates a new InsightsServicer.
func NewInsightsService(db *gorm.DB, users UserServicer, budgets BudgetServicer) InsightsServicer {
	return &insightsService{db: db, users: users, budgets: budgets}
}

// GetOverview computes the snapshot for the month containing asOf.
func (s *insightsService) GetOverview(userID string, asOf time.Time) (*InsightsOverview, error) {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	asOf = dates.Normalize(asOf)

	month := aggregate.MonthWindow(int(asOf.Month()), asOf.Year())
	monthExpenses, err := expensesInWindow(s.db, userID, month, nil)
	if err != nil {
		return nil, err
	}

	trailing, err := aggregate.NewWindow(dates.AddMonths(asOf, -lookbackMonths), asOf)
	if err != nil {
		return nil, err
	}
	trailingExpenses, err := expensesInWindow(s.db, userID, trailing, nil)
	if err != nil {
		return nil, err
	}

	var amounts []decimal.Decimal
	if err := s.db.Model(&models.Expense{}).Where("user_id = ?", userID).Pluck("amount", &amounts).Error; err != nil {
		return nil, storageError(err)
	}
	lifetime := decimal.Zero
	for _, a := range amounts {
		lifetime = lifetime.Add(a)
	}

	current, err := s.budgets.ListBudgetsForMonth(userID, int(asOf.Month()), asOf.Year())
	if err != nil {
		return nil, err
	}
	all, err := s.budgets.ListAllBudgets(userID)
	if err != nil {
		return nil, err
	}

	monthlyBudget := decimal.Zero
	overLimit := []models.Budget{}
	for _, b := range current {
		monthlyBudget = monthlyBudget.Add(b.MonthlyLimit)
		if b.IsOverBudget {
			overLimit = append(overLimit, b)
		}
	}

	spentTrailing := aggregate.Total(trailingExpenses, trailing)
	average := decimal.Zero
	if len(trailingExpenses) > 0 {
		average = spentTrailing.DivRound(decimal.NewFromInt(lookbackMonths), 2)
	}

	breakdown := aggregate.Breakdown(monthExpenses, month)
	if breakdown == nil {
		breakdown = []aggregate.CategoryTotal{}
	}

	return &InsightsOverview{
		AsOf:                  asOf,
		Currency:              user.PreferredCurrency,
		SpentThisMonth:        aggregate.Total(monthExpenses, month),
		MonthlyBudget:         monthlyBudget,
		ExpenseCountThisMonth: len(monthExpenses),
		SpentLastSixMonths:    spentTrailing,
		MonthlyAverage:        average,
		LifetimeSpending:      lifetime,
		CategoryBreakdown:     breakdown,
		BudgetCount:           len(all),
		OverLimitBudgets:      overLimit,
	}, nil
}
