package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"finloan/internal/aggregate"
	"finloan/internal/dates"
	apperrors "finloan/internal/errors"
	"finloan/internal/events"
	"finloan/internal/logger"
	"finloan/internal/models"
	"finloan/internal/pagination"
)

// expenseService handles expense-related business logic.
type expenseService struct {
	db        *gorm.DB
	budgets   BudgetServicer
	publisher events.Publisher
}

// NewExpenseService creates a new ExpenseServicer. A nil publisher drops events.
func NewExpenseService(db *gorm.DB, budgets BudgetServicer, publisher events.Publisher) ExpenseServicer {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &expenseService{
		db:        db,
		budgets:   budgets,
		publisher: publisher,
	}
}

// CreateExpense records a manual expense.
func (s *expenseService) CreateExpense(
	userID, description string,
	amount decimal.Decimal,
	category models.ExpenseCategory,
	date time.Time,
) (*models.Expense, error) {
	description, err := requireText("description", description)
	if err != nil {
		return nil, err
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if err := validateCategory(category); err != nil {
		return nil, err
	}
	if date.IsZero() {
		date = dates.Today(nil)
	}
	date = dates.Normalize(date)

	watch := s.watchBudget(userID, category, date)

	expense := &models.Expense{
		UserID:      userID,
		Description: description,
		Amount:      amount,
		Category:    category,
		Date:        date,
	}
	if err := s.db.Create(expense).Error; err != nil {
		return nil, storageError(err)
	}

	watch(expense.ID)
	return expense, nil
}

// GetExpenseByID retrieves an expense if it belongs to the user.
func (s *expenseService) GetExpenseByID(userID, expenseID string) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.Where("id = ? AND user_id = ?", expenseID, userID).First(&expense).Error; err != nil {
		return nil, notFoundOr(err, apperrors.ErrExpenseNotFound)
	}
	return &expense, nil
}

// UpdateExpense applies the non-nil fields of update.
func (s *expenseService) UpdateExpense(userID, expenseID string, update ExpenseUpdate) (*models.Expense, error) {
	expense, err := s.GetExpenseByID(userID, expenseID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if update.Description != nil {
		description, err := requireText("description", *update.Description)
		if err != nil {
			return nil, err
		}
		updates["description"] = description
	}
	if update.Amount != nil {
		if err := validateAmount(*update.Amount); err != nil {
			return nil, err
		}
		updates["amount"] = *update.Amount
	}
	if update.Category != nil {
		if err := validateCategory(*update.Category); err != nil {
			return nil, err
		}
		updates["category"] = *update.Category
	}
	if update.Date != nil {
		updates["date"] = dates.Normalize(*update.Date)
	}
	if len(updates) == 0 {
		return expense, nil
	}

	category, date := expense.Category, expense.Date
	if update.Category != nil {
		category = *update.Category
	}
	if update.Date != nil {
		date = dates.Normalize(*update.Date)
	}
	watch := s.watchBudget(userID, category, date)

	if err := s.db.Model(expense).Updates(updates).Error; err != nil {
		// Only the (recurring_expense_id, date) index can collide here.
		if errors.Is(err, gorm.ErrDuplicatedKey) && expense.RecurringExpenseID != nil {
			return nil, apperrors.WithField(apperrors.ErrInvalidInput, "date",
				"an occurrence of this recurring expense already exists on that date")
		}
		return nil, storageError(err)
	}

	watch(expense.ID)
	return s.GetExpenseByID(userID, expense.ID)
}

// DeleteExpense soft-deletes an expense.
func (s *expenseService) DeleteExpense(userID, expenseID string) error {
	expense, err := s.GetExpenseByID(userID, expenseID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(expense).Error; err != nil {
		return storageError(err)
	}
	return nil
}

// ListExpenses returns a paginated, filtered list of the user's expenses.
func (s *expenseService) ListExpenses(userID string, page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error) {
	if filter.FromDate != nil && filter.ToDate != nil {
		if _, err := aggregate.NewWindow(*filter.FromDate, *filter.ToDate); err != nil {
			return nil, err
		}
	}
	if filter.Category != nil {
		if err := validateCategory(*filter.Category); err != nil {
			return nil, err
		}
	}

	page.Defaults()

	base := s.db.Model(&models.Expense{}).Where("user_id = ?", userID)
	base = applyExpenseFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, storageError(err)
	}

	var expenses []models.Expense
	if err := base.Scopes(pagination.Paginate(page)).
		Order(page.OrderClause()).
		Find(&expenses).Error; err != nil {
		return nil, storageError(err)
	}

	result := pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyExpenseFilters(q *gorm.DB, f ExpenseFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", dates.Normalize(*f.FromDate))
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", dates.Normalize(*f.ToDate))
	}
	if f.Category != nil {
		q = q.Where("category = ?", *f.Category)
	}
	return q
}

// TotalExpenses sums the user's expenses dated in [startDate, endDate].
func (s *expenseService) TotalExpenses(userID string, startDate, endDate time.Time) (decimal.Decimal, error) {
	expenses, w, err := s.window(userID, startDate, endDate)
	if err != nil {
		return decimal.Zero, err
	}
	return aggregate.Total(expenses, w), nil
}

// ExpensesByCategory groups the user's expenses in [startDate, endDate] by category.
func (s *expenseService) ExpensesByCategory(userID string, startDate, endDate time.Time) (map[models.ExpenseCategory]decimal.Decimal, error) {
	expenses, w, err := s.window(userID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	return aggregate.ByCategory(expenses, w), nil
}

// DailyExpenses returns per-day totals for days in [startDate, endDate] that have expenses.
func (s *expenseService) DailyExpenses(userID string, startDate, endDate time.Time) ([]aggregate.DailyTotal, error) {
	expenses, w, err := s.window(userID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	return aggregate.Daily(expenses, w), nil
}

func (s *expenseService) window(userID string, startDate, endDate time.Time) ([]models.Expense, aggregate.Window, error) {
	w, err := aggregate.NewWindow(startDate, endDate)
	if err != nil {
		return nil, aggregate.Window{}, err
	}
	expenses, err := expensesInWindow(s.db, userID, w, nil)
	if err != nil {
		return nil, aggregate.Window{}, err
	}
	return expenses, w, nil
}

// watchBudget snapshots the budget covering (category, date) and returns a
// func that, after the mutation, publishes budget.over_limit if that
// budget went from SAFE to OVER_LIMIT. Lookup and publish failures are
// logged only.
func (s *expenseService) watchBudget(userID string, category models.ExpenseCategory, date time.Time) func(expenseID string) {
	noop := func(string) {}
	if s.budgets == nil {
		return noop
	}

	before, err := s.budgets.GetBudgetForExpense(userID, category, date)
	if err != nil {
		logger.Get().Warnw("budget lookup failed", "user_id", userID, "category", category, "error", err)
		return noop
	}
	if before == nil || before.IsOverBudget {
		return noop
	}

	return func(expenseID string) {
		after, err := s.budgets.GetBudgetByID(userID, before.ID)
		if err != nil {
			logger.Get().Warnw("budget recheck failed", "budget_id", before.ID, "error", err)
			return
		}
		if !after.IsOverBudget {
			return
		}

		event, err := events.New(events.TypeBudgetOverLimit, userID, events.BudgetOverLimit{
			BudgetID:     after.ID,
			Category:     string(after.Category),
			Month:        after.Month,
			Year:         after.Year,
			MonthlyLimit: after.MonthlyLimit,
			Spent:        after.Spent,
			ExpenseID:    expenseID,
		})
		if err == nil {
			err = s.publisher.Publish(context.Background(), event)
		}
		if err != nil {
			logger.Get().Errorw("failed to publish budget event", "budget_id", after.ID, "error", err)
			return
		}
		logger.Get().Infow("budget over limit",
			"user_id", userID,
			"budget_id", after.ID,
			"spent", after.Spent.StringFixed(2),
			"limit", after.MonthlyLimit.StringFixed(2),
		)
	}
}
