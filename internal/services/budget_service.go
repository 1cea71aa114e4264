package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"finloan/internal/aggregate"
	apperrors "finloan/internal/errors"
	"finloan/internal/models"
)

// budgetService handles budget-related business logic. Spent figures are
// never stored; every read derives them from the ledger.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// CreateBudget creates a budget for one category and calendar month.
func (s *budgetService) CreateBudget(
	userID string,
	category models.ExpenseCategory,
	monthlyLimit decimal.Decimal,
	month, year int,
) (*models.Budget, error) {
	if err := validateCategory(category); err != nil {
		return nil, err
	}
	if err := validateLimit(monthlyLimit); err != nil {
		return nil, err
	}
	if err := validateMonth(month); err != nil {
		return nil, err
	}
	if err := validateYear(year); err != nil {
		return nil, err
	}

	exists, err := s.periodTaken(userID, category, month, year, "")
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrDuplicateBudget
	}

	budget := &models.Budget{
		UserID:       userID,
		Category:     category,
		MonthlyLimit: monthlyLimit,
		Month:        month,
		Year:         year,
	}

	if err := s.db.Create(budget).Error; err != nil {
		// A concurrent create can pass the pre-check; the unique index decides.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateBudget
		}
		return nil, storageError(err)
	}

	if err := s.applySpent(userID, []*models.Budget{budget}); err != nil {
		return nil, err
	}
	return budget, nil
}

// GetBudgetByID returns a budget with derived fields if it belongs to the user.
func (s *budgetService) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	budget, err := s.findOwned(userID, budgetID)
	if err != nil {
		return nil, err
	}
	if err := s.applySpent(userID, []*models.Budget{budget}); err != nil {
		return nil, err
	}
	return budget, nil
}

// UpdateBudget changes a budget's limit and/or category. The returned budget
// has spent recomputed for its (possibly new) category.
func (s *budgetService) UpdateBudget(
	userID, budgetID string,
	monthlyLimit *decimal.Decimal,
	category *models.ExpenseCategory,
) (*models.Budget, error) {
	budget, err := s.findOwned(userID, budgetID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if monthlyLimit != nil {
		if err := validateLimit(*monthlyLimit); err != nil {
			return nil, err
		}
		updates["monthly_limit"] = *monthlyLimit
	}
	if category != nil && *category != budget.Category {
		if err := validateCategory(*category); err != nil {
			return nil, err
		}
		taken, err := s.periodTaken(userID, *category, budget.Month, budget.Year, budget.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperrors.ErrDuplicateBudget
		}
		updates["category"] = *category
	}

	if len(updates) > 0 {
		if err := s.db.Model(budget).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperrors.ErrDuplicateBudget
			}
			return nil, storageError(err)
		}
	}

	return s.GetBudgetByID(userID, budget.ID)
}

// DeleteBudget permanently removes a budget. Expenses are untouched.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	budget, err := s.findOwned(userID, budgetID)
	if err != nil {
		return err
	}

	// Hard delete so the (user, category, month, year) tuple can be reused.
	if err := s.db.Unscoped().Delete(budget).Error; err != nil {
		return storageError(err)
	}
	return nil
}

// ListBudgetsForMonth returns the user's budgets for one month, ordered by category.
func (s *budgetService) ListBudgetsForMonth(userID string, month, year int) ([]models.Budget, error) {
	if err := validateMonth(month); err != nil {
		return nil, err
	}
	if err := validateYear(year); err != nil {
		return nil, err
	}

	var budgets []models.Budget
	if err := s.db.Where("user_id = ? AND month = ? AND year = ?", userID, month, year).
		Order("category ASC").
		Find(&budgets).Error; err != nil {
		return nil, storageError(err)
	}
	return s.withSpent(userID, budgets)
}

// ListAllBudgets returns every budget the user has, newest period first.
func (s *budgetService) ListAllBudgets(userID string) ([]models.Budget, error) {
	var budgets []models.Budget
	if err := s.db.Where("user_id = ?", userID).
		Order("year DESC, month DESC, category ASC").
		Find(&budgets).Error; err != nil {
		return nil, storageError(err)
	}
	return s.withSpent(userID, budgets)
}

// GetBudgetStatus derives the budget's spent amount from the ledger and
// reports SAFE or OVER_LIMIT. The budget's derived fields are refreshed.
func (s *budgetService) GetBudgetStatus(budget *models.Budget) (models.BudgetStatus, error) {
	if err := s.applySpent(budget.UserID, []*models.Budget{budget}); err != nil {
		return "", err
	}
	return budget.Status, nil
}

// GetBudgetForExpense returns the budget covering category in date's month,
// or nil when the user has none.
func (s *budgetService) GetBudgetForExpense(userID string, category models.ExpenseCategory, date time.Time) (*models.Budget, error) {
	var budget models.Budget
	err := s.db.Where("user_id = ? AND category = ? AND month = ? AND year = ?",
		userID, category, int(date.Month()), date.Year()).
		First(&budget).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storageError(err)
	}
	if err := s.applySpent(userID, []*models.Budget{&budget}); err != nil {
		return nil, err
	}
	return &budget, nil
}

func (s *budgetService) findOwned(userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		return nil, notFoundOr(err, apperrors.ErrBudgetNotFound)
	}
	return &budget, nil
}

// periodTaken reports whether another budget already holds the tuple.
func (s *budgetService) periodTaken(userID string, category models.ExpenseCategory, month, year int, exceptID string) (bool, error) {
	q := s.db.Model(&models.Budget{}).
		Where("user_id = ? AND category = ? AND month = ? AND year = ?", userID, category, month, year)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, storageError(err)
	}
	return count > 0, nil
}

func (s *budgetService) withSpent(userID string, budgets []models.Budget) ([]models.Budget, error) {
	ptrs := make([]*models.Budget, len(budgets))
	for i := range budgets {
		ptrs[i] = &budgets[i]
	}
	if err := s.applySpent(userID, ptrs); err != nil {
		return nil, err
	}
	if budgets == nil {
		budgets = []models.Budget{}
	}
	return budgets, nil
}

type period struct{ month, year int }

// applySpent fills the derived fields of budgets, loading each distinct
// month's expenses once.
func (s *budgetService) applySpent(userID string, budgets []*models.Budget) error {
	byPeriod := make(map[period][]*models.Budget)
	for _, b := range budgets {
		p := period{b.Month, b.Year}
		byPeriod[p] = append(byPeriod[p], b)
	}

	for p, group := range byPeriod {
		w := aggregate.MonthWindow(p.month, p.year)
		var only *models.ExpenseCategory
		if len(group) == 1 {
			only = &group[0].Category
		}
		expenses, err := expensesInWindow(s.db, userID, w, only)
		if err != nil {
			return err
		}
		spent := aggregate.ByCategory(expenses, w)
		for _, b := range group {
			b.ApplySpent(spent[b.Category])
		}
	}
	return nil
}
