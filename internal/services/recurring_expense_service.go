package services

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"finloan/internal/dates"
	apperrors "finloan/internal/errors"
	"finloan/internal/models"
	"finloan/internal/schedule"
)

// recurringExpenseService manages recurring expense templates.
type recurringExpenseService struct {
	db *gorm.DB
}

// NewRecurringExpenseService creates a new RecurringExpenseServicer.
func NewRecurringExpenseService(db *gorm.DB) RecurringExpenseServicer {
	return &recurringExpenseService{db: db}
}

// CreateRecurringExpense creates an active template anchored at startDate.
func (s *recurringExpenseService) CreateRecurringExpense(
	userID, name string,
	amount decimal.Decimal,
	category models.ExpenseCategory,
	frequency models.RecurrenceFrequency,
	startDate time.Time,
) (*models.RecurringExpense, error) {
	name, err := requireText("name", name)
	if err != nil {
		return nil, err
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if err := validateCategory(category); err != nil {
		return nil, err
	}
	frequency = models.RecurrenceFrequency(strings.ToUpper(string(frequency)))
	if !frequency.IsValid() {
		return nil, apperrors.ErrInvalidFrequency
	}
	if startDate.IsZero() {
		return nil, apperrors.WithField(apperrors.ErrInvalidInput, "start_date", "start_date is required")
	}

	re := &models.RecurringExpense{
		UserID:    userID,
		Name:      name,
		Amount:    amount,
		Category:  category,
		Frequency: frequency,
		StartDate: dates.Normalize(startDate),
		IsActive:  true,
	}
	if err := s.db.Create(re).Error; err != nil {
		return nil, storageError(err)
	}

	withNextOccurrence(re)
	return re, nil
}

// GetRecurringExpenseByID retrieves a template if it belongs to the user.
func (s *recurringExpenseService) GetRecurringExpenseByID(userID, recurringID string) (*models.RecurringExpense, error) {
	var re models.RecurringExpense
	if err := s.db.Where("id = ? AND user_id = ?", recurringID, userID).First(&re).Error; err != nil {
		return nil, notFoundOr(err, apperrors.ErrRecurringExpenseNotFound)
	}
	withNextOccurrence(&re)
	return &re, nil
}

// ListRecurringExpenses returns the user's templates, optionally filtered by activity.
func (s *recurringExpenseService) ListRecurringExpenses(userID string, isActive *bool) ([]models.RecurringExpense, error) {
	q := s.db.Where("user_id = ?", userID)
	if isActive != nil {
		q = q.Where("is_active = ?", *isActive)
	}

	recurring := []models.RecurringExpense{}
	if err := q.Order("start_date ASC, name ASC").Find(&recurring).Error; err != nil {
		return nil, storageError(err)
	}
	for i := range recurring {
		withNextOccurrence(&recurring[i])
	}
	return recurring, nil
}

// UpdateRecurringExpense applies the non-nil fields of update. Already
// materialized expenses keep their original values.
func (s *recurringExpenseService) UpdateRecurringExpense(userID, recurringID string, update RecurringExpenseUpdate) (*models.RecurringExpense, error) {
	re, err := s.GetRecurringExpenseByID(userID, recurringID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if update.Name != nil {
		name, err := requireText("name", *update.Name)
		if err != nil {
			return nil, err
		}
		updates["name"] = name
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
	if update.IsActive != nil {
		updates["is_active"] = *update.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(re).Updates(updates).Error; err != nil {
			return nil, storageError(err)
		}
	}

	return s.GetRecurringExpenseByID(userID, re.ID)
}

// DeleteRecurringExpense soft-deletes a template. Expenses it already
// produced are kept.
func (s *recurringExpenseService) DeleteRecurringExpense(userID, recurringID string) error {
	re, err := s.GetRecurringExpenseByID(userID, recurringID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(re).Error; err != nil {
		return storageError(err)
	}
	return nil
}

func withNextOccurrence(re *models.RecurringExpense) {
	re.NextOccurrence = nil
	if !re.IsActive {
		return
	}
	next, err := schedule.Next(re.Frequency, re.StartDate, re.LastMaterializedDate)
	if err != nil {
		return
	}
	re.NextOccurrence = &next
}
