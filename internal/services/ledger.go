package services

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"finloan/internal/aggregate"
	apperrors "finloan/internal/errors"
	"finloan/internal/models"
)

// Bounds for budget years.
const (
	minBudgetYear = 1900
	maxBudgetYear = 9999
)

// maxAmount is the largest value a NUMERIC(14,2) column holds.
var maxAmount = decimal.RequireFromString("999999999999.99")

// storageError converts an unexpected store failure into a transient error.
func storageError(err error) error {
	return apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
}

// notFoundOr maps gorm.ErrRecordNotFound to notFound and anything else to a
// storage error.
func notFoundOr(err error, notFound *apperrors.AppError) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return storageError(err)
}

// expensesInWindow loads a user's expenses dated inside w, optionally
// restricted to one category.
func expensesInWindow(db *gorm.DB, userID string, w aggregate.Window, category *models.ExpenseCategory) ([]models.Expense, error) {
	q := db.Where("user_id = ? AND date >= ? AND date <= ?", userID, w.Start, w.End)
	if category != nil {
		q = q.Where("category = ?", *category)
	}
	var expenses []models.Expense
	if err := q.Order("date ASC").Find(&expenses).Error; err != nil {
		return nil, storageError(err)
	}
	return expenses, nil
}

func validateAmount(amount decimal.Decimal) error {
	return validateMoney(amount, apperrors.ErrInvalidAmount)
}

func validateLimit(limit decimal.Decimal) error {
	return validateMoney(limit, apperrors.ErrInvalidLimit)
}

// validateMoney requires a positive value with at most two decimal places
// that fits the column.
func validateMoney(v decimal.Decimal, sentinel *apperrors.AppError) error {
	switch {
	case !v.IsPositive():
		return sentinel
	case !v.Equal(v.Round(2)):
		return apperrors.WithMessage(sentinel, "amount must have at most 2 decimal places")
	case v.GreaterThan(maxAmount):
		return apperrors.WithMessage(sentinel, "amount is too large")
	}
	return nil
}

func validateCategory(category models.ExpenseCategory) error {
	if !category.IsValid() {
		return apperrors.WithMessage(apperrors.ErrInvalidCategory, "unknown expense category: "+string(category))
	}
	return nil
}

func validateMonth(month int) error {
	if month < 1 || month > 12 {
		return apperrors.ErrInvalidMonth
	}
	return nil
}

func validateYear(year int) error {
	if year < minBudgetYear || year > maxBudgetYear {
		return apperrors.WithField(apperrors.ErrInvalidInput, "year", "year must be between 1900 and 9999")
	}
	return nil
}

func requireText(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", apperrors.WithField(apperrors.ErrInvalidInput, field, field+" is required")
	}
	return value, nil
}
