package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"finloan/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Amount parses a decimal literal, failing the test on bad input.
func Amount(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

// CreateTestUser creates a user with a unique external id and email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	n := nextID()
	return CreateTestUserWithEmail(t, db, fmt.Sprintf("user%d@test.com", n))
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{
		ExternalID:           fmt.Sprintf("ext|%d", nextID()),
		Email:                email,
		FirstName:            "Test",
		LastName:             "User",
		PreferredCurrency:    models.DefaultCurrency,
		TimeZone:             models.DefaultTimeZone,
		SalaryCreditDay:      models.DefaultSalaryCreditDay,
		NotificationsEnabled: true,
		AIInsightsEnabled:    true,
		FinancialHealthScore: models.DefaultFinancialHealth,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestExpense creates a manual expense on the given date.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID string, category models.ExpenseCategory, amount string, date time.Time) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		UserID:      userID,
		Description: fmt.Sprintf("Test Expense %d", nextID()),
		Amount:      Amount(t, amount),
		Category:    category,
		Date:        date,
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}

// CreateTestBudget creates a budget for category in month/year.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID string, category models.ExpenseCategory, limit string, month, year int) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:       userID,
		Category:     category,
		MonthlyLimit: Amount(t, limit),
		Month:        month,
		Year:         year,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestRecurringExpense creates an active recurring expense template.
func CreateTestRecurringExpense(t *testing.T, db *gorm.DB, userID string, frequency models.RecurrenceFrequency, amount string, start time.Time) *models.RecurringExpense {
	t.Helper()

	re := &models.RecurringExpense{
		UserID:    userID,
		Name:      fmt.Sprintf("Test Subscription %d", nextID()),
		Amount:    Amount(t, amount),
		Category:  models.CategoryBillsUtilities,
		Frequency: frequency,
		StartDate: start,
		IsActive:  true,
	}
	if err := db.Create(re).Error; err != nil {
		t.Fatalf("failed to create test recurring expense: %v", err)
	}
	return re
}
