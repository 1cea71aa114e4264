// Command seed loads a demo user with a fortnight of expenses, budgets for
// the current month and a few monthly recurring templates. It goes through
// the services, so every value is validated exactly as the API would.
// Running it twice is a no-op.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"finloan/internal/config"
	"finloan/internal/database"
	"finloan/internal/dates"
	"finloan/internal/events"
	"finloan/internal/logger"
	"finloan/internal/models"
	"finloan/internal/services"
)

const (
	demoSubject = "demo-identity-subject"
	demoEmail   = "demo@finloan.example"
)

type sampleExpense struct {
	description string
	amount      string
	category    models.ExpenseCategory
	daysAgo     int
}

var sampleExpenses = []sampleExpense{
	{"Grocery shopping", "850.50", models.CategoryGroceries, 1},
	{"Petrol refill", "450.20", models.CategoryTransportation, 2},
	{"Tea & snacks", "120.75", models.CategoryFoodDining, 3},
	{"OTT subscription", "499.00", models.CategoryEntertainment, 4},
	{"Electricity bill", "1200.00", models.CategoryBillsUtilities, 5},
	{"Lunch outside", "280.50", models.CategoryFoodDining, 6},
	{"College books", "999.00", models.CategoryEducation, 7},
	{"Medical expenses", "500.00", models.CategoryHealthcare, 8},
	{"Online shopping", "750.30", models.CategoryShopping, 9},
	{"Auto / cab ride", "180.45", models.CategoryTransportation, 10},
	{"Movie tickets", "240.00", models.CategoryEntertainment, 11},
	{"Salon visit", "350.00", models.CategoryPersonalCare, 12},
	{"Mobile recharge", "299.00", models.CategoryBillsUtilities, 13},
	{"Monthly groceries", "920.15", models.CategoryGroceries, 14},
	{"Gift purchase", "400.00", models.CategoryGiftsDonations, 15},
}

var sampleBudgets = map[models.ExpenseCategory]string{
	models.CategoryGroceries:      "4000.00",
	models.CategoryFoodDining:     "3000.00",
	models.CategoryTransportation: "2000.00",
	models.CategoryEntertainment:  "1500.00",
	models.CategoryBillsUtilities: "2500.00",
	models.CategoryShopping:       "2000.00",
	models.CategoryHealthcare:     "1500.00",
	models.CategoryPersonalCare:   "1000.00",
}

type sampleRecurring struct {
	name       string
	amount     string
	category   models.ExpenseCategory
	dayOfMonth int
}

var sampleRecurrings = []sampleRecurring{
	{"OTT Subscription", "499.00", models.CategoryEntertainment, 1},
	{"Gym Membership", "1000.00", models.CategoryHealthcare, 10},
	{"Mobile Recharge", "299.00", models.CategoryBillsUtilities, 5},
	{"Coffee / Snacks", "250.00", models.CategoryFoodDining, 15},
}

func main() {
	logger.Init(os.Getenv("ENV"), os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("seed: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() { _ = dbManager.Close() }()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	return seed(dbManager.DB(), dates.Today(nil))
}

func seed(db *gorm.DB, today time.Time) error {
	log := logger.Named("seed")

	users := services.NewUserService(db)
	budgets := services.NewBudgetService(db)
	expenses := services.NewExpenseService(db, budgets, events.Noop{})
	recurring := services.NewRecurringExpenseService(db)

	user, err := users.ResolveIdentity(services.IdentityClaims{
		ExternalID: demoSubject,
		Email:      demoEmail,
		FirstName:  "Anshika",
		LastName:   "Jain",
	})
	if err != nil {
		return fmt.Errorf("provision demo user: %w", err)
	}

	existing, err := budgets.ListAllBudgets(user.ID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Infow("demo data already present", "user_id", user.ID)
		return nil
	}

	for _, s := range sampleExpenses {
		if _, err := expenses.CreateExpense(user.ID, s.description, decimal.RequireFromString(s.amount),
			s.category, today.AddDate(0, 0, -s.daysAgo)); err != nil {
			return fmt.Errorf("expense %q: %w", s.description, err)
		}
	}

	month, year := int(today.Month()), today.Year()
	for category, limit := range sampleBudgets {
		if _, err := budgets.CreateBudget(user.ID, category, decimal.RequireFromString(limit), month, year); err != nil {
			return fmt.Errorf("budget %s: %w", category, err)
		}
	}

	for _, s := range sampleRecurrings {
		start := dates.Date(year, today.Month(), s.dayOfMonth)
		if _, err := recurring.CreateRecurringExpense(user.ID, s.name, decimal.RequireFromString(s.amount),
			s.category, models.FrequencyMonthly, start); err != nil {
			return fmt.Errorf("recurring %q: %w", s.name, err)
		}
	}

	log.Infow("demo data seeded",
		"user_id", user.ID,
		"expenses", len(sampleExpenses),
		"budgets", len(sampleBudgets),
		"recurring", len(sampleRecurrings),
	)
	return nil
}
