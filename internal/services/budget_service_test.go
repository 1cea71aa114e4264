package services

import (
	"sync"
	"testing"
	"time"

	"finloan/internal/dates"
	"finloan/internal/models"
	"finloan/internal/testutil"
)

func march(day int) time.Time { return dates.Date(2024, time.March, day) }

func TestCreateBudget(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		budget, err := svc.CreateBudget(user.ID, models.CategoryGroceries, testutil.Amount(t, "4000.00"), 3, 2024)
		testutil.AssertNoError(t, err)

		if budget.ID == "" {
			t.Fatal("expected budget ID")
		}
		testutil.AssertAmount(t, budget.MonthlyLimit, "4000")
		testutil.AssertAmount(t, budget.Spent, "0")
		testutil.AssertAmount(t, budget.Remaining, "4000")
		if budget.Status != models.BudgetStatusSafe {
			t.Errorf("expected SAFE, got %s", budget.Status)
		}
	})

	t.Run("reflects_existing_expenses", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestExpense(t, db, user.ID, models.CategoryGroceries, "850.50", march(5))

		budget, err := svc.CreateBudget(user.ID, models.CategoryGroceries, testutil.Amount(t, "4000.00"), 3, 2024)
		testutil.AssertNoError(t, err)
		testutil.AssertAmount(t, budget.Spent, "850.50")
	})

	t.Run("duplicate_period", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateBudget(user.ID, models.CategoryGroceries, testutil.Amount(t, "4000"), 3, 2024)
		testutil.AssertNoError(t, err)

		_, err = svc.CreateBudget(user.ID, models.CategoryGroceries, testutil.Amount(t, "100"), 3, 2024)
		testutil.AssertAppError(t, err, "DUPLICATE_BUDGET")

		var count int64
		db.Model(&models.Budget{}).Count(&count)
		if count != 1 {
			t.Errorf("expected 1 budget after rejected duplicate, got %d", count)
		}
	})

	t.Run("different_month_year_or_category_succeeds", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)

		_, err := svc.CreateBudget(user.ID, models.CategoryGroceries, testutil.Amount(t, "4000"), 3, 2024)
		testutil.AssertNoError(t, err)

		cases := []struct {
			userID   string
			category models.ExpenseCategory
			month    int
			year     int
		}{
			{user.ID, models.CategoryGroceries, 4, 2024},
			{user.ID, models.CategoryGroceries, 3, 2025},
			{user.ID, models.CategoryTravel, 3, 2024},
			{other.ID, models.CategoryGroceries, 3, 2024},
		}
		for _, c := range cases {
			_, err := svc.CreateBudget(c.userID, c.category, testutil.Amount(t, "100"), c.month, c.year)
			testutil.AssertNoError(t, err)
		}
	})

	t.Run("concurrent_duplicates_one_wins", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		const attempts = 8
		var wg sync.WaitGroup
		errs := make([]error, attempts)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = svc.CreateBudget(user.ID, models.CategoryShopping, testutil.Amount(t, "500"), 6, 2024)
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			testutil.AssertAppError(t, err, "DUPLICATE_BUDGET")
		}
		if succeeded != 1 {
			t.Errorf("expected exactly one successful create, got %d", succeeded)
		}
	})

	t.Run("validation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		tests := []struct {
			name     string
			category models.ExpenseCategory
			limit    string
			month    int
			year     int
			code     string
		}{
			{"zero_limit", models.CategoryGroceries, "0", 3, 2024, "INVALID_LIMIT"},
			{"negative_limit", models.CategoryGroceries, "-5", 3, 2024, "INVALID_LIMIT"},
			{"too_many_decimals", models.CategoryGroceries, "10.005", 3, 2024, "INVALID_LIMIT"},
			{"month_zero", models.CategoryGroceries, "100", 0, 2024, "INVALID_MONTH"},
			{"month_thirteen", models.CategoryGroceries, "100", 13, 2024, "INVALID_MONTH"},
			{"unknown_category", models.ExpenseCategory("CRYPTO"), "100", 3, 2024, "INVALID_CATEGORY"},
			{"bad_year", models.CategoryGroceries, "100", 3, 1800, "INVALID_INPUT"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := svc.CreateBudget(user.ID, tt.category, testutil.Amount(t, tt.limit), tt.month, tt.year)
				testutil.AssertAppError(t, err, tt.code)
			})
		}
	})
}

func TestBudgetSpentTracksExpenses(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	budgets := NewBudgetService(db)
	expenses := NewExpenseService(db, budgets, nil)
	user := testutil.CreateTestUser(t, db)

	budget, err := budgets.CreateBudget(user.ID, models.CategoryGroceries, testutil.Amount(t, "4000.00"), 3, 2024)
	testutil.AssertNoError(t, err)

	_, err = expenses.CreateExpense(user.ID, "Weekly groceries", testutil.Amount(t, "850.50"), models.CategoryGroceries, march(5))
	testutil.AssertNoError(t, err)

	got, err := budgets.GetBudgetByID(user.ID, budget.ID)
	testutil.AssertNoError(t, err)
	testutil.AssertAmount(t, got.Spent, "850.50")
	if got.Status != models.BudgetStatusSafe {
		t.Errorf("expected SAFE, got %s", got.Status)
	}

	// Expenses outside the category or month do not count.
	testutil.CreateTestExpense(t, db, user.ID, models.CategoryTravel, "999", march(6))
	testutil.CreateTestExpense(t, db, user.ID, models.CategoryGroceries, "999", dates.Date(2024, time.April, 1))
	testutil.CreateTestExpense(t, db, user.ID, models.CategoryGroceries, "999", dates.Date(2024, time.February, 29))

	_, err = expenses.CreateExpense(user.ID, "Monthly stock-up", testutil.Amount(t, "3300.00"), models.CategoryGroceries, march(18))
	testutil.AssertNoError(t, err)

	got, err = budgets.GetBudgetByID(user.ID, budget.ID)
	testutil.AssertNoError(t, err)
	testutil.AssertAmount(t, got.Spent, "4150.50")
	testutil.AssertAmount(t, got.Remaining, "-150.50")
	if got.Status != models.BudgetStatusOverLimit || !got.IsOverBudget {
		t.Errorf("expected OVER_LIMIT, got %s", got.Status)
	}
}

func TestBudgetStatusBoundary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBudgetService(db)
	user := testutil.CreateTestUser(t, db)

	budget := testutil.CreateTestBudget(t, db, user.ID, models.CategoryEntertainment, "1000.00", 3, 2024)
	testutil.CreateTestExpense(t, db, user.ID, models.CategoryEntertainment, "600.00", march(1))
	testutil.CreateTestExpense(t, db, user.ID, models.CategoryEntertainment, "400.00", march(31))

	status, err := svc.GetBudgetStatus(budget)
	testutil.AssertNoError(t, err)
	if status != models.BudgetStatusSafe {
		t.Errorf("spent == limit must be SAFE, got %s", status)
	}
	if budget.Utilization != 100 {
		t.Errorf("expected utilization 100, got %v", budget.Utilization)
	}

	testutil.CreateTestExpense(t, db, user.ID, models.CategoryEntertainment, "0.01", march(15))
	status, err = svc.GetBudgetStatus(budget)
	testutil.AssertNoError(t, err)
	if status != models.BudgetStatusOverLimit {
		t.Errorf("expected OVER_LIMIT once spent exceeds limit, got %s", status)
	}
}

func TestUpdateBudget(t *testing.T) {
	t.Run("limit_and_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID, models.CategoryGroceries, "4000", 3, 2024)
		testutil.CreateTestExpense(t, db, user.ID, models.CategoryGroceries, "100", march(2))
		testutil.CreateTestExpense(t, db, user.ID, models.CategoryTransportation, "250", march(3))

		limit := testutil.Amount(t, "200")
		cat := models.CategoryTransportation
		got, err := svc.UpdateBudget(user.ID, budget.ID, &limit, &cat)
		testutil.AssertNoError(t, err)

		if got.Category != models.CategoryTransportation {
			t.Errorf("expected TRANSPORTATION, got %s", got.Category)
		}
		testutil.AssertAmount(t, got.MonthlyLimit, "200")
		testutil.AssertAmount(t, got.Spent, "250")
		if !got.IsOverBudget {
			t.Error("expected budget to be over limit after recompute for the new category")
		}
	})

	t.Run("category_collision", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID, models.CategoryGroceries, "4000", 3, 2024)
		testutil.CreateTestBudget(t, db, user.ID, models.CategoryTravel, "4000", 3, 2024)

		cat := models.CategoryTravel
		_, err := svc.UpdateBudget(user.ID, budget.ID, nil, &cat)
		testutil.AssertAppError(t, err, "DUPLICATE_BUDGET")
	})

	t.Run("invalid_limit", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID, models.CategoryGroceries, "4000", 3, 2024)

		limit := testutil.Amount(t, "0")
		_, err := svc.UpdateBudget(user.ID, budget.ID, &limit, nil)
		testutil.AssertAppError(t, err, "INVALID_LIMIT")
	})

	t.Run("other_users_budget", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		owner := testutil.CreateTestUser(t, db)
		intruder := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, owner.ID, models.CategoryGroceries, "4000", 3, 2024)

		limit := testutil.Amount(t, "1")
		_, err := svc.UpdateBudget(intruder.ID, budget.ID, &limit, nil)
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})
}

func TestDeleteBudget(t *testing.T) {
	t.Run("keeps_expenses_and_frees_period", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID, models.CategoryGroceries, "4000", 3, 2024)
		testutil.CreateTestExpense(t, db, user.ID, models.CategoryGroceries, "100", march(2))

		testutil.AssertNoError(t, svc.DeleteBudget(user.ID, budget.ID))

		_, err := svc.GetBudgetByID(user.ID, budget.ID)
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")

		var count int64
		db.Model(&models.Expense{}).Where("user_id = ?", user.ID).Count(&count)
		if count != 1 {
			t.Errorf("expected expense to survive budget deletion, got %d", count)
		}

		_, err = svc.CreateBudget(user.ID, models.CategoryGroceries, testutil.Amount(t, "10"), 3, 2024)
		testutil.AssertNoError(t, err)
	})

	t.Run("other_users_budget", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		owner := testutil.CreateTestUser(t, db)
		intruder := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, owner.ID, models.CategoryGroceries, "4000", 3, 2024)

		err := svc.DeleteBudget(intruder.ID, budget.ID)
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})
}

func TestListBudgets(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBudgetService(db)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	testutil.CreateTestBudget(t, db, user.ID, models.CategoryTravel, "500", 3, 2024)
	testutil.CreateTestBudget(t, db, user.ID, models.CategoryGroceries, "4000", 3, 2024)
	testutil.CreateTestBudget(t, db, user.ID, models.CategoryGroceries, "3000", 4, 2024)
	testutil.CreateTestBudget(t, db, other.ID, models.CategoryGroceries, "9999", 3, 2024)
	testutil.CreateTestExpense(t, db, user.ID, models.CategoryGroceries, "120", march(9))
	testutil.CreateTestExpense(t, db, user.ID, models.CategoryTravel, "700", march(10))
	testutil.CreateTestExpense(t, db, user.ID, models.CategoryGroceries, "45", dates.Date(2024, time.April, 2))

	t.Run("for_month", func(t *testing.T) {
		got, err := svc.ListBudgetsForMonth(user.ID, 3, 2024)
		testutil.AssertNoError(t, err)
		if len(got) != 2 {
			t.Fatalf("expected 2 budgets, got %d", len(got))
		}
		if got[0].Category != models.CategoryGroceries || got[1].Category != models.CategoryTravel {
			t.Errorf("expected budgets ordered by category, got %s, %s", got[0].Category, got[1].Category)
		}
		testutil.AssertAmount(t, got[0].Spent, "120")
		testutil.AssertAmount(t, got[1].Spent, "700")
		if !got[1].IsOverBudget {
			t.Error("expected travel budget to be over limit")
		}
	})

	t.Run("all", func(t *testing.T) {
		got, err := svc.ListAllBudgets(user.ID)
		testutil.AssertNoError(t, err)
		if len(got) != 3 {
			t.Fatalf("expected 3 budgets, got %d", len(got))
		}
		if got[0].Month != 4 {
			t.Errorf("expected newest period first, got month %d", got[0].Month)
		}
		testutil.AssertAmount(t, got[0].Spent, "45")
	})

	t.Run("empty_month", func(t *testing.T) {
		got, err := svc.ListBudgetsForMonth(user.ID, 1, 2020)
		testutil.AssertNoError(t, err)
		if got == nil || len(got) != 0 {
			t.Errorf("expected empty non-nil list, got %v", got)
		}
	})

	t.Run("invalid_month", func(t *testing.T) {
		_, err := svc.ListBudgetsForMonth(user.ID, 13, 2024)
		testutil.AssertAppError(t, err, "INVALID_MONTH")
	})
}

func TestGetBudgetForExpense(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBudgetService(db)
	user := testutil.CreateTestUser(t, db)
	budget := testutil.CreateTestBudget(t, db, user.ID, models.CategoryGroceries, "4000", 3, 2024)

	got, err := svc.GetBudgetForExpense(user.ID, models.CategoryGroceries, march(20))
	testutil.AssertNoError(t, err)
	if got == nil || got.ID != budget.ID {
		t.Fatalf("expected budget %s, got %v", budget.ID, got)
	}

	got, err = svc.GetBudgetForExpense(user.ID, models.CategoryGroceries, dates.Date(2024, time.April, 1))
	testutil.AssertNoError(t, err)
	if got != nil {
		t.Errorf("expected no budget for April, got %s", got.ID)
	}
}
