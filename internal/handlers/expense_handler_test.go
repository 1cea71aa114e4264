package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"finloan/internal/aggregate"
	"finloan/internal/dates"
	apperrors "finloan/internal/errors"
	"finloan/internal/models"
	"finloan/internal/pagination"
	"finloan/internal/services"
)

// --- mock expense service ---

type mockExpenseService struct {
	createExpenseFn      func(userID, description string, amount decimal.Decimal, category models.ExpenseCategory, date time.Time) (*models.Expense, error)
	getExpenseByIDFn     func(userID, expenseID string) (*models.Expense, error)
	updateExpenseFn      func(userID, expenseID string, update services.ExpenseUpdate) (*models.Expense, error)
	deleteExpenseFn      func(userID, expenseID string) error
	listExpensesFn       func(userID string, page pagination.PageRequest, filter services.ExpenseFilter) (*pagination.PageResponse[models.Expense], error)
	totalExpensesFn      func(userID string, start, end time.Time) (decimal.Decimal, error)
	expensesByCategoryFn func(userID string, start, end time.Time) (map[models.ExpenseCategory]decimal.Decimal, error)
	dailyExpensesFn      func(userID string, start, end time.Time) ([]aggregate.DailyTotal, error)
}

func (m *mockExpenseService) CreateExpense(userID, description string, amount decimal.Decimal, category models.ExpenseCategory, date time.Time) (*models.Expense, error) {
	if m.createExpenseFn != nil {
		return m.createExpenseFn(userID, description, amount, category, date)
	}
	return &models.Expense{Description: description, Amount: amount, Category: category, Date: date}, nil
}

func (m *mockExpenseService) GetExpenseByID(userID, expenseID string) (*models.Expense, error) {
	if m.getExpenseByIDFn != nil {
		return m.getExpenseByIDFn(userID, expenseID)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) UpdateExpense(userID, expenseID string, update services.ExpenseUpdate) (*models.Expense, error) {
	if m.updateExpenseFn != nil {
		return m.updateExpenseFn(userID, expenseID, update)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) DeleteExpense(userID, expenseID string) error {
	if m.deleteExpenseFn != nil {
		return m.deleteExpenseFn(userID, expenseID)
	}
	return nil
}

func (m *mockExpenseService) ListExpenses(userID string, page pagination.PageRequest, filter services.ExpenseFilter) (*pagination.PageResponse[models.Expense], error) {
	if m.listExpensesFn != nil {
		return m.listExpensesFn(userID, page, filter)
	}
	resp := pagination.NewPageResponse[models.Expense](nil, 1, 20, 0)
	return &resp, nil
}

func (m *mockExpenseService) TotalExpenses(userID string, start, end time.Time) (decimal.Decimal, error) {
	if m.totalExpensesFn != nil {
		return m.totalExpensesFn(userID, start, end)
	}
	return decimal.Zero, nil
}

func (m *mockExpenseService) ExpensesByCategory(userID string, start, end time.Time) (map[models.ExpenseCategory]decimal.Decimal, error) {
	if m.expensesByCategoryFn != nil {
		return m.expensesByCategoryFn(userID, start, end)
	}
	return map[models.ExpenseCategory]decimal.Decimal{}, nil
}

func (m *mockExpenseService) DailyExpenses(userID string, start, end time.Time) ([]aggregate.DailyTotal, error) {
	if m.dailyExpensesFn != nil {
		return m.dailyExpensesFn(userID, start, end)
	}
	return nil, nil
}

var _ services.ExpenseServicer = (*mockExpenseService)(nil)

func setupExpenseRouter(handler *ExpenseHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/expenses", handler.CreateExpense)
	auth.GET("/expenses", handler.GetExpenses)
	auth.GET("/expenses/total", handler.GetTotal)
	auth.GET("/expenses/by-category", handler.GetByCategory)
	auth.GET("/expenses/daily", handler.GetDaily)
	auth.GET("/expenses/:id", handler.GetExpense)
	auth.PUT("/expenses/:id", handler.UpdateExpense)
	auth.DELETE("/expenses/:id", handler.DeleteExpense)
	return r
}

func TestExpenseHandler_CreateExpense(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		audit := &mockAuditService{}
		svc := &mockExpenseService{
			createExpenseFn: func(userID, description string, amount decimal.Decimal, category models.ExpenseCategory, date time.Time) (*models.Expense, error) {
				if userID != testUserID {
					t.Errorf("expected caller's user id, got %s", userID)
				}
				if !amount.Equal(decimal.RequireFromString("850.50")) {
					t.Errorf("expected 850.50, got %s", amount)
				}
				if !date.Equal(dates.Date(2024, time.March, 5)) {
					t.Errorf("expected 2024-03-05, got %s", date)
				}
				return &models.Expense{
					Base:        models.Base{ID: testID},
					Description: description, Amount: amount, Category: category, Date: date,
				}, nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc, audit))

		rec := doRequest(r, "POST", "/expenses", `{"description":"Weekly groceries","amount":"850.50","category":"GROCERIES","date":"2024-03-05"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		expense := parseJSON(t, rec)["expense"].(map[string]interface{})
		if expense["id"] != testID {
			t.Errorf("expected id %s, got %v", testID, expense["id"])
		}
		if got := audit.actions(); len(got) != 1 || got[0] != "CREATE_EXPENSE" {
			t.Errorf("expected CREATE_EXPENSE audit entry, got %v", got)
		}
	})

	t.Run("defaults date to today", func(t *testing.T) {
		var got time.Time
		svc := &mockExpenseService{
			createExpenseFn: func(_, description string, amount decimal.Decimal, category models.ExpenseCategory, date time.Time) (*models.Expense, error) {
				got = date
				return &models.Expense{Amount: amount, Date: date}, nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/expenses", `{"description":"Coffee","amount":"4.50","category":"FOOD_DINING"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if !got.Equal(dates.Today(nil)) {
			t.Errorf("expected today, got %s", got)
		}
	})

	tests := []struct {
		name  string
		body  string
		code  string
		field string
	}{
		{"zero amount", `{"description":"x","amount":"0","category":"GROCERIES"}`, "INVALID_AMOUNT", "amount"},
		{"negative amount", `{"description":"x","amount":"-5","category":"GROCERIES"}`, "INVALID_AMOUNT", "amount"},
		{"unknown category", `{"description":"x","amount":"5","category":"CRYPTO"}`, "INVALID_CATEGORY", "category"},
		{"missing description", `{"amount":"5","category":"GROCERIES"}`, "INVALID_INPUT", "description"},
		{"malformed date", `{"description":"x","amount":"5","category":"GROCERIES","date":"05/03/2024"}`, "INVALID_INPUT", "date"},
	}
	for _, tt := range tests {
		t.Run("returns 400 on "+tt.name, func(t *testing.T) {
			r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}, &mockAuditService{}))
			rec := doRequest(r, "POST", "/expenses", tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			result := parseJSON(t, rec)
			assertErrorCode(t, result, tt.code)
			assertErrorField(t, result, tt.field)
		})
	}

	t.Run("returns 400 on malformed JSON", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}, &mockAuditService{}))
		rec := doRequest(r, "POST", "/expenses", `{"description":`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 503 when storage is down", func(t *testing.T) {
		svc := &mockExpenseService{
			createExpenseFn: func(string, string, decimal.Decimal, models.ExpenseCategory, time.Time) (*models.Expense, error) {
				return nil, apperrors.ErrStorageUnavailable
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/expenses", `{"description":"x","amount":"5","category":"GROCERIES"}`)
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "STORAGE_UNAVAILABLE")
	})
}

func TestExpenseHandler_GetExpenses(t *testing.T) {
	t.Run("passes filters and paging", func(t *testing.T) {
		svc := &mockExpenseService{
			listExpensesFn: func(_ string, page pagination.PageRequest, filter services.ExpenseFilter) (*pagination.PageResponse[models.Expense], error) {
				if page.Page != 2 || page.PageSize != 5 || page.Sort != "amount_desc" {
					t.Errorf("unexpected page request: %+v", page)
				}
				if filter.FromDate == nil || !filter.FromDate.Equal(dates.Date(2024, time.March, 1)) {
					t.Errorf("unexpected from date: %v", filter.FromDate)
				}
				if filter.ToDate == nil || !filter.ToDate.Equal(dates.Date(2024, time.March, 31)) {
					t.Errorf("unexpected to date: %v", filter.ToDate)
				}
				if filter.Category == nil || *filter.Category != models.CategoryGroceries {
					t.Errorf("unexpected category: %v", filter.Category)
				}
				resp := pagination.NewPageResponse([]models.Expense{{Description: "a"}}, 2, 5, 6)
				return &resp, nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/expenses?page=2&page_size=5&sort=amount_desc&start_date=2024-03-01&end_date=2024-03-31&category=GROCERIES", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["total_pages"] != float64(2) {
			t.Errorf("expected 2 pages, got %v", result["total_pages"])
		}
	})

	tests := []struct {
		name  string
		query string
		code  string
	}{
		{"unknown sort", "?sort=name", "INVALID_INPUT"},
		{"oversized page", "?page_size=500", "INVALID_INPUT"},
		{"bad date", "?start_date=yesterday", "INVALID_INPUT"},
		{"unknown category", "?category=CRYPTO", "INVALID_CATEGORY"},
	}
	for _, tt := range tests {
		t.Run("returns 400 on "+tt.name, func(t *testing.T) {
			r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}, &mockAuditService{}))
			rec := doRequest(r, "GET", "/expenses"+tt.query, "")
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			assertErrorCode(t, parseJSON(t, rec), tt.code)
		})
	}

	t.Run("surfaces inverted range from service", func(t *testing.T) {
		svc := &mockExpenseService{
			listExpensesFn: func(string, pagination.PageRequest, services.ExpenseFilter) (*pagination.PageResponse[models.Expense], error) {
				return nil, apperrors.ErrInvalidRange
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc, &mockAuditService{}))
		rec := doRequest(r, "GET", "/expenses?start_date=2024-03-31&end_date=2024-03-01", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_RANGE")
	})
}

func TestExpenseHandler_GetExpense(t *testing.T) {
	t.Run("returns 400 on malformed id", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}, &mockAuditService{}))
		rec := doRequest(r, "GET", "/expenses/not-a-uuid", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		assertErrorCode(t, result, "INVALID_INPUT")
		assertErrorField(t, result, "id")
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		svc := &mockExpenseService{
			getExpenseByIDFn: func(string, string) (*models.Expense, error) {
				return nil, apperrors.ErrExpenseNotFound
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc, &mockAuditService{}))
		rec := doRequest(r, "GET", "/expenses/"+testID, "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "EXPENSE_NOT_FOUND")
	})
}

func TestExpenseHandler_UpdateExpense(t *testing.T) {
	t.Run("parses date and leaves others nil", func(t *testing.T) {
		svc := &mockExpenseService{
			updateExpenseFn: func(_, expenseID string, update services.ExpenseUpdate) (*models.Expense, error) {
				if expenseID != testID {
					t.Errorf("expected id %s, got %s", testID, expenseID)
				}
				if update.Date == nil || !update.Date.Equal(dates.Date(2024, time.March, 18)) {
					t.Errorf("unexpected date: %v", update.Date)
				}
				if update.Amount != nil || update.Category != nil || update.Description != nil {
					t.Errorf("expected untouched fields to be nil: %+v", update)
				}
				return &models.Expense{}, nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/expenses/"+testID, `{"date":"2024-03-18"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns 400 on zero amount", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}, &mockAuditService{}))
		rec := doRequest(r, "PUT", "/expenses/"+testID, `{"amount":"0"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_AMOUNT")
	})
}

func TestExpenseHandler_DeleteExpense(t *testing.T) {
	audit := &mockAuditService{}
	r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}, audit))

	rec := doRequest(r, "DELETE", "/expenses/"+testID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if msg := parseJSON(t, rec)["message"]; msg != "Expense deleted successfully" {
		t.Errorf("unexpected message: %v", msg)
	}
	if got := audit.actions(); len(got) != 1 || got[0] != "DELETE_EXPENSE" {
		t.Errorf("expected DELETE_EXPENSE audit entry, got %v", got)
	}
}

func TestExpenseHandler_Aggregates(t *testing.T) {
	const march = "?start_date=2024-03-01&end_date=2024-03-31"

	t.Run("total", func(t *testing.T) {
		svc := &mockExpenseService{
			totalExpensesFn: func(_ string, start, end time.Time) (decimal.Decimal, error) {
				if !start.Equal(dates.Date(2024, time.March, 1)) || !end.Equal(dates.Date(2024, time.March, 31)) {
					t.Errorf("unexpected range %s..%s", start, end)
				}
				return decimal.RequireFromString("4270.50"), nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/expenses/total"+march, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["total"] != "4270.5" {
			t.Errorf("expected total 4270.5, got %v", result["total"])
		}
		if result["start_date"] != "2024-03-01" || result["end_date"] != "2024-03-31" {
			t.Errorf("unexpected range echo: %v", result)
		}
	})

	t.Run("by category", func(t *testing.T) {
		svc := &mockExpenseService{
			expensesByCategoryFn: func(string, time.Time, time.Time) (map[models.ExpenseCategory]decimal.Decimal, error) {
				return map[models.ExpenseCategory]decimal.Decimal{
					models.CategoryGroceries:      decimal.RequireFromString("4150.50"),
					models.CategoryTransportation: decimal.RequireFromString("120"),
				}, nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/expenses/by-category"+march, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		cats := parseJSON(t, rec)["categories"].(map[string]interface{})
		if len(cats) != 2 || cats["GROCERIES"] != "4150.5" {
			t.Errorf("unexpected categories: %v", cats)
		}
	})

	t.Run("daily renders empty list", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/expenses/daily"+march, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		days, ok := parseJSON(t, rec)["days"].([]interface{})
		if !ok || len(days) != 0 {
			t.Errorf("expected empty days list, got %v", days)
		}
	})

	t.Run("returns 400 without range", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}, &mockAuditService{}))
		for _, path := range []string{"/expenses/total", "/expenses/by-category?start_date=2024-03-01", "/expenses/daily?end_date=2024-03-31"} {
			rec := doRequest(r, "GET", path, "")
			if rec.Code != http.StatusBadRequest {
				t.Errorf("%s: expected 400, got %d", path, rec.Code)
				continue
			}
			assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
		}
	})

	t.Run("returns 400 on inverted range", func(t *testing.T) {
		svc := &mockExpenseService{
			totalExpensesFn: func(string, time.Time, time.Time) (decimal.Decimal, error) {
				return decimal.Zero, apperrors.ErrInvalidRange
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc, &mockAuditService{}))
		rec := doRequest(r, "GET", "/expenses/total?start_date=2024-03-31&end_date=2024-03-01", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_RANGE")
	})
}
