package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"finloan/internal/aggregate"
	"finloan/internal/dates"
	"finloan/internal/models"
	"finloan/internal/pagination"
	"finloan/internal/services"
)

// ExpenseHandler handles expense-related requests.
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
	auditService   services.AuditServicer
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseService services.ExpenseServicer, auditService services.AuditServicer) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService, auditService: auditService}
}

// CreateExpenseRequest represents the request payload for recording an expense.
// Date defaults to today when omitted.
type CreateExpenseRequest struct {
	Description string                 `json:"description" binding:"required,min=1,max=255"`
	Amount      decimal.Decimal        `json:"amount" binding:"gt=0" swaggertype:"string" example:"850.50"`
	Category    models.ExpenseCategory `json:"category" binding:"required,expense_category"`
	Date        string                 `json:"date" binding:"omitempty,civil_date" example:"2024-03-05"`
}

// UpdateExpenseRequest represents the request payload for updating an expense.
type UpdateExpenseRequest struct {
	Description *string                 `json:"description" binding:"omitempty,min=1,max=255"`
	Amount      *decimal.Decimal        `json:"amount" binding:"omitempty,gt=0" swaggertype:"string"`
	Category    *models.ExpenseCategory `json:"category" binding:"omitempty,expense_category"`
	Date        *string                 `json:"date" binding:"omitempty,civil_date"`
}

// ListExpensesQuery holds the filters accepted by GET /expenses.
type ListExpensesQuery struct {
	pagination.PageRequest
	StartDate string `form:"start_date" binding:"omitempty,civil_date"`
	EndDate   string `form:"end_date" binding:"omitempty,civil_date"`
	Category  string `form:"category" binding:"omitempty,expense_category"`
}

// DateRangeQuery is the inclusive range required by the aggregate endpoints.
type DateRangeQuery struct {
	StartDate string `form:"start_date" binding:"required,civil_date"`
	EndDate   string `form:"end_date" binding:"required,civil_date"`
}

// TotalResponse is the body of GET /expenses/total.
type TotalResponse struct {
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date"`
	Total     decimal.Decimal `json:"total" swaggertype:"string"`
}

// CreateExpense handles recording a new expense.
// @Summary     Record an expense
// @Description Record a manual expense. Amounts are decimal strings with at most two places.
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateExpenseRequest true "Expense details"
// @Success     201 {object} models.Expense "Expense created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Storage unavailable"
// @Router      /expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	date, err := parseDate("date", req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if date == nil {
		today := dates.Today(nil)
		date = &today
	}

	expense, err := h.expenseService.CreateExpense(userID, req.Description, req.Amount, req.Category, *date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_EXPENSE", "expense", expense.ID, c.ClientIP(),
		map[string]interface{}{"amount": expense.Amount.StringFixed(2), "category": expense.Category, "date": dates.Format(expense.Date)})

	c.JSON(http.StatusCreated, gin.H{"expense": expense})
}

// GetExpenses handles listing the caller's expenses.
// @Summary     List expenses
// @Description Paginated expenses, optionally filtered by an inclusive date range and category
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       start_date query string false "From date (YYYY-MM-DD, inclusive)"
// @Param       end_date   query string false "To date (YYYY-MM-DD, inclusive)"
// @Param       category   query string false "Expense category"
// @Param       sort       query string false "date_desc (default), date_asc, amount_desc, amount_asc"
// @Param       page       query int    false "Page number (default 1)"
// @Param       page_size  query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Expense] "Paginated expenses"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /expenses [get]
func (h *ExpenseHandler) GetExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q ListExpensesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	var filter services.ExpenseFilter
	if filter.FromDate, err = parseDate("start_date", q.StartDate); err != nil {
		respondWithError(c, err)
		return
	}
	if filter.ToDate, err = parseDate("end_date", q.EndDate); err != nil {
		respondWithError(c, err)
		return
	}
	if q.Category != "" {
		cat := models.ExpenseCategory(q.Category)
		filter.Category = &cat
	}

	result, err := h.expenseService.ListExpenses(userID, q.PageRequest, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetExpense handles retrieving one expense.
// @Summary     Get expense by ID
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} models.Expense "Expense details"
// @Failure     400 {object} ErrorResponse "Invalid expense ID"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /expenses/{id} [get]
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.GetExpenseByID(userID, expenseID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// UpdateExpense handles partial updates to an expense.
// @Summary     Update expense
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string               true "Expense ID"
// @Param       request body UpdateExpenseRequest true "Fields to change"
// @Success     200 {object} models.Expense "Updated expense"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	update := services.ExpenseUpdate{
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
	}
	if req.Date != nil {
		if update.Date, err = parseDate("date", *req.Date); err != nil {
			respondWithError(c, err)
			return
		}
	}

	expense, err := h.expenseService.UpdateExpense(userID, expenseID, update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_EXPENSE", "expense", expenseID, c.ClientIP(),
		map[string]interface{}{"amount": expense.Amount.StringFixed(2), "category": expense.Category})

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// DeleteExpense handles deleting an expense.
// @Summary     Delete expense
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} MessageResponse "Expense deleted"
// @Failure     400 {object} ErrorResponse "Invalid expense ID"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.expenseService.DeleteExpense(userID, expenseID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_EXPENSE", "expense", expenseID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}

// GetTotal handles the total spent over a date range.
// @Summary     Total spent
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       start_date query string true "From date (YYYY-MM-DD, inclusive)"
// @Param       end_date   query string true "To date (YYYY-MM-DD, inclusive)"
// @Success     200 {object} TotalResponse "Total"
// @Failure     400 {object} ErrorResponse "Invalid range"
// @Router      /expenses/total [get]
func (h *ExpenseHandler) GetTotal(c *gin.Context) {
	userID, start, end, ok := h.dateRange(c)
	if !ok {
		return
	}

	total, err := h.expenseService.TotalExpenses(userID, start, end)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, TotalResponse{
		StartDate: dates.Format(start),
		EndDate:   dates.Format(end),
		Total:     total,
	})
}

// GetByCategory handles per-category totals over a date range.
// @Summary     Spending by category
// @Description Categories without expenses in the range are omitted.
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       start_date query string true "From date (YYYY-MM-DD, inclusive)"
// @Param       end_date   query string true "To date (YYYY-MM-DD, inclusive)"
// @Success     200 {object} map[string]string "Category totals"
// @Failure     400 {object} ErrorResponse "Invalid range"
// @Router      /expenses/by-category [get]
func (h *ExpenseHandler) GetByCategory(c *gin.Context) {
	userID, start, end, ok := h.dateRange(c)
	if !ok {
		return
	}

	totals, err := h.expenseService.ExpensesByCategory(userID, start, end)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": totals})
}

// GetDaily handles per-day totals over a date range.
// @Summary     Daily spending
// @Description One entry per day that has expenses, oldest first.
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       start_date query string true "From date (YYYY-MM-DD, inclusive)"
// @Param       end_date   query string true "To date (YYYY-MM-DD, inclusive)"
// @Success     200 {array} aggregate.DailyTotal "Daily totals"
// @Failure     400 {object} ErrorResponse "Invalid range"
// @Router      /expenses/daily [get]
func (h *ExpenseHandler) GetDaily(c *gin.Context) {
	userID, start, end, ok := h.dateRange(c)
	if !ok {
		return
	}

	daily, err := h.expenseService.DailyExpenses(userID, start, end)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if daily == nil {
		daily = []aggregate.DailyTotal{}
	}

	c.JSON(http.StatusOK, gin.H{"days": daily})
}

func (h *ExpenseHandler) dateRange(c *gin.Context) (userID string, start, end time.Time, ok bool) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return "", start, end, false
	}

	var q DateRangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, bindError(err))
		return "", start, end, false
	}

	s, _ := parseDate("start_date", q.StartDate)
	e, _ := parseDate("end_date", q.EndDate)
	return userID, *s, *e, true
}
