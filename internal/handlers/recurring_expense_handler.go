package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"finloan/internal/dates"
	apperrors "finloan/internal/errors"
	"finloan/internal/models"
	"finloan/internal/services"
)

// RecurringExpenseHandler handles recurring expense templates and
// on-demand projection for the caller.
type RecurringExpenseHandler struct {
	recurringService  services.RecurringExpenseServicer
	projectionService services.ProjectionServicer
	auditService      services.AuditServicer
}

// NewRecurringExpenseHandler creates a new RecurringExpenseHandler.
func NewRecurringExpenseHandler(
	recurringService services.RecurringExpenseServicer,
	projectionService services.ProjectionServicer,
	auditService services.AuditServicer,
) *RecurringExpenseHandler {
	return &RecurringExpenseHandler{
		recurringService:  recurringService,
		projectionService: projectionService,
		auditService:      auditService,
	}
}

// CreateRecurringExpenseRequest represents the request payload for creating a template.
type CreateRecurringExpenseRequest struct {
	Name      string                 `json:"name" binding:"required,min=1,max=255"`
	Amount    decimal.Decimal        `json:"amount" binding:"gt=0" swaggertype:"string" example:"649.00"`
	Category  models.ExpenseCategory `json:"category" binding:"required,expense_category"`
	Frequency string                 `json:"frequency" binding:"required" example:"MONTHLY"`
	StartDate string                 `json:"start_date" binding:"required,civil_date" example:"2024-01-31"`
}

// UpdateRecurringExpenseRequest represents the request payload for updating a template.
// Frequency and start date cannot change; create a new template instead.
type UpdateRecurringExpenseRequest struct {
	Name     *string                 `json:"name" binding:"omitempty,min=1,max=255"`
	Amount   *decimal.Decimal        `json:"amount" binding:"omitempty,gt=0" swaggertype:"string"`
	Category *models.ExpenseCategory `json:"category" binding:"omitempty,expense_category"`
	IsActive *bool                   `json:"is_active"`
}

// CreateRecurringExpense handles creating a recurring expense template.
// @Summary     Create a recurring expense
// @Description Create a template that materializes an expense on every occurrence from start_date on.
// @Tags        recurring-expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateRecurringExpenseRequest true "Template details"
// @Success     201 {object} models.RecurringExpense "Template created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /recurring-expenses [post]
func (h *RecurringExpenseHandler) CreateRecurringExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateRecurringExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	start, err := dates.Parse(req.StartDate)
	if err != nil {
		respondWithError(c, apperrors.WithField(apperrors.ErrInvalidInput, "start_date", err.Error()))
		return
	}

	re, err := h.recurringService.CreateRecurringExpense(
		userID, req.Name, req.Amount, req.Category, models.RecurrenceFrequency(req.Frequency), start,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_RECURRING_EXPENSE", "recurring_expense", re.ID, c.ClientIP(),
		map[string]interface{}{"name": re.Name, "frequency": re.Frequency, "amount": re.Amount.StringFixed(2)})

	c.JSON(http.StatusCreated, gin.H{"recurring_expense": re})
}

// GetRecurringExpenses handles listing templates.
// @Summary     List recurring expenses
// @Tags        recurring-expenses
// @Produce     json
// @Security    BearerAuth
// @Param       is_active query bool false "Filter by active status"
// @Success     200 {array}  models.RecurringExpense "Templates"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /recurring-expenses [get]
func (h *RecurringExpenseHandler) GetRecurringExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var isActive *bool
	if v := c.Query("is_active"); v != "" {
		switch v {
		case "true":
			b := true
			isActive = &b
		case "false":
			b := false
			isActive = &b
		default:
			respondWithError(c, apperrors.WithField(apperrors.ErrInvalidInput, "is_active", "is_active must be 'true' or 'false'"))
			return
		}
	}

	recurring, err := h.recurringService.ListRecurringExpenses(userID, isActive)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recurring_expenses": recurring})
}

// GetRecurringExpense handles retrieving one template.
// @Summary     Get recurring expense by ID
// @Tags        recurring-expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Recurring expense ID"
// @Success     200 {object} models.RecurringExpense "Template"
// @Failure     404 {object} ErrorResponse "Recurring expense not found"
// @Router      /recurring-expenses/{id} [get]
func (h *RecurringExpenseHandler) GetRecurringExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	re, err := h.recurringService.GetRecurringExpenseByID(userID, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recurring_expense": re})
}

// UpdateRecurringExpense handles updating a template. Setting is_active to
// false pauses projection; already materialized expenses are kept.
// @Summary     Update recurring expense
// @Tags        recurring-expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                        true "Recurring expense ID"
// @Param       request body UpdateRecurringExpenseRequest true "Fields to change"
// @Success     200 {object} models.RecurringExpense "Updated template"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Recurring expense not found"
// @Router      /recurring-expenses/{id} [put]
func (h *RecurringExpenseHandler) UpdateRecurringExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateRecurringExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	re, err := h.recurringService.UpdateRecurringExpense(userID, id, services.RecurringExpenseUpdate{
		Name:     req.Name,
		Amount:   req.Amount,
		Category: req.Category,
		IsActive: req.IsActive,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_RECURRING_EXPENSE", "recurring_expense", id, c.ClientIP(),
		map[string]interface{}{"is_active": re.IsActive, "amount": re.Amount.StringFixed(2)})

	c.JSON(http.StatusOK, gin.H{"recurring_expense": re})
}

// DeleteRecurringExpense handles deleting a template.
// @Summary     Delete recurring expense
// @Description Stops future occurrences. Expenses already materialized are kept.
// @Tags        recurring-expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Recurring expense ID"
// @Success     200 {object} MessageResponse "Template deleted"
// @Failure     404 {object} ErrorResponse "Recurring expense not found"
// @Router      /recurring-expenses/{id} [delete]
func (h *RecurringExpenseHandler) DeleteRecurringExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.recurringService.DeleteRecurringExpense(userID, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_RECURRING_EXPENSE", "recurring_expense", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Recurring expense deleted successfully"})
}

// RunMine handles projecting the caller's templates up to as_of.
// @Summary     Materialize my recurring expenses
// @Description Writes every due occurrence of the caller's active templates up to and including as_of (default today). Safe to repeat.
// @Tags        recurring-expenses
// @Produce     json
// @Security    BearerAuth
// @Param       as_of query string false "Reference date (YYYY-MM-DD)"
// @Success     200 {object} services.RunResult "Run summary"
// @Failure     400 {object} ErrorResponse "Invalid as_of"
// @Router      /recurring-expenses/run [post]
func (h *RecurringExpenseHandler) RunMine(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	asOf, err := asOfQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.projectionService.RunForUser(c.Request.Context(), userID, asOf)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if result.Materialized > 0 {
		h.auditService.Log(userID, "RUN_RECURRING", "recurring_expense", "", c.ClientIP(),
			map[string]interface{}{"as_of": dates.Format(asOf), "materialized": result.Materialized})
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}
