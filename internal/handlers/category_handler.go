package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finloan/internal/models"
)

// CategoryHandler serves the fixed classification values clients render in
// pickers. Categories and frequencies are not user-editable.
type CategoryHandler struct{}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

// CategoriesResponse lists the accepted classification values.
type CategoriesResponse struct {
	Categories  []models.ExpenseCategory     `json:"categories"`
	Frequencies []models.RecurrenceFrequency `json:"frequencies"`
}

// GetCategories handles listing expense categories and recurrence frequencies.
// @Summary     List categories
// @Description Expense categories in display order and supported recurrence frequencies
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} CategoriesResponse "Classification values"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /categories [get]
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, CategoriesResponse{
		Categories:  models.ExpenseCategories(),
		Frequencies: models.RecurrenceFrequencies(),
	})
}
