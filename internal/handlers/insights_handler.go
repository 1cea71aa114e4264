package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finloan/internal/services"
)

// InsightsHandler serves pre-aggregated spending snapshots.
type InsightsHandler struct {
	insightsService services.InsightsServicer
}

// NewInsightsHandler creates a new InsightsHandler.
func NewInsightsHandler(insightsService services.InsightsServicer) *InsightsHandler {
	return &InsightsHandler{insightsService: insightsService}
}

// GetOverview handles the spending overview.
// @Summary     Spending overview
// @Description Month-to-date, six-month and lifetime figures with budget status, for the month containing as_of.
// @Tags        insights
// @Produce     json
// @Security    BearerAuth
// @Param       as_of query string false "Reference date (YYYY-MM-DD, default today)"
// @Success     200 {object} services.InsightsOverview "Overview"
// @Failure     400 {object} ErrorResponse "Invalid as_of"
// @Router      /insights/overview [get]
func (h *InsightsHandler) GetOverview(c *gin.Context) {
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

	overview, err := h.insightsService.GetOverview(userID, asOf)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"overview": overview})
}
