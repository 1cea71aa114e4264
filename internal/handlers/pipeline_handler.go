package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finloan/internal/dates"
	"finloan/internal/logger"
	"finloan/internal/services"
)

// PipelineHandler serves endpoints called by schedulers rather than users.
type PipelineHandler struct {
	projectionService services.ProjectionServicer
}

// NewPipelineHandler creates a new PipelineHandler.
func NewPipelineHandler(projectionService services.ProjectionServicer) *PipelineHandler {
	return &PipelineHandler{projectionService: projectionService}
}

// RunRecurring handles a projection run over every user.
// @Summary     Run recurring projection
// @Description Materializes every due occurrence of every active template up to as_of (default today). Per-template failures are reported, not fatal.
// @Tags        pipeline
// @Produce     json
// @Param       X-API-Key header string true  "Pipeline API key"
// @Param       as_of     query  string false "Reference date (YYYY-MM-DD)"
// @Success     200 {object} services.RunResult "Run summary"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     503 {object} ErrorResponse "Pipeline not configured"
// @Router      /pipeline/recurring/run [post]
func (h *PipelineHandler) RunRecurring(c *gin.Context) {
	asOf, err := asOfQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.projectionService.Run(c.Request.Context(), asOf)
	if err != nil {
		respondWithError(c, err)
		return
	}

	logger.Get().Infow("pipeline recurring run",
		"as_of", dates.Format(asOf),
		"materialized", result.Materialized,
		"failed", len(result.Errors),
	)
	c.JSON(http.StatusOK, gin.H{"result": result})
}
