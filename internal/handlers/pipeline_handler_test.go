package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"finloan/internal/dates"
	"finloan/internal/services"
)

func setupPipelineRouter(handler *PipelineHandler) *gin.Engine {
	r := gin.New()
	r.POST("/pipeline/recurring/run", handler.RunRecurring)
	return r
}

func TestPipelineHandler_RunRecurring(t *testing.T) {
	t.Run("returns run summary", func(t *testing.T) {
		proj := &mockProjectionService{
			runFn: func(_ context.Context, asOf time.Time) (*services.RunResult, error) {
				if !asOf.Equal(dates.Date(2024, time.April, 1)) {
					t.Errorf("unexpected as_of %s", asOf)
				}
				return &services.RunResult{
					AsOf: asOf, Definitions: 3, Materialized: 8, Skipped: 1,
					Errors: []services.DefinitionError{{RecurringExpenseID: testID, Code: "INVALID_FREQUENCY"}},
				}, nil
			},
		}
		r := setupPipelineRouter(NewPipelineHandler(proj))

		rec := doRequest(r, "POST", "/pipeline/recurring/run?as_of=2024-04-01", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)["result"].(map[string]interface{})
		if result["materialized"] != float64(8) || result["skipped"] != float64(1) {
			t.Errorf("unexpected result: %v", result)
		}
		if errs := result["errors"].([]interface{}); len(errs) != 1 {
			t.Errorf("expected 1 definition error, got %d", len(errs))
		}
	})

	t.Run("returns 500 when run aborts", func(t *testing.T) {
		proj := &mockProjectionService{
			runFn: func(context.Context, time.Time) (*services.RunResult, error) {
				return nil, errors.New("boom")
			},
		}
		r := setupPipelineRouter(NewPipelineHandler(proj))

		rec := doRequest(r, "POST", "/pipeline/recurring/run", "")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INTERNAL_ERROR")
	})
}
