package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestPipelineAuthMiddleware(t *testing.T) {
	const key = "pipeline-key"

	tests := []struct {
		name       string
		configured string
		header     string
		wantStatus int
		wantCode   string
		wantRun    bool
	}{
		{"matching_key_runs", key, key, http.StatusOK, "", true},
		{"wrong_key", key, "pipeline-kez", http.StatusUnauthorized, "INVALID_API_KEY", false},
		{"missing_key", key, "", http.StatusUnauthorized, "INVALID_API_KEY", false},
		{"prefix_of_key", key, "pipeline", http.StatusUnauthorized, "INVALID_API_KEY", false},
		{"endpoint_disabled", "", "anything", http.StatusServiceUnavailable, "PIPELINE_NOT_CONFIGURED", false},
		{"endpoint_disabled_without_header", "", "", http.StatusServiceUnavailable, "PIPELINE_NOT_CONFIGURED", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ran := false
			r := gin.New()
			r.POST("/pipeline/recurring/run", PipelineAuthMiddleware(tt.configured), func(c *gin.Context) {
				ran = true
				c.JSON(http.StatusOK, gin.H{"result": gin.H{"materialized": 0}})
			})

			req := httptest.NewRequest(http.MethodPost, "/pipeline/recurring/run", http.NoBody)
			if tt.header != "" {
				req.Header.Set("X-API-Key", tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if ran != tt.wantRun {
				t.Errorf("handler ran = %v, want %v", ran, tt.wantRun)
			}
			if tt.wantCode == "" {
				return
			}

			var body struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to parse response body: %v", err)
			}
			if body.Error.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, body.Error.Code)
			}
		})
	}
}
