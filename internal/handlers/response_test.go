package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/greenstem/plantcare-backend/internal/apierr"
)

func recordResponse(t *testing.T, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	handler(c)
	return w
}

func TestRespondFromError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "not_found", err: apierr.NotFound("plant_not_found", fmt.Errorf("missing")), wantStatus: http.StatusNotFound, wantCode: "plant_not_found"},
		{name: "conflict", err: apierr.Conflict("task_already_closed", fmt.Errorf("closed")), wantStatus: http.StatusConflict, wantCode: "task_already_closed"},
		{name: "wrapped", err: fmt.Errorf("outer: %w", apierr.Validation("invalid_humidity", fmt.Errorf("bad"))), wantStatus: http.StatusBadRequest, wantCode: "invalid_humidity"},
		{name: "plain_error", err: fmt.Errorf("boom"), wantStatus: http.StatusInternalServerError, wantCode: "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := recordResponse(t, func(c *gin.Context) {
				RespondFromError(c, tc.err)
			})
			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantStatus)
			}
			var envelope ErrorEnvelope
			if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if envelope.Error.Code != tc.wantCode {
				t.Fatalf("code = %q, want %q", envelope.Error.Code, tc.wantCode)
			}
			if envelope.Error.Message == "" {
				t.Fatalf("message must not be empty")
			}
		})
	}
}

func TestHealthCheck(t *testing.T) {
	w := recordResponse(t, HealthCheck)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("body = %v", body)
	}
}
