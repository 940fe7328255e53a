package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/greenstem/plantcare-backend/internal/apierr"
	"github.com/greenstem/plantcare-backend/internal/logger"
	"github.com/greenstem/plantcare-backend/internal/requestdata"
	"github.com/greenstem/plantcare-backend/internal/types"
)

type stubIdentity struct {
	userID uuid.UUID
	err    error
}

func (s *stubIdentity) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if s.err != nil {
		return ctx, s.err
	}
	return requestdata.WithRequestData(ctx, &requestdata.RequestData{
		TokenString:    tokenString,
		ExternalAuthID: "ext-stub",
		UserID:         s.userID,
	}), nil
}

func (s *stubIdentity) FindOrCreateUser(ctx context.Context, externalID, email, name, preferredUsername string) (*types.User, error) {
	return nil, fmt.Errorf("not used")
}

func newAuthRouter(t *testing.T, identity *stubIdentity) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	r := gin.New()
	r.Use(NewAuthMiddleware(log, identity).RequireAuth())
	r.GET("/protected", func(c *gin.Context) {
		rd := requestdata.GetRequestData(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"user_id": rd.UserID})
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	userID := uuid.New()

	cases := []struct {
		name       string
		identity   *stubIdentity
		header     string
		query      string
		wantStatus int
	}{
		{name: "bearer_header", identity: &stubIdentity{userID: userID}, header: "Bearer good-token", wantStatus: http.StatusOK},
		{name: "query_token", identity: &stubIdentity{userID: userID}, query: "?token=good-token", wantStatus: http.StatusOK},
		{name: "missing_token", identity: &stubIdentity{userID: userID}, wantStatus: http.StatusUnauthorized},
		{name: "malformed_header", identity: &stubIdentity{userID: userID}, header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "rejected_token", identity: &stubIdentity{err: apierr.Unauthorized("invalid_token", fmt.Errorf("bad"))}, header: "Bearer bad-token", wantStatus: http.StatusUnauthorized},
		{name: "no_user_resolved", identity: &stubIdentity{userID: uuid.Nil}, header: "Bearer orphan-token", wantStatus: http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newAuthRouter(t, tc.identity)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)
			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tc.wantStatus, w.Body.String())
			}
		})
	}
}
