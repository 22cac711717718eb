package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anonto42/topichub/backend/internal/docstore"
	"github.com/anonto42/topichub/backend/internal/identity/identitytest"
	"github.com/anonto42/topichub/backend/internal/repositories"
	"github.com/anonto42/topichub/backend/internal/validators"
	"github.com/anonto42/topichub/backend/pkg/metrics"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newServer(reg *metrics.Registry) *echo.Echo {
	ident := identitytest.New(0)
	e := echo.New()
	e.Validator = validators.NewValidator()
	e.Use(reg.Middleware())
	SetupRoutes(e, Dependencies{
		Repositories: repositories.New(docstore.NewMemory(), ident, zap.NewNop(), repositories.Options{}),
		Identity:     ident,
		JWTSecret:    "secret",
		JWTTTL:       time.Hour,
		Log:          zap.NewNop(),
		Errors:       reg,
	})
	return e
}

func serve(e *echo.Echo, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestSetupRoutes_Health(t *testing.T) {
	e := newServer(metrics.NewRegistry())

	rec := serve(e, http.MethodGet, "/health")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"topichub-api"}`, rec.Body.String())
}

func TestSetupRoutes_Groups(t *testing.T) {
	e := newServer(metrics.NewRegistry())

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/v1/posts", http.StatusOK},
		{http.MethodGet, "/api/v1/topics", http.StatusOK},
		{http.MethodGet, "/api/v1/users/u1/exists", http.StatusOK},
		{http.MethodGet, "/api/v1/users", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/users/u1", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/editor/posts/drafts", http.StatusUnauthorized},
		{http.MethodPost, "/api/v1/topics", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, serve(e, tt.method, tt.path).Code)
		})
	}
}

func TestSetupRoutes_CountsTypedErrors(t *testing.T) {
	reg := metrics.NewRegistry()
	e := newServer(reg)

	rec := serve(e, http.MethodGet, "/api/v1/topics/missing")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t,
		`{"error":{"code":"INVALID_TOPIC_NAME","message":"Topic does not exist with name : missing"}}`,
		rec.Body.String())

	scrape := httptest.NewRecorder()
	reg.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(scrape.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `topichub_access_errors_total{kind="INVALID_TOPIC_NAME"} 1`)
	assert.Contains(t, string(body), `topichub_http_requests_total{method="GET",path="/api/v1/topics/:name",status="404"} 1`)
}
