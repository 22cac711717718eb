package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_RecordsRouteTemplate(t *testing.T) {
	reg := NewRegistry()
	e := echo.New()
	e.Use(reg.Middleware())
	e.GET("/posts/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})
	e.GET("/fail", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot)
	})

	for _, path := range []string{"/posts/a", "/posts/b", "/fail"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(reg.requestsTotal.WithLabelValues("GET", "/posts/:id", "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.requestsTotal.WithLabelValues("GET", "/fail", "418")))
	assert.Equal(t, 0.0, testutil.ToFloat64(reg.inFlight))
}

func TestRecordError_Exposed(t *testing.T) {
	reg := NewRegistry()
	reg.RecordError("INVALID_POST_ID")
	reg.RecordError("INVALID_POST_ID")

	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `topichub_access_errors_total{kind="INVALID_POST_ID"} 2`), body)
}
