package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"photofeed-backend/internal/telemetry"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEcho(mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.Use(mw...)
	e.GET("/ok", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/items/:id", func(c echo.Context) error { return c.String(http.StatusOK, c.Param("id")) })
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "short and stout")
	})
	return e
}

func do(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSecurityHeaders(t *testing.T) {
	e := newEcho(SecurityHeaders("fotitos.example.com"))

	rec := do(e, httptest.NewRequest(http.MethodGet, "/ok", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "default-src 'none'; frame-ancestors https://fotitos.example.com", rec.Header().Get("Content-Security-Policy"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rec = do(e, req)
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestSecurityHeaders_LocalDomain(t *testing.T) {
	rec := do(newEcho(SecurityHeaders("localhost:3000")), httptest.NewRequest(http.MethodGet, "/ok", nil))

	assert.Equal(t, "default-src 'none'; frame-ancestors 'self'", rec.Header().Get("Content-Security-Policy"))
}

func TestCORSConfig(t *testing.T) {
	tcs := []struct {
		name    string
		domain  string
		origin  string
		allowed bool
	}{
		{"DevDefault", "", "http://localhost:3000", true},
		{"DevOtherOrigin", "", "https://evil.example.com", false},
		{"ProductionHTTPS", "fotitos.example.com", "https://fotitos.example.com", true},
		{"ProductionPlainHTTP", "fotitos.example.com", "http://fotitos.example.com", false},
		{"LocalPlainHTTP", "localhost:8081", "http://localhost:8081", true},
	}
	for _, c := range tcs {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ok", nil)
			req.Header.Set(echo.HeaderOrigin, c.origin)

			rec := do(newEcho(CORSConfig(c.domain)), req)

			if c.allowed {
				assert.Equal(t, c.origin, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
			} else {
				assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
			}
		})
	}
}

func TestMetrics_UsesRouteTemplate(t *testing.T) {
	e := newEcho(Metrics())
	counter := telemetry.HTTPRequests.WithLabelValues("/items/:id", http.MethodGet, "200")
	before := testutil.ToFloat64(counter)

	do(e, httptest.NewRequest(http.MethodGet, "/items/1", nil))
	do(e, httptest.NewRequest(http.MethodGet, "/items/2", nil))

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}

func TestMetrics_RecordsHandlerErrorStatus(t *testing.T) {
	e := newEcho(Metrics())
	counter := telemetry.HTTPRequests.WithLabelValues("/boom", http.MethodGet, "418")
	before := testutil.ToFloat64(counter)

	rec := do(e, httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestRequestLogger_PassesResponseThrough(t *testing.T) {
	e := newEcho(RequestLogger())

	rec := do(e, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Contains(t, rec.Body.String(), "short and stout")

	rec = do(e, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
