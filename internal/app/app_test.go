package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chezblos/internal/infrastructure"
)

func newTestApplication(t *testing.T) *Application {
	t.Helper()

	infrastructure.ResetLoggerForTesting()
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	// Quiet logs and generous rate limit for the test run.
	t.Setenv("CHEZBLOS_LOGGING_LEVEL", "error")
	t.Setenv("CHEZBLOS_SECURITY_RATE_LIMIT_RPS", "1000")
	t.Setenv("CHEZBLOS_SECURITY_RATE_LIMIT_BURST", "1000")

	app, err := NewApplication()
	require.NoError(t, err)
	return app
}

func TestApplicationHealthEndpoint(t *testing.T) {
	app := newTestApplication(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestApplicationSecurityHeaders(t *testing.T) {
	app := newTestApplication(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestApplicationNotFoundProblem(t *testing.T) {
	app := newTestApplication(t)

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "/errors/not-found")
}

func TestApplicationExportRoundtrip(t *testing.T) {
	app := newTestApplication(t)

	body := `{"records": []}`
	req := httptest.NewRequest(http.MethodPost, "/api/exports/stock", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "stock_chez_blos_")
}

func TestApplicationMetricsEndpoint(t *testing.T) {
	app := newTestApplication(t)

	// Trigger one export so the counter appears in the scrape.
	exportReq := httptest.NewRequest(http.MethodPost, "/api/exports/staff", strings.NewReader(`{"records": []}`))
	exportReq.Header.Set("Content-Type", "application/json")
	app.Router().ServeHTTP(httptest.NewRecorder(), exportReq)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "chezblos_exports_total")
}
