package system

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"problemsolving.GO/api"
	"problemsolving.GO/core/metrics"
	"problemsolving.GO/core/testdb"
)

func TestHealthAndMetrics(t *testing.T) {
	deps := api.NewDeps(testdb.Open(t), nil, nil)
	e := echo.New()
	RegisterSystemRoutes(e, deps)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"database":"ok"`) {
		t.Errorf("health = %d %s", rec.Code, rec.Body.String())
	}

	metrics.MissionsCreated.WithLabelValues("acme", "single").Inc()
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "missions_created_total") {
		t.Errorf("metrics = %d, body lacks missions_created_total", rec.Code)
	}
}
