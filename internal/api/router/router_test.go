package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/pairreview/pairreview/internal/config"
	"github.com/pairreview/pairreview/internal/localreview"
	"github.com/pairreview/pairreview/internal/orchestrator"
	"github.com/pairreview/pairreview/internal/progress"
	"github.com/pairreview/pairreview/internal/prompt"
	"github.com/pairreview/pairreview/internal/store"
	"github.com/pairreview/pairreview/pkg/logger"
)

func init() {
	logger.Init(logger.Config{Level: "error", Format: "text"})
}

func newTestDeps(t *testing.T) Deps {
	t.Helper()
	st, cleanup := store.SetupTestDB(t)
	t.Cleanup(cleanup)

	manager := localreview.NewManager(st)
	bus := progress.NewBus()
	prompts := prompt.NewBuilder()
	orch := orchestrator.New(t.Context(), st, manager, prompts, bus, orchestrator.DefaultConfig(), nil)

	cfg := config.Default()
	cfg.Port = 7247

	return Deps{
		Config:       cfg,
		Store:        st,
		Orchestrator: orch,
		Manager:      manager,
		Bus:          bus,
		Prompts:      prompts,
		DebugMode:    false,
	}
}

func TestSetup_HealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	Setup(r, newTestDeps(t))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestSetup_LocalReviewRoutesExist(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	Setup(r, newTestDeps(t))

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{name: "missing local review returns 404", method: "GET", path: "/api/local/999999", expectedStatus: http.StatusNotFound},
		{name: "missing run returns 404", method: "GET", path: "/api/local/999999/runs/nonexistent", expectedStatus: http.StatusNotFound},
		{name: "missing run logs returns 200 with empty list", method: "GET", path: "/api/local/999999/runs/nonexistent/logs", expectedStatus: http.StatusOK},
		{name: "list sessions always resolves", method: "GET", path: "/api/local/sessions", expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(tt.method, tt.path, nil)
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestSetup_NoTrailingSlashRedirect(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	deps := newTestDeps(t)
	Setup(r, deps)

	// router.Setup itself doesn't configure RedirectTrailingSlash - that's
	// internal/server's job - but mcp should respond directly without a
	// redirect loop regardless of trailing slash handling upstream.
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/mcp", nil)
	r.ServeHTTP(w, req)

	assert.NotEqual(t, http.StatusMovedPermanently, w.Code)
}

func TestSetup_CORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	Setup(r, newTestDeps(t))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("OPTIONS", "/health", nil)
	req.Header.Set("Origin", "http://localhost:7247")
	req.Header.Set("Access-Control-Request-Method", "GET")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:7247", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSetup_RequestIDHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	Setup(r, newTestDeps(t))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	r.ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestPortString(t *testing.T) {
	assert.Equal(t, "3000", portString(0))
	assert.Equal(t, "7247", portString(7247))
}
