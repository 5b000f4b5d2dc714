package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mantonx/moviecat/internal/config"
	"github.com/mantonx/moviecat/internal/database/dbtest"
	"github.com/mantonx/moviecat/internal/modules/catalogmodule"
	"github.com/mantonx/moviecat/internal/modules/modulemanager"
)

func testDeps(t *testing.T) Deps {
	t.Helper()
	db := dbtest.Open(t)
	cfg := config.DefaultConfig()
	cfg.Server.Mode = "test"

	registry := modulemanager.NewRegistry(nil)
	registry.Register(catalogmodule.NewModule(db, cfg, nil))
	require.NoError(t, registry.LoadAll(db))

	return Deps{Config: cfg, DB: db, Registry: registry}
}

func TestHealthReportsModules(t *testing.T) {
	router := SetupRouter(testDeps(t))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/health", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Status   string                                `json:"status"`
		Database string                                `json:"database"`
		Modules  map[string]modulemanager.HealthStatus `json:"modules"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "ok", body.Database)
	assert.Contains(t, body.Modules, catalogmodule.ModuleID)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestHealthDegradesWhenDatabaseClosed(t *testing.T) {
	deps := testDeps(t)
	router := SetupRouter(deps)

	sqlDB, err := deps.DB.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
}

func TestModuleRoutesMountedUnderAPI(t *testing.T) {
	router := SetupRouter(testDeps(t))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/recently-released", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/recently-released", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router := SetupRouter(testDeps(t))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/health", nil)
	router.ServeHTTP(w, req)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/metrics", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "moviecat_http_requests_total"))
}

func TestServerShutsDownOnCancel(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	srv := New(config.ServerConfig{Host: "127.0.0.1", Port: 8000, ShutdownTimeout: time.Second}, handler, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv.listen = func(_, _ string) (net.Listener, error) { return ln, nil }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://%s/", ln.Addr()))
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusNoContent
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServerAddr(t *testing.T) {
	srv := New(config.ServerConfig{Host: "0.0.0.0", Port: 9001}, http.NotFoundHandler(), nil)
	assert.Equal(t, "0.0.0.0:9001", srv.Addr())
}
