package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidharth07/verbiforge-sub000/internal/config"
	"github.com/sidharth07/verbiforge-sub000/internal/routes"
)

func TestRouterHealthMetricsAndCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Server:  config.ServerConfig{CORSAllowedOrigins: []string{"http://app.example.com"}},
		Storage: config.StorageConfig{MaxUploadBytes: 1 << 20},
	}
	deny := func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := NewRouter(cfg, log, prometheus.NewRegistry(), routes.Handlers{
		Authenticate:         deny,
		OptionalAuthenticate: deny,
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/projects", nil)
	req.Header.Set("Origin", "http://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "http://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `verbiforge_api_http_requests_total{method="GET",route="/",status="200"} 1`)
	assert.Contains(t, w.Body.String(), `route="/api/v1/users/me",status="401"`)
}
