package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/ItsOuaail/aptiv-interns-platform/internal/service"
	"github.com/ItsOuaail/aptiv-interns-platform/pkg/config"
	"github.com/ItsOuaail/aptiv-interns-platform/pkg/storage"
)

func testRouter(env string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Env: env, APIPrefix: "/api/v1"}
	app := &application{
		metrics: service.NewMetricsService(),
		auth:    service.NewAuthService(nil, nil, nil, service.AuthConfig{AccessTokenSecret: "test-secret"}),
	}
	return newRouter(cfg, zap.NewNop(), app)
}

func serve(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouterPublicEndpoints(t *testing.T) {
	r := testRouter(config.EnvDevelopment)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ready", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/metrics", "").Code)
}

func TestRouterProtectsAPI(t *testing.T) {
	r := testRouter(config.EnvDevelopment)

	paths := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/interns"},
		{http.MethodGet, "/api/v1/interns/search"},
		{http.MethodGet, "/api/v1/interns/my"},
		{http.MethodGet, "/api/v1/interns/i-1"},
		{http.MethodPost, "/api/v1/interns/message/all"},
		{http.MethodPost, "/api/v1/interns/i-1/message"},
		{http.MethodPost, "/api/v1/messages/hr"},
		{http.MethodGet, "/api/v1/notifications"},
		{http.MethodGet, "/api/v1/interns/active/count"},
		{http.MethodGet, "/api/v1/interns/upcoming-end-dates/count"},
		{http.MethodGet, "/api/v1/interns/i-1/attendance"},
		{http.MethodGet, "/api/v1/messages/my"},
		{http.MethodPatch, "/api/v1/messages/m-1/read"},
		{http.MethodPost, "/api/v1/activities"},
		{http.MethodGet, "/api/v1/activities"},
		{http.MethodPost, "/api/v1/attendance/checkin"},
		{http.MethodPost, "/api/v1/documents"},
		{http.MethodGet, "/api/v1/documents/d-1/download"},
	}
	for _, p := range paths {
		assert.Equal(t, http.StatusUnauthorized, serve(r, p.method, p.path, "").Code, p.path)
		assert.Equal(t, http.StatusUnauthorized, serve(r, p.method, p.path, "not-a-jwt").Code, p.path)
	}
}

func TestRouterDocsHiddenInProduction(t *testing.T) {
	assert.NotEqual(t, http.StatusNotFound, serve(testRouter(config.EnvDevelopment), http.MethodGet, "/docs/index.html", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(testRouter(config.EnvProduction), http.MethodGet, "/docs/index.html", "").Code)
}

func TestRouterRejectsForgedDownloadLink(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Env: config.EnvDevelopment, APIPrefix: "/api/v1"}
	files, err := storage.NewLocalStorage(t.TempDir())
	assert.NoError(t, err)
	app := &application{
		metrics:   service.NewMetricsService(),
		auth:      service.NewAuthService(nil, nil, nil, service.AuthConfig{AccessTokenSecret: "test-secret"}),
		documents: service.NewDocumentService(nil, files, storage.NewSignedURLSigner("link-secret", time.Minute), nil, nil),
	}
	r := newRouter(cfg, zap.NewNop(), app)

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/api/v1/files/forged.token", "").Code)
}
