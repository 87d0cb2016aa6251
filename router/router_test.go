package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"taxquery/assistant"
	"taxquery/config"
	"taxquery/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func newRouter(t *testing.T) *gin.Engine {
	cfg := &config.Config{Server: config.ServerConfig{Mode: gin.TestMode}}
	log := zaptest.NewLogger(t)
	return SetupRouter(cfg, Deps{
		Assistant: assistant.New(assistant.Deps{Logger: log}),
		Sessions:  service.NewSessionStore(nil, nil, log),
		Logger:    log,
	})
}

func serve(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestSetupRouter_Health(t *testing.T) {
	w := serve(newRouter(t), http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestSetupRouter_Metrics(t *testing.T) {
	r := newRouter(t)
	// 先触发一次路由计数
	req := httptest.NewRequest(http.MethodPost, "/api/get_response", strings.NewReader(`{"query":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(httptest.NewRecorder(), req)

	w := serve(r, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "taxquery_routes_total")
}

func TestSetupRouter_Cities(t *testing.T) {
	w := serve(newRouter(t), http.MethodGet, "/api/cities")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Pune")
	assert.Contains(t, w.Body.String(), "Residential")
}

func TestCORSMiddleware(t *testing.T) {
	r := newRouter(t)

	w := serve(r, http.MethodOptions, "/api/get_response")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(r, http.MethodGet, "/health")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
