package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/go-users/internal/config"
	"github.com/deppfellow/go-users/internal/handler"
	"github.com/deppfellow/go-users/internal/logger"
	"github.com/deppfellow/go-users/internal/middleware"
	"github.com/deppfellow/go-users/internal/repository"
	"github.com/deppfellow/go-users/internal/server"
	"github.com/deppfellow/go-users/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*echo.Echo, *bytes.Buffer) {
	t.Helper()
	return newTestRouterWithService(t, nil)
}

func newTestRouterWithService(t *testing.T, ls *logger.LoggerService) (*echo.Echo, *bytes.Buffer) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.TableName = "users"
	cfg.Primary.Env = "local"
	cfg.Storage.Driver = config.DriverMemory

	logs := &bytes.Buffer{}
	log := zerolog.New(logs)
	s := &server.Server{Config: cfg, Logger: &log, LoggerService: ls}

	repos, err := repository.NewRepositories(s)
	require.NoError(t, err)

	h := handler.NewHandlers(s, service.NewServices(repos), repos)
	return NewRouter(s, h), logs
}

func serve(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestUserLifecycle(t *testing.T) {
	e, _ := newTestRouter(t)

	rec := serve(e, http.MethodPost, "/users", `{"name":"Test","email":"test@test.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get(echo.HeaderContentType))
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))

	var created map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created["id"]
	require.NotEmpty(t, id)
	assert.Equal(t, "Test", created["name"])
	assert.Equal(t, "test@test.com", created["email"])

	rec = serve(e, http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"results":[{"id":"`+id+`","name":"Test","email":"test@test.com"}]}`, rec.Body.String())

	rec = serve(e, http.MethodPatch, "/users/"+id, `{"name":"New","email":"new@test.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())

	rec = serve(e, http.MethodGet, "/users", "")
	assert.JSONEq(t, `{"results":[{"id":"`+id+`","name":"New","email":"new@test.com"}]}`, rec.Body.String())

	rec = serve(e, http.MethodDelete, "/users/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())

	rec = serve(e, http.MethodDelete, "/users/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"User not found."}`, rec.Body.String())

	rec = serve(e, http.MethodGet, "/users", "")
	assert.JSONEq(t, `{"results":[]}`, rec.Body.String())
}

func TestBadRequests(t *testing.T) {
	e, _ := newTestRouter(t)

	rec := serve(e, http.MethodPost, "/users", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Body parsing error."}`, rec.Body.String())

	rec = serve(e, http.MethodPost, "/users", `{"name":"Test","email":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Input validation error."}`, rec.Body.String())

	rec = serve(e, http.MethodPatch, "/users/missing", `{"name":"Test","email":"test@test.com"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"User not found."}`, rec.Body.String())
}

func TestUnmatchedRoutes(t *testing.T) {
	e, _ := newTestRouter(t)

	tests := []struct {
		method string
		target string
	}{
		{method: http.MethodPut, target: "/users"},
		{method: http.MethodGet, target: "/users/abc"},
		{method: http.MethodPost, target: "/users/abc"},
		{method: http.MethodGet, target: "/"},
		{method: http.MethodGet, target: "/accounts"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := serve(e, tt.method, tt.target, "")
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, "{}", rec.Body.String())
		})
	}
}

func TestRequestIDIsPropagated(t *testing.T) {
	e, logs := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set(middleware.RequestIDHeader, "fixed-id")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fixed-id", rec.Header().Get(middleware.RequestIDHeader))
	assert.Contains(t, logs.String(), `"request_id":"fixed-id"`)
	assert.Contains(t, logs.String(), `"route_key":"GET /users"`)
}

func TestStatus(t *testing.T) {
	e, _ := newTestRouter(t)

	rec := serve(e, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "local", body["environment"])
	assert.Contains(t, body["checks"], "storage")
}

func TestNewRelicTracedRequest(t *testing.T) {
	obs := config.DefaultObservabilityConfig()
	obs.NewRelic.LicenseKey = "0123456789012345678901234567890123456789"

	ls, err := logger.NewLoggerService(obs, newrelic.ConfigEnabled(false))
	require.NoError(t, err)
	t.Cleanup(ls.Shutdown)

	e, logs := newTestRouterWithService(t, ls)

	rec := serve(e, http.MethodPost, "/users", `{"name":"Test","email":"test@test.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(e, http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"test@test.com"`)

	assert.Contains(t, logs.String(), `"trace.id"`)
}
