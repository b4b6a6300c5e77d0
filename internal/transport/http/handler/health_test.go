package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"gopherchat/internal/bootstrap"
	"gopherchat/internal/config"
)

func newHealthHandler(mysqlErr, redisErr error) *HealthHandler {
	return &HealthHandler{
		app: &bootstrap.App{
			Config:    &config.Config{App: config.AppConfig{Name: "gopherchat", Env: "test"}},
			StartedAt: time.Now(),
		},
		pingMySQL: func(context.Context) error { return mysqlErr },
		pingRedis: func(context.Context) error { return redisErr },
	}
}

func checkHealth(t *testing.T, h *HealthHandler) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	router := gin.New()
	router.GET("/healthz", h.Check)
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	return rec
}

func TestHealthAllDependenciesUp(t *testing.T) {
	rec := checkHealth(t, newHealthHandler(nil, nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthDependencyDown(t *testing.T) {
	rec := checkHealth(t, newHealthHandler(errors.New("connection refused"), nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		Dependencies struct {
			MySQL dependencyStatus `json:"mysql"`
			Redis dependencyStatus `json:"redis"`
		} `json:"dependencies"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.False(t, body.Dependencies.MySQL.OK)
	require.Contains(t, body.Dependencies.MySQL.Message, "connection refused")
	require.True(t, body.Dependencies.Redis.OK)

	rec = checkHealth(t, newHealthHandler(nil, errors.New("redis down")))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
