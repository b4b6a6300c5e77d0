package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gopherchat/internal/bootstrap"
)

type HealthHandler struct {
	app       *bootstrap.App
	pingMySQL func(ctx context.Context) error
	pingRedis func(ctx context.Context) error
}

type dependencyStatus struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

func NewHealthHandler(app *bootstrap.App) *HealthHandler {
	return &HealthHandler{
		app: app,
		pingMySQL: func(ctx context.Context) error {
			sqlDB, err := app.MySQL.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		pingRedis: func(ctx context.Context) error {
			return app.Redis.Ping(ctx).Err()
		},
	}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	mysqlStatus := dependencyCheck(ctx, h.pingMySQL)
	redisStatus := dependencyCheck(ctx, h.pingRedis)

	statusCode := http.StatusOK
	if !mysqlStatus.OK || !redisStatus.OK {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"app":        h.app.Config.App.Name,
		"env":        h.app.Config.App.Env,
		"uptime_sec": int(time.Since(h.app.StartedAt).Seconds()),
		"dependencies": gin.H{
			"mysql": mysqlStatus,
			"redis": redisStatus,
		},
	})
}

func dependencyCheck(ctx context.Context, ping func(ctx context.Context) error) dependencyStatus {
	if err := ping(ctx); err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	return dependencyStatus{OK: true}
}
