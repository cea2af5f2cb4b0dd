package system

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"problemsolving.GO/api"
	"problemsolving.GO/config"
	"problemsolving.GO/core/metrics"
)

func init() {
	api.RegisterRoute(RegisterSystemRoutes)
}

// RegisterSystemRoutes mounts /health and /metrics.
func RegisterSystemRoutes(e *echo.Echo, deps *api.Deps) {
	e.GET("/health", func(c echo.Context) error {
		status := http.StatusOK
		body := echo.Map{"status": "ok", "database": "ok"}
		if deps != nil && deps.DB != nil {
			if sqlDB, err := deps.DB.DB(); err != nil || sqlDB.PingContext(c.Request().Context()) != nil {
				status = http.StatusServiceUnavailable
				body["status"], body["database"] = "degraded", "unreachable"
			}
		}
		if config.RedisClient != nil {
			if err := config.RedisClient.Ping(c.Request().Context()).Err(); err != nil {
				body["redis"] = "unreachable"
			} else {
				body["redis"] = "ok"
			}
		}
		return c.JSON(status, body)
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
}
