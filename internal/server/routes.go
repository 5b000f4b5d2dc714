// Package server builds the HTTP router and runs the API server.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mantonx/moviecat/internal/modules/modulemanager"
)

const healthTimeout = 2 * time.Second

// setupRoutes mounts module routes under /api alongside health and metrics
func setupRoutes(r *gin.Engine, deps Deps) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", healthHandler(deps))

		if deps.Registry != nil {
			deps.Registry.RegisterRoutes(api)
		}
	}
}

// healthHandler pings the database and reports per-module status. Any
// unhealthy component turns the response into a 503.
func healthHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		status := "ok"
		code := http.StatusOK
		body := gin.H{}

		if deps.DB != nil {
			database := "ok"
			sqlDB, err := deps.DB.DB()
			if err == nil {
				err = sqlDB.PingContext(ctx)
			}
			if err != nil {
				database = err.Error()
				status = "degraded"
				code = http.StatusServiceUnavailable
			}
			body["database"] = database
		}

		modules := map[string]modulemanager.HealthStatus{}
		if deps.Registry != nil {
			modules = deps.Registry.HealthCheck(ctx)
		}
		for _, m := range modules {
			if m.Status == modulemanager.HealthStateUnhealthy {
				status = "degraded"
				code = http.StatusServiceUnavailable
			}
		}

		body["status"] = status
		body["modules"] = modules
		c.JSON(code, body)
	}
}
