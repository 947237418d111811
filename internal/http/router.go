// Package http assembles the gin router: middleware chain plus the
// /index, /search, /schema, and /health routes, wiring the handlers package
// to the already-constructed domain services.
package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dtxml/declarations/internal/config"
	"github.com/dtxml/declarations/internal/http/handlers"
	"github.com/dtxml/declarations/internal/http/middleware"
)

// Services bundles the constructed application services the router wires
// into handlers. Assembly happens in cmd/server/main.go.
type Services struct {
	Index  *handlers.IndexHandler
	Search *handlers.SearchHandler
	Schema *handlers.SchemaHandler
	Health *handlers.HealthHandler
}

// SetupRouter builds the gin engine: middleware chain, then routes.
func SetupRouter(cfg *config.Config, svc *Services) *gin.Engine {
	router := gin.Default()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		slog.Error("failed to set trusted proxies", "error", err)
	}

	router.Use(middleware.CORS(cfg))
	router.Use(middleware.RequestID())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RateLimit(120, time.Minute)) // 120 req/min per IP
	router.Use(middleware.ErrorHandler())

	router.GET("/health", svc.Health.Health)
	router.GET("/health/healthz", svc.Health.Health)

	router.POST("/index", svc.Index.Index)
	router.POST("/search", svc.Search.Search)

	router.POST("/schema/register", svc.Schema.Register)
	router.GET("/schema/", svc.Schema.List)
	router.GET("/schema/:tenant_id", svc.Schema.Get)

	return router
}
