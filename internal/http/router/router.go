package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dgenny/propostas/internal/config"
	"github.com/dgenny/propostas/internal/http/handlers"
	"github.com/dgenny/propostas/internal/http/middleware"
)

// SetupRouter собирает gin.Engine со всеми маршрутами сервиса.
func SetupRouter(
	cfg *config.Config,
	proposalHandler *handlers.ProposalHandler,
	viewerHandler *handlers.ViewerHandler,
	healthHandler *handlers.HealthHandler,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.HandleMethodNotAllowed = true
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/proposta/:id", viewerHandler.Show)

	api := r.Group("/api")

	// Чтение без ограничений
	api.GET("/proposta/:id", middleware.UUIDValidator("id"), proposalHandler.Get)
	api.GET("/propostas", proposalHandler.List)

	writes := api.Group("/")
	writes.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		writes.POST("/proposta", proposalHandler.Create)
		writes.PUT("/proposta/:id", middleware.UUIDValidator("id"), proposalHandler.Update)
		writes.POST("/init-index", proposalHandler.InitIndex)
	}

	return r
}
