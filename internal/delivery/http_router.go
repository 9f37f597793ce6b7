package delivery

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/groovv-ia/AdsDashOps-sub004/internal/delivery/middleware"
	"github.com/groovv-ia/AdsDashOps-sub004/pkg/logger"
	"github.com/groovv-ia/AdsDashOps-sub004/pkg/metrics"
)

type HTTPRouter struct {
	handlers *HTTPHandlers
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewHTTPRouter(handlers *HTTPHandlers, logger *logger.Logger, metrics *metrics.Metrics) *HTTPRouter {
	return &HTTPRouter{
		handlers: handlers,
		logger:   logger,
		metrics:  metrics,
	}
}

func (r *HTTPRouter) SetupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.Recovery(r.logger))
	router.Use(middleware.Metrics(r.metrics))
	router.Use(middleware.Timeout(30 * time.Second))

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Content-Type", "X-Request-ID"}
	config.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}

	router.Use(cors.New(config))

	// Health endpoint
	router.GET("/health", r.handlers.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/", r.handlers.GetAPIInfo)
		v1.GET("", r.handlers.GetAPIInfo)

		// Insights endpoints
		insights := v1.Group("/insights")
		{
			insights.GET("", r.handlers.GetInsights)
			insights.GET("/summary", r.handlers.GetSummary)
			insights.GET("/campaigns/:id/children", r.handlers.GetCampaignChildren)
			insights.GET("/entities/:id/daily", r.handlers.GetEntityDaily)
		}

		// Export endpoints
		v1.GET("/export/insights.csv", r.handlers.ExportInsightsCSV)

		// Intake endpoints (external sync boundary)
		v1.POST("/rows", r.handlers.PostRows)
		v1.POST("/entity-meta", r.handlers.PutEntityMeta)
	}

	// Prometheus metrics endpoint
	router.GET("/metrics", middleware.PrometheusHandler())

	return router
}
