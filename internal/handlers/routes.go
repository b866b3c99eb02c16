package handlers

import (
	"context"

	"github.com/comparely/catalog-service/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	APIKey         string
	AllowedOrigins []string
	RateLimit      middleware.RateLimiterConfig
	// Docs mounts the Swagger UI at /docs.
	Docs bool
}

// NewRouter builds the HTTP API. Init must have been called.
func NewRouter(ctx context.Context, opts RouterOptions, logger zerolog.Logger) *gin.Engine {
	router := gin.New()
	// Product urls travel URL-encoded in a single path segment.
	router.UseRawPath = true
	router.UnescapePathValues = true

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORSMiddleware(opts.AllowedOrigins))
	if opts.RateLimit.RequestsPerSecond > 0 {
		router.Use(middleware.RateLimitMiddleware(ctx, opts.RateLimit))
	}

	router.GET("/health", HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if opts.Docs {
		router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	router.GET("/categories", ListCategories)
	router.GET("/products", ListProducts)
	router.GET("/category/:id", GetCategory)
	router.GET("/product/:id", GetProduct)
	router.POST("/category", FindCategory)
	router.GET("/runs", ListRuns)
	router.GET("/runs/:runId", GetRun)

	protected := router.Group("/")
	protected.Use(middleware.APIKeyMiddleware(opts.APIKey))
	{
		protected.PUT("/category/:id", UpdateCategory)
		protected.POST("/category/:id", UpdateCategory)
		protected.PUT("/product/:id", UpdateProduct)
		protected.POST("/product/:id", UpdateProduct)
		protected.PUT("/productbyurl/:url", UpdateProductByURL)
		protected.GET("/update", TriggerUpdate)
		protected.GET("/shutdown", Shutdown)
	}

	return router
}
