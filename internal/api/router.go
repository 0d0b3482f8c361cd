package api

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/content-ideas-api/internal/config"
	"github.com/content-ideas-api/internal/service"
)

// AdminTokenHeader carries the token for administrative endpoints
const AdminTokenHeader = "X-Admin-Token"

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	registerValidators()

	router := gin.New()
	// Keywords may contain escaped slashes
	router.UseRawPath = true

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware(cfg.Server.AllowedOrigins))

	// Handlers
	ideaHandler := NewIdeaHandler(services, log)
	articleHandler := NewArticleHandler(services, log)
	counterHandler := NewCounterHandler(services, log)
	importHandler := NewImportHandler(services, cfg, log)
	exportHandler := NewExportHandler(services, log)

	// Health check
	router.GET("/health", healthCheck(services.Counters))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1
	v1 := router.Group("/v1")
	{
		user := v1.Group("/users/:user")
		{
			user.GET("/ideas", ideaHandler.List)
			user.POST("/ideas", ideaHandler.Merge)
			user.GET("/ideas/:keyword", ideaHandler.Get)
			user.DELETE("/ideas/:keyword", ideaHandler.Delete)

			user.POST("/ideas/:keyword/articles", articleHandler.Append)
			user.PATCH("/ideas/:keyword/articles/:id", articleHandler.UpdateStatus)
			user.DELETE("/ideas/:keyword/articles/:id", articleHandler.Delete)

			user.GET("/counts", counterHandler.Get)

			user.POST("/import", importHandler.Import)
			user.GET("/export", exportHandler.Export)
		}
	}

	// Administrative endpoints
	admin := router.Group("/admin", adminAuthMiddleware(cfg.Admin.Token))
	{
		admin.POST("/recalibrate", counterHandler.RecalibrateAll)
		admin.POST("/users/:user/recalibrate", counterHandler.Recalibrate)
	}

	return router
}

// healthCheck returns the health status, degraded when the counter backend is unreachable
func healthCheck(counters service.CounterService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status, code, counterStatus := "healthy", http.StatusOK, "ok"
		if err := counters.HealthCheck(ctx); err != nil {
			status, code, counterStatus = "degraded", http.StatusServiceUnavailable, err.Error()
		}

		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "content-ideas-api",
			"counters":  counterStatus,
		})
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Str("path", c.Request.URL.Path).Msg("Panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"ok":    false,
					"error": "internal server error",
				})
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Str("route", c.FullPath()).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", AdminTokenHeader},
		ExposeHeaders: []string{"Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// adminAuthMiddleware requires the configured admin token. With no token
// configured the administrative endpoints are disabled.
func adminAuthMiddleware(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"ok": false, "error": "admin endpoints are disabled"})
			return
		}
		given := c.GetHeader(AdminTokenHeader)
		if subtle.ConstantTimeCompare([]byte(given), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid admin token"})
			return
		}
		c.Next()
	}
}
