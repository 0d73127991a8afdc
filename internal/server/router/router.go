package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/inventory/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(handler *handlers.Handler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/auth/login", handler.Login)

	authed := r.Group("/", handler.RequireSession)
	authed.POST("/auth/logout", handler.Logout)
	authed.GET("/me", handler.Me)

	authed.GET("/products", handler.ListProducts)
	authed.POST("/products", handler.CreateProduct)
	authed.PUT("/products/:id", handler.UpdateProduct)
	authed.DELETE("/products/:id", handler.DeleteProduct)

	authed.GET("/metrics", handler.Metrics)
	authed.GET("/reports/export", handler.Export)
	authed.GET("/audit", handler.Audit)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
