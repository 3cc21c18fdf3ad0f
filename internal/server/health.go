package server

import (
	"context"
	"net/http"
	"time"

	"github.com/abduss/studynotes/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const readinessTimeout = 5 * time.Second

func registerHealthRoutes(router *gin.Engine, deps Dependencies) {
	router.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/health/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()

		if deps.DB != nil {
			if err := deps.DB.Ping(ctx); err != nil {
				degraded(c, deps, "postgres", err)
				return
			}
		}

		if deps.ObjectStore != nil {
			if err := deps.ObjectStore.Ping(ctx); err != nil {
				degraded(c, deps, "object_store", err)
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func degraded(c *gin.Context, deps Dependencies, component string, err error) {
	logger.FromContext(c, deps.Logger).Warn("readiness check failed", zap.String("component", component), zap.Error(err))
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"status":    "degraded",
		"component": component,
	})
}
