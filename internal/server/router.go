package server

import (
	"context"

	"github.com/abduss/studynotes/internal/auth"
	"github.com/abduss/studynotes/internal/config"
	"github.com/abduss/studynotes/internal/logger"
	"github.com/abduss/studynotes/internal/metrics"
	"github.com/abduss/studynotes/internal/objectstore"
	"github.com/abduss/studynotes/internal/resource"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies groups the services required by the HTTP router.
type Dependencies struct {
	Config          config.Config
	DB              Pinger
	ObjectStore     objectstore.Store
	ResourceService *resource.Service
	AdminVerifier   *auth.Verifier
	Logger          *zap.Logger
}

// NewRouter builds a Gin engine with foundational middleware and routes.
func NewRouter(deps Dependencies) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.MiddlewareWith(log))
	router.Use(metrics.Middleware())
	if maxBytes := deps.Config.Upload.MaxBytes; maxBytes > 0 {
		// Parts above this spill to temp files instead of memory.
		router.MaxMultipartMemory = min(maxBytes, 32<<20)
	}

	registerHealthRoutes(router, deps)
	if path := deps.Config.Metrics.PrometheusPath; path != "" {
		metrics.Register(router, path)
	}

	if deps.ResourceService != nil {
		resource.RegisterRoutes(
			router.Group("/api"),
			router.Group("/"),
			deps.ResourceService,
			log,
			auth.RequireAdmin(deps.AdminVerifier),
		)
	}

	return router
}
