package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/abduss/studynotes/internal/auth"
	"github.com/abduss/studynotes/internal/config"
	"github.com/abduss/studynotes/internal/logger"
	"github.com/abduss/studynotes/internal/metrics"
	"github.com/abduss/studynotes/internal/resource"
	"github.com/abduss/studynotes/internal/server"
	"github.com/abduss/studynotes/internal/storage"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	zlog, err := logger.Init()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal("load config", zap.Error(err))
	}

	metrics.InitMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := storage.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		zlog.Fatal("connect postgres", zap.Error(err))
	}
	defer dbPool.Close()

	if err := storage.Migrate(ctx, dbPool); err != nil {
		zlog.Fatal("apply migrations", zap.Error(err))
	}

	objects, err := storage.OpenObjectStore(ctx, cfg, zlog, metrics.ObserveObjectStoreRetry)
	if err != nil {
		zlog.Fatal("open object store", zap.String("driver", cfg.ObjectStore.Driver), zap.Error(err))
	}

	resourceRepo := resource.NewRepository(dbPool)
	resourceService := resource.NewService(resourceRepo, objects, cfg.Upload.MaxBytes, zlog)

	verifier := auth.NewVerifier(cfg.Admin.JWTSecret)
	if !verifier.Enabled() {
		zlog.Warn("NOTES_ADMIN_JWT_SECRET is empty, delete routes are unauthenticated")
	}

	router := server.NewRouter(server.Dependencies{
		Config:          cfg,
		DB:              dbPool,
		ObjectStore:     objects,
		ResourceService: resourceService,
		AdminVerifier:   verifier,
		Logger:          zlog,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		zlog.Info("study notes API listening",
			zap.String("addr", cfg.Server.Address()),
			zap.String("object_store", cfg.ObjectStore.Driver),
			zap.Int64("max_upload_bytes", cfg.Upload.MaxBytes),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	zlog.Info("shutting down gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zlog.Error("shutdown", zap.Error(err))
	}
}
