// Package main implements notesctl, the operator CLI for the study notes service.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/abduss/studynotes/internal/config"
	"github.com/abduss/studynotes/internal/logger"
	"github.com/abduss/studynotes/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "notesctl",
	Short: "Operator commands for the study notes service",
	Long: `notesctl runs maintenance tasks against the study notes database and
object store: schema migrations, reaping abandoned uploads, listing
resources and minting admin tokens.

Configuration is read from the same environment variables as the API
(a .env file in the working directory is loaded when present).`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(tokenCmd)
}

// env bundles what the database-backed commands need.
type env struct {
	cfg  config.Config
	log  *zap.Logger
	pool *pgxpool.Pool
}

func openEnv(ctx context.Context) (*env, error) {
	log, err := logger.Init()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	pool, err := storage.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	return &env{cfg: cfg, log: log, pool: pool}, nil
}

func (e *env) Close() {
	e.pool.Close()
	_ = e.log.Sync()
}
