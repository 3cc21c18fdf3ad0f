package main

import (
	"context"
	"fmt"
	"time"

	"github.com/abduss/studynotes/internal/metrics"
	"github.com/abduss/studynotes/internal/resource"
	"github.com/abduss/studynotes/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	sweepOlderThan time.Duration
	sweepLimit     int
	sweepTimeout   time.Duration
)

func init() {
	sweepCmd.Flags().DurationVar(&sweepOlderThan, "older-than", 0, "Reap uploads pending longer than this (default NOTES_PENDING_MAX_AGE)")
	sweepCmd.Flags().IntVar(&sweepLimit, "limit", 500, "Maximum rows examined per run")
	sweepCmd.Flags().DurationVar(&sweepTimeout, "timeout", 10*time.Minute, "Overall time budget for the run")
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Reap abandoned uploads",
	Long: `Remove objects and metadata rows of uploads that never completed.

An upload whose metadata could not be committed and whose object could
not be removed afterwards stays pending. sweep removes such objects and
discards their rows.

Examples:
  notesctl sweep
  notesctl sweep --older-than=30m --limit=100`,
	Args: cobra.NoArgs,
	RunE: runSweep,
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), sweepTimeout)
	defer cancel()

	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	objects, err := storage.OpenObjectStore(ctx, e.cfg, e.log, metrics.ObserveObjectStoreRetry)
	if err != nil {
		return fmt.Errorf("open object store: %w", err)
	}

	maxAge := sweepOlderThan
	if maxAge <= 0 {
		maxAge = e.cfg.Upload.PendingMaxAge
	}

	service := resource.NewService(resource.NewRepository(e.pool), objects, e.cfg.Upload.MaxBytes, e.log)
	result, err := service.SweepPending(ctx, maxAge, sweepLimit)
	if err != nil {
		return fmt.Errorf("sweep pending uploads: %w", err)
	}

	e.log.Info("sweep finished",
		zap.Duration("older_than", maxAge),
		zap.Int("examined", result.Examined),
		zap.Int("removed", result.Removed),
		zap.Int("failed", result.Failed),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "examined=%d removed=%d failed=%d\n", result.Examined, result.Removed, result.Failed)
	if result.Failed > 0 {
		return fmt.Errorf("%d pending uploads could not be reaped", result.Failed)
	}
	return nil
}
