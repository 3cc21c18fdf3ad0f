package main

import (
	"context"
	"fmt"
	"time"

	"github.com/abduss/studynotes/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

const migrateTimeout = 5 * time.Minute

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
	Long: `Apply, roll back or inspect the embedded SQL migrations.

Examples:
  notesctl migrate up
  notesctl migrate down
  notesctl migrate status`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPool(cmd, "migrations applied", storage.Migrate)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPool(cmd, "rolled back one migration", storage.MigrateDown)
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of every migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPool(cmd, "", storage.MigrationStatus)
	},
}

func withPool(cmd *cobra.Command, done string, fn func(context.Context, *pgxpool.Pool) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), migrateTimeout)
	defer cancel()

	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := fn(ctx, e.pool); err != nil {
		return err
	}
	if done != "" {
		fmt.Fprintln(cmd.OutOrStdout(), done)
	}
	return nil
}
