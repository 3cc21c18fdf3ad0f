package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/abduss/studynotes/internal/resource"
	"github.com/spf13/cobra"
)

var (
	listYear    string
	listGrouped bool
)

func init() {
	listCmd.Flags().StringVar(&listYear, "year", "", "Only resources tagged with this year (exact match)")
	listCmd.Flags().BoolVar(&listGrouped, "grouped", false, "Print the category/folder view")
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print stored resources as JSON",
	Long: `Print resource metadata straight from the database.

Examples:
  notesctl list --year=2024
  notesctl list --grouped`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	// Listing never touches the object store.
	service := resource.NewService(resource.NewRepository(e.pool), nil, e.cfg.Upload.MaxBytes, e.log)

	var year *string
	if cmd.Flags().Changed("year") {
		year = &listYear
	}

	var out any
	switch {
	case listGrouped:
		out, err = service.ListGrouped(ctx, year)
	case year != nil:
		out, err = service.ListByYear(ctx, *year)
	default:
		out, err = service.ListAll(ctx)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
