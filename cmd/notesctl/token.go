package main

import (
	"fmt"
	"time"

	"github.com/abduss/studynotes/internal/auth"
	"github.com/abduss/studynotes/internal/config"
	"github.com/spf13/cobra"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
)

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "notesctl", "Subject recorded in the token")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "Token lifetime")
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an admin token for the delete routes",
	Long: `Sign an admin bearer token with NOTES_ADMIN_JWT_SECRET.

Examples:
  notesctl token --subject=alice --ttl=15m
  curl -X DELETE -H "Authorization: Bearer $(notesctl token)" http://localhost:8080/api/files/<id>`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	token, _, err := auth.NewVerifier(cfg.Admin.JWTSecret).Issue(tokenSubject, tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
