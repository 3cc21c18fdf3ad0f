package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/abduss/studynotes/internal/auth"
)

func TestCommandTree(t *testing.T) {
	want := []string{"migrate", "sweep", "list", "token"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("expected %s command, got %v (%v)", name, cmd, err)
		}
	}

	for _, sub := range []string{"up", "down", "status"} {
		cmd, _, err := rootCmd.Find([]string{"migrate", sub})
		if err != nil || cmd.Name() != sub {
			t.Fatalf("expected migrate %s, got %v (%v)", sub, cmd, err)
		}
	}

	if f := sweepCmd.Flags().Lookup("older-than"); f == nil {
		t.Fatalf("expected --older-than flag on sweep")
	}
	if f := listCmd.Flags().Lookup("year"); f == nil {
		t.Fatalf("expected --year flag on list")
	}
}

func TestTokenCommandMintsValidAdminToken(t *testing.T) {
	t.Setenv("NOTES_ADMIN_JWT_SECRET", "cli-secret")
	t.Setenv("OBJECT_STORE_DRIVER", "minio")

	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetArgs([]string{"token", "--subject", "alice", "--ttl", "5m"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		tokenSubject, tokenTTL = "notesctl", time.Hour
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("token command failed: %v", err)
	}

	claims, err := auth.NewVerifier("cli-secret").Validate(strings.TrimSpace(out.String()))
	if err != nil {
		t.Fatalf("minted token did not validate: %v", err)
	}
	if claims.Subject != "alice" {
		t.Fatalf("expected subject alice, got %q", claims.Subject)
	}
}

func TestTokenCommandRequiresSecret(t *testing.T) {
	t.Setenv("NOTES_ADMIN_JWT_SECRET", "")
	t.Setenv("OBJECT_STORE_DRIVER", "minio")

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"token"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	if err := rootCmd.Execute(); err == nil {
		t.Fatalf("expected error without a secret")
	}
}
