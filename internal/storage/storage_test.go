package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/abduss/studynotes/internal/config"
)

func TestMinIOPublicURL(t *testing.T) {
	got := MinIOPublicURL(config.MinIOConfig{Endpoint: "minio", Bucket: "notes"})
	if got != "http://minio:9000/notes" {
		t.Fatalf("unexpected url: %s", got)
	}

	got = MinIOPublicURL(config.MinIOConfig{Endpoint: "files.example.com:443", Bucket: "notes", UseSSL: true})
	if got != "https://files.example.com:443/notes" {
		t.Fatalf("unexpected url: %s", got)
	}
}

func TestS3PublicURL(t *testing.T) {
	got := S3PublicURL(config.S3Config{Bucket: "notes", Region: "eu-west-1"})
	if got != "https://notes.s3.eu-west-1.amazonaws.com" {
		t.Fatalf("unexpected url: %s", got)
	}
}

func TestPublicReadPolicyScopesBucket(t *testing.T) {
	policy := publicReadPolicy("notes")
	if !strings.Contains(policy, "arn:aws:s3:::notes/*") || !strings.Contains(policy, "s3:GetObject") {
		t.Fatalf("unexpected policy: %s", policy)
	}
}

func TestOpenObjectStoreRejectsUnknownDriver(t *testing.T) {
	cfg := config.Config{ObjectStore: config.ObjectStoreConfig{Driver: "ftp"}}
	if _, err := OpenObjectStore(context.Background(), cfg, nil, nil); err == nil || !strings.Contains(err.Error(), "ftp") {
		t.Fatalf("expected unknown driver error, got %v", err)
	}
}
