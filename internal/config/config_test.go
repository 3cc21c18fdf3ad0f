package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultMaxUploadBytes, cfg.Upload.MaxBytes)
	assert.Equal(t, DriverMinIO, cfg.ObjectStore.Driver)
	assert.Equal(t, 3, cfg.ObjectStore.Retry.MaxAttempts)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
}

func TestLoadReadsOverrides(t *testing.T) {
	t.Setenv("NOTES_MAX_UPLOAD_BYTES", "2048")
	t.Setenv("OBJECT_STORE_TIMEOUT", "15s")
	t.Setenv("OBJECT_STORE_PUBLIC_URL", "https://cdn.example.com/")
	t.Setenv("MINIO_USE_SSL", "yes")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(2048), cfg.Upload.MaxBytes)
	assert.Equal(t, 15*time.Second, cfg.ObjectStore.Timeout)
	assert.Equal(t, "https://cdn.example.com", cfg.ObjectStore.PublicURL)
	assert.True(t, cfg.MinIO.UseSSL)
}

func TestDSNPrefersDatabaseURL(t *testing.T) {
	p := PostgresConfig{URL: "postgres://u:p@db:5432/notes", Host: "ignored"}
	assert.Equal(t, "postgres://u:p@db:5432/notes", p.DSN())

	p = PostgresConfig{Host: "localhost", Port: 5432, User: "u", Password: "p", Database: "notes", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@localhost:5432/notes?sslmode=disable", p.DSN())
}

func TestLoadRejectsS3WithoutBucket(t *testing.T) {
	t.Setenv("OBJECT_STORE_DRIVER", "s3")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("OBJECT_STORE_DRIVER", "cloudinary")

	_, err := Load()
	require.Error(t, err)
}
