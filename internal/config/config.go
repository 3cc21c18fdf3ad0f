package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultMaxUploadBytes caps a single upload at 100 MiB.
const DefaultMaxUploadBytes int64 = 100 << 20

// Object store drivers understood by Load.
const (
	DriverMinIO = "minio"
	DriverS3    = "s3"
)

// Config aggregates runtime configuration for the study notes API.
type Config struct {
	Server      ServerConfig
	Postgres    PostgresConfig
	ObjectStore ObjectStoreConfig
	MinIO       MinIOConfig
	S3          S3Config
	Upload      UploadConfig
	Admin       AdminConfig
	Metrics     MetricsConfig
}

// ServerConfig parameterizes the HTTP server.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Address returns the listen address in host:port form.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// PostgresConfig contains PostgreSQL connection details.
type PostgresConfig struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
}

// DSN returns the PostgreSQL DSN string. An explicit URL wins over the parts.
func (p PostgresConfig) DSN() string {
	if p.URL != "" {
		return p.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// ObjectStoreConfig selects and tunes the object store backend.
type ObjectStoreConfig struct {
	Driver    string
	PublicURL string
	Timeout   time.Duration
	Retry     RetryConfig
}

// RetryConfig bounds retries of transient object store failures.
type RetryConfig struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// MinIOConfig carries MinIO connection and bucket information.
type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
}

// S3Config carries AWS S3 settings. Empty keys fall back to the default
// AWS credential chain.
type S3Config struct {
	Region          string
	Bucket          string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
}

// UploadConfig controls ingestion limits and sweeping of abandoned uploads.
type UploadConfig struct {
	MaxBytes      int64
	PendingMaxAge time.Duration
}

// AdminConfig protects destructive routes. An empty secret disables the check.
type AdminConfig struct {
	JWTSecret string
}

// MetricsConfig groups observability settings.
type MetricsConfig struct {
	PrometheusPath string
}

// Load reads configuration values from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host:         getString("NOTES_API_HOST", "0.0.0.0"),
			Port:         getInt("NOTES_API_PORT", 8080),
			ReadTimeout:  getDuration("NOTES_API_READ_TIMEOUT", 5*time.Minute),
			WriteTimeout: getDuration("NOTES_API_WRITE_TIMEOUT", 5*time.Minute),
			IdleTimeout:  getDuration("NOTES_API_IDLE_TIMEOUT", 60*time.Second),
		},
		Postgres: PostgresConfig{
			URL:      getString("DATABASE_URL", ""),
			Host:     getString("POSTGRES_HOST", "localhost"),
			Port:     getInt("POSTGRES_PORT", 5432),
			User:     getString("POSTGRES_USER", "notes_app"),
			Password: getString("POSTGRES_PASSWORD", "change-me"),
			Database: getString("POSTGRES_DB", "studynotes"),
			SSLMode:  strings.ToLower(getString("POSTGRES_SSL_MODE", "disable")),
			MaxConns: int32(getInt("POSTGRES_MAX_CONNS", 10)),
		},
		ObjectStore: ObjectStoreConfig{
			Driver:    strings.ToLower(getString("OBJECT_STORE_DRIVER", DriverMinIO)),
			PublicURL: strings.TrimRight(getString("OBJECT_STORE_PUBLIC_URL", ""), "/"),
			Timeout:   getDuration("OBJECT_STORE_TIMEOUT", 2*time.Minute),
			Retry: RetryConfig{
				MaxAttempts:     getInt("OBJECT_STORE_RETRY_MAX_ATTEMPTS", 3),
				InitialInterval: getDuration("OBJECT_STORE_RETRY_INITIAL_INTERVAL", 500*time.Millisecond),
				MaxInterval:     getDuration("OBJECT_STORE_RETRY_MAX_INTERVAL", 5*time.Second),
			},
		},
		MinIO: MinIOConfig{
			Endpoint:        getString("MINIO_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getString("MINIO_ROOT_USER", "studynotes"),
			SecretAccessKey: getString("MINIO_ROOT_PASSWORD", "change-me-strong-password"),
			Bucket:          getString("MINIO_BUCKET", "studynotes"),
			UseSSL:          getBool("MINIO_USE_SSL", false),
			Region:          getString("MINIO_REGION", ""),
		},
		S3: S3Config{
			Region:          getString("S3_REGION", "us-east-1"),
			Bucket:          getString("S3_BUCKET", ""),
			Prefix:          getString("S3_PREFIX", ""),
			AccessKeyID:     getString("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getString("S3_SECRET_ACCESS_KEY", ""),
		},
		Upload: UploadConfig{
			MaxBytes:      getInt64("NOTES_MAX_UPLOAD_BYTES", DefaultMaxUploadBytes),
			PendingMaxAge: getDuration("NOTES_PENDING_MAX_AGE", time.Hour),
		},
		Admin: AdminConfig{
			JWTSecret: getString("NOTES_ADMIN_JWT_SECRET", ""),
		},
		Metrics: MetricsConfig{
			PrometheusPath: getString("NOTES_METRICS_PATH", "/metrics"),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.ObjectStore.Driver {
	case DriverMinIO:
	case DriverS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when OBJECT_STORE_DRIVER=s3")
		}
	default:
		return fmt.Errorf("unsupported OBJECT_STORE_DRIVER %q", c.ObjectStore.Driver)
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("NOTES_MAX_UPLOAD_BYTES must be positive")
	}
	if c.ObjectStore.Retry.MaxAttempts < 1 {
		return fmt.Errorf("OBJECT_STORE_RETRY_MAX_ATTEMPTS must be at least 1")
	}
	return nil
}

func getString(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.ToLower(strings.TrimSpace(val))
		switch val {
		case "1", "true", "t", "yes", "y":
			return true
		case "0", "false", "f", "no", "n":
			return false
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}
