package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"portfolio/pkg/logging"
)

// Storage backends accepted by STORAGE_BACKEND.
const (
	BackendLocal  = "local"
	BackendMemory = "memory"
	BackendGCS    = "gcs"
	BackendS3     = "s3"
)

// Config holds all configuration for the application
type Config struct {
	Port string

	AdminUsername string
	AdminPassword string
	JWTSecret     string
	TokenTTL      time.Duration

	DataDir        string
	ContentPath    string
	UploadDir      string
	MaxUploadBytes int64
	LedgerPath     string
	ViewsDir       string

	StorageBackend     string
	BucketName         string
	BucketPrefix       string
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	CacheTTL      time.Duration
	OrphanGrace   time.Duration
	ProtectWrites bool
	CORSOrigin    string
	LogLevel      slog.Level
}

// ErrAdminCredentialsNotSet is returned when ADMIN_USERNAME or ADMIN_PASSWORD is not set
var ErrAdminCredentialsNotSet = errors.New("ADMIN_USERNAME and ADMIN_PASSWORD environment variables not set")

// ErrJWTSecretNotSet is returned when the JWT_SECRET environment variable is not set
var ErrJWTSecretNotSet = errors.New("JWT_SECRET environment variable not set")

// ErrBucketNameNotSet is returned when a cloud backend is selected without BUCKET_NAME
var ErrBucketNameNotSet = errors.New("BUCKET_NAME environment variable not set")

// ErrUnknownBackend is returned when STORAGE_BACKEND names no known backend
var ErrUnknownBackend = errors.New("unknown STORAGE_BACKEND")

// ErrInvalidValue is returned when a variable cannot be parsed
var ErrInvalidValue = errors.New("invalid configuration value")

// Load loads configuration from environment variables
func Load() (*Config, error) {
	dataDir := getenv("DATA_DIR", "./public")

	cfg := &Config{
		Port:               getenv("PORT", "3001"),
		AdminUsername:      os.Getenv("ADMIN_USERNAME"),
		AdminPassword:      os.Getenv("ADMIN_PASSWORD"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		DataDir:            dataDir,
		ContentPath:        getenv("CONTENT_PATH", filepath.Join(dataDir, "content.json")),
		UploadDir:          getenv("UPLOAD_DIR", filepath.Join(dataDir, "uploads")),
		LedgerPath:         getenv("LEDGER_PATH", filepath.Join(dataDir, "uploads.db")),
		ViewsDir:           getenv("VIEWS_DIR", "./views"),
		StorageBackend:     strings.ToLower(getenv("STORAGE_BACKEND", BackendLocal)),
		BucketName:         os.Getenv("BUCKET_NAME"),
		BucketPrefix:       strings.Trim(getenv("BUCKET_PREFIX", "uploads"), "/"),
		AWSRegion:          os.Getenv("AWS_REGION"),
		AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		CORSOrigin:         getenv("CORS_ORIGIN", "*"),
	}

	var err error
	if cfg.TokenTTL, err = durationEnv("TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = durationEnv("CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.OrphanGrace, err = durationEnv("ORPHAN_GRACE", time.Hour); err != nil {
		return nil, err
	}
	if cfg.MaxUploadBytes, err = intEnv("MAX_UPLOAD_BYTES", 10<<20); err != nil {
		return nil, err
	}
	if cfg.ProtectWrites, err = boolEnv("PROTECT_WRITES", true); err != nil {
		return nil, err
	}
	if cfg.LogLevel, err = logging.ParseLevel(getenv("LOG_LEVEL", "info")); err != nil {
		return nil, fmt.Errorf("%w: LOG_LEVEL: %v", ErrInvalidValue, err)
	}

	switch cfg.StorageBackend {
	case BackendLocal, BackendMemory:
	case BackendGCS, BackendS3:
		if cfg.BucketName == "" {
			return nil, ErrBucketNameNotSet
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.StorageBackend)
	}

	return cfg, nil
}

// RequireAuth checks the variables needed to log in and sign tokens.
func (c *Config) RequireAuth() error {
	if c.AdminUsername == "" || c.AdminPassword == "" {
		return ErrAdminCredentialsNotSet
	}
	if c.JWTSecret == "" {
		return ErrJWTSecretNotSet
	}
	return nil
}

// ServerAddress returns the server address with port
func (c *Config) ServerAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// PrintServerStartMessage prints a message when the server starts
func (c *Config) PrintServerStartMessage() {
	fmt.Printf("Starting server at port %s\n", c.Port)
	fmt.Printf("Gallery URL: http://localhost:%s/\n", c.Port)
	fmt.Printf("CMS URL: http://localhost:%s/cms\n", c.Port)
	fmt.Printf("Storage: %s\n", c.StorageBackend)
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, v)
	}
	return d, nil
}

func intEnv(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, v)
	}
	return n, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, v)
	}
	return b, nil
}
