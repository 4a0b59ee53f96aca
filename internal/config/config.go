package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database   DatabaseConfig
	Cache      CacheConfig
	API        APIConfig
	Auth       AuthConfig
	Storage    StorageConfig
	Pagination PaginationConfig
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrationsPath string
}

// CacheConfig holds page cache configuration (Redis). An empty URL disables caching.
type CacheConfig struct {
	RedisURL  string
	KeyPrefix string
	TTL       time.Duration
}

// APIConfig holds API server configuration
type APIConfig struct {
	Port           int
	AllowedOrigins []string
}

// AuthConfig holds session signing configuration
type AuthConfig struct {
	Secret       string
	Issuer       string
	SessionTTL   time.Duration
	SecureCookie bool
}

// StorageConfig holds customer image storage configuration
type StorageConfig struct {
	Driver        string // "stub" or "s3"
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	UsePathStyle  bool
	PublicBaseURL string
}

// PaginationConfig holds list page sizing
type PaginationConfig struct {
	ItemsPerPage int
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to read .env file", slog.String("error", err.Error()))
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	apiPort, err := strconv.Atoi(getEnv("API_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_PORT: %w", err)
	}

	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}

	sessionTTL, err := time.ParseDuration(getEnv("SESSION_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	secureCookie, err := strconv.ParseBool(getEnv("SESSION_SECURE_COOKIE", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_SECURE_COOKIE: %w", err)
	}

	usePathStyle, err := strconv.ParseBool(getEnv("STORAGE_USE_PATH_STYLE", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid STORAGE_USE_PATH_STYLE: %w", err)
	}

	itemsPerPage, err := strconv.Atoi(getEnv("ITEMS_PER_PAGE", "6"))
	if err != nil {
		return nil, fmt.Errorf("invalid ITEMS_PER_PAGE: %w", err)
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           dbPort,
			User:           getEnv("DB_USER", "dashboard"),
			Password:       getEnv("DB_PASSWORD", "dashboard"),
			DBName:         getEnv("DB_NAME", "dashboard"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Cache: CacheConfig{
			RedisURL:  getEnv("REDIS_URL", ""),
			KeyPrefix: getEnv("CACHE_KEY_PREFIX", "dashboard"),
			TTL:       cacheTTL,
		},
		API: APIConfig{
			Port:           apiPort,
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
		},
		Auth: AuthConfig{
			Secret:       getEnv("AUTH_SECRET", ""),
			Issuer:       getEnv("AUTH_ISSUER", "acme-dashboard"),
			SessionTTL:   sessionTTL,
			SecureCookie: secureCookie,
		},
		Storage: StorageConfig{
			Driver:        getEnv("STORAGE_DRIVER", "stub"),
			Bucket:        getEnv("STORAGE_BUCKET", ""),
			Region:        getEnv("STORAGE_REGION", "us-east-1"),
			Endpoint:      getEnv("STORAGE_ENDPOINT", ""),
			AccessKey:     getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey:     getEnv("STORAGE_SECRET_KEY", ""),
			UsePathStyle:  usePathStyle,
			PublicBaseURL: getEnv("STORAGE_PUBLIC_BASE_URL", ""),
		},
		Pagination: PaginationConfig{
			ItemsPerPage: itemsPerPage,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field requirements
func (c *Config) Validate() error {
	if c.Auth.Secret == "" {
		return fmt.Errorf("AUTH_SECRET is required")
	}
	if c.Pagination.ItemsPerPage < 1 {
		return fmt.Errorf("ITEMS_PER_PAGE must be positive")
	}
	switch c.Storage.Driver {
	case "stub":
	case "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("STORAGE_BUCKET is required for the s3 driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER: %s", c.Storage.Driver)
	}
	return nil
}

// DSN returns the database connection string
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the database connection string in URL form, as used by migrations
func (d *DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// splitList parses a comma-separated value, dropping blanks
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
