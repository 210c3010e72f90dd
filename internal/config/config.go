package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Gateway drivers.
const (
	GatewayPostgres = "postgres"
	GatewayREST     = "rest"
)

// Config holds application configuration.
type Config struct {
	// Server
	ServerAddr string
	ServerPort int
	LogLevel   slog.Level

	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret      string
	JWTIssuer      string
	AccessTokenTTL time.Duration

	// Remote data gateway
	GatewayDriver      string
	GatewayRESTURL     string
	GatewayRESTAPIKey  string
	GatewayRESTTimeout time.Duration

	Snapshot SnapshotConfig

	// Tenant sessions unused this long are evicted from memory.
	SessionIdleTimeout time.Duration

	// HTTP hardening
	RateLimit          RateLimitConfig
	SecurityHeaders    SecurityHeadersConfig
	CookieSecure       bool
	MaxRequestBodySize int64
	PasswordMinLength  int
}

// SnapshotConfig selects where tenant context snapshots are kept.
type SnapshotConfig struct {
	Driver        string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
	S3Bucket      string
	S3Region      string
	S3Endpoint    string
	S3PathStyle   bool
}

// RateLimitConfig configures the limiter on the login and register routes.
type RateLimitConfig struct {
	Enabled               bool
	AuthRequestsPerMinute int
	AuthWindowMinutes     int
}

// SecurityHeadersConfig lists the response headers applied to every route.
type SecurityHeadersConfig struct {
	Enabled            bool
	CSP                string
	HSTSMaxAge         int
	FrameOptions       string
	ContentTypeOptions string
	ReferrerPolicy     string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		ServerAddr: getEnv("SERVER_ADDR", "0.0.0.0"),
		ServerPort: getEnvInt("SERVER_PORT", 8080),
		LogLevel:   parseLevel(getEnv("LOG_LEVEL", "info")),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 25432),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "stokwise"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTIssuer:      getEnv("JWT_ISSUER", "stokwise"),
		AccessTokenTTL: getEnvDuration("ACCESS_TOKEN_TTL", 12*time.Hour),

		GatewayDriver:      strings.ToLower(getEnv("GATEWAY_DRIVER", GatewayPostgres)),
		GatewayRESTURL:     getEnv("GATEWAY_REST_URL", ""),
		GatewayRESTAPIKey:  getEnv("GATEWAY_REST_API_KEY", ""),
		GatewayRESTTimeout: getEnvDuration("GATEWAY_REST_TIMEOUT", 10*time.Second),

		Snapshot: SnapshotConfig{
			Driver:        strings.ToLower(getEnv("SNAPSHOT_DRIVER", "memory")),
			SQLitePath:    getEnv("SNAPSHOT_SQLITE_PATH", "data/snapshots.db"),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("REDIS_DB", 0),
			TTL:           getEnvDuration("SNAPSHOT_TTL", 30*24*time.Hour),
			S3Bucket:      getEnv("SNAPSHOT_S3_BUCKET", ""),
			S3Region:      getEnv("SNAPSHOT_S3_REGION", "us-east-1"),
			S3Endpoint:    getEnv("SNAPSHOT_S3_ENDPOINT", ""),
			S3PathStyle:   getEnvBool("SNAPSHOT_S3_PATH_STYLE", false),
		},

		SessionIdleTimeout: getEnvDuration("SESSION_IDLE_TIMEOUT", 12*time.Hour),

		RateLimit: RateLimitConfig{
			Enabled:               getEnvBool("RATE_LIMIT_ENABLED", true),
			AuthRequestsPerMinute: getEnvInt("RATE_LIMIT_AUTH_PER_MINUTE", 10),
			AuthWindowMinutes:     getEnvInt("RATE_LIMIT_AUTH_WINDOW_MINUTES", 1),
		},
		SecurityHeaders: SecurityHeadersConfig{
			Enabled:            getEnvBool("SECURITY_HEADERS_ENABLED", true),
			CSP:                getEnv("SECURITY_CSP", "default-src 'none'; frame-ancestors 'none'"),
			HSTSMaxAge:         getEnvInt("SECURITY_HSTS_MAX_AGE", 0),
			FrameOptions:       getEnv("SECURITY_FRAME_OPTIONS", "DENY"),
			ContentTypeOptions: "nosniff",
			ReferrerPolicy:     getEnv("SECURITY_REFERRER_POLICY", "strict-origin-when-cross-origin"),
		},
		CookieSecure:       getEnvBool("COOKIE_SECURE", false),
		MaxRequestBodySize: int64(getEnvInt("MAX_REQUEST_BODY_SIZE", 1<<20)),
		PasswordMinLength:  getEnvInt("PASSWORD_MIN_LENGTH", 8),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	switch c.GatewayDriver {
	case GatewayPostgres:
	case GatewayREST:
		if c.GatewayRESTURL == "" {
			return fmt.Errorf("GATEWAY_REST_URL is required when GATEWAY_DRIVER=rest")
		}
	default:
		return fmt.Errorf("unknown GATEWAY_DRIVER %q", c.GatewayDriver)
	}

	switch c.Snapshot.Driver {
	case "memory", "sqlite", "redis":
	case "s3":
		if c.Snapshot.S3Bucket == "" {
			return fmt.Errorf("SNAPSHOT_S3_BUCKET is required when SNAPSHOT_DRIVER=s3")
		}
	default:
		return fmt.Errorf("unknown SNAPSHOT_DRIVER %q", c.Snapshot.Driver)
	}

	if c.RateLimit.Enabled && c.RateLimit.AuthRequestsPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_AUTH_PER_MINUTE must be positive")
	}
	if c.SessionIdleTimeout <= 0 {
		return fmt.Errorf("SESSION_IDLE_TIMEOUT must be positive")
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
