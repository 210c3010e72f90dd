package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key")
	for _, v := range []string{"SERVER_ADDR", "SERVER_PORT", "DB_HOST", "DB_PORT", "GATEWAY_DRIVER", "SNAPSHOT_DRIVER", "LOG_LEVEL", "SESSION_IDLE_TIMEOUT"} {
		t.Setenv(v, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerAddr != "0.0.0.0" {
		t.Errorf("ServerAddr = %q, want %q", cfg.ServerAddr, "0.0.0.0")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.DBPort != 25432 {
		t.Errorf("DBPort = %d, want %d", cfg.DBPort, 25432)
	}
	if cfg.AccessTokenTTL != 12*time.Hour {
		t.Errorf("AccessTokenTTL = %v, want %v", cfg.AccessTokenTTL, 12*time.Hour)
	}
	if cfg.GatewayDriver != GatewayPostgres {
		t.Errorf("GatewayDriver = %q, want %q", cfg.GatewayDriver, GatewayPostgres)
	}
	if cfg.Snapshot.Driver != "memory" {
		t.Errorf("Snapshot.Driver = %q, want %q", cfg.Snapshot.Driver, "memory")
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want %v", cfg.LogLevel, slog.LevelInfo)
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.AuthRequestsPerMinute != 10 {
		t.Errorf("RateLimit = %+v, want enabled with 10/min", cfg.RateLimit)
	}
	if cfg.SessionIdleTimeout != 12*time.Hour {
		t.Errorf("SessionIdleTimeout = %v, want %v", cfg.SessionIdleTimeout, 12*time.Hour)
	}
	if cfg.PasswordMinLength != 8 {
		t.Errorf("PasswordMinLength = %d, want 8", cfg.PasswordMinLength)
	}
}

func TestLoad_RequiredJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	if err == nil {
		t.Error("Load should fail when JWT_SECRET is not set")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "custom-secret")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ACCESS_TOKEN_TTL", "30m")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("GATEWAY_DRIVER", "REST")
	t.Setenv("GATEWAY_REST_URL", "https://project.example.co")
	t.Setenv("SNAPSHOT_DRIVER", "redis")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("SNAPSHOT_TTL", "1h")
	t.Setenv("COOKIE_SECURE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerPort != 9090 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 9090)
	}
	if cfg.AccessTokenTTL != 30*time.Minute {
		t.Errorf("AccessTokenTTL = %v, want %v", cfg.AccessTokenTTL, 30*time.Minute)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want %v", cfg.LogLevel, slog.LevelDebug)
	}
	if cfg.GatewayDriver != GatewayREST {
		t.Errorf("GatewayDriver = %q, want %q", cfg.GatewayDriver, GatewayREST)
	}
	if cfg.Snapshot.Driver != "redis" || cfg.Snapshot.RedisDB != 3 || cfg.Snapshot.TTL != time.Hour {
		t.Errorf("Snapshot = %+v", cfg.Snapshot)
	}
	if !cfg.CookieSecure {
		t.Error("CookieSecure = false, want true")
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "rest gateway without url",
			env:  map[string]string{"GATEWAY_DRIVER": "rest", "GATEWAY_REST_URL": ""},
		},
		{
			name: "unknown gateway",
			env:  map[string]string{"GATEWAY_DRIVER": "mongo"},
		},
		{
			name: "unknown snapshot driver",
			env:  map[string]string{"SNAPSHOT_DRIVER": "etcd"},
		},
		{
			name: "s3 without bucket",
			env:  map[string]string{"SNAPSHOT_DRIVER": "s3", "SNAPSHOT_S3_BUCKET": ""},
		},
		{
			name: "negative session idle timeout",
			env:  map[string]string{"SESSION_IDLE_TIMEOUT": "-1m"},
		},
		{
			name: "zero auth rate limit",
			env:  map[string]string{"RATE_LIMIT_AUTH_PER_MINUTE": "0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "secret")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("Load should fail")
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("STOKWISE_TEST_BOOL", "not-a-bool")
	if got := getEnvBool("STOKWISE_TEST_BOOL", true); !got {
		t.Error("invalid value should fall back to default")
	}
	t.Setenv("STOKWISE_TEST_BOOL", "0")
	if got := getEnvBool("STOKWISE_TEST_BOOL", true); got {
		t.Error("0 should parse as false")
	}
}
