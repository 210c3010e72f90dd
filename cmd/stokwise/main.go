package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/stokwise/stokwise/internal/config"
	httpserver "github.com/stokwise/stokwise/internal/http"
	"github.com/stokwise/stokwise/pkg/auth"
	"github.com/stokwise/stokwise/pkg/gateway"
	"github.com/stokwise/stokwise/pkg/repository"
	"github.com/stokwise/stokwise/pkg/snapshot"
	"github.com/stokwise/stokwise/pkg/tenant"
)

const sessionEvictionInterval = time.Minute

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	var (
		db              *sql.DB
		gw              gateway.Gateway
		passwordService *auth.PasswordService
	)

	switch cfg.GatewayDriver {
	case config.GatewayREST:
		// Accounts live in the hosted backend; its tokens are accepted
		// when signed with JWT_SECRET.
		gw = gateway.NewREST(gateway.RESTConfig{
			BaseURL: cfg.GatewayRESTURL,
			APIKey:  cfg.GatewayRESTAPIKey,
			Timeout: cfg.GatewayRESTTimeout,
		})
		logger.Info("using REST gateway", "url", cfg.GatewayRESTURL)
	default:
		var err error
		db, err = repository.NewDB(repository.Config{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			DBName:   cfg.DBName,
			SSLMode:  cfg.DBSSLMode,
		})
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()
		logger.Info("connected to database")

		usersRepo := repository.NewUsersRepository(db)
		passwordService = auth.NewPasswordService(db, usersRepo, repository.NewCredentialsRepository(db), cfg.PasswordMinLength)
		gw = gateway.NewPostgres(
			usersRepo,
			repository.NewBusinessesRepository(db),
			repository.NewCategoriesRepository(db),
			repository.NewStoresRepository(db),
		)
	}

	persister, closePersister, err := snapshot.Open(ctx, snapshot.Config{
		Driver:        cfg.Snapshot.Driver,
		SQLitePath:    cfg.Snapshot.SQLitePath,
		RedisAddr:     cfg.Snapshot.RedisAddr,
		RedisPassword: cfg.Snapshot.RedisPassword,
		RedisDB:       cfg.Snapshot.RedisDB,
		TTL:           cfg.Snapshot.TTL,
		S3: snapshot.S3Config{
			Bucket:    cfg.Snapshot.S3Bucket,
			Region:    cfg.Snapshot.S3Region,
			Endpoint:  cfg.Snapshot.S3Endpoint,
			PathStyle: cfg.Snapshot.S3PathStyle,
		},
	})
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}
	defer func() {
		if err := closePersister(); err != nil {
			logger.Warn("closing snapshot store failed", "error", err)
		}
	}()
	logger.Info("snapshot store ready", "driver", cfg.Snapshot.Driver)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	sessionService := auth.NewSessionService(auth.SessionConfig{
		AccessTokenTTL: cfg.AccessTokenTTL,
		JWTSecret:      []byte(cfg.JWTSecret),
		Issuer:         cfg.JWTIssuer,
	})
	registry := tenant.NewRegistry(gw, persister, logger, tenant.NewMetrics(reg))
	defer registry.Close()

	evictCtx, stopEviction := context.WithCancel(ctx)
	defer stopEviction()
	go registry.RunEviction(evictCtx, sessionEvictionInterval, cfg.SessionIdleTimeout)

	router := httpserver.NewRouter(httpserver.RouterConfig{
		Logger:             logger,
		PasswordService:    passwordService,
		SessionService:     sessionService,
		Gateway:            gw,
		Registry:           registry,
		Registerer:         reg,
		Gatherer:           reg,
		RateLimitConfig:    cfg.RateLimit,
		SecurityHeaders:    cfg.SecurityHeaders,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		CookieSecure:       cfg.CookieSecure,
	})

	addr := fmt.Sprintf("%s:%d", cfg.ServerAddr, cfg.ServerPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	// Deferred: registry.Close flushes pending snapshots before the
	// snapshot store and database close.
	logger.Info("server stopped")
	return nil
}
