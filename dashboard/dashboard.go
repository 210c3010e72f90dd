// Package dashboard embeds the tenant context service of the inventory
// dashboard into another chi application.
//
// Setup:
//
//  1. Run migrations from migrations/ folder using your preferred tool
//  2. Create a Dashboard instance and mount its router
//
// Basic usage:
//
//	db, _ := sql.Open("postgres", "postgres://localhost/stokwise?sslmode=disable")
//
//	d, err := dashboard.New(dashboard.Config{
//	    DB:        db,
//	    JWTSecret: "your-secret-key-at-least-32-chars",
//	})
//	if err != nil {
//	    log.Fatal(err) // Will fail if migrations haven't been run
//	}
//	defer d.Close()
//
//	r := chi.NewRouter()
//	r.Mount("/", d.Router())
//	http.ListenAndServe(":8080", r)
//
// With a hosted PostgREST backend instead of a local database, pass a
// gateway and leave DB nil; register and login are then disabled and the
// backend's tokens are accepted when signed with the same secret:
//
//	d, err := dashboard.New(dashboard.Config{
//	    Gateway:   gateway.NewREST(gateway.RESTConfig{BaseURL: url, APIKey: key}),
//	    JWTSecret: jwtSecret,
//	})
package dashboard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stokwise/stokwise/internal/config"
	httpserver "github.com/stokwise/stokwise/internal/http"
	"github.com/stokwise/stokwise/internal/http/middleware"
	"github.com/stokwise/stokwise/pkg/auth"
	"github.com/stokwise/stokwise/pkg/gateway"
	"github.com/stokwise/stokwise/pkg/repository"
	"github.com/stokwise/stokwise/pkg/snapshot"
	"github.com/stokwise/stokwise/pkg/tenant"
)

// Config holds the configuration for the dashboard service.
type Config struct {
	// DB is the application database. Required unless Gateway is set.
	DB *sql.DB

	// Gateway overrides the data backend (default: Postgres over DB).
	Gateway gateway.Gateway

	// Persister keeps tenant context snapshots (default: in memory).
	Persister snapshot.Persister

	// JWTSecret is the secret key for signing JWT tokens (required, min 32 chars).
	JWTSecret string

	// JWTIssuer is the issuer claim in JWT tokens (default: "stokwise").
	JWTIssuer string

	// AccessTokenTTL is the lifetime of access tokens (default: 12 hours).
	AccessTokenTTL time.Duration

	// SessionIdleTimeout evicts tenant sessions unused for this long
	// (default: AccessTokenTTL). Their snapshots are kept.
	SessionIdleTimeout time.Duration

	// PasswordMinLength defaults to 8.
	PasswordMinLength int

	// AuthRequestsPerMinute limits register and login per client IP.
	// Zero disables the limiter.
	AuthRequestsPerMinute int

	// MaxRequestBodySize in bytes (default: 1 MiB).
	MaxRequestBodySize int64

	// CookieSecure sets the Secure flag on the session cookie.
	CookieSecure bool

	// Registerer receives the service metrics (optional). When it is also a
	// prometheus.Gatherer, /metrics is served.
	Registerer prometheus.Registerer

	// Logger is the structured logger (default: JSON on stdout).
	Logger *slog.Logger
}

// Dashboard is a configured tenant context service.
type Dashboard struct {
	config          Config
	gw              gateway.Gateway
	passwordService *auth.PasswordService
	sessionService  *auth.SessionService
	registry        *tenant.Registry
	stopEviction    context.CancelFunc
}

// New creates a Dashboard. When DB is set, the required tables must exist.
func New(cfg Config) (*Dashboard, error) {
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	d := &Dashboard{config: cfg, gw: cfg.Gateway}

	if cfg.DB != nil {
		if err := validateSchema(cfg.DB); err != nil {
			return nil, err
		}
		usersRepo := repository.NewUsersRepository(cfg.DB)
		d.passwordService = auth.NewPasswordService(cfg.DB, usersRepo, repository.NewCredentialsRepository(cfg.DB), cfg.PasswordMinLength)
		if d.gw == nil {
			d.gw = gateway.NewPostgres(
				usersRepo,
				repository.NewBusinessesRepository(cfg.DB),
				repository.NewCategoriesRepository(cfg.DB),
				repository.NewStoresRepository(cfg.DB),
			)
		}
	}

	d.sessionService = auth.NewSessionService(auth.SessionConfig{
		AccessTokenTTL: cfg.AccessTokenTTL,
		JWTSecret:      []byte(cfg.JWTSecret),
		Issuer:         cfg.JWTIssuer,
	})

	var metrics *tenant.Metrics
	if cfg.Registerer != nil {
		metrics = tenant.NewMetrics(cfg.Registerer)
	}
	d.registry = tenant.NewRegistry(d.gw, cfg.Persister, cfg.Logger, metrics)

	evictCtx, stop := context.WithCancel(context.Background())
	d.stopEviction = stop
	go d.registry.RunEviction(evictCtx, time.Minute, cfg.SessionIdleTimeout)

	return d, nil
}

// Router returns the HTTP routes of the service:
//
//	POST   /v1/auth/register                        - Register (with DB)
//	POST   /v1/auth/login                           - Login (with DB)
//	POST   /v1/auth/logout                          - Logout
//	GET    /v1/context                              - Tenant context (protected)
//	POST   /v1/context/refresh                      - Reload global data (protected)
//	PUT    /v1/context/business                     - Switch active business (protected)
//	GET    /v1/context/reconcile?slug=              - Match the URL slug (protected)
//	GET    /v1/businesses, POST, DELETE /{id}       - Businesses (protected)
//	GET    /v1/businesses/{id}/categories, POST, DELETE /{categoryID}
//	GET    /v1/businesses/{id}/stores, POST
func (d *Dashboard) Router() http.Handler {
	var gatherer prometheus.Gatherer
	if g, ok := d.config.Registerer.(prometheus.Gatherer); ok {
		gatherer = g
	}

	return httpserver.NewRouter(httpserver.RouterConfig{
		Logger:          d.config.Logger,
		PasswordService: d.passwordService,
		SessionService:  d.sessionService,
		Gateway:         d.gw,
		Registry:        d.registry,
		Registerer:      d.config.Registerer,
		Gatherer:        gatherer,
		RateLimitConfig: config.RateLimitConfig{
			Enabled:               d.config.AuthRequestsPerMinute > 0,
			AuthRequestsPerMinute: d.config.AuthRequestsPerMinute,
			AuthWindowMinutes:     1,
		},
		SecurityHeaders: config.SecurityHeadersConfig{
			Enabled:            true,
			ContentTypeOptions: "nosniff",
			FrameOptions:       "DENY",
		},
		MaxRequestBodySize: d.config.MaxRequestBodySize,
		CookieSecure:       d.config.CookieSecure,
	})
}

// SessionService returns the token service for advanced usage.
func (d *Dashboard) SessionService() *auth.SessionService {
	return d.sessionService
}

// Registry returns the per user tenant contexts.
func (d *Dashboard) Registry() *tenant.Registry {
	return d.registry
}

// AuthMiddleware returns middleware that validates JWT tokens.
// Use this to protect your own routes:
//
//	r.Group(func(r chi.Router) {
//	    r.Use(d.AuthMiddleware())
//	    r.Get("/protected", handler)
//	})
func (d *Dashboard) AuthMiddleware() func(http.Handler) http.Handler {
	return middleware.Auth(d.sessionService)
}

// GetUserID extracts the user ID from a request.
// Use after AuthMiddleware.
func GetUserID(r *http.Request) (string, bool) {
	return middleware.GetUserID(r.Context())
}

// State returns the tenant context of the request's user, bootstrapping
// it on first use. Use after AuthMiddleware.
func (d *Dashboard) State(r *http.Request) (tenant.State, error) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		return tenant.State{}, errors.New("dashboard: user not authenticated")
	}
	return d.registry.Get(r.Context(), userID).Store.State(), nil
}

// Close flushes the snapshots of every live session.
func (d *Dashboard) Close() {
	d.stopEviction()
	d.registry.Close()
}

func validateConfig(cfg *Config) error {
	if cfg.DB == nil && cfg.Gateway == nil {
		return errors.New("dashboard: DB or Gateway is required")
	}
	if cfg.JWTSecret == "" {
		return errors.New("dashboard: JWTSecret is required")
	}
	if len(cfg.JWTSecret) < 32 {
		return errors.New("dashboard: JWTSecret must be at least 32 characters")
	}
	if cfg.SessionIdleTimeout < 0 {
		return errors.New("dashboard: SessionIdleTimeout must not be negative")
	}
	if cfg.AuthRequestsPerMinute < 0 {
		return errors.New("dashboard: AuthRequestsPerMinute must not be negative")
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "stokwise"
	}
	if cfg.AccessTokenTTL == 0 {
		cfg.AccessTokenTTL = auth.DefaultAccessTokenTTL
	}
	if cfg.SessionIdleTimeout == 0 {
		cfg.SessionIdleTimeout = cfg.AccessTokenTTL
	}
	if cfg.PasswordMinLength == 0 {
		cfg.PasswordMinLength = auth.DefaultMinPasswordLength
	}
	if cfg.MaxRequestBodySize == 0 {
		cfg.MaxRequestBodySize = 1 << 20
	}
	if cfg.Persister == nil {
		cfg.Persister = snapshot.NewMemory()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
}

// validateSchema checks that required database tables exist.
func validateSchema(db *sql.DB) error {
	requiredTables := []string{"users", "user_passwords", "businesses", "stores", "categories"}

	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, table := range requiredTables {
		var name string
		err := db.QueryRowContext(ctx, query, table).Scan(&name)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("dashboard: missing table '%s' - run migrations first (see migrations/ folder)", table)
		}
		if err != nil {
			return fmt.Errorf("dashboard: failed to check schema: %w", err)
		}
	}

	return nil
}
