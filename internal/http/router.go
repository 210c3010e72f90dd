package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stokwise/stokwise/internal/config"
	"github.com/stokwise/stokwise/internal/http/features/businesses"
	"github.com/stokwise/stokwise/internal/http/features/categories"
	"github.com/stokwise/stokwise/internal/http/features/session"
	"github.com/stokwise/stokwise/internal/http/features/stores"
	"github.com/stokwise/stokwise/internal/http/features/workspace"
	"github.com/stokwise/stokwise/internal/http/middleware"
	"github.com/stokwise/stokwise/internal/httputil"
	"github.com/stokwise/stokwise/pkg/auth"
	"github.com/stokwise/stokwise/pkg/gateway"
	"github.com/stokwise/stokwise/pkg/tenant"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger          *slog.Logger
	PasswordService *auth.PasswordService // nil disables register and login
	SessionService  *auth.SessionService
	Gateway         gateway.Gateway
	Registry        *tenant.Registry

	// Registerer receives the HTTP collectors and Gatherer backs /metrics.
	// Both nil disables metrics.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	RateLimitConfig    config.RateLimitConfig
	SecurityHeaders    config.SecurityHeadersConfig
	MaxRequestBodySize int64
	CookieSecure       bool
}

// NewRouter creates a new HTTP router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(chimw.RequestID)
	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	if cfg.Registerer != nil {
		r.Use(middleware.NewHTTPMetrics(cfg.Registerer).Middleware)
	}
	r.Use(middleware.SecurityHeaders(cfg.SecurityHeaders))
	if cfg.MaxRequestBodySize > 0 {
		r.Use(middleware.RequestSizeLimit(cfg.MaxRequestBodySize))
	}

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	// Session routes
	sessionHandler := session.NewHandler(cfg.Logger, cfg.PasswordService, cfg.SessionService, cfg.Registry, cfg.CookieSecure)
	if cfg.PasswordService != nil {
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthRateLimit(cfg.RateLimitConfig, cfg.Logger))
			r.Post("/v1/auth/register", sessionHandler.Register)
			r.Post("/v1/auth/login", sessionHandler.Login)
		})
	}
	r.Post("/v1/auth/logout", sessionHandler.Logout)

	workspaceHandler := workspace.NewHandler(cfg.Logger, cfg.Registry)
	businessesHandler := businesses.NewHandler(cfg.Logger, cfg.Gateway, cfg.Registry)
	categoriesHandler := categories.NewHandler(cfg.Logger, cfg.Gateway, cfg.Registry)
	storesHandler := stores.NewHandler(cfg.Logger, cfg.Gateway, cfg.Registry)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.SessionService))

		r.Get("/v1/context", workspaceHandler.Context)
		r.Post("/v1/context/refresh", workspaceHandler.Refresh)
		r.Put("/v1/context/business", workspaceHandler.SetBusiness)
		r.Get("/v1/context/reconcile", workspaceHandler.Reconcile)

		r.Route("/v1/businesses", func(r chi.Router) {
			r.Get("/", businessesHandler.List)
			r.Post("/", businessesHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Delete("/", businessesHandler.Delete)

				r.Get("/categories", categoriesHandler.List)
				r.Post("/categories", categoriesHandler.Create)
				r.Delete("/categories/{categoryID}", categoriesHandler.Delete)

				r.Get("/stores", storesHandler.List)
				r.Post("/stores", storesHandler.Create)
			})
		})
	})

	return r
}
