package session

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/stokwise/stokwise/internal/http/middleware"
	"github.com/stokwise/stokwise/internal/httputil"
	"github.com/stokwise/stokwise/pkg/auth"
	"github.com/stokwise/stokwise/pkg/domain"
	"github.com/stokwise/stokwise/pkg/tenant"
)

// Handler handles registration, login and logout.
type Handler struct {
	logger          *slog.Logger
	passwordService *auth.PasswordService
	sessionService  *auth.SessionService
	registry        *tenant.Registry
	cookieConfig    httputil.CookieConfig
}

// NewHandler creates a new session handler.
func NewHandler(
	logger *slog.Logger,
	passwordService *auth.PasswordService,
	sessionService *auth.SessionService,
	registry *tenant.Registry,
	cookieSecure bool,
) *Handler {
	cookieConfig := httputil.DefaultCookieConfig()
	cookieConfig.Secure = cookieSecure
	return &Handler{
		logger:          logger,
		passwordService: passwordService,
		sessionService:  sessionService,
		registry:        registry,
		cookieConfig:    cookieConfig,
	}
}

// RegisterRequest represents a registration request.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse represents a token response.
type TokenResponse struct {
	AccessToken string       `json:"access_token,omitempty"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"`
	User        *domain.User `json:"user"`
}

// Register handles user registration.
// POST /v1/auth/register
//
// For web clients: Sets an HttpOnly cookie.
// For mobile clients (X-Client-Type: mobile): Returns the token in the body.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.DecodeError(w, err)
		return
	}

	if req.Email == "" || req.Password == "" {
		httputil.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	acct, err := h.passwordService.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserAlreadyExists):
			httputil.Error(w, http.StatusConflict, "user already exists")
		case errors.Is(err, domain.ErrInvalidEmail):
			httputil.Error(w, http.StatusBadRequest, "invalid email address")
		case errors.Is(err, domain.ErrWeakPassword):
			httputil.Error(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("registration failed", "error", err)
			httputil.Error(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	h.logger.Info("user registered", "user_id", acct.ID)
	h.issue(w, r, acct, http.StatusCreated)
}

// Login handles password login.
// POST /v1/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.DecodeError(w, err)
		return
	}

	if req.Email == "" || req.Password == "" {
		httputil.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	acct, err := h.passwordService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			httputil.Error(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		h.logger.Error("login failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "login failed")
		return
	}

	h.issue(w, r, acct, http.StatusOK)
}

// Logout ends the session: the cookie is cleared and the tenant context of
// the user is dropped together with its snapshot.
// POST /v1/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.TokenFromRequest(r); token != "" {
		// Expired or foreign tokens still get their cookie cleared.
		if claims, err := h.sessionService.ValidateAccessToken(token); err == nil && h.registry != nil {
			if err := h.registry.Drop(r.Context(), claims.Subject); err != nil {
				h.logger.Warn("dropping tenant snapshot failed", "error", err, "user_id", claims.Subject)
			}
		}
	}

	if !httputil.IsMobileClient(r) {
		httputil.ClearAuthCookies(w, h.cookieConfig)
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request, acct *domain.Account, status int) {
	tokens, err := h.sessionService.IssueToken(acct)
	if err != nil {
		h.logger.Error("failed to issue token", "error", err, "user_id", acct.ID)
		httputil.Error(w, http.StatusInternalServerError, "failed to issue session")
		return
	}

	// A new sign-in starts the tenant context over from its snapshot.
	if h.registry != nil {
		h.registry.Reset(acct.ID)
	}

	user := acct.Profile()
	resp := TokenResponse{
		TokenType: tokens.TokenType,
		ExpiresIn: tokens.ExpiresIn,
		User:      &user,
	}

	if httputil.IsMobileClient(r) {
		resp.AccessToken = tokens.AccessToken
	} else {
		httputil.SetAccessTokenCookie(w, tokens.AccessToken, h.sessionService.AccessTokenTTL(), h.cookieConfig)
	}
	httputil.JSON(w, status, resp)
}
