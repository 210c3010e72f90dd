package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stokwise/stokwise/pkg/domain"
)

// RESTConfig configures the hosted backend client.
type RESTConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	RetryCount int
}

// APIError is an error body returned by the hosted backend.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (code %s, status %d)", e.Message, e.Code, e.Status)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// REST talks to a PostgREST-compatible hosted backend. The caller's access
// token on the context is forwarded as the bearer token; the API key is
// sent on every request.
type REST struct {
	client *resty.Client
}

// NewREST creates a REST gateway.
func NewREST(cfg RESTConfig) *REST {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("apikey", cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &REST{client: client}
}

func (g *REST) request(ctx context.Context) *resty.Request {
	req := g.client.R().SetContext(ctx).SetError(&APIError{})
	if token, ok := AccessTokenFrom(ctx); ok {
		req.SetAuthToken(token)
	}
	return req
}

// codeError maps one SQLSTATE code reported by the backend to a sentinel.
type codeError struct {
	code string
	err  error
}

// check turns a transport failure or error response into an error. A
// response whose code matches one of codes returns that sentinel; any
// other code is returned as an *APIError.
func check(resp *resty.Response, err error, codes ...codeError) error {
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	if !resp.IsError() {
		return nil
	}

	apiErr, ok := resp.Error().(*APIError)
	if !ok || apiErr == nil {
		apiErr = &APIError{}
	}
	apiErr.Status = resp.StatusCode()
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode())
	}

	for _, c := range codes {
		if apiErr.Code == c.code {
			return c.err
		}
	}
	return apiErr
}

type restUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		FullName  *string `json:"full_name"`
		AvatarURL string  `json:"avatar_url"`
	} `json:"user_metadata"`
}

// CurrentUser resolves the caller through the backend's auth endpoint.
func (g *REST) CurrentUser(ctx context.Context) (*domain.User, error) {
	if _, ok := AccessTokenFrom(ctx); !ok {
		return nil, ErrNoSession
	}

	var out restUser
	resp, err := g.request(ctx).SetResult(&out).Get("/auth/v1/user")
	if err == nil && (resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden) {
		return nil, ErrNoSession
	}
	if err := check(resp, err); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, ErrNoSession
	}

	return &domain.User{
		ID:        out.ID,
		Name:      domain.DisplayName(out.UserMetadata.FullName, out.Email),
		Email:     out.Email,
		AvatarURL: out.UserMetadata.AvatarURL,
	}, nil
}

func (g *REST) ListBusinesses(ctx context.Context, ownerID string) ([]domain.Business, error) {
	out := []domain.Business{}
	resp, err := g.request(ctx).
		SetQueryParams(map[string]string{
			"select":   "*",
			"owner_id": "eq." + ownerID,
			"order":    "created_at.asc",
		}).
		SetResult(&out).
		Get("/rest/v1/businesses")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *REST) CreateBusiness(ctx context.Context, ownerID, name, slug string) (*domain.Business, error) {
	var out []domain.Business
	resp, err := g.request(ctx).
		SetHeader("Prefer", "return=representation").
		SetBody(map[string]string{"owner_id": ownerID, "name": name, "slug": slug}).
		SetResult(&out).
		Post("/rest/v1/businesses")
	if err := check(resp, err, codeError{pgUniqueViolation, domain.ErrSlugTaken}); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("create business: empty response")
	}
	return &out[0], nil
}

func (g *REST) DeleteBusiness(ctx context.Context, id, ownerID string) error {
	var out []domain.Business
	resp, err := g.request(ctx).
		SetHeader("Prefer", "return=representation").
		SetQueryParams(map[string]string{"id": "eq." + id, "owner_id": "eq." + ownerID}).
		SetResult(&out).
		Delete("/rest/v1/businesses")
	if err := check(resp, err); err != nil {
		return err
	}
	if len(out) == 0 {
		return domain.ErrBusinessNotFound
	}
	return nil
}

func (g *REST) ListCategories(ctx context.Context, businessID string) ([]domain.Category, error) {
	out := []domain.Category{}
	resp, err := g.request(ctx).
		SetQueryParams(map[string]string{
			"select":      "*",
			"business_id": "eq." + businessID,
			"order":       "created_at.asc",
		}).
		SetResult(&out).
		Get("/rest/v1/categories")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *REST) CreateCategory(ctx context.Context, businessID, name string) (*domain.Category, error) {
	var out []domain.Category
	resp, err := g.request(ctx).
		SetHeader("Prefer", "return=representation").
		SetBody(map[string]string{"business_id": businessID, "name": name}).
		SetResult(&out).
		Post("/rest/v1/categories")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("create category: empty response")
	}
	return &out[0], nil
}

func (g *REST) DeleteCategory(ctx context.Context, id string) error {
	var out []domain.Category
	resp, err := g.request(ctx).
		SetHeader("Prefer", "return=representation").
		SetQueryParam("id", "eq."+id).
		SetResult(&out).
		Delete("/rest/v1/categories")
	if err := check(resp, err, codeError{pgForeignKeyViolation, domain.ErrCategoryInUse}); err != nil {
		return err
	}
	if len(out) == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

func (g *REST) ListStores(ctx context.Context, businessID string) ([]domain.Store, error) {
	out := []domain.Store{}
	resp, err := g.request(ctx).
		SetQueryParams(map[string]string{
			"select":      "*",
			"business_id": "eq." + businessID,
			"order":       "created_at.asc",
		}).
		SetResult(&out).
		Get("/rest/v1/stores")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *REST) CreateStore(ctx context.Context, businessID, name string, location *string) (*domain.Store, error) {
	body := map[string]any{"business_id": businessID, "name": name, "location": location}

	var out []domain.Store
	resp, err := g.request(ctx).
		SetHeader("Prefer", "return=representation").
		SetBody(body).
		SetResult(&out).
		Post("/rest/v1/stores")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("create store: empty response")
	}
	return &out[0], nil
}
