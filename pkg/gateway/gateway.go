// Package gateway is the remote data backend behind the tenant context:
// session lookup plus business, category and store CRUD.
package gateway

import (
	"context"
	"errors"

	"github.com/stokwise/stokwise/pkg/domain"
)

// ErrNoSession is returned by CurrentUser when no authenticated user is
// attached to the request.
var ErrNoSession = errors.New("user session not found")

// Gateway is implemented by every data backend.
type Gateway interface {
	CurrentUser(ctx context.Context) (*domain.User, error)

	ListBusinesses(ctx context.Context, ownerID string) ([]domain.Business, error)
	CreateBusiness(ctx context.Context, ownerID, name, slug string) (*domain.Business, error)
	DeleteBusiness(ctx context.Context, id, ownerID string) error

	ListCategories(ctx context.Context, businessID string) ([]domain.Category, error)
	CreateCategory(ctx context.Context, businessID, name string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	ListStores(ctx context.Context, businessID string) ([]domain.Store, error)
	CreateStore(ctx context.Context, businessID, name string, location *string) (*domain.Store, error)
}

type contextKey string

const (
	userIDKey      contextKey = "gateway_user_id"
	accessTokenKey contextKey = "gateway_access_token"
)

// WithUserID attaches the authenticated user ID to ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFrom returns the authenticated user ID attached to ctx.
func UserIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// WithAccessToken attaches the caller's bearer token to ctx. The REST
// gateway forwards it to the hosted backend.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, accessTokenKey, token)
}

// AccessTokenFrom returns the bearer token attached to ctx.
func AccessTokenFrom(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(accessTokenKey).(string)
	return token, ok && token != ""
}
