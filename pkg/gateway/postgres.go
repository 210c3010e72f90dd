package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stokwise/stokwise/pkg/domain"
	"github.com/stokwise/stokwise/pkg/repository"
)

// Postgres serves the gateway directly from the application database.
type Postgres struct {
	users      *repository.UsersRepository
	businesses *repository.BusinessesRepository
	categories *repository.CategoriesRepository
	stores     *repository.StoresRepository
	now        func() time.Time
}

// NewPostgres creates a gateway over the given repositories.
func NewPostgres(
	users *repository.UsersRepository,
	businesses *repository.BusinessesRepository,
	categories *repository.CategoriesRepository,
	stores *repository.StoresRepository,
) *Postgres {
	return &Postgres{
		users:      users,
		businesses: businesses,
		categories: categories,
		stores:     stores,
		now:        time.Now,
	}
}

// CurrentUser loads the account of the user attached to ctx.
func (g *Postgres) CurrentUser(ctx context.Context) (*domain.User, error) {
	userID, ok := UserIDFrom(ctx)
	if !ok {
		return nil, ErrNoSession
	}

	acct, err := g.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, ErrNoSession
		}
		return nil, err
	}

	user := acct.Profile()
	return &user, nil
}

func (g *Postgres) ListBusinesses(ctx context.Context, ownerID string) ([]domain.Business, error) {
	return g.businesses.ListByOwner(ctx, ownerID)
}

func (g *Postgres) CreateBusiness(ctx context.Context, ownerID, name, slug string) (*domain.Business, error) {
	b := &domain.Business{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Name:      name,
		Slug:      slug,
		CreatedAt: g.now(),
	}
	if err := g.businesses.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (g *Postgres) DeleteBusiness(ctx context.Context, id, ownerID string) error {
	return g.businesses.Delete(ctx, id, ownerID)
}

func (g *Postgres) ListCategories(ctx context.Context, businessID string) ([]domain.Category, error) {
	return g.categories.ListByBusiness(ctx, businessID)
}

func (g *Postgres) CreateCategory(ctx context.Context, businessID, name string) (*domain.Category, error) {
	c := &domain.Category{
		ID:         uuid.New().String(),
		BusinessID: businessID,
		Name:       name,
		CreatedAt:  g.now(),
	}
	if err := g.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (g *Postgres) DeleteCategory(ctx context.Context, id string) error {
	return g.categories.Delete(ctx, id)
}

func (g *Postgres) ListStores(ctx context.Context, businessID string) ([]domain.Store, error) {
	return g.stores.ListByBusiness(ctx, businessID)
}

func (g *Postgres) CreateStore(ctx context.Context, businessID, name string, location *string) (*domain.Store, error) {
	s := &domain.Store{
		ID:         uuid.New().String(),
		BusinessID: businessID,
		Name:       name,
		Location:   location,
		CreatedAt:  g.now(),
	}
	if err := g.stores.Create(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}
