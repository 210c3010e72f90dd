package tenant

import (
	"context"
	"errors"
	"sync"

	"github.com/stokwise/stokwise/pkg/domain"
	"github.com/stokwise/stokwise/pkg/gateway"
)

// fakeGateway is an in-memory gateway.Gateway with per-call error hooks.
type fakeGateway struct {
	mu sync.Mutex

	user       *domain.User
	userErr    error
	businesses []domain.Business
	bizErr     error
	categories map[string][]domain.Category
	catErr     error
	stores     map[string][]domain.Store
	storeErr   error
	createErr  error

	// listBusinessesHook runs before ListBusinesses returns, outside the lock.
	listBusinessesHook func(ctx context.Context)

	calls map[string]int
}

var _ gateway.Gateway = (*fakeGateway)(nil)

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		user:       &domain.User{ID: "u1", Name: "sari", Email: "sari@example.com"},
		categories: map[string][]domain.Category{},
		stores:     map[string][]domain.Store{},
		calls:      map[string]int{},
	}
}

func (f *fakeGateway) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeGateway) record(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeGateway) CurrentUser(ctx context.Context) (*domain.User, error) {
	f.record("CurrentUser")
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.userErr != nil {
		return nil, f.userErr
	}
	if f.user == nil {
		return nil, gateway.ErrNoSession
	}
	u := *f.user
	return &u, nil
}

func (f *fakeGateway) ListBusinesses(ctx context.Context, ownerID string) ([]domain.Business, error) {
	f.record("ListBusinesses")
	if f.listBusinessesHook != nil {
		f.listBusinessesHook(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bizErr != nil {
		return nil, f.bizErr
	}
	var out []domain.Business
	for _, b := range f.businesses {
		if b.OwnerID == ownerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeGateway) CreateBusiness(ctx context.Context, ownerID, name, slug string) (*domain.Business, error) {
	f.record("CreateBusiness")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, b := range f.businesses {
		if b.Slug == slug {
			return nil, domain.ErrSlugTaken
		}
	}
	b := domain.Business{ID: "b-" + slug, OwnerID: ownerID, Name: name, Slug: slug}
	f.businesses = append(f.businesses, b)
	return &b, nil
}

func (f *fakeGateway) DeleteBusiness(ctx context.Context, id, ownerID string) error {
	f.record("DeleteBusiness")
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, b := range f.businesses {
		if b.ID == id && b.OwnerID == ownerID {
			f.businesses = append(f.businesses[:i], f.businesses[i+1:]...)
			return nil
		}
	}
	return domain.ErrBusinessNotFound
}

func (f *fakeGateway) ListCategories(ctx context.Context, businessID string) ([]domain.Category, error) {
	f.record("ListCategories")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.catErr != nil {
		return nil, f.catErr
	}
	return append([]domain.Category(nil), f.categories[businessID]...), nil
}

func (f *fakeGateway) CreateCategory(ctx context.Context, businessID, name string) (*domain.Category, error) {
	f.record("CreateCategory")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	c := domain.Category{ID: "c-" + name, BusinessID: businessID, Name: name}
	f.categories[businessID] = append(f.categories[businessID], c)
	return &c, nil
}

func (f *fakeGateway) DeleteCategory(ctx context.Context, id string) error {
	f.record("DeleteCategory")
	f.mu.Lock()
	defer f.mu.Unlock()
	for bid, cats := range f.categories {
		for i, c := range cats {
			if c.ID == id {
				f.categories[bid] = append(cats[:i], cats[i+1:]...)
				return nil
			}
		}
	}
	return domain.ErrCategoryNotFound
}

func (f *fakeGateway) ListStores(ctx context.Context, businessID string) ([]domain.Store, error) {
	f.record("ListStores")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storeErr != nil {
		return nil, f.storeErr
	}
	return append([]domain.Store(nil), f.stores[businessID]...), nil
}

func (f *fakeGateway) CreateStore(ctx context.Context, businessID, name string, location *string) (*domain.Store, error) {
	f.record("CreateStore")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	s := domain.Store{ID: "s-" + name, BusinessID: businessID, Name: name, Location: location}
	f.stores[businessID] = append(f.stores[businessID], s)
	return &s, nil
}

var errBoom = errors.New("connection refused")

func acme() domain.Business {
	return domain.Business{ID: "b1", OwnerID: "u1", Name: "Acme", Slug: "acme"}
}

func globex() domain.Business {
	return domain.Business{ID: "b2", OwnerID: "u1", Name: "Globex", Slug: "globex"}
}

func (f *fakeGateway) setUserErr(err error) {
	f.mu.Lock()
	f.userErr = err
	f.mu.Unlock()
}
