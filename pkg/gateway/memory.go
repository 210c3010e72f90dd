package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stokwise/stokwise/pkg/domain"
)

// Memory is a process-local gateway. It backs tests and embedders that
// keep their data elsewhere and seed it at start up.
type Memory struct {
	mu         sync.Mutex
	users      map[string]domain.User
	businesses []domain.Business
	categories []domain.Category
	stores     []domain.Store
	inUse      map[string]bool
	now        func() time.Time
}

var _ Gateway = (*Memory)(nil)

// NewMemory returns an empty in-memory gateway.
func NewMemory() *Memory {
	return &Memory{
		users: make(map[string]domain.User),
		inUse: make(map[string]bool),
		now:   time.Now,
	}
}

// PutUser registers or replaces a user.
func (m *Memory) PutUser(u domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

// MarkCategoryInUse makes DeleteCategory fail for id as if products
// still referenced it.
func (m *Memory) MarkCategoryInUse(id string, inUse bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inUse[id] = inUse
}

func (m *Memory) CurrentUser(ctx context.Context) (*domain.User, error) {
	userID, ok := UserIDFrom(ctx)
	if !ok {
		return nil, ErrNoSession
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, ErrNoSession
	}
	return &u, nil
}

func (m *Memory) ListBusinesses(_ context.Context, ownerID string) ([]domain.Business, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Business{}
	for _, b := range m.businesses {
		if b.OwnerID == ownerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *Memory) CreateBusiness(_ context.Context, ownerID, name, slug string) (*domain.Business, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.businesses {
		if b.Slug == slug {
			return nil, domain.ErrSlugTaken
		}
	}
	b := domain.Business{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Name:      name,
		Slug:      slug,
		CreatedAt: m.now(),
	}
	m.businesses = append(m.businesses, b)
	return &b, nil
}

func (m *Memory) DeleteBusiness(_ context.Context, id, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := -1
	for i, b := range m.businesses {
		if b.ID == id && b.OwnerID == ownerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.ErrBusinessNotFound
	}
	m.businesses = append(m.businesses[:idx], m.businesses[idx+1:]...)

	// Cascade like the database foreign keys do.
	cats := m.categories[:0]
	for _, c := range m.categories {
		if c.BusinessID != id {
			cats = append(cats, c)
		}
	}
	m.categories = cats
	stores := m.stores[:0]
	for _, s := range m.stores {
		if s.BusinessID != id {
			stores = append(stores, s)
		}
	}
	m.stores = stores
	return nil
}

func (m *Memory) ListCategories(_ context.Context, businessID string) ([]domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Category{}
	for _, c := range m.categories {
		if c.BusinessID == businessID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *Memory) CreateCategory(_ context.Context, businessID, name string) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := domain.Category{
		ID:         uuid.New().String(),
		BusinessID: businessID,
		Name:       name,
		CreatedAt:  m.now(),
	}
	m.categories = append(m.categories, c)
	return &c, nil
}

func (m *Memory) DeleteCategory(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inUse[id] {
		return domain.ErrCategoryInUse
	}
	for i, c := range m.categories {
		if c.ID == id {
			m.categories = append(m.categories[:i], m.categories[i+1:]...)
			return nil
		}
	}
	return domain.ErrCategoryNotFound
}

func (m *Memory) ListStores(_ context.Context, businessID string) ([]domain.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Store{}
	for _, s := range m.stores {
		if s.BusinessID == businessID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *Memory) CreateStore(_ context.Context, businessID, name string, location *string) (*domain.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := domain.Store{
		ID:         uuid.New().String(),
		BusinessID: businessID,
		Name:       name,
		Location:   location,
		CreatedAt:  m.now(),
	}
	m.stores = append(m.stores, s)
	return &s, nil
}
