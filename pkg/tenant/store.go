// Package tenant holds the per-session tenant context: the signed-in user,
// the businesses they own, the active business and its stores, categories
// and derived navigation.
package tenant

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/stokwise/stokwise/pkg/domain"
	"github.com/stokwise/stokwise/pkg/gateway"
	"github.com/stokwise/stokwise/pkg/nav"
	"github.com/stokwise/stokwise/pkg/snapshot"
)

// Error prefixes surfaced in State.Error.
const (
	globalDataErrorPrefix = "Failed to load application data: "
	categoriesErrorPrefix = "Failed to load categories data: "
	storesErrorPrefix     = "Failed to load stores data: "

	sessionNotFoundMessage = "User session not found."
)

// Fetch operation labels.
const (
	opGlobalData = "global_data"
	opCategories = "categories"
	opStores     = "stores"
)

// Store is the tenant context of one session. State changes only through
// its actions; gateway failures never escape an action and are reported in
// State.Error instead.
//
// Fetches are not coalesced or cancelled. When two fetches overlap, each
// applies its result as it completes, so the last response to arrive wins
// even if it was requested first.
type Store struct {
	gw      gateway.Gateway
	logger  *slog.Logger
	metrics *Metrics

	// notifyMu orders state changes with their delivery to listeners.
	notifyMu sync.Mutex

	mu        sync.RWMutex
	state     State
	listeners []listener
	nextID    uint64

	persistence *persistence
}

type listener struct {
	id uint64
	fn func(State)
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithMetrics records fetches on m.
func WithMetrics(m *Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithPersistence hydrates the store from the snapshot saved under key and
// saves a new snapshot after every change to the persisted fields.
func WithPersistence(p snapshot.Persister, key string) Option {
	return func(s *Store) {
		if p != nil {
			s.persistence = &persistence{persister: p, key: key}
		}
	}
}

// NewStore creates a store backed by gw.
func NewStore(gw gateway.Gateway, opts ...Option) *Store {
	s := &Store{
		gw:     gw,
		logger: slog.Default(),
		state:  initialState(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.persistence != nil {
		s.persistence.start(s)
	}
	return s
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Subscribe registers fn to run after every state change, in change order.
// fn receives a read-only copy and must not call store actions.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listener{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// Close stops snapshot writes after flushing the pending ones.
func (s *Store) Close() {
	if s.persistence != nil {
		s.persistence.stop()
	}
}

func (s *Store) set(fn func(*State)) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	fn(&s.state)
	snap := s.state.clone()
	fns := make([]func(State), len(s.listeners))
	for i, l := range s.listeners {
		fns[i] = l.fn
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Store) beginFetch() {
	s.set(func(st *State) {
		st.IsLoading = true
		st.Error = ""
		st.Status = StatusLoading
		st.sessionError = false
	})
}

func (s *Store) failFetch(message string) {
	s.set(func(st *State) {
		st.IsLoading = false
		st.Error = message
		st.Status = StatusError
	})
}

// FetchGlobalData resolves the session user and loads the businesses they
// own. initialBusinessID, when it names a fetched business, becomes the
// active business. Stores and categories are not fetched here.
func (s *Store) FetchGlobalData(ctx context.Context, ownerID, initialBusinessID string) {
	start := time.Now()
	s.beginFetch()

	user, err := s.gw.CurrentUser(ctx)
	if err != nil || user == nil {
		if err != nil && !errors.Is(err, gateway.ErrNoSession) {
			s.logger.Warn("resolve session user failed", "error", err, "owner_id", ownerID)
		}
		s.set(func(st *State) {
			st.CurrentUser = nil
			st.Businesses = []domain.Business{}
			st.CurrentBusiness = nil
			st.Stores = []domain.Store{}
			st.Categories = []domain.Category{}
			st.DynamicNav = nav.Static()
			st.IsLoading = false
			st.Error = globalDataErrorPrefix + sessionNotFoundMessage
			st.Status = StatusError
			st.sessionError = true
		})
		s.metrics.observe(opGlobalData, "session_error", start)
		return
	}

	s.set(func(st *State) {
		u := *user
		st.CurrentUser = &u
	})

	// Only the session user's businesses are ever loaded.
	if ownerID != "" && ownerID != user.ID {
		s.logger.Warn("owner id does not match session user", "owner_id", ownerID, "user_id", user.ID)
	}

	businesses, err := s.gw.ListBusinesses(ctx, user.ID)
	if err != nil {
		s.logger.Error("fetch businesses failed", "error", err, "user_id", user.ID)
		s.failFetch(globalDataErrorPrefix + err.Error())
		s.metrics.observe(opGlobalData, "error", start)
		return
	}
	if businesses == nil {
		businesses = []domain.Business{}
	}

	s.set(func(st *State) {
		active := pickActiveBusiness(businesses, initialBusinessID, st.CurrentBusiness)
		if !sameBusiness(active, st.CurrentBusiness) {
			// Scoped data belongs to the previous business.
			st.Stores = []domain.Store{}
			st.Categories = []domain.Category{}
		}
		st.Businesses = businesses
		st.CurrentBusiness = active
		st.DynamicNav = nav.Tree(nil, nil)
		st.IsLoading = false
		st.Status = StatusReady
	})
	s.metrics.observe(opGlobalData, "ok", start)
}

// pickActiveBusiness prefers the hint, then the current business if it is
// still owned, then the first business.
func pickActiveBusiness(businesses []domain.Business, hint string, current *domain.Business) *domain.Business {
	if hint != "" {
		if b, ok := domain.FindBusinessByID(businesses, hint); ok {
			return &b
		}
	}
	if current != nil {
		if b, ok := domain.FindBusinessByID(businesses, current.ID); ok {
			return &b
		}
	}
	if len(businesses) > 0 {
		b := businesses[0]
		return &b
	}
	return nil
}

func sameBusiness(a, b *domain.Business) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}

// SetCurrentBusiness switches the active business. Stores and categories
// are left as they are until the caller runs the scoped fetches.
func (s *Store) SetCurrentBusiness(b domain.Business) {
	s.set(func(st *State) {
		st.CurrentBusiness = &b
	})
}

// FetchGlobalStoreCategories loads the categories of businessID and
// rebuilds the navigation with the stores already held.
func (s *Store) FetchGlobalStoreCategories(ctx context.Context, businessID string) {
	start := time.Now()
	s.beginFetch()

	categories, err := s.gw.ListCategories(ctx, businessID)
	if err != nil {
		s.logger.Error("fetch categories failed", "error", err, "business_id", businessID)
		s.failFetch(categoriesErrorPrefix + err.Error())
		s.metrics.observe(opCategories, "error", start)
		return
	}
	if categories == nil {
		categories = []domain.Category{}
	}

	s.set(func(st *State) {
		st.Categories = categories
		st.DynamicNav = nav.Tree(st.Stores, categories)
		st.IsLoading = false
		st.Status = StatusReady
	})
	s.metrics.observe(opCategories, "ok", start)
}

// FetchGlobalStores loads the stores of businessID and rebuilds the
// navigation with the categories already held.
func (s *Store) FetchGlobalStores(ctx context.Context, businessID string) {
	start := time.Now()
	s.beginFetch()

	stores, err := s.gw.ListStores(ctx, businessID)
	if err != nil {
		s.logger.Error("fetch stores failed", "error", err, "business_id", businessID)
		s.failFetch(storesErrorPrefix + err.Error())
		s.metrics.observe(opStores, "error", start)
		return
	}
	if stores == nil {
		stores = []domain.Store{}
	}

	s.set(func(st *State) {
		st.Stores = stores
		st.DynamicNav = nav.Tree(stores, st.Categories)
		st.IsLoading = false
		st.Status = StatusReady
	})
	s.metrics.observe(opStores, "ok", start)
}

// RefetchData reloads the global data for the session user, keeping the
// active business when possible. It does nothing without a user.
func (s *Store) RefetchData(ctx context.Context) {
	st := s.State()
	if st.CurrentUser == nil || st.CurrentUser.ID == "" {
		return
	}
	businessID := ""
	if st.CurrentBusiness != nil {
		businessID = st.CurrentBusiness.ID
	}
	s.FetchGlobalData(ctx, st.CurrentUser.ID, businessID)
}

// MarkUnauthenticated settles the store with no user and no loading flag.
func (s *Store) MarkUnauthenticated() {
	s.set(func(st *State) {
		st.CurrentUser = nil
		st.IsLoading = false
	})
}
