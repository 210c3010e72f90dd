package tenant

import (
	"context"
	"sync"
)

// Bootstrapper runs the first global fetch of a store exactly once.
type Bootstrapper struct {
	store *Store

	mu             sync.Mutex
	hasInitialized bool
}

// NewBootstrapper creates a bootstrapper for store.
func NewBootstrapper(store *Store) *Bootstrapper {
	return &Bootstrapper{store: store}
}

// Init performs the initial fetch for ownerID and reports whether this call
// did it. Later calls wait for a running initial fetch and return false.
// Without an owner the store is settled as unauthenticated.
//
// The fetch is detached from ctx cancellation so an abandoned request does
// not leave the session stuck in an error state; ctx values are kept.
func (b *Bootstrapper) Init(ctx context.Context, ownerID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.hasInitialized {
		return false
	}
	b.hasInitialized = true

	if ownerID == "" {
		b.store.MarkUnauthenticated()
		return true
	}

	// A hydrated snapshot carries the last viewed business.
	hint := ""
	if cb := b.store.State().CurrentBusiness; cb != nil {
		hint = cb.ID
	}

	b.store.FetchGlobalData(context.WithoutCancel(ctx), ownerID, hint)
	return true
}

// Initialized reports whether Init has run.
func (b *Bootstrapper) Initialized() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hasInitialized
}
