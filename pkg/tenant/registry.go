package tenant

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/stokwise/stokwise/pkg/gateway"
	"github.com/stokwise/stokwise/pkg/snapshot"
)

// Session is the tenant context of one signed-in user.
type Session struct {
	Store        *Store
	Bootstrapper *Bootstrapper

	// token is the access token the session was bootstrapped with.
	token    string
	lastSeen time.Time
}

// Registry keeps one Session per user. Sessions end on logout, on a new
// sign-in after a session error, or when idle for too long.
type Registry struct {
	gw        gateway.Gateway
	persister snapshot.Persister
	logger    *slog.Logger
	metrics   *Metrics
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates a registry. persister may be nil to disable snapshots.
func NewRegistry(gw gateway.Gateway, persister snapshot.Persister, logger *slog.Logger, metrics *Metrics) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		gw:        gw,
		persister: persister,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
		sessions:  make(map[string]*Session),
	}
}

// Get returns the session of userID, creating, hydrating and bootstrapping
// it on first use. ctx must carry the user for the gateway.
//
// A session that ended in a session error is replaced when ctx carries a
// different access token than the one it was bootstrapped with, so signing
// in again starts over like a fresh mount.
func (r *Registry) Get(ctx context.Context, userID string) *Session {
	token, _ := gateway.AccessTokenFrom(ctx)

	r.mu.Lock()
	sess, ok := r.sessions[userID]
	if ok && reauthenticated(sess, token) {
		delete(r.sessions, userID)
		r.mu.Unlock()
		r.logger.Info("restarting tenant session after re-authentication", "user_id", userID)
		sess.Store.Close()
		r.mu.Lock()
		sess, ok = r.sessions[userID]
	}
	if !ok {
		store := NewStore(r.gw,
			WithLogger(r.logger.With("user_id", userID)),
			WithMetrics(r.metrics),
			WithPersistence(r.persister, SnapshotKey(userID)),
		)
		sess = &Session{Store: store, Bootstrapper: NewBootstrapper(store), token: token}
		r.sessions[userID] = sess
	}
	sess.lastSeen = r.now()
	r.mu.Unlock()

	sess.Bootstrapper.Init(ctx, userID)
	return sess
}

func reauthenticated(sess *Session, token string) bool {
	return token != "" && token != sess.token && sess.Store.State().SessionError()
}

// Reset forgets the in-memory session of userID and keeps its snapshot.
// The next Get hydrates and bootstraps a new one.
func (r *Registry) Reset(userID string) {
	if sess := r.remove(userID); sess != nil {
		sess.Store.Close()
	}
}

// Drop forgets the session of userID and deletes its snapshot.
func (r *Registry) Drop(ctx context.Context, userID string) error {
	if sess := r.remove(userID); sess != nil {
		sess.Store.Close()
	}
	if r.persister == nil {
		return nil
	}
	return r.persister.Delete(ctx, SnapshotKey(userID))
}

func (r *Registry) remove(userID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess := r.sessions[userID]
	delete(r.sessions, userID)
	return sess
}

// EvictIdle forgets sessions not used for longer than maxIdle, keeping
// their snapshots, and returns how many were evicted.
func (r *Registry) EvictIdle(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	var idle []*Session
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			idle = append(idle, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range idle {
		s.Store.Close()
	}
	return len(idle)
}

// RunEviction calls EvictIdle every interval until ctx is done.
func (r *Registry) RunEviction(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.EvictIdle(maxIdle); n > 0 {
				r.logger.Debug("evicted idle tenant sessions", "count", n)
			}
		}
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close flushes the snapshots of every live session.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	for _, s := range sessions {
		s.Store.Close()
	}
}
