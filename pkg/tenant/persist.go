package tenant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/stokwise/stokwise/pkg/domain"
	"github.com/stokwise/stokwise/pkg/snapshot"
)

// SnapshotKey is the persister key holding the snapshot of a user's store.
func SnapshotKey(userID string) string {
	return "BusinessStore:" + userID
}

// Snapshot is the persisted subset of State. Loading flags and errors are
// never persisted.
type Snapshot struct {
	CurrentUser     *domain.User      `json:"currentUser"`
	Businesses      []domain.Business `json:"businesses"`
	CurrentBusiness *domain.Business  `json:"currentBusiness"`
	Stores          []domain.Store    `json:"stores"`
	Categories      []domain.Category `json:"categories"`
	DynamicNav      []domain.NavItem  `json:"dynamicNav"`
}

// snapshotEnvelope is the stored layout: {"state": {...}, "version": n}.
type snapshotEnvelope struct {
	State   Snapshot `json:"state"`
	Version int      `json:"version"`
}

const snapshotVersion = 0

// SnapshotOf extracts the persisted fields of s.
func SnapshotOf(s State) Snapshot {
	return Snapshot{
		CurrentUser:     s.CurrentUser,
		Businesses:      s.Businesses,
		CurrentBusiness: s.CurrentBusiness,
		Stores:          s.Stores,
		Categories:      s.Categories,
		DynamicNav:      s.DynamicNav,
	}
}

// EncodeSnapshot serializes the persisted fields of s.
func EncodeSnapshot(s State) ([]byte, error) {
	return json.Marshal(snapshotEnvelope{State: SnapshotOf(s), Version: snapshotVersion})
}

// DecodeSnapshot parses a stored snapshot.
func DecodeSnapshot(payload []byte) (Snapshot, error) {
	var env snapshotEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return Snapshot{}, err
	}
	return env.State, nil
}

// apply copies snapshot fields over st. Missing collections stay empty.
func (snap Snapshot) apply(st *State) {
	st.CurrentUser = snap.CurrentUser
	st.CurrentBusiness = snap.CurrentBusiness
	if snap.Businesses != nil {
		st.Businesses = snap.Businesses
	}
	if snap.Stores != nil {
		st.Stores = snap.Stores
	}
	if snap.Categories != nil {
		st.Categories = snap.Categories
	}
	if snap.DynamicNav != nil {
		st.DynamicNav = snap.DynamicNav
	}
}

const (
	hydrateTimeout   = 3 * time.Second
	saveTimeout      = 5 * time.Second
	writeQueueLength = 8
)

// persistence hydrates a store once and then writes snapshots from a single
// goroutine, so saves keep change order and never block an action. When
// the queue is full the oldest pending snapshot is dropped.
type persistence struct {
	persister snapshot.Persister
	key       string

	store  *Store
	unsub  func()
	queue  chan []byte
	quit   chan struct{}
	done   chan struct{}
	last   []byte
	once   sync.Once
	lastMu sync.Mutex
}

func (p *persistence) start(s *Store) {
	p.store = s
	p.queue = make(chan []byte, writeQueueLength)
	p.quit = make(chan struct{})
	p.done = make(chan struct{})

	p.hydrate()

	go p.run()
	p.unsub = s.Subscribe(p.enqueue)
}

func (p *persistence) hydrate() {
	ctx, cancel := context.WithTimeout(context.Background(), hydrateTimeout)
	defer cancel()

	payload, err := p.persister.Load(ctx, p.key)
	if err != nil {
		if !errors.Is(err, snapshot.ErrNotFound) {
			p.store.logger.Warn("load snapshot failed", "error", err, "key", p.key)
		}
		return
	}

	snap, err := DecodeSnapshot(payload)
	if err != nil {
		p.store.logger.Warn("decode snapshot failed", "error", err, "key", p.key)
		return
	}

	// IsLoading stays true: the snapshot is only an optimistic render.
	p.store.set(snap.apply)
	p.last = payload
}

func (p *persistence) enqueue(st State) {
	payload, err := EncodeSnapshot(st)
	if err != nil {
		p.store.logger.Error("encode snapshot failed", "error", err, "key", p.key)
		return
	}

	p.lastMu.Lock()
	unchanged := bytes.Equal(payload, p.last)
	if !unchanged {
		p.last = payload
	}
	p.lastMu.Unlock()
	if unchanged {
		return
	}

	for {
		select {
		case <-p.quit:
			return
		case p.queue <- payload:
			return
		default:
			select {
			case <-p.queue:
			default:
			}
		}
	}
}

func (p *persistence) run() {
	defer close(p.done)
	for {
		select {
		case payload := <-p.queue:
			p.save(payload)
		case <-p.quit:
			for {
				select {
				case payload := <-p.queue:
					p.save(payload)
				default:
					return
				}
			}
		}
	}
}

func (p *persistence) save(payload []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := p.persister.Save(ctx, p.key, payload); err != nil {
		p.store.logger.Error("save snapshot failed", "error", err, "key", p.key)
	}
}

// stop unsubscribes and waits for pending saves.
func (p *persistence) stop() {
	p.once.Do(func() {
		p.unsub()
		close(p.quit)
		<-p.done
	})
}
