package tenant

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stokwise/stokwise/pkg/domain"
	"github.com/stokwise/stokwise/pkg/nav"
	"github.com/stokwise/stokwise/pkg/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingPersister wraps a Memory persister and counts saves.
type countingPersister struct {
	*snapshot.Memory
	mu    sync.Mutex
	saves int
}

func (c *countingPersister) Save(ctx context.Context, key string, payload []byte) error {
	c.mu.Lock()
	c.saves++
	c.mu.Unlock()
	return c.Memory.Save(ctx, key, payload)
}

func (c *countingPersister) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saves
}

func TestEncodeSnapshot_DropsTransientFields(t *testing.T) {
	user := &domain.User{ID: "u1", Name: "sari"}
	b := acme()
	st := State{
		CurrentUser:     user,
		Businesses:      []domain.Business{b},
		CurrentBusiness: &b,
		Stores:          []domain.Store{},
		Categories:      []domain.Category{},
		DynamicNav:      nav.Tree(nil, nil),
		IsLoading:       true,
		Error:           "Failed to load categories data: boom",
		Status:          StatusError,
	}

	payload, err := EncodeSnapshot(st)
	require.NoError(t, err)

	var envelope map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(payload, &envelope))
	assert.JSONEq(t, "0", string(envelope["version"]))
	assert.NotContains(t, envelope, "isLoading")
	assert.NotContains(t, envelope, "error")

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(envelope["state"], &fields))
	assert.Len(t, fields, 6)
	assert.Contains(t, fields, "currentUser")
	assert.Contains(t, fields, "businesses")
	assert.Contains(t, fields, "currentBusiness")
	assert.Contains(t, fields, "stores")
	assert.Contains(t, fields, "categories")
	assert.Contains(t, fields, "dynamicNav")
	assert.NotContains(t, fields, "isLoading")
	assert.NotContains(t, fields, "error")
	assert.NotContains(t, fields, "status")

	snap, err := DecodeSnapshot(payload)
	require.NoError(t, err)
	assert.Equal(t, SnapshotOf(st), snap)
}

func TestWithPersistence_HydratesOptimistically(t *testing.T) {
	mem := snapshot.NewMemory()
	b := globex()
	payload, err := EncodeSnapshot(State{
		CurrentUser:     &domain.User{ID: "u1"},
		Businesses:      []domain.Business{acme(), b},
		CurrentBusiness: &b,
		DynamicNav:      nav.Tree(nil, nil),
	})
	require.NoError(t, err)
	require.NoError(t, mem.Save(context.Background(), SnapshotKey("u1"), payload))

	s := newTestStore(newFakeGateway(), WithPersistence(mem, SnapshotKey("u1")))
	defer s.Close()
	st := s.State()

	assert.True(t, st.IsLoading, "hydrated state is still loading")
	require.NotNil(t, st.CurrentBusiness)
	assert.Equal(t, "b2", st.CurrentBusiness.ID)
	assert.Len(t, st.Businesses, 2)
	assert.NotNil(t, st.Stores)
	assert.Len(t, st.DynamicNav, 3)
}

func TestWithPersistence_IgnoresCorruptSnapshot(t *testing.T) {
	mem := snapshot.NewMemory()
	require.NoError(t, mem.Save(context.Background(), "k", []byte("{not json")))

	s := newTestStore(newFakeGateway(), WithPersistence(mem, "k"))
	defer s.Close()

	assert.Nil(t, s.State().CurrentUser)
	assert.Equal(t, nav.Static(), s.State().DynamicNav)
}

func TestWithPersistence_WritesOnChange(t *testing.T) {
	p := &countingPersister{Memory: snapshot.NewMemory()}
	gw := newFakeGateway()
	gw.setBusinesses(acme())

	s := newTestStore(gw, WithPersistence(p, SnapshotKey("u1")))
	s.FetchGlobalData(context.Background(), "u1", "")

	// Same persisted fields as the last change, so nothing new is written.
	s.SetCurrentBusiness(acme())
	s.Close()

	payload, err := p.Load(context.Background(), SnapshotKey("u1"))
	require.NoError(t, err)
	snap, err := DecodeSnapshot(payload)
	require.NoError(t, err)
	require.NotNil(t, snap.CurrentBusiness)
	assert.Equal(t, "b1", snap.CurrentBusiness.ID)
	assert.Equal(t, "u1", snap.CurrentUser.ID)
	// Three distinct snapshots: fetch start, user resolved, businesses loaded.
	assert.Positive(t, p.count())
	assert.LessOrEqual(t, p.count(), 3)
}

func TestStore_CloseIsIdempotent(t *testing.T) {
	s := newTestStore(newFakeGateway(), WithPersistence(snapshot.NewMemory(), "k"))
	s.Close()
	s.Close()

	// Changes after Close are not persisted and do not block.
	s.SetCurrentBusiness(acme())
}
