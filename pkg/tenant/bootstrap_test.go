package tenant

import (
	"context"
	"sync"
	"testing"

	"github.com/stokwise/stokwise/pkg/domain"
	"github.com/stokwise/stokwise/pkg/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootstrapper_InitRunsOnce(t *testing.T) {
	gw := newFakeGateway()
	gw.setBusinesses(acme())
	b := NewBootstrapper(newTestStore(gw))

	assert.False(t, b.Initialized())
	assert.True(t, b.Init(context.Background(), "u1"))
	assert.False(t, b.Init(context.Background(), "u1"))
	assert.False(t, b.Init(context.Background(), "u1"))

	assert.True(t, b.Initialized())
	assert.Equal(t, 1, gw.count("CurrentUser"))
}

func TestBootstrapper_ConcurrentInit(t *testing.T) {
	gw := newFakeGateway()
	s := newTestStore(gw)
	b := NewBootstrapper(s)

	var wg sync.WaitGroup
	results := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- b.Init(context.Background(), "u1")
		}()
	}
	wg.Wait()
	close(results)

	performed := 0
	for r := range results {
		if r {
			performed++
		}
	}
	assert.Equal(t, 1, performed)
	assert.Equal(t, 1, gw.count("CurrentUser"))
	assert.False(t, s.State().IsLoading, "waiters see the finished fetch")
}

func TestBootstrapper_NoOwner(t *testing.T) {
	gw := newFakeGateway()
	s := newTestStore(gw)
	b := NewBootstrapper(s)

	assert.True(t, b.Init(context.Background(), ""))
	assert.False(t, s.State().IsLoading)
	assert.Nil(t, s.State().CurrentUser)
	assert.Equal(t, 0, gw.count("CurrentUser"))

	assert.False(t, b.Init(context.Background(), "u1"))
	assert.Equal(t, 0, gw.count("CurrentUser"))
}

func TestBootstrapper_PersistedBusinessHint(t *testing.T) {
	mem := snapshot.NewMemory()
	last := globex()
	payload, err := EncodeSnapshot(State{CurrentBusiness: &last})
	require.NoError(t, err)
	require.NoError(t, mem.Save(context.Background(), SnapshotKey("u1"), payload))

	gw := newFakeGateway()
	gw.setBusinesses(acme(), globex())
	s := newTestStore(gw, WithPersistence(mem, SnapshotKey("u1")))
	defer s.Close()

	NewBootstrapper(s).Init(context.Background(), "u1")
	cb := s.State().CurrentBusiness
	require.NotNil(t, cb)
	assert.Equal(t, "b2", cb.ID, "last viewed business is preserved")
}

func TestBootstrapper_CancelledRequestStillFetches(t *testing.T) {
	gw := newFakeGateway()
	gw.setBusinesses(acme())
	s := newTestStore(gw)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	NewBootstrapper(s).Init(ctx, "u1")

	assert.Equal(t, StatusReady, s.State().Status)
	assert.Equal(t, []domain.Business{acme()}, s.State().Businesses)
}
