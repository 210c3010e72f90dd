package tenant

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stokwise/stokwise/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readyState(businesses []domain.Business, current *domain.Business) State {
	return State{
		CurrentUser:     &domain.User{ID: "u1"},
		Businesses:      businesses,
		CurrentBusiness: current,
		Status:          StatusReady,
	}
}

func TestReconcile(t *testing.T) {
	a, g := acme(), globex()

	tests := []struct {
		name  string
		slug  string
		state State
		want  Action
	}{
		{
			name:  "waits while loading",
			slug:  "globex",
			state: State{IsLoading: true, Businesses: []domain.Business{a, g}, CurrentBusiness: &a},
			want:  Action{Kind: ActionNoOp},
		},
		{
			name:  "consistent",
			slug:  "acme",
			state: readyState([]domain.Business{a, g}, &a),
			want:  Action{Kind: ActionNoOp},
		},
		{
			name:  "url names another owned business",
			slug:  "globex",
			state: readyState([]domain.Business{a, g}, &a),
			want:  Action{Kind: ActionSetActive, Business: &g},
		},
		{
			name:  "fresh load with matching slug",
			slug:  "acme",
			state: readyState([]domain.Business{a}, nil),
			want:  Action{Kind: ActionSetActive, Business: &a},
		},
		{
			name:  "stale slug redirects to active dashboard",
			slug:  "initech",
			state: readyState([]domain.Business{a, g}, &g),
			want:  Action{Kind: ActionRedirect, Path: "/globex/dashboard"},
		},
		{
			name:  "no business at all",
			slug:  "initech",
			state: readyState([]domain.Business{}, nil),
			want:  Action{Kind: ActionRedirect, Path: "/business"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reconcile(tt.slug, tt.state))
		})
	}
}

// For any business list and slug: a matching business is activated without
// redirect; otherwise an active business is kept and its dashboard is the
// redirect target, never the selection page.
func TestReconcile_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	slugs := []string{"acme", "globex", "initech", "umbrella", "hooli"}

	for i := 0; i < 500; i++ {
		var businesses []domain.Business
		for j, s := range slugs {
			if rng.Intn(2) == 0 {
				businesses = append(businesses, domain.Business{ID: fmt.Sprintf("b%d", j), Slug: s})
			}
		}
		var current *domain.Business
		if len(businesses) > 0 && rng.Intn(3) > 0 {
			c := businesses[rng.Intn(len(businesses))]
			current = &c
		}
		slug := slugs[rng.Intn(len(slugs))]

		got := Reconcile(slug, readyState(businesses, current))
		match, found := domain.FindBusinessBySlug(businesses, slug)

		switch {
		case current != nil && current.Slug == slug:
			require.Equal(t, ActionNoOp, got.Kind)
		case found:
			require.Equal(t, ActionSetActive, got.Kind)
			require.Equal(t, match, *got.Business)
			require.Empty(t, got.Path)
		case current != nil:
			require.Equal(t, ActionRedirect, got.Kind)
			require.Equal(t, DashboardPath(current.Slug), got.Path)
			require.NotEqual(t, SelectionPath, got.Path)
		default:
			require.Equal(t, Action{Kind: ActionRedirect, Path: SelectionPath}, got)
		}
	}
}

func TestApply(t *testing.T) {
	gw := newFakeGateway()
	gw.setBusinesses(acme())
	s := newTestStore(gw)
	s.FetchGlobalData(context.Background(), "u1", "")
	s.SetCurrentBusiness(globex())

	assert.False(t, Apply(s, Action{Kind: ActionNoOp}))
	assert.False(t, Apply(s, Action{Kind: ActionRedirect, Path: "/acme/dashboard"}))
	assert.Equal(t, "b2", s.State().CurrentBusiness.ID)

	a := acme()
	assert.True(t, Apply(s, Action{Kind: ActionSetActive, Business: &a}))
	assert.Equal(t, "b1", s.State().CurrentBusiness.ID)
}

func TestActionKind_MarshalText(t *testing.T) {
	for kind, want := range map[ActionKind]string{
		ActionNoOp:      "noop",
		ActionSetActive: "set_active",
		ActionRedirect:  "redirect",
	} {
		got, err := kind.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, want, string(got))
	}
}
