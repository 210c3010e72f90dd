package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stokwise/stokwise/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestREST(t *testing.T, h http.HandlerFunc) *REST {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewREST(RESTConfig{BaseURL: srv.URL, APIKey: "anon-key"})
}

func authedContext() context.Context {
	return WithAccessToken(context.Background(), "user-token")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestREST_CurrentUser(t *testing.T) {
	g := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{
			"id":            "u1",
			"email":         "sari@example.com",
			"user_metadata": map[string]any{"avatar_url": "https://img/x.png"},
		})
	})

	user, err := g.CurrentUser(authedContext())
	require.NoError(t, err)
	assert.Equal(t, &domain.User{ID: "u1", Name: "sari", Email: "sari@example.com", AvatarURL: "https://img/x.png"}, user)
}

func TestREST_CurrentUser_NoSession(t *testing.T) {
	g := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid JWT"})
	})

	_, err := g.CurrentUser(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = g.CurrentUser(authedContext())
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestREST_ListBusinesses(t *testing.T) {
	g := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/businesses", r.URL.Path)
		assert.Equal(t, "eq.owner-1", r.URL.Query().Get("owner_id"))
		assert.Equal(t, "created_at.asc", r.URL.Query().Get("order"))
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": "b1", "owner_id": "owner-1", "name": "Acme", "slug": "acme", "created_at": "2024-05-01T10:00:00.123456+00:00"},
		})
	})

	got, err := g.ListBusinesses(authedContext(), "owner-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "acme", got[0].Slug)
	assert.Equal(t, 2024, got[0].CreatedAt.Year())
}

func TestREST_CreateBusiness(t *testing.T) {
	g := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"owner_id": "owner-1", "name": "Acme", "slug": "acme"}, body)

		writeJSON(w, http.StatusCreated, []map[string]any{
			{"id": "b1", "owner_id": "owner-1", "name": "Acme", "slug": "acme", "created_at": "2024-05-01T10:00:00Z"},
		})
	})

	b, err := g.CreateBusiness(authedContext(), "owner-1", "Acme", "acme")
	require.NoError(t, err)
	assert.Equal(t, "b1", b.ID)
}

func TestREST_CreateBusiness_SlugTaken(t *testing.T) {
	g := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{
			"code":    "23505",
			"message": `duplicate key value violates unique constraint "businesses_slug_key"`,
		})
	})

	_, err := g.CreateBusiness(authedContext(), "owner-1", "Acme", "acme")
	assert.ErrorIs(t, err, domain.ErrSlugTaken)
}

func TestREST_CreateBusiness_MissingOwner(t *testing.T) {
	g := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{
			"code":    "23503",
			"message": `insert or update on table "businesses" violates foreign key constraint`,
		})
	})

	_, err := g.CreateBusiness(authedContext(), "owner-1", "Acme", "acme")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSlugTaken)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "23503", apiErr.Code)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
}

func TestREST_DeleteCategory(t *testing.T) {
	t.Run("in use", func(t *testing.T) {
		g := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusConflict, map[string]string{"code": "23503", "message": "violates foreign key"})
		})
		assert.ErrorIs(t, g.DeleteCategory(authedContext(), "c1"), domain.ErrCategoryInUse)
	})

	t.Run("other constraint", func(t *testing.T) {
		g := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusConflict, map[string]string{"code": "23505", "message": "duplicate key"})
		})
		err := g.DeleteCategory(authedContext(), "c1")
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrCategoryInUse)
	})

	t.Run("not found", func(t *testing.T) {
		g := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "eq.c1", r.URL.Query().Get("id"))
			writeJSON(w, http.StatusOK, []any{})
		})
		assert.ErrorIs(t, g.DeleteCategory(authedContext(), "c1"), domain.ErrCategoryNotFound)
	})
}

func TestREST_ListStores_ServerError(t *testing.T) {
	g := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "boom"})
	})

	_, err := g.ListStores(authedContext(), "b1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "boom", apiErr.Message)
}

func TestUserIDFrom(t *testing.T) {
	_, ok := UserIDFrom(context.Background())
	assert.False(t, ok)

	_, ok = UserIDFrom(WithUserID(context.Background(), ""))
	assert.False(t, ok)

	id, ok := UserIDFrom(WithUserID(context.Background(), "u1"))
	assert.True(t, ok)
	assert.Equal(t, "u1", id)
}
