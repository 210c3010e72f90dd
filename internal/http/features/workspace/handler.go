// Package workspace exposes the tenant context of the signed-in user: the
// state view, refresh, active business switching and URL reconciliation.
package workspace

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/stokwise/stokwise/internal/http/features/common"
	"github.com/stokwise/stokwise/internal/httputil"
	"github.com/stokwise/stokwise/pkg/domain"
	"github.com/stokwise/stokwise/pkg/tenant"
)

// Handler handles /v1/context endpoints.
type Handler struct {
	logger   *slog.Logger
	registry *tenant.Registry
}

// NewHandler creates a new workspace handler.
func NewHandler(logger *slog.Logger, registry *tenant.Registry) *Handler {
	return &Handler{logger: logger, registry: registry}
}

// ContextResponse is the state view rendered by the dashboard shell.
// Loading is true while the shell should show its placeholder.
type ContextResponse struct {
	tenant.State
	Loading bool `json:"loading"`
}

// SetBusinessRequest selects the active business.
type SetBusinessRequest struct {
	BusinessID string `json:"business_id"`
}

// ReconcileResponse tells the client where the URL should point.
type ReconcileResponse struct {
	Action   tenant.ActionKind `json:"action"`
	Path     string            `json:"path,omitempty"`
	Business *domain.Business  `json:"business,omitempty"`
}

// Context returns the tenant context, bootstrapping it on first use.
// GET /v1/context
func (h *Handler) Context(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := common.Session(w, r, h.registry)
	if !ok {
		return
	}
	h.writeState(w, sess.Store.State())
}

// Refresh reloads the global data.
// POST /v1/context/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := common.Session(w, r, h.registry)
	if !ok {
		return
	}
	sess.Store.RefetchData(r.Context())
	h.writeState(w, sess.Store.State())
}

// SetBusiness switches the active business and loads its stores and
// categories.
// PUT /v1/context/business
func (h *Handler) SetBusiness(w http.ResponseWriter, r *http.Request) {
	var req SetBusinessRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.DecodeError(w, err)
		return
	}
	if strings.TrimSpace(req.BusinessID) == "" {
		httputil.Error(w, http.StatusBadRequest, "business_id is required")
		return
	}

	sess, _, ok := common.Session(w, r, h.registry)
	if !ok {
		return
	}
	st := sess.Store.State()
	if st.SessionError() {
		common.SessionExpired(w, st)
		return
	}
	b, ok := domain.FindBusinessByID(st.Businesses, req.BusinessID)
	if !ok {
		httputil.Error(w, http.StatusNotFound, "business not found")
		return
	}

	sess.Store.SetCurrentBusiness(b)
	h.loadScoped(r, sess.Store, b.ID)
	h.writeState(w, sess.Store.State())
}

// Reconcile brings the active business in line with the slug of the URL
// the client is on. A matching owned business becomes active; otherwise
// the client is told where to redirect.
// GET /v1/context/reconcile?slug=
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(r.URL.Query().Get("slug"))
	if slug == "" {
		httputil.Error(w, http.StatusBadRequest, "slug is required")
		return
	}

	sess, _, ok := common.Session(w, r, h.registry)
	if !ok {
		return
	}
	st := sess.Store.State()
	if st.SessionError() {
		common.SessionExpired(w, st)
		return
	}

	action := tenant.Reconcile(slug, st)
	if tenant.Apply(sess.Store, action) {
		h.loadScoped(r, sess.Store, action.Business.ID)
	}

	httputil.JSON(w, http.StatusOK, ReconcileResponse{
		Action:   action.Kind,
		Path:     action.Path,
		Business: action.Business,
	})
}

// loadScoped fetches categories before stores. Until both complete the
// navigation mixes the new business's categories with the stores still
// held for the previous one.
func (h *Handler) loadScoped(r *http.Request, store *tenant.Store, businessID string) {
	store.FetchGlobalStoreCategories(r.Context(), businessID)
	store.FetchGlobalStores(r.Context(), businessID)
}

func (h *Handler) writeState(w http.ResponseWriter, st tenant.State) {
	if st.SessionError() {
		common.SessionExpired(w, st)
		return
	}
	httputil.JSON(w, http.StatusOK, ContextResponse{
		State:   st,
		Loading: st.ShowPlaceholder(),
	})
}
