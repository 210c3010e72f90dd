package stores

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/stokwise/stokwise/internal/http/features/common"
	"github.com/stokwise/stokwise/internal/httputil"
	"github.com/stokwise/stokwise/pkg/gateway"
	"github.com/stokwise/stokwise/pkg/tenant"
)

// Handler handles stores (branches) of the active business.
type Handler struct {
	logger   *slog.Logger
	gw       gateway.Gateway
	registry *tenant.Registry
}

// NewHandler creates a new stores handler.
func NewHandler(logger *slog.Logger, gw gateway.Gateway, registry *tenant.Registry) *Handler {
	return &Handler{logger: logger, gw: gw, registry: registry}
}

// CreateRequest represents a new store.
type CreateRequest struct {
	Name     string  `json:"name"`
	Location *string `json:"location,omitempty"`
}

// List loads and returns the stores of the active business.
// GET /v1/businesses/{id}/stores
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := common.Session(w, r, h.registry)
	if !ok {
		return
	}
	b, ok := common.ActiveBusiness(w, r, sess.Store.State())
	if !ok {
		return
	}

	sess.Store.FetchGlobalStores(r.Context(), b.ID)
	st := sess.Store.State()
	if st.Error != "" {
		httputil.Error(w, http.StatusBadGateway, st.Error)
		return
	}
	httputil.JSON(w, http.StatusOK, st.Stores)
}

// Create adds a store to the active business.
// POST /v1/businesses/{id}/stores
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.DecodeError(w, err)
		return
	}

	sess, userID, ok := common.Session(w, r, h.registry)
	if !ok {
		return
	}
	b, ok := common.ActiveBusiness(w, r, sess.Store.State())
	if !ok {
		return
	}

	s, err := tenant.CreateStore(r.Context(), h.gw, sess.Store, b.ID, req.Name, req.Location)
	if err != nil {
		if errors.Is(err, tenant.ErrStoreNameRequired) || errors.Is(err, tenant.ErrStoreNameTooLong) {
			httputil.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("create store failed", "error", err, "user_id", userID, "business_id", b.ID)
		httputil.Error(w, http.StatusBadGateway, "failed to create store")
		return
	}

	httputil.JSON(w, http.StatusCreated, s)
}
