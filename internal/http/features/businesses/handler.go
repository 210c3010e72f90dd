package businesses

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/stokwise/stokwise/internal/http/features/common"
	"github.com/stokwise/stokwise/internal/httputil"
	"github.com/stokwise/stokwise/pkg/domain"
	"github.com/stokwise/stokwise/pkg/gateway"
	"github.com/stokwise/stokwise/pkg/tenant"
)

// Handler handles business management endpoints.
type Handler struct {
	logger   *slog.Logger
	gw       gateway.Gateway
	registry *tenant.Registry
}

// NewHandler creates a new businesses handler.
func NewHandler(logger *slog.Logger, gw gateway.Gateway, registry *tenant.Registry) *Handler {
	return &Handler{logger: logger, gw: gw, registry: registry}
}

// CreateRequest represents a new business. A blank slug is derived from
// the name.
type CreateRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// List returns the businesses owned by the caller.
// GET /v1/businesses
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := common.Session(w, r, h.registry)
	if !ok {
		return
	}
	st := sess.Store.State()
	if st.SessionError() {
		common.SessionExpired(w, st)
		return
	}
	httputil.JSON(w, http.StatusOK, st.Businesses)
}

// Create creates a business owned by the caller.
// POST /v1/businesses
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.DecodeError(w, err)
		return
	}

	if strings.TrimSpace(req.Slug) == "" {
		req.Slug = tenant.SuggestSlug(req.Name)
	}

	sess, userID, ok := common.Session(w, r, h.registry)
	if !ok {
		return
	}

	b, err := tenant.CreateBusiness(r.Context(), h.gw, sess.Store, userID, req.Name, req.Slug)
	if err != nil {
		switch {
		case errors.Is(err, tenant.ErrBusinessNameRequired),
			errors.Is(err, tenant.ErrBusinessNameTooLong),
			errors.Is(err, domain.ErrInvalidSlug):
			httputil.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrSlugTaken):
			httputil.Error(w, http.StatusConflict, domain.ErrSlugTaken.Error())
		default:
			h.logger.Error("create business failed", "error", err, "user_id", userID)
			httputil.Error(w, http.StatusBadGateway, "failed to create business")
		}
		return
	}

	httputil.JSON(w, http.StatusCreated, b)
}

// Delete deletes a business owned by the caller.
// DELETE /v1/businesses/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	sess, userID, ok := common.Session(w, r, h.registry)
	if !ok {
		return
	}

	err := tenant.DeleteBusiness(r.Context(), h.gw, sess.Store, userID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrBusinessNotFound) {
			httputil.Error(w, http.StatusNotFound, "business not found")
			return
		}
		h.logger.Error("delete business failed", "error", err, "user_id", userID)
		httputil.Error(w, http.StatusBadGateway, "failed to delete business")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
