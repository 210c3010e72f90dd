package categories

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stokwise/stokwise/internal/http/features/common"
	"github.com/stokwise/stokwise/internal/httputil"
	"github.com/stokwise/stokwise/pkg/domain"
	"github.com/stokwise/stokwise/pkg/gateway"
	"github.com/stokwise/stokwise/pkg/tenant"
)

// Handler handles the category flow of the active business.
type Handler struct {
	logger   *slog.Logger
	gw       gateway.Gateway
	registry *tenant.Registry
}

// NewHandler creates a new categories handler.
func NewHandler(logger *slog.Logger, gw gateway.Gateway, registry *tenant.Registry) *Handler {
	return &Handler{logger: logger, gw: gw, registry: registry}
}

// CreateRequest represents a new category.
type CreateRequest struct {
	Name string `json:"name"`
}

// List loads and returns the categories of the active business.
// GET /v1/businesses/{id}/categories
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := common.Session(w, r, h.registry)
	if !ok {
		return
	}
	b, ok := common.ActiveBusiness(w, r, sess.Store.State())
	if !ok {
		return
	}

	sess.Store.FetchGlobalStoreCategories(r.Context(), b.ID)
	st := sess.Store.State()
	if st.Error != "" {
		httputil.Error(w, http.StatusBadGateway, st.Error)
		return
	}
	httputil.JSON(w, http.StatusOK, st.Categories)
}

// Create adds a category to the active business.
// POST /v1/businesses/{id}/categories
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

	c, err := tenant.AddCategory(r.Context(), h.gw, sess.Store, b.ID, req.Name)
	if err != nil {
		if errors.Is(err, tenant.ErrEmptyCategoryName) {
			httputil.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("create category failed", "error", err, "user_id", userID, "business_id", b.ID)
		httputil.Error(w, http.StatusBadGateway, "failed to create category")
		return
	}

	httputil.JSON(w, http.StatusCreated, c)
}

// Delete removes a category from the active business.
// DELETE /v1/businesses/{id}/categories/{categoryID}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	sess, userID, ok := common.Session(w, r, h.registry)
	if !ok {
		return
	}
	st := sess.Store.State()
	b, ok := common.ActiveBusiness(w, r, st)
	if !ok {
		return
	}

	categoryID := chi.URLParam(r, "categoryID")
	if !ownsCategory(st.Categories, b.ID, categoryID) {
		// Categories load lazily and may still be those of the previous
		// business; look again before refusing.
		sess.Store.FetchGlobalStoreCategories(r.Context(), b.ID)
		if !ownsCategory(sess.Store.State().Categories, b.ID, categoryID) {
			httputil.Error(w, http.StatusNotFound, "category not found")
			return
		}
	}

	err := tenant.DeleteCategory(r.Context(), h.gw, sess.Store, b.ID, categoryID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCategoryNotFound):
			httputil.Error(w, http.StatusNotFound, "category not found")
		case errors.Is(err, domain.ErrCategoryInUse):
			httputil.Error(w, http.StatusConflict, domain.ErrCategoryInUse.Error())
		default:
			h.logger.Error("delete category failed", "error", err, "user_id", userID, "category_id", categoryID)
			httputil.Error(w, http.StatusBadGateway, "failed to delete category")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func ownsCategory(categories []domain.Category, businessID, id string) bool {
	for _, c := range categories {
		if c.ID == id && c.BusinessID == businessID {
			return true
		}
	}
	return false
}
