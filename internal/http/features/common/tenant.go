// Package common holds helpers shared by the tenant scoped handlers.
package common

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stokwise/stokwise/internal/http/middleware"
	"github.com/stokwise/stokwise/internal/httputil"
	"github.com/stokwise/stokwise/pkg/domain"
	"github.com/stokwise/stokwise/pkg/tenant"
)

// Session returns the tenant session of the authenticated caller,
// bootstrapping it on first use. It writes a 401 and returns false when
// the request carries no user.
func Session(w http.ResponseWriter, r *http.Request, registry *tenant.Registry) (*tenant.Session, string, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return nil, "", false
	}
	return registry.Get(r.Context(), userID), userID, true
}

// OwnedBusiness resolves the {id} URL parameter against the businesses
// held by the session. Businesses of other owners are reported as missing.
func OwnedBusiness(w http.ResponseWriter, r *http.Request, st tenant.State) (domain.Business, bool) {
	id := chi.URLParam(r, "id")
	b, ok := domain.FindBusinessByID(st.Businesses, id)
	if !ok {
		httputil.Error(w, http.StatusNotFound, "business not found")
		return domain.Business{}, false
	}
	return b, true
}

// ActiveBusiness is OwnedBusiness restricted to the active business.
func ActiveBusiness(w http.ResponseWriter, r *http.Request, st tenant.State) (domain.Business, bool) {
	b, ok := OwnedBusiness(w, r, st)
	if !ok {
		return domain.Business{}, false
	}
	if st.CurrentBusiness == nil || st.CurrentBusiness.ID != b.ID {
		httputil.Error(w, http.StatusConflict, "business is not active")
		return domain.Business{}, false
	}
	return b, true
}

// SessionExpired writes the 401 used when the gateway no longer knows the
// session user.
func SessionExpired(w http.ResponseWriter, st tenant.State) {
	msg := st.Error
	if msg == "" {
		msg = "unauthorized"
	}
	httputil.JSON(w, http.StatusUnauthorized, map[string]any{
		"error":   msg,
		"session": true,
	})
}
