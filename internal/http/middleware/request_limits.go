package middleware

import (
	"net/http"

	"github.com/stokwise/stokwise/internal/httputil"
)

// RequestSizeLimit caps request bodies at maxBytes. Handlers see the
// overflow as httputil.ErrBodyTooLarge from DecodeJSON.
func RequestSizeLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				w.Header().Set("Connection", "close")
				httputil.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
