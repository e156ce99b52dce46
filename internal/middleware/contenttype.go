package middleware

import (
	"net/http"
	"strings"
)

// ContentType validates Content-Type on requests that carry bodies. Only
// application/json (with or without a charset parameter) is accepted.
func ContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			contentType := r.Header.Get("Content-Type")

			if contentType == "" {
				respondError(w, http.StatusBadRequest, "Content-Type header is required")
				return
			}

			if !strings.HasPrefix(strings.ToLower(contentType), "application/json") {
				respondError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}
