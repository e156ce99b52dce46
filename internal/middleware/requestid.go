package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ygarasab/acaimar-api/internal/request"
)

// RequestIDHeader carries the request correlation ID
const RequestIDHeader = "X-Request-ID"

// RequestID assigns each request a correlation ID, keeping one supplied by
// the client, and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, id)
		ctx := request.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
