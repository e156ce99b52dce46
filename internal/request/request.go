package request

import (
	"context"
	"net/http"
	"strings"

	"github.com/ygarasab/acaimar-api/internal/models"
)

type contextKey string

const (
	claimsContextKey    contextKey = "claims"
	requestIDContextKey contextKey = "request_id"
)

// ClientIP extracts the client IP from the request, respecting X-Forwarded-For and X-Real-IP.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return r.RemoteAddr
}

// WithClaims returns a context with the token claims attached.
func WithClaims(ctx context.Context, claims *models.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext returns the claims from the request context, or nil if missing or wrong type.
func ClaimsFromContext(r *http.Request) *models.Claims {
	c, _ := r.Context().Value(claimsContextKey).(*models.Claims)
	return c
}

// WithRequestID returns a context carrying the request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}

// RequestIDFromContext returns the request ID, or "" when none was assigned.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}
