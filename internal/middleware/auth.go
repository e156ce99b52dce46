package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	logpkg "github.com/ygarasab/acaimar-api/internal/logger"
	"github.com/ygarasab/acaimar-api/internal/request"
	"github.com/ygarasab/acaimar-api/internal/services/auth"
)

// Auth creates middleware admitting any request carrying a valid token
func Auth(tokens *auth.TokenCodec, logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireRole(tokens, "", logger)
}

// RequireRole creates the authorization gate. Checks run in order and
// short-circuit: token presence, token validity, then the caller's role when
// one is required. On success the claims are attached to the request
// context. A panic inside the gate's own checks surfaces as 401, never 500;
// panics from the wrapped handler propagate to the outer recovery layer.
func RequireRole(tokens *auth.TokenCodec, role string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authorized := false
			defer func() {
				if err := recover(); err != nil {
					if authorized {
						panic(err)
					}
					logger.Error("auth_gate_panic",
						zap.Any("error", err),
						zap.String("path", logpkg.SanitizePath(r.URL.Path)),
					)
					respondError(w, http.StatusUnauthorized, "Authentication error")
				}
			}()

			tokenString := auth.TokenFromRequest(r)
			if tokenString == "" {
				respondError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			claims, err := tokens.Decode(tokenString)
			if err != nil {
				// The cause stays in the log; clients get one message for
				// malformed, tampered and expired alike.
				logger.Debug("token_rejected",
					zap.String("reason", logpkg.SanitizeError(err)),
					zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				)
				respondError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			if role != "" && claims.Role != role {
				respondError(w, http.StatusForbidden,
					fmt.Sprintf("insufficient permissions, requires role %s, current role is %s", role, claims.Role))
				return
			}

			authorized = true
			ctx := request.WithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// Headers are already written; an encode failure here has no recovery.
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
