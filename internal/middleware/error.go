package middleware

import (
	"net/http"

	"go.uber.org/zap"

	logpkg "github.com/ygarasab/acaimar-api/internal/logger"
	"github.com/ygarasab/acaimar-api/internal/request"
)

// ErrorHandler creates panic-recovery middleware. A recovered panic becomes
// a generic 500; the detail only reaches the log.
func ErrorHandler(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic_recovered",
						zap.Any("error", err),
						zap.String("method", r.Method),
						zap.String("path", logpkg.SanitizePath(r.URL.Path)),
						zap.String("request_id", request.RequestIDFromContext(r.Context())),
					)
					respondError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
