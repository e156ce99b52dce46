package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
)

// CORS builds the CORS layer from the configured frontend origins.
// frontendURL is a comma-separated origin list. Empty or "*" allows any
// origin; credentials are only allowed with an explicit origin list, since
// the two are mutually exclusive in the CORS protocol.
func CORS(frontendURL string) func(http.Handler) http.Handler {
	origins := originsSlice(frontendURL)
	allowAll := len(origins) == 0 || (len(origins) == 1 && origins[0] == "*")

	opts := cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         86400,
	}
	if allowAll {
		opts.AllowedOrigins = []string{"*"}
	} else {
		opts.AllowedOrigins = origins
		opts.AllowCredentials = true
	}

	return cors.New(opts).Handler
}

func originsSlice(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
