package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// respondJSON sends data as the JSON body. Bodies are flat: handlers pass
// exactly what the client receives, with no success envelope.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondError sends {"error": message}
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondInternalError logs the cause and sends the generic 500 body.
// Driver and internal error text never reaches clients.
func respondInternalError(w http.ResponseWriter, logger *zap.Logger, event string, err error) {
	logger.Error(event, zap.Error(err))
	respondError(w, http.StatusInternalServerError, "Internal server error")
}
