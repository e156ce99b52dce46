package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ygarasab/acaimar-api/internal/logger"
)

// OpenAPIHandler serves the API contract in YAML and JSON form
type OpenAPIHandler struct {
	specPath string
	baseDir  string
	logger   *zap.Logger
}

// NewOpenAPIHandler creates a handler serving openapi.yaml from baseDir
func NewOpenAPIHandler(baseDir string, log *zap.Logger) *OpenAPIHandler {
	return &OpenAPIHandler{
		specPath: filepath.Join(baseDir, "openapi.yaml"),
		baseDir:  baseDir,
		logger:   log,
	}
}

// RegisterRoutes registers the documentation routes
func (h *OpenAPIHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/openapi.yaml", h.ServeYAML).Methods("GET")
	r.HandleFunc("/openapi.json", h.ServeJSON).Methods("GET")
	r.HandleFunc("/openapi", h.ServeJSON).Methods("GET")
}

// validatePath ensures the resolved document path stays inside the base
// directory.
func (h *OpenAPIHandler) validatePath() (string, error) {
	absBase, err := filepath.Abs(h.baseDir)
	if err != nil {
		return "", fmt.Errorf("resolving base directory: %w", err)
	}

	absPath, err := filepath.Abs(h.specPath)
	if err != nil {
		return "", fmt.Errorf("resolving document path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("document path escapes base directory")
	}

	return absPath, nil
}

func (h *OpenAPIHandler) readSpec() ([]byte, error) {
	path, err := h.validatePath()
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// ServeYAML returns the raw OpenAPI document
func (h *OpenAPIHandler) ServeYAML(w http.ResponseWriter, r *http.Request) {
	data, err := h.readSpec()
	if err != nil {
		h.logger.Error("openapi_read_failed", zap.String("error", logger.SanitizeError(err)))
		respondError(w, http.StatusNotFound, "OpenAPI document not found")
		return
	}

	w.Header().Set("Content-Type", "application/x-yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ServeJSON converts the YAML document to JSON on the fly
func (h *OpenAPIHandler) ServeJSON(w http.ResponseWriter, r *http.Request) {
	data, err := h.readSpec()
	if err != nil {
		h.logger.Error("openapi_read_failed", zap.String("error", logger.SanitizeError(err)))
		respondError(w, http.StatusNotFound, "OpenAPI document not found")
		return
	}

	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		respondInternalError(w, h.logger, "openapi_parse_failed", err)
		return
	}

	respondJSON(w, http.StatusOK, doc)
}
