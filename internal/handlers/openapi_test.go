package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const testSpec = `openapi: 3.0.3
info:
  title: Test API
  version: 0.0.1
paths: {}
`

func newOpenAPITestRouter(t *testing.T, baseDir string) *mux.Router {
	t.Helper()

	handler := NewOpenAPIHandler(baseDir, zap.NewNop())

	r := mux.NewRouter()
	handler.RegisterRoutes(r.PathPrefix("/api").Subrouter())
	return r
}

func TestServeYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "openapi.yaml"), []byte(testSpec), 0o600); err != nil {
		t.Fatalf("Failed to write test document: %v", err)
	}
	router := newOpenAPITestRouter(t, dir)

	req := httptest.NewRequest("GET", "/api/openapi.yaml", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/x-yaml" {
		t.Errorf("Expected Content-Type 'application/x-yaml', got %q", ct)
	}
	if !strings.Contains(w.Body.String(), "title: Test API") {
		t.Error("Expected the raw YAML document in the response")
	}
}

func TestServeJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "openapi.yaml"), []byte(testSpec), 0o600); err != nil {
		t.Fatalf("Failed to write test document: %v", err)
	}
	router := newOpenAPITestRouter(t, dir)

	for _, path := range []string{"/api/openapi.json", "/api/openapi"} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200 for %s, got %d", path, w.Code)
		}

		var doc map[string]interface{}
		if err := json.NewDecoder(w.Body).Decode(&doc); err != nil {
			t.Fatalf("Failed to decode %s response: %v", path, err)
		}
		info, ok := doc["info"].(map[string]interface{})
		if !ok {
			t.Fatalf("Expected info object in %s response", path)
		}
		if info["title"] != "Test API" {
			t.Errorf("Expected title 'Test API', got %v", info["title"])
		}
	}
}

func TestServeYAMLMissingDocument(t *testing.T) {
	t.Parallel()

	router := newOpenAPITestRouter(t, t.TempDir())

	req := httptest.NewRequest("GET", "/api/openapi.yaml", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", w.Code)
	}
	if got := decodeErrorBody(t, w); got != "OpenAPI document not found" {
		t.Errorf("Expected error 'OpenAPI document not found', got %q", got)
	}
}
