package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ygarasab/acaimar-api/internal/database"
	"github.com/ygarasab/acaimar-api/internal/logger"
	"github.com/ygarasab/acaimar-api/internal/services/charts"
)

const (
	// ServiceName identifies this service in health reports
	ServiceName = "AÇAIMAR API"
	// ServiceVersion is reported by the health endpoint
	ServiceVersion = "1.0.0"

	healthCheckTimeout = 5 * time.Second
)

// HealthChecker reports liveness and dependency health
type HealthChecker struct {
	db     database.DBInterface
	cache  *charts.Cache
	logger *zap.Logger
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(db database.DBInterface, cache *charts.Cache, log *zap.Logger) *HealthChecker {
	return &HealthChecker{db: db, cache: cache, logger: log}
}

// CheckResult describes one dependency check
type CheckResult struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	Provider    string `json:"provider,omitempty"`
	Database    string `json:"database,omitempty"`
	Collections int    `json:"collections,omitempty"`
	DataSize    int64  `json:"dataSize,omitempty"`
}

// HealthResponse is the full health report
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Checks    map[string]CheckResult `json:"checks"`
}

// Ok is a minimal liveness probe
func (h *HealthChecker) Ok(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HealthCheck reports the service status along with its dependencies.
// Database failure degrades the service; the chart cache is optional and
// never does.
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	checks := map[string]CheckResult{
		"api": {Status: "ok", Message: "API is running"},
	}

	status := "healthy"
	code := http.StatusOK

	dbCheck := h.checkDatabase(ctx)
	checks["database"] = dbCheck
	if dbCheck.Status != "ok" {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	checks["cache"] = h.checkCache(ctx)

	respondJSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   ServiceName,
		Version:   ServiceVersion,
		Checks:    checks,
	})
}

func (h *HealthChecker) checkDatabase(ctx context.Context) CheckResult {
	if err := h.db.Ping(ctx); err != nil {
		h.logger.Error("health_database_unreachable", zap.String("error", logger.SanitizeError(err)))
		return CheckResult{Status: "error", Message: "Database unreachable"}
	}

	stats, err := h.db.Stats(ctx)
	if err != nil {
		// dbStats can be denied on managed deployments. Reachability alone
		// decides the check; the stats fields are best effort.
		h.logger.Debug("health_database_stats_unavailable", zap.String("error", logger.SanitizeError(err)))
		return CheckResult{
			Status:   "ok",
			Message:  "Database connection healthy",
			Provider: "mongodb",
			Database: h.db.Name(),
		}
	}

	return CheckResult{
		Status:      "ok",
		Message:     "Database connection healthy",
		Provider:    "mongodb",
		Database:    h.db.Name(),
		Collections: stats.Collections,
		DataSize:    stats.DataSize,
	}
}

func (h *HealthChecker) checkCache(ctx context.Context) CheckResult {
	if !h.cache.Enabled() {
		return CheckResult{Status: "not configured", Message: "Chart cache disabled"}
	}

	if err := h.cache.Ping(ctx); err != nil {
		h.logger.Warn("health_cache_unreachable", zap.String("error", logger.SanitizeError(err)))
		return CheckResult{Status: "error", Message: "Chart cache unreachable"}
	}

	return CheckResult{Status: "ok", Message: "Chart cache connection healthy"}
}
