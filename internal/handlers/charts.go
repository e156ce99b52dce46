package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/ygarasab/acaimar-api/internal/database"
	"github.com/ygarasab/acaimar-api/internal/logger"
	"github.com/ygarasab/acaimar-api/internal/models"
	"github.com/ygarasab/acaimar-api/internal/services/charts"
)

var availableCharts = []string{"metas-status", "sensor-data"}

const (
	defaultChartDays = 7
	maxChartDays     = 90
)

// ChartHandler renders server-side chart images for the dashboard
type ChartHandler struct {
	metaRepo   database.MetaRepositoryInterface
	sensorRepo database.SensorRepositoryInterface
	cache      *charts.Cache
	logger     *zap.Logger
}

// NewChartHandler creates a new chart handler
func NewChartHandler(metaRepo database.MetaRepositoryInterface, sensorRepo database.SensorRepositoryInterface, cache *charts.Cache, log *zap.Logger) *ChartHandler {
	return &ChartHandler{metaRepo: metaRepo, sensorRepo: sensorRepo, cache: cache, logger: log}
}

// RegisterRoutes registers the visualization routes. The router should
// already carry the /visualization prefix.
func (h *ChartHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/{chartType}", h.GetChart).Methods("GET")
}

// GetChart dispatches on the chart type path segment
func (h *ChartHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	chartType := mux.Vars(r)["chartType"]

	switch chartType {
	case "metas-status":
		h.metasStatusChart(w, r)
	case "sensor-data":
		h.sensorDataChart(w, r)
	default:
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":            "Invalid chart type",
			"available_charts": availableCharts,
		})
	}
}

func (h *ChartHandler) metasStatusChart(w http.ResponseWriter, r *http.Request) {
	const cacheKey = "charts:metas-status"

	if cached := h.cache.Get(r.Context(), cacheKey); cached != nil {
		writeCached(w, cached)
		return
	}

	counts, err := h.metaRepo.CountByStatus(r.Context())
	if err != nil {
		respondInternalError(w, h.logger, "metas_status_chart_error", err)
		return
	}
	if len(counts) == 0 {
		respondError(w, http.StatusNotFound, "No data available for visualization")
		return
	}

	uri, err := charts.StatusPie(counts)
	if err != nil {
		respondInternalError(w, h.logger, "metas_status_render_error", err)
		return
	}

	h.respondCachingJSON(r.Context(), w, cacheKey, map[string]interface{}{
		"chart": uri,
		"data":  counts,
	})
}

func (h *ChartHandler) sensorDataChart(w http.ResponseWriter, r *http.Request) {
	days := defaultChartDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			days = parsed
		}
	}
	if days > maxChartDays {
		days = maxChartDays
	}

	cacheKey := fmt.Sprintf("charts:sensor-data:%dd", days)
	if cached := h.cache.Get(r.Context(), cacheKey); cached != nil {
		writeCached(w, cached)
		return
	}

	now := time.Now().UTC()
	readings, err := h.sensorRepo.ListRange(r.Context(), now.AddDate(0, 0, -days), now)
	if err != nil {
		respondInternalError(w, h.logger, "sensor_data_chart_error", err)
		return
	}
	if len(readings) == 0 {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"message": "No sensor data available",
			"sample_structure": map[string]interface{}{
				"timestamp":       "2025-01-01T12:00:00",
				"temperature":     25.4,
				"humidity":        60.2,
				"soil_moisture":   45.0,
				"light_intensity": 820.0,
			},
		})
		return
	}

	images := make(map[string]string)
	statistics := make(map[string]charts.Stats)
	for _, metric := range models.SensorMetrics {
		times, values := charts.SeriesForMetric(readings, metric)
		if len(values) == 0 {
			continue
		}
		statistics[metric] = charts.Summarize(values)

		uri, err := charts.MetricSeries(metric, times, values)
		if err != nil {
			if errors.Is(err, charts.ErrNotEnoughPoints) {
				continue
			}
			h.logger.Warn("sensor_metric_render_failed",
				zap.String("metric", metric),
				zap.String("error", logger.SanitizeError(err)),
			)
			continue
		}
		images[metric] = uri
	}

	h.respondCachingJSON(r.Context(), w, cacheKey, map[string]interface{}{
		"charts":      images,
		"statistics":  statistics,
		"data_points": len(readings),
	})
}

// respondCachingJSON writes the body and stores the serialized payload in
// the chart cache for subsequent requests.
func (h *ChartHandler) respondCachingJSON(ctx context.Context, w http.ResponseWriter, key string, body interface{}) {
	payload, err := json.Marshal(body)
	if err != nil {
		respondInternalError(w, h.logger, "chart_response_encode_error", err)
		return
	}

	h.cache.Set(ctx, key, payload)
	writeCached(w, payload)
}

func writeCached(w http.ResponseWriter, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}
