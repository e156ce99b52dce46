package charts

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/ygarasab/acaimar-api/internal/models"
)

const dataURIPrefix = "data:image/png;base64,"

func floatPtr(v float64) *float64 {
	return &v
}

func closeTo(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []float64
		want   Stats
	}{
		{
			name:   "Three evenly spaced values",
			values: []float64{24.5, 26.5, 28.5},
			want:   Stats{Mean: 26.5, Min: 24.5, Max: 28.5, Std: 2.0},
		},
		{
			name:   "Unordered values",
			values: []float64{2, 9, 4, 4, 5, 5, 7, 4},
			want:   Stats{Mean: 5, Min: 2, Max: 9, Std: math.Sqrt(32.0 / 7.0)},
		},
		{
			name:   "Single value has zero deviation",
			values: []float64{10},
			want:   Stats{Mean: 10, Min: 10, Max: 10, Std: 0},
		},
		{
			name:   "Empty input",
			values: nil,
			want:   Stats{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Summarize(tt.values)

			if !closeTo(got.Mean, tt.want.Mean) {
				t.Errorf("Expected mean %v, got %v", tt.want.Mean, got.Mean)
			}
			if !closeTo(got.Min, tt.want.Min) {
				t.Errorf("Expected min %v, got %v", tt.want.Min, got.Min)
			}
			if !closeTo(got.Max, tt.want.Max) {
				t.Errorf("Expected max %v, got %v", tt.want.Max, got.Max)
			}
			if !closeTo(got.Std, tt.want.Std) {
				t.Errorf("Expected std %v, got %v", tt.want.Std, got.Std)
			}
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		wantOK bool
		want   time.Time
	}{
		{
			name:   "RFC3339 with zone",
			input:  "2025-01-15T12:30:00Z",
			wantOK: true,
			want:   time.Date(2025, 1, 15, 12, 30, 0, 0, time.UTC),
		},
		{
			name:   "Naive with fractional seconds",
			input:  "2025-01-15T12:30:00.5",
			wantOK: true,
			want:   time.Date(2025, 1, 15, 12, 30, 0, 500000000, time.UTC),
		},
		{
			name:   "Naive without fraction",
			input:  "2025-01-15T12:30:00",
			wantOK: true,
			want:   time.Date(2025, 1, 15, 12, 30, 0, 0, time.UTC),
		},
		{
			name:   "Unsupported format",
			input:  "15/01/2025 12:30",
			wantOK: false,
		},
		{
			name:   "Empty string",
			input:  "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := ParseTimestamp(tt.input)

			if ok != tt.wantOK {
				t.Fatalf("Expected ok=%v, got %v", tt.wantOK, ok)
			}
			if tt.wantOK && !got.Equal(tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestSeriesForMetric(t *testing.T) {
	t.Parallel()

	readings := []*models.SensorReading{
		{Timestamp: "2025-01-15T08:00:00", Temperature: floatPtr(24.5)},
		{Timestamp: "2025-01-15T09:00:00", Humidity: floatPtr(60.0)},
		{Timestamp: "not-a-timestamp", Temperature: floatPtr(99.0)},
		{Timestamp: "2025-01-15T10:00:00", Temperature: floatPtr(26.5)},
	}

	times, values := SeriesForMetric(readings, "temperature")

	if len(times) != 2 || len(values) != 2 {
		t.Fatalf("Expected 2 points, got %d times and %d values", len(times), len(values))
	}
	if values[0] != 24.5 || values[1] != 26.5 {
		t.Errorf("Expected values [24.5 26.5], got %v", values)
	}
	if !times[0].Before(times[1]) {
		t.Errorf("Expected points in reading order, got %v", times)
	}
}

func TestSeriesForMetricNoMatches(t *testing.T) {
	t.Parallel()

	readings := []*models.SensorReading{
		{Timestamp: "2025-01-15T08:00:00", Humidity: floatPtr(60.0)},
	}

	times, values := SeriesForMetric(readings, "temperature")

	if len(times) != 0 || len(values) != 0 {
		t.Errorf("Expected empty series, got %d times and %d values", len(times), len(values))
	}
}

func TestStatusPie(t *testing.T) {
	t.Parallel()

	counts := map[string]int{
		"pendente":     3,
		"em andamento": 2,
		"concluida":    1,
	}

	uri, err := StatusPie(counts)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.HasPrefix(uri, dataURIPrefix) {
		t.Errorf("Expected data URI prefix, got %q", uri[:min(len(uri), 40)])
	}
	if len(uri) <= len(dataURIPrefix) {
		t.Error("Expected non-empty PNG payload")
	}

	// Slices are sorted by status, so repeated renders are identical.
	again, err := StatusPie(counts)
	if err != nil {
		t.Fatalf("Expected no error on second render, got %v", err)
	}
	if uri != again {
		t.Error("Expected deterministic render for the same counts")
	}
}

func TestMetricSeries(t *testing.T) {
	t.Parallel()

	times := []time.Time{
		time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC),
	}
	values := []float64{24.5, 26.5}

	uri, err := MetricSeries("temperature", times, values)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.HasPrefix(uri, dataURIPrefix) {
		t.Errorf("Expected data URI prefix, got %q", uri[:min(len(uri), 40)])
	}
}

func TestMetricSeriesUnknownMetric(t *testing.T) {
	t.Parallel()

	times := []time.Time{
		time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC),
	}

	// Metrics without a display label fall back to the raw metric name.
	uri, err := MetricSeries("voltage", times, []float64{3.2, 3.3})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.HasPrefix(uri, dataURIPrefix) {
		t.Errorf("Expected data URI prefix, got %q", uri[:min(len(uri), 40)])
	}
}

func TestMetricSeriesNotEnoughPoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		times  []time.Time
		values []float64
	}{
		{
			name:   "Empty series",
			times:  nil,
			values: nil,
		},
		{
			name:   "Single point",
			times:  []time.Time{time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)},
			values: []float64{24.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := MetricSeries("temperature", tt.times, tt.values)
			if !errors.Is(err, ErrNotEnoughPoints) {
				t.Errorf("Expected ErrNotEnoughPoints, got %v", err)
			}
		})
	}
}
