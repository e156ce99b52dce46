package charts

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/ygarasab/acaimar-api/internal/models"
)

// ErrNotEnoughPoints reports a series too short to chart. The x-axis needs a
// non-degenerate range, so a single reading cannot be plotted.
var ErrNotEnoughPoints = errors.New("not enough data points to chart")

// Brand palette shared with the web frontend
var palette = []drawing.Color{
	drawing.ColorFromHex("667eea"),
	drawing.ColorFromHex("764ba2"),
	drawing.ColorFromHex("f093fb"),
	drawing.ColorFromHex("4facfe"),
}

// MetricLabels maps sensor metrics to their display labels
var MetricLabels = map[string]string{
	"temperature":     "Temperatura (°C)",
	"humidity":        "Umidade (%)",
	"soil_moisture":   "Umidade do Solo (%)",
	"light_intensity": "Intensidade de Luz (lux)",
}

// StatusPie renders a pie chart of meta counts by status as a
// data:image/png;base64 URI. Slices are ordered by status name so renders
// are deterministic.
func StatusPie(counts map[string]int) (string, error) {
	statuses := make([]string, 0, len(counts))
	for s := range counts {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)

	values := make([]chart.Value, 0, len(statuses))
	for i, s := range statuses {
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%d)", s, counts[s]),
			Value: float64(counts[s]),
			Style: chart.Style{FillColor: palette[i%len(palette)]},
		})
	}

	pie := chart.PieChart{
		Title:  "Distribuição de Metas por Status",
		Width:  600,
		Height: 600,
		Values: values,
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return "", fmt.Errorf("failed to render status chart: %w", err)
	}

	return dataURI(buf.Bytes()), nil
}

// MetricSeries renders the time series of one metric as a data URI
func MetricSeries(metric string, times []time.Time, values []float64) (string, error) {
	if len(times) < 2 {
		return "", ErrNotEnoughPoints
	}

	label := MetricLabels[metric]
	if label == "" {
		label = metric
	}

	graph := chart.Chart{
		Title:  label,
		Width:  800,
		Height: 300,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("02/01 15:04"),
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    label,
				XValues: times,
				YValues: values,
				Style: chart.Style{
					StrokeColor: colorFor(metric),
					StrokeWidth: 2.0,
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return "", fmt.Errorf("failed to render %s chart: %w", metric, err)
	}

	return dataURI(buf.Bytes()), nil
}

// SeriesForMetric extracts the time series of one metric from readings,
// skipping readings without the metric or with unparseable timestamps.
func SeriesForMetric(readings []*models.SensorReading, metric string) ([]time.Time, []float64) {
	times := make([]time.Time, 0, len(readings))
	values := make([]float64, 0, len(readings))

	for _, reading := range readings {
		v, ok := reading.Metric(metric)
		if !ok {
			continue
		}
		t, ok := ParseTimestamp(reading.Timestamp)
		if !ok {
			continue
		}
		times = append(times, t)
		values = append(values, v)
	}

	return times, values
}

// ParseTimestamp accepts the timestamp formats devices write: ISO-8601 with
// or without sub-second precision or a zone designator.
func ParseTimestamp(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Stats holds the summary statistics reported alongside sensor charts
type Stats struct {
	Mean float64 `json:"mean"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Std  float64 `json:"std"`
}

// Summarize computes mean, min, max and sample standard deviation. A single
// value has zero deviation.
func Summarize(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}

	min, max := values[0], values[0]
	var sum float64
	for _, v := range values {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	mean := sum / float64(len(values))

	var std float64
	if len(values) > 1 {
		var sq float64
		for _, v := range values {
			sq += (v - mean) * (v - mean)
		}
		std = math.Sqrt(sq / float64(len(values)-1))
	}

	return Stats{Mean: mean, Min: min, Max: max, Std: std}
}

func colorFor(metric string) drawing.Color {
	for i, m := range models.SensorMetrics {
		if m == metric {
			return palette[i%len(palette)]
		}
	}
	return palette[0]
}

func dataURI(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
