package models

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// SensorMetrics lists the metrics charted by the visualization endpoints, in
// display order.
var SensorMetrics = []string{"temperature", "humidity", "soil_moisture", "light_intensity"}

// SensorReading represents one measurement in the sensor_data collection.
// Readings are written by external devices with ISO-8601 string timestamps,
// so Timestamp stays a string and range queries compare lexicographically.
// Metric fields are pointers because devices report partial readings.
type SensorReading struct {
	ID             bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Timestamp      string        `bson:"timestamp" json:"timestamp"`
	Temperature    *float64      `bson:"temperature,omitempty" json:"temperature,omitempty"`
	Humidity       *float64      `bson:"humidity,omitempty" json:"humidity,omitempty"`
	SoilMoisture   *float64      `bson:"soil_moisture,omitempty" json:"soil_moisture,omitempty"`
	LightIntensity *float64      `bson:"light_intensity,omitempty" json:"light_intensity,omitempty"`
}

// Metric returns the named metric value, or false when this reading does not
// carry it.
func (r *SensorReading) Metric(name string) (float64, bool) {
	var v *float64
	switch name {
	case "temperature":
		v = r.Temperature
	case "humidity":
		v = r.Humidity
	case "soil_moisture":
		v = r.SoilMoisture
	case "light_intensity":
		v = r.LightIntensity
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}
