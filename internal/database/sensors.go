package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/ygarasab/acaimar-api/internal/models"
)

const sensorCollection = "sensor_data"

// Device timestamps are naive ISO-8601 strings at second precision or finer.
// Range boundaries use this layout so lexicographic comparison in the filter
// matches time order.
const isoTimestampLayout = "2006-01-02T15:04:05"

// SensorRepository provides read access to the sensor_data collection, which
// is written by external devices.
type SensorRepository struct {
	col *mongo.Collection
}

// NewSensorRepository creates the repository
func NewSensorRepository(db *DB) *SensorRepository {
	return &SensorRepository{col: db.Database().Collection(sensorCollection)}
}

// ListRange returns readings with timestamps inside [from, to], oldest first
func (r *SensorRepository) ListRange(ctx context.Context, from, to time.Time) ([]*models.SensorReading, error) {
	filter := bson.M{"timestamp": bson.M{
		"$gte": from.UTC().Format(isoTimestampLayout),
		"$lte": to.UTC().Format(isoTimestampLayout),
	}}
	findOptions := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})

	cursor, err := r.col.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to query sensor data: %w", err)
	}
	defer cursor.Close(ctx)

	readings := make([]*models.SensorReading, 0)
	for cursor.Next(ctx) {
		var reading models.SensorReading
		if err := cursor.Decode(&reading); err != nil {
			return nil, fmt.Errorf("failed to decode sensor reading: %w", err)
		}
		readings = append(readings, &reading)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sensor readings: %w", err)
	}

	return readings, nil
}
