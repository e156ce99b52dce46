package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var (
	// ErrNotFound reports that no document matched the query
	ErrNotFound = errors.New("document not found")
	// ErrInvalidID reports a document id that is not a valid ObjectID hex string
	ErrInvalidID = errors.New("invalid document id")
	// ErrDuplicateEmail reports a unique-index violation on users.email
	ErrDuplicateEmail = errors.New("email already registered")
)

const connectTimeout = 5 * time.Second

// DB wraps the mongo client and the application database handle
type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials MongoDB with 5s server-selection and connect timeouts and
// verifies the connection with a ping before returning.
func Connect(ctx context.Context, uri, dbName string) (*DB, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(connectTimeout).
		SetConnectTimeout(connectTimeout)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return &DB{client: client, db: client.Database(dbName)}, nil
}

// Database returns the underlying database handle
func (d *DB) Database() *mongo.Database {
	return d.db
}

// Name returns the database name
func (d *DB) Name() string {
	return d.db.Name()
}

// Ping verifies the server is reachable
func (d *DB) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, nil)
}

// Stats holds the subset of dbStats surfaced by the health endpoint
type Stats struct {
	Collections int
	DataSize    int64
}

// Stats runs dbStats against the application database
func (d *DB) Stats(ctx context.Context) (*Stats, error) {
	var out struct {
		Collections int32   `bson:"collections"`
		DataSize    float64 `bson:"dataSize"`
	}
	if err := d.db.RunCommand(ctx, bson.D{{Key: "dbStats", Value: 1}}).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to run dbStats: %w", err)
	}
	return &Stats{Collections: int(out.Collections), DataSize: int64(out.DataSize)}, nil
}

// Close disconnects the client
func (d *DB) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}
