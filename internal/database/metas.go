package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/ygarasab/acaimar-api/internal/models"
)

const metasCollection = "metas"

// UpdateMetaParams carries the optional fields for a partial meta update.
// Only non-nil fields are written.
type UpdateMetaParams struct {
	Titulo    *string
	Descricao *string
	Status    *string
}

// MetaRepository provides access to the metas collection
type MetaRepository struct {
	col *mongo.Collection
}

// NewMetaRepository creates the repository
func NewMetaRepository(db *DB) *MetaRepository {
	return &MetaRepository{col: db.Database().Collection(metasCollection)}
}

// List returns every meta
func (r *MetaRepository) List(ctx context.Context) ([]*models.Meta, error) {
	cursor, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list metas: %w", err)
	}
	defer cursor.Close(ctx)

	metas := make([]*models.Meta, 0)
	for cursor.Next(ctx) {
		var meta models.Meta
		if err := cursor.Decode(&meta); err != nil {
			return nil, fmt.Errorf("failed to decode meta: %w", err)
		}
		metas = append(metas, &meta)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate metas: %w", err)
	}

	return metas, nil
}

// GetByID returns the meta with the given hex id. A malformed id maps to
// ErrInvalidID, an unmatched one to ErrNotFound.
func (r *MetaRepository) GetByID(ctx context.Context, id string) (*models.Meta, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	var meta models.Meta
	err = r.col.FindOne(ctx, bson.M{"_id": objectID}).Decode(&meta)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find meta: %w", err)
	}

	return &meta, nil
}

// Create inserts the meta with creation timestamps and returns it with the
// assigned ID.
func (r *MetaRepository) Create(ctx context.Context, meta *models.Meta) (*models.Meta, error) {
	now := time.Now().UTC()
	meta.CreatedAt = now
	meta.UpdatedAt = now

	result, err := r.col.InsertOne(ctx, meta)
	if err != nil {
		return nil, fmt.Errorf("failed to insert meta: %w", err)
	}

	id, ok := result.InsertedID.(bson.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected inserted ID type %T", result.InsertedID)
	}
	meta.ID = id

	return meta, nil
}

// Update applies the non-nil fields and returns the updated document.
// Callers must pass at least one field.
func (r *MetaRepository) Update(ctx context.Context, id string, params UpdateMetaParams) (*models.Meta, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	updateMap := bson.M{}
	if params.Titulo != nil {
		updateMap["titulo"] = *params.Titulo
	}
	if params.Descricao != nil {
		updateMap["descricao"] = *params.Descricao
	}
	if params.Status != nil {
		updateMap["status"] = *params.Status
	}
	if len(updateMap) == 0 {
		return nil, fmt.Errorf("no meta fields to update")
	}
	updateMap["updated_at"] = time.Now().UTC()

	result := r.col.FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": updateMap},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		if errors.Is(result.Err(), mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update meta: %w", result.Err())
	}

	var meta models.Meta
	if err := result.Decode(&meta); err != nil {
		return nil, fmt.Errorf("failed to decode updated meta: %w", err)
	}

	return &meta, nil
}

// Delete removes the meta with the given hex id. ErrNotFound when nothing
// was deleted.
func (r *MetaRepository) Delete(ctx context.Context, id string) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	result, err := r.col.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete meta: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}

	return nil
}

// CountByStatus groups metas by status server-side. Documents without a
// status field are excluded, matching how the status chart treats them.
func (r *MetaRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "status", Value: bson.D{{Key: "$exists", Value: true}, {Key: "$ne", Value: nil}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate meta statuses: %w", err)
	}
	defer cursor.Close(ctx)

	counts := make(map[string]int)
	for cursor.Next(ctx) {
		var row struct {
			Status string `bson:"_id"`
			Count  int    `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode status count: %w", err)
		}
		counts[row.Status] = row.Count
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate status counts: %w", err)
	}

	return counts, nil
}
