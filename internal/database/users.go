package database

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/ygarasab/acaimar-api/internal/models"
)

const usersCollection = "users"

// UserRepository provides access to the users collection
type UserRepository struct {
	col *mongo.Collection
}

// NewUserRepository creates the repository and ensures the unique index on
// email that backs registration conflict detection.
func NewUserRepository(ctx context.Context, db *DB) (*UserRepository, error) {
	col := db.Database().Collection(usersCollection)

	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create users email index: %w", err)
	}

	return &UserRepository{col: col}, nil
}

// FindByEmail returns the user stored under email. Callers normalize the
// email first.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// ExistsByEmail reports whether a user document exists for email
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	return count > 0, nil
}

// Create inserts the user and returns it with the assigned ID. A unique
// index violation on email maps to ErrDuplicateEmail.
func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	result, err := r.col.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	id, ok := result.InsertedID.(bson.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected inserted ID type %T", result.InsertedID)
	}
	user.ID = id

	return user, nil
}

// UpdateRole sets role on the user with email. Returns whether a record was
// modified; writing the role a user already has reports false, as does an
// unknown email.
func (r *UserRepository) UpdateRole(ctx context.Context, email, role string) (bool, error) {
	result, err := r.col.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": bson.M{"role": role}})
	if err != nil {
		return false, fmt.Errorf("failed to update role: %w", err)
	}
	return result.ModifiedCount > 0, nil
}

// List returns all users ordered by creation time. password_hash is
// projected out at the store level so it cannot leak through this path.
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetProjection(bson.M{"password_hash": 0})

	cursor, err := r.col.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	users := make([]*models.User, 0)
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
		users = append(users, &user)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}
