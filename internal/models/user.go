package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Roles referenced by route guards. Roles are stored as free strings and the
// authorization gate compares them verbatim.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an account in the users collection. PasswordHash never
// leaves the API: it is excluded from JSON here and projected out of list
// queries at the store level.
type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email        string        `bson:"email" json:"email"`
	PasswordHash string        `bson:"password_hash" json:"-"`
	Name         string        `bson:"name" json:"name"`
	Role         string        `bson:"role" json:"role"`
	CreatedAt    time.Time     `bson:"created_at" json:"created_at"`
	Active       bool          `bson:"active" json:"active"`
}
