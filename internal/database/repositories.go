package database

import (
	"context"
	"time"

	"github.com/ygarasab/acaimar-api/internal/models"
)

// UserRepositoryInterface defines the interface for user repository operations
// This interface enables better testability by allowing mock implementations
type UserRepositoryInterface interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	UpdateRole(ctx context.Context, email, role string) (bool, error)
	List(ctx context.Context) ([]*models.User, error)
}

// MetaRepositoryInterface defines the interface for meta repository operations
type MetaRepositoryInterface interface {
	List(ctx context.Context) ([]*models.Meta, error)
	GetByID(ctx context.Context, id string) (*models.Meta, error)
	Create(ctx context.Context, meta *models.Meta) (*models.Meta, error)
	Update(ctx context.Context, id string, params UpdateMetaParams) (*models.Meta, error)
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// SensorRepositoryInterface defines the interface for sensor data queries
type SensorRepositoryInterface interface {
	ListRange(ctx context.Context, from, to time.Time) ([]*models.SensorReading, error)
}

// DBInterface defines the database handle surface used by health checks
type DBInterface interface {
	Ping(ctx context.Context) error
	Stats(ctx context.Context) (*Stats, error)
	Name() string
}

// Ensure concrete types implement the interfaces
var (
	_ UserRepositoryInterface   = (*UserRepository)(nil)
	_ MetaRepositoryInterface   = (*MetaRepository)(nil)
	_ SensorRepositoryInterface = (*SensorRepository)(nil)
	_ DBInterface               = (*DB)(nil)
)
