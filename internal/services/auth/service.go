package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ygarasab/acaimar-api/internal/database"
	"github.com/ygarasab/acaimar-api/internal/logger"
	"github.com/ygarasab/acaimar-api/internal/models"
)

var (
	// ErrInvalidCredentials covers every expected authentication failure:
	// unknown email, inactive account, missing stored hash, wrong password.
	// Callers cannot tell these apart.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserAlreadyExists reports a registration against a taken email
	ErrUserAlreadyExists = errors.New("user with this email already exists")
)

// NormalizeEmail lowercases and trims an email address. Every store lookup
// and write goes through this.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterParams carries the input for Register, already validated by the
// caller.
type RegisterParams struct {
	Email    string
	Password string
	Name     string
	Role     string
}

// Service implements credential authentication over the user store
type Service struct {
	users  database.UserRepositoryInterface
	hasher Hasher
	logger *zap.Logger
}

// NewService creates the authentication service
func NewService(users database.UserRepositoryInterface, hasher Hasher, log *zap.Logger) *Service {
	return &Service{users: users, hasher: hasher, logger: log}
}

// Authenticate verifies email and password and returns the matching user.
// Unknown email, inactive account and failed verification all return
// ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.Active {
		s.logger.Debug("login_rejected_inactive", zap.String("email", logger.SanitizeEmail(email)))
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// Register creates a user with a hashed password. The email pre-check gives
// the common conflict a clean ErrUserAlreadyExists; the store's unique email
// index closes the remaining race window and its duplicate failure maps to
// the same sentinel.
func (s *Service) Register(ctx context.Context, p RegisterParams) (*models.User, error) {
	email := NormalizeEmail(p.Email)

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	hash, err := s.hasher.Hash(p.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := p.Role
	if role == "" {
		role = models.RoleUser
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(p.Name),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
		Active:       true,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user_registered",
		zap.String("user_id", created.ID.Hex()),
		zap.String("role", created.Role),
	)

	return created, nil
}

// UserExists reports whether a user is stored under the normalized email
func (s *Service) UserExists(ctx context.Context, email string) (bool, error) {
	return s.users.ExistsByEmail(ctx, NormalizeEmail(email))
}

// FindByEmail returns the user stored under the normalized email. Not-found
// surfaces as database.ErrNotFound, not as a credential failure.
func (s *Service) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.users.FindByEmail(ctx, NormalizeEmail(email))
}

// UpdateRole sets the role on the user with this email. Returns whether a
// record was modified.
func (s *Service) UpdateRole(ctx context.Context, email, role string) (bool, error) {
	return s.users.UpdateRole(ctx, NormalizeEmail(email), role)
}
