package auth

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/ygarasab/acaimar-api/internal/database"
	"github.com/ygarasab/acaimar-api/internal/models"
)

// fakeUserRepo is an in-memory database.UserRepositoryInterface keyed by
// normalized email.
type fakeUserRepo struct {
	users map[string]*models.User

	// reportMissing makes ExistsByEmail deny knowledge of stored users,
	// simulating the pre-check race where Create still hits the unique
	// index.
	reportMissing bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, database.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	if f.reportMissing {
		return false, nil
	}
	_, ok := f.users[email]
	return ok, nil
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	if _, ok := f.users[user.Email]; ok {
		return nil, database.ErrDuplicateEmail
	}
	user.ID = bson.NewObjectID()
	f.users[user.Email] = user
	return user, nil
}

func (f *fakeUserRepo) UpdateRole(_ context.Context, email, role string) (bool, error) {
	user, ok := f.users[email]
	if !ok {
		return false, nil
	}
	if user.Role == role {
		return false, nil
	}
	user.Role = role
	return true, nil
}

func (f *fakeUserRepo) List(_ context.Context) ([]*models.User, error) {
	users := make([]*models.User, 0, len(f.users))
	for _, user := range f.users {
		users = append(users, user)
	}
	return users, nil
}

var _ database.UserRepositoryInterface = (*fakeUserRepo)(nil)

func seedUser(t *testing.T, repo *fakeUserRepo, email, password string, active bool) {
	t.Helper()

	hash, err := NewBcryptHasher().Hash(password)
	if err != nil {
		t.Fatalf("Failed to hash seed password: %v", err)
	}
	repo.users[email] = &models.User{
		ID:           bson.NewObjectID(),
		Email:        email,
		PasswordHash: hash,
		Name:         "Seed User",
		Role:         models.RoleUser,
		Active:       active,
	}
}

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		email string
		want  string
	}{
		{name: "already normalized", email: "user@example.com", want: "user@example.com"},
		{name: "uppercase", email: "User@Example.COM", want: "user@example.com"},
		{name: "surrounding whitespace", email: "  user@example.com \t", want: "user@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := NormalizeEmail(tt.email); got != tt.want {
				t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.email, got, tt.want)
			}
		})
	}
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	seedUser(t, repo, "active@example.com", "right password", true)
	seedUser(t, repo, "inactive@example.com", "right password", false)

	service := NewService(repo, NewBcryptHasher(), zap.NewNop())

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{
			name:     "valid credentials",
			email:    "active@example.com",
			password: "right password",
		},
		{
			name:     "email is normalized before lookup",
			email:    "  Active@Example.Com ",
			password: "right password",
		},
		{
			name:     "unknown email",
			email:    "nobody@example.com",
			password: "right password",
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "inactive account",
			email:    "inactive@example.com",
			password: "right password",
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "active@example.com",
			password: "wrong password",
			wantErr:  ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			user, err := service.Authenticate(context.Background(), tt.email, tt.password)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if user.Email != "active@example.com" {
				t.Errorf("Expected user 'active@example.com', got %q", user.Email)
			}
		})
	}
}

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("creates user with defaults", func(t *testing.T) {
		t.Parallel()

		repo := newFakeUserRepo()
		service := NewService(repo, NewBcryptHasher(), zap.NewNop())

		user, err := service.Register(context.Background(), RegisterParams{
			Email:    "  New@Example.Com ",
			Password: "long enough password",
			Name:     "New User",
		})
		if err != nil {
			t.Fatalf("Register() returned error: %v", err)
		}

		if user.Email != "new@example.com" {
			t.Errorf("Expected normalized email 'new@example.com', got %q", user.Email)
		}
		if user.Role != models.RoleUser {
			t.Errorf("Expected default role %q, got %q", models.RoleUser, user.Role)
		}
		if !user.Active {
			t.Error("Expected new user to be active")
		}
		if user.ID.IsZero() {
			t.Error("Expected new user to have an ID")
		}
		if user.PasswordHash == "" || user.PasswordHash == "long enough password" {
			t.Error("Expected password to be stored hashed")
		}
	})

	t.Run("keeps explicit role", func(t *testing.T) {
		t.Parallel()

		repo := newFakeUserRepo()
		service := NewService(repo, NewBcryptHasher(), zap.NewNop())

		user, err := service.Register(context.Background(), RegisterParams{
			Email:    "admin@example.com",
			Password: "long enough password",
			Name:     "Admin",
			Role:     models.RoleAdmin,
		})
		if err != nil {
			t.Fatalf("Register() returned error: %v", err)
		}
		if user.Role != models.RoleAdmin {
			t.Errorf("Expected role %q, got %q", models.RoleAdmin, user.Role)
		}
	})

	t.Run("rejects taken email on pre-check", func(t *testing.T) {
		t.Parallel()

		repo := newFakeUserRepo()
		seedUser(t, repo, "taken@example.com", "whatever password", true)
		service := NewService(repo, NewBcryptHasher(), zap.NewNop())

		_, err := service.Register(context.Background(), RegisterParams{
			Email:    "taken@example.com",
			Password: "long enough password",
			Name:     "Late Comer",
		})
		if !errors.Is(err, ErrUserAlreadyExists) {
			t.Errorf("Expected ErrUserAlreadyExists, got %v", err)
		}
	})

	t.Run("rejects taken email when pre-check races", func(t *testing.T) {
		t.Parallel()

		repo := newFakeUserRepo()
		seedUser(t, repo, "taken@example.com", "whatever password", true)
		repo.reportMissing = true
		service := NewService(repo, NewBcryptHasher(), zap.NewNop())

		_, err := service.Register(context.Background(), RegisterParams{
			Email:    "taken@example.com",
			Password: "long enough password",
			Name:     "Late Comer",
		})
		if !errors.Is(err, ErrUserAlreadyExists) {
			t.Errorf("Expected ErrUserAlreadyExists from duplicate index, got %v", err)
		}
	})
}

func TestUpdateRole(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	seedUser(t, repo, "user@example.com", "whatever password", true)
	service := NewService(repo, NewBcryptHasher(), zap.NewNop())

	modified, err := service.UpdateRole(context.Background(), " User@Example.Com ", models.RoleAdmin)
	if err != nil {
		t.Fatalf("UpdateRole() returned error: %v", err)
	}
	if !modified {
		t.Error("Expected UpdateRole to modify the seeded user")
	}
	if repo.users["user@example.com"].Role != models.RoleAdmin {
		t.Errorf("Expected stored role to be %q, got %q", models.RoleAdmin, repo.users["user@example.com"].Role)
	}

	modified, err = service.UpdateRole(context.Background(), "user@example.com", models.RoleAdmin)
	if err != nil {
		t.Fatalf("UpdateRole() returned error: %v", err)
	}
	if modified {
		t.Error("Expected UpdateRole to report no modification when the role is unchanged")
	}
	if repo.users["user@example.com"].Role != models.RoleAdmin {
		t.Errorf("Expected stored role to stay %q, got %q", models.RoleAdmin, repo.users["user@example.com"].Role)
	}

	modified, err = service.UpdateRole(context.Background(), "nobody@example.com", models.RoleAdmin)
	if err != nil {
		t.Fatalf("UpdateRole() returned error: %v", err)
	}
	if modified {
		t.Error("Expected UpdateRole to report no modification for unknown email")
	}
}
