package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ygarasab/acaimar-api/internal/config"
	"github.com/ygarasab/acaimar-api/internal/database"
	"github.com/ygarasab/acaimar-api/internal/models"
	"github.com/ygarasab/acaimar-api/internal/services/auth"
	"github.com/ygarasab/acaimar-api/internal/validation"
)

// NewUsersCmd creates the users command group
func NewUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
		Long:  "Create accounts, change roles and list the registered users",
	}

	cmd.AddCommand(newUsersCreateCmd())
	cmd.AddCommand(newUsersSetRoleCmd())
	cmd.AddCommand(newUsersListCmd())

	return cmd
}

type createUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Role     string `json:"role" validate:"omitempty,max=64"`
}

func newUsersCreateCmd() *cobra.Command {
	var email, password, name, role string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		Long:  "Create a user account with a bcrypt-hashed password. Role defaults to 'user'",
		RunE: func(cmd *cobra.Command, args []string) error {
			input := createUserInput{Email: email, Password: password, Name: name, Role: role}
			if err := validation.Validate.Struct(input); err != nil {
				return fmt.Errorf("%s", validation.Message(err))
			}

			db, userRepo, err := connect()
			if err != nil {
				return err
			}
			defer closeDB(db)

			service := auth.NewService(userRepo, auth.NewBcryptHasher(), zap.NewNop())

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			user, err := service.Register(ctx, auth.RegisterParams{
				Email:    input.Email,
				Password: input.Password,
				Name:     validation.SanitizeText(input.Name),
				Role:     input.Role,
			})
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}

			fmt.Printf("Created user %s (%s) with role %s\n", user.Email, user.ID.Hex(), user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "Password, at least 8 characters (required)")
	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&role, "role", models.RoleUser, "Role, either 'user' or 'admin'")

	return cmd
}

func newUsersSetRoleCmd() *cobra.Command {
	var email, role string

	cmd := &cobra.Command{
		Use:   "set-role",
		Short: "Change a user's role",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || role == "" {
				return fmt.Errorf("required flags: --email, --role")
			}

			db, userRepo, err := connect()
			if err != nil {
				return err
			}
			defer closeDB(db)

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			modified, err := userRepo.UpdateRole(ctx, auth.NormalizeEmail(email), role)
			if err != nil {
				return fmt.Errorf("failed to update role: %w", err)
			}
			if !modified {
				return fmt.Errorf("no user modified: %s not found or already has role %s", email, role)
			}

			fmt.Printf("Updated role of %s to %s\n", email, role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address of the account (required)")
	cmd.Flags().StringVar(&role, "role", "", "New role (required)")

	return cmd
}

func newUsersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered users",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, userRepo, err := connect()
			if err != nil {
				return err
			}
			defer closeDB(db)

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			users, err := userRepo.List(ctx)
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}

			if len(users) == 0 {
				fmt.Println("No users registered")
				return nil
			}

			for _, user := range users {
				active := "active"
				if !user.Active {
					active = "inactive"
				}
				fmt.Printf("  - %s (%s)\n", user.Email, user.ID.Hex())
				fmt.Printf("    Name: %s\n", user.Name)
				fmt.Printf("    Role: %s, %s\n", user.Role, active)
				fmt.Printf("    Created: %s\n", user.CreatedAt.Format(time.RFC3339))
				fmt.Println()
			}

			return nil
		},
	}
}

func connect() (*database.DB, *database.UserRepository, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	userRepo, err := database.NewUserRepository(ctx, db)
	if err != nil {
		closeDB(db)
		return nil, nil, fmt.Errorf("failed to initialize user repository: %w", err)
	}

	return db, userRepo, nil
}

func closeDB(db *database.DB) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.Close(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
	}
}
