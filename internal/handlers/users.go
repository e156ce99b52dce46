package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/ygarasab/acaimar-api/internal/database"
	"github.com/ygarasab/acaimar-api/internal/services/auth"
	"github.com/ygarasab/acaimar-api/internal/validation"
)

// UserAdminHandler exposes the admin-only user management endpoints
type UserAdminHandler struct {
	users   database.UserRepositoryInterface
	service *auth.Service
	logger  *zap.Logger
}

// NewUserAdminHandler creates a new user admin handler
func NewUserAdminHandler(users database.UserRepositoryInterface, service *auth.Service, log *zap.Logger) *UserAdminHandler {
	return &UserAdminHandler{users: users, service: service, logger: log}
}

// RegisterRoutes registers the user admin routes. The router should already
// carry the /users prefix and the admin gate.
func (h *UserAdminHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListUsers).Methods("GET")
	r.HandleFunc("", h.CreateUser).Methods("POST")
}

// ListUsers returns every user without password hashes
func (h *UserAdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		respondInternalError(w, h.logger, "list_users_error", err)
		return
	}

	respondJSON(w, http.StatusOK, users)
}

// CreateUser provisions a new account on behalf of an admin. Unlike
// registration it returns no token, only the created user.
func (h *UserAdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, validation.Message(err))
		return
	}

	user, err := h.service.Register(r.Context(), auth.RegisterParams{
		Email:    req.Email,
		Password: req.Password,
		Name:     validation.SanitizeText(req.Name),
		Role:     req.Role,
	})
	if err != nil {
		if errors.Is(err, auth.ErrUserAlreadyExists) {
			respondError(w, http.StatusConflict, "User with this email already exists")
			return
		}
		respondInternalError(w, h.logger, "create_user_error", err)
		return
	}

	h.logger.Info("user_created_by_admin",
		zap.String("user_id", user.ID.Hex()),
		zap.String("role", user.Role),
	)
	respondJSON(w, http.StatusCreated, user)
}
