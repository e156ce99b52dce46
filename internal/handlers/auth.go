package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/ygarasab/acaimar-api/internal/logger"
	"github.com/ygarasab/acaimar-api/internal/services/auth"
	"github.com/ygarasab/acaimar-api/internal/validation"
)

// AuthHandler handles login, registration and token verification
type AuthHandler struct {
	service *auth.Service
	tokens  *auth.TokenCodec
	logger  *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service *auth.Service, tokens *auth.TokenCodec, log *zap.Logger) *AuthHandler {
	return &AuthHandler{service: service, tokens: tokens, logger: log}
}

// RegisterRoutes registers auth routes on the given router. None of them sit
// behind the gate: login and register issue tokens, and verify does its own
// token work so it can answer with its own messages.
func (h *AuthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/verify", h.Verify).Methods("GET")
}

// LoginRequest represents a login request. Login checks field presence only;
// the email format check happens at registration.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest represents a registration request. The password cap keeps
// input inside bcrypt's 72-byte limit.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Role     string `json:"role,omitempty" validate:"omitempty,max=64"`
}

// AuthResponse is the body returned by login and register
type AuthResponse struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Token string `json:"token"`
}

// VerifyResponse is the body returned by verify
type VerifyResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Valid  bool   `json:"valid"`
}

// Login authenticates credentials and returns the user with a fresh token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, validation.Message(err))
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger.Info("login_failed", zap.String("email", logger.SanitizeEmail(req.Email)))
			respondError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		respondInternalError(w, h.logger, "login_error", err)
		return
	}

	token, err := h.tokens.Issue(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		respondInternalError(w, h.logger, "token_issue_error", err)
		return
	}

	h.logger.Info("login_succeeded", zap.String("user_id", user.ID.Hex()))
	respondJSON(w, http.StatusOK, AuthResponse{
		ID:    user.ID.Hex(),
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
		Token: token,
	})
}

// Register creates an account and logs it in immediately
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
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
		respondInternalError(w, h.logger, "register_error", err)
		return
	}

	token, err := h.tokens.Issue(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		respondInternalError(w, h.logger, "token_issue_error", err)
		return
	}

	respondJSON(w, http.StatusCreated, AuthResponse{
		ID:    user.ID.Hex(),
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
		Token: token,
	})
}

// Verify reports whether the presented token is valid
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	tokenString := auth.TokenFromRequest(r)
	if tokenString == "" {
		respondError(w, http.StatusUnauthorized, "Token required")
		return
	}

	claims, err := h.tokens.Decode(tokenString)
	if err != nil {
		h.logger.Debug("verify_rejected", zap.String("reason", logger.SanitizeError(err)))
		respondError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	respondJSON(w, http.StatusOK, VerifyResponse{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
		Valid:  true,
	})
}
