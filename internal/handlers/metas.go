package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/ygarasab/acaimar-api/internal/database"
	"github.com/ygarasab/acaimar-api/internal/models"
	"github.com/ygarasab/acaimar-api/internal/validation"
)

// MetaHandler handles meta CRUD requests
type MetaHandler struct {
	metaRepo database.MetaRepositoryInterface
	logger   *zap.Logger
}

// NewMetaHandler creates a new meta handler
func NewMetaHandler(metaRepo database.MetaRepositoryInterface, log *zap.Logger) *MetaHandler {
	return &MetaHandler{metaRepo: metaRepo, logger: log}
}

// RegisterReadRoutes registers the routes open to any authenticated caller.
// The router should already carry the /metas prefix and the auth gate.
func (h *MetaHandler) RegisterReadRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListMetas).Methods("GET")
	r.HandleFunc("/{id}", h.GetMeta).Methods("GET")
}

// RegisterAdminRoutes registers the mutating routes. The router should
// already carry the /metas prefix and the admin gate.
func (h *MetaHandler) RegisterAdminRoutes(r *mux.Router) {
	r.HandleFunc("", h.CreateMeta).Methods("POST")
	r.HandleFunc("/{id}", h.UpdateMeta).Methods("PUT")
	r.HandleFunc("/{id}", h.DeleteMeta).Methods("DELETE")
}

// CreateMetaRequest represents a create meta request
type CreateMetaRequest struct {
	Titulo    string `json:"titulo" validate:"required,min=1,max=500"`
	Descricao string `json:"descricao" validate:"required,min=1,max=5000"`
	Status    string `json:"status,omitempty" validate:"omitempty,max=100"`
}

// UpdateMetaRequest represents a partial meta update; only provided fields
// are written.
type UpdateMetaRequest struct {
	Titulo    *string `json:"titulo,omitempty" validate:"omitempty,min=1,max=500"`
	Descricao *string `json:"descricao,omitempty" validate:"omitempty,min=1,max=5000"`
	Status    *string `json:"status,omitempty" validate:"omitempty,max=100"`
}

// ListMetas returns every meta
func (h *MetaHandler) ListMetas(w http.ResponseWriter, r *http.Request) {
	metas, err := h.metaRepo.List(r.Context())
	if err != nil {
		respondInternalError(w, h.logger, "list_metas_error", err)
		return
	}

	respondJSON(w, http.StatusOK, metas)
}

// GetMeta returns one meta by id
func (h *MetaHandler) GetMeta(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	meta, err := h.metaRepo.GetByID(r.Context(), id)
	if err != nil {
		h.respondMetaError(w, err, "get_meta_error")
		return
	}

	respondJSON(w, http.StatusOK, meta)
}

// CreateMeta inserts a new meta. Status defaults to "pendente" when omitted.
func (h *MetaHandler) CreateMeta(w http.ResponseWriter, r *http.Request) {
	var req CreateMetaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, validation.Message(err))
		return
	}

	status := req.Status
	if status == "" {
		status = models.MetaStatusPendente
	}

	meta := &models.Meta{
		Titulo:    validation.SanitizeText(req.Titulo),
		Descricao: validation.SanitizeText(req.Descricao),
		Status:    status,
	}

	created, err := h.metaRepo.Create(r.Context(), meta)
	if err != nil {
		respondInternalError(w, h.logger, "create_meta_error", err)
		return
	}

	h.logger.Info("meta_created", zap.String("meta_id", created.ID.Hex()))
	respondJSON(w, http.StatusCreated, created)
}

// UpdateMeta applies a partial update and returns the updated document
func (h *MetaHandler) UpdateMeta(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req UpdateMetaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, validation.Message(err))
		return
	}
	if req.Titulo == nil && req.Descricao == nil && req.Status == nil {
		respondError(w, http.StatusBadRequest, "No fields to update")
		return
	}

	params := database.UpdateMetaParams{Status: req.Status}
	if req.Titulo != nil {
		titulo := validation.SanitizeText(*req.Titulo)
		params.Titulo = &titulo
	}
	if req.Descricao != nil {
		descricao := validation.SanitizeText(*req.Descricao)
		params.Descricao = &descricao
	}

	updated, err := h.metaRepo.Update(r.Context(), id, params)
	if err != nil {
		h.respondMetaError(w, err, "update_meta_error")
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// DeleteMeta removes a meta by id
func (h *MetaHandler) DeleteMeta(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.metaRepo.Delete(r.Context(), id); err != nil {
		h.respondMetaError(w, err, "delete_meta_error")
		return
	}

	h.logger.Info("meta_deleted", zap.String("meta_id", id))
	respondJSON(w, http.StatusOK, map[string]string{"message": "Meta deleted successfully"})
}

func (h *MetaHandler) respondMetaError(w http.ResponseWriter, err error, event string) {
	switch {
	case errors.Is(err, database.ErrInvalidID):
		respondError(w, http.StatusBadRequest, "Invalid meta ID")
	case errors.Is(err, database.ErrNotFound):
		respondError(w, http.StatusNotFound, "Meta not found")
	default:
		respondInternalError(w, h.logger, event, err)
	}
}
