package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BigazyGalym/Diplom/internal/auth"
	"github.com/BigazyGalym/Diplom/internal/handler/dto"
	"github.com/BigazyGalym/Diplom/internal/service"
)

// APIKeyHandler handles API key management endpoints.
type APIKeyHandler struct {
	svc    *service.APIKeyService
	logger *slog.Logger
}

// NewAPIKeyHandler creates a new APIKeyHandler.
func NewAPIKeyHandler(svc *service.APIKeyService, logger *slog.Logger) *APIKeyHandler {
	return &APIKeyHandler{svc: svc, logger: logger}
}

// Create handles POST /api/v1/api-keys.
func (h *APIKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAPIKeyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	key, plaintext, err := h.svc.Create(r.Context(), auth.MustCaller(r.Context()), service.CreateAPIKeyInput{
		Name:   req.Name,
		Scopes: req.Scopes,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToCreatedAPIKeyResponse(key, plaintext))
}

// List handles GET /api/v1/api-keys.
func (h *APIKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	keys, err := h.svc.List(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToAPIKeyList(keys))
}

// Revoke handles DELETE /api/v1/api-keys/{key_id}.
func (h *APIKeyHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Revoke(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "key_id")); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Logout handles POST /api/v1/logout by revoking the key that made the call.
func (h *APIKeyHandler) Logout(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustCaller(r.Context())
	if err := h.svc.Revoke(r.Context(), caller.UserID, caller.KeyID); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Logged out successfully"})
}
