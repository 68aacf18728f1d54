package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/regiq/regiq/internal/logger"
)

type createKeyRequest struct {
	Label string `json:"label"`
	Env   string `json:"env"`
}

// adminCreateKey issues a new API key. The raw key is returned once and
// never stored.
func (h *Handler) adminCreateKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.keys == nil {
		h.writeErrorResponse(w, r, http.StatusServiceUnavailable, "key management requires a database")
		return
	}

	var req createKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Env == "" {
		req.Env = "live"
	}

	raw, keyID, err := h.keys.CreateAPIKey(ctx, req.Label, req.Env)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to create API key", "error", err)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.writeJSONResponse(w, http.StatusCreated, map[string]string{
		"key_id":  keyID,
		"api_key": raw,
	})
}

// adminRevokeKey revokes an API key by its prefix ID.
func (h *Handler) adminRevokeKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.keys == nil {
		h.writeErrorResponse(w, r, http.StatusServiceUnavailable, "key management requires a database")
		return
	}

	keyID := chi.URLParam(r, "key_id")
	if keyID == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "key_id is required")
		return
	}

	if err := h.keys.RevokeAPIKey(ctx, keyID); err != nil {
		logger.WithContext(ctx).Error("Failed to revoke API key", "error", err, "key_id", keyID)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]string{"status": "revoked"})
}
