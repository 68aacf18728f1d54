package api

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/regiq/regiq/internal/errors"
	"github.com/regiq/regiq/internal/logger"
	"github.com/regiq/regiq/internal/models"
)

// SyncRequest is the body for POST /v1/admin/sync
type SyncRequest struct {
	Action string `json:"action"`
	Agency string `json:"agency,omitempty"`
}

// syncHandler dispatches a sync invocation: one agency, all agencies, or
// a reachability test that persists nothing.
func (h *Handler) syncHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var (
		report models.SyncReport
		err    error
	)
	switch req.Action {
	case "sync":
		if req.Agency == "" {
			h.writeErrorResponse(w, r, http.StatusBadRequest, "agency is required for action=sync")
			return
		}
		report, err = h.syncer.SyncAgency(ctx, req.Agency)
	case "sync_all", "":
		report, err = h.syncer.SyncAll(ctx)
	case "test":
		// empty agency tests every configured feed
		report, err = h.syncer.TestFeeds(ctx, req.Agency)
	default:
		h.writeErrorResponse(w, r, http.StatusBadRequest, "unknown action: "+req.Action)
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidInput):
			h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, apperrors.ErrSyncInProgress):
			h.writeErrorResponse(w, r, http.StatusConflict, err.Error())
		default:
			logger.WithContext(ctx).Error("Sync failed", "error", err, "action", req.Action)
			h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	h.writeJSONResponse(w, http.StatusOK, report)
}
