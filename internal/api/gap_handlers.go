package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/regiq/regiq/internal/logger"
	"github.com/regiq/regiq/internal/models"
)

// GapAnalysisRequest is the body for POST /v1/gaps/analyze
type GapAnalysisRequest struct {
	AlertIDs   []string `json:"alert_ids,omitempty"`
	AnalyzeAll bool     `json:"analyze_all,omitempty"`
}

// analyzeGapsHandler runs the gap detector over the selected alerts.
func (h *Handler) analyzeGapsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req GapAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.AlertIDs) == 0 && !req.AnalyzeAll {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "alert_ids or analyze_all is required")
		return
	}

	report, err := h.analyzer.Analyze(ctx, req.AlertIDs, req.AnalyzeAll)
	if err != nil {
		logger.WithContext(ctx).Error("Gap analysis failed", "error", err)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, report)
}

// getIndicatorsHandler handles GET /gaps/indicators
func (h *Handler) getIndicatorsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	indicators, err := h.store.ListGapIndicators(ctx)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to list gap indicators", "error", err)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	if indicators == nil {
		indicators = []models.RegulatoryGapIndicator{}
	}

	response := map[string]interface{}{
		"data":      indicators,
		"count":     len(indicators),
		"timestamp": time.Now().UTC(),
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}
