package handler

import (
	"errors"
	"net/http"

	"catalogfinder/internal/service"

	"github.com/gorilla/mux"
)

// AnalyticsHandler handles analytics endpoints
type AnalyticsHandler struct {
	analyticsSvc *service.AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsSvc *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsSvc: analyticsSvc}
}

// Summary handles GET /v1/catalogs/{catalogId}/analytics
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	catalogID := mux.Vars(r)["catalogId"]

	summary, err := h.analyticsSvc.Summary(r.Context(), catalogID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// VerifySession handles GET /v1/sessions/{sessionId}/replay
func (h *AnalyticsHandler) VerifySession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	check, err := h.analyticsSvc.VerifySession(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) || errors.Is(err, service.ErrTreeNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, check)
}
