package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"catalogfinder/internal/model"
	"catalogfinder/internal/service"
	"catalogfinder/internal/transport/rest/middleware"
	"catalogfinder/internal/tree"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// SessionHandler handles questionnaire session endpoints
type SessionHandler struct {
	sessionSvc *service.SessionService
	authSvc    *service.AuthService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionSvc *service.SessionService, authSvc *service.AuthService) *SessionHandler {
	return &SessionHandler{
		sessionSvc: sessionSvc,
		authSvc:    authSvc,
	}
}

// AnswerRequest is the request body for answering the current question
type AnswerRequest struct {
	Choice tree.Side `json:"choice"`
}

type sessionResponse struct {
	SessionID       string                 `json:"sessionId"`
	Status          model.SessionStatus    `json:"status"`
	Question        *model.Question        `json:"question,omitempty"`
	Recommendations []model.Recommendation `json:"recommendations,omitempty"`
	Token           string                 `json:"token,omitempty"`
}

// Start handles POST /v1/catalogs/{catalogId}/sessions. Public: starting a
// session mints the shopper token used for the rest of the walk.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	catalogID := mux.Vars(r)["catalogId"]

	shopperID := "shopper_" + uuid.New().String()[:8]
	session, err := h.sessionSvc.Start(r.Context(), catalogID, shopperID)
	if err != nil {
		if errors.Is(err, service.ErrTreeNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	token, err := h.authSvc.GenerateShopperToken(catalogID, shopperID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{
		SessionID:       session.ID,
		Status:          session.Status,
		Question:        h.sessionSvc.CurrentQuestion(session),
		Recommendations: session.Recommendations,
		Token:           token,
	})
}

// Answer handles POST /v1/sessions/{sessionId}/answers
func (h *SessionHandler) Answer(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Choice != tree.SideLeft && req.Choice != tree.SideRight {
		writeError(w, http.StatusBadRequest, "choice must be left or right")
		return
	}

	session, err := h.sessionSvc.Answer(r.Context(), sessionID, req.Choice)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrSessionCompleted):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, tree.ErrInvalidNode), errors.Is(err, tree.ErrNodeNotFound):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		SessionID:       session.ID,
		Status:          session.Status,
		Question:        h.sessionSvc.CurrentQuestion(session),
		Recommendations: session.Recommendations,
	})
}

// Resume handles GET /v1/sessions/{sessionId}/resume. Re-resolves the
// session's current node so a reconnecting shopper gets the pending question
// (or their recommendations) back.
func (h *SessionHandler) Resume(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	session, question, err := h.sessionSvc.Resume(r.Context(), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, tree.ErrNodeNotFound), errors.Is(err, tree.ErrInvalidNode):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		SessionID:       session.ID,
		Status:          session.Status,
		Question:        question,
		Recommendations: session.Recommendations,
	})
}

// Get handles GET /v1/sessions/{sessionId}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	if middleware.GetShopperID(r.Context()) == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	session, err := h.sessionSvc.Get(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, session)
}
