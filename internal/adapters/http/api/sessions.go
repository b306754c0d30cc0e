// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/viva/internal/app"
	"github.com/okian/viva/internal/domain/selector"
)

// SessionsHandler handles session lifecycle requests.
type SessionsHandler struct {
	svc Service
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(svc Service) *SessionsHandler {
	return &SessionsHandler{svc: svc}
}

// HandleCreate handles POST /api/sessions requests.
func (h *SessionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req app.StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	created, err := h.svc.StartSession(r.Context(), req)
	if err != nil {
		if errors.Is(err, app.ErrInvalidRequest) {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// HandleSession routes /api/sessions/{id}, /api/sessions/{id}/answers,
// /api/sessions/{id}/results and /api/sessions/{id}/report.
func (h *SessionsHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" || strings.Contains(action, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	switch action {
	case "":
		h.handleGet(w, r, id)
	case "answers":
		h.handleAnswer(w, r, id)
	case "results":
		h.handleResults(w, r, id)
	case "report":
		h.handleReport(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (h *SessionsHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	sess, err := h.svc.Session(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *SessionsHandler) handleAnswer(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if strings.TrimSpace(req.Answer) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrMissingAnswer)
		return
	}

	turn, err := h.svc.SubmitAnswer(r.Context(), id, req.Answer)
	if err != nil {
		var genErr *selector.GenerationError
		if errors.As(err, &genErr) {
			// The answer was not committed; the caller can resubmit it.
			writeJSON(w, http.StatusServiceUnavailable, generationErrorResponse{
				Code:    "skill_question_generation_failed",
				Message: genErr.Error(),
				Skill:   genErr.Skill,
				Level:   string(genErr.Level),
				Action:  "retry",
			})
			return
		}
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, answerResponse{
		Question: turn.Question,
		Finished: turn.Finished,
		Score:    turn.Evaluation.Score,
		Feedback: turn.Evaluation.Feedback,
	})
}

func (h *SessionsHandler) handleResults(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	res, err := h.svc.Results(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *SessionsHandler) handleReport(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	text, err := h.svc.Report(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

// writeServiceError maps app-layer errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, app.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "not_found", err)
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", err)
}
