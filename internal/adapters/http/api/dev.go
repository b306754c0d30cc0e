// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/viva/internal/domain/selector"
)

// DevHandler exposes development-only probes against the question pipeline.
type DevHandler struct {
	svc Service
}

// NewDevHandler creates a new dev handler.
func NewDevHandler(svc Service) *DevHandler {
	return &DevHandler{svc: svc}
}

type skillQuestionRequest struct {
	SessionID string `json:"session_id"`
	Skill     string `json:"skill"`
	Level     string `json:"level"`
}

// HandleSkillQuestion handles POST /api/dev/skill-question requests. It runs
// one generation round for an arbitrary (skill, level) pair against a
// session's recent questions without touching the session state.
func (h *DevHandler) HandleSkillQuestion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req skillQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if strings.TrimSpace(req.SessionID) == "" || strings.TrimSpace(req.Skill) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	q, err := h.svc.SkillQuestion(r.Context(), req.SessionID, req.Skill, req.Level)
	if err != nil {
		var genErr *selector.GenerationError
		if errors.As(err, &genErr) {
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
	writeJSON(w, http.StatusOK, map[string]string{"question": q})
}
