// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/viva/internal/app"
	"github.com/okian/viva/internal/domain/interview"
)

// Service bundles the operations the handler layer needs. Keeping it an
// interface decouples routing from the app wiring and lets tests stub it.
type Service interface {
	StartSession(ctx context.Context, req app.StartRequest) (app.SessionCreated, error)
	SubmitAnswer(ctx context.Context, sessionID, answer string) (interview.Turn, error)
	Session(ctx context.Context, sessionID string) (*interview.Session, error)
	Results(ctx context.Context, sessionID string) (interview.Results, error)
	Report(ctx context.Context, sessionID string) (string, error)
	OracleHealth(ctx context.Context) error
	SkillQuestion(ctx context.Context, sessionID, skill, level string) (string, error)
	GetStats(ctx context.Context) app.Stats
}

// Server wires HTTP routes for the interview API.
type Server struct {
	sessionsHandler *SessionsHandler
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	devHandler      *DevHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(svc Service) *Server {
	return &Server{
		sessionsHandler: NewSessionsHandler(svc),
		healthHandler:   NewHealthHandler(svc),
		statsHandler:    NewStatsHandler(svc),
		devHandler:      NewDevHandler(svc),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/sessions", MetricsMiddleware(s.sessionsHandler.HandleCreate, "sessions"))
	mux.HandleFunc("/api/sessions/", MetricsMiddleware(s.sessionsHandler.HandleSession, "session"))
	mux.HandleFunc("/api/oracle/health", MetricsMiddleware(s.healthHandler.HandleOracleHealth, "oracle_health"))
	mux.HandleFunc("/api/dev/skill-question", MetricsMiddleware(s.devHandler.HandleSkillQuestion, "dev_skill_question"))
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type answerResponse struct {
	Question string  `json:"question,omitempty"`
	Finished bool    `json:"finished"`
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// generationErrorResponse carries enough context for the caller to retry
// the same answer after a transient generation failure.
type generationErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Skill   string `json:"skill"`
	Level   string `json:"level"`
	Action  string `json:"action"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
