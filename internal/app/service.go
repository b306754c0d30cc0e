// Package app wires the interview engine, selectors, scorer, registry and
// persistence into one service consumed by the transport layer.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/okian/viva/internal/adapters/oracle"
	"github.com/okian/viva/internal/adapters/oracle/gemini"
	"github.com/okian/viva/internal/adapters/oracle/openai"
	"github.com/okian/viva/internal/adapters/persistence"
	"github.com/okian/viva/internal/adapters/registry"
	"github.com/okian/viva/internal/config"
	"github.com/okian/viva/internal/domain/distinct"
	"github.com/okian/viva/internal/domain/interview"
	"github.com/okian/viva/internal/domain/scoring"
	"github.com/okian/viva/internal/domain/selector"
	"github.com/okian/viva/internal/domain/types"
	"github.com/okian/viva/internal/report"
	"github.com/okian/viva/pkg/logger"
	"github.com/okian/viva/pkg/metrics"
)

// StartRequest opens a new interview session.
type StartRequest struct {
	CandidateName string            `json:"candidate_name" validate:"required"`
	Role          string            `json:"role"`
	Skills        []string          `json:"skills" validate:"dive,required"`
	Targets       map[string]string `json:"target_levels"`
	Projects      []types.Project   `json:"projects"`

	// ResumeText, when given and Projects is empty, is mined for projects
	// through the oracle.
	ResumeText string `json:"resume_text"`
}

// SessionCreated is the response to a successful session start.
type SessionCreated struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

// Stats is a lightweight operational snapshot.
type Stats struct {
	ActiveSessions int    `json:"active_sessions"`
	OracleProvider string `json:"oracle_provider"`
	OracleModel    string `json:"oracle_model"`
}

// Service owns all session lifecycle operations.
type Service struct {
	cfg      *config.Config
	log      logger.Logger
	validate *validator.Validate

	engine   *interview.Engine
	skillSel *selector.Skills
	oracle   *oracle.Timed
	sessions *registry.Registry
	store    persistence.Store
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore overrides the session store.
func WithStore(s persistence.Store) Option {
	return func(svc *Service) {
		if s != nil {
			svc.store = s
		}
	}
}

// WithOracle overrides the generation backend.
func WithOracle(o *oracle.Timed) Option {
	return func(svc *Service) {
		if o != nil {
			svc.oracle = o
		}
	}
}

// WithRegistry overrides the live session registry.
func WithRegistry(r *registry.Registry) Option {
	return func(svc *Service) {
		if r != nil {
			svc.sessions = r
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(svc *Service) {
		if l != nil {
			svc.log = l
		}
	}
}

// New builds the service from configuration: oracle provider, selectors,
// scorer, engine, registry and store. Options override individual pieces.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Service, error) {
	svc := &Service{
		cfg:      cfg,
		log:      logger.Named("app"),
		validate: validator.New(),
	}

	for _, opt := range opts {
		opt(svc)
	}

	if svc.oracle == nil {
		inner, err := buildProvider(ctx, cfg)
		if err != nil {
			return nil, err
		}
		svc.oracle = oracle.Wrap(inner, oracle.WithTimeout(cfg.OracleTimeout))
	}

	if svc.sessions == nil {
		svc.sessions = registry.New(registry.WithTTL(cfg.SessionTTL))
	}

	if svc.store == nil {
		store, err := buildStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		svc.store = store
	}

	filter := distinct.New(distinct.WithThreshold(cfg.DistinctThreshold))

	var gen selector.Generator
	if svc.oracle.Model() != "" {
		gen = svc.oracle
	}

	svc.skillSel = selector.NewSkills(
		selector.WithSkillsGenerator(gen),
		selector.WithSkillsFilter(filter),
		selector.WithSkillsRetries(cfg.GenerationRetries),
		selector.WithSkillsLogger(svc.log),
	)

	var scorerGen scoring.Generator
	if gen != nil {
		scorerGen = svc.oracle
	}

	svc.engine = interview.NewEngine(
		interview.WithProjectsSelector(selector.NewProjects(
			selector.WithProjectsGenerator(gen),
			selector.WithProjectsLogger(svc.log),
		)),
		interview.WithSkillsSelector(svc.skillSel),
		interview.WithScorer(scoring.New(
			scoring.WithGenerator(scorerGen),
			scoring.WithLogger(svc.log),
		)),
		interview.WithRecentWindow(cfg.RecentWindow),
		interview.WithEngineLogger(svc.log),
	)

	return svc, nil
}

func buildProvider(ctx context.Context, cfg *config.Config) (oracle.Oracle, error) {
	switch cfg.OracleProvider {
	case "gemini":
		c, err := gemini.New(ctx, cfg.OracleAPIKey(), cfg.OracleModel)
		if err != nil {
			return nil, fmt.Errorf("build gemini provider: %w", err)
		}
		return c, nil
	case "openai":
		c, err := openai.New(cfg.OracleAPIKey(), cfg.OracleModel)
		if err != nil {
			return nil, fmt.Errorf("build openai provider: %w", err)
		}
		return c, nil
	default:
		// Deterministic fallbacks only.
		return nil, nil
	}
}

func buildStore(ctx context.Context, cfg *config.Config) (persistence.Store, error) {
	switch cfg.StorageBackend {
	case "sqlite":
		return persistence.NewSQLiteStore(ctx, cfg.StorageDSN)
	default:
		return persistence.NewFileStore(cfg.StorageDir)
	}
}

// Close releases the session store.
func (s *Service) Close() error {
	return s.store.Close()
}

// StartSession validates the request, optionally mines the resume text for
// projects, registers the session and returns the opening question.
func (s *Service) StartSession(ctx context.Context, req StartRequest) (SessionCreated, error) {
	if err := s.validate.Struct(req); err != nil {
		return SessionCreated{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	projects := req.Projects
	if len(projects) == 0 && req.ResumeText != "" {
		projects = s.projectsFromResume(ctx, req.ResumeText)
	}

	sess, err := interview.NewSession(interview.StartParams{
		CandidateName: req.CandidateName,
		Role:          req.Role,
		Skills:        req.Skills,
		Targets:       req.Targets,
		Projects:      projects,
	})
	if err != nil {
		return SessionCreated{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	question := s.engine.Start(sess)
	s.sessions.Put(sess)

	if err := s.store.Save(ctx, sess); err != nil {
		s.sessions.Delete(sess.ID)
		return SessionCreated{}, fmt.Errorf("persist session: %w", err)
	}

	metrics.RecordSessionStarted()
	metrics.RecordQuestionGenerated(string(types.PhaseIntroduction))
	metrics.UpdateActiveSessions(s.sessions.Count())
	s.log.Info(ctx, "session started",
		logger.String("session_id", sess.ID),
		logger.Int("skills", len(sess.Skills)),
		logger.Int("projects", len(sess.Projects)))

	return SessionCreated{SessionID: sess.ID, Question: question}, nil
}

// SubmitAnswer applies one answer to the session. The per-session lock
// serializes concurrent submissions; the committed state is persisted
// before the response is returned.
func (s *Service) SubmitAnswer(ctx context.Context, sessionID, answer string) (interview.Turn, error) {
	entry, err := s.entry(ctx, sessionID)
	if err != nil {
		return interview.Turn{}, err
	}

	entry.Lock()
	defer entry.Unlock()

	sess := entry.Session
	phaseBefore := sess.Phase

	turn, err := s.engine.Answer(ctx, sess, answer)
	if err != nil {
		var genErr *selector.GenerationError
		if errors.As(err, &genErr) {
			metrics.RecordGenerationFailure(string(genErr.Level))
		}
		return interview.Turn{}, err
	}

	if err := s.store.Save(ctx, sess); err != nil {
		// The in-memory state already advanced; losing the write must not
		// lose the session, so log and keep serving from memory.
		s.log.Error(ctx, "persist session failed",
			logger.String("session_id", sess.ID), logger.Error(err))
	}

	metrics.RecordAnswerProcessed()
	metrics.RecordAnswerScore(turn.Evaluation.Score)
	if sess.Phase != phaseBefore {
		metrics.RecordPhaseTransition(string(sess.Phase))
	}
	if turn.Question != "" {
		metrics.RecordQuestionGenerated(string(sess.Phase))
	}
	if turn.Finished && phaseBefore != types.PhaseDone {
		metrics.RecordSessionCompleted()
	}

	return turn, nil
}

// Session returns the live session state.
func (s *Service) Session(ctx context.Context, sessionID string) (*interview.Session, error) {
	entry, err := s.entry(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	entry.Lock()
	defer entry.Unlock()
	return entry.Session.Clone(), nil
}

// Results aggregates the session transcript and outcomes.
func (s *Service) Results(ctx context.Context, sessionID string) (interview.Results, error) {
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return interview.Results{}, err
	}
	return interview.ComputeResults(sess), nil
}

// Report renders the plain-text interview report.
func (s *Service) Report(ctx context.Context, sessionID string) (string, error) {
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return report.Render(sess, time.Now().UTC()), nil
}

// OracleHealth checks the generation backend end to end.
func (s *Service) OracleHealth(ctx context.Context) error {
	return s.oracle.Health(ctx)
}

// SkillQuestion generates one distinct question for an arbitrary
// skill/level pair against a session's recent history. Development helper.
func (s *Service) SkillQuestion(ctx context.Context, sessionID, skill, level string) (string, error) {
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return s.skillSel.Next(ctx, skill, types.ParseLevel(level),
		sess.RecentQuestions(types.PhaseSkills, s.cfg.RecentWindow), nil)
}

// GetStats reports operational counters.
func (s *Service) GetStats(_ context.Context) Stats {
	return Stats{
		ActiveSessions: s.sessions.Count(),
		OracleProvider: s.cfg.OracleProvider,
		OracleModel:    s.oracle.Model(),
	}
}

// entry resolves a live session, rehydrating from the store when the
// registry entry expired.
func (s *Service) entry(ctx context.Context, sessionID string) (*registry.Entry, error) {
	entry, err := s.sessions.Get(sessionID)
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, registry.ErrNotFound) {
		return nil, err
	}

	sess, err := s.store.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) || errors.Is(err, persistence.ErrInvalidID) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	s.log.Info(ctx, "session rehydrated from store", logger.String("session_id", sessionID))
	return s.sessions.Put(sess), nil
}

// projectsFromResume asks the oracle for a JSON list of projects found in
// the resume text. Extraction failures degrade to no projects.
func (s *Service) projectsFromResume(ctx context.Context, resumeText string) []types.Project {
	const maxResumeChars = 8000
	if len(resumeText) > maxResumeChars {
		resumeText = resumeText[:maxResumeChars]
	}

	prompt := "Extract all major projects from the following resume text.\n" +
		"Summarize each project in 2-3 lines.\n" +
		"Return output as JSON array with objects of shape:\n" +
		"[{\"project_title\": \"...\", \"summary\": \"...\"}]\n\n" +
		"Resume text:\n" + resumeText

	raw, err := s.oracle.Generate(ctx, prompt)
	if err != nil {
		s.log.Warn(ctx, "resume project extraction failed", logger.Error(err))
		return nil
	}

	projects, err := parseProjects(raw)
	if err != nil {
		s.log.Warn(ctx, "resume project extraction unparsable", logger.Error(err))
		return nil
	}
	return projects
}
