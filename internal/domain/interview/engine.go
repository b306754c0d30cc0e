package interview

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/viva/internal/domain/scoring"
	"github.com/okian/viva/internal/domain/selector"
	"github.com/okian/viva/internal/domain/types"
	"github.com/okian/viva/pkg/logger"
	"github.com/okian/viva/pkg/metrics"
)

// DefaultRecentWindow is how many recent same-phase questions feed the
// distinctness filter and topic avoidance.
const DefaultRecentWindow = 10

// Limits on skill-level probing.
const (
	passesToClear = 2
	failsToStop   = 2
	maxPerLevel   = 3
)

// Turn is the outcome of processing one answer. An empty Question together
// with Finished=true signals the terminal phase.
type Turn struct {
	Question   string
	Finished   bool
	Evaluation types.Evaluation
}

// Engine applies answers to sessions. Every answer is staged on a clone and
// committed only when the follow-up question was produced, so a failed
// generation leaves the session untouched and the request can be retried.
type Engine struct {
	projects *selector.Projects
	skills   *selector.Skills
	scorer   scoring.Scorer
	window   int
	log      logger.Logger
}

// EngineOption applies a configuration option to the Engine.
type EngineOption func(*Engine)

// WithProjectsSelector sets the projects-phase selector.
func WithProjectsSelector(p *selector.Projects) EngineOption {
	return func(e *Engine) {
		if p != nil {
			e.projects = p
		}
	}
}

// WithSkillsSelector sets the skills-phase selector.
func WithSkillsSelector(s *selector.Skills) EngineOption {
	return func(e *Engine) {
		if s != nil {
			e.skills = s
		}
	}
}

// WithScorer sets the answer scorer.
func WithScorer(s scoring.Scorer) EngineOption {
	return func(e *Engine) {
		if s != nil {
			e.scorer = s
		}
	}
}

// WithRecentWindow sets the recent-question window size.
func WithRecentWindow(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.window = n
		}
	}
}

// WithEngineLogger sets a custom logger.
func WithEngineLogger(l logger.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// NewEngine creates an Engine with configuration options.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		projects: selector.NewProjects(),
		skills:   selector.NewSkills(),
		scorer:   scoring.New(),
		window:   DefaultRecentWindow,
		log:      logger.Get(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start issues the opening question and arms the session for the first
// answer.
func (e *Engine) Start(s *Session) string {
	q := selector.IntroQuestion(s.CandidateName)
	s.LastQuestion = q
	s.UpdatedAt = time.Now().UTC()
	return q
}

// Answer scores the submitted answer, advances the phase state machine and
// returns the next question. Only question-generation failures in the
// skills phase surface as errors; they leave the session state unchanged.
func (e *Engine) Answer(ctx context.Context, s *Session, answer string) (Turn, error) {
	if s.Done() {
		return Turn{Finished: true}, nil
	}

	c := s.Clone()

	var (
		turn Turn
		err  error
	)
	switch c.Phase {
	case types.PhaseIntroduction:
		turn = e.answerIntro(ctx, c, answer)
	case types.PhaseProjects:
		turn, err = e.answerProject(ctx, c, answer)
	case types.PhaseSkills:
		turn, err = e.answerSkill(ctx, c, answer)
	default:
		return Turn{}, fmt.Errorf("unexpected phase %q", c.Phase)
	}
	if err != nil {
		return Turn{}, err
	}

	c.UpdatedAt = time.Now().UTC()
	*s = *c
	return turn, nil
}

// answerIntro records the single introduction answer and opens the
// projects phase.
func (e *Engine) answerIntro(ctx context.Context, c *Session, answer string) Turn {
	eval := e.scorer.ScoreIntro(ctx, answer)
	c.Transcript = append(c.Transcript, types.TranscriptEntry{
		Phase:    types.PhaseIntroduction,
		Question: c.LastQuestion,
		Answer:   answer,
		Score:    eval.Score,
		Feedback: eval.Feedback,
	})

	c.Phase = types.PhaseProjects
	q := e.nextProjectQuestion(ctx, c)
	c.LastQuestion = q
	return Turn{Question: q, Evaluation: eval}
}

// answerProject records a project answer, then either asks about another
// project or transitions to the skills phase.
func (e *Engine) answerProject(ctx context.Context, c *Session, answer string) (Turn, error) {
	eval := e.scorer.ScoreProject(ctx, c.LastQuestion, answer)
	c.Transcript = append(c.Transcript, types.TranscriptEntry{
		Phase:    types.PhaseProjects,
		Question: c.LastQuestion,
		Answer:   answer,
		Score:    eval.Score,
		Feedback: eval.Feedback,
	})
	c.ProjectsAsked++

	if c.ProjectsAsked < c.ProjectsTarget {
		q := e.nextProjectQuestion(ctx, c)
		c.LastQuestion = q
		return Turn{Question: q, Evaluation: eval}, nil
	}

	// Projects exhausted; enter the skills phase.
	c.Phase = types.PhaseSkills
	c.SkillIdx = 0
	c.LevelIdx = 0
	c.Counters = Counters{}

	if len(c.Skills) == 0 {
		c.Phase = types.PhaseDone
		c.LastQuestion = ""
		return Turn{Finished: true, Evaluation: eval}, nil
	}

	q, err := e.nextSkillQuestion(ctx, c)
	if err != nil {
		return Turn{}, err
	}
	return Turn{Question: q, Evaluation: eval}, nil
}

// answerSkill updates level counters, finalizes the level when complete,
// moves the cursor and produces the next question.
func (e *Engine) answerSkill(ctx context.Context, c *Session, answer string) (Turn, error) {
	// Score against the skill/level the pending question was generated for,
	// not the cursor, so a question always lands on the level it probed.
	skill := c.PendingSkill
	level := c.PendingLevel
	if skill == "" {
		skill = c.CurrentSkill()
		level = c.CurrentLevel()
	}

	eval := e.scorer.ScoreSkill(ctx, c.LastQuestion, answer, level)
	c.Transcript = append(c.Transcript, types.TranscriptEntry{
		Phase:    types.PhaseSkills,
		Question: c.LastQuestion,
		Answer:   answer,
		Score:    eval.Score,
		Feedback: eval.Feedback,
		Skill:    skill,
		Level:    level,
	})

	c.Counters.Asked++
	if eval.Score >= scoring.PassThreshold {
		c.Counters.Passes++
	} else {
		c.Counters.Fails++
	}

	if complete := c.Counters.Passes >= passesToClear ||
		c.Counters.Fails >= failsToStop ||
		c.Counters.Asked >= maxPerLevel; complete {
		e.finalizeLevel(ctx, c, skill, level)
	}

	if c.SkillIdx >= len(c.Skills) {
		c.Phase = types.PhaseDone
		c.LastQuestion = ""
		c.PendingSkill = ""
		c.PendingLevel = ""
		return Turn{Finished: true, Evaluation: eval}, nil
	}

	q, err := e.nextSkillQuestion(ctx, c)
	if err != nil {
		return Turn{}, err
	}
	return Turn{Question: q, Evaluation: eval}, nil
}

// finalizeLevel records the level outcome and moves the cursor: a passed
// target level or a failed level advances the skill, a passed lower level
// raises the difficulty.
func (e *Engine) finalizeLevel(ctx context.Context, c *Session, skill string, level types.Level) {
	passed := c.Counters.Passes >= passesToClear

	feedback := fmt.Sprintf("Passed %d/%d at %s.", c.Counters.Passes, c.Counters.Asked, level)
	if !passed {
		feedback = fmt.Sprintf("Below threshold with %d/%d incorrect at %s.", c.Counters.Fails, c.Counters.Asked, level)
	}
	c.recordOutcome(skill, level, types.LevelOutcome{
		Passed:   passed,
		Passes:   c.Counters.Passes,
		Fails:    c.Counters.Fails,
		Asked:    c.Counters.Asked,
		Feedback: feedback,
	})

	nextSkill := false
	switch {
	case passed && level == c.TargetFor(skill):
		nextSkill = true
	case passed:
		c.LevelIdx++
		if c.LevelIdx >= len(types.Levels()) {
			nextSkill = true
		}
	default:
		nextSkill = true
	}

	if nextSkill {
		c.SkillIdx++
		c.LevelIdx = 0
	}
	c.Counters = Counters{}

	metrics.RecordLevelFinalized(string(level), passed)
	e.log.Debug(ctx, "level finalized",
		logger.String("skill", skill),
		logger.String("level", string(level)),
		logger.Bool("passed", passed),
		logger.Int("next_skill_idx", c.SkillIdx))
}

// nextProjectQuestion picks the target project and produces its question.
// The selector is total, so this never fails.
func (e *Engine) nextProjectQuestion(ctx context.Context, c *Session) string {
	recent := c.phaseAnswers(c.Phase, 2)
	if len(recent) == 0 {
		recent = c.phaseAnswers(types.PhaseIntroduction, 2)
	}

	project := e.projects.Pick(c.Projects, c.askedSet(), recent)
	q := e.projects.Question(ctx, project, recent)
	c.markProjectAsked(project.Title)
	return q
}

// nextSkillQuestion produces a distinct question for the cursor's
// (skill, level). Errors propagate so the caller can leave the session
// unchanged.
func (e *Engine) nextSkillQuestion(ctx context.Context, c *Session) (string, error) {
	skill := c.CurrentSkill()
	level := c.CurrentLevel()

	q, err := e.skills.Next(ctx, skill, level,
		c.phaseQuestions(types.PhaseSkills, e.window),
		c.phaseAnswers(types.PhaseSkills, 2))
	if err != nil {
		return "", err
	}

	c.LastQuestion = q
	c.PendingSkill = skill
	c.PendingLevel = level
	return q, nil
}
