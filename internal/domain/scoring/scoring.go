// Package scoring assigns 0-100 scores and feedback to candidate answers.
// The external rubric path may fail; every entry point degrades to a
// deterministic lexical heuristic so the interview always progresses.
package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/okian/viva/internal/domain/types"
	"github.com/okian/viva/pkg/logger"
	"github.com/okian/viva/pkg/metrics"
)

// Pass threshold and score bounds.
const (
	// PassThreshold is the minimum score counted as a pass in the skills
	// phase.
	PassThreshold = 30.0

	maxScore = 100.0
)

// Generator is the minimal text-generation contract the rubric scorer
// needs. The oracle adapter satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Scorer evaluates candidate answers per phase. Implementations must be
// total: a scoring backend failure is absorbed, never surfaced.
type Scorer interface {
	ScoreIntro(ctx context.Context, answer string) types.Evaluation
	ScoreProject(ctx context.Context, question, answer string) types.Evaluation
	ScoreSkill(ctx context.Context, question, answer string, level types.Level) types.Evaluation
}

// Composite scores with the LLM rubric when a generator is configured and
// blends it with the lexical heuristic, mirroring the hybrid project
// evaluation mode. Without a generator it is purely lexical.
type Composite struct {
	gen Generator
	log logger.Logger
}

// Option applies a configuration option to the Composite.
type Option func(*Composite)

// WithGenerator enables LLM rubric scoring for project answers.
func WithGenerator(g Generator) Option {
	return func(c *Composite) {
		c.gen = g
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Composite) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a Composite scorer with configuration options.
func New(opts ...Option) *Composite {
	c := &Composite{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ScoreIntro evaluates the introduction answer with the lexical heuristic.
func (c *Composite) ScoreIntro(_ context.Context, answer string) types.Evaluation {
	score, feedback := introHeuristic(answer)
	return types.Evaluation{Score: score, Feedback: feedback}
}

// ScoreProject evaluates a project answer. When a generator is available the
// rubric score is averaged with the lexical one; rubric failures fall back
// to the lexical result alone.
func (c *Composite) ScoreProject(ctx context.Context, question, answer string) types.Evaluation {
	lexScore, lexFeedback := projectHeuristic(answer)

	if c.gen == nil {
		return types.Evaluation{Score: lexScore, Feedback: lexFeedback}
	}

	rubricScore, rubricFeedback, err := c.rubric(ctx, question, answer)
	if err != nil {
		metrics.RecordScoringFallback()
		if c.log != nil {
			c.log.Warn(ctx, "rubric scoring unavailable, using lexical heuristic", logger.Error(err))
		}
		return types.Evaluation{Score: lexScore, Feedback: lexFeedback}
	}

	score := clamp((lexScore + rubricScore) / 2)
	feedback := rubricFeedback
	if feedback == "" {
		feedback = lexFeedback
	}
	return types.Evaluation{Score: score, Feedback: feedback}
}

// ScoreSkill evaluates a skills-phase answer with the lexical heuristic,
// weighted by difficulty level.
func (c *Composite) ScoreSkill(_ context.Context, question, answer string, level types.Level) types.Evaluation {
	score, feedback := skillHeuristic(question, answer, level)
	return types.Evaluation{Score: score, Feedback: feedback}
}

// rubricPrompt asks for a strict JSON verdict so parsing stays trivial.
const rubricSystem = "Evaluate the candidate's project answer. Score 0-100 strictly as integer." +
	" Criteria: 1) Technical depth 2) Clarity & structure 3) Relevance to project" +
	" 4) Personal contribution/ownership." +
	" In 'feedback', provide brief reasons that justify the score."

func (c *Composite) rubric(ctx context.Context, question, answer string) (float64, string, error) {
	var b strings.Builder
	b.WriteString(rubricSystem)
	b.WriteString("\n\n")
	if question != "" {
		fmt.Fprintf(&b, "Project question: %s\n", question)
	}
	b.WriteString("Candidate answer:\n")
	b.WriteString(strings.TrimSpace(answer))
	b.WriteString("\n\nReturn JSON strictly as {\"score\": <0..100>, \"feedback\": \"...\"}.")

	raw, err := c.gen.Generate(ctx, b.String())
	if err != nil {
		return 0, "", fmt.Errorf("rubric generation: %w", err)
	}

	score, feedback, err := parseRubric(raw)
	if err != nil {
		return 0, "", err
	}
	return score, feedback, nil
}

// parseRubric extracts the {"score", "feedback"} object from raw output,
// tolerating surrounding prose by locating the outermost braces.
func parseRubric(raw string) (float64, string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end <= start {
		return 0, "", ErrMalformedRubric
	}
	var verdict struct {
		Score    float64 `json:"score"`
		Feedback string  `json:"feedback"`
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &verdict); err != nil {
		return 0, "", fmt.Errorf("%w: %w", ErrMalformedRubric, err)
	}
	return clamp(verdict.Score), strings.TrimSpace(verdict.Feedback), nil
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > maxScore {
		return maxScore
	}
	return v
}
