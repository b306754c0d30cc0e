package selector

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/okian/viva/internal/domain/distinct"
	"github.com/okian/viva/internal/domain/types"
	"github.com/okian/viva/pkg/logger"
	"github.com/okian/viva/pkg/metrics"
)

// Defaults for the hybrid skills policy.
const (
	// DefaultRetries is the attempt budget per generation strategy.
	DefaultRetries = 3

	// DefaultAdaptiveBias is the probability of starting in adaptive mode
	// rather than diversity mode.
	DefaultAdaptiveBias = 0.7

	topicAvoidCount = 5
)

// Per-level guidance embedded in generation prompts.
var levelGuidance = map[types.Level]string{
	types.LevelBasic: "Ask a simple, concept-based question that checks the candidate's " +
		"understanding of the core principles in this skill. Ensure the question is clear, " +
		"direct, and helps assess grasp of the basics rather than complex application.",
	types.LevelIntermediate: "Ask a moderately challenging question that requires the candidate " +
		"to apply concepts or explain reasoning with an example. The question should connect " +
		"related ideas and test both understanding and practical thinking.",
	types.LevelAdvanced: "Ask a challenging, real-world question that tests the candidate's " +
		"ability to analyze scenarios, design efficient solutions, and reason about trade-offs. " +
		"The question should encourage problem-solving and decision-making at an advanced level.",
}

// Skills produces the next question for a (skill, level) pair. Strategies
// run in order adaptive/diversity (probabilistic start), then a direct
// distinct-list prompt, then a deterministic per-level template; every
// candidate must clear the distinctness filter against the recent window.
type Skills struct {
	gen     Generator
	filter  *distinct.Filter
	retries int
	bias    float64
	rng     *rand.Rand
	log     logger.Logger
}

// SkillsOption applies a configuration option to the Skills selector.
type SkillsOption func(*Skills)

// WithSkillsGenerator sets the oracle used for question generation.
func WithSkillsGenerator(g Generator) SkillsOption {
	return func(s *Skills) {
		s.gen = g
	}
}

// WithSkillsFilter sets the distinctness filter.
func WithSkillsFilter(f *distinct.Filter) SkillsOption {
	return func(s *Skills) {
		if f != nil {
			s.filter = f
		}
	}
}

// WithSkillsRetries sets the attempt budget per strategy.
func WithSkillsRetries(n int) SkillsOption {
	return func(s *Skills) {
		if n > 0 {
			s.retries = n
		}
	}
}

// WithAdaptiveBias sets the probability of starting in adaptive mode.
func WithAdaptiveBias(p float64) SkillsOption {
	return func(s *Skills) {
		if p >= 0 && p <= 1 {
			s.bias = p
		}
	}
}

// WithSkillsRand sets the random source, used by tests for determinism.
func WithSkillsRand(r *rand.Rand) SkillsOption {
	return func(s *Skills) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithSkillsLogger sets a custom logger.
func WithSkillsLogger(l logger.Logger) SkillsOption {
	return func(s *Skills) {
		if l != nil {
			s.log = l
		}
	}
}

// NewSkills creates a Skills selector with configuration options.
func NewSkills(opts ...SkillsOption) *Skills {
	s := &Skills{
		filter:  distinct.New(),
		retries: DefaultRetries,
		bias:    DefaultAdaptiveBias,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type strategy int

const (
	strategyAdaptive strategy = iota
	strategyDiversity
	strategyDirect
)

func (s strategy) String() string {
	switch s {
	case strategyAdaptive:
		return "adaptive"
	case strategyDiversity:
		return "diversity"
	case strategyDirect:
		return "direct"
	default:
		return "unknown"
	}
}

// Next returns one distinct question for the (skill, level) pair. It fails
// only when the oracle is unavailable across every strategy, or when no
// candidate (including the deterministic template) clears the distinctness
// filter; the returned error is a retryable *GenerationError either way.
func (s *Skills) Next(ctx context.Context, skill string, level types.Level, recentQuestions, recentAnswers []string) (string, error) {
	order := []strategy{strategyAdaptive, strategyDiversity, strategyDirect}
	if s.rng.Float64() >= s.bias {
		order[0], order[1] = order[1], order[0]
	}

	var (
		lastErr   error
		sawOutput bool
	)

	if s.gen != nil {
		for _, strat := range order {
			for attempt := 0; attempt < s.retries; attempt++ {
				raw, err := s.gen.Generate(ctx, s.prompt(strat, skill, level, recentQuestions, recentAnswers))
				if err != nil {
					lastErr = err
					continue
				}
				sawOutput = true

				q := distinct.Normalize(distinct.QuestionLine(raw))
				if q == "" {
					continue
				}
				if !s.filter.Accept(q, recentQuestions) {
					metrics.RecordDistinctRejection()
					if s.log != nil {
						s.log.Debug(ctx, "candidate question rejected as too similar",
							logger.String("skill", skill),
							logger.String("level", string(level)),
							logger.String("strategy", strat.String()))
					}
					continue
				}
				return q, nil
			}
		}
	}

	if !sawOutput {
		if lastErr == nil {
			lastErr = ErrNoGenerator
		}
		return "", &GenerationError{Skill: skill, Level: level, Err: lastErr}
	}

	// The oracle answered but nothing was distinct; a fixed template is an
	// acceptable substitute only if it is itself distinct.
	if tmpl := levelTemplate(skill, level); s.filter.Accept(tmpl, recentQuestions) {
		return tmpl, nil
	}
	return "", &GenerationError{Skill: skill, Level: level, Err: ErrNoDistinctQuestion}
}

func (s *Skills) prompt(strat strategy, skill string, level types.Level, recentQuestions, recentAnswers []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Skill: %s\nLevel: %s\nGuidance: %s\n", skill, level, levelGuidance[level])

	switch strat {
	case strategyAdaptive:
		if ctx := lastN(recentAnswers, 2); ctx != "" {
			fmt.Fprintf(&b, "Candidate's last answers:\n%s\n", ctx)
		}
		b.WriteString("Silently assess the candidate's understanding from those answers, then ask ONE next question that either probes a weak area or raises the difficulty.\n")
		if topics := s.filter.Topics(recentQuestions, topicAvoidCount); len(topics) > 0 {
			fmt.Fprintf(&b, "Avoid these already covered topics: %s.\n", strings.Join(topics, ", "))
		}
	case strategyDiversity:
		fmt.Fprintf(&b, "Ask ONE question on a fresh subtopic of %s.\n", skill)
		if topics := s.filter.Topics(recentQuestions, topicAvoidCount); len(topics) > 0 {
			fmt.Fprintf(&b, "Do not touch these topics: %s.\n", strings.Join(topics, ", "))
		}
	case strategyDirect:
		if len(recentQuestions) > 0 {
			b.WriteString("Previously asked questions:\n")
			for _, q := range recentQuestions {
				b.WriteString("- " + q + "\n")
			}
			b.WriteString("Generate ONE new question clearly different from every question above.\n")
		} else {
			b.WriteString("Generate ONE question.\n")
		}
	}

	b.WriteString("Output exactly ONE question line. No lists, no intro text.")
	return b.String()
}

func levelTemplate(skill string, level types.Level) string {
	switch level {
	case types.LevelIntermediate:
		return fmt.Sprintf("What is a real-world use case for %s, and what are the key trade-offs?", skill)
	case types.LevelAdvanced:
		return fmt.Sprintf("How would you design a system that relies heavily on %s to stay reliable under high load?", skill)
	default:
		return fmt.Sprintf("How would you define %s in one sentence?", skill)
	}
}

func lastN(items []string, n int) string {
	if len(items) > n {
		items = items[len(items)-n:]
	}
	return strings.Join(items, "\n")
}
