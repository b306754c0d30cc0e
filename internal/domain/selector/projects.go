package selector

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/okian/viva/internal/domain/distinct"
	"github.com/okian/viva/internal/domain/types"
	"github.com/okian/viva/pkg/logger"
)

// Generator is the text-generation contract the selectors depend on.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Rotating emphasis areas keeping project questions implementation-centric
// and varied across candidates.
var focusAreas = []string{
	"the way you implemented a core feature",
	"how data flows between components",
	"an API endpoint you designed",
	"a specific data model decision",
	"how you handled state or workflow progression",
	"a deployment or environment setup step",
	"a testing approach (unit/integration) without mentioning observability",
	"a performance tweak (avoid repeating 'performance' every time)",
	"a library or tool selection and rationale",
	"an edge case you discovered and solved",
}

// Titles too generic to anchor a question on.
var genericTitles = map[string]struct{}{
	"": {}, "project": {}, "your project": {}, "n/a": {}, "na": {},
}

// Projects selects the next project to probe and produces one
// implementation-focused question about it. A deterministic fallback bank
// guarantees a question even when the oracle is down.
type Projects struct {
	gen Generator
	rng *rand.Rand
	log logger.Logger
}

// ProjectsOption applies a configuration option to the Projects selector.
type ProjectsOption func(*Projects)

// WithProjectsGenerator sets the oracle used for question generation.
func WithProjectsGenerator(g Generator) ProjectsOption {
	return func(p *Projects) {
		p.gen = g
	}
}

// WithProjectsRand sets the random source, used by tests for determinism.
func WithProjectsRand(r *rand.Rand) ProjectsOption {
	return func(p *Projects) {
		if r != nil {
			p.rng = r
		}
	}
}

// WithProjectsLogger sets a custom logger.
func WithProjectsLogger(l logger.Logger) ProjectsOption {
	return func(p *Projects) {
		if l != nil {
			p.log = l
		}
	}
}

// NewProjects creates a Projects selector with configuration options.
func NewProjects(opts ...ProjectsOption) *Projects {
	p := &Projects{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Pick chooses the target project: first one whose title is not in asked,
// else round-robin over all, else a pseudo-project synthesized from recent
// answers when the resume yielded no projects.
func (p *Projects) Pick(projects []types.Project, asked map[string]struct{}, recentAnswers []string) types.Project {
	if len(projects) == 0 {
		return types.Project{Summary: deriveTopic(strings.Join(recentAnswers, " "), 6)}
	}
	for _, proj := range projects {
		if _, ok := asked[proj.Title]; !ok {
			return proj
		}
	}
	return projects[len(asked)%len(projects)]
}

// Question generates one question about the given project, grounded on the
// last two answers of the current phase.
func (p *Projects) Question(ctx context.Context, project types.Project, recentAnswers []string) string {
	title := strings.TrimSpace(project.Title)
	summary := strings.TrimSpace(project.Summary)
	if summary == "" {
		summary = "No summary available"
	}

	_, generic := genericTitles[strings.ToLower(title)]
	displayTitle := title
	if generic {
		displayTitle = deriveTopic(summary, 6)
	}

	if p.gen != nil {
		if q := p.fromOracle(ctx, title, displayTitle, summary, generic, recentAnswers); q != "" {
			return q
		}
	}

	return p.fallback(title, displayTitle, summary, generic)
}

func (p *Projects) fromOracle(ctx context.Context, title, displayTitle, summary string, generic bool, recentAnswers []string) string {
	prevCtx := "None"
	if len(recentAnswers) > 0 {
		tail := recentAnswers
		if len(tail) > 2 {
			tail = tail[len(tail)-2:]
		}
		prevCtx = strings.Join(tail, "\n")
	}

	promptTitle := title
	if promptTitle == "" {
		promptTitle = "[unknown]"
	}
	focus := focusAreas[p.rng.Intn(len(focusAreas))]

	prompt := fmt.Sprintf(`You are an AI interviewer. Generate ONE concise implementation-focused question about this project.
It MUST reference the project title or topic and be moderate difficulty.

Project title: %s
Summary: %s
Recent responses:
%s

Focus area: %s

Rules:
- Center on practical implementation ("how did you", "walk me through", "which tools").
- Avoid deep theory, security/integrity/consistency themes unless the summary explicitly mentions them.
- No broad scale/system design hypotheticals.
- Output exactly ONE question line. No lists, no intro text.`, promptTitle, summary, prevCtx, focus)

	raw, err := p.gen.Generate(ctx, prompt)
	if err != nil {
		if p.log != nil {
			p.log.Warn(ctx, "project question generation failed, using fallback bank",
				logger.String("project", displayTitle), logger.Error(err))
		}
		return ""
	}

	line := distinct.QuestionLine(raw)
	if line == "" {
		return ""
	}

	// Anchor the question on the real project when the oracle did not
	// mention it verbatim.
	if title != "" && strings.Contains(strings.ToLower(line), strings.ToLower(title)) {
		return distinct.Normalize(line)
	}
	return distinct.Normalize(p.prefix(title, displayTitle, generic) + lowerFirst(strings.TrimLeft(line, `"'`)))
}

func (p *Projects) fallback(title, displayTitle, summary string, generic bool) string {
	prefix := p.prefix(title, displayTitle, generic)

	topic := deriveTopic(summary, 6)
	if topic == "" {
		topic = displayTitle
	}
	if topic == "" {
		topic = "this project"
	}

	bank := []string{
		prefix + "how did you implement the core feature around " + topic + "?",
		prefix + "which tools or libraries did you choose for " + topic + ", and why?",
		prefix + "can you walk me through the architecture you used for " + topic + "?",
		prefix + "how did you deploy and run " + topic + " in your environment?",
		prefix + "how did you test " + topic + " to ensure it worked as expected?",
		prefix + "what performance bottleneck did you encounter in " + topic + ", and how did you fix it?",
	}
	return distinct.Normalize(bank[p.rng.Intn(len(bank))])
}

func (p *Projects) prefix(title, displayTitle string, generic bool) string {
	if title != "" && !generic {
		return "In " + title + ", "
	}
	if displayTitle == "" {
		displayTitle = "recent work"
	}
	return "Regarding your work on " + displayTitle + ", "
}

// Noise tokens never useful as topic seeds.
var topicNoise = map[string]struct{}{
	"audio": {}, "transcription": {}, "unavailable": {}, "received": {}, "kb": {},
}

// Leading tokens too generic to open a topic.
var genericLeads = map[string]struct{}{
	"worked": {}, "working": {}, "work": {}, "project": {}, "projects": {}, "recent": {},
}

// SanitizeTopic strips bracketed placeholders, noise tokens and words
// shorter than three characters, then drops generic leading tokens.
func SanitizeTopic(text string) string {
	var b strings.Builder
	depth := 0
	for _, r := range text {
		switch {
		case r == '[':
			depth++
		case r == ']' && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}

	words := make([]string, 0, 8)
	for _, w := range strings.Fields(b.String()) {
		w = strings.Trim(w, ",.;:")
		if len(w) < 3 {
			continue
		}
		if _, ok := topicNoise[strings.ToLower(w)]; ok {
			continue
		}
		words = append(words, w)
	}

	for len(words) > 0 {
		if _, ok := genericLeads[strings.ToLower(words[0])]; !ok {
			break
		}
		words = words[1:]
	}

	return strings.Join(words, " ")
}

// deriveTopic reduces free text to at most maxWords content words, falling
// back to "recent work" when nothing survives sanitization.
func deriveTopic(text string, maxWords int) string {
	s := SanitizeTopic(text)
	if s == "" {
		return "recent work"
	}
	words := strings.Fields(s)
	if len(words) > maxWords {
		words = words[:maxWords]
	}
	if len(words) == 0 {
		return "recent work"
	}
	return strings.Join(words, " ")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if unicode.IsUpper(r[0]) {
		r[0] = unicode.ToLower(r[0])
	}
	return string(r)
}
