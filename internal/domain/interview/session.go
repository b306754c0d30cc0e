// Package interview holds the session state and the phase state machine
// that decides what happens after every answer.
package interview

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/viva/internal/domain/types"
)

// Counters track progress within the current (skill, level) pair. They are
// reset on every cursor move.
type Counters struct {
	Asked  int `json:"asked"`
	Passes int `json:"passes"`
	Fails  int `json:"fails"`
}

// Session is the full state of one interview. It serializes to JSON and a
// reload reproduces identical phase, cursor, counters and transcript.
type Session struct {
	ID            string          `json:"id"`
	CandidateName string          `json:"candidate_name"`
	Role          string          `json:"role"`
	Projects      []types.Project `json:"projects"`
	Skills        []string        `json:"skills"`

	// Targets maps lowercased skill names to the level at which probing
	// stops. Missing entries default to advanced.
	Targets map[string]types.Level `json:"targets"`

	Phase      types.Phase             `json:"phase"`
	Transcript []types.TranscriptEntry `json:"transcript"`

	// Outcomes records one finalized result per (skill, level); a
	// finalized level never receives further counter updates.
	Outcomes map[string]map[types.Level]types.LevelOutcome `json:"outcomes"`

	AskedProjects  []string `json:"asked_projects"`
	ProjectsAsked  int      `json:"projects_asked"`
	ProjectsTarget int      `json:"projects_target"`

	SkillIdx int      `json:"skill_idx"`
	LevelIdx int      `json:"level_idx"`
	Counters Counters `json:"counters"`

	// LastQuestion is the question currently awaiting an answer, with the
	// skill/level it was generated for when in the skills phase.
	LastQuestion string      `json:"last_question"`
	PendingSkill string      `json:"pending_skill,omitempty"`
	PendingLevel types.Level `json:"pending_level,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StartParams carries everything needed to open a session.
type StartParams struct {
	CandidateName string
	Role          string
	Skills        []string
	Targets       map[string]string
	Projects      []types.Project
}

// NewSession validates the parameters and builds a session in the
// introduction phase. The first question still has to be issued by the
// engine.
func NewSession(p StartParams) (*Session, error) {
	name := strings.TrimSpace(p.CandidateName)
	if name == "" {
		return nil, ErrMissingCandidateName
	}

	skills := make([]string, 0, len(p.Skills))
	for _, s := range p.Skills {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}

	targets := make(map[string]types.Level, len(p.Targets))
	for skill, lvl := range p.Targets {
		targets[strings.ToLower(strings.TrimSpace(skill))] = types.ParseLevel(lvl)
	}

	now := time.Now().UTC()
	return &Session{
		ID:             uuid.NewString(),
		CandidateName:  name,
		Role:           strings.TrimSpace(p.Role),
		Projects:       append([]types.Project(nil), p.Projects...),
		Skills:         skills,
		Targets:        targets,
		Phase:          types.PhaseIntroduction,
		Outcomes:       make(map[string]map[types.Level]types.LevelOutcome),
		ProjectsTarget: projectsTarget(len(p.Projects)),
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// projectsTarget clamps the number of project questions to [1,3], bounded
// by the available project count when projects exist.
func projectsTarget(numProjects int) int {
	t := numProjects
	if t > 3 {
		t = 3
	}
	if t < 1 {
		t = 1
	}
	return t
}

// TargetFor resolves the per-skill target level, defaulting to advanced.
// Lookup is case-insensitive.
func (s *Session) TargetFor(skill string) types.Level {
	if lvl, ok := s.Targets[strings.ToLower(skill)]; ok {
		return lvl
	}
	return types.LevelAdvanced
}

// CurrentSkill returns the skill under the cursor, or "" past the end.
func (s *Session) CurrentSkill() string {
	if s.SkillIdx < 0 || s.SkillIdx >= len(s.Skills) {
		return ""
	}
	return s.Skills[s.SkillIdx]
}

// CurrentLevel returns the level under the cursor.
func (s *Session) CurrentLevel() types.Level {
	levels := types.Levels()
	if s.LevelIdx < 0 || s.LevelIdx >= len(levels) {
		return types.LevelBasic
	}
	return levels[s.LevelIdx]
}

// Done reports whether the session reached the terminal phase.
func (s *Session) Done() bool {
	return s.Phase == types.PhaseDone
}

// Clone deep-copies the session. The engine stages every answer on a clone
// and commits only when the full transition, including question
// generation, succeeded.
func (s *Session) Clone() *Session {
	c := *s
	c.Projects = append([]types.Project(nil), s.Projects...)
	c.Skills = append([]string(nil), s.Skills...)
	c.Transcript = append([]types.TranscriptEntry(nil), s.Transcript...)
	c.AskedProjects = append([]string(nil), s.AskedProjects...)

	c.Targets = make(map[string]types.Level, len(s.Targets))
	for k, v := range s.Targets {
		c.Targets[k] = v
	}

	c.Outcomes = make(map[string]map[types.Level]types.LevelOutcome, len(s.Outcomes))
	for skill, levels := range s.Outcomes {
		inner := make(map[types.Level]types.LevelOutcome, len(levels))
		for lvl, out := range levels {
			inner[lvl] = out
		}
		c.Outcomes[skill] = inner
	}
	return &c
}

// askedSet converts the asked-projects list into a lookup set.
func (s *Session) askedSet() map[string]struct{} {
	set := make(map[string]struct{}, len(s.AskedProjects))
	for _, t := range s.AskedProjects {
		set[t] = struct{}{}
	}
	return set
}

// markProjectAsked records a project title as used, once.
func (s *Session) markProjectAsked(title string) {
	if title == "" {
		return
	}
	for _, t := range s.AskedProjects {
		if t == title {
			return
		}
	}
	s.AskedProjects = append(s.AskedProjects, title)
}

// recordOutcome finalizes the (skill, level) result. Finalization happens
// at most once; a second call is ignored.
func (s *Session) recordOutcome(skill string, level types.Level, out types.LevelOutcome) {
	levels, ok := s.Outcomes[skill]
	if !ok {
		levels = make(map[types.Level]types.LevelOutcome)
		s.Outcomes[skill] = levels
	}
	if _, done := levels[level]; done {
		return
	}
	levels[level] = out
}

// RecentQuestions returns the questions of the last n transcript entries
// in the given phase, oldest first.
func (s *Session) RecentQuestions(phase types.Phase, n int) []string {
	return s.phaseQuestions(phase, n)
}

// phaseQuestions returns the questions of the last n transcript entries in
// the given phase, oldest first.
func (s *Session) phaseQuestions(phase types.Phase, n int) []string {
	return s.phaseField(phase, n, func(e types.TranscriptEntry) string { return e.Question })
}

// phaseAnswers returns the answers of the last n transcript entries in the
// given phase, oldest first.
func (s *Session) phaseAnswers(phase types.Phase, n int) []string {
	return s.phaseField(phase, n, func(e types.TranscriptEntry) string { return e.Answer })
}

func (s *Session) phaseField(phase types.Phase, n int, pick func(types.TranscriptEntry) string) []string {
	var out []string
	for _, e := range s.Transcript {
		if e.Phase == phase {
			out = append(out, pick(e))
		}
	}
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}
