// Package types contains common types used across the application.
package types

import "strings"

// Phase identifies a macro-stage of an interview. The set is closed:
// an interview only ever moves forward through
// introduction -> projects -> skills -> done.
type Phase string

// Interview phases.
const (
	PhaseIntroduction Phase = "introduction"
	PhaseProjects     Phase = "projects"
	PhaseSkills       Phase = "skills"
	PhaseDone         Phase = "done"
)

// Valid reports whether p is one of the known phases.
func (p Phase) Valid() bool {
	switch p {
	case PhaseIntroduction, PhaseProjects, PhaseSkills, PhaseDone:
		return true
	}
	return false
}

// Level is a difficulty tier within the skills phase.
type Level string

// Skill difficulty levels, in ascending order.
const (
	LevelBasic        Level = "basic"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Levels returns the difficulty ladder in ascending order.
func Levels() []Level {
	return []Level{LevelBasic, LevelIntermediate, LevelAdvanced}
}

// ParseLevel normalizes a level string; unknown values map to LevelAdvanced,
// matching the default target when a recruiter leaves a skill unspecified.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(LevelBasic):
		return LevelBasic
	case string(LevelIntermediate):
		return LevelIntermediate
	default:
		return LevelAdvanced
	}
}

// Project is one resume project summary used to seed project questions.
type Project struct {
	Title   string `json:"project_title"`
	Summary string `json:"summary"`
}

// TranscriptEntry is one scored question/answer exchange. Entries are
// append-only; skill and level are stored explicitly rather than encoded
// into the question text.
type TranscriptEntry struct {
	Phase    Phase   `json:"phase"`
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback,omitempty"`
	Skill    string  `json:"skill,omitempty"`
	Level    Level   `json:"level,omitempty"`
}

// LevelOutcome records the finalized result of one (skill, level) pair.
// Written exactly once when the level completes.
type LevelOutcome struct {
	Passed   bool   `json:"passed"`
	Passes   int    `json:"passes"`
	Fails    int    `json:"fails"`
	Asked    int    `json:"asked"`
	Feedback string `json:"feedback,omitempty"`
}

// SkillBreakdown is the per-skill aggregate exposed in results.
type SkillBreakdown struct {
	QuestionsAsked    int     `json:"questions_asked"`
	PercentageScore   float64 `json:"percentage_score"`
	HighestDifficulty Level   `json:"highest_difficulty"`
	TargetReached     bool    `json:"target_reached"`
}

// Evaluation is the per-answer score surfaced to the caller.
type Evaluation struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback,omitempty"`
}
