package interview

import "github.com/okian/viva/internal/domain/types"

// Summary is the session-level header of a results payload.
type Summary struct {
	CandidateName  string `json:"candidate_name"`
	Role           string `json:"role"`
	TotalQuestions int    `json:"total_questions"`
}

// IndexedEntry is a transcript entry with its position in the interview.
type IndexedEntry struct {
	Index int `json:"index"`
	types.TranscriptEntry
}

// Results is the aggregated outcome of a session.
type Results struct {
	Summary         Summary                         `json:"summary"`
	Evaluations     []IndexedEntry                  `json:"evaluations"`
	SkillsBreakdown map[string]types.SkillBreakdown `json:"skills_breakdown"`
}

// ComputeResults aggregates the transcript and the per-level outcomes into
// per-skill breakdowns. The percentage denominator is guarded so a skill
// with no recorded passes or fails reports 0, never a division error.
func ComputeResults(s *Session) Results {
	evaluations := make([]IndexedEntry, 0, len(s.Transcript))
	for i, entry := range s.Transcript {
		evaluations = append(evaluations, IndexedEntry{Index: i, TranscriptEntry: entry})
	}

	breakdown := make(map[string]types.SkillBreakdown, len(s.Outcomes))
	for skill, levels := range s.Outcomes {
		var asked, passes, fails int
		highest := types.LevelBasic

		for _, lvl := range types.Levels() {
			out, ok := levels[lvl]
			if !ok {
				continue
			}
			asked += out.Asked
			passes += out.Passes
			fails += out.Fails
			highest = lvl
		}

		// target_reached reports full mastery: only a passed advanced level
		// counts, regardless of the skill's configured probing target.
		targetReached := false
		if out, ok := levels[types.LevelAdvanced]; ok && out.Passed {
			targetReached = true
		}

		denom := passes + fails
		if denom == 0 {
			denom = 1
		}

		breakdown[skill] = types.SkillBreakdown{
			QuestionsAsked:    asked,
			PercentageScore:   float64(passes) / float64(denom) * 100,
			HighestDifficulty: highest,
			TargetReached:     targetReached,
		}
	}

	return Results{
		Summary: Summary{
			CandidateName:  s.CandidateName,
			Role:           s.Role,
			TotalQuestions: len(s.Transcript),
		},
		Evaluations:     evaluations,
		SkillsBreakdown: breakdown,
	}
}
