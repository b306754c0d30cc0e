package report

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/viva/internal/domain/interview"
	"github.com/okian/viva/internal/domain/types"
)

func TestRender(t *testing.T) {
	Convey("Given a session with transcript and outcomes", t, func() {
		s, err := interview.NewSession(interview.StartParams{
			CandidateName: "Ada",
			Role:          "Backend Engineer",
			Skills:        []string{"go"},
			Projects:      []types.Project{{Title: "Atlas", Summary: "ingestion pipeline"}},
		})
		So(err, ShouldBeNil)

		s.Transcript = []types.TranscriptEntry{
			{Phase: types.PhaseIntroduction, Question: "Hi Ada! Tell me about yourself?", Answer: "I build services.", Score: 55, Feedback: "Good: experience."},
			{Phase: types.PhaseSkills, Question: "What is a goroutine?", Answer: "A lightweight thread.", Score: 42, Skill: "go", Level: types.LevelBasic},
		}
		s.Outcomes = map[string]map[types.Level]types.LevelOutcome{
			"go": {
				types.LevelBasic: {Passed: true, Passes: 2, Fails: 0, Asked: 2, Feedback: "Passed 2/2 at basic."},
			},
		}

		out := Render(s, time.Date(2026, 8, 26, 14, 30, 0, 0, time.UTC))

		Convey("The header names the candidate, role and date", func() {
			So(out, ShouldContainSubstring, "Candidate: Ada\n")
			So(out, ShouldContainSubstring, "Role: Backend Engineer\n")
			So(out, ShouldContainSubstring, "Date: 2026-08-26 14:30\n")
		})

		Convey("Projects and phase transcripts are listed", func() {
			So(out, ShouldContainSubstring, "- Atlas: ingestion pipeline")
			So(out, ShouldContainSubstring, "Introduction\nQuestion 1: Hi Ada! Tell me about yourself?")
			So(out, ShouldContainSubstring, "Skills\nQuestion 1: What is a goroutine?")
			So(out, ShouldContainSubstring, "Score: 42")
		})

		Convey("The skills summary reports per-level verdicts", func() {
			So(out, ShouldContainSubstring, "Skills Summary:\ngo\n  - basic: Passed (passes=2, fails=0, asked=2)")
			So(out, ShouldContainSubstring, "Feedback: Passed 2/2 at basic.")
		})

		Convey("Empty phases are omitted", func() {
			So(out, ShouldNotContainSubstring, "Projects\nQuestion")
		})
	})
}
