package interview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/viva/internal/domain/selector"
	"github.com/okian/viva/internal/domain/types"
	"github.com/okian/viva/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// scriptedScorer returns queued scores in order regardless of phase.
type scriptedScorer struct {
	scores []float64
	i      int
}

func (s *scriptedScorer) next() types.Evaluation {
	score := s.scores[s.i%len(s.scores)]
	s.i++
	return types.Evaluation{Score: score, Feedback: "scripted"}
}

func (s *scriptedScorer) ScoreIntro(_ context.Context, _ string) types.Evaluation {
	return s.next()
}

func (s *scriptedScorer) ScoreProject(_ context.Context, _, _ string) types.Evaluation {
	return s.next()
}

func (s *scriptedScorer) ScoreSkill(_ context.Context, _, _ string, _ types.Level) types.Evaluation {
	return s.next()
}

// seqGen emits a fresh, mutually distinct question on every call.
type seqGen struct{ n int }

func (g *seqGen) Generate(_ context.Context, _ string) (string, error) {
	g.n++
	return fmt.Sprintf("Could you elaborate on subtopic%dalpha and subtopic%dbeta of area%d?", g.n, g.n, g.n), nil
}

type failGen struct{}

func (failGen) Generate(_ context.Context, _ string) (string, error) {
	return "", errors.New("provider down")
}

func newTestEngine(scores ...float64) *Engine {
	return NewEngine(
		WithScorer(&scriptedScorer{scores: scores}),
		WithProjectsSelector(selector.NewProjects(
			selector.WithProjectsRand(rand.New(rand.NewSource(1))))),
		WithSkillsSelector(selector.NewSkills(
			selector.WithSkillsGenerator(&seqGen{}),
			selector.WithSkillsRand(rand.New(rand.NewSource(1))))),
	)
}

func newSession(t *testing.T, p StartParams) *Session {
	t.Helper()
	s, err := NewSession(p)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

func answer(t *testing.T, e *Engine, s *Session, text string) Turn {
	t.Helper()
	turn, err := e.Answer(context.Background(), s, text)
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	return turn
}

func TestSessionValidation(t *testing.T) {
	Convey("Given session creation", t, func() {
		Convey("A missing candidate name is rejected", func() {
			_, err := NewSession(StartParams{CandidateName: "  "})
			So(errors.Is(err, ErrMissingCandidateName), ShouldBeTrue)
		})

		Convey("Target levels resolve case-insensitively and default to advanced", func() {
			s := newSession(t, StartParams{
				CandidateName: "Ada",
				Skills:        []string{"Python", "SQL"},
				Targets:       map[string]string{"Python": "Basic"},
			})
			So(s.TargetFor("python"), ShouldEqual, types.LevelBasic)
			So(s.TargetFor("PYTHON"), ShouldEqual, types.LevelBasic)
			So(s.TargetFor("sql"), ShouldEqual, types.LevelAdvanced)
		})

		Convey("The projects target clamps to [1,3] bounded by available projects", func() {
			none := newSession(t, StartParams{CandidateName: "Ada"})
			So(none.ProjectsTarget, ShouldEqual, 1)

			two := newSession(t, StartParams{CandidateName: "Ada", Projects: []types.Project{
				{Title: "Atlas"}, {Title: "Beacon"},
			}})
			So(two.ProjectsTarget, ShouldEqual, 2)

			five := newSession(t, StartParams{CandidateName: "Ada", Projects: []types.Project{
				{Title: "A"}, {Title: "B"}, {Title: "C"}, {Title: "D"}, {Title: "E"},
			}})
			So(five.ProjectsTarget, ShouldEqual, 3)
		})
	})
}

func TestScenarioBasicTargetClearsInTwo(t *testing.T) {
	Convey("Given a python skill with a basic target", t, func() {
		e := newTestEngine(50, 50, 35, 40)
		s := newSession(t, StartParams{
			CandidateName: "Ada",
			Skills:        []string{"python"},
			Targets:       map[string]string{"python": "basic"},
			Projects:      []types.Project{{Title: "Atlas", Summary: "ingestion"}},
		})
		So(e.Start(s), ShouldContainSubstring, "Ada")

		answer(t, e, s, "intro answer")
		turn := answer(t, e, s, "project answer")
		So(s.Phase, ShouldEqual, types.PhaseSkills)
		So(turn.Question, ShouldNotBeEmpty)

		Convey("Two passing answers finalize the level without a third question", func() {
			answer(t, e, s, "first skill answer")
			So(s.Counters, ShouldResemble, Counters{Asked: 1, Passes: 1, Fails: 0})

			turn := answer(t, e, s, "second skill answer")
			So(turn.Finished, ShouldBeTrue)
			So(turn.Question, ShouldBeEmpty)
			So(s.Phase, ShouldEqual, types.PhaseDone)

			out := s.Outcomes["python"][types.LevelBasic]
			So(out.Passed, ShouldBeTrue)
			So(out.Asked, ShouldEqual, 2)
			So(s.SkillIdx, ShouldEqual, 1)
			So(s.LevelIdx, ShouldEqual, 0)

			Convey("Clearing only basic never counts as target_reached", func() {
				b := ComputeResults(s).SkillsBreakdown["python"]
				So(b.HighestDifficulty, ShouldEqual, types.LevelBasic)
				So(b.PercentageScore, ShouldEqual, 100)
				So(b.TargetReached, ShouldBeFalse)
			})
		})
	})
}

func TestScenarioFailedBasicTruncatesSkill(t *testing.T) {
	Convey("Given an sql skill that fails basic twice", t, func() {
		e := newTestEngine(50, 50, 10, 5, 35)
		s := newSession(t, StartParams{
			CandidateName: "Ada",
			Skills:        []string{"sql", "go"},
			Projects:      []types.Project{{Title: "Atlas", Summary: "ingestion"}},
		})
		e.Start(s)
		answer(t, e, s, "intro answer")
		answer(t, e, s, "project answer")

		answer(t, e, s, "weak answer one")
		turn := answer(t, e, s, "weak answer two")

		Convey("The skill is truncated and the cursor moves to the next skill", func() {
			out := s.Outcomes["sql"][types.LevelBasic]
			So(out.Passed, ShouldBeFalse)
			So(out.Fails, ShouldEqual, 2)

			So(s.Phase, ShouldEqual, types.PhaseSkills)
			So(s.SkillIdx, ShouldEqual, 1)
			So(s.LevelIdx, ShouldEqual, 0)
			So(s.CurrentSkill(), ShouldEqual, "go")
			So(turn.Question, ShouldNotBeEmpty)

			Convey("Intermediate and advanced sql were never probed", func() {
				_, intermediate := s.Outcomes["sql"][types.LevelIntermediate]
				_, advanced := s.Outcomes["sql"][types.LevelAdvanced]
				So(intermediate, ShouldBeFalse)
				So(advanced, ShouldBeFalse)
			})
		})
	})
}

func TestScenarioFullLadderToDone(t *testing.T) {
	Convey("Given a single go skill targeting advanced", t, func() {
		e := newTestEngine(50, 50, 35, 40, 45, 50, 55, 60)
		s := newSession(t, StartParams{
			CandidateName: "Ada",
			Skills:        []string{"go"},
			Projects:      []types.Project{{Title: "Atlas", Summary: "ingestion"}},
		})
		e.Start(s)
		answer(t, e, s, "intro answer")
		answer(t, e, s, "project answer")

		var last Turn
		for i := 0; i < 6; i++ {
			So(s.Phase, ShouldEqual, types.PhaseSkills)
			last = answer(t, e, s, fmt.Sprintf("solid answer %d", i))
		}

		Convey("Clearing all three levels ends the interview", func() {
			So(last.Finished, ShouldBeTrue)
			So(s.Phase, ShouldEqual, types.PhaseDone)
			So(s.SkillIdx, ShouldEqual, 1)

			for _, lvl := range types.Levels() {
				So(s.Outcomes["go"][lvl].Passed, ShouldBeTrue)
			}
		})

		Convey("An answer after done only reports the terminal state", func() {
			before := len(s.Transcript)
			turn := answer(t, e, s, "anything")
			So(turn.Finished, ShouldBeTrue)
			So(len(s.Transcript), ShouldEqual, before)
		})

		Convey("The results aggregate the full ladder", func() {
			r := ComputeResults(s)
			b := r.SkillsBreakdown["go"]
			So(b.QuestionsAsked, ShouldEqual, 6)
			So(b.PercentageScore, ShouldEqual, 100)
			So(b.HighestDifficulty, ShouldEqual, types.LevelAdvanced)
			So(b.TargetReached, ShouldBeTrue)
			So(r.Summary.TotalQuestions, ShouldEqual, 8)
		})
	})
}

func TestScenarioProjectsTargetBoundsPhase(t *testing.T) {
	Convey("Given two resume projects", t, func() {
		e := newTestEngine(50, 50, 50)
		s := newSession(t, StartParams{
			CandidateName: "Ada",
			Skills:        []string{"go"},
			Projects: []types.Project{
				{Title: "Atlas", Summary: "ingestion"},
				{Title: "Beacon", Summary: "alerting"},
			},
		})
		e.Start(s)
		answer(t, e, s, "intro answer")
		So(s.Phase, ShouldEqual, types.PhaseProjects)

		Convey("Exactly two project questions are asked before skills", func() {
			turn := answer(t, e, s, "first project answer")
			So(s.Phase, ShouldEqual, types.PhaseProjects)
			So(turn.Question, ShouldNotBeEmpty)
			So(s.AskedProjects, ShouldResemble, []string{"Atlas", "Beacon"})

			answer(t, e, s, "second project answer")
			So(s.Phase, ShouldEqual, types.PhaseSkills)
			So(s.ProjectsAsked, ShouldEqual, 2)
		})
	})
}

func TestMixedLevelCountersInvariant(t *testing.T) {
	Convey("Given a level with a fail between two passes", t, func() {
		e := newTestEngine(50, 50, 35, 10, 40)
		s := newSession(t, StartParams{
			CandidateName: "Ada",
			Skills:        []string{"go"},
			Targets:       map[string]string{"go": "basic"},
			Projects:      []types.Project{{Title: "Atlas", Summary: "ingestion"}},
		})
		e.Start(s)
		answer(t, e, s, "intro answer")
		answer(t, e, s, "project answer")

		answer(t, e, s, "pass")
		So(s.Counters.Asked, ShouldEqual, s.Counters.Passes+s.Counters.Fails)

		answer(t, e, s, "fail")
		So(s.Counters, ShouldResemble, Counters{Asked: 2, Passes: 1, Fails: 1})

		turn := answer(t, e, s, "pass again")

		Convey("The third answer completes the level with asked=3", func() {
			out := s.Outcomes["go"][types.LevelBasic]
			So(out.Asked, ShouldEqual, 3)
			So(out.Passes, ShouldEqual, 2)
			So(out.Fails, ShouldEqual, 1)
			So(out.Passed, ShouldBeTrue)
			So(turn.Finished, ShouldBeTrue)
		})
	})
}

func TestSkillAnswerRecordsAskedSkillAndLevel(t *testing.T) {
	Convey("Given a session waiting on a skills question", t, func() {
		e := newTestEngine(50, 50, 50)
		s := newSession(t, StartParams{
			CandidateName: "Ada",
			Skills:        []string{"go", "sql"},
			Projects:      []types.Project{{Title: "Atlas", Summary: "ingestion"}},
		})
		e.Start(s)
		answer(t, e, s, "intro answer")
		answer(t, e, s, "project answer")

		Convey("The pending pair matches the cursor after generation", func() {
			So(s.PendingSkill, ShouldEqual, "go")
			So(s.PendingLevel, ShouldEqual, types.LevelBasic)
		})

		Convey("Scoring attributes the answer to the question's skill and level", func() {
			s.PendingSkill = "sql"
			s.PendingLevel = types.LevelIntermediate

			answer(t, e, s, "skill answer")

			entry := s.Transcript[len(s.Transcript)-1]
			So(entry.Skill, ShouldEqual, "sql")
			So(entry.Level, ShouldEqual, types.LevelIntermediate)
		})
	})
}

func TestGenerationFailureLeavesSessionUntouched(t *testing.T) {
	Convey("Given a skills selector whose oracle is down", t, func() {
		broken := NewEngine(
			WithScorer(&scriptedScorer{scores: []float64{50}}),
			WithProjectsSelector(selector.NewProjects(
				selector.WithProjectsRand(rand.New(rand.NewSource(1))))),
			WithSkillsSelector(selector.NewSkills(
				selector.WithSkillsGenerator(failGen{}),
				selector.WithSkillsRetries(1),
				selector.WithSkillsRand(rand.New(rand.NewSource(1))))),
		)
		s := newSession(t, StartParams{
			CandidateName: "Ada",
			Skills:        []string{"go"},
			Projects:      []types.Project{{Title: "Atlas", Summary: "ingestion"}},
		})
		broken.Start(s)
		answer(t, broken, s, "intro answer")

		snapshot := *s.Clone()
		_, err := broken.Answer(context.Background(), s, "project answer")

		Convey("The error is a retryable generation error", func() {
			var genErr *selector.GenerationError
			So(errors.As(err, &genErr), ShouldBeTrue)
			So(genErr.Skill, ShouldEqual, "go")
			So(genErr.Level, ShouldEqual, types.LevelBasic)
		})

		Convey("Phase, counters and transcript are unchanged", func() {
			So(s.Phase, ShouldEqual, snapshot.Phase)
			So(s.ProjectsAsked, ShouldEqual, snapshot.ProjectsAsked)
			So(len(s.Transcript), ShouldEqual, len(snapshot.Transcript))
			So(s.Counters, ShouldResemble, snapshot.Counters)
		})

		Convey("Retrying the same answer with a healthy oracle succeeds", func() {
			healthy := NewEngine(
				WithScorer(&scriptedScorer{scores: []float64{50}}),
				WithProjectsSelector(selector.NewProjects(
					selector.WithProjectsRand(rand.New(rand.NewSource(1))))),
				WithSkillsSelector(selector.NewSkills(
					selector.WithSkillsGenerator(&seqGen{}),
					selector.WithSkillsRand(rand.New(rand.NewSource(1))))),
			)
			turn, err := healthy.Answer(context.Background(), s, "project answer")
			So(err, ShouldBeNil)
			So(turn.Question, ShouldNotBeEmpty)
			So(s.Phase, ShouldEqual, types.PhaseSkills)
		})
	})
}

func TestSessionRoundTrip(t *testing.T) {
	Convey("Given a session mid-skills", t, func() {
		e := newTestEngine(50, 50, 35, 10)
		s := newSession(t, StartParams{
			CandidateName: "Ada",
			Role:          "Backend Engineer",
			Skills:        []string{"go", "sql"},
			Projects:      []types.Project{{Title: "Atlas", Summary: "ingestion"}},
		})
		e.Start(s)
		answer(t, e, s, "intro answer")
		answer(t, e, s, "project answer")
		answer(t, e, s, "skill answer one")
		answer(t, e, s, "skill answer two")

		Convey("Serializing and reloading reproduces the state machine", func() {
			raw, err := json.Marshal(s)
			So(err, ShouldBeNil)

			var loaded Session
			So(json.Unmarshal(raw, &loaded), ShouldBeNil)

			So(loaded.Phase, ShouldEqual, s.Phase)
			So(loaded.SkillIdx, ShouldEqual, s.SkillIdx)
			So(loaded.LevelIdx, ShouldEqual, s.LevelIdx)
			So(loaded.Counters, ShouldResemble, s.Counters)
			So(loaded.Transcript, ShouldResemble, s.Transcript)
			So(loaded.Outcomes, ShouldResemble, s.Outcomes)
			So(loaded.AskedProjects, ShouldResemble, s.AskedProjects)
			So(loaded.LastQuestion, ShouldEqual, s.LastQuestion)
			So(loaded.PendingSkill, ShouldEqual, s.PendingSkill)
			So(loaded.PendingLevel, ShouldEqual, s.PendingLevel)
		})
	})
}
