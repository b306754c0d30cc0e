package app

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/viva/internal/adapters/oracle"
	"github.com/okian/viva/internal/adapters/persistence"
	"github.com/okian/viva/internal/config"
	"github.com/okian/viva/internal/domain/types"
	"github.com/okian/viva/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type stubOracle struct {
	out string
	err error
}

func (s *stubOracle) Generate(context.Context, string) (string, error) {
	return s.out, s.err
}

func (s *stubOracle) Model() string { return "stub-model" }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.New()
	cfg.StorageDir = t.TempDir()
	return cfg
}

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	svc, err := New(context.Background(), testConfig(t), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestStartSession(t *testing.T) {
	Convey("Given a service without an oracle", t, func() {
		svc := newTestService(t)
		ctx := context.Background()

		Convey("Starting a valid session returns an id and a greeting", func() {
			created, err := svc.StartSession(ctx, StartRequest{
				CandidateName: "Dana",
				Role:          "Backend Engineer",
				Skills:        []string{"go"},
				Projects:      []types.Project{{Title: "Atlas", Summary: "Billing pipeline."}},
			})
			So(err, ShouldBeNil)
			So(created.SessionID, ShouldNotBeEmpty)
			So(created.Question, ShouldContainSubstring, "Dana")

			Convey("And the session is immediately retrievable", func() {
				sess, err := svc.Session(ctx, created.SessionID)
				So(err, ShouldBeNil)
				So(sess.Phase, ShouldEqual, types.PhaseIntroduction)
			})
		})

		Convey("A missing candidate name fails validation", func() {
			_, err := svc.StartSession(ctx, StartRequest{Skills: []string{"go"}})
			So(errors.Is(err, ErrInvalidRequest), ShouldBeTrue)
		})
	})
}

func TestSubmitAnswer(t *testing.T) {
	Convey("Given a started session", t, func() {
		svc := newTestService(t)
		ctx := context.Background()

		created, err := svc.StartSession(ctx, StartRequest{
			CandidateName: "Dana",
			Skills:        []string{"go"},
			Projects:      []types.Project{{Title: "Atlas", Summary: "Billing pipeline."}},
		})
		So(err, ShouldBeNil)

		Convey("An answer advances the session into the projects phase", func() {
			turn, err := svc.SubmitAnswer(ctx, created.SessionID,
				"I have 5 years of experience building Go and Kubernetes services.")
			So(err, ShouldBeNil)
			So(turn.Question, ShouldNotBeEmpty)
			So(turn.Finished, ShouldBeFalse)

			sess, err := svc.Session(ctx, created.SessionID)
			So(err, ShouldBeNil)
			So(sess.Phase, ShouldEqual, types.PhaseProjects)
			So(len(sess.Transcript), ShouldEqual, 1)
		})

		Convey("An unknown session id yields ErrSessionNotFound", func() {
			_, err := svc.SubmitAnswer(ctx, "no-such-session", "hello")
			So(errors.Is(err, ErrSessionNotFound), ShouldBeTrue)
		})
	})
}

func TestSessionRehydration(t *testing.T) {
	Convey("Given a session persisted to the store", t, func() {
		svc := newTestService(t)
		ctx := context.Background()

		created, err := svc.StartSession(ctx, StartRequest{
			CandidateName: "Dana",
			Skills:        []string{"go"},
		})
		So(err, ShouldBeNil)

		Convey("When the registry entry expires", func() {
			svc.sessions.Delete(created.SessionID)

			Convey("The session is rehydrated from the store", func() {
				sess, err := svc.Session(ctx, created.SessionID)
				So(err, ShouldBeNil)
				So(sess.ID, ShouldEqual, created.SessionID)
				So(sess.CandidateName, ShouldEqual, "Dana")
			})
		})
	})
}

func TestResultsAndReport(t *testing.T) {
	Convey("Given a session with one answer", t, func() {
		svc := newTestService(t)
		ctx := context.Background()

		created, err := svc.StartSession(ctx, StartRequest{
			CandidateName: "Dana",
			Role:          "Backend Engineer",
			Skills:        []string{"go"},
		})
		So(err, ShouldBeNil)

		_, err = svc.SubmitAnswer(ctx, created.SessionID,
			"I have 5 years of experience building Go services.")
		So(err, ShouldBeNil)

		Convey("Results aggregate the transcript", func() {
			res, err := svc.Results(ctx, created.SessionID)
			So(err, ShouldBeNil)
			So(res.Summary.CandidateName, ShouldEqual, "Dana")
			So(res.Summary.TotalQuestions, ShouldEqual, 1)
		})

		Convey("The report renders the header", func() {
			text, err := svc.Report(ctx, created.SessionID)
			So(err, ShouldBeNil)
			So(text, ShouldContainSubstring, "Candidate: Dana")
			So(text, ShouldContainSubstring, "Role: Backend Engineer")
		})
	})
}

func TestOracleHealth(t *testing.T) {
	Convey("Without a configured provider the health check fails", t, func() {
		svc := newTestService(t)
		err := svc.OracleHealth(context.Background())
		So(errors.Is(err, oracle.ErrNotConfigured), ShouldBeTrue)
	})

	Convey("With a responsive provider the health check passes", t, func() {
		svc := newTestService(t, WithOracle(oracle.Wrap(&stubOracle{out: "OK"})))
		So(svc.OracleHealth(context.Background()), ShouldBeNil)
	})
}

func TestGetStats(t *testing.T) {
	Convey("Stats report the live session count and provider", t, func() {
		svc := newTestService(t)
		ctx := context.Background()

		_, err := svc.StartSession(ctx, StartRequest{CandidateName: "Dana"})
		So(err, ShouldBeNil)

		stats := svc.GetStats(ctx)
		So(stats.ActiveSessions, ShouldEqual, 1)
		So(stats.OracleProvider, ShouldEqual, "none")
	})
}

func TestResumeProjectExtraction(t *testing.T) {
	Convey("Given an oracle that returns a project list", t, func() {
		raw := "Here you go:\n[{\"project_title\": \"Atlas\", \"summary\": \"Billing pipeline.\"}," +
			" {\"project_title\": \"Beacon\", \"summary\": \"Alerting service.\"}]"
		svc := newTestService(t, WithOracle(oracle.Wrap(&stubOracle{out: raw})))
		ctx := context.Background()

		Convey("Resume text seeds the session projects", func() {
			created, err := svc.StartSession(ctx, StartRequest{
				CandidateName: "Dana",
				ResumeText:    "Built Atlas, a billing pipeline. Built Beacon, an alerting service.",
			})
			So(err, ShouldBeNil)

			sess, err := svc.Session(ctx, created.SessionID)
			So(err, ShouldBeNil)
			So(len(sess.Projects), ShouldEqual, 2)
			So(sess.Projects[0].Title, ShouldEqual, "Atlas")
		})

		Convey("Explicit projects win over resume text", func() {
			created, err := svc.StartSession(ctx, StartRequest{
				CandidateName: "Dana",
				Projects:      []types.Project{{Title: "Custom", Summary: "Hand-picked."}},
				ResumeText:    "Ignored.",
			})
			So(err, ShouldBeNil)

			sess, err := svc.Session(ctx, created.SessionID)
			So(err, ShouldBeNil)
			So(len(sess.Projects), ShouldEqual, 1)
			So(sess.Projects[0].Title, ShouldEqual, "Custom")
		})
	})

	Convey("Given an oracle that fails, the session starts without projects", t, func() {
		svc := newTestService(t, WithOracle(oracle.Wrap(&stubOracle{err: errors.New("boom")})))
		created, err := svc.StartSession(context.Background(), StartRequest{
			CandidateName: "Dana",
			ResumeText:    "Some resume.",
		})
		So(err, ShouldBeNil)

		sess, err := svc.Session(context.Background(), created.SessionID)
		So(err, ShouldBeNil)
		So(len(sess.Projects), ShouldEqual, 0)
	})
}

func TestParseProjects(t *testing.T) {
	Convey("parseProjects tolerates prose around the array", t, func() {
		got, err := parseProjects("Sure! [{\"project_title\": \"A\", \"summary\": \"B\"}] Hope that helps.")
		So(err, ShouldBeNil)
		So(len(got), ShouldEqual, 1)
		So(got[0].Title, ShouldEqual, "A")
	})

	Convey("parseProjects drops blank items", t, func() {
		got, err := parseProjects("[{\"project_title\": \"  \", \"summary\": \"\"}, {\"project_title\": \"A\", \"summary\": \"B\"}]")
		So(err, ShouldBeNil)
		So(len(got), ShouldEqual, 1)
	})

	Convey("parseProjects rejects output without an array", t, func() {
		_, err := parseProjects("no projects found")
		So(errors.Is(err, ErrNoProjects), ShouldBeTrue)

		_, err = parseProjects("[]")
		So(errors.Is(err, ErrNoProjects), ShouldBeTrue)
	})

	Convey("parseProjects rejects malformed JSON", t, func() {
		_, err := parseProjects("[{broken]")
		So(errors.Is(err, ErrNoProjects), ShouldBeTrue)
	})
}

func TestFileStoreWiring(t *testing.T) {
	Convey("The default store round-trips a session to disk", t, func() {
		dir := t.TempDir()
		store, err := persistence.NewFileStore(dir)
		So(err, ShouldBeNil)

		svc := newTestService(t, WithStore(store))
		created, err := svc.StartSession(context.Background(), StartRequest{CandidateName: "Dana"})
		So(err, ShouldBeNil)

		loaded, err := store.Load(context.Background(), created.SessionID)
		So(err, ShouldBeNil)
		So(loaded.CandidateName, ShouldEqual, "Dana")
		So(strings.TrimSpace(loaded.LastQuestion), ShouldNotBeEmpty)
	})
}
