package distinct_test

import (
	"strings"
	"testing"

	"github.com/okian/viva/internal/domain/distinct"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFilterAccept(t *testing.T) {
	Convey("Given a filter with the default threshold", t, func() {
		f := distinct.New()

		Convey("An identical question is always rejected", func() {
			q := "How does a goroutine scheduler decide which goroutine runs next?"
			So(f.Accept(q, []string{q}), ShouldBeFalse)
		})

		Convey("An identical question with no content-bearing tokens is rejected", func() {
			q := "Is it?"
			So(f.Accept(q, []string{q}), ShouldBeFalse)
		})

		Convey("Different short questions with no content-bearing tokens are accepted", func() {
			So(f.Accept("Is it?", []string{"Was he?"}), ShouldBeTrue)
		})

		Convey("A question with no recent history is accepted", func() {
			So(f.Accept("What is a channel used for?", nil), ShouldBeTrue)
		})

		Convey("A near-duplicate with shared content words is rejected", func() {
			recent := []string{"How did you design the database schema for the payment service?"}
			cand := "How did you design the database schema for the payment flow?"
			So(f.Accept(cand, recent), ShouldBeFalse)
		})

		Convey("A question on a fresh topic is accepted", func() {
			recent := []string{"How did you design the database schema for the payment service?"}
			cand := "Which caching strategy reduces read latency under bursty traffic?"
			So(f.Accept(cand, recent), ShouldBeTrue)
		})

		Convey("Rejection against any single recent question rejects the candidate", func() {
			recent := []string{
				"Which caching strategy reduces read latency under bursty traffic?",
				"How did you design the database schema for the payment service?",
			}
			cand := "How did you design the database schema for the payment service today?"
			So(f.Accept(cand, recent), ShouldBeFalse)
		})
	})
}

func TestFilterSimilarity(t *testing.T) {
	Convey("Given a filter", t, func() {
		f := distinct.New()

		Convey("Identical questions score 1.0", func() {
			q := "Explain indexing trade-offs in postgres?"
			So(f.Similarity(q, q), ShouldEqual, 1.0)
		})

		Convey("Disjoint questions score 0.0", func() {
			So(f.Similarity("kubernetes pods?", "music theory basics?"), ShouldEqual, 0.0)
		})

		Convey("Empty input scores 0.0", func() {
			So(f.Similarity("", "anything here?"), ShouldEqual, 0.0)
		})

		Convey("The measure is bounded by the larger token set", func() {
			a := "goroutine scheduling preemption fairness runtime internals"
			b := "goroutine scheduling"
			sim := f.Similarity(a, b)
			So(sim, ShouldBeGreaterThan, 0)
			So(sim, ShouldBeLessThan, 0.5)
		})
	})
}

func TestTopics(t *testing.T) {
	Convey("Given recent questions on overlapping themes", t, func() {
		f := distinct.New()
		recent := []string{
			"How does replication work in postgres?",
			"What replication lag issues have you debugged in postgres?",
			"When would you shard a postgres cluster?",
		}

		Convey("Repeated long tokens rank first", func() {
			topics := f.Topics(recent, 3)
			So(len(topics), ShouldEqual, 3)
			So(topics[0], ShouldEqual, "postgres")
			So(topics, ShouldContain, "replication")
		})

		Convey("Requesting zero topics falls back to the default count", func() {
			So(len(f.Topics(recent, 0)), ShouldBeLessThanOrEqualTo, 5)
		})
	})
}

func TestQuestionLine(t *testing.T) {
	Convey("Given raw oracle output", t, func() {
		Convey("Meta commentary lines are skipped", func() {
			raw := "The candidate shows weak understanding of indexing.\n" +
				"Strength: clear communication\n" +
				"- How would you pick an index for a range scan?"
			So(distinct.QuestionLine(raw), ShouldEqual, "How would you pick an index for a range scan?")
		})

		Convey("Bullets and quotes are trimmed", func() {
			raw := `• "Which isolation level prevents phantom reads??"`
			So(distinct.QuestionLine(raw), ShouldEqual, "Which isolation level prevents phantom reads?")
		})

		Convey("Purely meta output yields nothing", func() {
			raw := "The candidate did not answer.\nAssessment: below expectations"
			So(distinct.QuestionLine(raw), ShouldEqual, "")
		})
	})
}

func TestNormalize(t *testing.T) {
	Convey("Normalize enforces a single trailing question mark", t, func() {
		So(distinct.Normalize("What is a mutex???"), ShouldEqual, "What is a mutex?")
		So(distinct.Normalize(`"Why use contexts?"`), ShouldEqual, "Why use contexts?")
		So(distinct.Normalize("Describe your deployment pipeline"), ShouldEqual, "Describe your deployment pipeline?")
		So(distinct.Normalize(""), ShouldEqual, "")
		So(strings.Count(distinct.Normalize("Really??signature??"), "?"), ShouldEqual, 2)
	})
}
