package registry

import (
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/viva/internal/domain/interview"
)

func newSession(t *testing.T, name string) *interview.Session {
	t.Helper()
	s, err := interview.NewSession(interview.StartParams{CandidateName: name})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

func TestRegistry(t *testing.T) {
	Convey("Given a session registry", t, func() {
		r := New()

		Convey("A registered session is retrievable by id", func() {
			s := newSession(t, "Ada")
			r.Put(s)

			e, err := r.Get(s.ID)
			So(err, ShouldBeNil)
			So(e.Session.CandidateName, ShouldEqual, "Ada")
		})

		Convey("Unknown ids report not found", func() {
			_, err := r.Get("missing")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("Deleted sessions are gone", func() {
			s := newSession(t, "Ada")
			r.Put(s)
			r.Delete(s.ID)

			_, err := r.Get(s.ID)
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("Count tracks registered sessions", func() {
			So(r.Count(), ShouldEqual, 0)
			r.Put(newSession(t, "Ada"))
			r.Put(newSession(t, "Lin"))
			So(r.Count(), ShouldEqual, 2)
		})
	})
}

func TestRegistryExpiry(t *testing.T) {
	Convey("Given a registry with a very short TTL", t, func() {
		r := New(WithTTL(20*time.Millisecond), WithCleanupInterval(5*time.Millisecond))
		s := newSession(t, "Ada")
		r.Put(s)

		Convey("An idle session expires", func() {
			time.Sleep(40 * time.Millisecond)
			_, err := r.Get(s.ID)
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("Lookups slide the TTL forward", func() {
			for i := 0; i < 4; i++ {
				time.Sleep(10 * time.Millisecond)
				_, err := r.Get(s.ID)
				So(err, ShouldBeNil)
			}
		})
	})
}

func TestEntrySerializesAnswers(t *testing.T) {
	Convey("Given one session entry under concurrent mutation", t, func() {
		r := New()
		s := newSession(t, "Ada")
		e := r.Put(s)

		const workers = 16
		var wg sync.WaitGroup
		wg.Add(workers)
		for i := 0; i < workers; i++ {
			go func() {
				defer wg.Done()
				e.Lock()
				defer e.Unlock()
				e.Session.ProjectsAsked++
			}()
		}
		wg.Wait()

		Convey("Every locked increment is observed", func() {
			So(e.Session.ProjectsAsked, ShouldEqual, workers)
		})
	})
}
