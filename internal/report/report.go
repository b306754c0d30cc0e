// Package report renders a finished (or in-progress) interview session as
// a plain-text summary suitable for download or archiving.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/okian/viva/internal/domain/interview"
	"github.com/okian/viva/internal/domain/types"
)

// Render produces the text report for a session. Sections with no content
// are omitted.
func Render(s *interview.Session, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Candidate: %s\n", s.CandidateName)
	role := s.Role
	if role == "" {
		role = "-"
	}
	fmt.Fprintf(&b, "Role: %s\n", role)
	fmt.Fprintf(&b, "Date: %s\n\n", now.Format("2006-01-02 15:04"))

	if len(s.Projects) > 0 {
		b.WriteString("Projects:\n")
		for _, p := range s.Projects {
			title := p.Title
			if title == "" {
				title = "-"
			}
			fmt.Fprintf(&b, "- %s: %s\n", title, p.Summary)
		}
		b.WriteString("\n")
	}

	for _, phase := range []types.Phase{types.PhaseIntroduction, types.PhaseProjects, types.PhaseSkills} {
		writePhase(&b, s, phase)
	}

	writeSkillsSummary(&b, s)

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func writePhase(b *strings.Builder, s *interview.Session, phase types.Phase) {
	var entries []types.TranscriptEntry
	for _, e := range s.Transcript {
		if e.Phase == phase {
			entries = append(entries, e)
		}
	}
	if len(entries) == 0 {
		return
	}

	b.WriteString(capitalize(string(phase)) + "\n")
	for i, e := range entries {
		fmt.Fprintf(b, "Question %d: %s\n", i+1, e.Question)
		fmt.Fprintf(b, "Response %d: %s\n", i+1, e.Answer)
		fmt.Fprintf(b, "Score: %.0f\n", e.Score)
		if e.Feedback != "" {
			fmt.Fprintf(b, "Feedback: %s\n", e.Feedback)
		}
	}
	b.WriteString("\n")
}

func writeSkillsSummary(b *strings.Builder, s *interview.Session) {
	if len(s.Outcomes) == 0 {
		return
	}

	skills := make([]string, 0, len(s.Outcomes))
	for skill := range s.Outcomes {
		skills = append(skills, skill)
	}
	sort.Strings(skills)

	b.WriteString("Skills Summary:\n")
	for _, skill := range skills {
		b.WriteString(skill + "\n")
		for _, lvl := range types.Levels() {
			out, ok := s.Outcomes[skill][lvl]
			if !ok {
				continue
			}
			verdict := "Not proficient"
			if out.Passed {
				verdict = "Passed"
			}
			fmt.Fprintf(b, "  - %s: %s (passes=%d, fails=%d, asked=%d)\n",
				lvl, verdict, out.Passes, out.Fails, out.Asked)
			if out.Feedback != "" {
				fmt.Fprintf(b, "    Feedback: %s\n", out.Feedback)
			}
		}
	}
	b.WriteString("\n")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
