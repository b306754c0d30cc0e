// Package selector implements the per-phase question selection policies:
// a fixed introduction prompt, project-grounded generation with
// deterministic fallbacks, and the hybrid adaptive/diversity skills policy
// gated by the distinctness filter.
package selector

import "strings"

// IntroQuestion returns the fixed opening question, greeting the candidate
// by name when one is known. No oracle call is involved.
func IntroQuestion(candidateName string) string {
	greeting := "Hi! "
	if name := strings.TrimSpace(candidateName); name != "" {
		greeting = "Hi " + name + "! "
	}
	return greeting + "Can you briefly introduce yourself and highlight your background, " +
		"strengths, and key experiences that make you a good fit for this role?"
}
