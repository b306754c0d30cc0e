package scoring

import (
	"regexp"
	"strings"

	"github.com/okian/viva/internal/domain/types"
)

// Vocabulary driving the lexical heuristics. Matching is on lowercased
// whole tokens, so "go" will not fire inside "google".
var techVocab = map[string]struct{}{
	"go": {}, "golang": {}, "python": {}, "java": {}, "javascript": {},
	"typescript": {}, "rust": {}, "react": {}, "node": {}, "docker": {},
	"kubernetes": {}, "terraform": {}, "aws": {}, "gcp": {}, "azure": {},
	"sql": {}, "postgres": {}, "postgresql": {}, "mysql": {}, "mongodb": {},
	"redis": {}, "kafka": {}, "rabbitmq": {}, "grpc": {}, "rest": {},
	"api": {}, "apis": {}, "microservices": {}, "microservice": {},
	"linux": {}, "git": {}, "pipeline": {}, "pipelines": {}, "backend": {},
	"frontend": {}, "database": {}, "databases": {}, "cache": {},
	"caching": {}, "queue": {}, "queues": {}, "async": {}, "distributed": {},
	"concurrency": {}, "latency": {}, "throughput": {}, "scalability": {},
	"architecture": {}, "cloud": {}, "serverless": {}, "ml": {},
	"algorithms": {}, "testing": {}, "monitoring": {}, "observability": {},
}

var softVocab = map[string]struct{}{
	"team": {}, "teams": {}, "communication": {}, "leadership": {},
	"mentored": {}, "mentoring": {}, "collaboration": {}, "collaborated": {},
	"ownership": {}, "agile": {}, "scrum": {}, "stakeholders": {},
	"planning": {}, "prioritization": {}, "initiative": {},
}

var experienceVocab = map[string]struct{}{
	"experience": {}, "worked": {}, "built": {}, "developed": {},
	"shipped": {}, "led": {}, "delivered": {}, "maintained": {},
}

var yearsPattern = regexp.MustCompile(`\b\d+\+?\s*(?:years?|yrs?)\b`)

// introHeuristic scores a self-introduction on technical vocabulary,
// soft-skill signals, experience markers and overall substance.
func introHeuristic(answer string) (float64, string) {
	words := tokenize(answer)
	if len(words) == 0 {
		return 0, "No answer provided."
	}

	tech := uniqueHits(words, techVocab)
	soft := uniqueHits(words, softVocab)
	exp := uniqueHits(words, experienceVocab)

	score := float64(min(tech, 7)) * 7
	score += float64(min(soft, 5)) * 7

	expPoints := float64(exp) * 4
	if yearsPattern.MatchString(strings.ToLower(answer)) {
		expPoints += 12
	}
	if expPoints > 20 {
		expPoints = 20
	}
	score += expPoints

	switch {
	case len(words) >= 40:
		score += 10
	case len(words) >= 25:
		score += 6
	case len(words) >= 12:
		score += 3
	}

	if len(words) < 8 && score > 25 {
		score = 25
	}

	return clamp(score), introFeedback(tech, soft, exp, len(words))
}

func introFeedback(tech, soft, exp, words int) string {
	var good, lacks []string
	if tech >= 3 {
		good = append(good, "technical breadth")
	} else {
		lacks = append(lacks, "technical specifics")
	}
	if exp >= 1 {
		good = append(good, "concrete experience")
	} else {
		lacks = append(lacks, "experience markers")
	}
	if soft >= 1 {
		good = append(good, "collaboration signals")
	} else {
		lacks = append(lacks, "soft-skill signals")
	}
	if words < 8 {
		lacks = append(lacks, "detail (answer very short)")
	}

	var parts []string
	if len(good) > 0 {
		parts = append(parts, "Good: "+strings.Join(good, ", ")+".")
	}
	if len(lacks) > 0 {
		parts = append(parts, "Lacks: "+strings.Join(lacks, ", ")+".")
	}
	return strings.Join(parts, " ")
}

// projectHeuristic scores a project answer on technical density plus three
// aspects: personal ownership, measurable impact, and quality practices.
func projectHeuristic(answer string) (float64, string) {
	words := tokenize(answer)
	if len(words) == 0 {
		return 0, "No answer provided."
	}

	lower := strings.ToLower(answer)

	tech := uniqueHits(words, techVocab)
	score := float64(min(tech, 10)) * 5

	var missing []string

	if hasOwnership(words) {
		score += 10
	} else {
		missing = append(missing, "ownership")
	}
	if hasImpact(words, lower) {
		score += 10
	} else {
		missing = append(missing, "impact")
	}
	if hasQualityPractice(words) {
		score += 10
	} else {
		missing = append(missing, "testing")
	}

	switch {
	case len(words) >= 60:
		score += 15
	case len(words) >= 30:
		score += 10
	case len(words) >= 15:
		score += 5
	}

	if len(words) < 10 && score > 25 {
		score = 25
	}

	feedback := "Covers ownership, impact and quality practices."
	if len(missing) > 0 {
		feedback = "Low coverage: " + strings.Join(missing, ", ") + "."
	}
	return clamp(score), feedback
}

var ownershipVerbs = map[string]struct{}{
	"designed": {}, "built": {}, "implemented": {}, "led": {}, "wrote": {},
	"architected": {}, "owned": {}, "created": {}, "migrated": {},
}

func hasOwnership(words []string) bool {
	pronoun := false
	verb := false
	for _, w := range words {
		if w == "i" || w == "my" {
			pronoun = true
		}
		if _, ok := ownershipVerbs[w]; ok {
			verb = true
		}
	}
	return pronoun && verb
}

var impactVocab = map[string]struct{}{
	"improved": {}, "reduced": {}, "increased": {}, "saved": {},
	"latency": {}, "throughput": {}, "cost": {}, "revenue": {},
	"performance": {}, "faster": {}, "uptime": {},
}

var digitPattern = regexp.MustCompile(`\d`)

func hasImpact(words []string, lower string) bool {
	for _, w := range words {
		if _, ok := impactVocab[w]; ok {
			return true
		}
	}
	return strings.Contains(lower, "%") || digitPattern.MatchString(lower)
}

var qualityVocab = map[string]struct{}{
	"test": {}, "tests": {}, "tested": {}, "testing": {}, "coverage": {},
	"ci": {}, "review": {}, "reviews": {}, "monitoring": {}, "canary": {},
}

func hasQualityPractice(words []string) bool {
	for _, w := range words {
		if _, ok := qualityVocab[w]; ok {
			return true
		}
	}
	return false
}

// Difficulty weights applied to the raw skill score.
var levelWeights = map[types.Level]float64{
	types.LevelBasic:        0.8,
	types.LevelIntermediate: 1.0,
	types.LevelAdvanced:     1.2,
}

// skillHeuristic scores a skills-phase answer. Answers that mostly repeat
// the question are penalized; substance, technical density and reasoning
// markers are rewarded, scaled by difficulty.
func skillHeuristic(question, answer string, level types.Level) (float64, string) {
	aWords := tokenize(answer)
	if len(aWords) < 4 {
		return 8, "Answer too brief to assess."
	}

	qSet := make(map[string]struct{})
	for _, w := range tokenize(question) {
		qSet[w] = struct{}{}
	}

	overlap := 0
	for _, w := range aWords {
		if _, ok := qSet[w]; ok {
			overlap++
		}
	}
	repeatRatio := float64(overlap) / float64(len(aWords))

	score := float64(min(uniqueHits(aWords, techVocab), 6)) * 8
	score += float64(min(len(aWords), 20))

	lower := strings.ToLower(answer)
	if strings.Contains(lower, "because") || strings.Contains(lower, "so that") ||
		strings.Contains(lower, "trade-off") || strings.Contains(lower, "tradeoff") {
		score += 8
	}

	if repeatRatio > 0.6 {
		score -= 20
	}

	weight, ok := levelWeights[level]
	if !ok {
		weight = 1.0
	}
	score *= weight

	// Calibration boost: crossing the pass threshold on lexical signal
	// alone indicates a substantive answer.
	if score >= PassThreshold {
		score += 20
	}

	feedback := "Shows relevant depth for the question."
	switch {
	case score < PassThreshold:
		feedback = "Limited depth; expand on specifics and reasoning."
	case repeatRatio > 0.6:
		feedback = "Largely restates the question; add original detail."
	}
	return clamp(score), feedback
}

// tokenize lowercases and strips non-alphanumerics, keeping single-letter
// tokens so pronoun detection works.
func tokenize(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		var b strings.Builder
		for _, r := range f {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				b.WriteRune(r)
			}
		}
		if b.Len() > 0 {
			out = append(out, b.String())
		}
	}
	return out
}

func uniqueHits(words []string, vocab map[string]struct{}) int {
	seen := make(map[string]struct{})
	for _, w := range words {
		if _, ok := vocab[w]; ok {
			seen[w] = struct{}{}
		}
	}
	return len(seen)
}
