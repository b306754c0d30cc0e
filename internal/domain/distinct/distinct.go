// Package distinct decides whether a generated question is lexically far
// enough from recently asked ones, and extracts the topics to steer future
// generation away from.
package distinct

import (
	"sort"
	"strings"
	"unicode"
)

// Default filter configuration constants.
const (
	defaultThreshold   = 0.45
	defaultMinTokenLen = 3
	defaultTopicCount  = 5
)

// stopwords excluded from tokenization and topic extraction.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "you": {}, "your": {}, "how": {},
	"what": {}, "which": {}, "did": {}, "does": {}, "can": {}, "could": {},
	"would": {}, "with": {}, "that": {}, "this": {}, "are": {}, "was": {},
	"were": {}, "have": {}, "has": {}, "had": {}, "about": {}, "when": {},
	"where": {}, "why": {}, "who": {}, "one": {}, "any": {}, "all": {},
	"use": {}, "used": {}, "using": {}, "into": {}, "from": {}, "them": {},
	"they": {}, "their": {}, "its": {}, "it's": {}, "in": {}, "on": {},
	"of": {}, "to": {}, "a": {}, "an": {}, "is": {}, "be": {}, "do": {},
	"me": {}, "my": {}, "please": {}, "tell": {}, "describe": {},
	"explain": {}, "give": {}, "example": {}, "question": {},
}

// metaPrefixes mark oracle output lines that are commentary about the
// candidate rather than a question to ask.
var metaPrefixes = []string{
	"the candidate", "candidate", "strength", "weakness", "assessment",
	"analysis", "note:", "based on", "overall", "evaluation",
}

// Filter applies a lexical similarity gate between a candidate question and
// a window of recently asked questions.
type Filter struct {
	threshold   float64
	minTokenLen int
}

// New creates a Filter with default configuration options.
func New(opts ...Option) *Filter {
	f := &Filter{
		threshold:   defaultThreshold,
		minTokenLen: defaultMinTokenLen,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Threshold returns the configured similarity threshold.
func (f *Filter) Threshold() float64 {
	return f.threshold
}

// Accept reports whether candidate is sufficiently dissimilar from every
// entry in recent: similarity must be strictly below the threshold for all
// of them. An identical question always scores 1.0 and is rejected, even
// when it carries no content-bearing tokens at all.
func (f *Filter) Accept(candidate string, recent []string) bool {
	cand := f.tokenSet(candidate)
	for _, prev := range recent {
		if candidate == prev {
			return false
		}
		if f.similarity(cand, f.tokenSet(prev)) >= f.threshold {
			return false
		}
	}
	return true
}

// Similarity computes the asymmetric Jaccard-like measure between two
// questions: |intersection| / max(|A|, |B|). Identical non-blank strings
// score 1.0 regardless of what tokenization leaves of them.
func (f *Filter) Similarity(a, b string) float64 {
	if a == b && strings.TrimSpace(a) != "" {
		return 1
	}
	return f.similarity(f.tokenSet(a), f.tokenSet(b))
}

func (f *Filter) similarity(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			inter++
		}
	}
	denom := len(a)
	if len(b) > denom {
		denom = len(b)
	}
	return float64(inter) / float64(denom)
}

// Topics returns up to n keywords across recent questions, ranked by
// frequency weighted by token length, longest-first on ties. The result is
// handed to the oracle as a list of themes to avoid.
func (f *Filter) Topics(recent []string, n int) []string {
	if n <= 0 {
		n = defaultTopicCount
	}
	weight := make(map[string]int)
	for _, q := range recent {
		for tok := range f.tokenSet(q) {
			weight[tok] += len(tok)
		}
	}
	keywords := make([]string, 0, len(weight))
	for tok := range weight {
		keywords = append(keywords, tok)
	}
	sort.Slice(keywords, func(i, j int) bool {
		if weight[keywords[i]] != weight[keywords[j]] {
			return weight[keywords[i]] > weight[keywords[j]]
		}
		return keywords[i] < keywords[j]
	})
	if len(keywords) > n {
		keywords = keywords[:n]
	}
	return keywords
}

// tokenSet lowercases, strips non-alphanumerics, and drops short tokens and
// stopwords.
func (f *Filter) tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, raw := range strings.Fields(strings.ToLower(s)) {
		tok := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return r
			}
			return -1
		}, raw)
		if len(tok) < f.minTokenLen {
			continue
		}
		if _, ok := stopwords[tok]; ok {
			continue
		}
		set[tok] = struct{}{}
	}
	return set
}

// QuestionLine scans raw oracle output and returns the first line that looks
// like an actual question, normalized. Lines resembling meta-analysis
// commentary are skipped. Returns "" when no usable line exists.
func QuestionLine(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.Trim(line, "-•* \t")
		if line == "" {
			continue
		}
		if isMetaLine(line) {
			continue
		}
		return Normalize(line)
	}
	return ""
}

func isMetaLine(line string) bool {
	l := strings.ToLower(line)
	for _, prefix := range metaPrefixes {
		if strings.HasPrefix(l, prefix) && !strings.HasSuffix(l, "?") {
			return true
		}
	}
	return false
}

// Normalize trims surrounding quotes, collapses runs of question marks, and
// ensures exactly one trailing question mark on anything long enough to be
// a real question.
func Normalize(q string) string {
	q = strings.TrimSpace(q)
	q = strings.Trim(q, `"'`)
	q = strings.ReplaceAll(q, `?"`, "?")
	q = strings.ReplaceAll(q, `?'`, "?")
	for strings.Contains(q, "??") {
		q = strings.ReplaceAll(q, "??", "?")
	}
	hadMark := strings.HasSuffix(q, "?")
	q = strings.TrimRight(q, "? ")
	if q == "" {
		return ""
	}
	if hadMark || len(q) > 8 {
		q += "?"
	}
	return q
}
