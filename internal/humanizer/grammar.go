package humanizer

import (
	"math/rand"
	"regexp"
	"strings"

	"github.com/niouspark/humanizer/internal/models"
)

type rewriteRule struct {
	pattern *regexp.Regexp
	replace string
}

// grammarFixes are the fixed touch-up rules applied to every sentence:
// article agreement, double comparatives, common subject-verb artifacts and
// stock phrase simplification.
var grammarFixes = []rewriteRule{
	{regexp.MustCompile(`\ba ([aeiouAEIOU])`), "an $1"},
	{regexp.MustCompile(`\ban ([b-df-hj-np-tv-zB-DF-HJ-NP-TV-Z])`), "a $1"},
	{regexp.MustCompile(`\bmore ([a-z]+er)\b`), "$1"},
	{regexp.MustCompile(`\b(they|we|you) was\b`), "$1 were"},
	{regexp.MustCompile(`\b(he|she|it) don't\b`), "$1 doesn't"},
	{regexp.MustCompile(`\bin order to\b`), "to"},
	{regexp.MustCompile(`\bdue to the fact that\b`), "because"},
	{regexp.MustCompile(`\bat this point in time\b`), "now"},
	{regexp.MustCompile(`\bin the event that\b`), "if"},
}

// grammarIssues are the detection-only patterns used by scoring; they mirror
// the fixable artifacts above.
var grammarIssues = []*regexp.Regexp{
	regexp.MustCompile(`\ba [aeiou]`),
	regexp.MustCompile(`\bmore [a-z]+er\b`),
	regexp.MustCompile(`\b(they|we|you) was\b`),
	regexp.MustCompile(`\b(he|she|it) don't\b`),
	regexp.MustCompile(`\bdue to the fact that\b`),
}

// grammarPass applies the fix table per sentence, re-capitalizes sentence
// starts, and splits any sentence with more than 4 comma-separated clauses
// near its midpoint. No semantic-aware splitting is attempted.
func (e *Engine) grammarPass(_ *rand.Rand, text string, _ models.WritingOptions) (string, error) {
	var out []string
	for _, s := range e.splitSentences(text) {
		for _, rule := range grammarFixes {
			s = rule.pattern.ReplaceAllString(s, rule.replace)
		}
		s = upperFirst(s)
		out = append(out, splitLongClauseChain(s)...)
	}
	return strings.Join(out, " "), nil
}

// splitLongClauseChain splits a sentence with 5+ comma-separated clauses at
// the comma nearest its midpoint, yielding two sentences.
func splitLongClauseChain(s string) []string {
	commas := []int{}
	for i, r := range s {
		if r == ',' {
			commas = append(commas, i)
		}
	}
	if len(commas) < 4 { // fewer than 5 clauses
		return []string{s}
	}
	mid := commas[len(commas)/2]
	first := strings.TrimSpace(s[:mid])
	second := strings.TrimSpace(s[mid+1:])
	if first == "" || second == "" {
		return []string{s}
	}
	if !strings.HasSuffix(first, ".") {
		first += "."
	}
	return []string{first, upperFirst(second)}
}

// countGrammarIssues counts remaining matches of the issue patterns over the
// lowercased text. Used by scoring only.
func countGrammarIssues(text string) int {
	lower := strings.ToLower(text)
	n := 0
	for _, p := range grammarIssues {
		n += len(p.FindAllString(lower, -1))
	}
	return n
}
