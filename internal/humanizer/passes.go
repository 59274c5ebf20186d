package humanizer

import (
	"math/rand"
	"regexp"
	"strings"
	"unicode"

	"github.com/niouspark/humanizer/internal/lexicon"
	"github.com/niouspark/humanizer/internal/models"
)

var (
	contrastCues = []string{"but", "however", "although", "yet", "instead", "despite"}
	causalCues   = []string{"because", "therefore", "thus", "since", "hence"}

	personalMarkers = []string{"i ", "i'm", "i've", "my ", "personally", "in my"}

	parentheticals = []string{
		"(at least in my experience)",
		"(believe it or not)",
		"(which says a lot)",
		"(or so it seems)",
	}

	becauseClause = regexp.MustCompile(`^(.+?)\s+because\s+(.+?)([.!?]+)$`)
)

// variationPass prepends mode-appropriate starters to some sentences and
// occasionally restructures a because-clause or injects a parenthetical for
// informal tone.
func (e *Engine) variationPass(rng *rand.Rand, text string, opts models.WritingOptions) (string, error) {
	ss := e.splitSentences(text)
	restructureP := 0.2
	if opts.VaryStructure {
		restructureP = 0.4
	}
	for i := 1; i < len(ss); i++ {
		if rng.Float64() < 0.3 && !e.lex.IsTransitionStart(ss[i]) {
			starter := choice(rng, e.lex.Starters(opts.Mode))
			if starter != "" {
				ss[i] = starter + " " + lowerFirst(ss[i])
			}
		}
		if rng.Float64() < restructureP {
			if m := becauseClause.FindStringSubmatch(ss[i]); m != nil {
				ss[i] = "Because " + strings.TrimSuffix(m[2], ",") + ", " + lowerFirst(m[1]) + m[3]
			} else if opts.Tone == "informal" || opts.Tone == "personal" {
				ss[i] = injectParenthetical(rng, ss[i])
			}
		}
	}
	return strings.Join(ss, " "), nil
}

func injectParenthetical(rng *rand.Rand, s string) string {
	trimmed := strings.TrimRight(s, ".!?")
	if trimmed == s || trimmed == "" {
		return s
	}
	punct := s[len(trimmed):]
	return trimmed + " " + choice(rng, parentheticals) + punct
}

// transitionPass inserts transition phrases between interior sentences,
// classifying the adjacent-sentence relationship with cheap heuristics.
func (e *Engine) transitionPass(rng *rand.Rand, text string, _ models.WritingOptions) (string, error) {
	ss := e.splitSentences(text)
	for i := 1; i < len(ss)-1; i++ {
		if rng.Float64() >= 0.25 || e.lex.IsTransitionStart(ss[i]) {
			continue
		}
		rel := classifyRelation(ss[i-1], ss[i])
		if t := choice(rng, e.lex.Transitions(rel)); t != "" {
			ss[i] = t + " " + lowerFirst(ss[i])
		}
	}
	return strings.Join(ss, " "), nil
}

// classifyRelation decides which transition family fits between prev and
// next: shared-word overlap means continuation, contrast or causal cue words
// in next pick their family, anything else is elaboration.
func classifyRelation(prev, next string) string {
	nextLower := " " + strings.ToLower(next) + " "
	if sharedContentWords(prev, next) >= 2 {
		return lexicon.RelContinuation
	}
	for _, cue := range contrastCues {
		if strings.Contains(nextLower, " "+cue+" ") {
			return lexicon.RelContrast
		}
	}
	for _, cue := range causalCues {
		if strings.Contains(nextLower, " "+cue+" ") {
			return lexicon.RelCausation
		}
	}
	return lexicon.RelElaboration
}

func sharedContentWords(a, b string) int {
	seen := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(a)) {
		w = strings.Trim(w, ".,!?;:\"'")
		if len(w) > 3 {
			seen[w] = true
		}
	}
	n := 0
	for _, w := range strings.Fields(strings.ToLower(b)) {
		w = strings.Trim(w, ".,!?;:\"'")
		if len(w) > 3 && seen[w] {
			n++
			seen[w] = false
		}
	}
	return n
}

// personalPass prefixes up to two randomly chosen sentences with a
// first-person framing phrase. Sentences already carrying a personal marker
// are left alone.
func (e *Engine) personalPass(rng *rand.Rand, text string, _ models.WritingOptions) (string, error) {
	ss := e.splitSentences(text)
	var candidates []int
	for i, s := range ss {
		if !hasPersonalMarker(s) {
			candidates = append(candidates, i)
		}
	}
	perm := rng.Perm(len(candidates))
	limit := 2
	if len(perm) < limit {
		limit = len(perm)
	}
	for k := 0; k < limit; k++ {
		i := candidates[perm[k]]
		if frame := choice(rng, e.lex.Category("personal_frames")); frame != "" {
			ss[i] = frame + " that " + lowerFirst(ss[i])
		}
	}
	return strings.Join(ss, " "), nil
}

func hasPersonalMarker(s string) bool {
	lower := strings.ToLower(s)
	for _, m := range personalMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// formalityPass contracts formal verb phrases for informal tone and expands
// contractions for formal tone. Straight paired substitution, not a
// grammar-aware transform.
func (e *Engine) formalityPass(_ *rand.Rand, text string, opts models.WritingOptions) (string, error) {
	switch opts.Tone {
	case "informal", "personal", "enthusiastic":
		for _, pair := range e.lex.Contractions() {
			text = replaceWordCaseAware(text, pair.Formal, pair.Informal)
		}
	case "formal", "analytical":
		for _, pair := range e.lex.Contractions() {
			text = replaceWordCaseAware(text, pair.Informal, pair.Formal)
		}
	}
	return text, nil
}

// replaceWordCaseAware swaps whole-word occurrences of from with to,
// preserving a leading capital.
func replaceWordCaseAware(text, from, to string) string {
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(from) + `\b`)
	return re.ReplaceAllStringFunc(text, func(match string) string {
		if len(match) > 0 && unicode.IsUpper(rune(match[0])) {
			return upperFirst(to)
		}
		return to
	})
}

var breakConjunctions = []string{"and", "but", "or", "because", "although", "while"}

// readabilityPass splits over-long sentences at the first suitable
// conjunction and regroups long texts into paragraphs of 4-6 sentences.
func (e *Engine) readabilityPass(rng *rand.Rand, text string, _ models.WritingOptions) (string, error) {
	var out []string
	for _, s := range e.splitSentences(text) {
		out = append(out, splitAtConjunction(s)...)
	}
	if totalChars(out) <= 1000 {
		return strings.Join(out, " "), nil
	}
	var paragraphs []string
	for i := 0; i < len(out); {
		n := 4 + rng.Intn(3)
		if i+n > len(out) {
			n = len(out) - i
		}
		paragraphs = append(paragraphs, strings.Join(out[i:i+n], " "))
		i += n
	}
	return strings.Join(paragraphs, "\n\n"), nil
}

func totalChars(ss []string) int {
	n := 0
	for _, s := range ss {
		n += len(s)
	}
	return n
}

// splitAtConjunction splits a sentence longer than 30 words at the first
// listed conjunction whose left side already exceeds 10 words. Sentences
// without a suitable break-point are left intact.
func splitAtConjunction(s string) []string {
	words := strings.Fields(s)
	if len(words) <= 30 {
		return []string{s}
	}
	for _, conj := range breakConjunctions {
		for i := 11; i < len(words)-1; i++ {
			if strings.ToLower(words[i]) != conj {
				continue
			}
			first := strings.Join(words[:i], " ")
			second := strings.Join(words[i+1:], " ")
			first = strings.TrimRight(first, ",;") + "."
			return []string{first, upperFirst(second)}
		}
	}
	return []string{s}
}

// emotionalPass upgrades bland adjectives with fixed probability per rule.
func (e *Engine) emotionalPass(rng *rand.Rand, text string, _ models.WritingOptions) (string, error) {
	for _, swap := range e.lex.EmotionalSwaps() {
		if rng.Float64() < 0.3 {
			text = replaceWordCaseAware(text, swap.Formal, swap.Informal)
		}
	}
	return text, nil
}

// ApplyAggressiveTouches is the extra substitution layer used by the
// ultra-humanize mode: the same rule families as the regular passes but with
// higher trigger probabilities, plus hedge and filler injection.
func (e *Engine) ApplyAggressiveTouches(rng *rand.Rand, text string) string {
	for _, swap := range e.lex.EmotionalSwaps() {
		if rng.Float64() < 0.6 {
			text = replaceWordCaseAware(text, swap.Formal, swap.Informal)
		}
	}
	ss := e.splitSentences(text)
	for i := range ss {
		switch {
		case rng.Float64() < 0.3:
			if h := choice(rng, e.lex.Category("hedges")); h != "" {
				ss[i] = injectAfterFirstWord(ss[i], h)
			}
		case rng.Float64() < 0.3:
			if f := choice(rng, e.lex.Category("fillers")); f != "" && i > 0 {
				ss[i] = upperFirst(f) + ", " + lowerFirst(ss[i])
			}
		}
	}
	out, _ := e.polishPass(rng, strings.Join(ss, " "), models.WritingOptions{})
	return out
}

func injectAfterFirstWord(s, phrase string) string {
	idx := strings.Index(s, " ")
	if idx < 0 {
		return s
	}
	return s[:idx] + ", " + phrase + "," + s[idx:]
}
