// Package lexicon holds the static tables of human-writing markers used by the
// rewriting passes: sentence starters, transitions, contraction pairs, hedges,
// emotional substitutions and filler phrases. All tables are fixed at build
// time and the Lexicon is safe for concurrent readers.
package lexicon

import "strings"

// Pair is an ordered substitution pair (formal form, informal form).
type Pair struct {
	Formal   string
	Informal string
}

// Relation names for transition categories.
const (
	RelContinuation = "continuation"
	RelContrast     = "contrast"
	RelCausation    = "causation"
	RelElaboration  = "elaboration"
)

// Lexicon is a read-only mapping from category name to an ordered list of
// candidate strings. Built once, never mutated.
type Lexicon struct {
	categories map[string][]string
}

var starters = map[string][]string{
	"academic":       {"Notably,", "In this regard,", "It is worth noting that", "From this perspective,", "Significantly,"},
	"casual":         {"Honestly,", "Look,", "Here's the thing:", "Funny enough,", "To be fair,"},
	"creative":       {"Picture this:", "Strangely enough,", "In a way,", "Somewhere along the line,"},
	"professional":   {"In practice,", "From experience,", "Importantly,", "On balance,"},
	"conversational": {"You know,", "Honestly,", "I mean,", "Let's face it,"},
	"narrative":      {"At that point,", "Before long,", "As it turned out,", "Eventually,"},
}

var transitions = map[string][]string{
	RelContinuation: {"Additionally,", "On top of that,", "What's more,", "Similarly,"},
	RelContrast:     {"That said,", "However,", "On the other hand,", "Even so,"},
	RelCausation:    {"Because of this,", "As a result,", "That's why", "Consequently,"},
	RelElaboration:  {"In other words,", "To put it differently,", "More specifically,", "Put simply,"},
}

var hedges = []string{
	"arguably", "perhaps", "it seems", "more or less", "in most cases", "as far as I can tell",
}

var fillers = []string{
	"you know", "I mean", "sort of", "kind of", "honestly", "basically",
}

var informalConnectors = []string{
	"plus", "also", "anyway", "besides", "so", "still", "then again",
}

var personalFrames = []string{
	"I think", "I believe", "Personally, I feel", "In my experience, I'd say", "I've found",
}

var discourseMarkers = []string{
	"well", "now", "of course", "after all", "in fact", "at the end of the day",
}

var intensifiers = []string{
	"really", "definitely", "genuinely", "honestly", "truly",
}

var emotionalQualifiers = []string{
	"which is fascinating", "which matters more than people think", "and that's no small thing",
	"which honestly surprised me",
}

// contractionPairs maps formal verb phrases to their contracted forms; the
// formality pass applies them in either direction depending on tone.
var contractionPairs = []Pair{
	{"cannot", "can't"},
	{"will not", "won't"},
	{"do not", "don't"},
	{"does not", "doesn't"},
	{"did not", "didn't"},
	{"is not", "isn't"},
	{"are not", "aren't"},
	{"was not", "wasn't"},
	{"were not", "weren't"},
	{"would not", "wouldn't"},
	{"should not", "shouldn't"},
	{"could not", "couldn't"},
	{"have not", "haven't"},
	{"has not", "hasn't"},
	{"it is", "it's"},
	{"that is", "that's"},
	{"there is", "there's"},
	{"they are", "they're"},
	{"we are", "we're"},
	{"you are", "you're"},
	{"I am", "I'm"},
}

// emotionalSwaps upgrades bland adjectives to more resonant ones.
var emotionalSwaps = []Pair{
	{"good", "excellent"},
	{"bad", "problematic"},
	{"big", "significant"},
	{"small", "modest"},
	{"old", "established"},
	{"new", "innovative"},
}

// emotionalWords are markers counted by the scoring side.
var emotionalWords = []string{
	"excellent", "problematic", "significant", "modest", "established", "innovative",
	"fascinating", "surprising", "striking", "remarkable", "frustrating", "exciting",
	"love", "hate", "fear", "hope", "wonderful", "terrible", "amazing", "devastating",
}

// Default returns the built-in lexicon. The returned value is shared and
// read-only; callers must not modify the slices it hands out.
func Default() *Lexicon {
	cats := map[string][]string{
		"hedges":               hedges,
		"fillers":              fillers,
		"informal_connectors":  informalConnectors,
		"personal_frames":      personalFrames,
		"discourse_markers":    discourseMarkers,
		"intensifiers":         intensifiers,
		"emotional_qualifiers": emotionalQualifiers,
		"emotional_words":      emotionalWords,
	}
	for mode, list := range starters {
		cats["starter/"+mode] = list
	}
	for rel, list := range transitions {
		cats["transition/"+rel] = list
	}
	return &Lexicon{categories: cats}
}

// Category returns the ordered candidate list for a category name, or an
// empty list for an unknown category. Deterministic, no side effects.
func (l *Lexicon) Category(name string) []string {
	return l.categories[name]
}

// Starters returns the sentence starters for a writing mode, falling back to
// the conversational set for unknown modes.
func (l *Lexicon) Starters(mode string) []string {
	if s := l.categories["starter/"+mode]; len(s) > 0 {
		return s
	}
	return l.categories["starter/conversational"]
}

// Transitions returns the transition phrases for a relation type.
func (l *Lexicon) Transitions(relation string) []string {
	return l.categories["transition/"+relation]
}

// AllTransitions returns every transition phrase across relation types, in a
// fixed order.
func (l *Lexicon) AllTransitions() []string {
	out := make([]string, 0, 16)
	for _, rel := range []string{RelContinuation, RelContrast, RelCausation, RelElaboration} {
		out = append(out, l.categories["transition/"+rel]...)
	}
	return out
}

// Contractions returns the formal/informal substitution pairs.
func (l *Lexicon) Contractions() []Pair {
	return contractionPairs
}

// EmotionalSwaps returns the bland-to-vivid adjective substitution pairs.
func (l *Lexicon) EmotionalSwaps() []Pair {
	return emotionalSwaps
}

// EmotionalWords returns the emotional marker words used by scoring.
func (l *Lexicon) EmotionalWords() []string {
	return emotionalWords
}

// IsTransitionStart reports whether the sentence already begins with a known
// transition or discourse word, in which case starter insertion is skipped.
func (l *Lexicon) IsTransitionStart(sentence string) bool {
	lower := strings.ToLower(strings.TrimSpace(sentence))
	for _, t := range l.AllTransitions() {
		if strings.HasPrefix(lower, strings.ToLower(strings.TrimSuffix(t, ","))) {
			return true
		}
	}
	for _, m := range discourseMarkers {
		if strings.HasPrefix(lower, m+" ") || strings.HasPrefix(lower, m+",") {
			return true
		}
	}
	return false
}
