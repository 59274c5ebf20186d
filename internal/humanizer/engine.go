// Package humanizer implements the rule-based text rewriting pipeline: a
// multi-pass sentence transform engine, a corpus-guided rewriter, heuristic
// human-likeness scoring, and the orchestrator that dispatches rewrite modes.
package humanizer

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"
	"unicode"

	"gopkg.in/neurosnap/sentences.v1"
	"gopkg.in/neurosnap/sentences.v1/english"

	"github.com/niouspark/humanizer/internal/lexicon"
	"github.com/niouspark/humanizer/internal/models"
)

// Engine is the sentence transform engine. It holds only read-only state
// (lexicon, segmenter) and is safe for concurrent use; every call draws its
// randomness from a per-call source.
type Engine struct {
	lex    *lexicon.Lexicon
	seg    *sentences.DefaultSentenceTokenizer
	logger *slog.Logger
	seed   int64 // 0 means seed from the clock per call
}

// Option configures an Engine.
type Option func(*Engine)

// WithSeed fixes the random seed so repeated calls are reproducible. Intended
// for tests; production engines seed from the clock per call.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.seed = seed }
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an engine around the given lexicon.
func NewEngine(lex *lexicon.Lexicon, opts ...Option) (*Engine, error) {
	seg, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build sentence tokenizer: %w", err)
	}
	e := &Engine{lex: lex, seg: seg, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Engine) newRNG() *rand.Rand {
	seed := e.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// pass is one stage of the pipeline. A failing pass is skipped and the
// pipeline continues with the text as of the last successful pass.
type pass struct {
	name    string
	enabled bool
	fn      func(rng *rand.Rand, text string, opts models.WritingOptions) (string, error)
}

// Humanize runs the ordered transformation passes over text. Empty or
// whitespace-only input returns an empty result without running any pass;
// validation beyond that is the caller's job. Total expansion is capped at
// twice the input word count.
func (e *Engine) Humanize(text string, opts models.WritingOptions) models.HumanizationResult {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return models.HumanizationResult{KeywordRetention: 1, Improvements: []string{}}
	}

	rng := e.newRNG()
	personal := opts.AddPersonalTouch || opts.Tone == "personal" || opts.Tone == "informal"
	passes := []pass{
		{"grammar touch-ups", true, e.grammarPass},
		{"sentence variation", true, e.variationPass},
		{"transition injection", true, e.transitionPass},
		{"personal perspective", personal, e.personalPass},
		{"formality adjustment", true, e.formalityPass},
		{"readability enhancement", opts.EnhanceReadability, e.readabilityPass},
		{"emotional resonance", true, e.emotionalPass},
		{"final polish", true, e.polishPass},
	}

	current := trimmed
	improvements := []string{}
	failures := 0
	maxWords := wordCount(trimmed) * 2
	for _, p := range passes {
		if !p.enabled {
			continue
		}
		out, err := runPass(p, rng, current, opts)
		if err != nil {
			failures++
			e.logger.Warn("transform pass failed, continuing with previous text",
				"pass", p.name, "error", err)
			continue
		}
		// Starters, frames and parentheticals pile up fast on short inputs;
		// a pass whose output breaches the expansion cap is skipped whole.
		if wordCount(out) > maxWords {
			e.logger.Debug("skipping pass output, word count over expansion cap",
				"pass", p.name, "words", wordCount(out), "cap", maxWords)
			continue
		}
		if out != current {
			improvements = append(improvements, p.name)
		}
		current = out
	}

	result := models.HumanizationResult{
		Text:             current,
		OriginalLength:   wordCount(trimmed),
		FinalLength:      wordCount(current),
		Improvements:     improvements,
		KeywordRetention: 1,
	}
	if failures >= 2 {
		// Too much of the pipeline was skipped to trust the computed
		// metrics; report conservative defaults instead. Grammar sits
		// higher since grammar-fix failures matter less than content ones.
		result.Metrics = models.HumanizationMetrics{
			SentenceVariation:  0.5,
			NaturalFlow:        0.5,
			Readability:        0.5,
			PersonalTouch:      0.5,
			EmotionalResonance: 0.5,
			GrammarQuality:     0.8,
		}
		result.HumanLikenessScore = 0.7
		return result
	}
	result.Metrics, result.HumanLikenessScore = e.Score(current)
	return result
}

// runPass executes one pass, converting panics into pass errors so a broken
// regex or index bug never takes down the request.
func runPass(p pass, rng *rand.Rand, text string, opts models.WritingOptions) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = "", fmt.Errorf("pass %s panicked: %v", p.name, r)
		}
	}()
	return p.fn(rng, text, opts)
}

// splitSentences segments text with the Punkt tokenizer, falling back to the
// whole text as a single sentence when no boundary is found.
func (e *Engine) splitSentences(text string) []string {
	var out []string
	for _, s := range e.seg.Tokenize(text) {
		if t := strings.TrimSpace(s.Text); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		out = []string{strings.TrimSpace(text)}
	}
	return out
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}

func choice(rng *rand.Rand, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	return candidates[rng.Intn(len(candidates))]
}

// lowerFirst lowercases the first letter of a sentence unless it starts with
// the pronoun "I" or an acronym.
func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	fields := strings.Fields(s)
	if len(fields) > 0 {
		first := fields[0]
		if first == "I" || first == "I'm" || first == "I've" || first == "I'd" || first == "I'll" {
			return s
		}
		if len(first) > 1 && first == strings.ToUpper(first) && strings.ContainsAny(first, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
			return s
		}
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
