package humanizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/niouspark/humanizer/internal/models"
)

// ErrUnsupportedMode is returned for a mode value outside the supported set.
// This is the only error Process propagates; silently guessing a mode would
// corrupt the contract with the caller.
var ErrUnsupportedMode = errors.New("unsupported mode")

// LLM is the delegate for the paraphrase and simplify modes. Implementations
// wrap a hosted model; the orchestrator only builds the request and falls
// back to rule-based rewriting when the delegate is missing or failing.
type LLM interface {
	Paraphrase(ctx context.Context, text, tone string) (string, error)
	Simplify(ctx context.Context, text, tone string) (string, error)
}

// PatternSource supplies corpus-derived writing patterns. Implementations
// must be safe for concurrent use after initialization.
type PatternSource interface {
	SamplePatterns(rng *rand.Rand, n int) []models.WritingPattern
}

const patternSampleSize = 5

// Service dispatches rewrite modes across the transform engine, the
// corpus-guided rewriter and the LLM delegate.
type Service struct {
	engine   *Engine
	patterns PatternSource
	llm      LLM
	logger   *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithPatternSource attaches a corpus pattern source. Without one the
// corpus-guided modes degrade to plain humanize.
func WithPatternSource(ps PatternSource) ServiceOption {
	return func(s *Service) { s.patterns = ps }
}

// WithLLM attaches the paraphrase/simplify delegate.
func WithLLM(llm LLM) ServiceOption {
	return func(s *Service) { s.llm = llm }
}

// WithServiceLogger sets the service logger.
func WithServiceLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// NewService creates the orchestrator around an engine.
func NewService(engine *Engine, opts ...ServiceOption) *Service {
	s := &Service{engine: engine, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process rewrites text according to mode and tone. Unknown modes fail fast
// with ErrUnsupportedMode; empty input returns an empty result; every other
// degradation is absorbed and logged so the caller always gets usable text.
func (s *Service) Process(ctx context.Context, text, mode, tone string) (models.HumanizationResult, error) {
	if !models.KnownMode(mode) {
		return models.HumanizationResult{}, fmt.Errorf("%w: %q", ErrUnsupportedMode, mode)
	}
	if strings.TrimSpace(text) == "" {
		return models.HumanizationResult{KeywordRetention: 1, Improvements: []string{}}, nil
	}

	opts := optionsFor(mode, tone)

	switch mode {
	case models.ModeParaphrase:
		return s.delegate(ctx, text, tone, opts, s.paraphraseLLM), nil
	case models.ModeSimplify:
		return s.delegate(ctx, text, tone, opts, s.simplifyLLM), nil
	case models.ModeHumanize:
		return s.engine.Humanize(text, opts), nil
	case models.ModeUltraHumanize:
		return s.ultraHumanize(text, opts), nil
	case models.ModeWepHumanize:
		return s.wepHumanize(text, opts), nil
	}
	return models.HumanizationResult{}, fmt.Errorf("%w: %q", ErrUnsupportedMode, mode)
}

func (s *Service) paraphraseLLM(ctx context.Context, text, tone string) (string, error) {
	if s.llm == nil {
		return "", errors.New("no llm delegate configured")
	}
	return s.llm.Paraphrase(ctx, text, tone)
}

func (s *Service) simplifyLLM(ctx context.Context, text, tone string) (string, error) {
	if s.llm == nil {
		return "", errors.New("no llm delegate configured")
	}
	return s.llm.Simplify(ctx, text, tone)
}

// delegate runs an LLM-backed mode, degrading to the rule-based engine when
// the delegate is unavailable or fails.
func (s *Service) delegate(ctx context.Context, text, tone string, opts models.WritingOptions, call func(context.Context, string, string) (string, error)) models.HumanizationResult {
	out, err := call(ctx, text, tone)
	if err != nil || strings.TrimSpace(out) == "" {
		s.logger.Warn("llm delegate unavailable, falling back to rule-based rewrite", "error", err)
		return s.engine.Humanize(text, opts)
	}
	metrics, score := s.engine.Score(out)
	return models.HumanizationResult{
		Text:               out,
		OriginalLength:     wordCount(text),
		FinalLength:        wordCount(out),
		HumanLikenessScore: score,
		Improvements:       []string{"llm rewrite"},
		Metrics:            metrics,
		KeywordRetention:   keywordRetention(text, out),
	}
}

// ultraHumanize layers the aggressive substitution pass, and a corpus-guided
// aggressive rewrite when patterns are available, on top of plain humanize.
func (s *Service) ultraHumanize(text string, opts models.WritingOptions) models.HumanizationResult {
	result := s.engine.Humanize(text, opts)
	rng := s.engine.newRNG()
	result.Text = s.engine.ApplyAggressiveTouches(rng, result.Text)
	result.Improvements = append(result.Improvements, "aggressive touches")

	if s.patterns != nil {
		sampled := s.patterns.SamplePatterns(rng, patternSampleSize)
		out, retention := s.engine.HumanizeWithPatterns(result.Text, sampled, IntensityAggressive)
		result.Text = out
		result.KeywordRetention = retention
		result.Improvements = append(result.Improvements, "corpus-guided rewrite (aggressive)")
	} else {
		s.logger.Warn("corpus patterns unavailable, ultra-humanize ran without corpus stage")
	}

	result.FinalLength = wordCount(result.Text)
	result.Metrics, result.HumanLikenessScore = s.engine.Score(result.Text)
	return result
}

// wepHumanize runs the corpus-guided rewriter first and the full transform
// engine on its output. With no corpus it degrades to plain humanize, logged
// distinctly from a successful corpus-guided pass.
func (s *Service) wepHumanize(text string, opts models.WritingOptions) models.HumanizationResult {
	if s.patterns == nil {
		s.logger.Warn("corpus unavailable, degrading wep-humanize to humanize")
		return s.engine.Humanize(text, opts)
	}

	rng := s.engine.newRNG()
	sampled := s.patterns.SamplePatterns(rng, patternSampleSize)
	guided, retention := s.engine.HumanizeWithPatterns(text, sampled, IntensityMedium)

	result := s.engine.Humanize(guided, opts)
	result.OriginalLength = wordCount(text)
	result.KeywordRetention = retention
	result.Improvements = append([]string{"corpus-guided rewrite"}, result.Improvements...)
	return result
}

// optionsFor maps the API-level mode/tone pair onto engine options.
func optionsFor(mode, tone string) models.WritingOptions {
	opts := models.WritingOptions{
		Mode:               "conversational",
		Tone:               "balanced",
		PreserveMeaning:    true,
		EnhanceReadability: true,
		VaryStructure:      true,
	}
	switch tone {
	case models.ToneCasual:
		opts.Mode = "conversational"
		opts.Tone = "informal"
		opts.AddPersonalTouch = true
	case models.ToneFormal:
		opts.Mode = "professional"
		opts.Tone = "formal"
	case models.ToneAcademic:
		opts.Mode = "academic"
		opts.Tone = "formal"
	}
	if mode == models.ModeSimplify {
		opts.VaryStructure = false
	}
	return opts
}
