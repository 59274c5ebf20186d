package humanizer

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/niouspark/humanizer/internal/models"
)

type stubLLM struct {
	paraphrased string
	simplified  string
	err         error
	calls       int
}

func (s *stubLLM) Paraphrase(_ context.Context, _, _ string) (string, error) {
	s.calls++
	return s.paraphrased, s.err
}

func (s *stubLLM) Simplify(_ context.Context, _, _ string) (string, error) {
	s.calls++
	return s.simplified, s.err
}

type stubPatterns struct{}

func (stubPatterns) SamplePatterns(rng *rand.Rand, n int) []models.WritingPattern {
	out := make([]models.WritingPattern, 0, n)
	base := testPatterns()
	for len(out) < n {
		out = append(out, base[len(out)%len(base)])
	}
	return out
}

func newTestService(t *testing.T, opts ...ServiceOption) *Service {
	t.Helper()
	return NewService(newTestEngine(t, WithSeed(9)), opts...)
}

func TestProcessUnsupportedMode(t *testing.T) {
	s := newTestService(t)

	for _, mode := range []string{"", "translate", "HUMANIZE", "ultra"} {
		_, err := s.Process(context.Background(), "Some text.", mode, "")
		if !errors.Is(err, ErrUnsupportedMode) {
			t.Errorf("mode %q: expected ErrUnsupportedMode, got %v", mode, err)
		}
	}
}

func TestProcessEmptyInput(t *testing.T) {
	s := newTestService(t)

	for _, mode := range []string{
		models.ModeParaphrase, models.ModeSimplify, models.ModeHumanize,
		models.ModeUltraHumanize, models.ModeWepHumanize,
	} {
		result, err := s.Process(context.Background(), "   \n  ", mode, "")
		if err != nil {
			t.Errorf("mode %q: empty input should not error, got %v", mode, err)
		}
		if result.Text != "" {
			t.Errorf("mode %q: empty input should produce empty text, got %q", mode, result.Text)
		}
	}
}

func TestProcessHumanize(t *testing.T) {
	s := newTestService(t)

	result, err := s.Process(context.Background(), sampleText, models.ModeHumanize, models.ToneCasual)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if result.Text == "" {
		t.Fatal("expected rewritten text")
	}
	if result.HumanLikenessScore < 0 || result.HumanLikenessScore > 1 {
		t.Errorf("score out of range: %f", result.HumanLikenessScore)
	}
}

func TestProcessParaphraseWithLLM(t *testing.T) {
	llm := &stubLLM{paraphrased: "A fresh wording of the original text with committee and proposal kept."}
	s := newTestService(t, WithLLM(llm))

	result, err := s.Process(context.Background(), "The committee discussed the proposal.", models.ModeParaphrase, "")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if llm.calls != 1 {
		t.Errorf("expected one LLM call, got %d", llm.calls)
	}
	if result.Text != llm.paraphrased {
		t.Errorf("expected LLM output, got %q", result.Text)
	}
	if len(result.Improvements) == 0 || result.Improvements[0] != "llm rewrite" {
		t.Errorf("expected llm rewrite improvement, got %v", result.Improvements)
	}
}

func TestProcessParaphraseFallsBack(t *testing.T) {
	tests := []struct {
		name string
		llm  LLM
	}{
		{"no delegate", nil},
		{"delegate error", &stubLLM{err: errors.New("connection refused")}},
		{"empty response", &stubLLM{paraphrased: "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []ServiceOption
			if tt.llm != nil {
				opts = append(opts, WithLLM(tt.llm))
			}
			s := newTestService(t, opts...)

			result, err := s.Process(context.Background(), sampleText, models.ModeParaphrase, "")
			if err != nil {
				t.Fatalf("fallback should absorb the failure, got %v", err)
			}
			if result.Text == "" {
				t.Error("fallback should still produce text")
			}
		})
	}
}

func TestProcessUltraHumanize(t *testing.T) {
	s := newTestService(t, WithPatternSource(stubPatterns{}))

	result, err := s.Process(context.Background(), sampleText, models.ModeUltraHumanize, models.ToneCasual)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if result.Text == "" {
		t.Fatal("expected rewritten text")
	}

	var sawCorpus bool
	for _, imp := range result.Improvements {
		if strings.Contains(imp, "corpus-guided") {
			sawCorpus = true
		}
	}
	if !sawCorpus {
		t.Errorf("ultra-humanize with patterns should record the corpus stage, got %v", result.Improvements)
	}
}

func TestProcessUltraHumanizeWithoutPatterns(t *testing.T) {
	s := newTestService(t)

	result, err := s.Process(context.Background(), sampleText, models.ModeUltraHumanize, "")
	if err != nil {
		t.Fatalf("missing corpus should degrade, not fail: %v", err)
	}
	if result.Text == "" {
		t.Error("expected rewritten text without the corpus stage")
	}
	for _, imp := range result.Improvements {
		if strings.Contains(imp, "corpus-guided") {
			t.Errorf("no corpus stage should be recorded, got %v", result.Improvements)
		}
	}
}

func TestProcessWepHumanize(t *testing.T) {
	s := newTestService(t, WithPatternSource(stubPatterns{}))

	result, err := s.Process(context.Background(), sampleText, models.ModeWepHumanize, "")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if result.Text == "" {
		t.Fatal("expected rewritten text")
	}
	if len(result.Improvements) == 0 || result.Improvements[0] != "corpus-guided rewrite" {
		t.Errorf("wep-humanize should record the corpus pass first, got %v", result.Improvements)
	}
	if result.OriginalLength != len(strings.Fields(sampleText)) {
		t.Errorf("original length should count the input text, got %d", result.OriginalLength)
	}
	if result.KeywordRetention < 0 || result.KeywordRetention > 1 {
		t.Errorf("retention out of range: %f", result.KeywordRetention)
	}
}

func TestProcessWepHumanizeDegradesWithoutCorpus(t *testing.T) {
	s := newTestService(t)

	result, err := s.Process(context.Background(), sampleText, models.ModeWepHumanize, "")
	if err != nil {
		t.Fatalf("missing corpus should degrade to humanize, got %v", err)
	}
	if result.Text == "" {
		t.Error("expected rewritten text")
	}
	if result.KeywordRetention != 1 {
		t.Errorf("degraded wep-humanize runs no corpus pass, retention should be 1, got %f", result.KeywordRetention)
	}
}

func TestProcessConcurrent(t *testing.T) {
	s := newTestService(t, WithPatternSource(stubPatterns{}))

	modes := []string{
		models.ModeHumanize, models.ModeUltraHumanize, models.ModeWepHumanize,
		models.ModeParaphrase, models.ModeSimplify,
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(modes)*8)
	for i := 0; i < 8; i++ {
		for _, mode := range modes {
			wg.Add(1)
			go func(mode string) {
				defer wg.Done()
				result, err := s.Process(context.Background(), sampleText, mode, models.ToneCasual)
				if err != nil {
					errs <- err
					return
				}
				if result.Text == "" {
					errs <- errors.New("empty result for mode " + mode)
				}
			}(mode)
		}
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Process failed: %v", err)
	}
}

func TestOptionsFor(t *testing.T) {
	tests := []struct {
		name         string
		mode         string
		tone         string
		wantMode     string
		wantPersonal bool
		wantVary     bool
	}{
		{"casual", models.ModeHumanize, models.ToneCasual, "conversational", true, true},
		{"formal", models.ModeHumanize, models.ToneFormal, "professional", false, true},
		{"academic", models.ModeHumanize, models.ToneAcademic, "academic", false, true},
		{"default tone", models.ModeHumanize, "", "conversational", false, true},
		{"simplify disables restructuring", models.ModeSimplify, "", "conversational", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := optionsFor(tt.mode, tt.tone)
			if opts.Mode != tt.wantMode {
				t.Errorf("mode = %q, want %q", opts.Mode, tt.wantMode)
			}
			if opts.AddPersonalTouch != tt.wantPersonal {
				t.Errorf("personal touch = %v, want %v", opts.AddPersonalTouch, tt.wantPersonal)
			}
			if opts.VaryStructure != tt.wantVary {
				t.Errorf("vary structure = %v, want %v", opts.VaryStructure, tt.wantVary)
			}
		})
	}
}
