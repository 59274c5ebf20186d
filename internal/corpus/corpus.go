// Package corpus analyzes a directory of reference essays and derives the
// sentence-length and marker statistics the corpus-guided rewriter draws on.
// Analysis runs once per process and is memoized; a missing or empty corpus
// degrades to synthetic fallback patterns instead of failing the caller.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/niouspark/humanizer/internal/models"
)

// ErrCorpusUnavailable is returned by Load when the corpus directory cannot
// be listed or contains no parseable documents. The analyzer still serves
// fallback patterns after this error.
var ErrCorpusUnavailable = errors.New("corpus unavailable")

var sentenceSplit = regexp.MustCompile(`[^.!?]+[.!?]+`)

// Marker words scanned per essay. Membership is presence-based, not
// frequency-weighted.
var (
	transitionMarkers = []string{
		"however", "moreover", "furthermore", "additionally", "therefore", "consequently",
		"on the other hand", "as a result", "in other words", "for example", "in fact",
		"that said", "even so", "besides",
	}
	pronounMarkers = []string{"i", "me", "my", "we", "our", "you", "your"}
	contractionMarkers = []string{
		"can't", "won't", "don't", "doesn't", "didn't", "isn't", "aren't", "wasn't",
		"it's", "that's", "there's", "they're", "we're", "you're", "i'm", "i've",
	}
	connectorMarkers = []string{"plus", "also", "anyway", "besides", "so", "still", "then again"}
	emotionMarkers   = []string{
		"love", "hate", "fear", "hope", "amazing", "terrible", "wonderful", "exciting",
		"frustrating", "surprising", "fascinating", "striking",
	}
	imperfectionMarkers = []string{"you know", "i mean", "sort of", "kind of", "basically", "honestly", "actually"}
)

// Analyzer reads and caches corpus statistics. Safe for concurrent use once
// Load has returned.
type Analyzer struct {
	dir    string
	logger *slog.Logger

	once     sync.Once
	stats    models.DatasetStats
	patterns []models.WritingPattern
	loadErr  error
}

// New creates an analyzer for a directory of .txt reference essays.
func New(dir string) *Analyzer {
	return &Analyzer{dir: dir, logger: slog.Default()}
}

// Load analyzes the corpus directory. It runs at most once per Analyzer; all
// later calls return the memoized result. On failure it installs fallback
// patterns and returns ErrCorpusUnavailable so callers can log the degraded
// mode, but they may keep using the analyzer.
func (a *Analyzer) Load(ctx context.Context) (models.DatasetStats, error) {
	a.once.Do(func() {
		a.stats, a.patterns, a.loadErr = a.analyze(ctx)
		if a.loadErr != nil {
			a.logger.Warn("corpus analysis failed, using fallback patterns",
				"dir", a.dir, "error", a.loadErr)
			a.stats = fallbackStats()
			a.patterns = fallbackPatterns()
		}
	})
	return a.stats, a.loadErr
}

// Stats returns the memoized dataset statistics. Call Load first; before Load
// this returns the zero value.
func (a *Analyzer) Stats() models.DatasetStats {
	return a.stats
}

// SamplePatterns draws n patterns from the analyzed corpus: uniformly without
// replacement while n does not exceed the corpus size, with replacement
// beyond it. It never fails; an unloaded analyzer yields fallback patterns.
func (a *Analyzer) SamplePatterns(rng *rand.Rand, n int) []models.WritingPattern {
	pool := a.patterns
	if len(pool) == 0 {
		pool = fallbackPatterns()
	}
	if n <= 0 {
		return nil
	}
	if n <= len(pool) {
		idx := rng.Perm(len(pool))[:n]
		out := make([]models.WritingPattern, n)
		for i, j := range idx {
			out[i] = pool[j]
		}
		return out
	}
	out := make([]models.WritingPattern, n)
	for i := range out {
		out[i] = pool[rng.Intn(len(pool))]
	}
	return out
}

func (a *Analyzer) analyze(ctx context.Context) (models.DatasetStats, []models.WritingPattern, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return models.DatasetStats{}, nil, fmt.Errorf("%w: %v", ErrCorpusUnavailable, err)
	}

	var essays []models.CorpusEssay
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return models.DatasetStats{}, nil, ctx.Err()
		default:
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		content, err := os.ReadFile(filepath.Join(a.dir, entry.Name()))
		if err != nil {
			a.logger.Warn("skipping unreadable corpus file", "file", entry.Name(), "error", err)
			continue
		}
		text := strings.TrimSpace(string(content))
		if text == "" {
			continue
		}
		country, topic, level := parseFilename(entry.Name())
		essays = append(essays, models.CorpusEssay{
			ID:      strings.TrimSuffix(entry.Name(), ".txt"),
			Content: text,
			Country: country,
			Topic:   topic,
			Level:   level,
			Pattern: analyzeEssay(text),
		})
	}

	if len(essays) == 0 {
		return models.DatasetStats{}, nil, fmt.Errorf("%w: no parseable documents in %s", ErrCorpusUnavailable, a.dir)
	}

	patterns := make([]models.WritingPattern, len(essays))
	for i, e := range essays {
		patterns[i] = e.Pattern
	}
	stats := aggregate(patterns)
	a.logger.Info("corpus analyzed",
		"dir", a.dir,
		"essays", stats.EssayCount,
		"avg_sentence_length", stats.AvgSentenceLength,
	)
	return stats, patterns, nil
}

// analyzeEssay derives a WritingPattern from one document: sentence word
// counts plus presence scans against each marker category.
func analyzeEssay(text string) models.WritingPattern {
	p := models.WritingPattern{}
	for _, s := range sentenceSplit.FindAllString(text, -1) {
		if n := len(strings.Fields(s)); n > 0 {
			p.SentenceLengths = append(p.SentenceLengths, n)
		}
	}
	lower := strings.ToLower(text)

	p.Transitions = presentMarkers(lower, transitionMarkers)
	p.Contractions = presentMarkers(lower, contractionMarkers)
	p.InformalConnectors = presentWords(lower, connectorMarkers)
	p.EmotionalMarkers = presentWords(lower, emotionMarkers)
	p.Imperfections = presentMarkers(lower, imperfectionMarkers)
	p.PersonalPronouns = presentWords(lower, pronounMarkers)
	p.VoiceShift = len(presentWords(lower, []string{"i", "my"})) > 0 &&
		len(presentWords(lower, []string{"you", "your"})) > 0
	p.CommonWords = frequentContentWords(lower, 5)
	return p
}

// presentMarkers returns the markers found by case-insensitive substring
// match, preserving the category's order.
func presentMarkers(lowerText string, markers []string) []string {
	var found []string
	for _, m := range markers {
		if strings.Contains(lowerText, m) {
			found = append(found, m)
		}
	}
	return found
}

// presentWords is like presentMarkers but requires word-boundary matches.
func presentWords(lowerText string, words []string) []string {
	fields := strings.FieldsFunc(lowerText, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && r != '\''
	})
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		seen[f] = true
	}
	var found []string
	for _, w := range words {
		if seen[w] {
			found = append(found, w)
		}
	}
	return found
}

func frequentContentWords(lowerText string, limit int) []string {
	freq := map[string]int{}
	var order []string
	for _, w := range strings.Fields(lowerText) {
		w = strings.Trim(w, ".,!?;:\"'()")
		if len(w) <= 4 {
			continue
		}
		if freq[w] == 0 {
			order = append(order, w)
		}
		freq[w]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return freq[order[i]] > freq[order[j]]
	})
	var out []string
	for _, w := range order {
		if freq[w] < 2 {
			continue
		}
		out = append(out, w)
		if len(out) == limit {
			break
		}
	}
	return out
}

// aggregate builds dataset-level statistics from per-essay patterns. "Most
// common" lists are ranked by raw occurrence count with ties broken by
// first-seen order.
func aggregate(patterns []models.WritingPattern) models.DatasetStats {
	var lengths []float64
	emotional, personal := 0, 0
	for _, p := range patterns {
		for _, n := range p.SentenceLengths {
			lengths = append(lengths, float64(n))
		}
		if len(p.EmotionalMarkers) > 0 {
			emotional++
		}
		if len(p.PersonalPronouns) > 0 {
			personal++
		}
	}

	avg := 0.0
	if len(lengths) > 0 {
		avg = stat.Mean(lengths, nil)
	}

	return models.DatasetStats{
		EssayCount:         len(patterns),
		AvgSentenceLength:  avg,
		TopTransitions:     topByCount(patterns, func(p models.WritingPattern) []string { return p.Transitions }, 5),
		TopContractions:    topByCount(patterns, func(p models.WritingPattern) []string { return p.Contractions }, 5),
		TopImperfections:   topByCount(patterns, func(p models.WritingPattern) []string { return p.Imperfections }, 5),
		EmotionalResonance: float64(emotional) / float64(len(patterns)),
		PersonalTouch:      float64(personal) / float64(len(patterns)),
	}
}

func topByCount(patterns []models.WritingPattern, pick func(models.WritingPattern) []string, limit int) []string {
	counts := map[string]int{}
	var order []string
	for _, p := range patterns {
		for _, s := range pick(p) {
			if counts[s] == 0 {
				order = append(order, s)
			}
			counts[s]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > limit {
		order = order[:limit]
	}
	return order
}

// parseFilename extracts country, topic and level from the
// prefix_country_topic_level.txt convention. Any missing segment becomes
// "UNKNOWN"; the convention is isolated here so a future corpus format only
// touches this function.
func parseFilename(name string) (country, topic, level string) {
	country, topic, level = "UNKNOWN", "UNKNOWN", "UNKNOWN"
	base := strings.TrimSuffix(name, filepath.Ext(name))
	parts := strings.Split(base, "_")
	if len(parts) >= 2 && parts[1] != "" {
		country = parts[1]
	}
	if len(parts) >= 3 && parts[2] != "" {
		topic = parts[2]
	}
	if len(parts) >= 4 && parts[3] != "" {
		level = parts[3]
	}
	return country, topic, level
}

// fallbackStats synthesizes plausible dataset statistics for when no corpus
// is available. Fallback is set so consumers never mistake these for real
// measurements.
func fallbackStats() models.DatasetStats {
	return models.DatasetStats{
		EssayCount:         0,
		AvgSentenceLength:  15,
		TopTransitions:     []string{"however", "for example", "in fact"},
		TopContractions:    []string{"it's", "don't", "that's"},
		TopImperfections:   []string{"honestly", "you know", "basically"},
		EmotionalResonance: 0.5,
		PersonalTouch:      0.5,
		Fallback:           true,
	}
}

func fallbackPatterns() []models.WritingPattern {
	return []models.WritingPattern{
		{
			SentenceLengths:    []int{8, 14, 11, 19, 9, 16},
			Transitions:        []string{"however", "for example"},
			PersonalPronouns:   []string{"i", "my"},
			Contractions:       []string{"it's", "don't"},
			InformalConnectors: []string{"plus", "anyway"},
			EmotionalMarkers:   []string{"exciting", "frustrating"},
			Imperfections:      []string{"honestly", "you know"},
		},
		{
			SentenceLengths:    []int{12, 7, 21, 13, 10},
			Transitions:        []string{"in fact", "on the other hand"},
			PersonalPronouns:   []string{"we", "our"},
			Contractions:       []string{"that's", "can't"},
			InformalConnectors: []string{"so", "also"},
			EmotionalMarkers:   []string{"surprising", "wonderful"},
			Imperfections:      []string{"basically", "sort of"},
		},
	}
}
