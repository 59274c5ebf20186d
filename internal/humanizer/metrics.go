package humanizer

import (
	"regexp"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/niouspark/humanizer/internal/models"
)

// Weights of the human-likeness score. They sum to 1.0 and are part of the
// result contract; do not retune them casually.
const (
	weightGrammar   = 0.25
	weightFlow      = 0.20
	weightVariation = 0.15
	weightReadable  = 0.15
	weightEmotional = 0.15
	weightPersonal  = 0.10
)

var scoreSentenceSplit = regexp.MustCompile(`[^.!?]+[.!?]+`)

var firstSecondPronouns = []string{"i", "me", "my", "mine", "we", "us", "our", "you", "your"}

// Score computes the descriptive metrics of a text and the weighted
// human-likeness scalar. All fields are clamped to [0,1] for arbitrary input,
// including degenerate single-word or punctuation-free text.
func (e *Engine) Score(text string) (models.HumanizationMetrics, float64) {
	lower := strings.ToLower(text)
	words := strings.Fields(text)
	sents := scoreSentenceSplit.FindAllString(text, -1)
	if len(sents) == 0 && strings.TrimSpace(text) != "" {
		sents = []string{text}
	}
	sentenceCount := len(sents)
	if sentenceCount == 0 {
		sentenceCount = 1
	}

	lengths := make([]float64, 0, len(sents))
	for _, s := range sents {
		lengths = append(lengths, float64(len(strings.Fields(s))))
	}

	variance := 0.0
	avgWords := 0.0
	if len(lengths) > 0 {
		variance = stat.PopVariance(lengths, nil)
		avgWords = stat.Mean(lengths, nil)
	}

	transitionCount := 0
	for _, t := range e.lex.AllTransitions() {
		transitionCount += strings.Count(lower, strings.ToLower(strings.TrimSuffix(t, ",")))
	}

	pronounCount := 0
	emotionalCount := 0
	for _, w := range words {
		w = strings.ToLower(strings.Trim(w, ".,!?;:\"'()"))
		for _, p := range firstSecondPronouns {
			if w == p {
				pronounCount++
				break
			}
		}
	}
	for _, ew := range e.lex.EmotionalWords() {
		emotionalCount += strings.Count(lower, ew)
	}

	m := models.HumanizationMetrics{
		SentenceVariation: clamp01(variance / 50),
		NaturalFlow:       clamp01(float64(transitionCount) / float64(sentenceCount)),
		Readability:       clamp01((20 - avgWords) / 10),
		GrammarQuality:    1 - float64(countGrammarIssues(text))/float64(sentenceCount),
	}
	if m.GrammarQuality < 0.5 {
		m.GrammarQuality = 0.5
	}
	if len(words) > 0 {
		m.PersonalTouch = clamp01(float64(pronounCount) / float64(len(words)) * 10)
		m.EmotionalResonance = clamp01(float64(emotionalCount) / float64(len(words)) * 20)
	}
	return m, WeightedScore(m)
}

// WeightedScore combines the six metric dimensions into the 0-1
// human-likeness scalar using the documented fixed weights.
func WeightedScore(m models.HumanizationMetrics) float64 {
	return clamp01(weightGrammar*m.GrammarQuality +
		weightFlow*m.NaturalFlow +
		weightVariation*m.SentenceVariation +
		weightReadable*m.Readability +
		weightEmotional*m.EmotionalResonance +
		weightPersonal*m.PersonalTouch)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
