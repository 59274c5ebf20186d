package humanizer

import (
	"math/rand"
	"strings"

	"github.com/bbalet/stopwords"

	"github.com/niouspark/humanizer/internal/models"
)

// Intensity controls how frequently the corpus-guided rules fire.
type Intensity string

const (
	IntensityLight      Intensity = "light"
	IntensityMedium     Intensity = "medium"
	IntensityAggressive Intensity = "aggressive"
)

// featureProb returns the trigger probability for one injection feature at
// this intensity: roughly linear 0.2/0.4/0.6 bands.
func (in Intensity) featureProb() float64 {
	switch in {
	case IntensityAggressive:
		return 0.6
	case IntensityMedium:
		return 0.4
	default:
		return 0.2
	}
}

// lengthBand returns the half-width of the randomized sentence-length target
// band around the corpus average.
func (in Intensity) lengthBand() float64 {
	switch in {
	case IntensityAggressive:
		return 0.3
	case IntensityMedium:
		return 0.2
	default:
		return 0.1
	}
}

// auxiliaries are never dropped when contracting a sentence.
var auxiliaries = map[string]bool{
	"is": true, "are": true, "was": true, "were": true, "be": true, "been": true,
	"have": true, "has": true, "had": true, "do": true, "does": true, "did": true,
	"will": true, "would": true, "can": true, "could": true, "should": true,
	"must": true, "may": true, "might": true, "not": true,
}

var droppableFillers = map[string]bool{
	"very": true, "quite": true, "really": true, "rather": true, "just": true,
	"simply": true, "actually": true, "basically": true, "certainly": true,
	"the": true, "a": true, "an": true, "some": true, "also": true,
}

// corpusPools flattens the sampled patterns into candidate pools for the
// injection features.
type corpusPools struct {
	transitions   []string
	contractions  []string
	connectors    []string
	imperfections []string
	emotional     []string
	avgLen        float64
}

func poolsFrom(patterns []models.WritingPattern) corpusPools {
	p := corpusPools{}
	total, count := 0, 0
	for _, pat := range patterns {
		p.transitions = append(p.transitions, pat.Transitions...)
		p.contractions = append(p.contractions, pat.Contractions...)
		p.connectors = append(p.connectors, pat.InformalConnectors...)
		p.imperfections = append(p.imperfections, pat.Imperfections...)
		p.emotional = append(p.emotional, pat.EmotionalMarkers...)
		for _, n := range pat.SentenceLengths {
			total += n
			count++
		}
	}
	p.avgLen = 15
	if count > 0 {
		p.avgLen = float64(total) / float64(count)
	}
	return p
}

// HumanizeWithPatterns rewrites text using sentence-length targets and
// vocabulary drawn from corpus-derived patterns instead of the static
// lexicon. It returns the rewritten text and the key-word retention ratio.
// An empty pattern list returns the input unchanged. The retention guard is
// warn-only: drift below 0.7 is logged but nothing is restored.
func (e *Engine) HumanizeWithPatterns(text string, patterns []models.WritingPattern, intensity Intensity) (string, float64) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || len(patterns) == 0 {
		return text, 1
	}

	rng := e.newRNG()
	pools := poolsFrom(patterns)
	prob := intensity.featureProb()
	band := intensity.lengthBand()

	ss := e.splitSentences(trimmed)
	for i, s := range ss {
		target := pools.avgLen * (1 + (rng.Float64()*2-1)*band)
		if target < 5 {
			target = 5
		}
		if target > 25 {
			target = 25
		}
		s = retargetLength(rng, s, int(target), pools)

		if i > 0 && rng.Float64() < prob {
			if t := choice(rng, pools.transitions); t != "" && !e.lex.IsTransitionStart(s) {
				s = upperFirst(t) + ", " + lowerFirst(s)
			}
		}
		if rng.Float64() < prob {
			if imp := choice(rng, pools.imperfections); imp != "" {
				s = injectAfterFirstWord(s, imp)
			}
		}
		if rng.Float64() < prob {
			if c := choice(rng, pools.connectors); c != "" && i > 0 && !e.lex.IsTransitionStart(s) {
				s = upperFirst(c) + ", " + lowerFirst(s)
			}
		}
		ss[i] = s
	}
	out := strings.Join(ss, " ")

	// Contractions fire only for pairs the corpus actually uses.
	for _, pair := range e.lex.Contractions() {
		if !containsFold(pools.contractions, pair.Informal) {
			continue
		}
		if rng.Float64() < prob {
			out = replaceWordCaseAware(out, pair.Formal, pair.Informal)
		}
	}

	out, _ = e.polishPass(rng, out, models.WritingOptions{})

	retention := keywordRetention(trimmed, out)
	if retention < 0.7 {
		e.logger.Warn("corpus-guided rewrite dropped too many key words",
			"retention", retention, "intensity", string(intensity))
	}
	return out, retention
}

// retargetLength nudges a sentence toward the target word count: expanding
// with a connector, emotional qualifier or intensifier, or contracting by
// dropping non-essential words while keeping the first word, last word and
// auxiliaries.
func retargetLength(rng *rand.Rand, s string, target int, pools corpusPools) string {
	words := strings.Fields(s)
	switch {
	case len(words) < target-2:
		trimmed := strings.TrimRight(s, ".!?")
		punct := "."
		if trimmed != s {
			punct = s[len(trimmed):]
		}
		if q := choice(rng, pools.emotional); q != "" && rng.Float64() < 0.5 {
			return trimmed + ", which is " + q + punct
		}
		adv := choice(rng, []string{"really", "definitely", "genuinely", "honestly"})
		return trimmed + ", " + adv + punct
	case len(words) > target+2:
		kept := []string{words[0]}
		budget := len(words) - target
		for i := 1; i < len(words)-1; i++ {
			w := strings.ToLower(strings.Trim(words[i], ".,!?;:"))
			if budget > 0 && droppableFillers[w] && !auxiliaries[w] {
				budget--
				continue
			}
			kept = append(kept, words[i])
		}
		kept = append(kept, words[len(words)-1])
		return strings.Join(kept, " ")
	default:
		return s
	}
}

func containsFold(pool []string, s string) bool {
	for _, p := range pool {
		if strings.EqualFold(p, s) {
			return true
		}
	}
	return false
}

// keywordRetention computes the fraction of the original's key words (longer
// than 3 characters, stopwords removed) that still appear in the rewritten
// text by case-insensitive substring match.
func keywordRetention(original, rewritten string) float64 {
	cleaned := stopwords.CleanString(strings.ToLower(original), "en", false)
	seen := map[string]bool{}
	var keys []string
	for _, w := range strings.Fields(cleaned) {
		w = strings.Trim(w, ".,!?;:\"'()")
		if len(w) <= 3 || seen[w] {
			continue
		}
		seen[w] = true
		keys = append(keys, w)
	}
	if len(keys) == 0 {
		return 1
	}
	lowerOut := strings.ToLower(rewritten)
	found := 0
	for _, k := range keys {
		if strings.Contains(lowerOut, k) {
			found++
		}
	}
	return float64(found) / float64(len(keys))
}
