package models

import "time"

// Rewrite modes accepted at the API boundary.
const (
	ModeParaphrase    = "paraphrase"
	ModeSimplify      = "simplify"
	ModeHumanize      = "humanize"
	ModeUltraHumanize = "ultra-humanize"
	ModeWepHumanize   = "wep-humanize"
)

// Tones accepted at the API boundary.
const (
	ToneCasual   = "casual"
	ToneFormal   = "formal"
	ToneAcademic = "academic"
)

// KnownMode reports whether mode is one of the supported rewrite modes.
func KnownMode(mode string) bool {
	switch mode {
	case ModeParaphrase, ModeSimplify, ModeHumanize, ModeUltraHumanize, ModeWepHumanize:
		return true
	}
	return false
}

// WritingOptions configures a single rewrite request. It is read-only input:
// the engine never mutates it and it is never shared across concurrent calls.
type WritingOptions struct {
	Mode               string `json:"mode"` // academic, casual, creative, professional, conversational, narrative
	Tone               string `json:"tone"` // formal, informal, balanced, enthusiastic, analytical, personal
	PreserveMeaning    bool   `json:"preserve_meaning"`
	EnhanceReadability bool   `json:"enhance_readability"`
	AddPersonalTouch   bool   `json:"add_personal_touch"`
	VaryStructure      bool   `json:"vary_structure"`
}

// HumanizationMetrics holds the per-dimension structural scores of a text.
// Every field is clamped to [0,1].
type HumanizationMetrics struct {
	SentenceVariation  float64 `json:"sentence_variation"`
	NaturalFlow        float64 `json:"natural_flow"`
	Readability        float64 `json:"readability"`
	PersonalTouch      float64 `json:"personal_touch"`
	EmotionalResonance float64 `json:"emotional_resonance"`
	GrammarQuality     float64 `json:"grammar_quality"`
}

// HumanizationResult is the output of one rewrite. Lengths are word counts.
type HumanizationResult struct {
	Text               string              `json:"text"`
	OriginalLength     int                 `json:"original_length"`
	FinalLength        int                 `json:"final_length"`
	HumanLikenessScore float64             `json:"human_likeness_score"` // 0-1, weighted over Metrics
	Improvements       []string            `json:"improvements"`
	Metrics            HumanizationMetrics `json:"metrics"`
	// KeywordRetention is the fraction of original key words still present
	// after a corpus-guided rewrite. 1.0 when no corpus pass ran. The guard
	// only reports drift; it never restores dropped words.
	KeywordRetention float64 `json:"keyword_retention"`
}

// WritingPattern holds the statistics derived from a single corpus essay.
// Computed once at analysis time and read-only afterward.
type WritingPattern struct {
	SentenceLengths    []int    `json:"sentence_lengths"`
	Transitions        []string `json:"transitions"`
	PersonalPronouns   []string `json:"personal_pronouns"`
	Contractions       []string `json:"contractions"`
	InformalConnectors []string `json:"informal_connectors"`
	EmotionalMarkers   []string `json:"emotional_markers"`
	Imperfections      []string `json:"imperfections"`
	VoiceShift         bool     `json:"voice_shift"`
	CommonWords        []string `json:"common_words"`
}

// DatasetStats aggregates patterns over a whole corpus.
type DatasetStats struct {
	EssayCount         int      `json:"essay_count"`
	AvgSentenceLength  float64  `json:"avg_sentence_length"`
	TopTransitions     []string `json:"top_transitions"`
	TopContractions    []string `json:"top_contractions"`
	TopImperfections   []string `json:"top_imperfections"`
	EmotionalResonance float64  `json:"emotional_resonance"` // 0-1
	PersonalTouch      float64  `json:"personal_touch"`      // 0-1
	// Fallback marks stats synthesized because the corpus directory was
	// missing or empty, so consumers can tell degraded data from real data.
	Fallback bool `json:"fallback"`
}

// CorpusEssay is one parsed reference document. Country, topic and level are
// parsed from the filename convention prefix_country_topic_level.txt and
// degrade to "UNKNOWN" for malformed names.
type CorpusEssay struct {
	ID      string         `json:"id"`
	Content string         `json:"content"`
	Country string         `json:"country"`
	Topic   string         `json:"topic"`
	Level   string         `json:"level"`
	Pattern WritingPattern `json:"pattern"`
}

// Rewrite is a persisted rewrite record.
type Rewrite struct {
	ID           string             `json:"id"`
	OriginalText string             `json:"original_text"`
	Mode         string             `json:"mode"`
	Tone         string             `json:"tone"`
	Result       HumanizationResult `json:"result"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}
