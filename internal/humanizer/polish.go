package humanizer

import (
	"math/rand"
	"regexp"
	"strings"
	"unicode"

	"github.com/niouspark/humanizer/internal/models"
)

var (
	spaceRuns        = regexp.MustCompile(`[ \t]+`)
	spaceAroundBreak = regexp.MustCompile(`[ \t]*\n[ \t]*`)
	breakRuns        = regexp.MustCompile(`\n{2,}`)
	spaceBeforePunct = regexp.MustCompile(` +([.,!?;:])`)
	punctNoSpace     = regexp.MustCompile(`([.,!?;:])([A-Za-z])`)
	sentenceStart    = regexp.MustCompile(`([.!?][ \n]+)([a-z])`)
)

// polishPass normalizes whitespace and punctuation spacing, guarantees a
// terminal punctuation mark and re-capitalizes sentence starts. The pass is
// idempotent: applying it twice equals applying it once.
func (e *Engine) polishPass(_ *rand.Rand, text string, _ models.WritingOptions) (string, error) {
	text = spaceRuns.ReplaceAllString(text, " ")
	text = spaceAroundBreak.ReplaceAllString(text, "\n")
	text = breakRuns.ReplaceAllString(text, "\n\n")
	text = spaceBeforePunct.ReplaceAllString(text, "$1")
	text = punctNoSpace.ReplaceAllString(text, "$1 $2")
	text = strings.TrimSpace(text)
	if text == "" {
		return text, nil
	}
	if !strings.ContainsRune(".!?", rune(text[len(text)-1])) {
		text += "."
	}
	text = sentenceStart.ReplaceAllStringFunc(text, func(m string) string {
		r := []rune(m)
		r[len(r)-1] = unicode.ToUpper(r[len(r)-1])
		return string(r)
	})
	return upperFirst(text), nil
}
