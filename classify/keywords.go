// ABOUTME: Offline keyword classifier mirroring the Gemini prompt rules
// ABOUTME: Later pipeline stages win when several match
package classify

import (
	"context"
	"strings"

	"github.com/harperreed/dealflow/models"
)

// stagePhrases maps a stage name to phrases that imply it.
var stagePhrases = map[string][]string{
	"Showings": {"showings", "showing", "touring", "toured"},
	"LOI":      {"sent loi", "letter of intent", " loi"},
	"Contract": {"under contract", "signed contract"},
	"CCO":      {"cco received", "closing"},
}

// Keywords suggests a stage by phrase matching. Any configured stage is also
// matched by its own name as a whole word.
type Keywords struct{}

func (Keywords) SuggestStage(_ context.Context, text string, stages []models.DealStage) (string, error) {
	padded := " " + strings.ToLower(text) + " "

	for i := len(stages) - 1; i >= 0; i-- {
		name := stages[i].Name
		for _, phrase := range stagePhrases[name] {
			if strings.Contains(padded, phrase) {
				return name, nil
			}
		}
		if containsWord(padded, strings.ToLower(name)) {
			return name, nil
		}
	}
	return "", nil
}

func containsWord(haystack, word string) bool {
	if word == "" {
		return false
	}
	isLetter := func(b byte) bool {
		return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
	}
	for from := 0; ; {
		idx := strings.Index(haystack[from:], word)
		if idx < 0 {
			return false
		}
		start := from + idx
		end := start + len(word)
		if (start == 0 || !isLetter(haystack[start-1])) && (end >= len(haystack) || !isLetter(haystack[end])) {
			return true
		}
		from = start + 1
	}
}
