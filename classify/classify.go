// ABOUTME: Advisory deal-stage classification of free-text call notes
// ABOUTME: Shared prompt building, response matching and classifier selection
package classify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harperreed/dealflow/models"
)

// ErrDisabled means no classifier is configured (for example, no API key).
var ErrDisabled = errors.New("stage classification disabled")

// Classifier names accepted by New.
const (
	KindGemini   = "gemini"
	KindKeywords = "keywords"
	KindOff      = "off"
)

// Classifier suggests a deal stage for note text. "" means no suggestion.
type Classifier interface {
	SuggestStage(ctx context.Context, text string, stages []models.DealStage) (string, error)
}

// Options for New.
type Options struct {
	Kind   string
	APIKey string
	Model  string
}

// New returns the classifier named by opts.Kind. A Gemini classifier without
// an API key comes back as Disabled so the caller logs it once and carries on.
func New(ctx context.Context, opts Options) (Classifier, error) {
	switch opts.Kind {
	case KindGemini, "":
		if opts.APIKey == "" {
			return Disabled{Reason: "no API key configured"}, nil
		}
		return NewGemini(ctx, GeminiConfig{APIKey: opts.APIKey, Model: opts.Model})
	case KindKeywords:
		return Keywords{}, nil
	case KindOff:
		return Disabled{Reason: "turned off in config"}, nil
	}
	return nil, fmt.Errorf("unknown classifier %q", opts.Kind)
}

// Disabled always reports ErrDisabled.
type Disabled struct {
	Reason string
}

func (d Disabled) SuggestStage(context.Context, string, []models.DealStage) (string, error) {
	if d.Reason == "" {
		return "", ErrDisabled
	}
	return "", fmt.Errorf("%w: %s", ErrDisabled, d.Reason)
}

// BuildPrompt renders the instruction sent to the model. Stage order is
// start-to-finish, so priority runs from the last stage back to the first.
func BuildPrompt(text string, stages []models.DealStage) string {
	names := stageNames(stages)
	priority := make([]string, len(names))
	for i, n := range names {
		priority[len(names)-1-i] = n
	}

	var b strings.Builder
	b.WriteString("Analyze the following text from a real estate broker's call note.\n")
	b.WriteString("Your task is to identify if the note implies a specific deal stage for the contact.\n")
	fmt.Fprintf(&b, "The possible deal stages are: %s.\n\n", strings.Join(names, ", "))
	b.WriteString("RULES:\n")
	b.WriteString("- Respond with ONLY the deal stage name if it is strongly implied.\n")
	b.WriteString("- If no stage is clearly implied, respond with \"None\".\n")
	fmt.Fprintf(&b, "- Prioritize the stage based on this order (highest to lowest): %s.\n", strings.Join(priority, " > "))
	b.WriteString("- \"sent LOI\" or \"letter of intent\" maps to \"LOI\".\n")
	b.WriteString("- \"under contract\" or \"signed contract\" maps to \"Contract\".\n")
	b.WriteString("- \"CCO received\" or \"closing\" maps to \"CCO\".\n")
	b.WriteString("- \"showings\" or \"touring\" maps to \"Showings\".\n\n")
	fmt.Fprintf(&b, "Note Text: %q\n\n", text)
	b.WriteString("Suggested Deal Stage:")
	return b.String()
}

// MatchStage returns the response if it names a configured stage exactly, else "".
func MatchStage(response string, stages []models.DealStage) string {
	response = strings.TrimSpace(response)
	for _, st := range stages {
		if st.Name == response {
			return st.Name
		}
	}
	return ""
}

func stageNames(stages []models.DealStage) []string {
	names := make([]string, 0, len(stages))
	for _, st := range stages {
		names = append(names, st.Name)
	}
	return names
}
