// ABOUTME: Gemini-backed stage classifier using the google genai SDK
// ABOUTME: Sends one prompt per note and accepts only exact stage-name replies
package classify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/harperreed/dealflow/models"
	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-flash"

type GeminiConfig struct {
	APIKey     string
	Model      string
	HTTPClient *http.Client // optional, for tests and proxies
}

// Gemini implements Classifier against the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: no API key configured", ErrDisabled)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Gemini{client: client, model: cfg.Model}, nil
}

func (g *Gemini) SuggestStage(ctx context.Context, text string, stages []models.DealStage) (string, error) {
	if len(stages) == 0 {
		return "", nil
	}

	prompt := BuildPrompt(text, stages)
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var reply string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			reply += part.Text
		}
	}
	return MatchStage(reply, stages), nil
}
