package translation

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const (
	geminiTemperature = 0.3

	// Reply budget relative to the prompt estimate. The line protocol has
	// no framing overhead, so doubling leaves room for expansion into the
	// target language.
	geminiOutputMultiplier = 2
)

// GeminiBackend is the hosted generative backend: a stateless single-shot
// call per batch with a low temperature and an output ceiling sized from the
// batch estimate.
type GeminiBackend struct {
	client *genai.Client
	model  string
	logger *logrus.Logger
}

func NewGeminiBackend(ctx context.Context, apiKey, model string, logger *logrus.Logger) (*GeminiBackend, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiBackend{client: client, model: model, logger: logger}, nil
}

func (b *GeminiBackend) Name() string { return "gemini" }

func (b *GeminiBackend) Translate(ctx context.Context, prompt string, estimatedTokens int) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(geminiTemperature)),
		MaxOutputTokens: int32(estimatedTokens * geminiOutputMultiplier),
	}

	resp, err := b.client.Models.GenerateContent(ctx, b.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response candidates returned")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			sb.WriteString(part.Text)
		}
	}

	return strings.TrimSpace(sb.String()), nil
}
