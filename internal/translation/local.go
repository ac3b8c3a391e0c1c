package translation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

const (
	localTemperature = 0.3

	// Schema-constrained JSON carries framing overhead (field names,
	// brackets), so the reply budget is wider than the line protocol's.
	localOutputMultiplier = 3

	// Weak local models truncate aggressively when max_tokens is small;
	// never request less than this.
	localMinOutputTokens = 1024
)

// translationSchema constrains the local model's reply to the shape the
// primary parser expects.
var translationSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"translations": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"id": {"type": "integer"},
					"text": {"type": "string"}
				},
				"required": ["id", "text"]
			}
		}
	},
	"required": ["translations"]
}`)

// LocalBackend talks to a locally-hosted OpenAI-compatible chat-completion
// endpoint (LM Studio, Ollama, llama.cpp server) and requests a
// schema-constrained JSON reply.
type LocalBackend struct {
	client *openai.Client
	model  string
	logger *logrus.Logger
}

func NewLocalBackend(baseURL, model string, logger *logrus.Logger) *LocalBackend {
	cfg := openai.DefaultConfig("")
	cfg.BaseURL = strings.TrimSuffix(baseURL, "/")

	return &LocalBackend{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger,
	}
}

func (b *LocalBackend) Name() string { return "local" }

func (b *LocalBackend) Translate(ctx context.Context, prompt string, estimatedTokens int) (string, error) {
	maxTokens := estimatedTokens * localOutputMultiplier
	if maxTokens < localMinOutputTokens {
		maxTokens = localMinOutputTokens
	}

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       b.model,
		MaxTokens:   maxTokens,
		Temperature: localTemperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "translations",
				Schema: translationSchema,
				Strict: true,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("local model request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
