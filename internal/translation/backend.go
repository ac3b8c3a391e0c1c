package translation

import "context"

// Backend sends one rendered prompt to a model and returns the raw reply
// text. Implementations own their transport details; the engine owns retry
// and fallback policy.
type Backend interface {
	Name() string
	Translate(ctx context.Context, prompt string, estimatedTokens int) (string, error)
}
