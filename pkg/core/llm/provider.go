package llm

import (
	"context"
	"errors"
	"os"
)

// Provider names as used in config and the /api/config endpoints.
const (
	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"
	ProviderQwen     = "qwen"
	ProviderGemini   = "gemini"
	ProviderClaude   = "claude"
	ProviderMock     = "mock"
)

// AvailableProviders lists the providers the manager registers, in display order.
var AvailableProviders = []string{ProviderOpenAI, ProviderDeepSeek, ProviderQwen, ProviderGemini, ProviderClaude}

var (
	ErrNoAPIKey        = errors.New("llm: API key not configured")
	ErrUnknownProvider = errors.New("llm: unknown provider")
	ErrEmptyResponse   = errors.New("llm: empty response")
	ErrNoMessages      = errors.New("llm: no messages")
	ErrScriptExhausted = errors.New("llm: mock script exhausted")
)

// Message is one chat turn sent to a provider. Role is "system", "user" or "assistant".
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options tune a single request. Empty Model and zero MaxTokens mean
// "provider default". Temperature is always sent; 0 asks for greedy decoding.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// DeltaFunc receives streamed text fragments in order. Returning an error aborts the stream.
type DeltaFunc func(delta string) error

// Provider is the interface for all LLM providers.
type Provider interface {
	Name() string
	// GenerateResponse returns the full assistant reply for the conversation.
	GenerateResponse(ctx context.Context, messages []Message, opts Options) (string, error)
	// StreamResponse calls onDelta for each fragment and returns the concatenated reply.
	StreamResponse(ctx context.Context, messages []Message, opts Options, onDelta DeltaFunc) (string, error)
	// AdaptInstructions transforms raw system instructions into a model-specific form.
	AdaptInstructions(rawInstructions string) string
}

// splitSystem pulls system messages out for APIs that take them separately.
func splitSystem(messages []Message) (string, []Message) {
	var system string
	rest := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == "system" {
			if system != "" {
				system += "\n"
			}
			system += m.Content
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}

func apiKey(envVars ...string) (string, error) {
	for _, name := range envVars {
		if v := os.Getenv(name); v != "" {
			return v, nil
		}
	}
	return "", ErrNoAPIKey
}

func pick(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
