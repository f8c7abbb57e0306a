package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider talks to the Chat Completions API. DeepSeek reuses it with a different base URL.
type OpenAIProvider struct {
	name         string
	keyEnv       []string
	baseURL      string
	defaultModel string
}

var _ Provider = (*OpenAIProvider)(nil)

// greedyTemperature stands in for 0, which go-openai drops as omitempty
// and the API then reads as its default of 1.
const greedyTemperature float32 = 1e-6

// NewOpenAIProvider reads OPENAI_API_KEY at call time. baseURL may be empty.
func NewOpenAIProvider(baseURL string) *OpenAIProvider {
	return &OpenAIProvider{
		name:         ProviderOpenAI,
		keyEnv:       []string{"OPENAI_API_KEY"},
		baseURL:      baseURL,
		defaultModel: openai.GPT4oMini,
	}
}

func (p *OpenAIProvider) Name() string { return p.name }

func (p *OpenAIProvider) client() (*openai.Client, error) {
	key, err := apiKey(p.keyEnv...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w (set %s)", p.name, err, strings.Join(p.keyEnv, " or "))
	}
	cfg := openai.DefaultConfig(key)
	if p.baseURL != "" {
		cfg.BaseURL = p.baseURL
	}
	return openai.NewClientWithConfig(cfg), nil
}

func (p *OpenAIProvider) request(messages []Message, opts Options, stream bool) openai.ChatCompletionRequest {
	msgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case "system":
			role = openai.ChatMessageRoleSystem
		case "assistant":
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	temperature := float32(opts.Temperature)
	if temperature <= 0 {
		temperature = greedyTemperature
	}
	return openai.ChatCompletionRequest{
		Model:       pick(opts.Model, p.defaultModel),
		Messages:    msgs,
		Temperature: temperature,
		MaxTokens:   opts.MaxTokens,
		Stream:      stream,
	}
}

func (p *OpenAIProvider) GenerateResponse(ctx context.Context, messages []Message, opts Options) (string, error) {
	if len(messages) == 0 {
		return "", ErrNoMessages
	}
	client, err := p.client()
	if err != nil {
		return "", err
	}

	resp, err := client.CreateChatCompletion(ctx, p.request(messages, opts, false))
	if err != nil {
		return "", fmt.Errorf("%s chat completion failed: %w", p.name, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%s: %w", p.name, ErrEmptyResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) StreamResponse(ctx context.Context, messages []Message, opts Options, onDelta DeltaFunc) (string, error) {
	if len(messages) == 0 {
		return "", ErrNoMessages
	}
	client, err := p.client()
	if err != nil {
		return "", err
	}

	stream, err := client.CreateChatCompletionStream(ctx, p.request(messages, opts, true))
	if err != nil {
		return "", fmt.Errorf("%s stream failed: %w", p.name, err)
	}
	defer stream.Close()

	var sb strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return sb.String(), fmt.Errorf("%s stream receive failed: %w", p.name, err)
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		sb.WriteString(delta)
		if onDelta != nil {
			if err := onDelta(delta); err != nil {
				return sb.String(), err
			}
		}
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("%s: %w", p.name, ErrEmptyResponse)
	}
	return sb.String(), nil
}

func (p *OpenAIProvider) AdaptInstructions(raw string) string {
	return raw
}
