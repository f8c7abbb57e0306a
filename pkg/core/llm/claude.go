package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ClaudeProvider implements the Provider interface using the Anthropic Messages API.
type ClaudeProvider struct {
	Model string
}

var _ Provider = (*ClaudeProvider)(nil)

func (p *ClaudeProvider) Name() string { return ProviderClaude }

func (p *ClaudeProvider) params(messages []Message, opts Options) (anthropic.MessageNewParams, error) {
	system, rest := splitSystem(messages)

	converted := make([]anthropic.MessageParam, 0, len(rest))
	hasUser := false
	for _, m := range rest {
		if m.Role == "assistant" {
			converted = append(converted, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
			continue
		}
		hasUser = true
		converted = append(converted, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
	}
	if !hasUser {
		return anthropic.MessageNewParams{}, fmt.Errorf("claude: at least one user message is required")
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(pick(opts.Model, pick(p.Model, "claude-sonnet-4-20250514"))),
		MaxTokens:   int64(maxTokens),
		Messages:    converted,
		Temperature: anthropic.Float(opts.Temperature),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: p.AdaptInstructions(system)}}
	}
	return params, nil
}

func (p *ClaudeProvider) client() (anthropic.Client, error) {
	key, err := apiKey("ANTHROPIC_API_KEY")
	if err != nil {
		return anthropic.Client{}, fmt.Errorf("claude: %w (set ANTHROPIC_API_KEY)", err)
	}
	return anthropic.NewClient(option.WithAPIKey(key)), nil
}

func (p *ClaudeProvider) GenerateResponse(ctx context.Context, messages []Message, opts Options) (string, error) {
	if len(messages) == 0 {
		return "", ErrNoMessages
	}
	params, err := p.params(messages, opts)
	if err != nil {
		return "", err
	}
	client, err := p.client()
	if err != nil {
		return "", err
	}

	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude API call failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("claude: %w", ErrEmptyResponse)
	}
	return sb.String(), nil
}

func (p *ClaudeProvider) StreamResponse(ctx context.Context, messages []Message, opts Options, onDelta DeltaFunc) (string, error) {
	if len(messages) == 0 {
		return "", ErrNoMessages
	}
	params, err := p.params(messages, opts)
	if err != nil {
		return "", err
	}
	client, err := p.client()
	if err != nil {
		return "", err
	}

	stream := client.Messages.NewStreaming(ctx, params)
	defer stream.Close()

	var sb strings.Builder
	for stream.Next() {
		event := stream.Current()
		ev, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
		if !ok {
			continue
		}
		text, ok := ev.Delta.AsAny().(anthropic.TextDelta)
		if !ok || text.Text == "" {
			continue
		}
		sb.WriteString(text.Text)
		if onDelta != nil {
			if err := onDelta(text.Text); err != nil {
				return sb.String(), err
			}
		}
	}
	if err := stream.Err(); err != nil {
		return sb.String(), fmt.Errorf("claude stream failed: %w", err)
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("claude: %w", ErrEmptyResponse)
	}
	return sb.String(), nil
}

func (p *ClaudeProvider) AdaptInstructions(raw string) string {
	return raw
}
