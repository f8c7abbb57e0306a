package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiProvider implements the Provider interface for Google's Gemini models.
type GeminiProvider struct {
	Model string // e.g. "gemini-2.0-flash"
}

// Ensure interface compliance
var _ Provider = (*GeminiProvider)(nil)

func (p *GeminiProvider) Name() string { return ProviderGemini }

func (p *GeminiProvider) client(ctx context.Context) (*genai.Client, error) {
	key, err := apiKey("GEMINI_API_KEY", "GOOGLE_API_KEY")
	if err != nil {
		return nil, fmt.Errorf("gemini: %w (set GEMINI_API_KEY)", err)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return client, nil
}

// prepare converts the conversation: system turns become the SystemInstruction,
// assistant turns use the "model" role.
func (p *GeminiProvider) prepare(messages []Message, opts Options) (string, []*genai.Content, *genai.GenerateContentConfig) {
	model := pick(opts.Model, pick(p.Model, "gemini-2.0-flash"))

	system, rest := splitSystem(messages)
	contents := make([]*genai.Content, 0, len(rest))
	for _, m := range rest {
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(opts.Temperature)),
	}
	if opts.MaxTokens > 0 {
		config.MaxOutputTokens = int32(opts.MaxTokens)
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: p.AdaptInstructions(system)}},
		}
	}
	return model, contents, config
}

// GenerateResponse sends a generateContent request using the official GenAI SDK.
func (p *GeminiProvider) GenerateResponse(ctx context.Context, messages []Message, opts Options) (string, error) {
	if len(messages) == 0 {
		return "", ErrNoMessages
	}
	client, err := p.client(ctx)
	if err != nil {
		return "", err
	}

	model, contents, config := p.prepare(messages, opts)
	result, err := client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}
	return text, nil
}

func (p *GeminiProvider) StreamResponse(ctx context.Context, messages []Message, opts Options, onDelta DeltaFunc) (string, error) {
	if len(messages) == 0 {
		return "", ErrNoMessages
	}
	client, err := p.client(ctx)
	if err != nil {
		return "", err
	}

	model, contents, config := p.prepare(messages, opts)

	var sb strings.Builder
	for chunk, err := range client.Models.GenerateContentStream(ctx, model, contents, config) {
		if err != nil {
			return sb.String(), fmt.Errorf("gemini stream failed: %w", err)
		}
		delta := chunk.Text()
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
		return "", fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}
	return sb.String(), nil
}

// AdaptInstructions leaves the prompt alone; Gemini reads markdown tables fine.
func (p *GeminiProvider) AdaptInstructions(raw string) string {
	return raw
}
