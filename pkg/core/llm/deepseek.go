package llm

// NewDeepSeekProvider targets DeepSeek's OpenAI-compatible chat completions endpoint.
// Key: DEEPSEEK_API_KEY.
func NewDeepSeekProvider(baseURL string) *OpenAIProvider {
	return &OpenAIProvider{
		name:         ProviderDeepSeek,
		keyEnv:       []string{"DEEPSEEK_API_KEY"},
		baseURL:      pick(baseURL, "https://api.deepseek.com/v1"),
		defaultModel: "deepseek-chat",
	}
}
