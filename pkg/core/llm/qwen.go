package llm

// NewQwenProvider targets DashScope's OpenAI-compatible mode.
// Key: DASHSCOPE_API_KEY, falling back to QWEN_API_KEY.
func NewQwenProvider(baseURL string) *OpenAIProvider {
	return &OpenAIProvider{
		name:         ProviderQwen,
		keyEnv:       []string{"DASHSCOPE_API_KEY", "QWEN_API_KEY"},
		baseURL:      pick(baseURL, "https://dashscope.aliyuncs.com/compatible-mode/v1"),
		defaultModel: "qwen-max",
	}
}
