package agent

import (
	"context"
	"testing"
	"time"

	"value_copilot/pkg/core/config"
	"value_copilot/pkg/core/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedMock struct {
	*llm.MockProvider
	name string
}

func (n namedMock) Name() string { return n.name }

func (n namedMock) AdaptInstructions(raw string) string { return "[" + n.name + "] " + raw }

func testManager(cfg config.LLMConfig) (*Manager, namedMock, namedMock) {
	openai := namedMock{llm.NewMockProvider(), llm.ProviderOpenAI}
	claude := namedMock{llm.NewMockProvider(), llm.ProviderClaude}
	return NewManagerWithProviders(cfg, nil, openai, claude), openai, claude
}

func TestGetProviderResolution(t *testing.T) {
	m, _, _ := testManager(config.LLMConfig{
		ActiveProvider: llm.ProviderOpenAI,
		Agents: map[string]config.AgentConfig{
			TaskMemo:   {Provider: llm.ProviderClaude},
			TaskUpload: {Provider: "watson", Model: "watson-large"},
		},
	})

	assert.Equal(t, llm.ProviderClaude, m.GetProvider(TaskMemo).Name())
	assert.Equal(t, llm.ProviderOpenAI, m.GetProvider(TaskChat).Name())
	// unknown override falls through to the active provider
	assert.Equal(t, llm.ProviderOpenAI, m.GetProvider(TaskUpload).Name())
	assert.Equal(t, "", m.Options(TaskUpload).Model, "override model stays with its provider")

	require.NoError(t, m.SetGlobalProvider(llm.ProviderClaude))
	assert.Equal(t, llm.ProviderClaude, m.GetProvider(TaskChat).Name())
	assert.Equal(t, llm.ProviderClaude, m.GetActiveProvider())

	assert.ErrorIs(t, m.SetGlobalProvider("watson"), llm.ErrUnknownProvider)
	assert.Equal(t, []string{"claude", "openai"}, m.Available())
}

func TestOptions(t *testing.T) {
	m, _, _ := testManager(config.LLMConfig{
		ActiveProvider: llm.ProviderOpenAI,
		Model:          "gpt-4o-mini",
		Temperature:    0.2,
		MaxTokens:      1400,
		Agents: map[string]config.AgentConfig{
			TaskMemo:     {Provider: llm.ProviderClaude},
			TaskScreener: {Model: "gpt-4o"},
		},
	})

	chat := m.Options(TaskChat)
	assert.Equal(t, llm.Options{Model: "gpt-4o-mini", Temperature: 0.2, MaxTokens: 1400}, chat)
	assert.Equal(t, "gpt-4o", m.Options(TaskScreener).Model)
	assert.Equal(t, "", m.Options(TaskMemo).Model, "openai model name must not leak to claude")

	require.NoError(t, m.SetGlobalProvider(llm.ProviderClaude))
	assert.Equal(t, "", m.Options(TaskChat).Model)
	assert.Equal(t, "gpt-4o", m.Options(TaskScreener).Model)
}

func TestExecutePromptAdaptsSystem(t *testing.T) {
	m, openai, _ := testManager(config.LLMConfig{ActiveProvider: llm.ProviderOpenAI, Timeout: time.Second})
	openai.MockProvider.Fallback = "ok"

	got, err := m.ExecutePrompt(context.Background(), TaskChat, []llm.Message{
		{Role: "system", Content: "rules"},
		{Role: "user", Content: "hi"},
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	calls := openai.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "[openai] rules", calls[0][0].Content)
	assert.Equal(t, "hi", calls[0][1].Content)
}
