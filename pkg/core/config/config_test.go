package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "copilot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.ActiveProvider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 0.2, cfg.LLM.Temperature)
	assert.Equal(t, 1400, cfg.LLM.MaxTokens)
	assert.Equal(t, 18, cfg.LLM.HistoryPairs)
	assert.Equal(t, 8000, cfg.Upload.ExcerptLength)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
llm:
  active_provider: gemini
  model: gemini-2.0-flash
  temperature: 0.1
  max_tokens: 2048
  timeout: 30s
  history_pairs: 10
  agents:
    memo:
      provider: claude
      description: long-form memos
logging:
  level: debug
  format: console
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "gemini", cfg.LLM.ActiveProvider)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "claude", cfg.LLM.Agents["memo"].Provider)
	assert.Equal(t, "console", cfg.Logging.Format)
	// untouched sections keep defaults
	assert.Equal(t, 5, cfg.RateLimit.Burst)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("COPILOT_PROVIDER", "deepseek")
	t.Setenv("COPILOT_MODEL", "deepseek-chat")
	t.Setenv("DATABASE_URL", "postgres://localhost/copilot")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "deepseek", cfg.LLM.ActiveProvider)
	assert.Equal(t, "deepseek-chat", cfg.LLM.Model)
	assert.Equal(t, "postgres://localhost/copilot", cfg.Database.URL)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"temperature out of range", "llm:\n  temperature: 1.5\n"},
		{"unknown provider", "llm:\n  active_provider: watson\n"},
		{"unknown agent provider", "llm:\n  agents:\n    chat:\n      provider: watson\n"},
		{"unknown key", "llm:\n  temprature: 0.3\n"},
		{"bad log level", "logging:\n  level: loud\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestShippedConfigLoads(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "..", DefaultPath))
	require.NoError(t, err)

	assert.Equal(t, 120*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "claude", cfg.LLM.Agents["memo"].Provider)
}
