package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"value_copilot/pkg/core/conversation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	r := NewRegistry()
	n, err := LoadDefaults(r)
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	for _, id := range []string{
		PromptIDs.SystemValueInvestor,
		PromptIDs.TaskScreener,
		PromptIDs.TaskMemo,
		PromptIDs.TaskUploadSummary,
	} {
		_, err := r.GetPrompt(id)
		assert.NoError(t, err, id)
	}

	system, err := r.GetSystemPrompt(PromptIDs.SystemValueInvestor)
	require.NoError(t, err)
	assert.Contains(t, system, "margin of safety")
	assert.Contains(t, system, "valuation{bear,base,bull}")

	samples := r.ListByCategory(CategorySample)
	require.Len(t, samples, 2)
	assert.Equal(t, "sample.screener_ko", samples[0].ID)
}

func TestRenderScreener(t *testing.T) {
	r := NewRegistry()
	_, err := LoadDefaults(r)
	require.NoError(t, err)

	out, err := r.Render(PromptIDs.TaskScreener, NewContext().
		Set("Ticker", "KO").
		Set("Profile", "Risk appetite: conservative").
		Set("ToneLine", "be calm"))
	require.NoError(t, err)

	assert.Contains(t, out, "Company: KO")
	assert.Contains(t, out, "Notes: \n")
	assert.Contains(t, out, "Risk appetite: conservative")
	assert.True(t, strings.HasSuffix(out, "Tone guide: be calm"))
}

func TestRenderMissingRequired(t *testing.T) {
	pt := &PromptTemplate{
		ID:             "x",
		UserPromptTmpl: "{{.A}}-{{.B}}",
		Variables: []PromptVariable{
			{Name: "A", Required: true},
			{Name: "B", Default: "dflt"},
		},
	}

	_, err := RenderUserPrompt(pt, NewContext())
	assert.ErrorContains(t, err, "missing required variable A")

	out, err := RenderUserPrompt(pt, NewContext().Set("A", "a"))
	require.NoError(t, err)
	assert.Equal(t, "a-dflt", out)
}

func TestLoadFromDirectoryOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "system"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "system", "value_investor.json"),
		[]byte(`{"system_prompt": "house rules"}`), 0o644))

	r := NewRegistry()
	_, err := LoadDefaults(r)
	require.NoError(t, err)
	n, err := LoadFromDirectory(r, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	pt, err := r.GetPrompt(PromptIDs.SystemValueInvestor)
	require.NoError(t, err)
	assert.Equal(t, "house rules", pt.SystemPrompt)
	assert.Equal(t, "system", pt.Category)

	_, err = LoadFromDirectory(r, filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestLoadRejectsBadTemplate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"),
		[]byte(`{"user_prompt_template": "{{.Ticker"}`), 0o644))

	_, err := LoadFromDirectory(NewRegistry(), dir)
	assert.ErrorContains(t, err, "invalid template")
}

func TestBuildMessages(t *testing.T) {
	h := &conversation.History{}
	for i := 0; i < 3; i++ {
		h.Append(conversation.RoleUser, "q")
		h.Append(conversation.RoleAssistant, "a")
	}

	msgs := BuildMessages("base", "be calm", h, 1)
	require.Len(t, msgs, 3)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Equal(t, "base\nAdditional tone instruction: be calm", msgs[0].Content)
	assert.Equal(t, "user", msgs[1].Role)
	assert.Equal(t, "assistant", msgs[2].Role)

	assert.Len(t, BuildMessages("base", "x", nil, 18), 1)
}
