package copilot

import (
	"context"
	"errors"
	"strings"
	"testing"

	"value_copilot/pkg/core/agent"
	"value_copilot/pkg/core/config"
	"value_copilot/pkg/core/conversation"
	"value_copilot/pkg/core/llm"
	"value_copilot/pkg/core/prompt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, settings Settings, replies ...string) (*Service, *llm.MockProvider) {
	t.Helper()
	mock := llm.NewMockProvider(replies...)
	manager := agent.NewManagerWithProviders(config.LLMConfig{ActiveProvider: llm.ProviderMock}, nil, mock)

	registry := prompt.NewRegistry()
	_, err := prompt.LoadDefaults(registry)
	require.NoError(t, err)

	return NewService(manager, registry, settings, nil), mock
}

func TestChatRecordsBothTurns(t *testing.T) {
	svc, mock := newTestService(t, Settings{}, "Look for a durable moat.")
	sess := conversation.NewSession()
	sess.Tone = conversation.ToneSafety

	res, err := svc.Chat(context.Background(), sess, "  Is KO cheap?  ")
	require.NoError(t, err)
	assert.Equal(t, "Look for a durable moat.", res.Reply)

	require.Equal(t, 2, sess.History.Len())
	assert.Equal(t, conversation.Message{Role: conversation.RoleUser, Content: "Is KO cheap?"}, sess.History.Messages[0])
	assert.Equal(t, conversation.RoleAssistant, sess.History.Messages[1].Role)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	require.Len(t, calls[0], 2)
	assert.Equal(t, "system", calls[0][0].Role)
	assert.Contains(t, calls[0][0].Content, "margin of safety")
	assert.True(t, strings.HasSuffix(calls[0][0].Content, prompt.ToneInstructionPrefix+conversation.ToneSafety.Line()))
	assert.Equal(t, "Is KO cheap?", calls[0][1].Content)
}

func TestChatFailureKeepsUserTurn(t *testing.T) {
	svc, mock := newTestService(t, Settings{})
	boom := errors.New("upstream down")
	mock.FailNext(boom)
	sess := conversation.NewSession()

	_, err := svc.Chat(context.Background(), sess, "hello")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, ErrUpstream)
	require.Equal(t, 1, sess.History.Len())
	assert.Equal(t, conversation.RoleUser, sess.History.Messages[0].Role)
}

func TestChatRejectsEmpty(t *testing.T) {
	svc, mock := newTestService(t, Settings{})
	_, err := svc.Chat(context.Background(), conversation.NewSession(), "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, mock.Calls())
}

func TestChatStreamDeltas(t *testing.T) {
	svc, _ := newTestService(t, Settings{}, "owner earnings matter")
	sess := conversation.NewSession()

	var got []string
	res, err := svc.ChatStream(context.Background(), sess, "q", func(d string) error {
		got = append(got, d)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "owner earnings matter", res.Reply)
	assert.Equal(t, "owner earnings matter", strings.Join(got, ""))
	assert.Equal(t, 2, sess.History.Len())
}

func TestHistoryWindow(t *testing.T) {
	svc, mock := newTestService(t, Settings{HistoryPairs: 1})
	mock.Fallback = "ok"
	sess := conversation.NewSession()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Chat(ctx, sess, "q")
		require.NoError(t, err)
	}

	calls := mock.Calls()
	require.Len(t, calls, 3)
	// system + 1 stored pair + new question exceeds one pair, so only the last two turns go out
	assert.Len(t, calls[2], 3)
	assert.Equal(t, 6, sess.History.Len())
}

func TestScreenerParsesRecord(t *testing.T) {
	reply := "Summary text\n```json\n" + `{
  "summary": "Wide moat, fair price",
  "bullets": ["brand", "pricing power"],
  "checklist": [{"item": "moat", "score": "strong"}, "debt ok"],
  "valuation": {"bear": 48, "base": 60, "bull": 72},
  "risks": "FX"
}` + "\n```"
	svc, mock := newTestService(t, Settings{}, reply)
	sess := conversation.NewSession()

	res, err := svc.Screener(context.Background(), sess, " KO ", "dividend king")
	require.NoError(t, err)
	assert.Equal(t, "Buffett Screener: KO", res.Title)
	require.NotNil(t, res.Record)
	assert.Equal(t, "Wide moat, fair price", res.Record.Summary)
	assert.Equal(t, []string{"brand", "pricing power"}, res.Record.Bullets)
	require.Len(t, res.Record.Checklist, 2)
	assert.Equal(t, "debt ok", res.Record.Checklist[1]["item"])
	assert.Equal(t, 60.0, res.Record.Valuation["base"])
	assert.Equal(t, []string{"FX"}, res.Record.Risks)

	sent := mock.Calls()[0]
	userPrompt := sent[len(sent)-1].Content
	assert.Contains(t, userPrompt, "Company: KO")
	assert.Contains(t, userPrompt, "Notes: dividend king")
	assert.Contains(t, userPrompt, sess.Profile.Summary())
	assert.Contains(t, userPrompt, "Tone guide: "+conversation.ToneBalanced.Line())
}

func TestScreenerWithoutJSON(t *testing.T) {
	svc, _ := newTestService(t, Settings{}, "No structure, just prose.")

	res, err := svc.Screener(context.Background(), conversation.NewSession(), "AAPL", "")
	require.NoError(t, err)
	assert.Nil(t, res.Record)
	assert.Equal(t, "No structure, just prose.", res.Reply)

	_, err = svc.Screener(context.Background(), conversation.NewSession(), "", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMemoParsesRecord(t *testing.T) {
	svc, mock := newTestService(t, Settings{}, `{"thesis": "Compounder", "risks": ["regulation", "dilution"], "verdict": "Buy below 150"}`)

	res, err := svc.Memo(context.Background(), conversation.NewSession(), "MSFT", "cloud")
	require.NoError(t, err)
	require.NotNil(t, res.Record)
	assert.Equal(t, "Compounder", res.Record.Thesis)
	assert.Equal(t, []string{"regulation", "dilution"}, res.Record.Risks)
	assert.Equal(t, "Buy below 150", res.Record.Verdict)

	sent := mock.Calls()[0]
	assert.Contains(t, sent[len(sent)-1].Content, "Investment Memo' for 'MSFT'")
	assert.Contains(t, sent[len(sent)-1].Content, "Additional hints: cloud")
}

func TestSummarizeUpload(t *testing.T) {
	svc, mock := newTestService(t, Settings{ExcerptLength: 10},
		"```json\n{\"summary\": \"s\", \"redflags\": [\"related-party sales\"]}\n```")
	sess := conversation.NewSession()

	res, err := svc.SummarizeUpload(context.Background(), sess, "notes.txt", "text/plain", []byte("0123456789abcdef"))
	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.Equal(t, 16, res.ExtractedChars)
	require.NotNil(t, res.Record)
	assert.Equal(t, []string{"related-party sales"}, res.Record.RedFlags)

	sent := mock.Calls()[0]
	userPrompt := sent[len(sent)-1].Content
	assert.Contains(t, userPrompt, "```0123456789```")
	assert.NotContains(t, userPrompt, "abcdef")
}

func TestSummarizeUploadEmpty(t *testing.T) {
	svc, mock := newTestService(t, Settings{})
	sess := conversation.NewSession()

	_, err := svc.SummarizeUpload(context.Background(), sess, "blank.txt", "", []byte("  \n "))
	assert.ErrorIs(t, err, ErrEmptyDocument)

	_, err = svc.SummarizeUpload(context.Background(), sess, "deck.pptx", "", []byte("x"))
	assert.Error(t, err)

	assert.Empty(t, mock.Calls())
	assert.Zero(t, sess.History.Len())
}

func TestRateLimitPerSession(t *testing.T) {
	svc, mock := newTestService(t, Settings{RequestsPerSecond: 0.001, Burst: 1})
	mock.Fallback = "ok"
	ctx := context.Background()
	a, b := conversation.NewSession(), conversation.NewSession()

	_, err := svc.Chat(ctx, a, "one")
	require.NoError(t, err)
	_, err = svc.Chat(ctx, a, "two")
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 2, a.History.Len(), "rejected call is not recorded")

	_, err = svc.Chat(ctx, b, "one")
	assert.NoError(t, err)

	svc.Forget(a.ID)
	_, err = svc.Chat(ctx, a, "three")
	assert.NoError(t, err)
}
