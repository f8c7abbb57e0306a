package conversation

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrimKeepsEverythingUnderLimit(t *testing.T) {
	var h History
	h.Append(RoleSystem, "sys")
	h.Append(RoleUser, "q1")
	h.Append(RoleAssistant, "a1")

	got := h.Trim(1)
	require.Len(t, got, 3)
	assert.Equal(t, RoleSystem, got[0].Role)

	// returned slice is a copy
	got[1].Content = "changed"
	assert.Equal(t, "q1", h.Messages[1].Content)
}

func TestTrimKeepsLastPairs(t *testing.T) {
	var h History
	h.Append(RoleSystem, "sys")
	for i := 1; i <= 5; i++ {
		h.Append(RoleUser, fmt.Sprintf("q%d", i))
		h.Append(RoleAssistant, fmt.Sprintf("a%d", i))
	}

	got := h.Trim(2)

	require.Len(t, got, 4)
	assert.Equal(t, []Message{
		{RoleUser, "q4"}, {RoleAssistant, "a4"},
		{RoleUser, "q5"}, {RoleAssistant, "a5"},
	}, got)
	assert.Equal(t, 11, h.Len(), "stored log untouched")
}

func TestTrimOddCountKeepsTrailingUser(t *testing.T) {
	var h History
	for i := 1; i <= 19; i++ {
		h.Append(RoleUser, fmt.Sprintf("q%d", i))
		h.Append(RoleAssistant, fmt.Sprintf("a%d", i))
	}
	h.Append(RoleUser, "latest")

	got := h.Trim(18)

	require.Len(t, got, 36)
	assert.Equal(t, "latest", got[len(got)-1].Content)
}

func TestHistoryResetAndLast(t *testing.T) {
	var h History
	_, ok := h.Last()
	assert.False(t, ok)

	h.Append(RoleUser, "hello")
	last, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, "hello", last.Content)

	h.Reset()
	assert.Equal(t, 0, h.Len())
}

func TestProfileValidate(t *testing.T) {
	assert.NoError(t, DefaultProfile().Validate())

	p := DefaultProfile()
	p.Risk = "yolo"
	assert.Error(t, p.Validate())

	p = DefaultProfile()
	p.Regions = []string{"MARS"}
	assert.Error(t, p.Validate())

	p = DefaultProfile()
	p.Sectors = append(p.Sectors, "Crypto")
	assert.Error(t, p.Validate())
}

func TestWatchlist(t *testing.T) {
	p := DefaultProfile()

	assert.True(t, p.AddTicker(" ko "))
	assert.False(t, p.AddTicker("KO"), "duplicate")
	assert.False(t, p.AddTicker("  "), "blank")
	assert.Equal(t, []string{"AAPL", "NVDA", "KO"}, p.Watchlist)

	p.ClearWatchlist()
	assert.Empty(t, p.Watchlist)
}

func TestTone(t *testing.T) {
	tone, err := ParseTone("Opportunity")
	require.NoError(t, err)
	assert.Equal(t, ToneOpportunity, tone)
	assert.Contains(t, tone.Line(), "catalysts")

	_, err = ParseTone("grumpy")
	assert.Error(t, err)

	assert.Equal(t, ToneBalanced.Line(), Tone("").Line())
}

func TestNewSessionAndClone(t *testing.T) {
	s := NewSession()
	_, err := uuid.Parse(s.ID)
	require.NoError(t, err)
	assert.Equal(t, ToneBalanced, s.Tone)

	s.History.Append(RoleUser, "q")
	c := s.Clone()
	c.Profile.Watchlist[0] = "MSFT"
	c.History.Messages[0].Content = "other"

	assert.Equal(t, "AAPL", s.Profile.Watchlist[0])
	assert.Equal(t, "q", s.History.Messages[0].Content)
}
