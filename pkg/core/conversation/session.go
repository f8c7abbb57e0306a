package conversation

import (
	"time"

	"github.com/google/uuid"
)

// Session bundles everything the copilot needs about one user conversation.
type Session struct {
	ID        string    `json:"id"`
	Profile   Profile   `json:"profile"`
	Tone      Tone      `json:"tone"`
	History   History   `json:"history"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates a session with a fresh ID, the default profile and a balanced tone.
func NewSession() *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.NewString(),
		Profile:   DefaultProfile(),
		Tone:      ToneBalanced,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch bumps UpdatedAt.
func (s *Session) Touch() {
	s.UpdatedAt = time.Now().UTC()
}

// Clone returns a deep copy so stores never share slices with callers.
func (s *Session) Clone() *Session {
	c := *s
	c.Profile.Regions = append([]string(nil), s.Profile.Regions...)
	c.Profile.Sectors = append([]string(nil), s.Profile.Sectors...)
	c.Profile.Watchlist = append([]string(nil), s.Profile.Watchlist...)
	c.History.Messages = append([]Message(nil), s.History.Messages...)
	return &c
}
