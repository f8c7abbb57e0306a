// Package conversation holds the per-session state of the copilot: the chat
// history, the investor profile and the assistant tone. Values here are owned
// by the session layer and passed explicitly into the copilot service.
package conversation

// Role of a message sender.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// History is the ordered message log of a session.
type History struct {
	Messages []Message `json:"messages"`
}

// Append adds a message at the end of the log.
func (h *History) Append(role Role, content string) {
	h.Messages = append(h.Messages, Message{Role: role, Content: content})
}

// Reset empties the log.
func (h *History) Reset() {
	h.Messages = nil
}

// Len returns the number of stored messages.
func (h *History) Len() int {
	return len(h.Messages)
}

// Last returns the most recent message, if any.
func (h *History) Last() (Message, bool) {
	if len(h.Messages) == 0 {
		return Message{}, false
	}
	return h.Messages[len(h.Messages)-1], true
}

// Trim returns the window of history sent to the model.
//
// While the user/assistant messages fit in 2*maxPairs the full log is
// returned unchanged. Past that only the last 2*maxPairs user/assistant
// messages are kept, and any system messages in the log are dropped.
// The stored log is never modified.
func (h *History) Trim(maxPairs int) []Message {
	conversational := make([]Message, 0, len(h.Messages))
	for _, m := range h.Messages {
		if m.Role == RoleUser || m.Role == RoleAssistant {
			conversational = append(conversational, m)
		}
	}

	limit := 2 * maxPairs
	if limit < 0 {
		limit = 0
	}
	if len(conversational) <= limit {
		out := make([]Message, len(h.Messages))
		copy(out, h.Messages)
		return out
	}
	return conversational[len(conversational)-limit:]
}
