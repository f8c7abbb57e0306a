package prompt

import (
	"value_copilot/pkg/core/conversation"
	"value_copilot/pkg/core/llm"
)

// ToneInstructionPrefix introduces the tone line in the system message.
const ToneInstructionPrefix = "Additional tone instruction: "

// BuildMessages assembles the request sent to the model: one system message
// (base prompt plus tone instruction) followed by the trimmed history.
func BuildMessages(system, toneLine string, history *conversation.History, maxPairs int) []llm.Message {
	var window []conversation.Message
	if history != nil {
		window = history.Trim(maxPairs)
	}

	out := make([]llm.Message, 0, len(window)+1)
	out = append(out, llm.Message{
		Role:    string(conversation.RoleSystem),
		Content: system + "\n" + ToneInstructionPrefix + toneLine,
	})
	for _, m := range window {
		out = append(out, llm.Message{Role: string(m.Role), Content: m.Content})
	}
	return out
}
