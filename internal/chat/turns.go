// Package chat relays a conversation to an LLM provider and streams the reply.
package chat

import (
	"github.com/sells-group/crm-assistant/internal/prompt"
)

// Role is the speaker of a turn as the relay sees it. Providers map it to
// their own vocabulary.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one entry of the history a client sends back with each request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Turn is one provider-bound conversation message.
type Turn struct {
	Role Role
	Text string
}

// BuildTurns lays out the provider conversation: the fixed preamble and its
// acknowledgement, the prior history, then the current user turn. The
// current turn carries contextText instead of message when this is the
// first exchange and contextText is non-empty.
func BuildTurns(history []Message, message, contextText string) []Turn {
	turns := make([]Turn, 0, len(history)+3)
	turns = append(turns,
		Turn{Role: RoleUser, Text: prompt.SystemPreamble},
		Turn{Role: RoleModel, Text: prompt.Acknowledgement},
	)
	for _, m := range history {
		role := RoleUser
		if m.Role == "assistant" {
			role = RoleModel
		}
		turns = append(turns, Turn{Role: role, Text: m.Content})
	}

	current := message
	if len(history) == 0 && contextText != "" {
		current = contextText
	}
	return append(turns, Turn{Role: RoleUser, Text: current})
}
