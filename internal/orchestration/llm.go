package orchestration

import "context"

// ChatMessage is one turn of a chat-completion conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatClient is the language-model backend contract: a system prompt plus
// conversation history in, completion text plus total token count out.
// A nil ChatClient means no backend is configured and the orchestrator
// degrades to simulation.
type ChatClient interface {
	Complete(ctx context.Context, model string, messages []ChatMessage) (string, int, error)
}
