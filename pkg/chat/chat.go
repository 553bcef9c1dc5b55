package chat

const (
	ChatRoleUser   = "user"
	ChatRoleAgent  = "assistant"
	ChatRoleSystem = "system"
)

// ChatMessage is a single message in a chat-style completion request.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// UserPrompt wraps a single prompt as a one-message conversation.
func UserPrompt(prompt string) []ChatMessage {
	return []ChatMessage{{Role: ChatRoleUser, Content: prompt}}
}
