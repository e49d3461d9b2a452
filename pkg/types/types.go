// Package types defines the shared domain types passed between the memory
// store, the model providers, and the engine.
//
// Turn deliberately has the same JSON shape as a persisted memory entry so
// conversation history read from disk can be handed to any provider without
// translation.
package types

// Turn is one role-tagged message in a conversation.
type Turn struct {
	Role    string `json:"role"` // RoleUser or RoleAssistant
	Content string `json:"content"`
}

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Usage is the token-accounting record attached to every model response.
// TotalTokens is always PromptTokens + CompletionTokens.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ModelResponse is the standardised result of one provider invocation.
// It is not mutated after construction.
type ModelResponse struct {
	Content  string `json:"content"`
	Model    string `json:"model"`
	Provider string `json:"provider"`
	Usage    Usage  `json:"usage"`
}
