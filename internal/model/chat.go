package model

type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
)

// ChatMessage is one turn of the assistant conversation.
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// Insight is one structured recommendation from the internal analysis flow.
type Insight struct {
	Insight string `json:"insight"`
}
