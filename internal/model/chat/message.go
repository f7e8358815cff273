package chat

import "time"

// MessageType distinguishes who authored a persisted turn.
type MessageType string

const (
	MessageTypeUser      MessageType = "user"
	MessageTypeAssistant MessageType = "assistant"
)

// Message persists individual turns for audit/debug.
type Message struct {
	ID        string      `json:"id,omitempty"`
	UserID    string      `json:"user_id"`
	Content   string      `json:"content"`
	Type      MessageType `json:"type"`
	CreatedAt time.Time   `json:"created_at"`
}
