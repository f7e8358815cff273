package sequence

import (
	"encoding/json"
	"time"
)

// Step is one labeled unit of an outreach sequence. The label is free text.
type Step struct {
	Step    string `json:"step"`
	Content string `json:"content"`
}

// Sequence is a generated outreach plan for a user.
type Sequence struct {
	ID        string          `json:"id,omitempty"`
	UserID    string          `json:"user_id"`
	Context   json.RawMessage `json:"context"`
	Steps     []Step          `json:"steps"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
