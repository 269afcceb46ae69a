package concierge

import (
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultIntent is recorded when the assistant does not classify a message
	DefaultIntent = "general_question"

	// FallbackReply is sent when the assistant cannot be reached
	FallbackReply = "Our virtual concierge is unavailable right now. Please try again in a moment or contact the front desk."

	// MaxMessageLength bounds a single guest message
	MaxMessageLength = 2000

	// MaxHistory bounds the conversation turns forwarded with a message
	MaxHistory = 20
)

// ChatLog is one persisted concierge exchange
type ChatLog struct {
	ID         uuid.UUID     `db:"id"`
	UserID     uuid.NullUUID `db:"user_id"`
	UserInput  string        `db:"user_input"`
	AIResponse string        `db:"ai_response"`
	Intent     string        `db:"intent"`
	Available  bool          `db:"available"`
	CreatedAt  time.Time     `db:"created_at"`
}

// Reply is the answer returned to the guest
type Reply struct {
	Reply     string `json:"reply"`
	Intent    string `json:"intent"`
	Available bool   `json:"available"`
}

// Turn is one message of a conversation
type Turn struct {
	Role    string `json:"role" validate:"required,chat_role"`
	Content string `json:"content" validate:"required,max=2000"`
}
