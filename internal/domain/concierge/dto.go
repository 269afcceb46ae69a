package concierge

import (
	"time"

	"github.com/aihotel/hotel-api/internal/pkg/aiclient"
)

// ChatRequest is a guest message with the preceding conversation
type ChatRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
	History []Turn `json:"history" validate:"max=20,dive"`
}

// RecommendTypeRequest describes the travelling party
type RecommendTypeRequest struct {
	Guests   int    `json:"guests" validate:"required,gte=1,lte=10"`
	TripType string `json:"trip_type" validate:"required,trip_type"`
}

// RecommendTypeResponse wraps the suggestion; Recommendation is null when unavailable
type RecommendTypeResponse struct {
	Recommendation *aiclient.TypeRecommendation `json:"recommendation"`
}

// ChatLogResponse is the admin view of an exchange
type ChatLogResponse struct {
	ID         string    `json:"id"`
	UserID     *string   `json:"user_id"`
	UserInput  string    `json:"user_input"`
	AIResponse string    `json:"ai_response"`
	Intent     string    `json:"intent"`
	Available  bool      `json:"available"`
	CreatedAt  time.Time `json:"created_at"`
}

// ChatLogResponseFromEntity converts entity to response
func ChatLogResponseFromEntity(l *ChatLog) *ChatLogResponse {
	resp := &ChatLogResponse{
		ID:         l.ID.String(),
		UserInput:  l.UserInput,
		AIResponse: l.AIResponse,
		Intent:     l.Intent,
		Available:  l.Available,
		CreatedAt:  l.CreatedAt,
	}
	if l.UserID.Valid {
		id := l.UserID.UUID.String()
		resp.UserID = &id
	}
	return resp
}
