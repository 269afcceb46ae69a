package concierge

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/aihotel/hotel-api/internal/pkg/aiclient"
)

// Assistant is the conversational side of the AI collaborator
type Assistant interface {
	Chat(ctx context.Context, message string, history []aiclient.ChatMessage) (*aiclient.ChatReply, error)
	RecommendType(ctx context.Context, guests int, tripType string) (*aiclient.TypeRecommendation, error)
}

// Service relays guest messages to the assistant and records the exchange
type Service struct {
	repo Repository
	ai   Assistant
}

// NewService creates concierge service. ai may be nil.
func NewService(repo Repository, ai Assistant) *Service {
	return &Service{repo: repo, ai: ai}
}

// Chat answers message. A collaborator failure yields FallbackReply with
// Available false instead of an error.
func (s *Service) Chat(ctx context.Context, userID uuid.NullUUID, message string, history []Turn) (*Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return nil, ErrMessageTooLong
	}

	reply := s.ask(ctx, message, history)

	entry := &ChatLog{
		ID:         uuid.New(),
		UserID:     userID,
		UserInput:  message,
		AIResponse: reply.Reply,
		Intent:     reply.Intent,
		Available:  reply.Available,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		log.Error().Err(err).Msg("Failed to save chat log")
	}

	return reply, nil
}

func (s *Service) ask(ctx context.Context, message string, history []Turn) *Reply {
	if s.ai == nil {
		return &Reply{Reply: FallbackReply, Intent: DefaultIntent}
	}

	if len(history) > MaxHistory {
		history = history[len(history)-MaxHistory:]
	}
	turns := make([]aiclient.ChatMessage, len(history))
	for i, t := range history {
		turns[i] = aiclient.ChatMessage{Role: t.Role, Content: t.Content}
	}

	out, err := s.ai.Chat(ctx, message, turns)
	if err != nil {
		log.Warn().Err(err).Msg("Concierge assistant unavailable")
		return &Reply{Reply: FallbackReply, Intent: DefaultIntent}
	}

	intent := out.Intent
	if intent == "" {
		intent = DefaultIntent
	}
	return &Reply{Reply: out.Reply, Intent: intent, Available: true}
}

// RecommendType suggests a room category for the party, or nil when the
// assistant cannot answer
func (s *Service) RecommendType(ctx context.Context, guests int, tripType string) *aiclient.TypeRecommendation {
	if s.ai == nil {
		return nil
	}
	rec, err := s.ai.RecommendType(ctx, guests, tripType)
	if err != nil {
		log.Warn().Err(err).Msg("Room type recommendation unavailable")
		return nil
	}
	return rec
}

// Logs returns a page of recorded exchanges, newest first, and the total count
func (s *Service) Logs(ctx context.Context, limit, offset int) ([]*ChatLog, int, error) {
	logs, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
