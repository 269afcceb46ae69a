package concierge

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aihotel/hotel-api/internal/pkg/aiclient"
)

type fakeRepo struct {
	mu   sync.Mutex
	logs []*ChatLog
	err  error
}

func (r *fakeRepo) Create(_ context.Context, l *ChatLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	l.CreatedAt = time.Now()
	r.logs = append(r.logs, l)
	return nil
}

func (r *fakeRepo) List(_ context.Context, limit, offset int) ([]*ChatLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := []*ChatLog{}
	for i := len(r.logs) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.logs[i])
	}
	return out, nil
}

func (r *fakeRepo) Count(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.logs), r.err
}

func (r *fakeRepo) last(t *testing.T) *ChatLog {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.logs) == 0 {
		t.Fatal("expected a chat log")
	}
	return r.logs[len(r.logs)-1]
}

type fakeAssistant struct {
	mu      sync.Mutex
	reply   *aiclient.ChatReply
	err     error
	history []aiclient.ChatMessage
	rec     *aiclient.TypeRecommendation
	recErr  error
}

func (a *fakeAssistant) Chat(_ context.Context, message string, history []aiclient.ChatMessage) (*aiclient.ChatReply, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = history
	if a.err != nil {
		return nil, a.err
	}
	if a.reply != nil {
		return a.reply, nil
	}
	return &aiclient.ChatReply{Reply: "echo: " + message, Intent: "booking_inquiry"}, nil
}

func (a *fakeAssistant) RecommendType(_ context.Context, guests int, tripType string) (*aiclient.TypeRecommendation, error) {
	if a.recErr != nil {
		return nil, a.recErr
	}
	if a.rec != nil {
		return a.rec, nil
	}
	return &aiclient.TypeRecommendation{RecommendedType: "Suite", Reason: "Best for families or larger groups."}, nil
}

func TestChatRecordsExchange(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, &fakeAssistant{})
	user := uuid.NullUUID{UUID: uuid.New(), Valid: true}

	reply, err := svc.Chat(context.Background(), user, "  Is breakfast included? ", nil)
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if !reply.Available || reply.Reply != "echo: Is breakfast included?" || reply.Intent != "booking_inquiry" {
		t.Fatalf("unexpected reply %+v", reply)
	}

	logged := repo.last(t)
	if logged.UserID != user || logged.UserInput != "Is breakfast included?" || !logged.Available {
		t.Fatalf("unexpected log %+v", logged)
	}
}

func TestChatFallsBackWhenAssistantFails(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, &fakeAssistant{err: &aiclient.Error{Path: "/chat", Kind: aiclient.KindTimeout}})

	reply, err := svc.Chat(context.Background(), uuid.NullUUID{}, "hello", nil)
	if err != nil {
		t.Fatalf("collaborator failure must not fail the request: %v", err)
	}
	if reply.Available || reply.Reply != FallbackReply || reply.Intent != DefaultIntent {
		t.Fatalf("unexpected fallback %+v", reply)
	}
	if logged := repo.last(t); logged.Available || logged.AIResponse != FallbackReply {
		t.Fatalf("fallback exchange must be logged as unavailable, got %+v", logged)
	}
}

func TestChatWithoutAssistant(t *testing.T) {
	reply, err := NewService(&fakeRepo{}, nil).Chat(context.Background(), uuid.NullUUID{}, "hello", nil)
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply.Available {
		t.Fatal("expected fallback without an assistant")
	}
}

func TestChatDefaultsIntent(t *testing.T) {
	svc := NewService(&fakeRepo{}, &fakeAssistant{reply: &aiclient.ChatReply{Reply: "Sure"}})
	reply, err := svc.Chat(context.Background(), uuid.NullUUID{}, "hi", nil)
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply.Intent != DefaultIntent {
		t.Fatalf("expected default intent, got %q", reply.Intent)
	}
}

func TestChatKeepsReplyWhenLogFails(t *testing.T) {
	svc := NewService(&fakeRepo{err: errors.New("db down")}, &fakeAssistant{})
	reply, err := svc.Chat(context.Background(), uuid.NullUUID{}, "hi", nil)
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if !reply.Available {
		t.Fatalf("unexpected reply %+v", reply)
	}
}

func TestChatRejectsBadMessages(t *testing.T) {
	svc := NewService(&fakeRepo{}, &fakeAssistant{})

	if _, err := svc.Chat(context.Background(), uuid.NullUUID{}, "   ", nil); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	long := strings.Repeat("é", MaxMessageLength+1)
	if _, err := svc.Chat(context.Background(), uuid.NullUUID{}, long, nil); !errors.Is(err, ErrMessageTooLong) {
		t.Fatalf("expected ErrMessageTooLong, got %v", err)
	}
}

func TestChatTrimsHistory(t *testing.T) {
	ai := &fakeAssistant{}
	svc := NewService(&fakeRepo{}, ai)

	history := make([]Turn, MaxHistory+6)
	for i := range history {
		history[i] = Turn{Role: "user", Content: string(rune('a' + i))}
	}
	if _, err := svc.Chat(context.Background(), uuid.NullUUID{}, "next", history); err != nil {
		t.Fatalf("chat: %v", err)
	}
	if len(ai.history) != MaxHistory || ai.history[0].Content != history[6].Content {
		t.Fatalf("expected the last %d turns, got %d starting %q", MaxHistory, len(ai.history), ai.history[0].Content)
	}
}

func TestRecommendTypeFallsBackToNil(t *testing.T) {
	svc := NewService(&fakeRepo{}, &fakeAssistant{recErr: aiclient.ErrUnavailable})
	if rec := svc.RecommendType(context.Background(), 2, "couple"); rec != nil {
		t.Fatalf("expected nil recommendation, got %+v", rec)
	}

	svc = NewService(&fakeRepo{}, &fakeAssistant{})
	if rec := svc.RecommendType(context.Background(), 4, "family"); rec == nil || rec.RecommendedType != "Suite" {
		t.Fatalf("unexpected recommendation %+v", rec)
	}
}

func TestLogsNewestFirst(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, &fakeAssistant{})
	for _, m := range []string{"one", "two", "three"} {
		if _, err := svc.Chat(context.Background(), uuid.NullUUID{}, m, nil); err != nil {
			t.Fatalf("chat: %v", err)
		}
	}

	logs, total, err := svc.Logs(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if total != 3 || len(logs) != 2 || logs[0].UserInput != "three" {
		t.Fatalf("unexpected page total=%d logs=%d", total, len(logs))
	}
}
