package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/aihotel/hotel-api/internal/domain/room"
)

// Negotiation is the short-lived state between a multi-candidate request and its confirmation
type Negotiation struct {
	UserID        uuid.UUID     `json:"user_id"`
	Category      room.Type     `json:"category"`
	CheckIn       time.Time     `json:"check_in"`
	CheckOut      time.Time     `json:"check_out"`
	CandidateIDs  []uuid.UUID   `json:"candidate_ids"`
	RecommendedID uuid.NullUUID `json:"recommended_id"`
	CreatedAt     time.Time     `json:"created_at"`
}

// IsCandidate reports whether the room was offered in this negotiation
func (n *Negotiation) IsCandidate(roomID uuid.UUID) bool {
	return slices.Contains(n.CandidateIDs, roomID)
}

// NegotiationStore keeps one pending negotiation per user.
// Load and Take return ErrNegotiationExpired when nothing is stored.
type NegotiationStore interface {
	Save(ctx context.Context, n *Negotiation) error
	Load(ctx context.Context, userID uuid.UUID) (*Negotiation, error)
	// Take loads and deletes in one step so a negotiation is consumed at most once
	Take(ctx context.Context, userID uuid.UUID) (*Negotiation, error)
}

const negotiationKeyPrefix = "negotiation:"

func negotiationKey(userID uuid.UUID) string {
	return negotiationKeyPrefix + userID.String()
}

// RedisNegotiationStore stores negotiations as JSON with a TTL
type RedisNegotiationStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisNegotiationStore creates redis-backed store
func NewRedisNegotiationStore(client *redis.Client, ttl time.Duration) *RedisNegotiationStore {
	return &RedisNegotiationStore{client: client, ttl: ttl}
}

func (s *RedisNegotiationStore) Save(ctx context.Context, n *Negotiation) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, negotiationKey(n.UserID), string(data), s.ttl).Err()
}

func (s *RedisNegotiationStore) Load(ctx context.Context, userID uuid.UUID) (*Negotiation, error) {
	data, err := s.client.Get(ctx, negotiationKey(userID)).Bytes()
	return decodeNegotiation(data, err)
}

func (s *RedisNegotiationStore) Take(ctx context.Context, userID uuid.UUID) (*Negotiation, error) {
	data, err := s.client.GetDel(ctx, negotiationKey(userID)).Bytes()
	return decodeNegotiation(data, err)
}

func decodeNegotiation(data []byte, err error) (*Negotiation, error) {
	if errors.Is(err, redis.Nil) {
		return nil, ErrNegotiationExpired
	}
	if err != nil {
		return nil, fmt.Errorf("negotiation store: %w", err)
	}
	var n Negotiation
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("negotiation store decode: %w", err)
	}
	return &n, nil
}

type memoryEntry struct {
	negotiation Negotiation
	expiresAt   time.Time
}

// MemoryNegotiationStore is the single-process fallback used when Redis is not configured
type MemoryNegotiationStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[uuid.UUID]memoryEntry
	now     func() time.Time
}

// NewMemoryNegotiationStore creates in-memory store
func NewMemoryNegotiationStore(ttl time.Duration) *MemoryNegotiationStore {
	return &MemoryNegotiationStore{
		ttl:     ttl,
		entries: make(map[uuid.UUID]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryNegotiationStore) Save(_ context.Context, n *Negotiation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := memoryEntry{negotiation: *n, expiresAt: s.now().Add(s.ttl)}
	entry.negotiation.CandidateIDs = slices.Clone(n.CandidateIDs)
	s.entries[n.UserID] = entry
	return nil
}

func (s *MemoryNegotiationStore) Load(_ context.Context, userID uuid.UUID) (*Negotiation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(userID, false)
}

func (s *MemoryNegotiationStore) Take(_ context.Context, userID uuid.UUID) (*Negotiation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(userID, true)
}

// get must be called with mu held
func (s *MemoryNegotiationStore) get(userID uuid.UUID, remove bool) (*Negotiation, error) {
	entry, ok := s.entries[userID]
	if !ok {
		return nil, ErrNegotiationExpired
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.entries, userID)
		return nil, ErrNegotiationExpired
	}
	if remove {
		delete(s.entries, userID)
	}
	n := entry.negotiation
	n.CandidateIDs = slices.Clone(entry.negotiation.CandidateIDs)
	return &n, nil
}

// Sweep drops expired entries
func (s *MemoryNegotiationStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	now := s.now()
	for id, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}
