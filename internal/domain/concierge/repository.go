package concierge

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository persists concierge exchanges
type Repository interface {
	Create(ctx context.Context, log *ChatLog) error
	List(ctx context.Context, limit, offset int) ([]*ChatLog, error)
	Count(ctx context.Context) (int, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates chat log repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, log *ChatLog) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO chat_logs (id, user_id, user_input, ai_response, intent, available)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, log.ID, log.UserID, log.UserInput, log.AIResponse, log.Intent, log.Available).Scan(&log.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert chat log: %w", err)
	}
	return nil
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]*ChatLog, error) {
	logs := []*ChatLog{}
	err := r.db.SelectContext(ctx, &logs, `
		SELECT id, user_id, user_input, ai_response, intent, available, created_at
		FROM chat_logs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list chat logs: %w", err)
	}
	return logs, nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM chat_logs`); err != nil {
		return 0, fmt.Errorf("count chat logs: %w", err)
	}
	return n, nil
}
