package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/aihotel/hotel-api/internal/domain/booking"
)

// Stay is a reservation joined with the nightly price of its room
type Stay struct {
	ID       uuid.UUID      `db:"id"`
	RoomID   uuid.UUID      `db:"room_id"`
	CheckIn  time.Time      `db:"check_in"`
	CheckOut time.Time      `db:"check_out"`
	Status   booking.Status `db:"status"`
	Price    float64        `db:"price"`
}

// Repository reads the figures the admin dashboard aggregates
type Repository interface {
	CountUsers(ctx context.Context) (int, error)
	CountRooms(ctx context.Context) (int, error)
	ListStays(ctx context.Context, statuses ...booking.Status) ([]*Stay, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates dashboard repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *repository) CountRooms(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM rooms`); err != nil {
		return 0, fmt.Errorf("count rooms: %w", err)
	}
	return n, nil
}

// ListStays returns reservations in the given statuses with their room price
func (r *repository) ListStays(ctx context.Context, statuses ...booking.Status) ([]*Stay, error) {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}

	stays := []*Stay{}
	err := r.db.SelectContext(ctx, &stays, `
		SELECT res.id, res.room_id, res.check_in, res.check_out, res.status, rm.price
		FROM reservations res
		JOIN rooms rm ON rm.id = res.room_id
		WHERE res.status = ANY($1)
	`, pq.Array(names))
	if err != nil {
		return nil, fmt.Errorf("list stays: %w", err)
	}
	return stays, nil
}
