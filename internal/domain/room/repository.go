package room

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const roomColumns = `id, room_number, type, price, is_available, description, images, amenities, created_at, updated_at`

// Repository defines room data access interface
type Repository interface {
	Create(ctx context.Context, room *Room) error
	GetByID(ctx context.Context, id uuid.UUID) (*Room, error)
	GetByNumber(ctx context.Context, number string) (*Room, error)
	List(ctx context.Context, roomType Type) ([]*Room, error)
	Update(ctx context.Context, room *Room) error
	Delete(ctx context.Context, id uuid.UUID) error
	AppendImage(ctx context.Context, id uuid.UUID, url string) error
	HasActiveReservations(ctx context.Context, id uuid.UUID) (bool, error)
	Count(ctx context.Context) (int, error)
	CountAvailable(ctx context.Context) (int, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new room repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, room *Room) error {
	query := `
		INSERT INTO rooms (id, room_number, type, price, is_available, description, images, amenities)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		room.ID, room.RoomNumber, room.Type, room.Price, room.IsAvailable,
		room.Description, room.Images, room.Amenities,
	).Scan(&room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrRoomNumberTaken
		}
		return fmt.Errorf("room repository create: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Room, error) {
	var room Room
	err := r.db.GetContext(ctx, &room, `SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &room, nil
}

func (r *repository) GetByNumber(ctx context.Context, number string) (*Room, error) {
	var room Room
	err := r.db.GetContext(ctx, &room, `SELECT `+roomColumns+` FROM rooms WHERE room_number = $1`, number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &room, nil
}

// List returns rooms ordered by category then number; an empty type returns all rooms
func (r *repository) List(ctx context.Context, roomType Type) ([]*Room, error) {
	query := `
		SELECT ` + roomColumns + `
		FROM rooms
		WHERE ($1::text = '' OR type = $1::text)
		ORDER BY array_position(ARRAY['Single','Double','Suite'], type), room_number
	`
	var rooms []*Room
	if err := r.db.SelectContext(ctx, &rooms, query, string(roomType)); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *repository) Update(ctx context.Context, room *Room) error {
	query := `
		UPDATE rooms
		SET room_number = $2, type = $3, price = $4,
		    description = $5, images = $6, amenities = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		room.ID, room.RoomNumber, room.Type, room.Price,
		room.Description, room.Images, room.Amenities,
	).Scan(&room.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRoomNotFound
		}
		if isUniqueViolation(err) {
			return ErrRoomNumberTaken
		}
		return fmt.Errorf("room repository update: %w", err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrRoomHasReservations
		}
		return fmt.Errorf("room repository delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

func (r *repository) AppendImage(ctx context.Context, id uuid.UUID, url string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE rooms SET images = array_append(images, $2), updated_at = NOW() WHERE id = $1
	`, id, url)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

func (r *repository) HasActiveReservations(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (SELECT 1 FROM reservations WHERE room_id = $1 AND status = 'Active')
	`, id)
	return exists, err
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM rooms`)
	return n, err
}

// CountAvailable counts rooms whose convenience flag is set
func (r *repository) CountAvailable(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM rooms WHERE is_available`)
	return n, err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
