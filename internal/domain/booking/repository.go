package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const reservationColumns = `id, user_id, guest_name, guest_email, room_id, check_in, check_out, status, booking_date, updated_at`

const detailsQuery = `
	SELECT r.id, r.user_id, r.guest_name, r.guest_email, r.room_id, r.check_in, r.check_out,
	       r.status, r.booking_date, r.updated_at,
	       rm.room_number, rm.type AS room_type, rm.price AS room_price
	FROM reservations r
	JOIN rooms rm ON rm.id = r.room_id
`

// pq error codes
const (
	codeExclusionViolation  = "23P01"
	codeForeignKeyViolation = "23503"
)

// Repository defines reservation ledger access
type Repository interface {
	GetDetails(ctx context.Context, id uuid.UUID) (*ReservationDetails, error)
	ListActive(ctx context.Context) ([]*Reservation, error)
	ListActiveByRoom(ctx context.Context, roomID uuid.UUID) ([]*Reservation, error)
	ListForGuest(ctx context.Context, userID uuid.UUID, email string) ([]*ReservationDetails, error)
	ListAll(ctx context.Context, status Status) ([]*ReservationDetails, error)

	// CreateIfAvailable inserts an Active reservation unless an Active one overlaps it
	// on the same room, and marks the room unavailable, in one transaction.
	CreateIfAvailable(ctx context.Context, r *Reservation) error
	// TransitionStatus moves a reservation from one status to another and refreshes
	// the room flag in the same transaction.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Reservation, error)
	// ReconcileAvailability rewrites every room flag from the ledger
	ReconcileAvailability(ctx context.Context) (int64, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates reservation repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) beginTx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}

func (r *repository) GetDetails(ctx context.Context, id uuid.UUID) (*ReservationDetails, error) {
	var res ReservationDetails
	err := r.db.GetContext(ctx, &res, detailsQuery+` WHERE r.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (r *repository) ListActive(ctx context.Context) ([]*Reservation, error) {
	var list []*Reservation
	err := r.db.SelectContext(ctx, &list, `
		SELECT `+reservationColumns+` FROM reservations WHERE status = 'Active' ORDER BY check_in
	`)
	return list, err
}

func (r *repository) ListActiveByRoom(ctx context.Context, roomID uuid.UUID) ([]*Reservation, error) {
	var list []*Reservation
	err := r.db.SelectContext(ctx, &list, `
		SELECT `+reservationColumns+` FROM reservations
		WHERE room_id = $1 AND status = 'Active'
		ORDER BY check_in
	`, roomID)
	return list, err
}

// ListForGuest matches by account or by the email the booking was made with, newest stay first
func (r *repository) ListForGuest(ctx context.Context, userID uuid.UUID, email string) ([]*ReservationDetails, error) {
	var list []*ReservationDetails
	err := r.db.SelectContext(ctx, &list, detailsQuery+`
		WHERE r.user_id = $1 OR LOWER(r.guest_email) = LOWER($2)
		ORDER BY r.check_in DESC
	`, userID, email)
	return list, err
}

// ListAll returns every reservation, or only those with the given status, newest booking first
func (r *repository) ListAll(ctx context.Context, status Status) ([]*ReservationDetails, error) {
	var list []*ReservationDetails
	err := r.db.SelectContext(ctx, &list, detailsQuery+`
		WHERE ($1::text = '' OR r.status = $1::text)
		ORDER BY r.booking_date DESC
	`, string(status))
	return list, err
}

func (r *repository) CreateIfAvailable(ctx context.Context, res *Reservation) error {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Row lock on the room serializes bookings of the same room.
	var roomID uuid.UUID
	err = tx.GetContext(ctx, &roomID, `SELECT id FROM rooms WHERE id = $1 FOR UPDATE`, res.RoomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRoomNotFound
		}
		return fmt.Errorf("lock room: %w", err)
	}

	var active []*Reservation
	if err := tx.SelectContext(ctx, &active, `
		SELECT `+reservationColumns+` FROM reservations
		WHERE room_id = $1 AND status = 'Active'
	`, res.RoomID); err != nil {
		return fmt.Errorf("load active reservations: %w", err)
	}
	if BlockedRooms(active, res.CheckIn, res.CheckOut)[res.RoomID] {
		return ErrRoomUnavailable
	}

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO reservations (id, user_id, guest_name, guest_email, room_id, check_in, check_out, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING booking_date, updated_at
	`, res.ID, res.UserID, res.GuestName, res.GuestEmail, res.RoomID,
		res.CheckIn, res.CheckOut, StatusActive,
	).Scan(&res.BookingDate, &res.UpdatedAt)
	if err != nil {
		return mapWriteError(err)
	}
	res.Status = StatusActive

	if _, err := tx.ExecContext(ctx, `UPDATE rooms SET is_available = FALSE, updated_at = NOW() WHERE id = $1`, res.RoomID); err != nil {
		return fmt.Errorf("mark room unavailable: %w", err)
	}

	return tx.Commit()
}

func (r *repository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Reservation, error) {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var res Reservation
	err = tx.GetContext(ctx, &res, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if res.Status != from {
		return nil, ErrInvalidTransition
	}

	err = tx.QueryRowxContext(ctx, `
		UPDATE reservations SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING updated_at
	`, id, to).Scan(&res.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update reservation status: %w", err)
	}
	res.Status = to

	if _, err := tx.ExecContext(ctx, `
		UPDATE rooms
		SET is_available = NOT EXISTS (
			SELECT 1 FROM reservations WHERE room_id = $1 AND status = 'Active'
		), updated_at = NOW()
		WHERE id = $1
	`, res.RoomID); err != nil {
		return nil, fmt.Errorf("refresh room flag: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *repository) ReconcileAvailability(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE rooms rm
		SET is_available = NOT EXISTS (
			SELECT 1 FROM reservations r WHERE r.room_id = rm.id AND r.status = 'Active'
		), updated_at = NOW()
		WHERE rm.is_available = EXISTS (
			SELECT 1 FROM reservations r WHERE r.room_id = rm.id AND r.status = 'Active'
		)
	`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func mapWriteError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeExclusionViolation:
			return ErrRoomUnavailable
		case codeForeignKeyViolation:
			return ErrGuestNotFound
		}
	}
	return fmt.Errorf("insert reservation: %w", err)
}
