package booking

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reservationCols = []string{"id", "user_id", "guest_name", "guest_email", "room_id", "check_in", "check_out", "status", "booking_date", "updated_at"}

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(sqlx.NewDb(db, "postgres")), mock
}

func pendingReservation(roomID uuid.UUID) *Reservation {
	return &Reservation{
		ID:         uuid.New(),
		UserID:     uuid.NullUUID{UUID: uuid.New(), Valid: true},
		GuestName:  "Ada Guest",
		GuestEmail: "ada@example.com",
		RoomID:     roomID,
		CheckIn:    date("2024-03-01"),
		CheckOut:   date("2024-03-03"),
	}
}

func TestCreateIfAvailableCommits(t *testing.T) {
	repo, mock := newMockRepo(t)
	roomID := uuid.New()
	res := pendingReservation(roomID)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM rooms WHERE id = \$1 FOR UPDATE`).
		WithArgs(roomID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(roomID.String()))
	mock.ExpectQuery(`FROM reservations WHERE room_id = \$1 AND status = 'Active'`).
		WithArgs(roomID).
		WillReturnRows(sqlmock.NewRows(reservationCols).
			AddRow(uuid.NewString(), nil, "Other", "o@example.com", roomID.String(), date("2024-02-27"), date("2024-03-01"), "Active", now, now))
	mock.ExpectQuery(`INSERT INTO reservations`).
		WillReturnRows(sqlmock.NewRows([]string{"booking_date", "updated_at"}).AddRow(now, now))
	mock.ExpectExec(`UPDATE rooms SET is_available = FALSE`).
		WithArgs(roomID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.CreateIfAvailable(context.Background(), res))
	assert.Equal(t, StatusActive, res.Status)
	assert.Equal(t, now, res.BookingDate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateIfAvailableRejectsOverlap(t *testing.T) {
	repo, mock := newMockRepo(t)
	roomID := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM rooms WHERE id = \$1 FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(roomID.String()))
	mock.ExpectQuery(`FROM reservations WHERE room_id = \$1 AND status = 'Active'`).
		WillReturnRows(sqlmock.NewRows(reservationCols).
			AddRow(uuid.NewString(), nil, "Other", "o@example.com", roomID.String(), date("2024-03-02"), date("2024-03-06"), "Active", now, now))
	mock.ExpectRollback()

	err := repo.CreateIfAvailable(context.Background(), pendingReservation(roomID))
	assert.ErrorIs(t, err, ErrRoomUnavailable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateIfAvailableMapsExclusionViolation(t *testing.T) {
	repo, mock := newMockRepo(t)
	roomID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM rooms WHERE id = \$1 FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(roomID.String()))
	mock.ExpectQuery(`FROM reservations WHERE room_id = \$1 AND status = 'Active'`).
		WillReturnRows(sqlmock.NewRows(reservationCols))
	mock.ExpectQuery(`INSERT INTO reservations`).
		WillReturnError(&pq.Error{Code: "23P01", Constraint: "reservations_no_overlap"})
	mock.ExpectRollback()

	err := repo.CreateIfAvailable(context.Background(), pendingReservation(roomID))
	assert.ErrorIs(t, err, ErrRoomUnavailable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateIfAvailableUnknownRoom(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM rooms WHERE id = \$1 FOR UPDATE`).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.CreateIfAvailable(context.Background(), pendingReservation(uuid.New()))
	assert.ErrorIs(t, err, ErrRoomNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionStatusRefreshesRoomFlag(t *testing.T) {
	repo, mock := newMockRepo(t)
	id, roomID := uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM reservations WHERE id = \$1 FOR UPDATE`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(reservationCols).
			AddRow(id.String(), nil, "Ada", "ada@example.com", roomID.String(), date("2024-03-01"), date("2024-03-03"), "Active", now, now))
	mock.ExpectQuery(`UPDATE reservations SET status = \$2`).
		WithArgs(id, StatusCanceled).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))
	mock.ExpectExec(`UPDATE rooms SET is_available = NOT EXISTS \( SELECT 1 FROM reservations WHERE room_id = \$1 AND status = 'Active' \), updated_at`).
		WithArgs(roomID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := repo.TransitionStatus(context.Background(), id, StatusActive, StatusCanceled)
	require.NoError(t, err)
	assert.Equal(t, StatusCanceled, res.Status)
	assert.Equal(t, roomID, res.RoomID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionStatusRejectsWrongState(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM reservations WHERE id = \$1 FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(reservationCols).
			AddRow(id.String(), nil, "Ada", "ada@example.com", uuid.NewString(), date("2024-03-01"), date("2024-03-03"), "Completed", now, now))
	mock.ExpectRollback()

	_, err := repo.TransitionStatus(context.Background(), id, StatusActive, StatusCanceled)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionStatusNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM reservations WHERE id = \$1 FOR UPDATE`).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.TransitionStatus(context.Background(), uuid.New(), StatusActive, StatusCompleted)
	assert.ErrorIs(t, err, ErrBookingNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcileAvailabilityReportsFixedRooms(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE rooms rm SET is_available = NOT EXISTS`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.ReconcileAvailability(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDetailsMissingReturnsNil(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`WHERE r.id = \$1`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	res, err := repo.GetDetails(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, res)
}
