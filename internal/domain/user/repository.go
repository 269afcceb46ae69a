package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const userColumns = `id, name, email, password_hash, role, google_id, is_verified,
	preferred_floor, room_location, interests, created_at, updated_at`

// Repository defines user data access interface
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateRole(ctx context.Context, id uuid.UUID, role Role) error
	UpdatePreferences(ctx context.Context, user *User) error
	LinkGoogle(ctx context.Context, id uuid.UUID, googleID string) error
	MarkVerified(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string) ([]*User, error)
	Count(ctx context.Context) (int, error)
}

// repository implements Repository
type repository struct {
	db *sqlx.DB
}

// NewRepository creates new user repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Create creates a new user
func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, role, google_id, is_verified,
		                   preferred_floor, room_location, interests)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.GoogleID,
		user.IsVerified,
		user.PreferredFloor,
		user.RoomLocation,
		user.Interests,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailAlreadyExists
		}
		return fmt.Errorf("user repository create: %w", err)
	}
	return nil
}

// GetByID returns user by ID
func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail returns user by email, case-insensitively
func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
}

// GetByGoogleID returns the user linked to a Google account
func (r *repository) GetByGoogleID(ctx context.Context, googleID string) (*User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE google_id = $1`, googleID)
}

func (r *repository) getOne(ctx context.Context, query string, arg interface{}) (*User, error) {
	var user User
	err := r.db.GetContext(ctx, &user, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Update updates profile fields
func (r *repository) Update(ctx context.Context, user *User) error {
	query := `UPDATE users SET name = $2, updated_at = NOW() WHERE id = $1 RETURNING updated_at`
	err := r.db.QueryRowxContext(ctx, query, user.ID, user.Name).Scan(&user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("user repository update: %w", err)
	}
	return nil
}

// UpdatePassword updates user password hash
func (r *repository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, passwordHash)
}

// UpdateRole changes the user's role
func (r *repository) UpdateRole(ctx context.Context, id uuid.UUID, role Role) error {
	return r.exec(ctx, `UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`, id, role)
}

// UpdatePreferences stores stay preferences
func (r *repository) UpdatePreferences(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET preferred_floor = $2, room_location = $3, interests = $4, updated_at = NOW()
		WHERE id = $1
	`
	return r.exec(ctx, query, user.ID, user.PreferredFloor, user.RoomLocation, user.Interests)
}

// LinkGoogle attaches a Google account id and marks the address verified
func (r *repository) LinkGoogle(ctx context.Context, id uuid.UUID, googleID string) error {
	return r.exec(ctx, `UPDATE users SET google_id = $2, is_verified = TRUE, updated_at = NOW() WHERE id = $1`, id, googleID)
}

// MarkVerified marks the email address as confirmed
func (r *repository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, `UPDATE users SET is_verified = TRUE, updated_at = NOW() WHERE id = $1`, id)
}

func (r *repository) exec(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailAlreadyExists
		}
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Search lists users whose name or email contains query, newest first
func (r *repository) Search(ctx context.Context, query string) ([]*User, error) {
	users := []*User{}
	err := r.db.SelectContext(ctx, &users, `
		SELECT `+userColumns+`
		FROM users
		WHERE $1::text = '' OR name ILIKE '%' || $1::text || '%' OR email ILIKE '%' || $1::text || '%'
		ORDER BY created_at DESC
	`, query)
	if err != nil {
		return nil, fmt.Errorf("user repository search: %w", err)
	}
	return users, nil
}

// Count returns the number of accounts
func (r *repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, err
	}
	return n, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
