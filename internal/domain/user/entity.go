package user

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Role represents user role in the system
type Role string

const (
	RoleGuest Role = "guest"
	RoleAdmin Role = "admin"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	return r == RoleGuest || r == RoleAdmin
}

// NoPreference is the default for floor and location preferences
const NoPreference = "No Preference"

// User represents a hotel account
type User struct {
	ID             uuid.UUID      `db:"id"`
	Name           string         `db:"name"`
	Email          string         `db:"email"`
	PasswordHash   string         `db:"password_hash"`
	Role           Role           `db:"role"`
	GoogleID       sql.NullString `db:"google_id"`
	IsVerified     bool           `db:"is_verified"`
	PreferredFloor string         `db:"preferred_floor"`
	RoomLocation   string         `db:"room_location"`
	Interests      pq.StringArray `db:"interests"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

// IsAdmin returns true if user is an admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasPassword reports whether the account can sign in with a password
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// New builds a guest account with default preferences
func New(name, email string) *User {
	return &User{
		ID:             uuid.New(),
		Name:           strings.TrimSpace(name),
		Email:          NormalizeEmail(email),
		Role:           RoleGuest,
		PreferredFloor: NoPreference,
		RoomLocation:   NoPreference,
		Interests:      pq.StringArray{},
	}
}

// NormalizeEmail lowercases and trims an address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NameFromEmail derives a display name from the local part of an address
func NameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	local = strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(local)
	fields := strings.Fields(local)
	for i, f := range fields {
		fields[i] = strings.ToUpper(f[:1]) + f[1:]
	}
	if len(fields) == 0 {
		return "Guest"
	}
	return strings.Join(fields, " ")
}
