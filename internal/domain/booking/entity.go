package booking

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a reservation
type Status string

const (
	StatusActive    Status = "Active"
	StatusCanceled  Status = "Canceled"
	StatusCompleted Status = "Completed"
)

// DateLayout is the wire format of check-in and check-out dates
const DateLayout = "2006-01-02"

const day = 24 * time.Hour

// Reservation is one entry of the reservation ledger.
// Guest name and email are copied from the account at creation time.
type Reservation struct {
	ID          uuid.UUID     `db:"id"`
	UserID      uuid.NullUUID `db:"user_id"`
	GuestName   string        `db:"guest_name"`
	GuestEmail  string        `db:"guest_email"`
	RoomID      uuid.UUID     `db:"room_id"`
	CheckIn     time.Time     `db:"check_in"`
	CheckOut    time.Time     `db:"check_out"`
	Status      Status        `db:"status"`
	BookingDate time.Time     `db:"booking_date"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

// Nights is ceil((checkOut - checkIn) in days), never less than one
func (r *Reservation) Nights() int {
	return Nights(r.CheckIn, r.CheckOut)
}

// TotalPrice uses the room's current nightly price
func (r *Reservation) TotalPrice(price float64) float64 {
	return float64(r.Nights()) * price
}

// IsActive reports whether the reservation still holds its room
func (r *Reservation) IsActive() bool {
	return r.Status == StatusActive
}

// BelongsTo reports whether the guest owns the reservation, by account or by booking email
func (r *Reservation) BelongsTo(g *Guest) bool {
	if g == nil {
		return false
	}
	if r.UserID.Valid && r.UserID.UUID == g.UserID {
		return true
	}
	return strings.EqualFold(r.GuestEmail, g.Email)
}

// Nights returns the billable nights between two dates
func Nights(checkIn, checkOut time.Time) int {
	n := int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
	if n < 1 {
		return 1
	}
	return n
}

// ReservationDetails is a reservation joined with the room it holds
type ReservationDetails struct {
	Reservation
	RoomNumber string  `db:"room_number"`
	RoomType   string  `db:"room_type"`
	RoomPrice  float64 `db:"room_price"`
}

// Preferences are the guest's stored room preferences, forwarded to the recommender
type Preferences struct {
	PreferredFloor string   `json:"preferred_floor"`
	RoomLocation   string   `json:"room_location"`
	Interests      []string `json:"interests"`
}

// Guest is the identity a booking is made for
type Guest struct {
	UserID      uuid.UUID
	Name        string
	Email       string
	Preferences Preferences
}

// ParseDate parses a YYYY-MM-DD date as UTC midnight
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
}

// Truncate drops the clock part of t, keeping its calendar date in UTC
func Truncate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
