package room

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Type is a room category
type Type string

const (
	TypeSingle Type = "Single"
	TypeDouble Type = "Double"
	TypeSuite  Type = "Suite"
)

// Types lists every category in display order
func Types() []Type {
	return []Type{TypeSingle, TypeDouble, TypeSuite}
}

// IsValid reports whether t is a known category
func (t Type) IsValid() bool {
	for _, v := range Types() {
		if v == t {
			return true
		}
	}
	return false
}

const DefaultDescription = "A beautiful and comfortable room."

// DefaultAmenities are applied when a room is created without any
func DefaultAmenities() []string {
	return []string{"Free WiFi", "Air Conditioning", "Flat-screen TV"}
}

// Room is a physical room in the catalog.
// IsAvailable is a hint maintained by booking state transitions; it is never
// used to decide whether a date range can be booked.
type Room struct {
	ID          uuid.UUID      `db:"id"`
	RoomNumber  string         `db:"room_number"`
	Type        Type           `db:"type"`
	Price       float64        `db:"price"`
	IsAvailable bool           `db:"is_available"`
	Description string         `db:"description"`
	Images      pq.StringArray `db:"images"`
	Amenities   pq.StringArray `db:"amenities"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// Floor is the grouping key used for spatial display: the first character of the room number
func (r *Room) Floor() string {
	if r.RoomNumber == "" {
		return ""
	}
	return r.RoomNumber[:1]
}

// SortByTypeAndNumber orders rooms by category then room number
func SortByTypeAndNumber(rooms []*Room) {
	rank := make(map[Type]int, 3)
	for i, t := range Types() {
		rank[t] = i
	}
	sort.SliceStable(rooms, func(i, j int) bool {
		if rooms[i].Type != rooms[j].Type {
			return rank[rooms[i].Type] < rank[rooms[j].Type]
		}
		return rooms[i].RoomNumber < rooms[j].RoomNumber
	})
}
