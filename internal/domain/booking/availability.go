package booking

import (
	"iter"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/aihotel/hotel-api/internal/domain/room"
)

// Overlaps is the half-open interval test [aIn, aOut) ∩ [bIn, bOut) ≠ ∅.
// A stay ending on the day another begins does not overlap.
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return aIn.Before(bOut) && aOut.After(bIn)
}

// ValidateRange fails with ErrInvalidRange unless checkIn < checkOut
func ValidateRange(checkIn, checkOut time.Time) error {
	if !checkIn.Before(checkOut) {
		return ErrInvalidRange
	}
	return nil
}

// BlockedRooms returns the ids of rooms holding an Active reservation that overlaps the range
func BlockedRooms(reservations []*Reservation, checkIn, checkOut time.Time) map[uuid.UUID]bool {
	blocked := make(map[uuid.UUID]bool)
	for _, r := range reservations {
		if r.Status != StatusActive {
			continue
		}
		if Overlaps(r.CheckIn, r.CheckOut, checkIn, checkOut) {
			blocked[r.RoomID] = true
		}
	}
	return blocked
}

// FindAvailable returns rooms of the category (all rooms when empty) with no overlapping
// Active reservation, ordered by category then room number. It never consults the
// rooms' IsAvailable flag.
func FindAvailable(rooms []*room.Room, reservations []*Reservation, category room.Type, checkIn, checkOut time.Time) ([]*room.Room, error) {
	if err := ValidateRange(checkIn, checkOut); err != nil {
		return nil, err
	}

	blocked := BlockedRooms(reservations, checkIn, checkOut)
	available := make([]*room.Room, 0, len(rooms))
	for _, rm := range rooms {
		if category != "" && rm.Type != category {
			continue
		}
		if !blocked[rm.ID] {
			available = append(available, rm)
		}
	}
	room.SortByTypeAndNumber(available)
	return available, nil
}

// ActiveOn counts rooms with an Active reservation covering the given day
func ActiveOn(reservations []*Reservation, t time.Time) int {
	start := Truncate(t)
	return len(BlockedRooms(reservations, start, start.Add(day)))
}

// DisabledDates yields every night [checkIn, checkOut) held by an Active reservation.
// The sequence is finite and can be ranged over more than once.
func DisabledDates(reservations []*Reservation) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		for _, r := range reservations {
			if r.Status != StatusActive {
				continue
			}
			for d := Truncate(r.CheckIn); d.Before(r.CheckOut); d = d.Add(day) {
				if !yield(d) {
					return
				}
			}
		}
	}
}

// GroupByFloor buckets rooms by floor; floors are sorted and each bucket keeps the input order
func GroupByFloor(rooms []*room.Room) ([]string, map[string][]*room.Room) {
	var floors []string
	groups := make(map[string][]*room.Room)
	for _, rm := range rooms {
		f := rm.Floor()
		if _, ok := groups[f]; !ok {
			floors = append(floors, f)
		}
		groups[f] = append(groups[f], rm)
	}
	sort.Strings(floors)
	return floors, groups
}
