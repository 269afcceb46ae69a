package main

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/aihotel/hotel-api/internal/domain/booking"
	"github.com/aihotel/hotel-api/internal/domain/room"
	"github.com/aihotel/hotel-api/internal/domain/user"
)

const (
	historyDays      = 365
	horizonDays      = 60
	maxFuturePerRoom = 2
)

// catalog is the room inventory the hotel opened with
func catalog() []*room.Room {
	single := []string{"Free WiFi", "Air Conditioning", "Work Desk", "Mini Fridge", "Coffee Maker"}
	double := []string{"Free WiFi", "Air Conditioning", "Flat-screen TV", "Seating Area", "Iron & Ironing Board"}
	suite := []string{"Free WiFi", "Separate Living Room", "King-sized Bed", "Spa Bathroom", "Club Lounge Access", "Nespresso Machine"}

	mk := func(number string, t room.Type, price float64, description string, images, amenities []string) *room.Room {
		return &room.Room{
			ID:          uuid.New(),
			RoomNumber:  number,
			Type:        t,
			Price:       price,
			IsAvailable: true,
			Description: description,
			Images:      images,
			Amenities:   amenities,
		}
	}

	return []*room.Room{
		mk("101", room.TypeSingle, 95,
			"Perfect for the solo traveler: a cozy, quiet room with a work area, a plush single bed and a modern bathroom.",
			[]string{"/img/single/1.jpg", "/img/single/2.jpg"}, single),
		mk("102", room.TypeSingle, 95,
			"A tranquil retreat for business or leisure travelers seeking solitude and efficiency.",
			[]string{"/img/single/1.jpg", "/img/single/2.jpg"}, single),
		mk("201", room.TypeDouble, 140,
			"Modern and spacious, with two comfortable double beds and a chic seating area.",
			[]string{"/img/double/1.jpg", "/img/double/2.jpg", "/img/double/3.jpg"}, double),
		mk("202", room.TypeDouble, 140,
			"Two double beds and a view of the city, a great choice for traveling companions.",
			[]string{"/img/double/1.jpg", "/img/double/2.jpg", "/img/double/3.jpg"}, double),
		mk("301", room.TypeSuite, 220,
			"Our luxury suite: a separate living room, a king-sized bed, a spa-like bathroom and club lounge access.",
			[]string{"/img/suite/1.jpg", "/img/suite/2.jpg", "/img/suite/3.jpg"}, suite),
	}
}

// planReservations walks each room's calendar from a year ago to a few weeks
// ahead. Stays never overlap within a room. Finished stays are Completed or
// Canceled; stays not yet checked out are Active.
func planReservations(rooms []*room.Room, guest *user.User, now time.Time, rng *rand.Rand) []*booking.Reservation {
	today := booking.Truncate(now)
	start := today.AddDate(0, 0, -historyDays)
	horizon := today.AddDate(0, 0, horizonDays)

	var out []*booking.Reservation
	for _, rm := range rooms {
		cursor := start.AddDate(0, 0, rng.IntN(7))
		future := 0
		for cursor.Before(horizon) && future < maxFuturePerRoom {
			checkIn := cursor.AddDate(0, 0, 1+rng.IntN(10))
			checkOut := checkIn.AddDate(0, 0, 1+rng.IntN(5))
			cursor = checkOut

			if checkIn.After(horizon) {
				break
			}

			status := booking.StatusActive
			if !checkOut.After(today) {
				status = booking.StatusCompleted
				if rng.IntN(5) == 0 {
					status = booking.StatusCanceled
				}
			} else {
				future++
			}

			booked := checkIn.AddDate(0, 0, -(1 + rng.IntN(30)))
			if booked.After(now) {
				booked = now
			}

			out = append(out, &booking.Reservation{
				ID:          uuid.New(),
				UserID:      uuid.NullUUID{UUID: guest.ID, Valid: true},
				GuestName:   guest.Name,
				GuestEmail:  guest.Email,
				RoomID:      rm.ID,
				CheckIn:     checkIn,
				CheckOut:    checkOut,
				Status:      status,
				BookingDate: booked,
			})
		}
	}
	return out
}
