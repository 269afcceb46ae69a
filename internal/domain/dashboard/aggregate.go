package dashboard

import (
	"math"
	"time"

	"github.com/aihotel/hotel-api/internal/domain/booking"
)

// Revenue is nights times price
func (s *Stay) Revenue() float64 {
	return float64(booking.Nights(s.CheckIn, s.CheckOut)) * s.Price
}

func (s *Stay) reservation() *booking.Reservation {
	return &booking.Reservation{ID: s.ID, RoomID: s.RoomID, CheckIn: s.CheckIn, CheckOut: s.CheckOut, Status: s.Status}
}

// Occupancy returns the rooms held by an Active stay today and their share of
// totalRooms as a percentage rounded to one decimal
func Occupancy(stays []*Stay, totalRooms int, now time.Time) (int, float64) {
	reservations := make([]*booking.Reservation, len(stays))
	for i, s := range stays {
		reservations[i] = s.reservation()
	}
	occupied := booking.ActiveOn(reservations, now)
	if totalRooms == 0 {
		return occupied, 0
	}
	return occupied, math.Round(float64(occupied)/float64(totalRooms)*1000) / 10
}

// TotalRevenue sums Completed stays only
func TotalRevenue(stays []*Stay) float64 {
	var total float64
	for _, s := range stays {
		if s.Status == booking.StatusCompleted {
			total += s.Revenue()
		}
	}
	return total
}

// MonthlyRevenue sums Active and Completed stays by check-in month of year
func MonthlyRevenue(stays []*Stay, year int) [12]float64 {
	var months [12]float64
	for _, s := range stays {
		if s.Status == booking.StatusCanceled || s.CheckIn.Year() != year {
			continue
		}
		months[s.CheckIn.Month()-1] += s.Revenue()
	}
	return months
}

// NextMonth returns the first day of the month after now and the one after it
func NextMonth(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// ActiveBetween counts Active stays overlapping [from, to)
func ActiveBetween(stays []*Stay, from, to time.Time) int {
	n := 0
	for _, s := range stays {
		if s.Status == booking.StatusActive && booking.Overlaps(s.CheckIn, s.CheckOut, from, to) {
			n++
		}
	}
	return n
}
