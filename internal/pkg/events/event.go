package events

import (
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// QueueName is the durable queue carrying booking lifecycle events
const QueueName = "booking.events"

// DialTimeout bounds the TCP connect and AMQP handshake with the broker
const DialTimeout = 5 * time.Second

// Booking event types
const (
	TypeBookingConfirmed = "booking.confirmed"
	TypeBookingCanceled  = "booking.canceled"
	TypeBookingCompleted = "booking.completed"
)

// BookingEvent is published after a reservation state change commits
type BookingEvent struct {
	Type          string    `json:"type"`
	ReservationID string    `json:"reservation_id"`
	RoomNumber    string    `json:"room_number"`
	RoomType      string    `json:"room_type"`
	GuestName     string    `json:"guest_name"`
	GuestEmail    string    `json:"guest_email"`
	CheckIn       string    `json:"check_in"`
	CheckOut      string    `json:"check_out"`
	Nights        int       `json:"nights"`
	TotalPrice    float64   `json:"total_price"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func dial(url string, timeout time.Duration) (*amqp.Connection, error) {
	return amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
}
