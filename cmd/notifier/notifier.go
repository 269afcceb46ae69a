package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aihotel/hotel-api/internal/domain/booking"
	"github.com/aihotel/hotel-api/internal/pkg/email"
	"github.com/aihotel/hotel-api/internal/pkg/events"
)

// BookingMailer sends booking notices
type BookingMailer interface {
	SendBookingNotice(ctx context.Context, templateName string, b *email.BookingDetails) error
}

type notifier struct {
	mailer      BookingMailer
	bookingsURL string
	window      time.Duration
}

var templates = map[string]string{
	events.TypeBookingConfirmed: email.TemplateBookingConfirmed,
	events.TypeBookingCanceled:  email.TemplateBookingCanceled,
	events.TypeBookingCompleted: email.TemplateBookingCompleted,
}

// Handle emails the guest about one booking event. Unknown event types are skipped.
func (n *notifier) Handle(ctx context.Context, event events.BookingEvent) error {
	templateName, ok := templates[event.Type]
	if !ok {
		log.Debug().Str("type", event.Type).Msg("Ignoring event")
		return nil
	}
	if event.GuestEmail == "" {
		return fmt.Errorf("event %s for %s has no guest email", event.Type, event.ReservationID)
	}

	details := &email.BookingDetails{
		Reference:   reference(event.ReservationID),
		GuestName:   event.GuestName,
		GuestEmail:  event.GuestEmail,
		RoomNumber:  event.RoomNumber,
		RoomType:    event.RoomType,
		CheckIn:     event.CheckIn,
		CheckOut:    event.CheckOut,
		Nights:      event.Nights,
		TotalPrice:  event.TotalPrice,
		BookingsURL: n.bookingsURL,
	}
	if checkIn, err := booking.ParseDate(event.CheckIn); err == nil {
		details.CancelBy = checkIn.Add(-n.window).Format("Jan 2, 2006 15:04 MST")
	}

	if err := n.mailer.SendBookingNotice(ctx, templateName, details); err != nil {
		return fmt.Errorf("send %s: %w", templateName, err)
	}
	log.Info().Str("type", event.Type).Str("reservation_id", event.ReservationID).Msg("Booking notice sent")
	return nil
}

// reference is the short booking code shown to guests
func reference(id string) string {
	if len(id) < 8 {
		return strings.ToUpper(id)
	}
	return strings.ToUpper(id[:8])
}
