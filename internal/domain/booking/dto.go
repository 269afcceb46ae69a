package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/aihotel/hotel-api/internal/domain/room"
)

// CreateBookingRequest asks for a specific room's category or for a category directly
type CreateBookingRequest struct {
	RoomID   string `json:"room_id" validate:"omitempty,uuid"`
	Type     string `json:"type" validate:"required_without=RoomID,room_type"`
	CheckIn  string `json:"check_in" validate:"required"`
	CheckOut string `json:"check_out" validate:"required"`
}

// ConfirmBookingRequest picks one room of the pending proposal
type ConfirmBookingRequest struct {
	RoomID string `json:"room_id" validate:"required,uuid"`
}

// AdminCreateBookingRequest books a room on behalf of an account
type AdminCreateBookingRequest struct {
	UserID   string `json:"user_id" validate:"required,uuid"`
	RoomID   string `json:"room_id" validate:"required,uuid"`
	CheckIn  string `json:"check_in" validate:"required"`
	CheckOut string `json:"check_out" validate:"required"`
}

// ReservationResponse represents a reservation in API responses
type ReservationResponse struct {
	ID          uuid.UUID `json:"id"`
	RoomID      uuid.UUID `json:"room_id"`
	RoomNumber  string    `json:"room_number"`
	RoomType    string    `json:"room_type"`
	GuestName   string    `json:"guest_name"`
	GuestEmail  string    `json:"guest_email"`
	CheckIn     string    `json:"check_in"`
	CheckOut    string    `json:"check_out"`
	Status      Status    `json:"status"`
	Nights      int       `json:"nights"`
	TotalPrice  float64   `json:"total_price"`
	BookingDate time.Time `json:"booking_date"`
	CanCancel   bool      `json:"can_cancel"`
}

// ReservationResponseFromDetails maps a joined reservation to its response
func ReservationResponseFromDetails(d *ReservationDetails, canCancel bool) *ReservationResponse {
	return &ReservationResponse{
		ID:          d.ID,
		RoomID:      d.RoomID,
		RoomNumber:  d.RoomNumber,
		RoomType:    d.RoomType,
		GuestName:   d.GuestName,
		GuestEmail:  d.GuestEmail,
		CheckIn:     d.CheckIn.Format(DateLayout),
		CheckOut:    d.CheckOut.Format(DateLayout),
		Status:      d.Status,
		Nights:      d.Nights(),
		TotalPrice:  d.TotalPrice(d.RoomPrice),
		BookingDate: d.BookingDate,
		CanCancel:   canCancel,
	}
}

// CandidateResponse is one room offered in a proposal
type CandidateResponse struct {
	*room.RoomResponse
	TotalPrice  float64 `json:"total_price"`
	Recommended bool    `json:"recommended"`
}

// FloorResponse groups candidates by floor
type FloorResponse struct {
	Floor string               `json:"floor"`
	Rooms []*CandidateResponse `json:"rooms"`
}

// ProposalResponse is the pending negotiation shown to the guest
type ProposalResponse struct {
	Type              room.Type        `json:"type"`
	CheckIn           string           `json:"check_in"`
	CheckOut          string           `json:"check_out"`
	Nights            int              `json:"nights"`
	RecommendedRoomID *uuid.UUID       `json:"recommended_room_id"`
	Floors            []*FloorResponse `json:"floors"`
}

// ProposalResponseFromProposal maps a proposal to its response
func ProposalResponseFromProposal(p *Proposal) *ProposalResponse {
	resp := &ProposalResponse{
		Type:     p.Category,
		CheckIn:  p.CheckIn.Format(DateLayout),
		CheckOut: p.CheckOut.Format(DateLayout),
		Nights:   p.Nights,
		Floors:   make([]*FloorResponse, 0, len(p.Floors)),
	}
	if p.RecommendedID.Valid {
		id := p.RecommendedID.UUID
		resp.RecommendedRoomID = &id
	}
	for _, f := range p.Floors {
		floor := &FloorResponse{Floor: f.Floor, Rooms: make([]*CandidateResponse, len(f.Rooms))}
		for i, rm := range f.Rooms {
			floor.Rooms[i] = &CandidateResponse{
				RoomResponse: room.RoomResponseFromEntity(rm),
				TotalPrice:   float64(p.Nights) * rm.Price,
				Recommended:  p.RecommendedID.Valid && p.RecommendedID.UUID == rm.ID,
			}
		}
		resp.Floors = append(resp.Floors, floor)
	}
	return resp
}

// OutcomeResponse is the result of a booking request
type OutcomeResponse struct {
	State       OutcomeState         `json:"state"`
	Reservation *ReservationResponse `json:"reservation,omitempty"`
	Proposal    *ProposalResponse    `json:"proposal,omitempty"`
}

// RoomAvailabilityResponse is a room annotated for the searched dates
type RoomAvailabilityResponse struct {
	*room.RoomResponse
	AvailableForDates bool `json:"available_for_dates"`
}

// DisabledDatesResponse lists nights that cannot be booked
type DisabledDatesResponse struct {
	RoomID uuid.UUID `json:"room_id"`
	Dates  []string  `json:"dates"`
}

// InvoiceResponse is the printable invoice
type InvoiceResponse struct {
	InvoiceNumber string               `json:"invoice_number"`
	Reservation   *ReservationResponse `json:"reservation"`
	Nights        int                  `json:"nights"`
	NightlyRate   float64              `json:"nightly_rate"`
	Total         float64              `json:"total"`
	IssuedAt      time.Time            `json:"issued_at"`
}
