package booking

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aihotel/hotel-api/internal/domain/room"
	"github.com/aihotel/hotel-api/internal/middleware"
	"github.com/aihotel/hotel-api/internal/pkg/errorhandler"
	"github.com/aihotel/hotel-api/internal/pkg/response"
	"github.com/aihotel/hotel-api/internal/pkg/validator"
)

// Handler handles availability and booking HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates booking handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Availability handles GET /availability?type=&check_in=&check_out=
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	checkIn, checkOut, ok := parseRangeQuery(w, r)
	if !ok {
		return
	}
	category := room.Type(r.URL.Query().Get("type"))
	if category != "" && !category.IsValid() {
		response.BadRequest(w, "Invalid room type")
		return
	}

	rooms, err := h.service.FindAvailable(r.Context(), category, checkIn, checkOut)
	if err != nil {
		h.handleError(w, r, "booking.availability", err)
		return
	}

	items := make([]*room.RoomResponse, len(rooms))
	for i, rm := range rooms {
		items[i] = room.RoomResponseFromEntity(rm)
	}
	response.List(w, items, len(items))
}

// RoomsForDates handles GET /availability/rooms?check_in=&check_out=
func (h *Handler) RoomsForDates(w http.ResponseWriter, r *http.Request) {
	checkIn, checkOut, ok := parseRangeQuery(w, r)
	if !ok {
		return
	}

	list, err := h.service.RoomAvailability(r.Context(), checkIn, checkOut)
	if err != nil {
		h.handleError(w, r, "booking.rooms_for_dates", err)
		return
	}

	items := make([]*RoomAvailabilityResponse, len(list))
	for i, a := range list {
		items[i] = &RoomAvailabilityResponse{
			RoomResponse:      room.RoomResponseFromEntity(a.Room),
			AvailableForDates: a.AvailableForDates,
		}
	}
	response.List(w, items, len(items))
}

// DisabledDates handles GET /rooms/{id}/disabled-dates
func (h *Handler) DisabledDates(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid room ID")
		return
	}

	dates, err := h.service.DisabledDates(r.Context(), roomID)
	if err != nil {
		h.handleError(w, r, "booking.disabled_dates", err)
		return
	}

	resp := &DisabledDatesResponse{RoomID: roomID, Dates: make([]string, len(dates))}
	for i, d := range dates {
		resp.Dates[i] = d.Format(DateLayout)
	}
	response.OK(w, resp)
}

// Create handles POST /bookings
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	checkIn, checkOut, err := parseRange(req.CheckIn, req.CheckOut)
	if err != nil {
		h.handleError(w, r, "booking.create", err)
		return
	}

	in := Request{Category: room.Type(req.Type), CheckIn: checkIn, CheckOut: checkOut}
	if req.RoomID != "" {
		in.RoomID = uuid.NullUUID{UUID: uuid.MustParse(req.RoomID), Valid: true}
	}

	guest, ok := h.currentGuest(w, r)
	if !ok {
		return
	}

	outcome, err := h.service.Request(r.Context(), guest, in)
	if err != nil {
		h.handleError(w, r, "booking.create", err)
		return
	}

	resp := &OutcomeResponse{State: outcome.State}
	if outcome.Reservation != nil {
		resp.Reservation = ReservationResponseFromDetails(outcome.Reservation, h.service.CanCancel(&outcome.Reservation.Reservation))
		response.Created(w, resp)
		return
	}
	resp.Proposal = ProposalResponseFromProposal(outcome.Proposal)
	response.OK(w, resp)
}

// Proposal handles GET /bookings/proposal
func (h *Handler) Proposal(w http.ResponseWriter, r *http.Request) {
	proposal, err := h.service.Proposal(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.handleError(w, r, "booking.proposal", err)
		return
	}
	response.OK(w, ProposalResponseFromProposal(proposal))
}

// Confirm handles POST /bookings/confirm
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmBookingRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	guest, ok := h.currentGuest(w, r)
	if !ok {
		return
	}

	details, err := h.service.Finalize(r.Context(), guest, uuid.MustParse(req.RoomID))
	if err != nil {
		h.handleError(w, r, "booking.confirm", err)
		return
	}

	response.Created(w, &OutcomeResponse{
		State:       OutcomeFinalized,
		Reservation: ReservationResponseFromDetails(details, h.service.CanCancel(&details.Reservation)),
	})
}

// ListMy handles GET /bookings
func (h *Handler) ListMy(w http.ResponseWriter, r *http.Request) {
	guest, ok := h.currentGuest(w, r)
	if !ok {
		return
	}

	list, err := h.service.ListForGuest(r.Context(), guest)
	if err != nil {
		h.handleError(w, r, "booking.list_my", err)
		return
	}
	h.writeList(w, list)
}

// Cancel handles POST /bookings/{id}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	guest, ok := h.currentGuest(w, r)
	if !ok {
		return
	}

	details, err := h.service.Cancel(r.Context(), guest, id)
	if err != nil {
		h.handleError(w, r, "booking.cancel", err)
		return
	}
	response.OK(w, ReservationResponseFromDetails(details, false))
}

// Invoice handles GET /bookings/{id}/invoice
func (h *Handler) Invoice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	guest, ok := h.currentGuest(w, r)
	if !ok {
		return
	}

	invoice, err := h.service.Invoice(r.Context(), guest, id)
	if err != nil {
		h.handleError(w, r, "booking.invoice", err)
		return
	}

	response.OK(w, &InvoiceResponse{
		InvoiceNumber: "INV-" + strings.ToUpper(invoice.Reservation.ID.String()[:8]),
		Reservation:   ReservationResponseFromDetails(invoice.Reservation, h.service.CanCancel(&invoice.Reservation.Reservation)),
		Nights:        invoice.Nights,
		NightlyRate:   invoice.NightlyRate,
		Total:         invoice.Total,
		IssuedAt:      invoice.IssuedAt,
	})
}

// AdminList handles GET /admin/bookings?status=
func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if err := validator.ValidateVar(status, "booking_status"); err != nil {
		response.BadRequest(w, "Invalid status filter")
		return
	}

	list, err := h.service.ListAll(r.Context(), status)
	if err != nil {
		h.handleError(w, r, "booking.admin_list", err)
		return
	}
	h.writeList(w, list)
}

// AdminCreate handles POST /admin/bookings
func (h *Handler) AdminCreate(w http.ResponseWriter, r *http.Request) {
	var req AdminCreateBookingRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	checkIn, checkOut, err := parseRange(req.CheckIn, req.CheckOut)
	if err != nil {
		h.handleError(w, r, "booking.admin_create", err)
		return
	}

	details, err := h.service.AdminCreate(r.Context(), uuid.MustParse(req.UserID), uuid.MustParse(req.RoomID), checkIn, checkOut)
	if err != nil {
		h.handleError(w, r, "booking.admin_create", err)
		return
	}
	response.Created(w, ReservationResponseFromDetails(details, false))
}

// AdminCheckout handles POST /admin/bookings/{id}/checkout
func (h *Handler) AdminCheckout(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	details, err := h.service.Checkout(r.Context(), id)
	if err != nil {
		h.handleError(w, r, "booking.checkout", err)
		return
	}
	response.OK(w, ReservationResponseFromDetails(details, false))
}

func (h *Handler) writeList(w http.ResponseWriter, list []*ReservationDetails) {
	items := make([]*ReservationResponse, len(list))
	for i, d := range list {
		items[i] = ReservationResponseFromDetails(d, d.IsActive() && h.service.CanCancel(&d.Reservation))
	}
	response.List(w, items, len(items))
}

func (h *Handler) currentGuest(w http.ResponseWriter, r *http.Request) (*Guest, bool) {
	guest, err := h.service.Guest(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		if errors.Is(err, ErrGuestNotFound) {
			response.Unauthorized(w, "Account not found")
		} else {
			errorhandler.HandleInternal(r.Context(), w, "booking.guest", err)
		}
		return nil, false
	}
	return guest, true
}

func parseRange(checkIn, checkOut string) (time.Time, time.Time, error) {
	in, err := ParseDate(checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}
	out, err := ParseDate(checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}
	return in, out, ValidateRange(in, out)
}

func parseRangeQuery(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	q := r.URL.Query()
	if q.Get("check_in") == "" || q.Get("check_out") == "" {
		response.BadRequest(w, "check_in and check_out are required (YYYY-MM-DD)")
		return time.Time{}, time.Time{}, false
	}
	in, out, err := parseRange(q.Get("check_in"), q.Get("check_out"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_RANGE", "Check-out must be a valid date after check-in")
		return time.Time{}, time.Time{}, false
	}
	return in, out, true
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, ErrInvalidRange):
		response.Error(w, http.StatusBadRequest, "INVALID_RANGE", "Check-out must be a valid date after check-in")
	case errors.Is(err, ErrNoAvailability):
		response.Error(w, http.StatusConflict, "NO_AVAILABILITY", "No rooms of this type are available for the selected dates")
	case errors.Is(err, ErrRoomUnavailable):
		response.Error(w, http.StatusConflict, "ROOM_UNAVAILABLE", "That room was just booked for these dates. Please start again")
	case errors.Is(err, ErrRoomNotFound):
		response.NotFound(w, "Room not found")
	case errors.Is(err, ErrBookingNotFound):
		response.NotFound(w, "Booking not found")
	case errors.Is(err, ErrGuestNotFound):
		response.NotFound(w, "User not found")
	case errors.Is(err, ErrNotAuthorizedForBooking):
		response.Forbidden(w, "You are not authorized to access this booking")
	case errors.Is(err, ErrCancellationWindowClosed):
		response.Error(w, http.StatusConflict, "CANCELLATION_WINDOW_CLOSED", "Bookings can only be canceled more than 48 hours before check-in")
	case errors.Is(err, ErrInvalidTransition):
		response.Error(w, http.StatusConflict, "INVALID_TRANSITION", "Booking is not active")
	case errors.Is(err, ErrNegotiationExpired):
		response.Error(w, http.StatusGone, "SESSION_EXPIRED", "Your booking session has expired. Please start again")
	case errors.Is(err, ErrNotACandidate):
		response.Error(w, http.StatusConflict, "NOT_A_CANDIDATE", "That room was not offered for this booking. Please start again")
	default:
		errorhandler.HandleInternal(r.Context(), w, op, err)
	}
}
