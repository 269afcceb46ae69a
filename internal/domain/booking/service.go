package booking

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/aihotel/hotel-api/internal/domain/room"
	"github.com/aihotel/hotel-api/internal/pkg/events"
)

// RoomCatalog is the read side of the room catalog. GetByID returns nil, nil when missing.
type RoomCatalog interface {
	List(ctx context.Context, roomType room.Type) ([]*room.Room, error)
	GetByID(ctx context.Context, id uuid.UUID) (*room.Room, error)
}

// GuestDirectory resolves accounts into booking identities. Returns nil, nil when missing.
type GuestDirectory interface {
	GetGuest(ctx context.Context, userID uuid.UUID) (*Guest, error)
}

// Recommender picks one of the available rooms. ok is false when no recommendation could be made.
type Recommender interface {
	Recommend(ctx context.Context, available, all []*room.Room, prefs *Preferences) (roomID uuid.UUID, ok bool)
}

// EventPublisher delivers booking events after commit
type EventPublisher interface {
	Publish(ctx context.Context, event events.BookingEvent) error
}

// Config holds booking policy knobs
type Config struct {
	CancellationWindow time.Duration
}

// OutcomeState tells whether a booking request finished or awaits confirmation
type OutcomeState string

const (
	OutcomeFinalized OutcomeState = "finalized"
	OutcomeProposed  OutcomeState = "proposed"
)

// Outcome of a booking request
type Outcome struct {
	State       OutcomeState
	Reservation *ReservationDetails
	Proposal    *Proposal
}

// FloorGroup is the candidates located on one floor
type FloorGroup struct {
	Floor string
	Rooms []*room.Room
}

// Proposal is the read-only view of a pending negotiation
type Proposal struct {
	Category      room.Type
	CheckIn       time.Time
	CheckOut      time.Time
	Nights        int
	Floors        []FloorGroup
	RecommendedID uuid.NullUUID
}

// Request is a guest booking submission. RoomID, when set, decides the category.
type Request struct {
	RoomID   uuid.NullUUID
	Category room.Type
	CheckIn  time.Time
	CheckOut time.Time
}

// RoomAvailability is a catalog entry annotated for a date range
type RoomAvailability struct {
	Room              *room.Room
	AvailableForDates bool
}

// Invoice is the printable summary of a reservation
type Invoice struct {
	Reservation *ReservationDetails
	Nights      int
	NightlyRate float64
	Total       float64
	IssuedAt    time.Time
}

// Service runs the availability resolver and the booking negotiation flow
type Service struct {
	repo        Repository
	rooms       RoomCatalog
	guests      GuestDirectory
	store       NegotiationStore
	recommender Recommender
	publisher   EventPublisher
	config      Config
	now         func() time.Time
}

// NewService creates booking service. recommender and publisher may be nil.
func NewService(repo Repository, rooms RoomCatalog, guests GuestDirectory, store NegotiationStore, recommender Recommender, publisher EventPublisher, config Config) *Service {
	if config.CancellationWindow <= 0 {
		config.CancellationWindow = 48 * time.Hour
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Service{
		repo:        repo,
		rooms:       rooms,
		guests:      guests,
		store:       store,
		recommender: recommender,
		publisher:   publisher,
		config:      config,
		now:         time.Now,
	}
}

// Guest loads the booking identity of an account
func (s *Service) Guest(ctx context.Context, userID uuid.UUID) (*Guest, error) {
	guest, err := s.guests.GetGuest(ctx, userID)
	if err != nil {
		return nil, err
	}
	if guest == nil {
		return nil, ErrGuestNotFound
	}
	return guest, nil
}

// FindAvailable returns rooms of the category (all when empty) free for [checkIn, checkOut)
func (s *Service) FindAvailable(ctx context.Context, category room.Type, checkIn, checkOut time.Time) ([]*room.Room, error) {
	if err := ValidateRange(checkIn, checkOut); err != nil {
		return nil, err
	}

	rooms, err := s.rooms.List(ctx, category)
	if err != nil {
		return nil, err
	}
	active, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return FindAvailable(rooms, active, category, checkIn, checkOut)
}

// RoomAvailability lists every room with whether it is free for the range
func (s *Service) RoomAvailability(ctx context.Context, checkIn, checkOut time.Time) ([]RoomAvailability, error) {
	all, err := s.rooms.List(ctx, "")
	if err != nil {
		return nil, err
	}
	active, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	free, err := FindAvailable(all, active, "", checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	freeIDs := make(map[uuid.UUID]bool, len(free))
	for _, rm := range free {
		freeIDs[rm.ID] = true
	}
	out := make([]RoomAvailability, len(all))
	for i, rm := range all {
		out[i] = RoomAvailability{Room: rm, AvailableForDates: freeIDs[rm.ID]}
	}
	return out, nil
}

// DisabledDates returns the sorted, distinct nights a room cannot be booked
func (s *Service) DisabledDates(ctx context.Context, roomID uuid.UUID) ([]time.Time, error) {
	if _, err := s.getRoom(ctx, roomID); err != nil {
		return nil, err
	}

	active, err := s.repo.ListActiveByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	seen := make(map[time.Time]bool)
	var dates []time.Time
	for d := range DisabledDates(active) {
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })
	return dates, nil
}

// Request starts a booking. One free room is booked right away; several free rooms
// open a negotiation that the guest confirms with Finalize.
func (s *Service) Request(ctx context.Context, guest *Guest, req Request) (*Outcome, error) {
	checkIn, checkOut := Truncate(req.CheckIn), Truncate(req.CheckOut)
	if err := ValidateRange(checkIn, checkOut); err != nil {
		return nil, err
	}

	category := req.Category
	if req.RoomID.Valid {
		rm, err := s.getRoom(ctx, req.RoomID.UUID)
		if err != nil {
			return nil, err
		}
		category = rm.Type
	}

	available, err := s.FindAvailable(ctx, category, checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	switch len(available) {
	case 0:
		return nil, ErrNoAvailability
	case 1:
		details, err := s.commit(ctx, guest, available[0], checkIn, checkOut)
		if err != nil {
			return nil, err
		}
		// An earlier proposal must not stay confirmable next to this booking.
		if _, err := s.store.Take(ctx, guest.UserID); err != nil && !errors.Is(err, ErrNegotiationExpired) {
			log.Warn().Err(err).Str("user_id", guest.UserID.String()).Msg("Failed to clear stale negotiation")
		}
		return &Outcome{State: OutcomeFinalized, Reservation: details}, nil
	}

	negotiation := &Negotiation{
		UserID:       guest.UserID,
		Category:     category,
		CheckIn:      checkIn,
		CheckOut:     checkOut,
		CandidateIDs: make([]uuid.UUID, len(available)),
		CreatedAt:    s.now().UTC(),
	}
	for i, rm := range available {
		negotiation.CandidateIDs[i] = rm.ID
	}
	negotiation.RecommendedID = s.recommend(ctx, available, guest)

	if err := s.store.Save(ctx, negotiation); err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", guest.UserID.String()).
		Int("candidates", len(available)).
		Bool("recommended", negotiation.RecommendedID.Valid).
		Msg("Booking proposal created")

	return &Outcome{State: OutcomeProposed, Proposal: buildProposal(negotiation, available)}, nil
}

// recommend asks the recommender and keeps its answer only if it names a candidate
func (s *Service) recommend(ctx context.Context, available []*room.Room, guest *Guest) uuid.NullUUID {
	if s.recommender == nil {
		return uuid.NullUUID{}
	}
	all, err := s.rooms.List(ctx, "")
	if err != nil {
		log.Warn().Err(err).Msg("Room inventory unavailable for recommendation")
		return uuid.NullUUID{}
	}

	id, ok := s.recommender.Recommend(ctx, available, all, &guest.Preferences)
	if !ok {
		return uuid.NullUUID{}
	}
	for _, rm := range available {
		if rm.ID == id {
			return uuid.NullUUID{UUID: id, Valid: true}
		}
	}
	log.Warn().Str("room_id", id.String()).Msg("Recommender returned a room outside the candidates")
	return uuid.NullUUID{}
}

// Proposal returns the guest's pending negotiation with current room data
func (s *Service) Proposal(ctx context.Context, userID uuid.UUID) (*Proposal, error) {
	negotiation, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	rooms, err := s.rooms.List(ctx, negotiation.Category)
	if err != nil {
		return nil, err
	}
	candidates := make([]*room.Room, 0, len(negotiation.CandidateIDs))
	for _, rm := range rooms {
		if negotiation.IsCandidate(rm.ID) {
			candidates = append(candidates, rm)
		}
	}
	return buildProposal(negotiation, candidates), nil
}

func buildProposal(n *Negotiation, candidates []*room.Room) *Proposal {
	p := &Proposal{
		Category:      n.Category,
		CheckIn:       n.CheckIn,
		CheckOut:      n.CheckOut,
		Nights:        Nights(n.CheckIn, n.CheckOut),
		RecommendedID: n.RecommendedID,
	}
	floors, groups := GroupByFloor(candidates)
	for _, f := range floors {
		p.Floors = append(p.Floors, FloorGroup{Floor: f, Rooms: groups[f]})
	}
	return p
}

// Finalize consumes the guest's negotiation and books the chosen room. The choice must
// be one of the offered candidates, and overlap is checked again at commit.
func (s *Service) Finalize(ctx context.Context, guest *Guest, roomID uuid.UUID) (*ReservationDetails, error) {
	negotiation, err := s.store.Take(ctx, guest.UserID)
	if err != nil {
		return nil, err
	}
	if !negotiation.IsCandidate(roomID) {
		return nil, ErrNotACandidate
	}

	rm, err := s.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, guest, rm, negotiation.CheckIn, negotiation.CheckOut)
}

// AdminCreate books a room for an existing account through the same atomic commit
func (s *Service) AdminCreate(ctx context.Context, userID, roomID uuid.UUID, checkIn, checkOut time.Time) (*ReservationDetails, error) {
	checkIn, checkOut = Truncate(checkIn), Truncate(checkOut)
	if err := ValidateRange(checkIn, checkOut); err != nil {
		return nil, err
	}

	guest, err := s.Guest(ctx, userID)
	if err != nil {
		return nil, err
	}
	rm, err := s.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, guest, rm, checkIn, checkOut)
}

func (s *Service) commit(ctx context.Context, guest *Guest, rm *room.Room, checkIn, checkOut time.Time) (*ReservationDetails, error) {
	res := &Reservation{
		ID:         uuid.New(),
		GuestName:  guest.Name,
		GuestEmail: strings.ToLower(guest.Email),
		RoomID:     rm.ID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Status:     StatusActive,
	}
	if guest.UserID != uuid.Nil {
		res.UserID = uuid.NullUUID{UUID: guest.UserID, Valid: true}
	}

	if err := s.repo.CreateIfAvailable(ctx, res); err != nil {
		return nil, err
	}

	details := &ReservationDetails{
		Reservation: *res,
		RoomNumber:  rm.RoomNumber,
		RoomType:    string(rm.Type),
		RoomPrice:   rm.Price,
	}

	log.Info().
		Str("reservation_id", res.ID.String()).
		Str("room_number", rm.RoomNumber).
		Str("check_in", checkIn.Format(DateLayout)).
		Str("check_out", checkOut.Format(DateLayout)).
		Msg("Reservation confirmed")

	s.publish(ctx, events.TypeBookingConfirmed, details)
	return details, nil
}

// Cancel lets the owner cancel an Active reservation while check-in is more than
// the cancellation window away.
func (s *Service) Cancel(ctx context.Context, guest *Guest, id uuid.UUID) (*ReservationDetails, error) {
	details, err := s.getOwned(ctx, guest, id)
	if err != nil {
		return nil, err
	}
	if !details.IsActive() {
		return nil, ErrInvalidTransition
	}
	if !s.CanCancel(&details.Reservation) {
		return nil, ErrCancellationWindowClosed
	}

	updated, err := s.repo.TransitionStatus(ctx, id, StatusActive, StatusCanceled)
	if err != nil {
		return nil, err
	}
	details.Reservation = *updated

	log.Info().Str("reservation_id", id.String()).Msg("Reservation canceled")
	s.publish(ctx, events.TypeBookingCanceled, details)
	return details, nil
}

// CanCancel reports whether now is strictly before check-in minus the cancellation window
func (s *Service) CanCancel(r *Reservation) bool {
	return s.now().Before(r.CheckIn.Add(-s.config.CancellationWindow))
}

// Checkout completes an Active reservation unconditionally
func (s *Service) Checkout(ctx context.Context, id uuid.UUID) (*ReservationDetails, error) {
	details, err := s.repo.GetDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if details == nil {
		return nil, ErrBookingNotFound
	}

	updated, err := s.repo.TransitionStatus(ctx, id, StatusActive, StatusCompleted)
	if err != nil {
		return nil, err
	}
	details.Reservation = *updated

	log.Info().Str("reservation_id", id.String()).Msg("Reservation completed")
	s.publish(ctx, events.TypeBookingCompleted, details)
	return details, nil
}

// ListForGuest returns the guest's reservations, latest check-in first
func (s *Service) ListForGuest(ctx context.Context, guest *Guest) ([]*ReservationDetails, error) {
	return s.repo.ListForGuest(ctx, guest.UserID, guest.Email)
}

// ListAll returns reservations filtered by status; "" and "all" return every reservation
func (s *Service) ListAll(ctx context.Context, statusFilter string) ([]*ReservationDetails, error) {
	status := Status(statusFilter)
	if statusFilter == "all" {
		status = ""
	}
	return s.repo.ListAll(ctx, status)
}

// Invoice builds the printable invoice of a reservation owned by the guest
func (s *Service) Invoice(ctx context.Context, guest *Guest, id uuid.UUID) (*Invoice, error) {
	details, err := s.getOwned(ctx, guest, id)
	if err != nil {
		return nil, err
	}
	return &Invoice{
		Reservation: details,
		Nights:      details.Nights(),
		NightlyRate: details.RoomPrice,
		Total:       details.TotalPrice(details.RoomPrice),
		IssuedAt:    s.now().UTC(),
	}, nil
}

func (s *Service) getOwned(ctx context.Context, guest *Guest, id uuid.UUID) (*ReservationDetails, error) {
	details, err := s.repo.GetDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if details == nil {
		return nil, ErrBookingNotFound
	}
	if !details.BelongsTo(guest) {
		return nil, ErrNotAuthorizedForBooking
	}
	return details, nil
}

func (s *Service) getRoom(ctx context.Context, id uuid.UUID) (*room.Room, error) {
	rm, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rm == nil {
		return nil, ErrRoomNotFound
	}
	return rm, nil
}

// publish is best effort: the reservation is already committed
func (s *Service) publish(ctx context.Context, eventType string, d *ReservationDetails) {
	event := events.BookingEvent{
		Type:          eventType,
		ReservationID: d.ID.String(),
		RoomNumber:    d.RoomNumber,
		RoomType:      d.RoomType,
		GuestName:     d.GuestName,
		GuestEmail:    d.GuestEmail,
		CheckIn:       d.CheckIn.Format(DateLayout),
		CheckOut:      d.CheckOut.Format(DateLayout),
		Nights:        d.Nights(),
		TotalPrice:    d.TotalPrice(d.RoomPrice),
		OccurredAt:    s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Str("type", eventType).Str("reservation_id", event.ReservationID).Msg("Booking event not published")
	}
}
