package booking

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aihotel/hotel-api/internal/domain/room"
	"github.com/aihotel/hotel-api/internal/pkg/events"
)

type fakeCatalog struct {
	rooms []*room.Room
}

func (c *fakeCatalog) List(_ context.Context, t room.Type) ([]*room.Room, error) {
	var out []*room.Room
	for _, r := range c.rooms {
		if t == "" || r.Type == t {
			out = append(out, r)
		}
	}
	room.SortByTypeAndNumber(out)
	return out, nil
}

func (c *fakeCatalog) GetByID(_ context.Context, id uuid.UUID) (*room.Room, error) {
	for _, r := range c.rooms {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (c *fakeCatalog) byID(id uuid.UUID) *room.Room {
	r, _ := c.GetByID(context.Background(), id)
	return r
}

// fakeLedger mirrors the SQL repository's transactional behavior in memory
type fakeLedger struct {
	mu      sync.Mutex
	catalog *fakeCatalog
	items   []*Reservation
}

func (l *fakeLedger) details(r *Reservation) *ReservationDetails {
	rm := l.catalog.byID(r.RoomID)
	return &ReservationDetails{Reservation: *r, RoomNumber: rm.RoomNumber, RoomType: string(rm.Type), RoomPrice: rm.Price}
}

func (l *fakeLedger) GetByID(_ context.Context, id uuid.UUID) (*Reservation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range l.items {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (l *fakeLedger) GetDetails(_ context.Context, id uuid.UUID) (*ReservationDetails, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range l.items {
		if r.ID == id {
			return l.details(r), nil
		}
	}
	return nil, nil
}

func (l *fakeLedger) ListActive(_ context.Context) ([]*Reservation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*Reservation
	for _, r := range l.items {
		if r.Status == StatusActive {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (l *fakeLedger) ListActiveByRoom(ctx context.Context, roomID uuid.UUID) ([]*Reservation, error) {
	all, _ := l.ListActive(ctx)
	var out []*Reservation
	for _, r := range all {
		if r.RoomID == roomID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (l *fakeLedger) ListForGuest(_ context.Context, userID uuid.UUID, email string) ([]*ReservationDetails, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*ReservationDetails
	for _, r := range l.items {
		if (r.UserID.Valid && r.UserID.UUID == userID) || strings.EqualFold(r.GuestEmail, email) {
			out = append(out, l.details(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckIn.After(out[j].CheckIn) })
	return out, nil
}

func (l *fakeLedger) ListAll(_ context.Context, status Status) ([]*ReservationDetails, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*ReservationDetails
	for _, r := range l.items {
		if status == "" || r.Status == status {
			out = append(out, l.details(r))
		}
	}
	return out, nil
}

func (l *fakeLedger) CreateIfAvailable(_ context.Context, res *Reservation) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	rm := l.catalog.byID(res.RoomID)
	if rm == nil {
		return ErrRoomNotFound
	}
	if BlockedRooms(l.items, res.CheckIn, res.CheckOut)[res.RoomID] {
		return ErrRoomUnavailable
	}
	res.Status = StatusActive
	res.BookingDate = time.Now()
	cp := *res
	l.items = append(l.items, &cp)
	rm.IsAvailable = false
	return nil
}

func (l *fakeLedger) TransitionStatus(_ context.Context, id uuid.UUID, from, to Status) (*Reservation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range l.items {
		if r.ID != id {
			continue
		}
		if r.Status != from {
			return nil, ErrInvalidTransition
		}
		r.Status = to
		stillHeld := false
		for _, other := range l.items {
			if other.RoomID == r.RoomID && other.Status == StatusActive {
				stillHeld = true
			}
		}
		l.catalog.byID(r.RoomID).IsAvailable = !stillHeld
		cp := *r
		return &cp, nil
	}
	return nil, ErrBookingNotFound
}

func (l *fakeLedger) ReconcileAvailability(context.Context) (int64, error) {
	return 0, nil
}

type fakeGuests map[uuid.UUID]*Guest

func (g fakeGuests) GetGuest(_ context.Context, id uuid.UUID) (*Guest, error) {
	return g[id], nil
}

type fakeRecommender struct {
	pick    func(available []*room.Room) (uuid.UUID, bool)
	calls   int
	prefs   *Preferences
	seenAll int
}

func (f *fakeRecommender) Recommend(_ context.Context, available, all []*room.Room, prefs *Preferences) (uuid.UUID, bool) {
	f.calls++
	f.prefs = prefs
	f.seenAll = len(all)
	return f.pick(available)
}

type recordingPublisher struct {
	events []events.BookingEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.BookingEvent) error {
	p.events = append(p.events, e)
	return p.err
}

type fixture struct {
	svc       *Service
	catalog   *fakeCatalog
	ledger    *fakeLedger
	store     *MemoryNegotiationStore
	publisher *recordingPublisher
	guest     *Guest
	now       time.Time
}

func newFixture(t *testing.T, rooms ...*room.Room) *fixture {
	t.Helper()
	catalog := &fakeCatalog{rooms: rooms}
	ledger := &fakeLedger{catalog: catalog}
	store := NewMemoryNegotiationStore(30 * time.Minute)
	guest := &Guest{UserID: uuid.New(), Name: "Ada Guest", Email: "Ada@Example.com", Preferences: Preferences{PreferredFloor: "High Floor"}}
	publisher := &recordingPublisher{}

	f := &fixture{
		catalog:   catalog,
		ledger:    ledger,
		store:     store,
		publisher: publisher,
		guest:     guest,
		now:       time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(ledger, catalog, fakeGuests{guest.UserID: guest}, store, nil, publisher, Config{CancellationWindow: 48 * time.Hour})
	f.svc.now = func() time.Time { return f.now }
	return f
}

func singleRequest(in, out string) Request {
	return Request{Category: room.TypeSingle, CheckIn: date(in), CheckOut: date(out)}
}

func TestRequestSingleCandidateFinalizesImmediately(t *testing.T) {
	r1 := newRoom("101", room.TypeSingle, 95)
	f := newFixture(t, r1, newRoom("201", room.TypeDouble, 150))

	outcome, err := f.svc.Request(context.Background(), f.guest, singleRequest("2024-03-01", "2024-03-03"))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if outcome.State != OutcomeFinalized || outcome.Proposal != nil {
		t.Fatalf("expected finalized outcome, got %+v", outcome)
	}
	if outcome.Reservation.Status != StatusActive || outcome.Reservation.RoomID != r1.ID {
		t.Fatalf("unexpected reservation: %+v", outcome.Reservation)
	}
	if _, err := f.store.Load(context.Background(), f.guest.UserID); !errors.Is(err, ErrNegotiationExpired) {
		t.Fatal("fast path must not store a negotiation")
	}
	if r1.IsAvailable {
		t.Fatal("room flag must be cleared")
	}
	if outcome.Reservation.GuestEmail != "ada@example.com" || outcome.Reservation.GuestName != "Ada Guest" {
		t.Fatalf("guest identity not copied: %+v", outcome.Reservation)
	}
}

func TestRequestNoAvailability(t *testing.T) {
	r1 := newRoom("101", room.TypeSingle, 95)
	f := newFixture(t, r1)
	f.ledger.items = append(f.ledger.items, reservation(r1, "2024-03-02", "2024-03-04", StatusActive))

	_, err := f.svc.Request(context.Background(), f.guest, singleRequest("2024-03-01", "2024-03-03"))
	if !errors.Is(err, ErrNoAvailability) {
		t.Fatalf("expected ErrNoAvailability, got %v", err)
	}
}

func TestRequestInvalidRange(t *testing.T) {
	f := newFixture(t, newRoom("101", room.TypeSingle, 95))

	_, err := f.svc.Request(context.Background(), f.guest, singleRequest("2024-03-03", "2024-03-01"))
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
	if _, err := f.store.Load(context.Background(), f.guest.UserID); !errors.Is(err, ErrNegotiationExpired) {
		t.Fatal("invalid request must not change state")
	}
}

func TestRequestByRoomUsesItsCategory(t *testing.T) {
	suite := newRoom("301", room.TypeSuite, 300)
	f := newFixture(t, newRoom("101", room.TypeSingle, 95), suite)

	outcome, err := f.svc.Request(context.Background(), f.guest, Request{
		RoomID:   uuid.NullUUID{UUID: suite.ID, Valid: true},
		CheckIn:  date("2024-03-01"),
		CheckOut: date("2024-03-02"),
	})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if outcome.Reservation.RoomID != suite.ID {
		t.Fatalf("expected suite booked, got %s", outcome.Reservation.RoomNumber)
	}
}

func TestRequestUnknownRoom(t *testing.T) {
	f := newFixture(t, newRoom("101", room.TypeSingle, 95))
	_, err := f.svc.Request(context.Background(), f.guest, Request{
		RoomID:   uuid.NullUUID{UUID: uuid.New(), Valid: true},
		CheckIn:  date("2024-03-01"),
		CheckOut: date("2024-03-02"),
	})
	if !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

// Two free singles: proposal, finalize R1, then only R2 is free for the same range.
func TestNegotiationEndToEnd(t *testing.T) {
	r1 := newRoom("101", room.TypeSingle, 95)
	r2 := newRoom("102", room.TypeSingle, 95)
	f := newFixture(t, r1, r2)
	ctx := context.Background()

	outcome, err := f.svc.Request(ctx, f.guest, singleRequest("2024-03-01", "2024-03-03"))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if outcome.State != OutcomeProposed {
		t.Fatalf("expected proposed, got %s", outcome.State)
	}
	if len(outcome.Proposal.Floors) != 1 || len(outcome.Proposal.Floors[0].Rooms) != 2 {
		t.Fatalf("expected 2 candidates on floor 1, got %+v", outcome.Proposal.Floors)
	}
	if outcome.Proposal.Nights != 2 {
		t.Fatalf("expected 2 nights, got %d", outcome.Proposal.Nights)
	}
	if len(f.ledger.items) != 0 {
		t.Fatal("proposal must not create a reservation")
	}

	viewed, err := f.svc.Proposal(ctx, f.guest.UserID)
	if err != nil || len(viewed.Floors[0].Rooms) != 2 {
		t.Fatalf("proposal view: %v %+v", err, viewed)
	}

	details, err := f.svc.Finalize(ctx, f.guest, r1.ID)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if details.RoomID != r1.ID || details.Nights() != 2 || details.TotalPrice(details.RoomPrice) != 190 || details.Status != StatusActive {
		t.Fatalf("unexpected reservation: %+v", details)
	}
	if r1.IsAvailable {
		t.Fatal("R1 flag must be cleared")
	}
	if _, err := f.svc.Proposal(ctx, f.guest.UserID); !errors.Is(err, ErrNegotiationExpired) {
		t.Fatalf("negotiation must be consumed, got %v", err)
	}

	free, err := f.svc.FindAvailable(ctx, room.TypeSingle, date("2024-03-01"), date("2024-03-03"))
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(free) != 1 || free[0].ID != r2.ID {
		t.Fatalf("expected only R2, got %v", numbers(free))
	}

	if len(f.publisher.events) != 1 || f.publisher.events[0].Type != events.TypeBookingConfirmed || f.publisher.events[0].TotalPrice != 190 {
		t.Fatalf("unexpected events: %+v", f.publisher.events)
	}
}

func TestFinalizeRejectsRoomOutsideCandidates(t *testing.T) {
	r1 := newRoom("101", room.TypeSingle, 95)
	r2 := newRoom("102", room.TypeSingle, 95)
	suite := newRoom("301", room.TypeSuite, 300)
	f := newFixture(t, r1, r2, suite)
	ctx := context.Background()

	if _, err := f.svc.Request(ctx, f.guest, singleRequest("2024-03-01", "2024-03-03")); err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := f.svc.Finalize(ctx, f.guest, suite.ID); !errors.Is(err, ErrNotACandidate) {
		t.Fatalf("expected ErrNotACandidate, got %v", err)
	}
	if len(f.ledger.items) != 0 {
		t.Fatal("no reservation may be created")
	}
	if _, err := f.svc.Finalize(ctx, f.guest, r1.ID); !errors.Is(err, ErrNegotiationExpired) {
		t.Fatalf("negotiation is single use, got %v", err)
	}
}

func TestFinalizeRechecksOverlap(t *testing.T) {
	r1 := newRoom("101", room.TypeSingle, 95)
	r2 := newRoom("102", room.TypeSingle, 95)
	f := newFixture(t, r1, r2)
	ctx := context.Background()

	if _, err := f.svc.Request(ctx, f.guest, singleRequest("2024-03-01", "2024-03-03")); err != nil {
		t.Fatalf("request: %v", err)
	}
	// another guest takes R1 while this one is deciding
	f.ledger.items = append(f.ledger.items, reservation(r1, "2024-03-02", "2024-03-05", StatusActive))

	if _, err := f.svc.Finalize(ctx, f.guest, r1.ID); !errors.Is(err, ErrRoomUnavailable) {
		t.Fatalf("expected ErrRoomUnavailable, got %v", err)
	}
}

func TestFinalizeWithoutNegotiation(t *testing.T) {
	f := newFixture(t, newRoom("101", room.TypeSingle, 95))
	if _, err := f.svc.Finalize(context.Background(), f.guest, uuid.New()); !errors.Is(err, ErrNegotiationExpired) {
		t.Fatalf("expected ErrNegotiationExpired, got %v", err)
	}
}

func TestRecommendationIsHighlightedAndForwardedPreferences(t *testing.T) {
	r1 := newRoom("101", room.TypeSingle, 95)
	r2 := newRoom("205", room.TypeSingle, 95)
	f := newFixture(t, r1, r2, newRoom("301", room.TypeSuite, 300))
	rec := &fakeRecommender{pick: func(av []*room.Room) (uuid.UUID, bool) { return av[1].ID, true }}
	f.svc.recommender = rec

	outcome, err := f.svc.Request(context.Background(), f.guest, singleRequest("2024-03-01", "2024-03-03"))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if !outcome.Proposal.RecommendedID.Valid || outcome.Proposal.RecommendedID.UUID != r2.ID {
		t.Fatalf("expected R2 recommended, got %+v", outcome.Proposal.RecommendedID)
	}
	if rec.prefs == nil || rec.prefs.PreferredFloor != "High Floor" || rec.seenAll != 3 {
		t.Fatalf("recommender got prefs=%+v all=%d", rec.prefs, rec.seenAll)
	}
	if len(outcome.Proposal.Floors) != 2 {
		t.Fatalf("expected floors 1 and 2, got %+v", outcome.Proposal.Floors)
	}
}

func TestRecommenderFailureDoesNotBlock(t *testing.T) {
	f := newFixture(t, newRoom("101", room.TypeSingle, 95), newRoom("102", room.TypeSingle, 95))
	f.svc.recommender = &fakeRecommender{pick: func([]*room.Room) (uuid.UUID, bool) { return uuid.Nil, false }}

	outcome, err := f.svc.Request(context.Background(), f.guest, singleRequest("2024-03-01", "2024-03-03"))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if outcome.State != OutcomeProposed || outcome.Proposal.RecommendedID.Valid {
		t.Fatalf("expected proposal without recommendation, got %+v", outcome.Proposal)
	}
}

func TestRecommendationOutsideCandidatesIsDropped(t *testing.T) {
	f := newFixture(t, newRoom("101", room.TypeSingle, 95), newRoom("102", room.TypeSingle, 95))
	f.svc.recommender = &fakeRecommender{pick: func([]*room.Room) (uuid.UUID, bool) { return uuid.New(), true }}

	outcome, err := f.svc.Request(context.Background(), f.guest, singleRequest("2024-03-01", "2024-03-03"))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if outcome.Proposal.RecommendedID.Valid {
		t.Fatal("foreign recommendation must be ignored")
	}
}

func bookedFixture(t *testing.T, checkIn string) (*fixture, *ReservationDetails, *room.Room) {
	t.Helper()
	r1 := newRoom("101", room.TypeSingle, 95)
	f := newFixture(t, r1)
	outcome, err := f.svc.Request(context.Background(), f.guest, Request{
		Category: room.TypeSingle,
		CheckIn:  date(checkIn),
		CheckOut: date(checkIn).AddDate(0, 0, 2),
	})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	return f, outcome.Reservation, r1
}

func TestFastPathClearsEarlierProposal(t *testing.T) {
	r1, r2 := newRoom("101", room.TypeSingle, 95), newRoom("102", room.TypeSingle, 95)
	suite := newRoom("301", room.TypeSuite, 220)
	f := newFixture(t, r1, r2, suite)
	ctx := context.Background()

	outcome, err := f.svc.Request(ctx, f.guest, singleRequest("2024-03-01", "2024-03-03"))
	if err != nil || outcome.State != OutcomeProposed {
		t.Fatalf("expected proposal, got %+v, %v", outcome, err)
	}

	outcome, err = f.svc.Request(ctx, f.guest, Request{Category: room.TypeSuite, CheckIn: date("2024-04-01"), CheckOut: date("2024-04-02")})
	if err != nil || outcome.State != OutcomeFinalized {
		t.Fatalf("expected immediate booking, got %+v, %v", outcome, err)
	}

	if _, err := f.svc.Finalize(ctx, f.guest, r1.ID); !errors.Is(err, ErrNegotiationExpired) {
		t.Fatalf("earlier proposal must be gone, got %v", err)
	}
	if len(f.ledger.items) != 1 {
		t.Fatalf("expected only the suite booking, got %d reservations", len(f.ledger.items))
	}
}

func TestCancelWindowBoundary(t *testing.T) {
	f, res, r1 := bookedFixture(t, "2024-03-10")
	ctx := context.Background()

	f.now = res.CheckIn.Add(-47*time.Hour - 59*time.Minute)
	if _, err := f.svc.Cancel(ctx, f.guest, res.ID); !errors.Is(err, ErrCancellationWindowClosed) {
		t.Fatalf("expected ErrCancellationWindowClosed, got %v", err)
	}
	stored, _ := f.ledger.GetByID(ctx, res.ID)
	if stored.Status != StatusActive {
		t.Fatalf("status must be unchanged, got %s", stored.Status)
	}

	f.now = res.CheckIn.Add(-48 * time.Hour)
	if _, err := f.svc.Cancel(ctx, f.guest, res.ID); !errors.Is(err, ErrCancellationWindowClosed) {
		t.Fatalf("exactly 48h before check-in is too late, got %v", err)
	}

	f.now = res.CheckIn.Add(-48*time.Hour - time.Second)
	canceled, err := f.svc.Cancel(ctx, f.guest, res.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if canceled.Status != StatusCanceled {
		t.Fatalf("expected canceled, got %s", canceled.Status)
	}
	if !r1.IsAvailable {
		t.Fatal("room flag must be restored")
	}
	if last := f.publisher.events[len(f.publisher.events)-1]; last.Type != events.TypeBookingCanceled {
		t.Fatalf("expected canceled event, got %s", last.Type)
	}
}

func TestCancelKeepsRoomHeldByAnotherReservation(t *testing.T) {
	f, first, r1 := bookedFixture(t, "2024-03-10")
	ctx := context.Background()

	second, err := f.svc.Request(ctx, f.guest, singleRequest("2024-07-01", "2024-07-04"))
	if err != nil {
		t.Fatalf("second request: %v", err)
	}

	if _, err := f.svc.Cancel(ctx, f.guest, first.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if r1.IsAvailable {
		t.Fatal("room with a later Active reservation must stay unavailable")
	}

	if _, err := f.svc.Checkout(ctx, second.Reservation.ID); err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if !r1.IsAvailable {
		t.Fatal("room flag must be restored once no Active reservation remains")
	}
}

func TestCancelRequiresOwnership(t *testing.T) {
	f, res, _ := bookedFixture(t, "2024-06-10")
	stranger := &Guest{UserID: uuid.New(), Email: "someone@else.com"}

	if _, err := f.svc.Cancel(context.Background(), stranger, res.ID); !errors.Is(err, ErrNotAuthorizedForBooking) {
		t.Fatalf("expected ErrNotAuthorizedForBooking, got %v", err)
	}

	sameEmail := &Guest{UserID: uuid.New(), Email: "ADA@example.com"}
	if _, err := f.svc.Cancel(context.Background(), sameEmail, res.ID); err != nil {
		t.Fatalf("booking email owner may cancel: %v", err)
	}
}

func TestCancelTwiceFails(t *testing.T) {
	f, res, _ := bookedFixture(t, "2024-06-10")
	ctx := context.Background()

	if _, err := f.svc.Cancel(ctx, f.guest, res.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := f.svc.Cancel(ctx, f.guest, res.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestCheckoutIsUnconditional(t *testing.T) {
	f, res, r1 := bookedFixture(t, "2024-02-02")
	ctx := context.Background()

	done, err := f.svc.Checkout(ctx, res.ID)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if done.Status != StatusCompleted || !r1.IsAvailable {
		t.Fatalf("unexpected state: %s available=%v", done.Status, r1.IsAvailable)
	}
	if _, err := f.svc.Checkout(ctx, res.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second checkout must fail, got %v", err)
	}
	if _, err := f.svc.Checkout(ctx, uuid.New()); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
}

func TestPublisherFailureIsAbsorbed(t *testing.T) {
	f := newFixture(t, newRoom("101", room.TypeSingle, 95))
	f.publisher.err = errors.New("broker down")

	if _, err := f.svc.Request(context.Background(), f.guest, singleRequest("2024-03-01", "2024-03-02")); err != nil {
		t.Fatalf("publish failure must not fail the booking: %v", err)
	}
}

func TestAdminCreateUsesAtomicCommit(t *testing.T) {
	r1 := newRoom("101", room.TypeSingle, 95)
	f := newFixture(t, r1)
	ctx := context.Background()

	if _, err := f.svc.AdminCreate(ctx, f.guest.UserID, r1.ID, date("2024-03-01"), date("2024-03-04")); err != nil {
		t.Fatalf("admin create: %v", err)
	}
	if _, err := f.svc.AdminCreate(ctx, f.guest.UserID, r1.ID, date("2024-03-03"), date("2024-03-05")); !errors.Is(err, ErrRoomUnavailable) {
		t.Fatalf("expected ErrRoomUnavailable, got %v", err)
	}
	if _, err := f.svc.AdminCreate(ctx, uuid.New(), r1.ID, date("2024-04-01"), date("2024-04-02")); !errors.Is(err, ErrGuestNotFound) {
		t.Fatalf("expected ErrGuestNotFound, got %v", err)
	}
}

func TestConcurrentCommitsNeverDoubleBook(t *testing.T) {
	r1 := newRoom("101", room.TypeSingle, 95)
	f := newFixture(t, r1)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.AdminCreate(context.Background(), f.guest.UserID, r1.ID, date("2024-03-01"), date("2024-03-03"))
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Fatalf("expected exactly one booking, got %d", succeeded)
	}
}

func TestListAllFilter(t *testing.T) {
	f, res, _ := bookedFixture(t, "2024-06-10")
	ctx := context.Background()
	f.svc.Cancel(ctx, f.guest, res.ID)

	all, _ := f.svc.ListAll(ctx, "all")
	canceled, _ := f.svc.ListAll(ctx, "Canceled")
	active, _ := f.svc.ListAll(ctx, "Active")
	if len(all) != 1 || len(canceled) != 1 || len(active) != 0 {
		t.Fatalf("unexpected filter results: all=%d canceled=%d active=%d", len(all), len(canceled), len(active))
	}
}

func TestInvoiceOwnerOnly(t *testing.T) {
	f, res, _ := bookedFixture(t, "2024-06-10")
	ctx := context.Background()

	inv, err := f.svc.Invoice(ctx, f.guest, res.ID)
	if err != nil {
		t.Fatalf("invoice: %v", err)
	}
	if inv.Nights != 2 || inv.Total != 190 || inv.NightlyRate != 95 {
		t.Fatalf("unexpected invoice: %+v", inv)
	}

	if _, err := f.svc.Invoice(ctx, &Guest{UserID: uuid.New(), Email: "x@y.z"}, res.ID); !errors.Is(err, ErrNotAuthorizedForBooking) {
		t.Fatalf("expected ErrNotAuthorizedForBooking, got %v", err)
	}
}

func TestDisabledDatesService(t *testing.T) {
	r1 := newRoom("101", room.TypeSingle, 95)
	f := newFixture(t, r1)
	f.ledger.items = append(f.ledger.items,
		reservation(r1, "2024-03-05", "2024-03-07", StatusActive),
		reservation(r1, "2024-03-01", "2024-03-03", StatusActive),
		reservation(r1, "2024-03-03", "2024-03-04", StatusCanceled),
	)

	dates, err := f.svc.DisabledDates(context.Background(), r1.ID)
	if err != nil {
		t.Fatalf("disabled dates: %v", err)
	}
	var got []string
	for _, d := range dates {
		got = append(got, d.Format(DateLayout))
	}
	if strings.Join(got, ",") != "2024-03-01,2024-03-02,2024-03-05,2024-03-06" {
		t.Fatalf("unexpected dates: %v", got)
	}

	if _, err := f.svc.DisabledDates(context.Background(), uuid.New()); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestRoomAvailabilityAnnotatesEveryRoom(t *testing.T) {
	r1 := newRoom("101", room.TypeSingle, 95)
	r2 := newRoom("201", room.TypeDouble, 150)
	f := newFixture(t, r1, r2)
	f.ledger.items = append(f.ledger.items, reservation(r2, "2024-03-01", "2024-03-05", StatusActive))

	list, err := f.svc.RoomAvailability(context.Background(), date("2024-03-02"), date("2024-03-03"))
	if err != nil {
		t.Fatalf("room availability: %v", err)
	}
	if len(list) != 2 || !list[0].AvailableForDates || list[1].AvailableForDates {
		t.Fatalf("unexpected availability: %+v", list)
	}
}
