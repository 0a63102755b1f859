package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/etorin/event-seat-booking/internal/clock"
	"github.com/etorin/event-seat-booking/internal/lock"
	"github.com/etorin/event-seat-booking/internal/model"
	"github.com/etorin/event-seat-booking/internal/repository"
)

// Shared in-memory fakes for the store interfaces.  Each test wires
// only the fields it needs.

type fakeEventStore struct {
	events map[uint64]*model.Event
}

func (f *fakeEventStore) GetByID(_ context.Context, id uint64) (*model.Event, error) {
	ev, ok := f.events[id]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	return ev, nil
}

type fakeSeatStore struct {
	seats []model.Seat
}

func (f *fakeSeatStore) ListByVenue(_ context.Context, venueID uint64) ([]model.Seat, error) {
	var out []model.Seat
	for _, s := range f.seats {
		if s.VenueID == venueID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSeatStore) ListByIDs(_ context.Context, venueID uint64, ids []uint64) ([]model.Seat, error) {
	want := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []model.Seat
	for _, s := range f.seats {
		if _, ok := want[s.ID]; ok && s.VenueID == venueID {
			out = append(out, s)
		}
	}
	return out, nil
}

// fakeBookingStore implements BookingStore, SettlementStore,
// ConfirmedSeatSource and the lock manager's booking guard, mirroring
// how the real repository backs all four.
type fakeBookingStore struct {
	nextID   uint64
	bookings map[uint64]*model.Booking
	seats    map[uint64][]model.BookingSeat
	details  map[uint64][]repository.BookedSeatDetail
	payments []model.Payment

	createErr  error
	confirmErr error
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{
		nextID:   1,
		bookings: make(map[uint64]*model.Booking),
		seats:    make(map[uint64][]model.BookingSeat),
		details:  make(map[uint64][]repository.BookedSeatDetail),
	}
}

func (f *fakeBookingStore) Create(_ context.Context, b *model.Booking, seats []model.BookingSeat) error {
	if f.createErr != nil {
		return f.createErr
	}
	b.ID = f.nextID
	f.nextID++
	cp := *b
	f.bookings[b.ID] = &cp
	f.seats[b.ID] = append([]model.BookingSeat(nil), seats...)
	return nil
}

func (f *fakeBookingStore) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookingStore) SeatsByBooking(_ context.Context, bookingID uint64) ([]repository.BookedSeatDetail, error) {
	return f.details[bookingID], nil
}

func (f *fakeBookingStore) Confirm(_ context.Context, bookingID uint64, voucher string, p *model.Payment) error {
	if f.confirmErr != nil {
		return f.confirmErr
	}
	b, ok := f.bookings[bookingID]
	if !ok {
		return repository.ErrBookingNotFound
	}
	if b.Status != model.BookingPending {
		return repository.ErrAlreadyConfirmed
	}
	b.Status = model.BookingConfirmed
	b.Voucher = &voucher
	p.ID = uint64(len(f.payments) + 1)
	p.BookingID = bookingID
	p.Status = model.PaymentCompleted
	f.payments = append(f.payments, *p)
	return nil
}

func (f *fakeBookingStore) ClaimedSeatIDs(_ context.Context, eventID uint64) (map[uint64]struct{}, error) {
	out := make(map[uint64]struct{})
	for id, b := range f.bookings {
		if b.EventID != eventID || b.Status == model.BookingExpired {
			continue
		}
		for _, s := range f.seats[id] {
			out[s.SeatID] = struct{}{}
		}
	}
	return out, nil
}

func (f *fakeBookingStore) ConfirmedSeatIDs(_ context.Context, eventID uint64) (map[uint64]struct{}, error) {
	out := make(map[uint64]struct{})
	for id, b := range f.bookings {
		if b.EventID != eventID || b.Status != model.BookingConfirmed {
			continue
		}
		for _, s := range f.seats[id] {
			out[s.SeatID] = struct{}{}
		}
	}
	return out, nil
}

type fakePaymentStore struct {
	created []model.Payment
	err     error
}

func (f *fakePaymentStore) Create(_ context.Context, p *model.Payment) error {
	if f.err != nil {
		return f.err
	}
	p.ID = uint64(len(f.created) + 1)
	f.created = append(f.created, *p)
	return nil
}

// fakeGateway approves or declines every charge.
type fakeGateway struct {
	decline bool
	err     error
	charges int
}

func (f *fakeGateway) Charge(_ context.Context, _ decimal.Decimal, _ string, _ *CardDetails) (string, error) {
	f.charges++
	if f.err != nil {
		return "", f.err
	}
	if f.decline {
		return "", ErrPaymentDeclined
	}
	return "txn_test", nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func activeEvent(id, venueID uint64, base string) *model.Event {
	return &model.Event{
		ID:        id,
		VenueID:   venueID,
		Name:      "Test Event",
		Category:  "concert",
		StartsAt:  time.Date(2026, 6, 1, 20, 0, 0, 0, time.UTC),
		BasePrice: dec(base),
		Status:    model.EventActive,
	}
}

func newLockManager(guard lock.BookingGuard, ttl time.Duration) (*lock.Manager, *clock.Fake) {
	clk := clock.NewFake(time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC))
	return lock.NewManager(guard, ttl, clk), clk
}

// lockFixture bundles a manager with its fake clock for tests that
// need to advance time.
type lockFixture struct {
	locks *lock.Manager
	clk   *clock.Fake
}

func pendingBookingForSeat(t testing.TB, store *fakeBookingStore, eventID, seatID uint64) uint64 {
	t.Helper()
	b := &model.Booking{
		EventID:     eventID,
		BuyerName:   "Fixture Buyer",
		BuyerEmail:  "fixture@example.com",
		TotalAmount: dec("50"),
		Status:      model.BookingPending,
	}
	err := store.Create(context.Background(), b, []model.BookingSeat{{EventID: eventID, SeatID: seatID, Price: dec("50")}})
	if err != nil {
		t.Fatalf("create fixture booking: %v", err)
	}
	return b.ID
}

func confirmBookingForSeat(t testing.TB, store *fakeBookingStore, eventID, seatID uint64) uint64 {
	t.Helper()
	id := pendingBookingForSeat(t, store, eventID, seatID)
	store.bookings[id].Status = model.BookingConfirmed
	return id
}
