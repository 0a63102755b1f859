package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/etorin/event-seat-booking/internal/lock"
	"github.com/etorin/event-seat-booking/internal/model"
)

// ErrEventInactive is returned when a booking is attempted against a
// cancelled event.
var ErrEventInactive = errors.New("event is not active")

// ErrUnknownSeats is returned when a booking names seats that do not
// belong to the event's venue.
var ErrUnknownSeats = errors.New("unknown seats for this event")

// BookingStore persists bookings created by the coordinator.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking, seats []model.BookingSeat) error
}

// Buyer carries the contact details recorded on a booking.
type Buyer struct {
	Name  string
	Email string
	Phone string
}

// BookingResult is returned on successful booking creation.
type BookingResult struct {
	BookingID   uint64
	TotalAmount decimal.Decimal
	Seats       int
}

// Coordinator turns a session's live seat locks into a pending
// booking.  The lock check and the booking insert run as one critical
// section inside the lock manager, so no competing acquire, purge or
// booking creation can interleave between them.
type Coordinator struct {
	events   EventStore
	seats    SeatStore
	bookings BookingStore
	locks    *lock.Manager
}

// NewCoordinator wires the coordinator's dependencies.
func NewCoordinator(events EventStore, seats SeatStore, bookings BookingStore, locks *lock.Manager) *Coordinator {
	return &Coordinator{events: events, seats: seats, bookings: bookings, locks: locks}
}

// Create validates the session's locks and atomically creates a
// pending booking for the seats, snapshotting each seat's resolved
// tier price.  The session's locks for the event are released on
// success; from then on the pending booking itself protects the seats.
// Fails with lock.ErrLockExpired when any lock is missing or expired,
// and leaves no partial booking behind on any failure.
func (c *Coordinator) Create(ctx context.Context, eventID uint64, seatIDs []uint64, sessionID string, buyer Buyer) (*BookingResult, error) {
	event, err := c.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Status != model.EventActive {
		return nil, ErrEventInactive
	}

	seats, err := c.seats.ListByIDs(ctx, event.VenueID, seatIDs)
	if err != nil {
		return nil, err
	}
	if len(seats) != len(seatIDs) {
		return nil, ErrUnknownSeats
	}

	total := decimal.Zero
	bookingSeats := make([]model.BookingSeat, 0, len(seats))
	for _, s := range seats {
		price := ResolveSeatPrice(event, s.Tier)
		total = total.Add(price)
		bookingSeats = append(bookingSeats, model.BookingSeat{
			EventID: eventID,
			SeatID:  s.ID,
			Price:   price,
		})
	}

	var phone *string
	if buyer.Phone != "" {
		phone = &buyer.Phone
	}
	booking := &model.Booking{
		EventID:     eventID,
		BuyerName:   buyer.Name,
		BuyerEmail:  buyer.Email,
		BuyerPhone:  phone,
		TotalAmount: total,
		Status:      model.BookingPending,
	}

	err = c.locks.Consume(ctx, eventID, seatIDs, sessionID, func(ctx context.Context) error {
		if err := c.bookings.Create(ctx, booking, bookingSeats); err != nil {
			return fmt.Errorf("create booking: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &BookingResult{
		BookingID:   booking.ID,
		TotalAmount: total,
		Seats:       len(bookingSeats),
	}, nil
}

// ResolveSeatPrice resolves the price charged for a seat of the given
// tier on an event.  Events without an explicit premium or vip price
// fall back to a multiple of the base price: premium = base * 1.5,
// vip = base * 2.
func ResolveSeatPrice(event *model.Event, tier string) decimal.Decimal {
	switch tier {
	case model.TierVIP:
		if event.VIPPrice.Valid {
			return event.VIPPrice.Decimal
		}
		return event.BasePrice.Mul(decimal.NewFromInt(2))
	case model.TierPremium:
		if event.PremiumPrice.Valid {
			return event.PremiumPrice.Decimal
		}
		return event.BasePrice.Mul(decimal.NewFromFloat(1.5))
	default:
		return event.BasePrice
	}
}
