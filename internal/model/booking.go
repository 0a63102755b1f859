package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Booking statuses.  A booking is created as pending and becomes
// confirmed once a payment completes; confirmed is terminal.  Expired
// is only ever set by the optional stale-pending sweep and frees the
// booking's seats for new locks.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingExpired   = "expired"
)

// Booking represents a purchase attempt for a set of seats under one
// event.  A booking is created only after verifying the requesting
// session holds live locks on every requested seat.  From the moment
// the booking exists in pending status its seats are excluded from new
// locks and bookings, regardless of payment outcome.
//
// Fields:
//  ID          - primary key identifier.
//  EventID     - event being booked.
//  BuyerName   - buyer display name.
//  BuyerEmail  - buyer contact email.
//  BuyerPhone  - optional buyer phone number.
//  TotalAmount - sum of snapshotted seat prices.
//  Status      - pending, confirmed or expired.
//  Voucher     - signed proof-of-purchase token, set on confirmation.
//  CreatedAt   - creation timestamp.
//  UpdatedAt   - last update timestamp.
type Booking struct {
	ID          uint64          // bookings.id
	EventID     uint64          // bookings.event_id
	BuyerName   string          // bookings.buyer_name
	BuyerEmail  string          // bookings.buyer_email
	BuyerPhone  *string         // bookings.buyer_phone (nullable)
	TotalAmount decimal.Decimal // bookings.total_amount
	Status      string          // bookings.status
	Voucher     *string         // bookings.voucher (nullable)
	CreatedAt   time.Time       // bookings.created_at
	UpdatedAt   time.Time       // bookings.updated_at
}

// BookingSeat fixes one seat and the price charged for it at booking
// time.  The price is snapshotted, not recomputed later, so subsequent
// tier price changes on the event never retroactively alter a booking.
//
// Fields:
//  ID        - primary key identifier.
//  BookingID - owning booking.
//  EventID   - event under which the seat was booked.
//  SeatID    - seat that was booked.
//  Price     - price charged for this seat at booking time.
type BookingSeat struct {
	ID        uint64          // booking_seats.id
	BookingID uint64          // booking_seats.booking_id
	EventID   uint64          // booking_seats.event_id
	SeatID    uint64          // booking_seats.seat_id
	Price     decimal.Decimal // booking_seats.price
}
