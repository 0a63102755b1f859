package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment statuses.  A booking may accumulate several payment attempts,
// for example a declined card followed by a retry; only a completed
// payment may flip the booking to confirmed.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// Payment records one settlement attempt against a booking.
//
// Fields:
//  ID             - primary key identifier.
//  BookingID      - booking being settled.
//  Amount         - amount charged.
//  Method         - payment method label (card, wallet, ...).
//  Status         - pending, completed or failed.
//  TransactionRef - external gateway transaction reference.
//  CreatedAt      - creation timestamp.
type Payment struct {
	ID             uint64          // payments.id
	BookingID      uint64          // payments.booking_id
	Amount         decimal.Decimal // payments.amount
	Method         string          // payments.method
	Status         string          // payments.status
	TransactionRef string          // payments.transaction_ref
	CreatedAt      time.Time       // payments.created_at
}
