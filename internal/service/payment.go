package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/etorin/event-seat-booking/internal/model"
	"github.com/etorin/event-seat-booking/internal/queue"
	"github.com/etorin/event-seat-booking/internal/repository"
)

// ErrBookingExpired is returned when settlement is attempted against a
// booking the stale-pending sweep has already expired.
var ErrBookingExpired = errors.New("booking has expired")

// SettlementStore is the booking access settlement needs: loading the
// booking, listing its seats for the voucher, and the atomic
// confirm-with-payment write.
type SettlementStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	SeatsByBooking(ctx context.Context, bookingID uint64) ([]repository.BookedSeatDetail, error)
	Confirm(ctx context.Context, bookingID uint64, voucher string, p *model.Payment) error
}

// PaymentStore records failed settlement attempts.
type PaymentStore interface {
	Create(ctx context.Context, p *model.Payment) error
}

// ConfirmationPublisher announces confirmed bookings to downstream
// consumers.  Publishing is best-effort; a broker outage never fails a
// settlement.
type ConfirmationPublisher interface {
	PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

// SettlementResult is returned on successful settlement.
type SettlementResult struct {
	PaymentID     uint64
	TransactionID string
	Voucher       string
}

// Settlement drives a booking from pending to confirmed through an
// external payment attempt.  Booking existence, not payment status, is
// what blocks the seats, so a declined charge leaves everything
// retryable.
type Settlement struct {
	bookings  SettlementStore
	payments  PaymentStore
	events    EventStore
	gateway   Gateway
	vouchers  *VoucherIssuer
	publisher ConfirmationPublisher
}

// NewSettlement wires the settlement's dependencies.  publisher may be
// nil when no broker is configured.
func NewSettlement(bookings SettlementStore, payments PaymentStore, events EventStore, gateway Gateway, vouchers *VoucherIssuer, publisher ConfirmationPublisher) *Settlement {
	return &Settlement{
		bookings:  bookings,
		payments:  payments,
		events:    events,
		gateway:   gateway,
		vouchers:  vouchers,
		publisher: publisher,
	}
}

// Settle performs one payment attempt against the booking.
//
// A booking already confirmed fails with ErrAlreadyConfirmed before
// any charge is made, so a double settlement can never double-charge.
// On decline a failed payment row is recorded, the booking stays
// pending and ErrPaymentDeclined is returned.  On success the
// completed payment and the pending-to-confirmed transition commit in
// one transaction together with the signed voucher; only then does the
// seat become booked in the availability projection.
func (s *Settlement) Settle(ctx context.Context, bookingID uint64, method string, card *CardDetails) (*SettlementResult, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	switch booking.Status {
	case model.BookingPending:
	case model.BookingConfirmed:
		return nil, repository.ErrAlreadyConfirmed
	default:
		return nil, ErrBookingExpired
	}

	ref, err := s.gateway.Charge(ctx, booking.TotalAmount, method, card)
	if err != nil {
		if errors.Is(err, ErrPaymentDeclined) {
			s.recordFailure(ctx, booking, method)
			return nil, ErrPaymentDeclined
		}
		return nil, fmt.Errorf("payment gateway: %w", err)
	}

	seats, err := s.bookings.SeatsByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	labels := make([]string, 0, len(seats))
	for _, seat := range seats {
		labels = append(labels, fmt.Sprintf("%s%d", seat.RowLabel, seat.SeatNumber))
	}

	voucher, err := s.vouchers.Issue(booking, labels)
	if err != nil {
		return nil, err
	}

	payment := &model.Payment{
		Amount:         booking.TotalAmount,
		Method:         method,
		TransactionRef: ref,
	}
	if err := s.bookings.Confirm(ctx, bookingID, voucher, payment); err != nil {
		return nil, err
	}

	s.announce(ctx, booking, labels)

	return &SettlementResult{
		PaymentID:     payment.ID,
		TransactionID: ref,
		Voucher:       voucher,
	}, nil
}

// recordFailure writes a failed payment row.  Best-effort: the decline
// result is what matters to the caller, so a store error is only
// logged.
func (s *Settlement) recordFailure(ctx context.Context, booking *model.Booking, method string) {
	attempt := &model.Payment{
		BookingID: booking.ID,
		Amount:    booking.TotalAmount,
		Method:    method,
		Status:    model.PaymentFailed,
	}
	if err := s.payments.Create(ctx, attempt); err != nil {
		log.Printf("settlement: record failed payment for booking %d: %v", booking.ID, err)
	}
}

// announce publishes the booking.confirmed event.  Failures are logged
// and ignored.
func (s *Settlement) announce(ctx context.Context, booking *model.Booking, labels []string) {
	if s.publisher == nil {
		return
	}
	ev := queue.BookingConfirmedEvent{
		BookingID:   booking.ID,
		EventID:     booking.EventID,
		BuyerEmail:  booking.BuyerEmail,
		SeatLabels:  labels,
		TotalAmount: booking.TotalAmount.StringFixed(2),
		ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if event, err := s.events.GetByID(ctx, booking.EventID); err == nil {
		ev.EventName = event.Name
	}
	if err := s.publisher.PublishBookingConfirmed(ctx, ev); err != nil {
		log.Printf("settlement: publish booking.confirmed for booking %d: %v", booking.ID, err)
	}
}
