package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etorin/event-seat-booking/internal/clock"
	"github.com/etorin/event-seat-booking/internal/model"
	"github.com/etorin/event-seat-booking/internal/queue"
	"github.com/etorin/event-seat-booking/internal/repository"
)

type capturingPublisher struct {
	events []queue.BookingConfirmedEvent
	err    error
}

func (p *capturingPublisher) PublishBookingConfirmed(_ context.Context, ev queue.BookingConfirmedEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

type settlementFixture struct {
	settlement *Settlement
	bookings   *fakeBookingStore
	payments   *fakePaymentStore
	gateway    *fakeGateway
	vouchers   *VoucherIssuer
	publisher  *capturingPublisher
	bookingID  uint64
}

func testSettlement(t *testing.T) *settlementFixture {
	t.Helper()
	bookings := newFakeBookingStore()
	payments := &fakePaymentStore{}
	gateway := &fakeGateway{}
	publisher := &capturingPublisher{}
	events := &fakeEventStore{events: map[uint64]*model.Event{1: activeEvent(1, 5, "50")}}
	vouchers := NewVoucherIssuer("test-secret", clock.NewFake(time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)))

	id := pendingBookingForSeat(t, bookings, 1, 10)
	bookings.details[id] = []repository.BookedSeatDetail{
		{SeatID: 10, RowLabel: "A", SeatNumber: 3, Tier: model.TierStandard, Price: "50.00"},
	}

	return &settlementFixture{
		settlement: NewSettlement(bookings, payments, events, gateway, vouchers, publisher),
		bookings:   bookings,
		payments:   payments,
		gateway:    gateway,
		vouchers:   vouchers,
		publisher:  publisher,
		bookingID:  id,
	}
}

func TestSettleConfirmsBooking(t *testing.T) {
	fx := testSettlement(t)

	res, err := fx.settlement.Settle(context.Background(), fx.bookingID, "card", &CardDetails{Number: "4242424242424242"})
	require.NoError(t, err)
	assert.Equal(t, "txn_test", res.TransactionID)
	assert.NotEmpty(t, res.Voucher)

	booking := fx.bookings.bookings[fx.bookingID]
	assert.Equal(t, model.BookingConfirmed, booking.Status)
	require.NotNil(t, booking.Voucher)
	assert.Equal(t, res.Voucher, *booking.Voucher)

	require.Len(t, fx.bookings.payments, 1)
	assert.Equal(t, model.PaymentCompleted, fx.bookings.payments[0].Status)
	assert.True(t, fx.bookings.payments[0].Amount.Equal(dec("50")))

	// The voucher verifies against the issuing secret.
	id, err := fx.vouchers.Verify(res.Voucher)
	require.NoError(t, err)
	assert.Equal(t, fx.bookingID, id)
}

func TestSettleAnnouncesConfirmation(t *testing.T) {
	fx := testSettlement(t)

	_, err := fx.settlement.Settle(context.Background(), fx.bookingID, "card", nil)
	require.NoError(t, err)

	require.Len(t, fx.publisher.events, 1)
	ev := fx.publisher.events[0]
	assert.Equal(t, fx.bookingID, ev.BookingID)
	assert.Equal(t, "Test Event", ev.EventName)
	assert.Equal(t, []string{"A3"}, ev.SeatLabels)
	assert.Equal(t, "50.00", ev.TotalAmount)
}

func TestSettlePublisherFailureIsIgnored(t *testing.T) {
	fx := testSettlement(t)
	fx.publisher.err = errors.New("broker down")

	_, err := fx.settlement.Settle(context.Background(), fx.bookingID, "card", nil)
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, fx.bookings.bookings[fx.bookingID].Status)
}

func TestSettleWithoutPublisher(t *testing.T) {
	fx := testSettlement(t)
	fx.settlement.publisher = nil

	_, err := fx.settlement.Settle(context.Background(), fx.bookingID, "card", nil)
	assert.NoError(t, err)
}

func TestSettleDeclineThenRetry(t *testing.T) {
	fx := testSettlement(t)
	fx.gateway.decline = true

	_, err := fx.settlement.Settle(context.Background(), fx.bookingID, "card", nil)
	assert.ErrorIs(t, err, ErrPaymentDeclined)

	// The booking stays pending and the failed attempt is on record.
	assert.Equal(t, model.BookingPending, fx.bookings.bookings[fx.bookingID].Status)
	require.Len(t, fx.payments.created, 1)
	assert.Equal(t, model.PaymentFailed, fx.payments.created[0].Status)

	// A retry with a cooperating gateway succeeds.
	fx.gateway.decline = false
	res, err := fx.settlement.Settle(context.Background(), fx.bookingID, "card", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Voucher)
	assert.Equal(t, model.BookingConfirmed, fx.bookings.bookings[fx.bookingID].Status)
}

func TestSettleAlreadyConfirmed(t *testing.T) {
	fx := testSettlement(t)

	_, err := fx.settlement.Settle(context.Background(), fx.bookingID, "card", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, fx.gateway.charges)

	// A second settlement is rejected before any charge is attempted,
	// so the buyer can never pay twice.
	_, err = fx.settlement.Settle(context.Background(), fx.bookingID, "card", nil)
	assert.ErrorIs(t, err, repository.ErrAlreadyConfirmed)
	assert.Equal(t, 1, fx.gateway.charges)
	require.Len(t, fx.bookings.payments, 1)
}

func TestSettleExpiredBooking(t *testing.T) {
	fx := testSettlement(t)
	fx.bookings.bookings[fx.bookingID].Status = model.BookingExpired

	_, err := fx.settlement.Settle(context.Background(), fx.bookingID, "card", nil)
	assert.ErrorIs(t, err, ErrBookingExpired)
	assert.Equal(t, 0, fx.gateway.charges)
}

func TestSettleUnknownBooking(t *testing.T) {
	fx := testSettlement(t)

	_, err := fx.settlement.Settle(context.Background(), 999, "card", nil)
	assert.ErrorIs(t, err, repository.ErrBookingNotFound)
}

func TestSettleGatewayInfrastructureError(t *testing.T) {
	fx := testSettlement(t)
	fx.gateway.err = errors.New("gateway timeout")

	_, err := fx.settlement.Settle(context.Background(), fx.bookingID, "card", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPaymentDeclined)

	// Infrastructure failures do not record a failed payment attempt.
	assert.Empty(t, fx.payments.created)
	assert.Equal(t, model.BookingPending, fx.bookings.bookings[fx.bookingID].Status)
}

func TestSettleConfirmRaceLosesCleanly(t *testing.T) {
	fx := testSettlement(t)

	// Another process confirmed the booking between our status read and
	// the guarded update; the store reports the conflict and no second
	// payment row is written by this path.
	fx.bookings.confirmErr = repository.ErrAlreadyConfirmed

	_, err := fx.settlement.Settle(context.Background(), fx.bookingID, "card", nil)
	assert.ErrorIs(t, err, repository.ErrAlreadyConfirmed)
}

func TestSimulatedGatewayDeterministicRates(t *testing.T) {
	ctx := context.Background()

	approve := NewSimulatedGateway(0, 0)
	ref, err := approve.Charge(ctx, dec("10"), "card", nil)
	require.NoError(t, err)
	assert.True(t, len(ref) > len("txn_"))

	decline := NewSimulatedGateway(1, 0)
	_, err = decline.Charge(ctx, dec("10"), "card", nil)
	assert.ErrorIs(t, err, ErrPaymentDeclined)
}

func TestSimulatedGatewayHonorsContext(t *testing.T) {
	gw := NewSimulatedGateway(0, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gw.Charge(ctx, dec("10"), "card", nil)
	assert.ErrorIs(t, err, context.Canceled)
}
