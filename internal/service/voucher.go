package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/etorin/event-seat-booking/internal/clock"
	"github.com/etorin/event-seat-booking/internal/model"
)

// VoucherIssuer produces the redeemable proof-of-purchase artifact
// attached to a booking at confirmation: a signed token carrying the
// booking id, event id, seat labels and total, verifiable at the door
// without a database lookup.
type VoucherIssuer struct {
	secret []byte
	clk    clock.Clock
}

// NewVoucherIssuer returns an issuer signing with the given secret.
func NewVoucherIssuer(secret string, clk clock.Clock) *VoucherIssuer {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &VoucherIssuer{secret: []byte(secret), clk: clk}
}

// Issue signs a voucher for the booking.
func (v *VoucherIssuer) Issue(booking *model.Booking, seatLabels []string) (string, error) {
	now := v.clk.Now()
	claims := jwt.MapClaims{
		"booking_id": booking.ID,
		"event_id":   booking.EventID,
		"seats":      seatLabels,
		"total":      booking.TotalAmount.StringFixed(2),
		"iat":        now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign voucher: %w", err)
	}
	return signed, nil
}

// Verify parses a voucher and returns the booking id it was issued
// for.  Used by door scanners and by tests.
func (v *VoucherIssuer) Verify(voucher string) (uint64, error) {
	token, err := jwt.Parse(voucher, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(func() time.Time { return v.clk.Now() }))
	if err != nil {
		return 0, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("invalid voucher")
	}
	id, ok := claims["booking_id"].(float64)
	if !ok {
		return 0, fmt.Errorf("voucher missing booking id")
	}
	return uint64(id), nil
}
