package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrPaymentDeclined is returned when the external payment provider
// rejects a charge.  The booking stays pending and the client may
// retry with the same or a different method.
var ErrPaymentDeclined = errors.New("payment declined")

// CardDetails carries optional card fields forwarded to the gateway.
// They are never persisted.
type CardDetails struct {
	Number string `json:"number"`
	Expiry string `json:"expiry"`
	CVC    string `json:"cvc"`
}

// Gateway models the external payment provider.  Charge returns the
// provider's transaction reference on success and ErrPaymentDeclined
// on rejection.  Any other error is an infrastructure failure.
type Gateway interface {
	Charge(ctx context.Context, amount decimal.Decimal, method string, card *CardDetails) (string, error)
}

// SimulatedGateway is a latency-bearing, possibly-failing stand-in for
// a real provider.  The decline probability is injected so tests can
// force both outcomes deterministically (rate 0 always approves,
// rate 1 always declines).
type SimulatedGateway struct {
	declineRate float64
	latency     time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSimulatedGateway returns a gateway declining the given fraction
// of charges after the given simulated latency.
func NewSimulatedGateway(declineRate float64, latency time.Duration) *SimulatedGateway {
	return &SimulatedGateway{
		declineRate: declineRate,
		latency:     latency,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Charge waits out the simulated latency, then approves or declines
// according to the configured rate.  Approved charges get a generated
// transaction reference.
func (g *SimulatedGateway) Charge(ctx context.Context, amount decimal.Decimal, method string, card *CardDetails) (string, error) {
	if g.latency > 0 {
		select {
		case <-time.After(g.latency):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	g.mu.Lock()
	declined := g.rnd.Float64() < g.declineRate
	g.mu.Unlock()
	if declined {
		return "", ErrPaymentDeclined
	}
	return "txn_" + uuid.NewString(), nil
}
