// Package monitoring exposes prometheus metrics for the booking
// engine.  Counters are incremented at the HTTP boundary; the live
// lock gauge is refreshed by the reaper loop.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lockAcquisitions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seat_lock_acquisitions_total",
			Help: "Successful seat lock acquisitions",
		},
	)

	lockConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seat_lock_conflicts_total",
			Help: "Lock requests rejected because a seat was locked or booked",
		},
	)

	liveLocks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "seat_locks_live",
			Help: "Current number of live seat locks",
		},
	)

	bookingsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Pending bookings created from held locks",
		},
	)

	payments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Payment settlement attempts by outcome",
		},
		[]string{"outcome"},
	)
)

// LockAcquired counts one successful acquire.
func LockAcquired() { lockAcquisitions.Inc() }

// LockConflict counts one rejected acquire.
func LockConflict() { lockConflicts.Inc() }

// SetLiveLocks refreshes the live lock gauge.
func SetLiveLocks(n int) { liveLocks.Set(float64(n)) }

// BookingCreated counts one pending booking.
func BookingCreated() { bookingsCreated.Inc() }

// PaymentOutcome counts one settlement attempt; outcome is one of
// "completed", "declined" or "error".
func PaymentOutcome(outcome string) { payments.WithLabelValues(outcome).Inc() }
