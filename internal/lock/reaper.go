package lock

import (
	"context"
	"log"
	"time"

	"github.com/etorin/event-seat-booking/internal/clock"
)

// PendingSweeper expires stale pending bookings.  Implemented by the
// booking repository; only consulted when the stale-pending policy is
// enabled.
type PendingSweeper interface {
	ExpireStalePending(ctx context.Context, cutoff time.Time) (int64, error)
}

// Reaper periodically purges expired seat locks so seats return to the
// available pool without requiring client action.  Request-path
// callers never depend on the reaper for correctness: Acquire and the
// availability snapshot purge synchronously as well.  When a pending
// booking TTL is configured the reaper also expires pending bookings
// older than the TTL, releasing their seats.
type Reaper struct {
	manager    *Manager
	interval   time.Duration
	clk        clock.Clock
	sweeper    PendingSweeper
	pendingTTL time.Duration
}

// NewReaper returns a Reaper ticking at the given interval.  sweeper
// may be nil and pendingTTL zero, in which case stale pending bookings
// are left untouched.
func NewReaper(manager *Manager, interval time.Duration, clk clock.Clock, sweeper PendingSweeper, pendingTTL time.Duration) *Reaper {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &Reaper{
		manager:    manager,
		interval:   interval,
		clk:        clk,
		sweeper:    sweeper,
		pendingTTL: pendingTTL,
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
// Failures are logged and retried on the next tick; the reaper never
// crashes the process.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	log.Printf("lock reaper started (interval=%s)", r.interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("lock reaper stopped")
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep performs a single reap pass.
func (r *Reaper) Sweep(ctx context.Context) {
	if n := r.manager.PurgeExpired(); n > 0 {
		log.Printf("lock reaper: purged %d expired lock(s)", n)
	}
	if r.sweeper == nil || r.pendingTTL <= 0 {
		return
	}
	cutoff := r.clk.Now().Add(-r.pendingTTL)
	n, err := r.sweeper.ExpireStalePending(ctx, cutoff)
	if err != nil {
		log.Printf("lock reaper: expire stale pending bookings: %v", err)
		return
	}
	if n > 0 {
		log.Printf("lock reaper: expired %d stale pending booking(s)", n)
	}
}
