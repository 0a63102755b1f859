// Package lock implements the in-memory seat lock manager.  A lock is
// a short-lived exclusive claim on one (event, seat) pair by one client
// session.  The manager is the single coordination point for seat
// state in this process: every acquire, release and booking creation
// for an event runs under that event's mutex, so no two sessions can
// ever observe themselves as simultaneous holders of the same seat.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/etorin/event-seat-booking/internal/clock"
	"github.com/etorin/event-seat-booking/internal/model"
)

// Conflict reasons reported for seats that cannot be locked.
const (
	ReasonLocked = "locked" // live lock held by a different session
	ReasonBooked = "booked" // claimed by a pending or confirmed booking
)

// ErrLockExpired is returned when a booking is attempted after the
// session's locks lapsed or were never granted.  The client must
// restart seat selection.
var ErrLockExpired = errors.New("seat locks expired or not held")

// Unavailable identifies one seat that blocked an acquire and why.
type Unavailable struct {
	SeatID uint64
	Reason string
}

// ConflictError reports every requested seat that was unavailable at
// acquire time.  Acquire is all-or-nothing, so a ConflictError means
// zero locks were granted by the call.
type ConflictError struct {
	Seats []Unavailable
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%d seat(s) unavailable", len(e.Seats))
}

// BookingGuard reports the seats already claimed by a pending or
// confirmed booking for an event.  The manager consults it under the
// event mutex, so the answer cannot race a concurrent booking insert
// (booking creation runs under the same mutex via Consume).
type BookingGuard interface {
	ClaimedSeatIDs(ctx context.Context, eventID uint64) (map[uint64]struct{}, error)
}

// Manager grants and revokes seat locks.  All state is process-local;
// a lock's absence is the "available" state, so purging expired locks
// is pure deletion with no compensating action.
type Manager struct {
	guard BookingGuard
	ttl   time.Duration
	clk   clock.Clock

	mu     sync.Mutex
	events map[uint64]*eventLocks
}

type eventLocks struct {
	mu    sync.Mutex
	locks map[uint64]model.SeatLock // keyed by seat id
}

// NewManager returns a Manager granting locks for ttl per acquire.
func NewManager(guard BookingGuard, ttl time.Duration, clk clock.Clock) *Manager {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &Manager{
		guard:  guard,
		ttl:    ttl,
		clk:    clk,
		events: make(map[uint64]*eventLocks),
	}
}

// event returns the lock table for an event, creating it on first use.
func (m *Manager) event(eventID uint64) *eventLocks {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[eventID]
	if !ok {
		ev = &eventLocks{locks: make(map[uint64]model.SeatLock)}
		m.events[eventID] = ev
	}
	return ev
}

// purgeLocked removes expired locks for one event.  Caller must hold ev.mu.
func (ev *eventLocks) purgeLocked(now time.Time) int {
	n := 0
	for sid, l := range ev.locks {
		if !l.Live(now) {
			delete(ev.locks, sid)
			n++
		}
	}
	return n
}

// Acquire attempts to obtain a live lock on every seat in seatIDs for
// sessionID.  Expired locks are purged first.  The call is
// all-or-nothing: if any seat is claimed by a booking or locked by a
// different session it fails with a *ConflictError listing every
// unavailable seat, and no lock is granted.  On success any locks the
// session already held for this event are dropped first, then a fresh
// lock expiring at now+ttl is written for each requested seat; the
// drop and grant happen under the event mutex so no other session can
// observe the seats unlocked in between.
func (m *Manager) Acquire(ctx context.Context, eventID uint64, seatIDs []uint64, sessionID string) (time.Time, error) {
	if len(seatIDs) == 0 {
		return time.Time{}, errors.New("no seats requested")
	}
	if sessionID == "" {
		return time.Time{}, errors.New("session id required")
	}

	ev := m.event(eventID)
	ev.mu.Lock()
	defer ev.mu.Unlock()

	now := m.clk.Now()
	ev.purgeLocked(now)

	claimed, err := m.guard.ClaimedSeatIDs(ctx, eventID)
	if err != nil {
		return time.Time{}, fmt.Errorf("check booked seats: %w", err)
	}

	var conflicts []Unavailable
	for _, sid := range seatIDs {
		if _, booked := claimed[sid]; booked {
			conflicts = append(conflicts, Unavailable{SeatID: sid, Reason: ReasonBooked})
			continue
		}
		if l, held := ev.locks[sid]; held && l.SessionID != sessionID {
			conflicts = append(conflicts, Unavailable{SeatID: sid, Reason: ReasonLocked})
		}
	}
	if len(conflicts) > 0 {
		sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].SeatID < conflicts[j].SeatID })
		return time.Time{}, &ConflictError{Seats: conflicts}
	}

	// Drop-then-grant: previous locks by this session for the event are
	// replaced wholesale so a changed seat selection never leaves stale
	// claims behind.
	for sid, l := range ev.locks {
		if l.SessionID == sessionID {
			delete(ev.locks, sid)
		}
	}
	expiresAt := now.Add(m.ttl)
	for _, sid := range seatIDs {
		ev.locks[sid] = model.SeatLock{
			EventID:   eventID,
			SeatID:    sid,
			SessionID: sessionID,
			CreatedAt: now,
			ExpiresAt: expiresAt,
		}
	}
	return expiresAt, nil
}

// Release drops every lock held by the session for the event.  It is
// idempotent and never errors on "nothing to release"; the number of
// locks removed is returned.
func (m *Manager) Release(eventID uint64, sessionID string) int {
	ev := m.event(eventID)
	ev.mu.Lock()
	defer ev.mu.Unlock()
	return ev.releaseLocked(sessionID)
}

// releaseLocked drops the session's locks.  Caller must hold ev.mu.
func (ev *eventLocks) releaseLocked(sessionID string) int {
	n := 0
	for sid, l := range ev.locks {
		if l.SessionID == sessionID {
			delete(ev.locks, sid)
			n++
		}
	}
	return n
}

// Held reports whether every seat in seatIDs has a live lock owned by
// exactly this session.  It is the gate before booking creation.
func (m *Manager) Held(eventID uint64, seatIDs []uint64, sessionID string) bool {
	ev := m.event(eventID)
	ev.mu.Lock()
	defer ev.mu.Unlock()
	return ev.heldLocked(seatIDs, sessionID, m.clk.Now())
}

func (ev *eventLocks) heldLocked(seatIDs []uint64, sessionID string, now time.Time) bool {
	if len(seatIDs) == 0 {
		return false
	}
	for _, sid := range seatIDs {
		l, ok := ev.locks[sid]
		if !ok || l.SessionID != sessionID || !l.Live(now) {
			return false
		}
	}
	return true
}

// Consume runs fn inside the event's critical section after verifying
// the session holds live locks on every seat.  fn typically inserts
// the booking; while it runs no competing acquire, release, purge or
// booking creation for the event can interleave.  On success the
// session's locks for the event are dropped, the seats now being
// protected by the booking row itself.  If the locks are missing or
// expired Consume fails with ErrLockExpired without calling fn; if fn
// fails the locks are left in place so the client may retry.
func (m *Manager) Consume(ctx context.Context, eventID uint64, seatIDs []uint64, sessionID string, fn func(context.Context) error) error {
	ev := m.event(eventID)
	ev.mu.Lock()
	defer ev.mu.Unlock()

	now := m.clk.Now()
	ev.purgeLocked(now)
	if !ev.heldLocked(seatIDs, sessionID, now) {
		return ErrLockExpired
	}
	if err := fn(ctx); err != nil {
		return err
	}
	ev.releaseLocked(sessionID)
	return nil
}

// LockedSeats returns a snapshot of the live locks for an event as a
// seat id to session id map.  Expired locks are purged first so a
// request-path caller never sees a stale lock between reaper ticks.
func (m *Manager) LockedSeats(eventID uint64) map[uint64]string {
	ev := m.event(eventID)
	ev.mu.Lock()
	defer ev.mu.Unlock()

	ev.purgeLocked(m.clk.Now())
	out := make(map[uint64]string, len(ev.locks))
	for sid, l := range ev.locks {
		out[sid] = l.SessionID
	}
	return out
}

// PurgeExpired sweeps every event's lock table and deletes locks whose
// expiry has passed.  It returns the number of locks removed.
func (m *Manager) PurgeExpired() int {
	m.mu.Lock()
	evs := make([]*eventLocks, 0, len(m.events))
	for _, ev := range m.events {
		evs = append(evs, ev)
	}
	m.mu.Unlock()

	now := m.clk.Now()
	total := 0
	for _, ev := range evs {
		ev.mu.Lock()
		total += ev.purgeLocked(now)
		ev.mu.Unlock()
	}
	return total
}

// LiveCount returns the number of live locks across all events.
func (m *Manager) LiveCount() int {
	m.mu.Lock()
	evs := make([]*eventLocks, 0, len(m.events))
	for _, ev := range m.events {
		evs = append(evs, ev)
	}
	m.mu.Unlock()

	now := m.clk.Now()
	total := 0
	for _, ev := range evs {
		ev.mu.Lock()
		for _, l := range ev.locks {
			if l.Live(now) {
				total++
			}
		}
		ev.mu.Unlock()
	}
	return total
}
