// Package service contains the core booking engine: the availability
// projector, the booking coordinator and payment settlement.  Services
// depend on small store interfaces implemented by the repository layer
// so the engine can be exercised against mocks.
package service

import (
	"context"
	"sort"

	"github.com/etorin/event-seat-booking/internal/lock"
	"github.com/etorin/event-seat-booking/internal/model"
)

// Seat availability states as seen by a browsing client.
const (
	SeatAvailable = "available"
	SeatLocked    = "locked"
	SeatBooked    = "booked"
)

// EventStore loads events from the inventory store.
type EventStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Event, error)
}

// SeatStore loads venue seats from the inventory store.
type SeatStore interface {
	ListByVenue(ctx context.Context, venueID uint64) ([]model.Seat, error)
	ListByIDs(ctx context.Context, venueID uint64, ids []uint64) ([]model.Seat, error)
}

// ConfirmedSeatSource reports the seats attached to confirmed bookings
// for an event.
type ConfirmedSeatSource interface {
	ConfirmedSeatIDs(ctx context.Context, eventID uint64) (map[uint64]struct{}, error)
}

// SeatView is one seat in the availability projection.
type SeatView struct {
	SeatID     uint64 `json:"seat_id"`
	RowLabel   string `json:"row_label"`
	SeatNumber uint32 `json:"seat_number"`
	Tier       string `json:"tier"`
	Status     string `json:"status"`
}

// SeatRow groups the seats of one row for display, seat number
// ascending.
type SeatRow struct {
	RowLabel string     `json:"row_label"`
	Seats    []SeatView `json:"seats"`
}

// Availability computes the three-way seat state for an event by
// combining lock manager state with confirmed bookings.  Pending
// bookings are deliberately absent from the projection: the projector
// answers "can a new session start a lock on this seat", and pending
// seats are protected by the lock manager's booking guard instead.
type Availability struct {
	events   EventStore
	seats    SeatStore
	bookings ConfirmedSeatSource
	locks    *lock.Manager
}

// NewAvailability wires the projector's dependencies.
func NewAvailability(events EventStore, seats SeatStore, bookings ConfirmedSeatSource, locks *lock.Manager) *Availability {
	return &Availability{events: events, seats: seats, bookings: bookings, locks: locks}
}

// SeatMap projects every seat of the event's venue to available,
// locked or booked.  A seat is booked when a confirmed booking claims
// it, locked when a live seat lock exists, available otherwise.
// Expired locks are purged before the snapshot is taken, so a stale
// lock is never visible even between reaper ticks.  Rows come back in
// lexical row-label order with seats ascending inside each row.
func (a *Availability) SeatMap(ctx context.Context, eventID uint64) ([]SeatView, []SeatRow, error) {
	event, err := a.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	seats, err := a.seats.ListByVenue(ctx, event.VenueID)
	if err != nil {
		return nil, nil, err
	}
	confirmed, err := a.bookings.ConfirmedSeatIDs(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	locked := a.locks.LockedSeats(eventID)

	views := make([]SeatView, 0, len(seats))
	for _, s := range seats {
		status := SeatAvailable
		if _, ok := confirmed[s.ID]; ok {
			status = SeatBooked
		} else if _, ok := locked[s.ID]; ok {
			status = SeatLocked
		}
		views = append(views, SeatView{
			SeatID:     s.ID,
			RowLabel:   s.RowLabel,
			SeatNumber: s.SeatNumber,
			Tier:       s.Tier,
			Status:     status,
		})
	}
	return views, groupByRow(views), nil
}

// groupByRow buckets seat views into rows, preserving lexical row
// order and seat-number order within each row.
func groupByRow(views []SeatView) []SeatRow {
	byRow := make(map[string][]SeatView)
	for _, v := range views {
		byRow[v.RowLabel] = append(byRow[v.RowLabel], v)
	}
	labels := make([]string, 0, len(byRow))
	for label := range byRow {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	rows := make([]SeatRow, 0, len(labels))
	for _, label := range labels {
		seats := byRow[label]
		sort.Slice(seats, func(i, j int) bool { return seats[i].SeatNumber < seats[j].SeatNumber })
		rows = append(rows, SeatRow{RowLabel: label, Seats: seats})
	}
	return rows
}
