package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/etorin/event-seat-booking/internal/lock"
	"github.com/etorin/event-seat-booking/internal/model"
	"github.com/etorin/event-seat-booking/internal/monitoring"
	"github.com/etorin/event-seat-booking/internal/repository"
	"github.com/etorin/event-seat-booking/internal/service"
)

// SeatHandler serves the availability projection and the seat lock
// endpoints for an event.
type SeatHandler struct {
	Availability *service.Availability
	Locks        *lock.Manager
	Events       service.EventStore
	Seats        service.SeatStore
}

// NewSeatHandler constructs a SeatHandler.  All dependencies must be
// non-nil.
func NewSeatHandler(availability *service.Availability, locks *lock.Manager, events service.EventStore, seats service.SeatStore) *SeatHandler {
	if availability == nil || locks == nil || events == nil || seats == nil {
		panic("nil dependency passed to NewSeatHandler")
	}
	return &SeatHandler{Availability: availability, Locks: locks, Events: events, Seats: seats}
}

// GetSeats handles GET /v1/events/:id/seats.  It returns every seat of
// the event's venue with its three-way state (available, locked or
// booked), both as a flat list and grouped by row for display.
func (h *SeatHandler) GetSeats(c echo.Context) error {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || eventID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	seats, rows, err := h.Availability.SeatMap(c.Request().Context(), eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"seats":        seats,
		"seats_by_row": rows,
	})
}

// lockRequest is the body of POST /v1/events/:id/locks.
type lockRequest struct {
	SeatIDs   []uint64 `json:"seat_ids"`
	SessionID string   `json:"session_id"`
}

// unavailableSeat is one entry of a 409 lock conflict response,
// carrying enough detail for the client to re-render seat selection.
type unavailableSeat struct {
	SeatID     uint64 `json:"seat_id"`
	RowLabel   string `json:"row_label"`
	SeatNumber uint32 `json:"seat_number"`
	Reason     string `json:"reason"`
}

// LockSeats handles POST /v1/events/:id/locks.  It attempts to obtain
// a lock on every requested seat for the caller's session.  The
// operation is all-or-nothing: if any seat is booked or locked by
// another session the call returns 409 listing every unavailable seat
// and no lock is granted.
func (h *SeatHandler) LockSeats(c echo.Context) error {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || eventID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var body lockRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.SessionID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "session_id is required"})
	}
	seatIDs := dedupeIDs(body.SeatIDs)
	if len(seatIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_ids is required"})
	}

	ctx := c.Request().Context()
	event, err := h.Events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	// Reject ids that are not seats of this event's venue before
	// touching the lock table.
	known, err := h.Seats.ListByIDs(ctx, event.VenueID, seatIDs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if len(known) != len(seatIDs) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown seats for this event"})
	}

	expiresAt, err := h.Locks.Acquire(ctx, eventID, seatIDs, body.SessionID)
	if err != nil {
		var conflict *lock.ConflictError
		if errors.As(err, &conflict) {
			monitoring.LockConflict()
			return c.JSON(http.StatusConflict, echo.Map{
				"error":       "some seats are unavailable",
				"unavailable": h.describeConflicts(known, conflict),
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to lock seats"})
	}
	monitoring.LockAcquired()
	return c.JSON(http.StatusOK, echo.Map{
		"expires_at":   expiresAt.Format(time.RFC3339),
		"locked_seats": len(seatIDs),
	})
}

// releaseRequest is the body of DELETE /v1/events/:id/locks.
type releaseRequest struct {
	SessionID string `json:"session_id"`
}

// ReleaseSeats handles DELETE /v1/events/:id/locks.  It drops every
// lock the session holds for the event.  The operation is idempotent
// and always succeeds, even when there is nothing to release.
func (h *SeatHandler) ReleaseSeats(c echo.Context) error {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || eventID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var body releaseRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.SessionID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "session_id is required"})
	}
	released := h.Locks.Release(eventID, body.SessionID)
	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"released": released,
	})
}

// describeConflicts joins conflict reasons with seat display
// coordinates so the client can point at the exact seats.
func (h *SeatHandler) describeConflicts(known []model.Seat, conflict *lock.ConflictError) []unavailableSeat {
	byID := make(map[uint64]model.Seat, len(known))
	for _, s := range known {
		byID[s.ID] = s
	}
	out := make([]unavailableSeat, 0, len(conflict.Seats))
	for _, u := range conflict.Seats {
		entry := unavailableSeat{SeatID: u.SeatID, Reason: u.Reason}
		if s, ok := byID[u.SeatID]; ok {
			entry.RowLabel = s.RowLabel
			entry.SeatNumber = s.SeatNumber
		}
		out = append(out, entry)
	}
	return out
}

// dedupeIDs drops zero and duplicate ids, preserving request order.
func dedupeIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
