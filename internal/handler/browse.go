// Package handler exposes the HTTP surface of the booking engine.
// This file covers the read-only browse endpoints: venues, seating
// grids and events.  These are simple projections of the inventory
// store; all correctness hazards live in the lock, booking and payment
// handlers.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/etorin/event-seat-booking/internal/model"
	"github.com/etorin/event-seat-booking/internal/repository"
)

// BrowseHandler aggregates the repositories needed for unauthenticated
// browsing.  Responses contain only display-safe fields.
type BrowseHandler struct {
	VenueRepo *repository.VenueRepo
	SeatRepo  *repository.SeatRepo
	EventRepo *repository.EventRepo
}

// NewBrowseHandler constructs a BrowseHandler.  All dependencies must
// be non-nil.
func NewBrowseHandler(venues *repository.VenueRepo, seats *repository.SeatRepo, events *repository.EventRepo) *BrowseHandler {
	if venues == nil || seats == nil || events == nil {
		panic("nil repository passed to NewBrowseHandler")
	}
	return &BrowseHandler{VenueRepo: venues, SeatRepo: seats, EventRepo: events}
}

// venueView is a venue in list responses.
type venueView struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	City        string `json:"city"`
	Rows        uint32 `json:"rows"`
	SeatsPerRow uint32 `json:"seats_per_row"`
}

// eventView is an event in list and detail responses.  Premium and
// vip prices are omitted when the event has no explicit override.
type eventView struct {
	ID           uint64  `json:"id"`
	VenueID      uint64  `json:"venue_id"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	StartsAt     string  `json:"starts_at"`
	BasePrice    string  `json:"base_price"`
	PremiumPrice *string `json:"premium_price,omitempty"`
	VIPPrice     *string `json:"vip_price,omitempty"`
	Status       string  `json:"status"`
}

func toEventView(e *model.Event) eventView {
	v := eventView{
		ID:        e.ID,
		VenueID:   e.VenueID,
		Name:      e.Name,
		Category:  e.Category,
		StartsAt:  e.StartsAt.UTC().Format(time.RFC3339),
		BasePrice: e.BasePrice.StringFixed(2),
		Status:    e.Status,
	}
	if e.PremiumPrice.Valid {
		s := e.PremiumPrice.Decimal.StringFixed(2)
		v.PremiumPrice = &s
	}
	if e.VIPPrice.Valid {
		s := e.VIPPrice.Decimal.StringFixed(2)
		v.VIPPrice = &s
	}
	return v
}

// ListVenues handles GET /v1/venues.
func (h *BrowseHandler) ListVenues(c echo.Context) error {
	venues, err := h.VenueRepo.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]venueView, 0, len(venues))
	for _, v := range venues {
		out = append(out, venueView{ID: v.ID, Name: v.Name, City: v.City, Rows: v.Rows, SeatsPerRow: v.SeatsPerRow})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetVenueSeats handles GET /v1/venues/:id/seats.  It returns the
// venue's immutable seating grid grouped by row so clients can render
// the layout before picking an event.
func (h *BrowseHandler) GetVenueSeats(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	ctx := c.Request().Context()
	if _, err := h.VenueRepo.GetByID(ctx, id); err != nil {
		if err == repository.ErrVenueNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	seats, err := h.SeatRepo.ListByVenue(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	type seatView struct {
		ID         uint64 `json:"id"`
		RowLabel   string `json:"row_label"`
		SeatNumber uint32 `json:"seat_number"`
		Tier       string `json:"tier"`
	}
	byRow := make(map[string][]seatView)
	for _, s := range seats {
		byRow[s.RowLabel] = append(byRow[s.RowLabel], seatView{
			ID: s.ID, RowLabel: s.RowLabel, SeatNumber: s.SeatNumber, Tier: s.Tier,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"seats_by_row": byRow})
}

// ListEvents handles GET /v1/events, returning active events ordered
// by start time.
func (h *BrowseHandler) ListEvents(c echo.Context) error {
	events, err := h.EventRepo.ListActive(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]eventView, 0, len(events))
	for i := range events {
		out = append(out, toEventView(&events[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetEvent handles GET /v1/events/:id.
func (h *BrowseHandler) GetEvent(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	event, err := h.EventRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toEventView(event))
}
