package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/etorin/event-seat-booking/internal/lock"
	"github.com/etorin/event-seat-booking/internal/model"
	"github.com/etorin/event-seat-booking/internal/monitoring"
	"github.com/etorin/event-seat-booking/internal/repository"
	"github.com/etorin/event-seat-booking/internal/service"
)

// bookingReader is the booking access the lookup endpoint needs.
type bookingReader interface {
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	SeatsByBooking(ctx context.Context, bookingID uint64) ([]repository.BookedSeatDetail, error)
}

// paymentReader loads the most recent settlement attempt for a booking.
type paymentReader interface {
	LatestByBooking(ctx context.Context, bookingID uint64) (*model.Payment, error)
}

// BookingHandler serves booking creation and lookup.
type BookingHandler struct {
	Coordinator *service.Coordinator
	Bookings    bookingReader
	Payments    paymentReader
}

// NewBookingHandler constructs a BookingHandler.  All dependencies
// must be non-nil.
func NewBookingHandler(coordinator *service.Coordinator, bookings bookingReader, payments paymentReader) *BookingHandler {
	if coordinator == nil || bookings == nil || payments == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Coordinator: coordinator, Bookings: bookings, Payments: payments}
}

// createBookingRequest is the body of POST /v1/bookings.
type createBookingRequest struct {
	EventID   uint64   `json:"event_id"`
	SeatIDs   []uint64 `json:"seat_ids"`
	SessionID string   `json:"session_id"`
	UserEmail string   `json:"user_email"`
	UserName  string   `json:"user_name"`
	UserPhone string   `json:"user_phone"`
}

// CreateBooking handles POST /v1/bookings.  The session must hold a
// live lock on every requested seat; the lock check and the booking
// insert run in one critical section, so a concurrent acquire, purge
// or competing booking can never slip in between.  On success the
// booking exists in pending status with snapshotted seat prices and
// the session's locks are gone.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var body createBookingRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.EventID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_id is required"})
	}
	if body.SessionID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "session_id is required"})
	}
	body.UserEmail = strings.TrimSpace(body.UserEmail)
	body.UserName = strings.TrimSpace(body.UserName)
	if body.UserEmail == "" || !strings.Contains(body.UserEmail, "@") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "valid user_email is required"})
	}
	if body.UserName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_name is required"})
	}
	seatIDs := dedupeIDs(body.SeatIDs)
	if len(seatIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_ids is required"})
	}

	result, err := h.Coordinator.Create(c.Request().Context(), body.EventID, seatIDs, body.SessionID, service.Buyer{
		Name:  body.UserName,
		Email: body.UserEmail,
		Phone: strings.TrimSpace(body.UserPhone),
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEventNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		case errors.Is(err, lock.ErrLockExpired):
			return c.JSON(http.StatusConflict, echo.Map{"error": "seat locks expired, restart seat selection"})
		case errors.Is(err, service.ErrEventInactive):
			return c.JSON(http.StatusConflict, echo.Map{"error": "event is not active"})
		case errors.Is(err, service.ErrUnknownSeats):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown seats for this event"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
	}
	monitoring.BookingCreated()
	return c.JSON(http.StatusCreated, echo.Map{
		"booking_id":   result.BookingID,
		"total_amount": result.TotalAmount.StringFixed(2),
		"seats":        result.Seats,
	})
}

// GetBooking handles GET /v1/bookings/:id.  It returns the booking
// header, its seats with snapshot prices, and the latest payment
// attempt if any.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx := c.Request().Context()
	booking, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	seats, err := h.Bookings.SeatsByBooking(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	latest, err := h.Payments.LatestByBooking(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	resp := echo.Map{
		"booking_id":   booking.ID,
		"event_id":     booking.EventID,
		"buyer_name":   booking.BuyerName,
		"buyer_email":  booking.BuyerEmail,
		"total_amount": booking.TotalAmount.StringFixed(2),
		"status":       booking.Status,
		"created_at":   booking.CreatedAt.UTC().Format(time.RFC3339),
		"seats":        seats,
	}
	if booking.Voucher != nil {
		resp["voucher"] = *booking.Voucher
	}
	if latest != nil {
		resp["latest_payment"] = echo.Map{
			"payment_id":      latest.ID,
			"amount":          latest.Amount.StringFixed(2),
			"method":          latest.Method,
			"status":          latest.Status,
			"transaction_ref": latest.TransactionRef,
		}
	}
	return c.JSON(http.StatusOK, resp)
}
