package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/etorin/event-seat-booking/internal/monitoring"
	"github.com/etorin/event-seat-booking/internal/repository"
	"github.com/etorin/event-seat-booking/internal/service"
)

// PaymentHandler serves payment settlement for pending bookings.
type PaymentHandler struct {
	Settlement *service.Settlement
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(settlement *service.Settlement) *PaymentHandler {
	if settlement == nil {
		panic("nil settlement passed to NewPaymentHandler")
	}
	return &PaymentHandler{Settlement: settlement}
}

// payRequest is the body of POST /v1/bookings/:id/payment.
type payRequest struct {
	Method string               `json:"method"`
	Card   *service.CardDetails `json:"card,omitempty"`
}

// Pay handles POST /v1/bookings/:id/payment.  A declined charge
// returns 402 and leaves the booking pending and retryable; its seats
// stay protected the whole time because the booking's existence, not
// its payment status, is what blocks them.  A booking already
// confirmed returns 400 without touching the gateway.
func (h *PaymentHandler) Pay(c echo.Context) error {
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || bookingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var body payRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Method == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "method is required"})
	}

	result, err := h.Settlement.Settle(c.Request().Context(), bookingID, body.Method, body.Card)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBookingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case errors.Is(err, repository.ErrAlreadyConfirmed):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking already paid"})
		case errors.Is(err, service.ErrBookingExpired):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking has expired"})
		case errors.Is(err, service.ErrPaymentDeclined):
			monitoring.PaymentOutcome("declined")
			return c.JSON(http.StatusPaymentRequired, echo.Map{"error": "payment declined, try again or use another method"})
		}
		monitoring.PaymentOutcome("error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment failed"})
	}
	monitoring.PaymentOutcome("completed")
	return c.JSON(http.StatusOK, echo.Map{
		"success":        true,
		"payment_id":     result.PaymentID,
		"transaction_id": result.TransactionID,
		"voucher":        result.Voucher,
	})
}
