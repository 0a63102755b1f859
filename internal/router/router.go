// Package router wires HTTP routes to their handlers.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/etorin/event-seat-booking/internal/handler"
)

// RegisterRoutes registers the operational endpoints: the health check
// used by load balancers and the prometheus metrics endpoint.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterBrowse registers the read-only browse endpoints.  cache, if
// non-nil, is the redis response cache middleware applied to these
// routes; the seat availability endpoint stays uncached so clients
// always see live lock state.
func RegisterBrowse(e *echo.Echo, b *handler.BrowseHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1")
	if cache != nil {
		g.Use(cache)
	}
	g.GET("/venues", b.ListVenues)
	g.GET("/venues/:id/seats", b.GetVenueSeats)
	g.GET("/events", b.ListEvents)
	g.GET("/events/:id", b.GetEvent)
}

// RegisterBooking registers the core availability, lock, booking and
// payment endpoints.  limiter, if non-nil, is the rate limiting
// middleware applied to the mutating routes.
func RegisterBooking(e *echo.Echo, s *handler.SeatHandler, b *handler.BookingHandler, p *handler.PaymentHandler, limiter echo.MiddlewareFunc) {
	e.GET("/v1/events/:id/seats", s.GetSeats)

	g := e.Group("/v1")
	if limiter != nil {
		g.Use(limiter)
	}
	g.POST("/events/:id/locks", s.LockSeats)
	g.DELETE("/events/:id/locks", s.ReleaseSeats)
	g.POST("/bookings", b.CreateBooking)
	g.GET("/bookings/:id", b.GetBooking)
	g.POST("/bookings/:id/payment", p.Pay)
}
