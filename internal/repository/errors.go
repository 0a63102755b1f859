// Package repository provides raw-SQL data access to the durable
// inventory store: venues, seats, events, bookings, booking seats and
// payments.  Sentinel errors defined here let handlers and services
// distinguish failure scenarios without inspecting driver errors; no
// raw storage error crosses the repository boundary as a typed result.
package repository

import "errors"

// ErrVenueNotFound is returned when a venue id does not exist.
var ErrVenueNotFound = errors.New("venue not found")

// ErrEventNotFound is returned when an event id does not exist.
var ErrEventNotFound = errors.New("event not found")

// ErrBookingNotFound is returned when a booking id does not exist.
var ErrBookingNotFound = errors.New("booking not found")

// ErrAlreadyConfirmed is returned when a confirmation is attempted on
// a booking that is not in pending status.  Handlers translate it into
// a duplicate-payment response.
var ErrAlreadyConfirmed = errors.New("booking already confirmed")
