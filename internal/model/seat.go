package model

import "time"

// Seat tier pricing classes.  The tier is fixed at seat creation and
// drives price resolution at booking time.
const (
	TierStandard = "standard"
	TierPremium  = "premium"
	TierVIP      = "vip"
)

// Seat describes a physical seat in a venue.  Seats are uniquely
// identified by their venue, row label and seat number.  Seat identity
// is stable across every event held at the venue; availability is
// always scoped to an (event, seat) pair, never to the seat alone.
//
// Fields:
//  ID         - primary key identifier.
//  VenueID    - venue to which this seat belongs.
//  RowLabel   - letter or string designating the row.
//  SeatNumber - number of the seat within the row.
//  Tier       - pricing class (standard, premium or vip).
//  CreatedAt  - creation timestamp.
type Seat struct {
	ID         uint64    // seats.id
	VenueID    uint64    // seats.venue_id
	RowLabel   string    // seats.row_label
	SeatNumber uint32    // seats.seat_number
	Tier       string    // seats.tier
	CreatedAt  time.Time // seats.created_at
}
