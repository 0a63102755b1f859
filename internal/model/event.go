package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event lifecycle statuses.
const (
	EventActive    = "active"
	EventCancelled = "cancelled"
)

// Event represents a scheduled performance held at a venue.  The event
// references its venue but does not own it; the venue's seat grid is
// shared by every event held there.  Premium and VIP prices are
// optional: when absent, the booking coordinator derives them from the
// base price (premium = base * 1.5, vip = base * 2).
//
// Fields:
//  ID           - primary key identifier.
//  VenueID      - venue where the event takes place.
//  Name         - event name.
//  Category     - free-form category label (concert, theatre, ...).
//  StartsAt     - when the event begins.
//  BasePrice    - price for standard tier seats.
//  PremiumPrice - optional explicit price for premium seats.
//  VIPPrice     - optional explicit price for vip seats.
//  Status       - lifecycle state (active or cancelled).
//  CreatedAt    - creation timestamp.
//  UpdatedAt    - last update timestamp.
type Event struct {
	ID           uint64              // events.id
	VenueID      uint64              // events.venue_id
	Name         string              // events.name
	Category     string              // events.category
	StartsAt     time.Time           // events.starts_at
	BasePrice    decimal.Decimal     // events.base_price
	PremiumPrice decimal.NullDecimal // events.premium_price (nullable)
	VIPPrice     decimal.NullDecimal // events.vip_price (nullable)
	Status       string              // events.status
	CreatedAt    time.Time           // events.created_at
	UpdatedAt    time.Time           // events.updated_at
}
