// Package queue defines the messages exchanged over the broker and
// the background consumer for confirmed bookings.
package queue

// BookingConfirmedEvent is published when a payment completes and a
// booking flips to confirmed.  It carries enough information for
// downstream consumers to log, notify or feed analytics without
// querying the primary database.
type BookingConfirmedEvent struct {
	BookingID   uint64   `json:"booking_id"`
	EventID     uint64   `json:"event_id"`
	EventName   string   `json:"event_name"`
	BuyerEmail  string   `json:"buyer_email"`
	SeatLabels  []string `json:"seats"`
	TotalAmount string   `json:"total_amount"`
	ConfirmedAt string   `json:"confirmed_at"`
}
