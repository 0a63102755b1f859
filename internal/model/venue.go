package model

import "time"

// Venue is a physical location that hosts events.  A venue owns its
// seats: the seating grid is generated once when the venue is created
// and is immutable afterwards, so every event held at the venue shares
// the same seat set.
//
// Fields:
//  ID        - primary key identifier.
//  Name      - display name of the venue.
//  City      - city where the venue is located.
//  Rows      - number of seat rows generated for this venue.
//  SeatsPerRow - number of seats in each row.
//  CreatedAt - creation timestamp.
type Venue struct {
	ID          uint64    // venues.id
	Name        string    // venues.name
	City        string    // venues.city
	Rows        uint32    // venues.seat_rows
	SeatsPerRow uint32    // venues.seats_per_row
	CreatedAt   time.Time // venues.created_at
}
