package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/etorin/event-seat-booking/internal/model"
)

// SeatRepo encapsulates read access to the seats table.  Seats are
// written only by VenueRepo.CreateWithSeats; afterwards the grid is
// immutable.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo returns a SeatRepo bound to the provided database.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

// ListByVenue returns every seat of a venue ordered by row label and
// seat number, the display order used by the availability projection.
func (r *SeatRepo) ListByVenue(ctx context.Context, venueID uint64) ([]model.Seat, error) {
	const q = `SELECT id, venue_id, row_label, seat_number, tier, created_at
	           FROM seats WHERE venue_id = ? ORDER BY row_label, seat_number`
	rows, err := r.db.QueryContext(ctx, q, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Seat
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.VenueID, &s.RowLabel, &s.SeatNumber, &s.Tier, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListByIDs returns the seats with the given ids restricted to one
// venue.  Seats from other venues are silently omitted, which lets
// callers detect requests that name seats outside the event's venue by
// comparing lengths.  An empty id list returns an empty slice.
func (r *SeatRepo) ListByIDs(ctx context.Context, venueID uint64, ids []uint64) ([]model.Seat, error) {
	if len(ids) == 0 {
		return []model.Seat{}, nil
	}
	q := `SELECT id, venue_id, row_label, seat_number, tier, created_at
	      FROM seats WHERE venue_id = ? AND id IN (` + placeholders(len(ids)) + `)`
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, venueID)
	for _, id := range ids {
		args = append(args, id)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Seat
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.VenueID, &s.RowLabel, &s.SeatNumber, &s.Tier, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// placeholders builds a "?, ?, ?" fragment with n markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
