package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// VenueRepo encapsulates database operations for venues and the
// one-time generation of their seating grids.
type VenueRepo struct {
	db *sql.DB
}

// NewVenueRepo returns a VenueRepo bound to the provided database.
func NewVenueRepo(db *sql.DB) *VenueRepo { return &VenueRepo{db: db} }

// VenueRecord mirrors one venues row.
type VenueRecord struct {
	ID          uint64
	Name        string
	City        string
	Rows        uint32
	SeatsPerRow uint32
}

// ListAll returns every venue ordered by name.
func (r *VenueRepo) ListAll(ctx context.Context) ([]VenueRecord, error) {
	const q = `SELECT id, name, city, seat_rows, seats_per_row FROM venues ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []VenueRecord
	for rows.Next() {
		var v VenueRecord
		if err := rows.Scan(&v.ID, &v.Name, &v.City, &v.Rows, &v.SeatsPerRow); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// GetByID returns one venue or ErrVenueNotFound.
func (r *VenueRepo) GetByID(ctx context.Context, id uint64) (*VenueRecord, error) {
	const q = `SELECT id, name, city, seat_rows, seats_per_row FROM venues WHERE id = ?`
	var v VenueRecord
	err := r.db.QueryRowContext(ctx, q, id).Scan(&v.ID, &v.Name, &v.City, &v.Rows, &v.SeatsPerRow)
	if err == sql.ErrNoRows {
		return nil, ErrVenueNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// CreateWithSeats inserts a venue and generates its full seating grid
// in a single transaction.  Rows are labelled A, B, C, ... and seats
// are numbered from 1 within each row.  Tier assignment is positional:
// the front row is vip, the next two rows are premium and the rest are
// standard.  The grid is immutable once generated.
func (r *VenueRepo) CreateWithSeats(ctx context.Context, name, city string, rowCount, seatsPerRow uint32) (uint64, error) {
	if rowCount == 0 || seatsPerRow == 0 {
		return 0, fmt.Errorf("venue %q: rows and seats per row must be positive", name)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO venues (name, city, seat_rows, seats_per_row) VALUES (?, ?, ?, ?)`,
		name, city, rowCount, seatsPerRow,
	)
	if err != nil {
		return 0, err
	}
	venueID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	query := `INSERT INTO seats (venue_id, row_label, seat_number, tier) VALUES `
	args := make([]interface{}, 0, int(rowCount*seatsPerRow)*4)
	first := true
	for row := uint32(0); row < rowCount; row++ {
		label := rowLabel(row)
		tier := tierForRow(row)
		for n := uint32(1); n <= seatsPerRow; n++ {
			if !first {
				query += ","
			}
			first = false
			query += "(?, ?, ?, ?)"
			args = append(args, venueID, label, n, tier)
		}
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return uint64(venueID), nil
}

// rowLabel converts a zero-based row index into a spreadsheet-style
// label: A..Z, then AA, AB, ...
func rowLabel(row uint32) string {
	label := ""
	n := int(row)
	for {
		label = string(rune('A'+n%26)) + label
		n = n/26 - 1
		if n < 0 {
			break
		}
	}
	return label
}

// tierForRow assigns the pricing class for a row: the front row is
// vip, the next two premium, everything behind standard.
func tierForRow(row uint32) string {
	switch {
	case row == 0:
		return "vip"
	case row <= 2:
		return "premium"
	default:
		return "standard"
	}
}
