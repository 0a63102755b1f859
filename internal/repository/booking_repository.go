package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/etorin/event-seat-booking/internal/model"
)

// BookingRepo provides data access to bookings, booking_seats and the
// payment insert that confirms a booking.  Multi-row writes run inside
// a transaction so a failure never leaves a partial booking behind.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the provided database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// Create inserts the booking and one booking_seats row per seat in a
// single transaction, filling in the generated booking id.  The caller
// runs this inside the lock manager's critical section, so from the
// moment the transaction commits the seats are protected by the
// pending booking instead of the lock table.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking, seats []model.BookingSeat) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (event_id, buyer_name, buyer_email, buyer_phone, total_amount, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		b.EventID, b.BuyerName, b.BuyerEmail, b.BuyerPhone, b.TotalAmount, b.Status,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)

	if len(seats) > 0 {
		query := `INSERT INTO booking_seats (booking_id, event_id, seat_id, price) VALUES `
		args := make([]interface{}, 0, len(seats)*4)
		for i, s := range seats {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?, ?)"
			args = append(args, b.ID, s.EventID, s.SeatID, s.Price)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID returns one booking or ErrBookingNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	const q = `SELECT id, event_id, buyer_name, buyer_email, buyer_phone,
	                  total_amount, status, voucher, created_at, updated_at
	           FROM bookings WHERE id = ?`
	var b model.Booking
	err := r.db.QueryRowContext(ctx, q, id).Scan(&b.ID, &b.EventID, &b.BuyerName,
		&b.BuyerEmail, &b.BuyerPhone, &b.TotalAmount, &b.Status, &b.Voucher,
		&b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ClaimedSeatIDs returns the seats attached to any pending or
// confirmed booking for the event.  These seats are never grantable to
// a new lock: a pending booking protects its seats while payment is
// outstanding even though the projection does not show them as booked.
func (r *BookingRepo) ClaimedSeatIDs(ctx context.Context, eventID uint64) (map[uint64]struct{}, error) {
	const q = `SELECT bs.seat_id
	           FROM booking_seats bs
	           JOIN bookings b ON b.id = bs.booking_id
	           WHERE bs.event_id = ? AND b.status IN ('pending', 'confirmed')`
	return r.seatIDSet(ctx, q, eventID)
}

// ConfirmedSeatIDs returns the seats attached to confirmed bookings
// for the event.  Only these appear as booked in the availability
// projection.
func (r *BookingRepo) ConfirmedSeatIDs(ctx context.Context, eventID uint64) (map[uint64]struct{}, error) {
	const q = `SELECT bs.seat_id
	           FROM booking_seats bs
	           JOIN bookings b ON b.id = bs.booking_id
	           WHERE bs.event_id = ? AND b.status = 'confirmed'`
	return r.seatIDSet(ctx, q, eventID)
}

func (r *BookingRepo) seatIDSet(ctx context.Context, query string, eventID uint64) (map[uint64]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uint64]struct{})
	for rows.Next() {
		var sid uint64
		if err := rows.Scan(&sid); err != nil {
			return nil, err
		}
		out[sid] = struct{}{}
	}
	return out, rows.Err()
}

// BookedSeatDetail is one seat of a booking with its snapshot price
// and display coordinates, as returned by the booking detail endpoint.
type BookedSeatDetail struct {
	SeatID     uint64
	RowLabel   string
	SeatNumber uint32
	Tier       string
	Price      string
}

// SeatsByBooking lists a booking's seats with their snapshot prices,
// ordered by row label and seat number.
func (r *BookingRepo) SeatsByBooking(ctx context.Context, bookingID uint64) ([]BookedSeatDetail, error) {
	const q = `SELECT bs.seat_id, s.row_label, s.seat_number, s.tier, bs.price
	           FROM booking_seats bs
	           JOIN seats s ON s.id = bs.seat_id
	           WHERE bs.booking_id = ?
	           ORDER BY s.row_label, s.seat_number`
	rows, err := r.db.QueryContext(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []BookedSeatDetail
	for rows.Next() {
		var d BookedSeatDetail
		if err := rows.Scan(&d.SeatID, &d.RowLabel, &d.SeatNumber, &d.Tier, &d.Price); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Confirm records the completed payment and flips the booking from
// pending to confirmed with its voucher attached, all in one
// transaction.  The status update is guarded on the current status
// being pending; if another settlement won the race the transaction is
// rolled back and ErrAlreadyConfirmed is returned, so no second
// completed payment can ever be recorded.
func (r *BookingRepo) Confirm(ctx context.Context, bookingID uint64, voucher string, p *model.Payment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = 'confirmed', voucher = ? WHERE id = ? AND status = 'pending'`,
		voucher, bookingID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlreadyConfirmed
	}

	ins, err := tx.ExecContext(ctx,
		`INSERT INTO payments (booking_id, amount, method, status, transaction_ref)
		 VALUES (?, ?, ?, 'completed', ?)`,
		bookingID, p.Amount, p.Method, p.TransactionRef,
	)
	if err != nil {
		return err
	}
	pid, err := ins.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(pid)
	p.BookingID = bookingID
	p.Status = model.PaymentCompleted

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ExpireStalePending flips pending bookings created before the cutoff
// to expired, releasing their seats for new locks.  Used by the reaper
// when the stale-pending policy is enabled.
func (r *BookingRepo) ExpireStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = 'expired' WHERE status = 'pending' AND created_at < ?`,
		cutoff.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
