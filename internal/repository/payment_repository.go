package repository

import (
	"context"
	"database/sql"

	"github.com/etorin/event-seat-booking/internal/model"
)

// PaymentRepo provides data access to the payments table.  Completed
// payments are written atomically with the booking confirmation by
// BookingRepo.Confirm; this repository covers failed attempts and
// reads.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a PaymentRepo bound to the provided database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// Create inserts one payment attempt and fills in its generated id.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO payments (booking_id, amount, method, status, transaction_ref)
		 VALUES (?, ?, ?, ?, ?)`,
		p.BookingID, p.Amount, p.Method, p.Status, p.TransactionRef,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// LatestByBooking returns the most recent payment attempt for a
// booking, or nil when no attempt has been made.
func (r *PaymentRepo) LatestByBooking(ctx context.Context, bookingID uint64) (*model.Payment, error) {
	const q = `SELECT id, booking_id, amount, method, status, transaction_ref, created_at
	           FROM payments WHERE booking_id = ? ORDER BY id DESC LIMIT 1`
	var p model.Payment
	err := r.db.QueryRowContext(ctx, q, bookingID).Scan(&p.ID, &p.BookingID,
		&p.Amount, &p.Method, &p.Status, &p.TransactionRef, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
