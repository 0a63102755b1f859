package repository

import (
	"context"
	"database/sql"

	"github.com/etorin/event-seat-booking/internal/model"
)

// EventRepo encapsulates database operations for events.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns an EventRepo bound to the provided database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const eventColumns = `id, venue_id, name, category, starts_at,
	base_price, premium_price, vip_price, status, created_at, updated_at`

func scanEvent(row interface{ Scan(...interface{}) error }) (*model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.VenueID, &e.Name, &e.Category, &e.StartsAt,
		&e.BasePrice, &e.PremiumPrice, &e.VIPPrice, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetByID returns one event or ErrEventNotFound.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListActive returns all active events ordered by start time.
func (r *EventRepo) ListActive(ctx context.Context) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE status = 'active' ORDER BY starts_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// Create inserts an event and fills in its generated id.  Used by the
// demo seeder; events are otherwise managed outside this service.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO events (venue_id, name, category, starts_at, base_price, premium_price, vip_price, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.VenueID, e.Name, e.Category, e.StartsAt.UTC(), e.BasePrice, e.PremiumPrice, e.VIPPrice, e.Status,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}
