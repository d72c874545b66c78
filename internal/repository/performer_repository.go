// Package repository contains data access logic for performers. A
// performer is a plain CRUD entity; the interesting invariants all
// live on the event/ticket side.
package repository

import (
	"context"      // context for controlling query lifetime
	"database/sql" // sql provides DB abstraction
	"errors"       // errors for sentinel comparisons

	"github.com/iliyamo/event-ticketing/internal/model"
)

// PerformerRepo manages persistence for performers.
type PerformerRepo struct {
	db *sql.DB
}

// NewPerformerRepo constructs a PerformerRepo with the given DB handle.
func NewPerformerRepo(db *sql.DB) *PerformerRepo {
	return &PerformerRepo{db: db}
}

// Create inserts a new performer and assigns the generated ID back to the
// struct. Default fields (timestamps) are read back from the inserted row.
func (r *PerformerRepo) Create(ctx context.Context, p *model.Performer) error {
	const q = `INSERT INTO performers (name, genre, biography) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, p.Name, p.Genre, p.Biography)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	// Fetch the freshly inserted row to populate created_at/updated_at.
	const sel = `SELECT id, name, genre, biography, created_at, updated_at FROM performers WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, p.ID).Scan(
		&p.ID, &p.Name, &p.Genre, &p.Biography, &p.CreatedAt, &p.UpdatedAt,
	)
}

// GetByID retrieves a performer by its ID. It returns ErrPerformerNotFound
// if there is no matching row.
func (r *PerformerRepo) GetByID(ctx context.Context, id uint64) (*model.Performer, error) {
	const q = `SELECT id, name, genre, biography, created_at, updated_at FROM performers WHERE id = ?`
	var p model.Performer
	err := r.db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.Name, &p.Genre, &p.Biography, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPerformerNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListAll returns every performer ordered by ID ascending. The order is
// not semantically significant; it only keeps output deterministic.
// When no performers exist it returns an empty slice and nil error.
func (r *PerformerRepo) ListAll(ctx context.Context) ([]model.Performer, error) {
	const q = `SELECT id, name, genre, biography, created_at, updated_at FROM performers ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Performer, 0)
	for rows.Next() {
		var p model.Performer
		if err := rows.Scan(&p.ID, &p.Name, &p.Genre, &p.Biography, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update replaces the mutable fields of a performer (name, genre,
// biography). It returns ErrPerformerNotFound when no row matches the ID.
// Setting identical values is treated as success, so the existence check
// only runs when no rows were affected.
func (r *PerformerRepo) Update(ctx context.Context, p *model.Performer) error {
	const q = `UPDATE performers SET name = ?, genre = ?, biography = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, p.Name, p.Genre, p.Biography, p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Distinguish "missing row" from "values already identical".
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM performers WHERE id = ? LIMIT 1`, p.ID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrPerformerNotFound
			}
			return err
		}
	}
	const sel = `SELECT id, name, genre, biography, created_at, updated_at FROM performers WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, p.ID).Scan(
		&p.ID, &p.Name, &p.Genre, &p.Biography, &p.CreatedAt, &p.UpdatedAt,
	)
}

// Delete removes a performer and its association rows. The deletion runs
// in a transaction so the edge table can never reference a missing
// performer. ErrPerformerNotFound is returned when the row does not exist.
func (r *PerformerRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM event_performers WHERE performer_id = ?`, id); err != nil {
		return err
	}
	var res sql.Result
	res, err = tx.ExecContext(ctx, `DELETE FROM performers WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = ErrPerformerNotFound
		return err
	}
	return nil
}

// ListEvents returns all events the performer is billed on, read through
// the event_performers edge table. It returns ErrPerformerNotFound when
// the performer itself does not exist, so handlers can answer 404 rather
// than an empty list.
func (r *PerformerRepo) ListEvents(ctx context.Context, performerID uint64) ([]model.Event, error) {
	var one int
	if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM performers WHERE id = ? LIMIT 1`, performerID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPerformerNotFound
		}
		return nil, err
	}
	const q = `SELECT e.id, e.name, e.description, e.starts_at, e.venue, e.max_capacity, e.ticket_price_cents, e.status, e.created_at, e.updated_at
               FROM events e
               JOIN event_performers ep ON ep.event_id = e.id
               WHERE ep.performer_id = ?
               ORDER BY e.starts_at ASC`
	rows, err := r.db.QueryContext(ctx, q, performerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Event, 0)
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(
			&e.ID, &e.Name, &e.Description, &e.StartsAt, &e.Venue,
			&e.MaxCapacity, &e.TicketPriceCents, &e.Status, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
