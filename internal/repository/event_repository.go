// Package repository contains data access logic for events and the
// performer↔event association. The association is a single edge table
// (event_performers) owned by this repository: both "sides" of the
// relationship are views over it, so a one-sided update cannot happen.
package repository

import (
	"context"      // context for controlling query lifetime
	"database/sql" // sql provides DB abstraction
	"errors"       // errors for sentinel comparisons
	"strings"      // strings builds IN (...) placeholders

	"github.com/iliyamo/event-ticketing/internal/model"
)

const eventColumns = `id, name, description, starts_at, venue, max_capacity, ticket_price_cents, status, created_at, updated_at`

// EventRepo manages persistence for events and their performer edges.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo constructs an EventRepo with the given DB handle.
func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{db: db}
}

func scanEvent(row interface{ Scan(dest ...any) error }, e *model.Event) error {
	return row.Scan(
		&e.ID, &e.Name, &e.Description, &e.StartsAt, &e.Venue,
		&e.MaxCapacity, &e.TicketPriceCents, &e.Status, &e.CreatedAt, &e.UpdatedAt,
	)
}

// Create inserts a new event and assigns the generated ID back to the
// struct. Status is implicitly SCHEDULED by the DB default; timestamps
// are read back from the inserted row.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	const q = `INSERT INTO events (name, description, starts_at, venue, max_capacity, ticket_price_cents) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, e.Name, e.Description, e.StartsAt, e.Venue, e.MaxCapacity, e.TicketPriceCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return scanEvent(r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, e.ID), e)
}

// GetByID retrieves an event by its ID. It returns ErrEventNotFound if
// there is no matching row.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	var e model.Event
	err := scanEvent(r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id), &e)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &e, nil
}

// GetByIDForUpdateTx loads an event inside the caller's transaction and
// takes an exclusive row lock (SELECT ... FOR UPDATE). Concurrent ticket
// issuance for the same event serializes on this lock, which is what
// keeps the committed-count check race free. Issuance for different
// events does not contend.
func (r *EventRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Event, error) {
	var e model.Event
	err := scanEvent(tx.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ? FOR UPDATE`, id), &e)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &e, nil
}

// ListAll returns every event ordered by start time ascending. When no
// events exist it returns an empty slice and nil error.
func (r *EventRepo) ListAll(ctx context.Context) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+eventColumns+` FROM events ORDER BY starts_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Event, 0)
	for rows.Next() {
		var e model.Event
		if err := scanEvent(rows, &e); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update replaces the mutable fields of an event (name, description,
// starts_at, venue, max_capacity, ticket_price_cents). Status is not
// touched here; lifecycle changes go through UpdateStatus so the
// transition rules cannot be bypassed by a full-record PUT.
func (r *EventRepo) Update(ctx context.Context, e *model.Event) error {
	const q = `UPDATE events SET name = ?, description = ?, starts_at = ?, venue = ?, max_capacity = ?, ticket_price_cents = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, e.Name, e.Description, e.StartsAt, e.Venue, e.MaxCapacity, e.TicketPriceCents, e.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM events WHERE id = ? LIMIT 1`, e.ID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrEventNotFound
			}
			return err
		}
	}
	return scanEvent(r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, e.ID), e)
}

// UpdateStatus sets the event status outside any caller transaction.
// The transition rules are enforced by the handler/service layer via
// model.EventStatus.CanTransitionTo before calling this.
func (r *EventRepo) UpdateStatus(ctx context.Context, id uint64, status model.EventStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE events SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM events WHERE id = ? LIMIT 1`, id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrEventNotFound
			}
			return err
		}
	}
	return nil
}

// UpdateStatusTx is like UpdateStatus but participates in the caller's
// transaction. The issuance service uses it to flip an event to SOLD_OUT
// in the same atomic scope as the ticket insert.
func (r *EventRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.EventStatus) error {
	_, err := tx.ExecContext(ctx, `UPDATE events SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, status, id)
	return err
}

// Delete removes an event together with its performer edges. The deletion
// runs in a transaction and is refused with ErrConflict when any tickets
// still reference the event, so ticket records are never orphaned
// silently. ErrEventNotFound is returned when the row does not exist.
func (r *EventRepo) Delete(ctx context.Context, id uint64) error {
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
	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM events WHERE id = ? LIMIT 1`, id).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrEventNotFound
		}
		return err
	}
	// Refuse to delete while tickets (any status) reference the event.
	var ticketCount int
	if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets WHERE event_id = ?`, id).Scan(&ticketCount); err != nil {
		return err
	}
	if ticketCount > 0 {
		err = ErrConflict
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM event_performers WHERE event_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id); err != nil {
		return err
	}
	return nil
}

// ListPerformers returns all performers billed on the event. It returns
// ErrEventNotFound when the event itself does not exist.
func (r *EventRepo) ListPerformers(ctx context.Context, eventID uint64) ([]model.Performer, error) {
	var one int
	if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM events WHERE id = ? LIMIT 1`, eventID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	const q = `SELECT p.id, p.name, p.genre, p.biography, p.created_at, p.updated_at
               FROM performers p
               JOIN event_performers ep ON ep.performer_id = p.id
               WHERE ep.event_id = ?
               ORDER BY p.name ASC`
	rows, err := r.db.QueryContext(ctx, q, eventID)
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

// AddPerformers associates the given performers with an event. Performer
// IDs that do not exist are skipped; IDs that are already associated are
// no-ops (INSERT IGNORE on the composite primary key), which makes the
// operation idempotent. The whole batch is applied in one transaction.
func (r *EventRepo) AddPerformers(ctx context.Context, eventID uint64, performerIDs []uint64) error {
	if len(performerIDs) == 0 {
		return nil
	}
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
	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM events WHERE id = ? LIMIT 1`, eventID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrEventNotFound
		}
		return err
	}
	// Keep only performer IDs that actually exist.
	placeholders := make([]string, 0, len(performerIDs))
	args := make([]interface{}, 0, len(performerIDs))
	for _, pid := range performerIDs {
		placeholders = append(placeholders, "?")
		args = append(args, pid)
	}
	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM performers WHERE id IN (`+strings.Join(placeholders, ",")+`)`, args...)
	if err != nil {
		return err
	}
	existing := make([]uint64, 0, len(performerIDs))
	for rows.Next() {
		var pid uint64
		if err = rows.Scan(&pid); err != nil {
			rows.Close()
			return err
		}
		existing = append(existing, pid)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return err
	}
	if len(existing) == 0 {
		return nil
	}
	insert := `INSERT IGNORE INTO event_performers (event_id, performer_id) VALUES `
	insArgs := make([]interface{}, 0, len(existing)*2)
	for i, pid := range existing {
		if i > 0 {
			insert += ","
		}
		insert += "(?, ?)"
		insArgs = append(insArgs, eventID, pid)
	}
	_, err = tx.ExecContext(ctx, insert, insArgs...)
	return err
}

// RemovePerformer removes the association between an event and a
// performer. Both records must exist (404 semantics otherwise), but
// removing an association that is not present is a no-op, not an error.
func (r *EventRepo) RemovePerformer(ctx context.Context, eventID, performerID uint64) error {
	var one int
	if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM events WHERE id = ? LIMIT 1`, eventID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEventNotFound
		}
		return err
	}
	if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM performers WHERE id = ? LIMIT 1`, performerID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPerformerNotFound
		}
		return err
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM event_performers WHERE event_id = ? AND performer_id = ?`, eventID, performerID)
	return err
}
