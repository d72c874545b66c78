// Package repository contains data access logic for tickets. Ticket rows
// are only ever inserted through the issuance service's transaction;
// everything else here is lookup, status mutation and deletion.
package repository

import (
	"context"      // context for controlling query lifetime
	"database/sql" // sql provides DB abstraction
	"errors"       // errors for sentinel comparisons

	"github.com/iliyamo/event-ticketing/internal/model"
)

const ticketColumns = `id, event_id, buyer_name, buyer_email, quantity, total_price_cents, status, purchased_at, created_at, updated_at`

// TicketRepo manages persistence for tickets.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo constructs a TicketRepo with the given DB handle.
func NewTicketRepo(db *sql.DB) *TicketRepo {
	return &TicketRepo{db: db}
}

func scanTicket(row interface{ Scan(dest ...any) error }, t *model.Ticket) error {
	return row.Scan(
		&t.ID, &t.EventID, &t.BuyerName, &t.BuyerEmail, &t.Quantity,
		&t.TotalPriceCents, &t.Status, &t.PurchasedAt, &t.CreatedAt, &t.UpdatedAt,
	)
}

// CreateTx inserts a new ticket within the scope of an existing
// transaction. It populates the generated ID and DB-default fields on
// the provided record. The caller must commit or roll back the
// transaction; this is how the issuance service keeps the capacity
// check and the insert in one atomic scope.
func (r *TicketRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.Ticket) error {
	const q = `INSERT INTO tickets (event_id, buyer_name, buyer_email, quantity, total_price_cents, status, purchased_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, t.EventID, t.BuyerName, t.BuyerEmail, t.Quantity, t.TotalPriceCents, t.Status, t.PurchasedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return scanTicket(tx.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = ?`, t.ID), t)
}

// CommittedQuantityTx returns the committed count for an event: the sum
// of quantity across all of its non-cancelled tickets. It must run in
// the same transaction that holds the event row lock, otherwise two
// concurrent issuance calls could both read a count below capacity.
func (r *TicketRepo) CommittedQuantityTx(ctx context.Context, tx *sql.Tx, eventID uint64) (uint32, error) {
	const q = `SELECT COALESCE(SUM(quantity), 0) FROM tickets WHERE event_id = ? AND status <> ?`
	var committed uint32
	if err := tx.QueryRowContext(ctx, q, eventID, model.TicketCancelled).Scan(&committed); err != nil {
		return 0, err
	}
	return committed, nil
}

// CommittedQuantity is the read-only variant of CommittedQuantityTx for
// informational endpoints. It gives no serialization guarantee.
func (r *TicketRepo) CommittedQuantity(ctx context.Context, eventID uint64) (uint32, error) {
	const q = `SELECT COALESCE(SUM(quantity), 0) FROM tickets WHERE event_id = ? AND status <> ?`
	var committed uint32
	if err := r.db.QueryRowContext(ctx, q, eventID, model.TicketCancelled).Scan(&committed); err != nil {
		return 0, err
	}
	return committed, nil
}

// GetByID retrieves a ticket by its ID. It returns ErrTicketNotFound if
// there is no matching row.
func (r *TicketRepo) GetByID(ctx context.Context, id uint64) (*model.Ticket, error) {
	var t model.Ticket
	err := scanTicket(r.db.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = ?`, id), &t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ListAll returns every ticket ordered by purchase time descending
// (newest first). When no tickets exist it returns an empty slice.
func (r *TicketRepo) ListAll(ctx context.Context) ([]model.Ticket, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+ticketColumns+` FROM tickets ORDER BY purchased_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Ticket, 0)
	for rows.Next() {
		var t model.Ticket
		if err := scanTicket(rows, &t); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListByEvent returns all tickets referencing the given event, newest
// first. It returns ErrEventNotFound when the event itself is missing.
func (r *TicketRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Ticket, error) {
	var one int
	if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM events WHERE id = ? LIMIT 1`, eventID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE event_id = ? ORDER BY purchased_at DESC, id DESC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Ticket, 0)
	for rows.Next() {
		var t model.Ticket
		if err := scanTicket(rows, &t); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update replaces the mutable fields of a ticket: buyer name, buyer
// email and status. EventID, quantity, total price and purchase time
// are frozen at issuance and deliberately not updatable here — editing
// quantity after the capacity check would let a ticket bypass it.
func (r *TicketRepo) Update(ctx context.Context, t *model.Ticket) error {
	const q = `UPDATE tickets SET buyer_name = ?, buyer_email = ?, status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, t.BuyerName, t.BuyerEmail, t.Status, t.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM tickets WHERE id = ? LIMIT 1`, t.ID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTicketNotFound
			}
			return err
		}
	}
	return scanTicket(r.db.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = ?`, t.ID), t)
}

// UpdateStatus sets only the lifecycle status of a ticket.
func (r *TicketRepo) UpdateStatus(ctx context.Context, id uint64, status model.TicketStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE tickets SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM tickets WHERE id = ? LIMIT 1`, id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTicketNotFound
			}
			return err
		}
	}
	return nil
}

// Delete removes a ticket. It touches nothing but the tickets table:
// performer and event association data are unrelated to ticket rows.
// ErrTicketNotFound is returned when the row does not exist.
func (r *TicketRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tickets WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTicketNotFound
	}
	return nil
}
