package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/event-ticketing/internal/model"
)

type txKey struct{}

func txFromContext(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}

// IssuanceStore adapts the event and ticket repositories to the narrow
// transactional interface the ticket service consumes. The transaction
// travels in the context so the service never touches *sql.Tx directly;
// methods called outside WithTx fail loudly rather than silently running
// without the event row lock.
type IssuanceStore struct {
	db      *sql.DB
	events  *EventRepo
	tickets *TicketRepo
}

// NewIssuanceStore constructs an IssuanceStore over the shared DB handle.
func NewIssuanceStore(db *sql.DB, events *EventRepo, tickets *TicketRepo) *IssuanceStore {
	if db == nil || events == nil || tickets == nil {
		panic("nil dependency passed to NewIssuanceStore")
	}
	return &IssuanceStore{db: db, events: events, tickets: tickets}
}

// errNoTx signals a store method invoked outside a WithTx scope.
var errNoTx = errors.New("issuance store method called outside WithTx")

// WithTx opens a transaction, runs fn with the transaction carried in
// the context, and commits when fn returns nil. Every other exit path,
// error return or panic, rolls the transaction back, so a failed
// issuance leaves no partial ticket, no stale event status and no open
// transaction holding the event row lock. Nested calls reuse the
// caller's transaction.
func (s *IssuanceStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// EventForUpdate loads the event with an exclusive row lock
// (SELECT ... FOR UPDATE), serializing concurrent issuance per event.
func (s *IssuanceStore) EventForUpdate(ctx context.Context, eventID uint64) (*model.Event, error) {
	tx := txFromContext(ctx)
	if tx == nil {
		return nil, errNoTx
	}
	return s.events.GetByIDForUpdateTx(ctx, tx, eventID)
}

// CommittedQuantity sums quantity across the event's non-cancelled
// tickets inside the current transaction.
func (s *IssuanceStore) CommittedQuantity(ctx context.Context, eventID uint64) (uint32, error) {
	tx := txFromContext(ctx)
	if tx == nil {
		return 0, errNoTx
	}
	return s.tickets.CommittedQuantityTx(ctx, tx, eventID)
}

// InsertTicket persists the ticket inside the current transaction and
// populates its generated ID and timestamps.
func (s *IssuanceStore) InsertTicket(ctx context.Context, t *model.Ticket) error {
	tx := txFromContext(ctx)
	if tx == nil {
		return errNoTx
	}
	return s.tickets.CreateTx(ctx, tx, t)
}

// SetEventStatus updates the event status inside the current transaction.
func (s *IssuanceStore) SetEventStatus(ctx context.Context, eventID uint64, status model.EventStatus) error {
	tx := txFromContext(ctx)
	if tx == nil {
		return errNoTx
	}
	return s.events.UpdateStatusTx(ctx, tx, eventID, status)
}
