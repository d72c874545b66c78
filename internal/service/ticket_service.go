// Package service holds the ticket issuance logic: the only write path
// for tickets and the single place where the capacity invariant is
// enforced.
package service

import (
	"context"
	"log"
	"math"
	"net/mail"
	"strings"
	"time"

	"github.com/iliyamo/event-ticketing/internal/clock"
	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/queue"
)

// IssuanceStore is the narrow slice of the record store the issuance
// service needs. WithTx runs fn inside one transaction; the other
// methods participate in that transaction when called from within fn.
// EventForUpdate must take an exclusive lock on the event row so that
// concurrent issuance for the same event serializes around the
// committed-count check (the MySQL implementation uses
// SELECT ... FOR UPDATE).
type IssuanceStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	EventForUpdate(ctx context.Context, eventID uint64) (*model.Event, error)
	CommittedQuantity(ctx context.Context, eventID uint64) (uint32, error)
	InsertTicket(ctx context.Context, t *model.Ticket) error
	SetEventStatus(ctx context.Context, eventID uint64, status model.EventStatus) error
}

// Publisher emits a ticket-issued notification after a successful
// commit. Implementations must not be required for correctness: a
// publish failure is logged and swallowed.
type Publisher interface {
	PublishTicketIssued(ctx context.Context, ev queue.TicketIssuedEvent) error
}

// TicketService orchestrates ticket creation. It is stateless; the
// record store is the only shared mutable resource, and no committed
// counts are cached across requests (a cache would reintroduce the
// overselling race).
type TicketService struct {
	store     IssuanceStore
	clock     clock.Clock
	publisher Publisher // optional
}

// NewTicketService constructs a TicketService. The publisher may be nil
// when no broker is configured.
func NewTicketService(store IssuanceStore, clk clock.Clock, publisher Publisher) *TicketService {
	if store == nil || clk == nil {
		panic("nil dependency passed to NewTicketService")
	}
	return &TicketService{store: store, clock: clk, publisher: publisher}
}

// IssueInput carries the client-supplied fields of a purchase request.
type IssueInput struct {
	EventID    uint64
	BuyerName  string
	BuyerEmail string
	Quantity   uint32
}

// validate rejects malformed input before any store access.
func (in *IssueInput) validate() error {
	if in.Quantity < 1 {
		return ErrInvalidQuantity
	}
	in.BuyerName = strings.TrimSpace(in.BuyerName)
	if in.BuyerName == "" {
		return ErrBuyerNameRequired
	}
	in.BuyerEmail = strings.TrimSpace(in.BuyerEmail)
	if in.BuyerEmail == "" {
		return ErrBuyerEmailRequired
	}
	if _, err := mail.ParseAddress(in.BuyerEmail); err != nil {
		return ErrInvalidBuyerEmail
	}
	return nil
}

// Issue creates a ticket against an event's capacity. Inside a single
// transaction it locks the event row, reads the committed quantity
// (sum over non-cancelled tickets), rejects the request when
// committed + requested would exceed the event's maximum capacity,
// inserts the ticket with status RESERVED, a server-assigned purchase
// timestamp and a frozen total price, and flips the event to SOLD_OUT
// when the re-read committed quantity reaches capacity exactly. Any
// error on any path rolls the whole transaction back, so a failed
// issuance leaves no partial ticket and no stale status.
//
// Issue is not idempotent: retrying the same request creates a second
// ticket. Callers needing exactly-once purchase semantics must
// deduplicate upstream.
func (s *TicketService) Issue(ctx context.Context, in IssueInput) (*model.Ticket, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var (
		ticket model.Ticket
		event  *model.Event
	)
	err := s.store.WithTx(ctx, func(txCtx context.Context) error {
		ev, err := s.store.EventForUpdate(txCtx, in.EventID)
		if err != nil {
			return err
		}
		event = ev

		committed, err := s.store.CommittedQuantity(txCtx, in.EventID)
		if err != nil {
			return err
		}
		// Compare in uint64: both operands are client-influenced uint32
		// values, and a wrapped sum would slip past the capacity check.
		if uint64(committed)+uint64(in.Quantity) > uint64(ev.MaxCapacity) {
			return &CapacityExceededError{
				EventID:   ev.ID,
				Requested: in.Quantity,
				Committed: committed,
				Capacity:  ev.MaxCapacity,
			}
		}

		total := uint64(in.Quantity) * uint64(ev.TicketPriceCents)
		if total > math.MaxUint32 {
			return ErrTotalPriceTooLarge
		}

		ticket = model.Ticket{
			EventID:         ev.ID,
			BuyerName:       in.BuyerName,
			BuyerEmail:      in.BuyerEmail,
			Quantity:        in.Quantity,
			TotalPriceCents: uint32(total),
			Status:          model.TicketReserved,
			PurchasedAt:     s.clock.Now(),
		}
		if err := s.store.InsertTicket(txCtx, &ticket); err != nil {
			return err
		}

		// Re-read the committed quantity after the write; the event row
		// lock is still held, so the value cannot move under us.
		after, err := s.store.CommittedQuantity(txCtx, in.EventID)
		if err != nil {
			return err
		}
		if after == ev.MaxCapacity && ev.Status == model.EventScheduled {
			if err := s.store.SetEventStatus(txCtx, ev.ID, model.EventSoldOut); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		msg := queue.TicketIssuedEvent{
			TicketID:        ticket.ID,
			EventID:         event.ID,
			EventName:       event.Name,
			Venue:           event.Venue,
			BuyerName:       ticket.BuyerName,
			BuyerEmail:      ticket.BuyerEmail,
			Quantity:        ticket.Quantity,
			TotalPriceCents: ticket.TotalPriceCents,
			PurchasedAt:     ticket.PurchasedAt.Format(time.RFC3339),
		}
		if err := s.publisher.PublishTicketIssued(ctx, msg); err != nil {
			log.Printf("ticket-service: publish ticket.issued failed: %v", err)
		}
	}
	return &ticket, nil
}
