package model

import "time"

// TicketStatus enumerates the lifecycle states of a ticket.  Like
// EventStatus the set is closed, but the machine itself is deliberately
// permissive: any transition between the three states is allowed by
// direct client command.
type TicketStatus string

const (
	TicketReserved  TicketStatus = "RESERVED"  // the only creation state
	TicketConfirmed TicketStatus = "CONFIRMED" // buyer has confirmed the purchase
	TicketCancelled TicketStatus = "CANCELLED" // no longer counts toward capacity
)

// ParseTicketStatus validates a client-supplied status string.  It returns
// the typed status and true when the value belongs to the closed set.
func ParseTicketStatus(s string) (TicketStatus, bool) {
	switch TicketStatus(s) {
	case TicketReserved, TicketConfirmed, TicketCancelled:
		return TicketStatus(s), true
	}
	return "", false
}

// CanTransitionTo reports whether a ticket may move to the target status.
// All transitions within the closed set are permitted; the method exists
// so a stricter policy has a single place to live.
func (s TicketStatus) CanTransitionTo(target TicketStatus) bool {
	_, ok := ParseTicketStatus(string(target))
	return ok
}

// Ticket is a purchase of one or more units against an event's capacity.
// Tickets are created only through the issuance service, never directly,
// so the capacity check cannot be bypassed on creation.
//
// Fields:
//  ID              – primary key identifier.
//  EventID         – event the ticket belongs to.
//  BuyerName       – name of the buyer.
//  BuyerEmail      – email of the buyer.
//  Quantity        – number of units covered by this record.
//  TotalPriceCents – quantity × event price, frozen at purchase time.
//  Status          – current lifecycle state.
//  PurchasedAt     – server-assigned purchase timestamp, immutable.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Ticket struct {
	ID              uint64       `json:"id"`                // tickets.id
	EventID         uint64       `json:"event_id"`          // tickets.event_id
	BuyerName       string       `json:"buyer_name"`        // tickets.buyer_name
	BuyerEmail      string       `json:"buyer_email"`       // tickets.buyer_email
	Quantity        uint32       `json:"quantity"`          // tickets.quantity
	TotalPriceCents uint32       `json:"total_price_cents"` // tickets.total_price_cents
	Status          TicketStatus `json:"status"`            // tickets.status
	PurchasedAt     time.Time    `json:"purchased_at"`      // tickets.purchased_at
	CreatedAt       time.Time    `json:"created_at"`        // tickets.created_at
	UpdatedAt       time.Time    `json:"updated_at"`        // tickets.updated_at
}
