package model

import "time"

// EventStatus enumerates the lifecycle states of an event.  The set is
// closed: values arriving from clients must be parsed through
// ParseEventStatus so that unknown strings are rejected at the boundary
// instead of being stored.
type EventStatus string

const (
	EventScheduled EventStatus = "SCHEDULED" // on sale, tickets can be issued
	EventSoldOut   EventStatus = "SOLD_OUT"  // committed quantity reached capacity
	EventCancelled EventStatus = "CANCELLED" // terminal
	EventCompleted EventStatus = "COMPLETED" // terminal
)

// ParseEventStatus validates a client-supplied status string.  It returns
// the typed status and true when the value belongs to the closed set.
func ParseEventStatus(s string) (EventStatus, bool) {
	switch EventStatus(s) {
	case EventScheduled, EventSoldOut, EventCancelled, EventCompleted:
		return EventStatus(s), true
	}
	return "", false
}

// CanTransitionTo reports whether an explicit client command may move an
// event from its current status to the target.  SOLD_OUT is never a valid
// explicit target: only the issuance path sets it, when the committed
// quantity reaches capacity.  CANCELLED and COMPLETED are terminal.
func (s EventStatus) CanTransitionTo(target EventStatus) bool {
	switch s {
	case EventScheduled, EventSoldOut:
		return target == EventCancelled || target == EventCompleted
	}
	return false
}

// Event is a ticketed happening with a fixed capacity.  Capacity counts
// ticket units (quantities), not ticket records.
//
// Fields:
//  ID              – primary key identifier.
//  Name            – event name.
//  Description     – free-form description.
//  StartsAt        – scheduled date and time.
//  Venue           – where the event takes place.
//  MaxCapacity     – maximum number of ticket units that may be sold.
//  TicketPriceCents – price in cents per ticket unit.
//  Status          – current lifecycle state.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Event struct {
	ID               uint64      `json:"id"`                 // events.id
	Name             string      `json:"name"`               // events.name
	Description      string      `json:"description"`        // events.description
	StartsAt         time.Time   `json:"starts_at"`          // events.starts_at
	Venue            string      `json:"venue"`              // events.venue
	MaxCapacity      uint32      `json:"max_capacity"`       // events.max_capacity
	TicketPriceCents uint32      `json:"ticket_price_cents"` // events.ticket_price_cents
	Status           EventStatus `json:"status"`             // events.status
	CreatedAt        time.Time   `json:"created_at"`         // events.created_at
	UpdatedAt        time.Time   `json:"updated_at"`         // events.updated_at
}
