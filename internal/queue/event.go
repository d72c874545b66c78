// Package queue defines message payloads exchanged over the message
// broker and the background consumer that drains them.
package queue

// TicketIssuedQueue is the durable queue carrying issuance notifications.
const TicketIssuedQueue = "ticket.issued"

// TicketIssuedEvent is published after a ticket issuance commits. It
// contains enough information for downstream consumers to log, notify,
// or trigger analytics without querying the primary database.
type TicketIssuedEvent struct {
	TicketID        uint64 `json:"ticket_id"`
	EventID         uint64 `json:"event_id"`
	EventName       string `json:"event_name"`
	Venue           string `json:"venue"`
	BuyerName       string `json:"buyer_name"`
	BuyerEmail      string `json:"buyer_email"`
	Quantity        uint32 `json:"quantity"`
	TotalPriceCents uint32 `json:"total_price_cents"`
	PurchasedAt     string `json:"purchased_at"`
}
