package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEventStatus(t *testing.T) {
	for _, valid := range []string{"SCHEDULED", "SOLD_OUT", "CANCELLED", "COMPLETED"} {
		s, ok := ParseEventStatus(valid)
		assert.True(t, ok, valid)
		assert.Equal(t, EventStatus(valid), s)
	}
	for _, invalid := range []string{"", "scheduled", "SOLDOUT", "DONE", "Sold_Out"} {
		_, ok := ParseEventStatus(invalid)
		assert.False(t, ok, invalid)
	}
}

func TestEventStatusCanTransitionTo(t *testing.T) {
	cases := []struct {
		from EventStatus
		to   EventStatus
		want bool
	}{
		{EventScheduled, EventCancelled, true},
		{EventScheduled, EventCompleted, true},
		{EventSoldOut, EventCancelled, true},
		{EventSoldOut, EventCompleted, true},

		// SOLD_OUT is only ever set by the issuance path.
		{EventScheduled, EventSoldOut, false},
		{EventSoldOut, EventSoldOut, false},

		// Self transitions are not transitions.
		{EventScheduled, EventScheduled, false},

		// CANCELLED and COMPLETED are terminal.
		{EventCancelled, EventScheduled, false},
		{EventCancelled, EventCompleted, false},
		{EventCompleted, EventScheduled, false},
		{EventCompleted, EventCancelled, false},
		{EventCompleted, EventSoldOut, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.from.CanTransitionTo(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestParseTicketStatus(t *testing.T) {
	for _, valid := range []string{"RESERVED", "CONFIRMED", "CANCELLED"} {
		s, ok := ParseTicketStatus(valid)
		assert.True(t, ok, valid)
		assert.Equal(t, TicketStatus(valid), s)
	}
	for _, invalid := range []string{"", "reserved", "HELD", "REFUNDED"} {
		_, ok := ParseTicketStatus(invalid)
		assert.False(t, ok, invalid)
	}
}

func TestTicketStatusCanTransitionTo(t *testing.T) {
	states := []TicketStatus{TicketReserved, TicketConfirmed, TicketCancelled}
	for _, from := range states {
		for _, to := range states {
			assert.True(t, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
	assert.False(t, TicketReserved.CanTransitionTo(TicketStatus("REFUNDED")))
}
