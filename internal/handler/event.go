package handler // handler defines http handlers

import (
	"net/http" // http defines status codes
	"strings"  // strings helps with trimming whitespace
	"time"     // time parses the event schedule

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/repository"
	"github.com/labstack/echo/v4"
)

// EventHandler exposes CRUD operations for events, the performer
// association endpoints, the event status machine and per-event ticket
// listing. Ticket creation is NOT here: that is the issuance service's
// single entry point (see TicketHandler).
type EventHandler struct {
	EventRepo  *repository.EventRepo
	TicketRepo *repository.TicketRepo
}

// NewEventHandler constructs an EventHandler and panics if any
// dependency is nil.
func NewEventHandler(eventRepo *repository.EventRepo, ticketRepo *repository.TicketRepo) *EventHandler {
	if eventRepo == nil || ticketRepo == nil {
		panic("nil repository passed to NewEventHandler")
	}
	return &EventHandler{EventRepo: eventRepo, TicketRepo: ticketRepo}
}

// eventBody is the client representation of an event's mutable fields.
// Status is deliberately absent: lifecycle changes go through the
// status endpoint so the transition rules cannot be bypassed.
type eventBody struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	StartsAt         string   `json:"starts_at"` // RFC3339
	Venue            string   `json:"venue"`
	MaxCapacity      uint32   `json:"max_capacity"`
	TicketPriceCents *uint32  `json:"ticket_price_cents"`
	PerformerIDs     []uint64 `json:"performer_ids"` // optional, create only
}

func (b *eventBody) validate() (time.Time, string) {
	b.Name = strings.TrimSpace(b.Name)
	if b.Name == "" {
		return time.Time{}, "name is required"
	}
	b.Venue = strings.TrimSpace(b.Venue)
	if b.Venue == "" {
		return time.Time{}, "venue is required"
	}
	if b.MaxCapacity < 1 {
		return time.Time{}, "max_capacity must be at least 1"
	}
	startsAt, err := time.Parse(time.RFC3339, strings.TrimSpace(b.StartsAt))
	if err != nil {
		return time.Time{}, "invalid starts_at format"
	}
	return startsAt.UTC(), ""
}

// eventWithCommitted decorates an event with its committed ticket
// quantity for single-record reads.
type eventWithCommitted struct {
	model.Event
	CommittedQuantity uint32 `json:"committed_quantity"`
}

// Create handles POST /v1/events. Optional performer_ids are associated
// after the insert; IDs that do not exist are skipped, matching the
// idempotent association semantics.
func (h *EventHandler) Create(c echo.Context) error {
	var body eventBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	startsAt, msg := body.validate()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	var price uint32
	if body.TicketPriceCents != nil {
		price = *body.TicketPriceCents
	}
	ev := &model.Event{
		Name:             body.Name,
		Description:      body.Description,
		StartsAt:         startsAt,
		Venue:            body.Venue,
		MaxCapacity:      body.MaxCapacity,
		TicketPriceCents: price,
	}
	ctx := c.Request().Context()
	if err := h.EventRepo.Create(ctx, ev); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create event"})
	}
	if len(body.PerformerIDs) > 0 {
		if err := h.EventRepo.AddPerformers(ctx, ev.ID, body.PerformerIDs); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not associate performers"})
		}
	}
	return c.JSON(http.StatusCreated, ev)
}

// List handles GET /v1/events.
func (h *EventHandler) List(c echo.Context) error {
	events, err := h.EventRepo.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load events"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": events})
}

// Get handles GET /v1/events/:id and includes the committed ticket
// quantity alongside the record. The count is informational; the
// issuance path never relies on it.
func (h *EventHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ctx := c.Request().Context()
	ev, err := h.EventRepo.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	committed, err := h.TicketRepo.CommittedQuantity(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, eventWithCommitted{Event: *ev, CommittedQuantity: committed})
}

// Update handles PUT /v1/events/:id, replacing the mutable fields.
func (h *EventHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var body eventBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	startsAt, msg := body.validate()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	var price uint32
	if body.TicketPriceCents != nil {
		price = *body.TicketPriceCents
	}
	ev := &model.Event{
		ID:               id,
		Name:             body.Name,
		Description:      body.Description,
		StartsAt:         startsAt,
		Venue:            body.Venue,
		MaxCapacity:      body.MaxCapacity,
		TicketPriceCents: price,
	}
	if err := h.EventRepo.Update(c.Request().Context(), ev); err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update event"})
	}
	return c.JSON(http.StatusOK, ev)
}

// Delete handles DELETE /v1/events/:id. Deletion is refused with 409
// while tickets reference the event, so tickets are never orphaned.
func (h *EventHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	if err := h.EventRepo.Delete(c.Request().Context(), id); err != nil {
		switch err {
		case repository.ErrEventNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "event still has tickets"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete event"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListPerformers handles GET /v1/events/:id/performers.
func (h *EventHandler) ListPerformers(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	performers, err := h.EventRepo.ListPerformers(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load performers"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": performers})
}

// AddPerformers handles PUT /v1/events/:id/performers. The operation is
// idempotent: already-associated performers are no-ops, unknown
// performer IDs are skipped. The response is the resulting association
// list.
func (h *EventHandler) AddPerformers(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var body struct {
		PerformerIDs []uint64 `json:"performer_ids"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(body.PerformerIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "performer_ids is required"})
	}
	ctx := c.Request().Context()
	if err := h.EventRepo.AddPerformers(ctx, id, body.PerformerIDs); err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not associate performers"})
	}
	performers, err := h.EventRepo.ListPerformers(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load performers"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": performers})
}

// RemovePerformer handles DELETE /v1/events/:id/performers/:performer_id.
// Both records must exist; removing an association that is not present
// is a no-op, not an error.
func (h *EventHandler) RemovePerformer(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	performerID, ok := parseID(c, "performer_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid performer id"})
	}
	if err := h.EventRepo.RemovePerformer(c.Request().Context(), id, performerID); err != nil {
		switch err {
		case repository.ErrEventNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		case repository.ErrPerformerNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "performer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not remove performer"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListTickets handles GET /v1/events/:id/tickets.
func (h *EventHandler) ListTickets(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	tickets, err := h.TicketRepo.ListByEvent(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load tickets"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": tickets})
}

// UpdateStatus handles PUT /v1/events/:id/status?status=S. Unknown
// values are rejected with 400; transitions the state machine forbids
// (SOLD_OUT as an explicit target, leaving a terminal state) answer 409.
func (h *EventHandler) UpdateStatus(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	target, ok := model.ParseEventStatus(c.QueryParam("status"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unrecognized status value"})
	}
	ctx := c.Request().Context()
	ev, err := h.EventRepo.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !ev.Status.CanTransitionTo(target) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "invalid status transition",
			"from":  ev.Status,
			"to":    target,
		})
	}
	if err := h.EventRepo.UpdateStatus(ctx, id, target); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update status"})
	}
	ev.Status = target
	return c.JSON(http.StatusOK, ev)
}
