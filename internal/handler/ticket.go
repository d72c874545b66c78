package handler // handler defines http handlers

import (
	"errors"   // errors inspects service sentinels
	"net/http" // http defines status codes
	"net/mail" // mail validates buyer addresses
	"strings"  // strings helps with trimming whitespace

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/repository"
	"github.com/iliyamo/event-ticketing/internal/service"
	"github.com/labstack/echo/v4"
)

// TicketHandler exposes ticket endpoints. Creation goes through the
// issuance service so the capacity invariant holds; reads, buyer edits,
// status changes and deletion talk to the repository directly.
type TicketHandler struct {
	TicketRepo *repository.TicketRepo
	Service    *service.TicketService
}

// NewTicketHandler constructs a TicketHandler and panics if any
// dependency is nil.
func NewTicketHandler(ticketRepo *repository.TicketRepo, svc *service.TicketService) *TicketHandler {
	if ticketRepo == nil || svc == nil {
		panic("nil dependency passed to NewTicketHandler")
	}
	return &TicketHandler{TicketRepo: ticketRepo, Service: svc}
}

// ticketCreateBody is the purchase request payload. Price and purchase
// time are server-assigned and not accepted from the client.
type ticketCreateBody struct {
	EventID    uint64 `json:"event_id"`
	BuyerName  string `json:"buyer_name"`
	BuyerEmail string `json:"buyer_email"`
	Quantity   uint32 `json:"quantity"`
}

// ticketUpdateBody carries the mutable ticket fields.
type ticketUpdateBody struct {
	BuyerName  string `json:"buyer_name"`
	BuyerEmail string `json:"buyer_email"`
	Status     string `json:"status"`
}

// Create handles POST /v1/tickets. Capacity violations answer 400 with
// the quantities involved; a missing event answers 404.
func (h *TicketHandler) Create(c echo.Context) error {
	var body ticketCreateBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.EventID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_id is required"})
	}
	ticket, err := h.Service.Issue(c.Request().Context(), service.IssueInput{
		EventID:    body.EventID,
		BuyerName:  body.BuyerName,
		BuyerEmail: body.BuyerEmail,
		Quantity:   body.Quantity,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEventNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		case errors.Is(err, service.ErrCapacityExceeded):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidQuantity),
			errors.Is(err, service.ErrBuyerNameRequired),
			errors.Is(err, service.ErrBuyerEmailRequired),
			errors.Is(err, service.ErrInvalidBuyerEmail),
			errors.Is(err, service.ErrTotalPriceTooLarge):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not issue ticket"})
	}
	return c.JSON(http.StatusCreated, ticket)
}

// List handles GET /v1/tickets.
func (h *TicketHandler) List(c echo.Context) error {
	tickets, err := h.TicketRepo.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load tickets"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": tickets})
}

// Get handles GET /v1/tickets/:id.
func (h *TicketHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	t, err := h.TicketRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrTicketNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, t)
}

// Update handles PUT /v1/tickets/:id. Only buyer name, buyer email and
// status can change; quantity, event and total price are frozen at
// issuance.
func (h *TicketHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	var body ticketUpdateBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	status, ok := model.ParseTicketStatus(body.Status)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unrecognized status value"})
	}
	body.BuyerName = strings.TrimSpace(body.BuyerName)
	if body.BuyerName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "buyer_name is required"})
	}
	body.BuyerEmail = strings.TrimSpace(body.BuyerEmail)
	if body.BuyerEmail == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "buyer_email is required"})
	}
	if _, err := mail.ParseAddress(body.BuyerEmail); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "buyer_email is not a valid email address"})
	}
	t := &model.Ticket{ID: id, BuyerName: body.BuyerName, BuyerEmail: body.BuyerEmail, Status: status}
	if err := h.TicketRepo.Update(c.Request().Context(), t); err != nil {
		if err == repository.ErrTicketNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update ticket"})
	}
	return c.JSON(http.StatusOK, t)
}

// UpdateStatus handles PUT /v1/tickets/:id/status?status=S. Unknown
// status values answer 400; transitions the state machine forbids
// answer 409.
func (h *TicketHandler) UpdateStatus(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	target, ok := model.ParseTicketStatus(c.QueryParam("status"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unrecognized status value"})
	}
	ctx := c.Request().Context()
	t, err := h.TicketRepo.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrTicketNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !t.Status.CanTransitionTo(target) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "invalid status transition",
			"from":  t.Status,
			"to":    target,
		})
	}
	if err := h.TicketRepo.UpdateStatus(ctx, id, target); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update status"})
	}
	t.Status = target
	return c.JSON(http.StatusOK, t)
}

// Delete handles DELETE /v1/tickets/:id.
func (h *TicketHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	if err := h.TicketRepo.Delete(c.Request().Context(), id); err != nil {
		if err == repository.ErrTicketNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete ticket"})
	}
	return c.NoContent(http.StatusNoContent)
}
