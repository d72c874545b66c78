package handler // handler defines http handlers

import (
	"net/http" // http defines status codes
	"strconv"  // strconv converts path params to integers
	"strings"  // strings helps with trimming whitespace

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/repository"
	"github.com/labstack/echo/v4"
)

// PerformerHandler exposes CRUD operations for performers plus the
// listing of events a performer is billed on. Performers carry no
// derived invariants, so every method is a thin mapping onto the
// repository with referential-integrity checks only.
type PerformerHandler struct {
	PerformerRepo *repository.PerformerRepo
}

// NewPerformerHandler constructs a PerformerHandler and panics if the
// repository is nil.
func NewPerformerHandler(performerRepo *repository.PerformerRepo) *PerformerHandler {
	if performerRepo == nil {
		panic("nil repository passed to NewPerformerHandler")
	}
	return &PerformerHandler{PerformerRepo: performerRepo}
}

// parseID extracts a positive uint64 path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// performerBody is the client representation of a performer's mutable fields.
type performerBody struct {
	Name      string `json:"name"`
	Genre     string `json:"genre"`
	Biography string `json:"biography"`
}

// Create handles POST /v1/performers.
func (h *PerformerHandler) Create(c echo.Context) error {
	var body performerBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	p := &model.Performer{Name: body.Name, Genre: strings.TrimSpace(body.Genre), Biography: body.Biography}
	if err := h.PerformerRepo.Create(c.Request().Context(), p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create performer"})
	}
	return c.JSON(http.StatusCreated, p)
}

// List handles GET /v1/performers.
func (h *PerformerHandler) List(c echo.Context) error {
	performers, err := h.PerformerRepo.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load performers"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": performers})
}

// Get handles GET /v1/performers/:id.
func (h *PerformerHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid performer id"})
	}
	p, err := h.PerformerRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrPerformerNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "performer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, p)
}

// Update handles PUT /v1/performers/:id. It replaces the mutable fields
// (name, genre, biography) as a whole.
func (h *PerformerHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid performer id"})
	}
	var body performerBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	p := &model.Performer{ID: id, Name: body.Name, Genre: strings.TrimSpace(body.Genre), Biography: body.Biography}
	if err := h.PerformerRepo.Update(c.Request().Context(), p); err != nil {
		if err == repository.ErrPerformerNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "performer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update performer"})
	}
	return c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /v1/performers/:id. Association rows are removed
// with the performer in the same transaction.
func (h *PerformerHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid performer id"})
	}
	if err := h.PerformerRepo.Delete(c.Request().Context(), id); err != nil {
		if err == repository.ErrPerformerNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "performer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete performer"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListEvents handles GET /v1/performers/:id/events and returns the
// events the performer is associated with.
func (h *PerformerHandler) ListEvents(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid performer id"})
	}
	events, err := h.PerformerRepo.ListEvents(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrPerformerNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "performer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load events"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": events})
}
