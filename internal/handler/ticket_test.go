package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticketing/internal/clock"
	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/repository"
	"github.com/iliyamo/event-ticketing/internal/service"
)

// stubStore backs the issuance service with a single event and a fixed
// committed count. It performs no locking: these tests exercise the
// HTTP status mapping, not concurrency.
type stubStore struct {
	event     *model.Event
	committed uint32
	inserted  []model.Ticket
}

func (s *stubStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (s *stubStore) EventForUpdate(ctx context.Context, eventID uint64) (*model.Event, error) {
	if s.event == nil || s.event.ID != eventID {
		return nil, repository.ErrEventNotFound
	}
	cp := *s.event
	return &cp, nil
}

func (s *stubStore) CommittedQuantity(ctx context.Context, eventID uint64) (uint32, error) {
	var pending uint32
	for _, t := range s.inserted {
		pending += t.Quantity
	}
	return s.committed + pending, nil
}

func (s *stubStore) InsertTicket(ctx context.Context, t *model.Ticket) error {
	t.ID = uint64(len(s.inserted) + 1)
	s.inserted = append(s.inserted, *t)
	return nil
}

func (s *stubStore) SetEventStatus(ctx context.Context, eventID uint64, status model.EventStatus) error {
	s.event.Status = status
	return nil
}

func newTicketHandler(store *stubStore) *TicketHandler {
	now := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	svc := service.NewTicketService(store, clock.NewFixed(now), nil)
	return NewTicketHandler(repository.NewTicketRepo(nil), svc)
}

func postTickets(t *testing.T, h *TicketHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/tickets", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Create(e.NewContext(req, rec)))
	return rec
}

func TestTicketHandler_Create(t *testing.T) {
	newStore := func() *stubStore {
		return &stubStore{event: &model.Event{
			ID: 7, Name: "Arena Night", Venue: "Main Arena",
			MaxCapacity: 5, TicketPriceCents: 100, Status: model.EventScheduled,
		}}
	}

	t.Run("issues a ticket", func(t *testing.T) {
		store := newStore()
		rec := postTickets(t, newTicketHandler(store), `{"event_id":7,"buyer_name":"Ada","buyer_email":"ada@example.com","quantity":2}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		require.Contains(t, rec.Body.String(), `"total_price_cents":200`)
		require.Contains(t, rec.Body.String(), `"status":"RESERVED"`)
		require.Len(t, store.inserted, 1)
	})

	t.Run("missing event answers 404", func(t *testing.T) {
		rec := postTickets(t, newTicketHandler(&stubStore{}), `{"event_id":7,"buyer_name":"Ada","buyer_email":"ada@example.com","quantity":1}`)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("capacity rejection answers 400 with the numbers", func(t *testing.T) {
		store := newStore()
		store.committed = 4
		rec := postTickets(t, newTicketHandler(store), `{"event_id":7,"buyer_name":"Ada","buyer_email":"ada@example.com","quantity":2}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "4 committed + 2 requested > 5 capacity")
		require.Empty(t, store.inserted)
	})

	t.Run("validation failures answer 400", func(t *testing.T) {
		cases := map[string]string{
			"zero quantity": `{"event_id":7,"buyer_name":"Ada","buyer_email":"ada@example.com","quantity":0}`,
			"blank name":    `{"event_id":7,"buyer_name":"","buyer_email":"ada@example.com","quantity":1}`,
			"bad email":     `{"event_id":7,"buyer_name":"Ada","buyer_email":"nope","quantity":1}`,
			"no event id":   `{"buyer_name":"Ada","buyer_email":"ada@example.com","quantity":1}`,
		}
		for name, body := range cases {
			t.Run(name, func(t *testing.T) {
				rec := postTickets(t, newTicketHandler(newStore()), body)
				require.Equal(t, http.StatusBadRequest, rec.Code)
			})
		}
	})

	t.Run("malformed body answers 400", func(t *testing.T) {
		rec := postTickets(t, newTicketHandler(newStore()), `{"event_id":`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTicketHandler_Update_Validation(t *testing.T) {
	h := newTicketHandler(&stubStore{})

	putTicket := func(t *testing.T, body string) *httptest.ResponseRecorder {
		t.Helper()
		e := echo.New()
		req := httptest.NewRequest(http.MethodPut, "/v1/tickets/5", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/v1/tickets/:id")
		c.SetParamNames("id")
		c.SetParamValues("5")
		require.NoError(t, h.Update(c))
		return rec
	}

	// Buyer fields obey the same rules on update as on issuance: a
	// ticket that was issued with a valid buyer cannot be blanked later.
	cases := map[string]string{
		"blank name":     `{"buyer_name":"  ","buyer_email":"ada@example.com","status":"CONFIRMED"}`,
		"blank email":    `{"buyer_name":"Ada","buyer_email":"","status":"CONFIRMED"}`,
		"bad email":      `{"buyer_name":"Ada","buyer_email":"nope","status":"CONFIRMED"}`,
		"unknown status": `{"buyer_name":"Ada","buyer_email":"ada@example.com","status":"REFUNDED"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := putTicket(t, body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
