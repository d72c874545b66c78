package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/event-ticketing/internal/clock"
	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

// fakeStore is an in-memory IssuanceStore. WithTx serializes on a mutex
// the way the MySQL implementation serializes on the event row lock,
// and restores a snapshot on error so rollback semantics match.
type fakeStore struct {
	mu      sync.Mutex
	events  map[uint64]*model.Event
	tickets []model.Ticket
	nextID  uint64

	insertErr error // forced failure for rollback tests
}

func newFakeStore(events ...model.Event) *fakeStore {
	s := &fakeStore{events: make(map[uint64]*model.Event), nextID: 1}
	for i := range events {
		ev := events[i]
		s.events[ev.ID] = &ev
	}
	return s
}

func (s *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticketsBefore := make([]model.Ticket, len(s.tickets))
	copy(ticketsBefore, s.tickets)
	eventsBefore := make(map[uint64]*model.Event, len(s.events))
	for id, ev := range s.events {
		cp := *ev
		eventsBefore[id] = &cp
	}

	if err := fn(ctx); err != nil {
		s.tickets = ticketsBefore
		s.events = eventsBefore
		return err
	}
	return nil
}

func (s *fakeStore) EventForUpdate(ctx context.Context, eventID uint64) (*model.Event, error) {
	ev, ok := s.events[eventID]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	cp := *ev
	return &cp, nil
}

func (s *fakeStore) CommittedQuantity(ctx context.Context, eventID uint64) (uint32, error) {
	var sum uint32
	for _, t := range s.tickets {
		if t.EventID == eventID && t.Status != model.TicketCancelled {
			sum += t.Quantity
		}
	}
	return sum, nil
}

func (s *fakeStore) InsertTicket(ctx context.Context, t *model.Ticket) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	t.ID = s.nextID
	s.nextID++
	s.tickets = append(s.tickets, *t)
	return nil
}

func (s *fakeStore) SetEventStatus(ctx context.Context, eventID uint64, status model.EventStatus) error {
	ev, ok := s.events[eventID]
	if !ok {
		return repository.ErrEventNotFound
	}
	ev.Status = status
	return nil
}

// fakePublisher records published messages; failing toggles an error.
type fakePublisher struct {
	mu        sync.Mutex
	published []queue.TicketIssuedEvent
	failing   bool
}

func (p *fakePublisher) PublishTicketIssued(ctx context.Context, ev queue.TicketIssuedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failing {
		return errors.New("broker down")
	}
	p.published = append(p.published, ev)
	return nil
}

func TestTicketService_Issue(t *testing.T) {
	now := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)

	newEvent := func(capacity, priceCents uint32) model.Event {
		return model.Event{
			ID:               1,
			Name:             "Arena Night",
			Venue:            "Main Arena",
			MaxCapacity:      capacity,
			TicketPriceCents: priceCents,
			Status:           model.EventScheduled,
		}
	}

	input := func(qty uint32) IssueInput {
		return IssueInput{EventID: 1, BuyerName: "Ada", BuyerEmail: "ada@example.com", Quantity: qty}
	}

	t.Run("issues ticket with frozen price and server timestamp", func(t *testing.T) {
		store := newFakeStore(newEvent(10, 50))
		svc := NewTicketService(store, clock.NewFixed(now), nil)

		ticket, err := svc.Issue(context.Background(), input(3))
		require.NoError(t, err)
		require.Equal(t, uint64(1), ticket.ID)
		require.Equal(t, model.TicketReserved, ticket.Status)
		require.Equal(t, uint32(150), ticket.TotalPriceCents)
		require.Equal(t, now, ticket.PurchasedAt)
		require.Equal(t, model.EventScheduled, store.events[1].Status)
	})

	t.Run("flips event to sold out exactly at capacity", func(t *testing.T) {
		store := newFakeStore(newEvent(2, 50))
		svc := NewTicketService(store, clock.NewFixed(now), nil)

		_, err := svc.Issue(context.Background(), input(1))
		require.NoError(t, err)
		require.Equal(t, model.EventScheduled, store.events[1].Status, "one unit below capacity must not flip status")

		_, err = svc.Issue(context.Background(), input(1))
		require.NoError(t, err)
		require.Equal(t, model.EventSoldOut, store.events[1].Status)
	})

	t.Run("rejects issuance over capacity without mutation", func(t *testing.T) {
		store := newFakeStore(newEvent(5, 50))
		svc := NewTicketService(store, clock.NewFixed(now), nil)

		_, err := svc.Issue(context.Background(), input(4))
		require.NoError(t, err)

		_, err = svc.Issue(context.Background(), input(2))
		require.ErrorIs(t, err, ErrCapacityExceeded)

		var capErr *CapacityExceededError
		require.ErrorAs(t, err, &capErr)
		require.Equal(t, uint32(4), capErr.Committed)
		require.Equal(t, uint32(2), capErr.Requested)
		require.Equal(t, uint32(5), capErr.Capacity)

		committed, _ := store.CommittedQuantity(context.Background(), 1)
		require.Equal(t, uint32(4), committed, "rejected issuance must not change the committed count")
		require.Equal(t, model.EventScheduled, store.events[1].Status)
	})

	t.Run("huge quantity cannot wrap the capacity check", func(t *testing.T) {
		store := newFakeStore(newEvent(10, 50))
		store.tickets = append(store.tickets, model.Ticket{ID: 98, EventID: 1, Quantity: 5, Status: model.TicketReserved})
		svc := NewTicketService(store, clock.NewFixed(now), nil)

		// committed 5 + (MaxUint32-2) wraps to 2 in uint32, which would
		// sit below capacity 10 if the sum were computed in 32 bits.
		_, err := svc.Issue(context.Background(), input(math.MaxUint32-2))
		require.ErrorIs(t, err, ErrCapacityExceeded)

		committed, _ := store.CommittedQuantity(context.Background(), 1)
		require.Equal(t, uint32(5), committed)
		require.Equal(t, model.EventScheduled, store.events[1].Status)
	})

	t.Run("rejects totals that do not fit the cents field", func(t *testing.T) {
		// 1,000,000 units at 10,000 cents is 10^10 cents, beyond uint32.
		store := newFakeStore(newEvent(1_000_000, 10_000))
		svc := NewTicketService(store, clock.NewFixed(now), nil)

		_, err := svc.Issue(context.Background(), input(1_000_000))
		require.ErrorIs(t, err, ErrTotalPriceTooLarge)
		require.Empty(t, store.tickets)
	})

	t.Run("cancelled tickets do not count toward capacity", func(t *testing.T) {
		store := newFakeStore(newEvent(2, 50))
		store.tickets = append(store.tickets, model.Ticket{ID: 99, EventID: 1, Quantity: 2, Status: model.TicketCancelled})
		svc := NewTicketService(store, clock.NewFixed(now), nil)

		_, err := svc.Issue(context.Background(), input(2))
		require.NoError(t, err)
		require.Equal(t, model.EventSoldOut, store.events[1].Status)
	})

	t.Run("unknown event leaves nothing behind", func(t *testing.T) {
		store := newFakeStore()
		svc := NewTicketService(store, clock.NewFixed(now), nil)

		_, err := svc.Issue(context.Background(), input(1))
		require.ErrorIs(t, err, repository.ErrEventNotFound)
		require.Empty(t, store.tickets)
	})

	t.Run("insert failure rolls the transaction back", func(t *testing.T) {
		store := newFakeStore(newEvent(1, 50))
		store.insertErr = errors.New("connection reset")
		svc := NewTicketService(store, clock.NewFixed(now), nil)

		_, err := svc.Issue(context.Background(), input(1))
		require.Error(t, err)
		require.Empty(t, store.tickets)
		require.Equal(t, model.EventScheduled, store.events[1].Status)
	})

	t.Run("rejects malformed input before any store access", func(t *testing.T) {
		store := newFakeStore(newEvent(10, 50))
		svc := NewTicketService(store, clock.NewFixed(now), nil)

		cases := []struct {
			name string
			in   IssueInput
			want error
		}{
			{"zero quantity", IssueInput{EventID: 1, BuyerName: "Ada", BuyerEmail: "ada@example.com", Quantity: 0}, ErrInvalidQuantity},
			{"blank name", IssueInput{EventID: 1, BuyerName: "   ", BuyerEmail: "ada@example.com", Quantity: 1}, ErrBuyerNameRequired},
			{"blank email", IssueInput{EventID: 1, BuyerName: "Ada", BuyerEmail: "", Quantity: 1}, ErrBuyerEmailRequired},
			{"malformed email", IssueInput{EventID: 1, BuyerName: "Ada", BuyerEmail: "not-an-email", Quantity: 1}, ErrInvalidBuyerEmail},
		}
		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				_, err := svc.Issue(context.Background(), c.in)
				require.ErrorIs(t, err, c.want)
			})
		}
		require.Empty(t, store.tickets)
	})

	t.Run("publishes after commit and survives broker failure", func(t *testing.T) {
		store := newFakeStore(newEvent(10, 25))
		pub := &fakePublisher{}
		svc := NewTicketService(store, clock.NewFixed(now), pub)

		ticket, err := svc.Issue(context.Background(), input(2))
		require.NoError(t, err)
		require.Len(t, pub.published, 1)
		require.Equal(t, ticket.ID, pub.published[0].TicketID)
		require.Equal(t, "Arena Night", pub.published[0].EventName)
		require.Equal(t, uint32(50), pub.published[0].TotalPriceCents)

		pub.failing = true
		_, err = svc.Issue(context.Background(), input(1))
		require.NoError(t, err, "publish failure must not fail the sale")
	})
}

func TestTicketService_Issue_Concurrent(t *testing.T) {
	now := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	store := newFakeStore(model.Event{
		ID:          1,
		Name:        "Final Seat",
		MaxCapacity: 1,
		Status:      model.EventScheduled,
	})
	svc := NewTicketService(store, clock.NewFixed(now), nil)

	var (
		mu   sync.Mutex
		errs []error
	)
	g := new(errgroup.Group)
	for i := 0; i < 2; i++ {
		g.Go(func() error {
			_, err := svc.Issue(context.Background(), IssueInput{
				EventID: 1, BuyerName: "Ada", BuyerEmail: "ada@example.com", Quantity: 1,
			})
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var succeeded, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrCapacityExceeded):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, succeeded, "exactly one buyer gets the last unit")
	require.Equal(t, 1, rejected)

	committed, _ := store.CommittedQuantity(context.Background(), 1)
	require.Equal(t, uint32(1), committed)
	require.Equal(t, model.EventSoldOut, store.events[1].Status)
}
