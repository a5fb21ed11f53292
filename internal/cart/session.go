package cart

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// EventKind names the mutation that produced an Event.
type EventKind string

const (
	EventAdded   EventKind = "added"
	EventUpdated EventKind = "updated"
	EventRemoved EventKind = "removed"
	EventCleared EventKind = "cleared"
)

// Event is published after every successful cart mutation.
type Event struct {
	Kind      EventKind
	ProductID string
	Count     int
	Subtotal  decimal.Decimal
}

// Session reads and writes one cart through a Store and notifies subscribers
// of every change.
type Session struct {
	mu          sync.Mutex
	store       Store
	logger      zerolog.Logger
	nextID      int
	subscribers map[int]func(Event)
}

// NewSession creates a session over store.
func NewSession(store Store, logger zerolog.Logger) *Session {
	return &Session{
		store:       store,
		logger:      logger.With().Str("component", "cart").Logger(),
		subscribers: make(map[int]func(Event)),
	}
}

// Subscribe registers fn for change events and returns a function that removes it.
func (s *Session) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// load reads the stored cart. Corrupt data is treated as an empty cart.
func (s *Session) load() (*Cart, error) {
	lines, err := s.store.Load()
	if err != nil {
		if errors.Is(err, ErrCorrupt) {
			s.logger.Warn().Err(err).Msg("discarding unreadable cart")
			return New(), nil
		}
		return nil, err
	}
	return New(lines...), nil
}

// Cart returns a snapshot of the stored cart.
func (s *Session) Cart() (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Session) mutate(kind EventKind, productID string, fn func(c *Cart) error) error {
	s.mu.Lock()

	c, err := s.load()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if err := fn(c); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.store.Save(c.Lines()); err != nil {
		s.mu.Unlock()
		return err
	}

	ev := Event{Kind: kind, ProductID: productID, Count: c.Count(), Subtotal: c.Subtotal()}
	subs := make([]func(Event), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	s.logger.Debug().
		Str("event", string(kind)).
		Str("product_id", productID).
		Int("count", ev.Count).
		Msg("cart updated")

	for _, fn := range subs {
		fn(ev)
	}
	return nil
}

// Add puts qty units of item in the cart.
func (s *Session) Add(item Line, qty int) error {
	return s.mutate(EventAdded, item.ProductID, func(c *Cart) error {
		return c.Add(item, qty)
	})
}

// UpdateQuantity sets a line's quantity; zero or less removes the line.
func (s *Session) UpdateQuantity(productID string, qty int) error {
	kind := EventUpdated
	if qty <= 0 {
		kind = EventRemoved
	}
	return s.mutate(kind, productID, func(c *Cart) error {
		return c.UpdateQuantity(productID, qty)
	})
}

// Remove drops a product from the cart.
func (s *Session) Remove(productID string) error {
	return s.mutate(EventRemoved, productID, func(c *Cart) error {
		c.Remove(productID)
		return nil
	})
}

// Clear empties the cart and its stored slot.
func (s *Session) Clear() error {
	s.mu.Lock()
	if err := s.store.Clear(); err != nil {
		s.mu.Unlock()
		return err
	}
	subs := make([]func(Event), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(Event{Kind: EventCleared, Subtotal: decimal.Zero})
	}
	return nil
}
