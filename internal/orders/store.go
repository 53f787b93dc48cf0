package orders

import (
	"sort"
	"sync"
	"time"

	"github.com/mhenders/ibdash/pkg/logger"
)

// Store is the in-memory order collection backing the dashboard view.
// It holds the working set of pending/in-flight orders and the filled
// collection separately; both are replaced wholesale on a full refresh and
// the working set is mutated in place by poll merges.
type Store struct {
	mu      sync.RWMutex
	working map[int64]*Order
	filled  []Order
	logger  *logger.Logger
}

// NewStore creates an empty store.
func NewStore(log *logger.Logger) *Store {
	return &Store{
		working: make(map[int64]*Order),
		logger:  log,
	}
}

// Load replaces the pending-orders collection wholesale. Used after a full
// fetch; display ordering is computed by Pending, not preserved here.
func (s *Store) Load(list []Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.working = make(map[int64]*Order, len(list))
	for i := range list {
		o := list[i]
		s.working[o.ID] = &o
	}

	s.logger.WithField("count", len(list)).Debug("Loaded order collection")
}

// LoadFilled replaces the filled-orders collection. Input is filtered
// upstream to executed orders; the store re-checks the fill price so an
// "executed" order without one never reaches the aggregates.
func (s *Store) LoadFilled(list []Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	filled := make([]Order, 0, len(list))
	for i := range list {
		if list[i].CountsAsFilled() {
			filled = append(filled, list[i])
		} else {
			s.logger.WithFields(map[string]interface{}{
				"order_id": list[i].ID,
				"status":   list[i].Status,
			}).Warn("Dropping filled order without fill price")
		}
	}
	s.filled = filled

	s.logger.WithField("count", len(filled)).Debug("Loaded filled order collection")
}

// Merge shallow-merges a fragment into the order matching its id. Fields
// absent from the fragment are left untouched. A missing id is a logged
// no-op returning ErrNotFound.
func (s *Store) Merge(id int64, frag Fragment) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.working[id]
	if !ok {
		s.logger.WithField("order_id", id).Warn("Merge target not in store")
		return Order{}, ErrNotFound
	}

	frag.Apply(o)
	o.LastUpdated = time.Now()

	return *o, nil
}

// Find returns a copy of the order with the given id.
func (s *Store) Find(id int64) (Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.working[id]
	if !ok {
		return Order{}, false
	}
	return *o, true
}

// SetQuantity updates the quantity of a pending order in place.
func (s *Store) SetQuantity(id int64, qty int) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.working[id]
	if !ok {
		return Order{}, ErrNotFound
	}

	o.Quantity = qty
	o.LastUpdated = time.Now()
	return *o, nil
}

// HasTransient reports whether any order is waiting on the gateway
// (processing or canceling). The poll scheduler runs iff this is true.
func (s *Store) HasTransient() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.working {
		if o.Status.IsTransient() {
			return true
		}
	}
	return false
}

// Pending returns a snapshot of the working set in display order:
// newest-first by creation timestamp, undated orders last.
func (s *Store) Pending() []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Order, 0, len(s.working))
	for _, o := range s.working {
		list = append(list, *o)
	}

	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Before(list[j].CreatedAt) &&
			!list[j].CreatedAt.Before(list[i].CreatedAt) {
			// Equal timestamps: stable display order by id
			return list[i].ID > list[j].ID
		}
		return list[j].CreatedAt.Before(list[i].CreatedAt)
	})

	return list
}

// Filled returns a snapshot of the filled collection.
func (s *Store) Filled() []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Order, len(s.filled))
	copy(list, s.filled)
	return list
}

// Len returns the number of orders in the working set.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.working)
}
