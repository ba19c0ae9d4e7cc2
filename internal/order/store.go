package order

import (
	"sync"

	"github.com/casualjim/interactors/fault"
)

// Store keeps orders in memory, it stores copies so callers can't mutate saved orders
type Store struct {
	lock   sync.RWMutex
	orders map[string]*Order
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{orders: make(map[string]*Order)}
}

// Get a copy of a saved order
func (s *Store) Get(number string) (*Order, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	o, ok := s.orders[number]
	if !ok {
		return nil, false
	}
	return o.Clone(), true
}

// Save validates and stores a copy of the order, it returns the previous version when there was one
func (s *Store) Save(o *Order) (*Order, error) {
	if o.Number == "" {
		return nil, fault.New(fault.CodeInvalid, "order number is required")
	}
	if o.Total() < 0 {
		return nil, fault.Newf(fault.CodeInvalid, "order %s has a negative total", o.Number)
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	prev := s.orders[o.Number]
	s.orders[o.Number] = o.Clone()
	return prev, nil
}

// Restore puts a previous version back, a nil version removes the order
func (s *Store) Restore(number string, prev *Order) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if prev == nil {
		delete(s.orders, number)
		return
	}
	s.orders[number] = prev
}

// Len is the number of stored orders
func (s *Store) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.orders)
}
