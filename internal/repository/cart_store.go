package repository

import (
	"errors"
	"sync"

	"github.com/adyen/storefront-e2e/internal/models"
)

// ErrCartNotFound is returned for unknown session IDs
var ErrCartNotFound = errors.New("cart not found")

// CartStore keeps fixture carts in memory, keyed by session ID
type CartStore struct {
	mu    sync.Mutex
	carts map[string]*models.Cart
}

// NewCartStore creates an empty store
func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[string]*models.Cart)}
}

// Get returns a copy of the session's cart
func (s *CartStore) Get(sessionID string) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[sessionID]
	if !ok {
		return nil, ErrCartNotFound
	}
	return clone(c), nil
}

// Save replaces the session's cart with a copy of c
func (s *CartStore) Save(sessionID string, c *models.Cart) error {
	if sessionID == "" {
		return errors.New("session ID is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts[sessionID] = clone(c)
	return nil
}

// Delete forgets the session's cart
func (s *CartStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
}

// Len returns the number of stored carts
func (s *CartStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts)
}

func clone(c *models.Cart) *models.Cart {
	cp := *c
	cp.Items = append([]models.CartItem(nil), c.Items...)
	if c.Checkout.ShippingAddress != nil {
		addr := *c.Checkout.ShippingAddress
		cp.Checkout.ShippingAddress = &addr
	}
	return &cp
}
