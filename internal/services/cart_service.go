package services

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/adyen/storefront-e2e/internal/models"
	"github.com/adyen/storefront-e2e/internal/repository"
)

// CartRepository defines the interface for cart persistence
type CartRepository interface {
	Get(sessionID string) (*models.Cart, error)
	Save(sessionID string, c *models.Cart) error
	Delete(sessionID string)
}

// CartService handles fixture cart and checkout business logic
type CartService interface {
	Cart(sessionID string) (*models.Cart, error)
	AddItem(sessionID, slug, size string, qty int) (*models.Cart, error)
	SetQuantity(sessionID string, index, qty int) (*models.Cart, error)
	RemoveItem(sessionID string, index int) (*models.Cart, error)
	Clear(sessionID string) error
	SetAddress(sessionID string, billing models.Address, ship *models.Address) (*models.Cart, error)
	SelectShipping(sessionID, code string) (*models.Cart, error)
	SelectPayment(sessionID, code string) (*models.Cart, error)
	PlaceOrder(sessionID string) (*models.Cart, error)
}

// CartServiceImpl implements CartService
type CartServiceImpl struct {
	carts   CartRepository
	catalog *models.Catalog
	orders  atomic.Int64
}

// NewCartService creates a new cart service
func NewCartService(carts CartRepository, catalog *models.Catalog) CartService {
	return &CartServiceImpl{
		carts:   carts,
		catalog: catalog,
	}
}

// Cart returns the session's cart, creating an empty one on first use
func (s *CartServiceImpl) Cart(sessionID string) (*models.Cart, error) {
	c, err := s.carts.Get(sessionID)
	if errors.Is(err, repository.ErrCartNotFound) {
		c = models.NewCart()
		if err := s.carts.Save(sessionID, c); err != nil {
			return nil, fmt.Errorf("failed to create cart: %w", err)
		}
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return c, nil
}

// AddItem adds qty units of the product with the given slug
func (s *CartServiceImpl) AddItem(sessionID, slug, size string, qty int) (*models.Cart, error) {
	p, ok := s.catalog.Product(slug)
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownProduct, slug)
	}
	return s.update(sessionID, func(c *models.Cart) error {
		if c.IsCompleted() {
			c.Clear()
		}
		return c.Add(p, size, qty)
	})
}

// SetQuantity changes the quantity of line index
func (s *CartServiceImpl) SetQuantity(sessionID string, index, qty int) (*models.Cart, error) {
	return s.update(sessionID, func(c *models.Cart) error {
		return c.SetQuantity(index, qty)
	})
}

// RemoveItem drops line index
func (s *CartServiceImpl) RemoveItem(sessionID string, index int) (*models.Cart, error) {
	return s.update(sessionID, func(c *models.Cart) error {
		return c.Remove(index)
	})
}

// Clear empties the session's cart
func (s *CartServiceImpl) Clear(sessionID string) error {
	_, err := s.update(sessionID, func(c *models.Cart) error {
		c.Clear()
		return nil
	})
	return err
}

// SetAddress records the checkout addresses
func (s *CartServiceImpl) SetAddress(sessionID string, billing models.Address, ship *models.Address) (*models.Cart, error) {
	return s.update(sessionID, func(c *models.Cart) error {
		return c.SetAddress(billing, ship)
	})
}

// SelectShipping records the shipping method
func (s *CartServiceImpl) SelectShipping(sessionID, code string) (*models.Cart, error) {
	return s.update(sessionID, func(c *models.Cart) error {
		return c.SelectShipping(code)
	})
}

// SelectPayment records the payment method
func (s *CartServiceImpl) SelectPayment(sessionID, code string) (*models.Cart, error) {
	return s.update(sessionID, func(c *models.Cart) error {
		return c.SelectPayment(code)
	})
}

// PlaceOrder completes checkout with the next order number
func (s *CartServiceImpl) PlaceOrder(sessionID string) (*models.Cart, error) {
	return s.update(sessionID, func(c *models.Cart) error {
		return c.Complete(fmt.Sprintf("%09d", s.orders.Add(1)))
	})
}

func (s *CartServiceImpl) update(sessionID string, fn func(c *models.Cart) error) (*models.Cart, error) {
	c, err := s.Cart(sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.carts.Save(sessionID, c); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return c, nil
}
