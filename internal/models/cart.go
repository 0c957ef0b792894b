package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Domain errors
var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrInvalidPrice    = errors.New("unit price must not be negative")
	ErrEmptyProduct    = errors.New("product slug and name are required")
	ErrItemIndex       = errors.New("cart item does not exist")
	ErrCartEmpty       = errors.New("cart is empty")
	ErrUnknownProduct  = errors.New("product does not exist")
	ErrUnknownSize     = errors.New("size is not offered for product")
)

// CartItem is one line of a cart
type CartItem struct {
	Slug      string
	Name      string
	UnitPrice int64
	Quantity  int
	Size      string
}

// Total returns the line total in minor units
func (i CartItem) Total() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

// Cart is a fixture shopping cart with its checkout progress
type Cart struct {
	ID        string
	Items     []CartItem
	Checkout  Checkout
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCart creates an empty cart
func NewCart() *Cart {
	now := time.Now()
	return &Cart{
		ID:        uuid.New().String(),
		Checkout:  Checkout{Step: StepCart},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Add puts qty units of a product in the cart, merging with an existing line
// for the same product and size
func (c *Cart) Add(p Product, size string, qty int) error {
	if p.Slug == "" || p.Name == "" {
		return ErrEmptyProduct
	}
	if p.Price < 0 {
		return ErrInvalidPrice
	}
	if qty < 1 {
		return ErrInvalidQuantity
	}
	if len(p.Sizes) > 0 && !contains(p.Sizes, size) {
		return fmt.Errorf("%w: %q", ErrUnknownSize, size)
	}

	for i := range c.Items {
		if c.Items[i].Slug == p.Slug && c.Items[i].Size == size {
			c.Items[i].Quantity += qty
			c.touch()
			return nil
		}
	}
	c.Items = append(c.Items, CartItem{Slug: p.Slug, Name: p.Name, UnitPrice: p.Price, Quantity: qty, Size: size})
	c.touch()
	return nil
}

// SetQuantity changes the quantity of line i
func (c *Cart) SetQuantity(i, qty int) error {
	if i < 0 || i >= len(c.Items) {
		return fmt.Errorf("%w: index %d", ErrItemIndex, i)
	}
	if qty < 1 {
		return ErrInvalidQuantity
	}
	c.Items[i].Quantity = qty
	c.touch()
	return nil
}

// Remove drops line i
func (c *Cart) Remove(i int) error {
	if i < 0 || i >= len(c.Items) {
		return fmt.Errorf("%w: index %d", ErrItemIndex, i)
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	c.touch()
	return nil
}

// Clear empties the cart and restarts checkout
func (c *Cart) Clear() {
	c.Items = nil
	c.Checkout = Checkout{Step: StepCart}
	c.touch()
}

// IsEmpty returns true if the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Units returns the number of units across all lines
func (c *Cart) Units() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// ItemsTotal returns the sum of line totals in minor units
func (c *Cart) ItemsTotal() int64 {
	var total int64
	for _, it := range c.Items {
		total += it.Total()
	}
	return total
}

// ShippingTotal returns the fee of the selected shipping method
func (c *Cart) ShippingTotal() int64 {
	if c.IsEmpty() {
		return 0
	}
	if m, ok := ShippingMethodByCode(c.Checkout.Shipping); ok {
		return m.Fee
	}
	return 0
}

// OrderTotal returns items plus shipping in minor units
func (c *Cart) OrderTotal() int64 {
	return c.ItemsTotal() + c.ShippingTotal()
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now()
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
