package services

import (
	"errors"
	"testing"

	"github.com/adyen/storefront-e2e/internal/models"
	"github.com/adyen/storefront-e2e/internal/repository"
)

// MockCartRepository is a mock implementation of CartRepository for testing
type MockCartRepository struct {
	GetFunc  func(string) (*models.Cart, error)
	SaveFunc func(string, *models.Cart) error
	saved    map[string]*models.Cart
}

func (m *MockCartRepository) Get(sessionID string) (*models.Cart, error) {
	if m.GetFunc != nil {
		return m.GetFunc(sessionID)
	}
	if c, ok := m.saved[sessionID]; ok {
		return c, nil
	}
	return nil, repository.ErrCartNotFound
}

func (m *MockCartRepository) Save(sessionID string, c *models.Cart) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(sessionID, c)
	}
	if m.saved == nil {
		m.saved = map[string]*models.Cart{}
	}
	m.saved[sessionID] = c
	return nil
}

func (m *MockCartRepository) Delete(sessionID string) {
	delete(m.saved, sessionID)
}

func TestCartService_Cart(t *testing.T) {
	tests := []struct {
		name      string
		getErr    error
		saveErr   error
		wantErr   bool
		wantSaves bool
	}{
		{name: "creates missing cart", getErr: repository.ErrCartNotFound, wantSaves: true},
		{name: "save fails", getErr: repository.ErrCartNotFound, saveErr: errors.New("disk full"), wantErr: true},
		{name: "lookup fails", getErr: errors.New("store error"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saves := 0
			mockRepo := &MockCartRepository{
				GetFunc: func(string) (*models.Cart, error) { return nil, tt.getErr },
				SaveFunc: func(string, *models.Cart) error {
					saves++
					return tt.saveErr
				},
			}

			service := NewCartService(mockRepo, models.DefaultCatalog())
			cart, err := service.Cart("s1")

			if (err != nil) != tt.wantErr {
				t.Fatalf("Cart() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && (cart == nil || !cart.IsEmpty()) {
				t.Errorf("expected a new empty cart, got %+v", cart)
			}
			if tt.wantSaves && saves != 1 {
				t.Errorf("Save called %d times, want 1", saves)
			}
		})
	}
}

func TestCartService_AddItem(t *testing.T) {
	tests := []struct {
		name    string
		slug    string
		size    string
		qty     int
		wantErr error
	}{
		{name: "known product", slug: "sport-cap", qty: 1},
		{name: "dress with size", slug: "beige-strappy-summer-dress", size: "M", qty: 2},
		{name: "unknown product", slug: "hat", qty: 1, wantErr: models.ErrUnknownProduct},
		{name: "invalid quantity", slug: "sport-cap", qty: 0, wantErr: models.ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewCartService(&MockCartRepository{}, models.DefaultCatalog())
			cart, err := service.AddItem("s1", tt.slug, tt.size, tt.qty)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("AddItem() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("AddItem() unexpected error = %v", err)
			}
			if cart.Units() != tt.qty {
				t.Errorf("Units() = %d, want %d", cart.Units(), tt.qty)
			}
		})
	}
}

func TestCartService_Checkout(t *testing.T) {
	service := NewCartService(repository.NewCartStore(), models.DefaultCatalog())
	addr := models.Address{
		Email: "anna@example.com", FirstName: "Anna", LastName: "Smith",
		Street: "Baker 1", Country: "PL", City: "Krakow", Postcode: "30-001",
	}

	if _, err := service.AddItem("s1", "sport-cap", "", 1); err != nil {
		t.Fatal(err)
	}
	if _, err := service.SetAddress("s1", addr, nil); err != nil {
		t.Fatalf("SetAddress() error = %v", err)
	}
	if _, err := service.SelectShipping("s1", "fedex"); err != nil {
		t.Fatalf("SelectShipping() error = %v", err)
	}
	if _, err := service.SelectPayment("s1", "bank_transfer"); err != nil {
		t.Fatalf("SelectPayment() error = %v", err)
	}
	first, err := service.PlaceOrder("s1")
	if err != nil {
		t.Fatalf("PlaceOrder() error = %v", err)
	}
	if first.Checkout.OrderNumber != "000000001" {
		t.Errorf("OrderNumber = %q", first.Checkout.OrderNumber)
	}

	// A completed cart starts over on the next add
	cart, err := service.AddItem("s1", "cap-with-logo", "", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Slug != "cap-with-logo" {
		t.Errorf("expected a fresh cart, got %+v", cart.Items)
	}

	// Other sessions are untouched
	other, _ := service.Cart("s2")
	if !other.IsEmpty() {
		t.Error("expected other session's cart to be empty")
	}
}

func TestCartService_QuantityAndClear(t *testing.T) {
	service := NewCartService(repository.NewCartStore(), models.DefaultCatalog())
	if _, err := service.AddItem("s1", "sport-cap", "", 1); err != nil {
		t.Fatal(err)
	}

	cart, err := service.SetQuantity("s1", 0, 4)
	if err != nil {
		t.Fatalf("SetQuantity() error = %v", err)
	}
	if cart.ItemsTotal() != 4*2930 {
		t.Errorf("ItemsTotal() = %d", cart.ItemsTotal())
	}
	if _, err := service.SetQuantity("s1", 3, 1); !errors.Is(err, models.ErrItemIndex) {
		t.Errorf("SetQuantity() error = %v, want %v", err, models.ErrItemIndex)
	}
	if _, err := service.RemoveItem("s1", 0); err != nil {
		t.Fatalf("RemoveItem() error = %v", err)
	}
	if _, err := service.AddItem("s1", "sport-cap", "", 1); err != nil {
		t.Fatal(err)
	}
	if err := service.Clear("s1"); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	cart, _ = service.Cart("s1")
	if !cart.IsEmpty() {
		t.Error("expected empty cart after Clear")
	}
}
