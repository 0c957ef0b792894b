//go:build e2e

package e2e

import (
	"context"
	"regexp"
	"testing"

	"github.com/adyen/storefront-e2e/internal/models"
	"github.com/adyen/storefront-e2e/internal/pages"
	"github.com/playwright-community/playwright-go"
)

var anyCountry = regexp.MustCompile(`(?i)Poland|France|United States`)

func testAddress(city, postcode string) pages.Address {
	return pages.Address{
		Email:     models.UniqueEmail("qa"),
		FirstName: "Anna",
		LastName:  "Smith",
		Street:    "Baker street 1",
		Country:   anyCountry,
		City:      city,
		Postcode:  postcode,
	}
}

// startCheckout fills a cart, opens the address step and submits addr
func startCheckout(t *testing.T, ctx context.Context, s *pages.Session, addr pages.Address) *pages.CheckoutPage {
	t.Helper()
	if err := pages.EnsureCartHasOneItem(ctx, s); err != nil {
		t.Fatal(err)
	}
	chk := pages.NewCheckoutPage(s)
	if err := chk.FromCartClickCheckout(ctx); err != nil {
		t.Fatal(err)
	}
	if err := chk.FillAddress(ctx, addr); err != nil {
		t.Fatal(err)
	}
	if err := chk.Next(ctx); err != nil {
		t.Fatal(err)
	}
	if err := chk.OnShipping(ctx); err != nil {
		t.Fatal(err)
	}
	return chk
}

func visibleText(ctx context.Context, t *testing.T, s *pages.Session, re *regexp.Regexp) {
	t.Helper()
	if err := s.WaitVisible(ctx, re.String(), s.Page.GetByText(re).First()); err != nil {
		t.Error(err)
	}
}

// TestCheckoutAddressToShipping submits a valid address
//
//	Scenario: Address step
//	  Given my cart holds one cap
//	  When I fill a valid address and press Next
//	  Then the shipping step loads with its methods
func TestCheckoutAddressToShipping(t *testing.T) {
	s, ctx := newSession(t)
	chk := startCheckout(t, ctx, s, testAddress("Krakow", "30-001"))

	if err := chk.AssertShippingLoaded(ctx); err != nil {
		t.Fatal(err)
	}
	visibleText(ctx, t, s, regexp.MustCompile(`(?i)Checking out as`))
}

// TestCheckoutDifferentShippingAddress copies billing into shipping
func TestCheckoutDifferentShippingAddress(t *testing.T) {
	s, ctx := newSession(t)
	if err := pages.EnsureCartHasOneItem(ctx, s); err != nil {
		t.Fatal(err)
	}
	chk := pages.NewCheckoutPage(s)
	if err := chk.FromCartClickCheckout(ctx); err != nil {
		t.Fatal(err)
	}

	bill := testAddress("Paris", "75001")
	bill.Street = "Main 10"
	if err := chk.FillAddress(ctx, bill); err != nil {
		t.Fatal(err)
	}
	if err := chk.ToggleDifferentShipping(ctx, true); err != nil {
		t.Fatal(err)
	}
	if err := chk.WaitShippingAddressSection(ctx); err != nil {
		t.Fatal(err)
	}

	for _, f := range []struct{ name, label, want string }{
		{"firstName", "First name", bill.FirstName},
		{"lastName", "Last name", bill.LastName},
		{"city", "City", bill.City},
	} {
		got, err := chk.ShippingValue(ctx, f.name, f.label)
		if err != nil {
			t.Fatalf("Failed to read shipping %s: %v", f.label, err)
		}
		if got != f.want {
			t.Errorf("Expected shipping %s %q, got %q", f.label, f.want, got)
		}
	}
}

// TestCheckoutShippingMethodChangesTotal compares UPS and FedEx
func TestCheckoutShippingMethodChangesTotal(t *testing.T) {
	s, ctx := newSession(t)
	chk := startCheckout(t, ctx, s, testAddress("City", "00-001"))

	if err := chk.SelectShipping(ctx, "UPS"); err != nil {
		t.Fatal(err)
	}
	ups, err := chk.ShippingTotals(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := chk.SelectShipping(ctx, "FedEx"); err != nil {
		t.Fatal(err)
	}
	fedex, err := chk.ShippingTotals(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if ups.Ship == fedex.Ship {
		t.Errorf("Expected different shipping fees, both %v", ups.Ship)
	}
	if ups.Order == fedex.Order {
		t.Errorf("Expected different order totals, both %v", ups.Order)
	}
	if ups.Ship != 8.49 || fedex.Ship != 12.99 {
		t.Errorf("Expected fees 8.49 and 12.99, got %v and %v", ups.Ship, fedex.Ship)
	}
}

// TestCheckoutBankTransfer reaches the complete step paying by bank transfer
func TestCheckoutBankTransfer(t *testing.T) {
	s, ctx := newSession(t)
	chk := startCheckout(t, ctx, s, testAddress("City", "00-001"))

	if err := chk.Next(ctx); err != nil {
		t.Fatal(err)
	}
	if err := chk.OnPayment(ctx); err != nil {
		t.Fatal(err)
	}
	if err := chk.SelectBankTransfer(ctx); err != nil {
		t.Fatal(err)
	}
	if err := chk.Next(ctx); err != nil {
		t.Fatal(err)
	}
	if err := chk.OnComplete(ctx); err != nil {
		t.Fatal(err)
	}
	visibleText(ctx, t, s, regexp.MustCompile(`(?i)Bank transfer`))
}

// TestCheckoutPlaceOrder completes an order
//
//	Scenario: Place order
//	  Given I reached the complete step
//	  When I press Place order
//	  Then I see Thank you! with the order number
//	  And the header cart shows no amount left
func TestCheckoutPlaceOrder(t *testing.T) {
	s, ctx := newSession(t)
	chk := startCheckout(t, ctx, s, testAddress("City", "00-001"))

	for _, step := range []func(context.Context) error{chk.Next, chk.OnPayment, chk.SelectBankTransfer, chk.Next, chk.OnComplete} {
		if err := step(ctx); err != nil {
			t.Fatal(err)
		}
	}
	for _, label := range []string{"Billing address", "Shipping address", "Payments", "Shipments"} {
		visibleText(ctx, t, s, regexp.MustCompile(`(?i)^`+label+`$`))
	}

	number, err := chk.ConfirmOrder(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !regexp.MustCompile(`^\d+$`).MatchString(number) {
		t.Errorf("Expected an order number, got %q", number)
	}
	for _, name := range []string{"Change payment method", "Create an account"} {
		link := s.Page.GetByRole(*playwright.AriaRoleLink, playwright.PageGetByRoleOptions{Name: name}).First()
		if err := s.WaitVisible(ctx, name, link); err != nil {
			t.Error(err)
		}
	}
	if n, ok, err := pages.HeaderCartBadge(ctx, s); err == nil && ok && n != 0 {
		t.Errorf("Expected an empty header cart, got %d", n)
	}
}

// TestCheckoutEmptyAddress submits the address step without input
func TestCheckoutEmptyAddress(t *testing.T) {
	s, ctx := newSession(t)
	if err := pages.EnsureCartHasOneItem(ctx, s); err != nil {
		t.Fatal(err)
	}
	chk := pages.NewCheckoutPage(s)
	if err := chk.FromCartClickCheckout(ctx); err != nil {
		t.Fatal(err)
	}
	if err := chk.SubmitAddressAndWaitValidation(ctx); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		label string
		want  string
	}{
		{"Email", "Please enter your email."},
		{"First name", "Please enter first name."},
		{"Last name", "Please enter last name."},
		{"Street address", "Please enter street."},
		{"Country", "Please select country."},
		{"City", "Please enter city."},
		{"Postcode", "Please enter postcode."},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := chk.FieldError(ctx, tt.label)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

// TestCheckoutShortAddress submits one-character values
func TestCheckoutShortAddress(t *testing.T) {
	s, ctx := newSession(t)
	if err := pages.EnsureCartHasOneItem(ctx, s); err != nil {
		t.Fatal(err)
	}
	chk := pages.NewCheckoutPage(s)
	if err := chk.FromCartClickCheckout(ctx); err != nil {
		t.Fatal(err)
	}
	short := pages.Address{Email: "1", FirstName: "1", LastName: "1", Street: "1", City: "1", Postcode: "1", Country: anyCountry}
	if err := chk.FillAddress(ctx, short); err != nil {
		t.Fatal(err)
	}
	if err := chk.SubmitAddressAndWaitValidation(ctx); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		label string
		want  *regexp.Regexp
	}{
		{"Email", regexp.MustCompile(`(?i)This email is invalid\.|Please enter a valid email`)},
		{"First name", regexp.MustCompile(`(?i)at least 2 characters long\.`)},
		{"Last name", regexp.MustCompile(`(?i)at least 2 characters long\.`)},
		{"Street address", regexp.MustCompile(`(?i)at least 2 characters long\.`)},
		{"City", regexp.MustCompile(`(?i)at least 2 characters long\.`)},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := chk.FieldError(ctx, tt.label)
			if err != nil {
				t.Fatal(err)
			}
			if !tt.want.MatchString(got) {
				t.Errorf("Expected %s, got %q", tt.want, got)
			}
		})
	}
}
