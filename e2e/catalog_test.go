//go:build e2e

package e2e

import (
	"regexp"
	"testing"

	"github.com/adyen/storefront-e2e/internal/money"
	"github.com/adyen/storefront-e2e/internal/pages"
	"github.com/playwright-community/playwright-go"
)

// TestHomePage checks the shop home renders with its header links
//
//	Scenario: Open the home page
//	  Given the shop is running
//	  When I open the home page
//	  Then the title names the Fashion Plus Web Store
//	  And a Login or Register link is visible
func TestHomePage(t *testing.T) {
	s, _ := newSession(t)

	if err := s.GotoPath(pages.RouteHome); err != nil {
		t.Fatal(err)
	}
	title, err := s.Page.Title()
	if err != nil {
		t.Fatalf("Failed to read title: %v", err)
	}
	if !regexp.MustCompile(`(?i)Fashion Plus Web Store`).MatchString(title) {
		t.Errorf("Expected store title, got %q", title)
	}
	link := s.Page.Locator("a").Filter(playwright.LocatorFilterOptions{
		HasText: regexp.MustCompile(`(?i)Sylius|Login|Register`),
	}).First()
	if ok, _ := link.IsVisible(); !ok {
		t.Error("Expected a Sylius, Login or Register link in the header")
	}
}

// TestCapsSimpleNavigation walks Caps > Simple through the header menu
//
//	Scenario: Navigate to Caps > Simple
//	  Given I am on the home page
//	  When I open Caps and then Simple
//	  Then I see the Simple heading and at least two cards
//	  And the breadcrumbs read Home, Fashion Category, Caps, Simple
func TestCapsSimpleNavigation(t *testing.T) {
	s, ctx := newSession(t)
	cat := pages.NewCategoryPage(s)

	if err := cat.OpenCapsSimple(ctx); err != nil {
		t.Fatal(err)
	}
	if err := cat.AssertSimpleBasics(ctx); err != nil {
		t.Fatal(err)
	}

	crumbs, err := cat.BreadcrumbText(ctx)
	if err != nil {
		t.Fatalf("Failed to read breadcrumbs: %v", err)
	}
	for _, want := range []string{"Home", "Fashion Category", "Caps", "Simple"} {
		if !regexp.MustCompile(`(?i)` + want).MatchString(crumbs) {
			t.Errorf("Expected breadcrumbs %q to contain %q", crumbs, want)
		}
	}
}

// TestSortMostExpensive sorts the Simple caps by descending price
func TestSortMostExpensive(t *testing.T) {
	s, ctx := newSession(t)
	cat := pages.NewCategoryPage(s)

	if err := cat.OpenCapsSimple(ctx); err != nil {
		t.Fatal(err)
	}
	if err := cat.SortByMostExpensive(ctx); err != nil {
		t.Fatal(err)
	}
	if !cat.IsSortedMostExpensive(ctx) {
		t.Error("Expected listing to report most expensive first")
	}

	prices, err := cat.VisiblePrices(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(prices) < 2 {
		t.Fatalf("Expected more than one price, got %v", prices)
	}
	for i := 1; i < len(prices); i++ {
		if prices[i-1] < prices[i] {
			t.Errorf("Prices not descending at %d: %v", i, prices)
		}
	}
	if prices[0] != 1234.56 {
		t.Errorf("Expected Cap with logo first at 1234.56, got %v", prices[0])
	}
}

// TestGoLevelUp returns from Simple to Caps
func TestGoLevelUp(t *testing.T) {
	s, ctx := newSession(t)
	cat := pages.NewCategoryPage(s)

	if err := cat.OpenCapsSimple(ctx); err != nil {
		t.Fatal(err)
	}
	if err := cat.GoLevelUpToCaps(ctx); err != nil {
		t.Fatal(err)
	}
	simple := s.Page.GetByRole(*playwright.AriaRoleLink, playwright.PageGetByRoleOptions{
		Name: regexp.MustCompile(`(?i)^Simple$`),
	}).First()
	if err := s.WaitVisible(ctx, "simple link", simple); err != nil {
		t.Error(err)
	}
}

// TestOpenProductFromList opens a cap from the listing
func TestOpenProductFromList(t *testing.T) {
	s, ctx := newSession(t)

	if err := pages.NewCategoryPage(s).OpenCapsSimple(ctx); err != nil {
		t.Fatal(err)
	}
	if err := pages.NewProductPage(s).OpenFromListByName(ctx, pages.DefaultProduct); err != nil {
		t.Fatal(err)
	}

	res := pages.NewProductPage(s).Price().Resolve(ctx)
	price, err := res.Locator.First().TextContent()
	if err != nil {
		t.Fatalf("Failed to read price: %v", err)
	}
	if got := money.Normalize(price); got != 45.99 {
		t.Errorf("Expected price 45.99, got %v (%q)", got, price)
	}
}

// TestAddToCart adds a cap and lands on the cart. The fixture fails the
// first add of every session, so this also covers the retry.
//
//	Scenario: Add to cart
//	  Given I am on the Beautiful cap for woman page
//	  When I press Add to cart
//	  Then I am on the cart with a success alert
//	  And the header badge shows at least one item
func TestAddToCart(t *testing.T) {
	s, ctx := newSession(t)

	if err := pages.NewCategoryPage(s).OpenCapsSimple(ctx); err != nil {
		t.Fatal(err)
	}
	product := pages.NewProductPage(s)
	if err := product.OpenFromListByName(ctx, pages.DefaultProduct); err != nil {
		t.Fatal(err)
	}
	if err := product.AddItemToCart(ctx); err != nil {
		t.Fatal(err)
	}

	cart := pages.NewCartPage(s)
	if err := cart.AssertOpened(ctx); err != nil {
		t.Fatal(err)
	}
	alert := s.Page.Locator(".alert-success").First()
	if err := s.WaitVisible(ctx, "success alert", alert); err != nil {
		t.Error(err)
	}
	if n, ok, err := pages.HeaderCartBadge(ctx, s); err != nil {
		t.Errorf("Failed to read badge: %v", err)
	} else if ok && n < 1 {
		t.Errorf("Expected badge >= 1, got %d", n)
	}
	if cart.IsEmpty(ctx) {
		t.Error("Expected a non-empty cart")
	}
}

// TestChangeQuantity doubles the quantity and waits for the totals
func TestChangeQuantity(t *testing.T) {
	s, ctx := newSession(t)
	if err := pages.EnsureCartHasOneItem(ctx, s); err != nil {
		t.Fatal(err)
	}
	cart := pages.NewCartPage(s)

	before, err := cart.Totals(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := cart.SetQuantity(ctx, 0, 2); err != nil {
		t.Fatal(err)
	}
	after, err := cart.WaitTotalsAtLeast(ctx, before.Row*2-0.01)
	if err != nil {
		t.Fatal(err)
	}
	if after.Items < before.Items*2-0.01 {
		t.Errorf("Expected items total to double: before %v, after %v", before.Items, after.Items)
	}
	if after.Order <= before.Order {
		t.Errorf("Expected order total to grow: before %v, after %v", before.Order, after.Order)
	}
}

// TestClearCart empties the cart
func TestClearCart(t *testing.T) {
	s, ctx := newSession(t)
	if err := pages.EnsureCartHasOneItem(ctx, s); err != nil {
		t.Fatal(err)
	}
	cart := pages.NewCartPage(s)

	cleared, err := cart.ClearCart(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !cleared {
		t.Skip("Clear cart is not offered by this shop")
	}
	if err := cart.AssertEmpty(ctx); err != nil {
		t.Error(err)
	}
	report := cart.EmptyDetector().Detect(ctx)
	if len(report.Fired()) < 2 {
		t.Errorf("Expected several empty signals, got %s", report)
	}
}

// TestBreadcrumbBackToCategory follows the Simple crumb from a product
func TestBreadcrumbBackToCategory(t *testing.T) {
	s, ctx := newSession(t)
	cat := pages.NewCategoryPage(s)
	if err := cat.OpenCapsSimple(ctx); err != nil {
		t.Fatal(err)
	}
	if err := pages.NewProductPage(s).OpenFromListByName(ctx, pages.DefaultProduct); err != nil {
		t.Fatal(err)
	}

	crumb := s.Page.GetByRole(*playwright.AriaRoleLink, playwright.PageGetByRoleOptions{
		Name: regexp.MustCompile(`(?i)^Simple$`),
	}).First()
	if err := crumb.Click(); err != nil {
		t.Fatalf("Failed to click breadcrumb: %v", err)
	}
	if err := cat.AssertSimpleBasics(ctx); err != nil {
		t.Error(err)
	}
}

// TestBadgeIncrements adds the same product twice
func TestBadgeIncrements(t *testing.T) {
	s, ctx := newSession(t)
	if err := pages.EnsureCartHasOneItem(ctx, s); err != nil {
		t.Fatal(err)
	}
	before, ok, err := pages.HeaderCartBadge(ctx, s)
	if err != nil || !ok {
		t.Fatalf("Expected a readable badge, ok=%t err=%v", ok, err)
	}

	if err := s.GotoPath("products/beautiful-cap-for-woman"); err != nil {
		t.Fatal(err)
	}
	if err := pages.NewProductPage(s).AddItemToCart(ctx); err != nil {
		t.Fatal(err)
	}
	after, _, err := pages.HeaderCartBadge(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if after < before+1 {
		t.Errorf("Expected badge to grow from %d, got %d", before, after)
	}
}
