package pages

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/adyen/storefront-e2e/internal/locate"
	"github.com/adyen/storefront-e2e/internal/poll"
	"github.com/playwright-community/playwright-go"
)

// Routes relative to the base URL.
const (
	RouteHome          = ""
	RouteCaps          = "taxons/caps"
	RouteCapsSimple    = "taxons/fashion-category/caps/simple"
	RouteCapsSimpleAlt = "taxons/caps/simple"
	RouteDresses       = "taxons/fashion-category/dresses"
	RouteCart          = "cart"
	RouteLogin         = "login"
	RouteRegister      = "register"
)

var (
	cartURL       = regexp.MustCompile(`/cart(/|\?|$)`)
	cartPageURL   = regexp.MustCompile(`/cart(\?|$)`)
	loginURL      = regexp.MustCompile(`(?i)/(?:[a-z]{2}_[A-Z]{2}/)?login\b`)
	capsSimpleURL = regexp.MustCompile(`(?i)/caps/simple\b`)
	dressesURL    = regexp.MustCompile(`/taxons/fashion-category/dresses(/|\?|$)`)
)

// IsCartURL reports whether address is the cart page or one of its sub-routes.
func IsCartURL(address string) bool {
	return cartURL.MatchString(address)
}

// OpenCart opens the cart the way a shopper would: header cart button, then
// "View and edit cart" in the side panel. When that does not land on the
// cart it navigates directly, retrying once on a dropped connection.
func (s *Session) OpenCart(ctx context.Context) error {
	if IsCartURL(s.Page.URL()) {
		return nil
	}

	button := locate.Of(
		s.Page.Locator(`button[aria-label="cart button"]`),
		s.Page.Locator(`[data-bs-toggle="offcanvas"][data-bs-target="#offcanvasCart"]`),
	).Resolve(ctx)
	if button.Matched() {
		if err := button.Locator.First().Click(); err == nil {
			panel := s.Page.Locator("#offcanvasCart, .offcanvas.offcanvas-end").First()
			s.CheckVisible(ctx, "cart panel", panel)

			view := locate.Of(
				panel.GetByRole(*playwright.AriaRoleButton, playwright.LocatorGetByRoleOptions{Name: viewCartName}),
				panel.GetByRole(*playwright.AriaRoleLink, playwright.LocatorGetByRoleOptions{Name: viewCartName}),
			).Resolve(ctx)
			if view.Matched() {
				if err := view.Locator.First().Click(); err == nil && s.CheckURL(ctx, "cart", IsCartURL) {
					return nil
				}
			}
		}
	}

	var err error
	for attempt := 0; attempt < 2; attempt++ {
		if err = s.GotoPath(RouteCart); err == nil {
			s.CheckURL(ctx, "cart", IsCartURL)
			return nil
		}
		if attempt > 0 || !closedConnection(err) {
			break
		}
		s.Logger.Debug("cart navigation dropped, retrying")
		time.Sleep(400 * time.Millisecond)
	}
	return fmt.Errorf("failed to open cart: %w", err)
}

var viewCartName = regexp.MustCompile(`(?i)View and edit cart`)

// DismissWidget closes the demo info box pinned to the bottom of every page.
// It does nothing when the box is absent or already closed.
func (s *Session) DismissWidget(ctx context.Context) {
	toggle := s.Page.Locator("#info-toggle").First()
	box := s.Page.Locator("#info-box").First()
	if !isVisible(box) {
		return
	}

	hidden := func() bool { return !isVisible(box) }
	if count(toggle) > 0 {
		_ = toggle.Click()
		if s.Check(ctx, "info box hidden", poll.Always(hidden)) {
			return
		}
	}
	icon := s.Page.Locator("#info-toggle svg.bi-x-lg").First()
	if isVisible(box) && count(icon) > 0 {
		_ = icon.Click()
		s.Check(ctx, "info box hidden", poll.Always(hidden))
	}
}
