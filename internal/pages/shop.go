package pages

import (
	"context"
	"fmt"
	"strconv"

	"github.com/adyen/storefront-e2e/internal/locate"
	"github.com/playwright-community/playwright-go"
)

// DefaultProduct is the product EnsureCartHasOneItem puts in the cart.
const DefaultProduct = "Beautiful cap for woman"

// EnsureCartHasOneItem opens Caps > Simple, adds DefaultProduct and leaves
// the browser on a non-empty cart.
func EnsureCartHasOneItem(ctx context.Context, s *Session) error {
	cat := NewCategoryPage(s)
	if err := cat.OpenCapsSimple(ctx); err != nil {
		s.Logger.Debug("caps simple via menu failed, opening route")
		if err := s.GotoPath(RouteCapsSimple); err != nil {
			return err
		}
	}

	product := NewProductPage(s)
	link := s.Page.GetByRole(*playwright.AriaRoleLink, playwright.PageGetByRoleOptions{Name: DefaultProduct}).First()
	if count(link) == 0 {
		first := cat.Items().Resolve(ctx)
		if !first.Matched() {
			return fmt.Errorf("no product to add on %s", s.Page.URL())
		}
		link = first.Locator.First()
	}
	if err := link.Click(); err != nil {
		return fmt.Errorf("failed to open product: %w", err)
	}
	if err := product.AddItemToCart(ctx); err != nil {
		return err
	}
	if !cartPageURL.MatchString(s.Page.URL()) {
		if err := s.OpenCart(ctx); err != nil {
			return err
		}
	}

	cart := NewCartPage(s)
	if cart.IsEmpty(ctx) {
		s.Logger.Debug("cart still empty after add, retrying")
		if _, err := s.Page.GoBack(); err != nil {
			return fmt.Errorf("failed to return to product: %w", err)
		}
		if err := product.AddItemToCart(ctx); err != nil {
			return err
		}
	}
	return cart.AssertOpened(ctx)
}

func headerBadge(s *Session) *locate.Chain[playwright.Locator] {
	return locate.Of(
		s.Page.Locator(".cart .badge"),
		s.Page.Locator(".cart .ui.label"),
		s.Page.Locator(".cart .label"),
	)
}

// HeaderCartBadge reads the unit count of the header cart button. ok is
// false when the theme shows no badge.
func HeaderCartBadge(ctx context.Context, s *Session) (n int, ok bool, err error) {
	res := headerBadge(s).Resolve(ctx)
	if !res.Matched() {
		return 0, false, nil
	}
	t, err := text(ctx, res.Locator.First())
	if err != nil {
		return 0, false, err
	}
	t = squash(t)
	if t == "" {
		return 0, false, nil
	}
	n, err = strconv.Atoi(t)
	if err != nil {
		return 0, false, fmt.Errorf("unexpected cart badge %q: %w", t, err)
	}
	return n, true, nil
}
