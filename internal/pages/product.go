package pages

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/adyen/storefront-e2e/internal/locate"
	"github.com/adyen/storefront-e2e/internal/models"
	"github.com/playwright-community/playwright-go"
)

var (
	addToCartName = regexp.MustCompile(`(?i)^\s*add to cart\s*$`)
	addToCartURL  = regexp.MustCompile(`/cart/add\b`)
	cartHeading   = regexp.MustCompile(`(?i)your shopping cart|shopping cart|cart`)
)

// ProductPage is a product detail page.
type ProductPage struct {
	s *Session
}

func NewProductPage(s *Session) *ProductPage {
	return &ProductPage{s: s}
}

func (p *ProductPage) title() playwright.Locator {
	return p.s.Page.GetByRole(*playwright.AriaRoleHeading, playwright.PageGetByRoleOptions{Level: playwright.Int(1)}).First()
}

// Price is the price label of the product.
func (p *ProductPage) Price() *locate.Chain[playwright.Locator] {
	return locate.Of(
		p.s.Page.Locator(".product-price"),
		p.s.Page.Locator("main .price, main [class*=price]"),
		p.s.Page.Locator(".fs-3"),
	)
}

func (p *ProductPage) quantity() *locate.Chain[playwright.Locator] {
	return locate.Of(
		p.s.Page.Locator("#sylius_shop_add_to_cart_cartItem_quantity"),
		p.s.Page.Locator("input[name*=quantity]"),
		p.s.Page.Locator(`input[name="quantity"]`),
	)
}

// AddButton is the add to cart button.
func (p *ProductPage) AddButton() *locate.Chain[playwright.Locator] {
	return locate.Of(
		p.s.Page.Locator("#add-to-cart-button"),
		p.s.Page.GetByRole(*playwright.AriaRoleButton, playwright.PageGetByRoleOptions{Name: addToCartName}),
	)
}

// AssertReady waits until the title, price and add button are visible.
func (p *ProductPage) AssertReady(ctx context.Context) error {
	if err := p.s.WaitVisible(ctx, "product title", p.title()); err != nil {
		return err
	}
	for _, part := range []struct {
		name  string
		chain *locate.Chain[playwright.Locator]
	}{
		{"price", p.Price()},
		{"quantity", p.quantity()},
		{"add to cart", p.AddButton()},
	} {
		if err := p.s.WaitChainVisible(ctx, part.name, part.chain); err != nil {
			return err
		}
	}
	p.s.DismissWidget(ctx)
	return nil
}

// OpenFromListByName clicks the product link named name, or opens the slug
// route when the list does not show it.
func (p *ProductPage) OpenFromListByName(ctx context.Context, name string) error {
	link := p.s.Page.GetByRole(*playwright.AriaRoleLink, playwright.PageGetByRoleOptions{Name: name}).First()
	if count(link) > 0 {
		if err := link.Click(); err != nil {
			return fmt.Errorf("failed to open %s: %w", name, err)
		}
	} else if err := p.s.GotoPath("products/" + models.Slugify(name)); err != nil {
		return err
	}
	if err := p.RecoverFromError(ctx, name); err != nil {
		return err
	}
	return p.AssertProductBasics(ctx, name)
}

// AssertProductBasics checks that the page shows product name with its
// price, quantity and add button.
func (p *ProductPage) AssertProductBasics(ctx context.Context, name string) error {
	heading := p.s.Page.GetByRole(*playwright.AriaRoleHeading, playwright.PageGetByRoleOptions{Name: name}).First()
	if err := p.s.WaitVisible(ctx, "heading "+name, heading); err != nil {
		return err
	}
	return p.AssertReady(ctx)
}

// AddItemToCart presses add to cart and waits for the POST to /cart/add.
// A 5xx answer or an error page gets one recovery and one retry.
func (p *ProductPage) AddItemToCart(ctx context.Context) error {
	if err := p.AssertReady(ctx); err != nil {
		return err
	}
	name, _ := text(ctx, p.title())
	name = squash(name)

	status, err := p.clickAdd(ctx)
	failed := err != nil || status >= 500 || p.s.ErrorPage().Evaluate(ctx)
	if failed {
		p.s.Logger.Debug("add to cart failed, retrying")
		if err := p.RecoverFromError(ctx, name); err != nil {
			return err
		}
		if err := p.AssertReady(ctx); err != nil {
			return err
		}
		if status, err = p.clickAdd(ctx); err != nil {
			return fmt.Errorf("failed to add %s to cart: %w", name, err)
		}
		if status >= 500 {
			return fmt.Errorf("failed to add %s to cart: status %d", name, status)
		}
	}

	p.s.CheckURL(ctx, "cart", cartPageURL.MatchString)
	p.s.CheckVisible(ctx, "cart heading",
		p.s.Page.GetByRole(*playwright.AriaRoleHeading, playwright.PageGetByRoleOptions{Name: cartHeading}).First())
	p.s.CheckVisible(ctx, "flash", p.s.Page.GetByRole(*playwright.AriaRoleAlert).First())
	return nil
}

// clickAdd clicks the add button and returns the status of the add request.
func (p *ProductPage) clickAdd(ctx context.Context) (int, error) {
	res := p.AddButton().Resolve(ctx)
	if !res.Matched() {
		return 0, errors.New("add to cart button not found")
	}
	resp, err := p.s.Page.ExpectResponse(addToCartURL, func() error {
		return res.Locator.First().Click()
	}, playwright.PageExpectResponseOptions{Timeout: ms(p.s.Policy.Timeout)})
	if err != nil {
		return 0, err
	}
	if m := resp.Request().Method(); m != "POST" {
		return 0, fmt.Errorf("unexpected %s to %s", m, resp.URL())
	}
	return resp.Status(), nil
}

// RecoverFromError leaves an error page by going back and reopening the
// product named name. It does nothing when no error page is shown.
func (p *ProductPage) RecoverFromError(ctx context.Context, name string) error {
	if !p.s.ErrorPage().Evaluate(ctx) {
		return nil
	}
	if _, err := p.s.Page.GoBack(); err != nil {
		return fmt.Errorf("failed to leave error page: %w", err)
	}
	if name == "" {
		return nil
	}
	link := p.s.Page.GetByRole(*playwright.AriaRoleLink, playwright.PageGetByRoleOptions{Name: name}).First()
	if count(link) > 0 {
		if err := link.Click(); err != nil {
			return fmt.Errorf("failed to reopen %s: %w", name, err)
		}
	}
	return nil
}
