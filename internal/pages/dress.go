package pages

import (
	"context"
	"fmt"
	"strings"

	"github.com/adyen/storefront-e2e/internal/detect"
	"github.com/playwright-community/playwright-go"
)

// Accordion is one collapsible panel of the product page.
type Accordion struct {
	Name   string
	Header playwright.Locator
	Body   playwright.Locator
}

// DressProductPage is the product page of a dress, with size and height
// selects and the details, attributes and reviews panels.
type DressProductPage struct {
	s *Session

	Size     playwright.Locator
	Height   playwright.Locator
	Quantity playwright.Locator

	Details    Accordion
	Attributes Accordion
	Reviews    Accordion
}

func NewDressProductPage(s *Session) *DressProductPage {
	panel := func(id string) Accordion {
		return Accordion{
			Name:   id,
			Header: s.Page.Locator(`button[aria-controls="` + id + `"]`).First(),
			Body:   s.Page.Locator("#" + id + ".accordion-collapse").First(),
		}
	}
	return &DressProductPage{
		s:          s,
		Size:       s.Page.Locator("#sylius_shop_add_to_cart_cartItem_variant_dress_size").First(),
		Height:     s.Page.Locator("#sylius_shop_add_to_cart_cartItem_variant_dress_height").First(),
		Quantity:   s.Page.Locator("#sylius_shop_add_to_cart_cartItem_quantity").First(),
		Details:    panel("details"),
		Attributes: panel("attributes"),
		Reviews:    panel("reviews"),
	}
}

// OpenBySlug opens /products/{slug}; a slug starting with / is used as the path.
func (d *DressProductPage) OpenBySlug(ctx context.Context, slug string) error {
	path := slug
	if !strings.HasPrefix(slug, "/") {
		path = "products/" + slug
	}
	if err := d.s.GotoPath(path); err != nil {
		return err
	}
	d.s.DismissWidget(ctx)
	title := d.s.Page.GetByRole(*playwright.AriaRoleHeading, playwright.PageGetByRoleOptions{Level: playwright.Int(1)}).First()
	return d.s.WaitVisible(ctx, "product title", title)
}

// BreadcrumbText is the breadcrumb trail as one line.
func (d *DressProductPage) BreadcrumbText(ctx context.Context) (string, error) {
	t, err := text(ctx, d.s.Page.Locator(`ol.breadcrumb, nav[aria-label*=breadcrumb i]`).First())
	return squash(t), err
}

func optionTexts(sel playwright.Locator) ([]string, error) {
	texts, err := sel.Locator("option").AllTextContents()
	if err != nil {
		return nil, fmt.Errorf("failed to read options: %w", err)
	}
	for i, t := range texts {
		texts[i] = squash(t)
	}
	return texts, nil
}

func (d *DressProductPage) SizeOptions() ([]string, error) {
	return optionTexts(d.Size)
}

func (d *DressProductPage) HeightOptions() ([]string, error) {
	return optionTexts(d.Height)
}

// SelectedLabel is the text of the selected option of sel.
func (d *DressProductPage) SelectedLabel(ctx context.Context, sel playwright.Locator) (string, error) {
	t, err := text(ctx, sel.Locator("option:checked").First())
	return squash(t), err
}

// IsExpanded reports the aria-expanded state of the panel header.
func (d *DressProductPage) IsExpanded(a Accordion) (bool, error) {
	v, err := a.Header.GetAttribute("aria-expanded")
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

func hasClass(l playwright.Locator, class string) (bool, error) {
	v, err := l.GetAttribute("class")
	if err != nil {
		return false, err
	}
	for _, c := range strings.Fields(v) {
		if c == class {
			return true, nil
		}
	}
	return false, nil
}

// PanelOpen holds while the header is expanded and the body finished opening.
func (d *DressProductPage) PanelOpen(a Accordion) *detect.Detector {
	return detect.All(a.Name+" open",
		detect.Func("aria-expanded", func(context.Context) (bool, error) { return d.IsExpanded(a) }),
		detect.Func("show", func(context.Context) (bool, error) { return hasClass(a.Body, "show") }),
		detect.Func("not collapsing", func(context.Context) (bool, error) {
			c, err := hasClass(a.Body, "collapsing")
			return !c, err
		}),
	)
}

// panelClosed holds while the header is collapsed and the body finished closing.
func (d *DressProductPage) panelClosed(a Accordion) *detect.Detector {
	return detect.All(a.Name+" closed",
		detect.Func("not show", func(context.Context) (bool, error) {
			c, err := hasClass(a.Body, "show")
			return !c, err
		}),
		detect.Func("not collapsing", func(context.Context) (bool, error) {
			c, err := hasClass(a.Body, "collapsing")
			return !c, err
		}),
	)
}

// EnsureOpen opens the panel unless the header or body already says it is
// open, then waits for the transition to finish.
func (d *DressProductPage) EnsureOpen(ctx context.Context, a Accordion) error {
	expanded, _ := d.IsExpanded(a)
	shown, _ := hasClass(a.Body, "show")
	if !expanded && !shown {
		if err := d.toggle(a); err != nil {
			return err
		}
	}
	return d.s.Wait(ctx, a.Name+" open", d.PanelOpen(a).Condition())
}

// EnsureClosed closes the panel when either source says it is open, then
// waits for the transition to finish.
func (d *DressProductPage) EnsureClosed(ctx context.Context, a Accordion) error {
	expanded, _ := d.IsExpanded(a)
	shown, _ := hasClass(a.Body, "show")
	if expanded || shown {
		if err := d.toggle(a); err != nil {
			return err
		}
	}
	return d.s.Wait(ctx, a.Name+" closed", d.panelClosed(a).Condition())
}

func (d *DressProductPage) toggle(a Accordion) error {
	if err := a.Header.ScrollIntoViewIfNeeded(); err != nil {
		return fmt.Errorf("failed to scroll to %s: %w", a.Name, err)
	}
	if err := a.Header.Click(); err != nil {
		return fmt.Errorf("failed to toggle %s: %w", a.Name, err)
	}
	return nil
}
