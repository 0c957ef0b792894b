package pages

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"

	"github.com/adyen/storefront-e2e/internal/detect"
	"github.com/adyen/storefront-e2e/internal/locate"
	"github.com/adyen/storefront-e2e/internal/money"
	"github.com/adyen/storefront-e2e/internal/poll"
	"github.com/playwright-community/playwright-go"
)

// ErrCategoryNotRendered is returned when neither the menu nor the direct
// route produced the category listing.
var ErrCategoryNotRendered = errors.New("category did not render")

var (
	simpleHeading     = regexp.MustCompile(`(?i)^simple`)
	simpleText        = regexp.MustCompile(`(?i)simple`)
	capsName          = regexp.MustCompile(`(?i)^caps$`)
	simpleName        = regexp.MustCompile(`(?i)^simple$`)
	sortButtonName    = regexp.MustCompile(`(?i)^sort:`)
	mostExpensiveName = regexp.MustCompile(`(?i)most expensive first`)
	levelUpName       = regexp.MustCompile(`(?i)go level up`)
	sortedPriceDesc   = regexp.MustCompile(`(?i)sorting(%5B|\[)price(%5D|\])=desc`)
	errorPageText     = regexp.MustCompile(`(?i)unexpected error occurred|the page you are looking for does not exist`)
)

// ErrorPage fires when the shop rendered its not-found or server-error page.
func (s *Session) ErrorPage() *detect.Detector {
	return detect.Any("error page",
		detect.Visible("error message", s.Page.GetByText(errorPageText).First()),
		detect.CountAtLeast("error layout", s.Page.Locator(".error-page"), 1),
	)
}

// CategoryPage is a taxon listing such as Caps > Simple.
type CategoryPage struct {
	s *Session
}

func NewCategoryPage(s *Session) *CategoryPage {
	return &CategoryPage{s: s}
}

// Grid is the product listing container of either markup generation.
func (c *CategoryPage) Grid() *locate.Chain[playwright.Locator] {
	return locate.Of(
		c.s.Page.Locator(".products-grid"),
		c.s.Page.Locator(".ui.cards"),
		c.s.Page.Locator(".products .grid"),
	)
}

// Items are the product cards inside the grid.
func (c *CategoryPage) Items() *locate.Chain[playwright.Locator] {
	return locate.NewChain(
		locate.Named("link-reset cards", func() playwright.Locator {
			return c.grid().Locator("a.link-reset")
		}),
		locate.Named("legacy cards", func() playwright.Locator {
			return c.grid().Locator(".card")
		}),
		locate.Named("product links", func() playwright.Locator {
			return c.grid().Locator(`a[href^="/products/"]`)
		}),
	)
}

func (c *CategoryPage) grid() playwright.Locator {
	return c.Grid().Resolve(context.Background()).Locator.First()
}

// Prices are the price labels inside the grid.
func (c *CategoryPage) Prices() *locate.Chain[playwright.Locator] {
	grid := c.grid
	return locate.NewChain(
		locate.Named("span after promotions", func() playwright.Locator {
			return grid().Locator("[data-applied-promotions-locale] + span")
		}),
		locate.Named("legacy price", func() playwright.Locator {
			return grid().Locator(".sylius-product-price, .card [class*=price]")
		}),
		locate.Named("price class", func() playwright.Locator {
			return grid().Locator(".price")
		}),
		locate.Named("xpath sibling", func() playwright.Locator {
			return grid().Locator("xpath=.//div[@data-applied-promotions-locale]/following-sibling::span[1]")
		}),
	)
}

// Breadcrumbs is the breadcrumb trail of either markup generation.
func (c *CategoryPage) Breadcrumbs() playwright.Locator {
	return c.s.Page.Locator(`.breadcrumb, nav[aria-label="breadcrumb"], .ui.breadcrumb`).First()
}

// BreadcrumbText is the squashed text of the breadcrumb trail.
func (c *CategoryPage) BreadcrumbText(ctx context.Context) (string, error) {
	t, err := text(ctx, c.Breadcrumbs())
	return squash(t), err
}

func (c *CategoryPage) heading(name *regexp.Regexp) playwright.Locator {
	return c.s.Page.GetByRole(*playwright.AriaRoleHeading, playwright.PageGetByRoleOptions{Name: name}).First()
}

// OpenCapsSimple goes home, opens Caps > Simple through the menu and falls
// back to the direct route when the menu does not get there.
func (c *CategoryPage) OpenCapsSimple(ctx context.Context) error {
	if err := c.s.GotoPath(RouteHome); err != nil {
		return err
	}
	c.s.DismissWidget(ctx)

	caps := locate.Of(
		c.s.Page.GetByRole(*playwright.AriaRoleButton, playwright.PageGetByRoleOptions{Name: capsName}),
		c.s.Page.GetByRole(*playwright.AriaRoleLink, playwright.PageGetByRoleOptions{Name: capsName}),
	).Resolve(ctx)
	if caps.Matched() {
		if err := caps.Locator.First().Click(); err != nil {
			c.s.Logger.Debug("caps menu click failed")
		}
	}
	menu := c.s.Page.Locator(".dropdown-menu.show").First()
	simple := menu.GetByRole(*playwright.AriaRoleLink, playwright.LocatorGetByRoleOptions{Name: simpleName}).First()
	if !c.s.CheckVisible(ctx, "caps menu", menu) || count(simple) == 0 {
		simple = c.s.Page.GetByRole(*playwright.AriaRoleLink, playwright.PageGetByRoleOptions{Name: simpleName}).First()
	}
	if count(simple) > 0 {
		_ = simple.Click()
	}

	ok := c.waitSimpleRendered(ctx)
	if !ok {
		c.s.Logger.Debug("menu did not reach Simple, using direct route")
		if err := c.s.GotoPath(RouteCapsSimpleAlt); err != nil {
			return err
		}
		ok = c.waitSimpleRendered(ctx)
	}
	if !ok {
		if c.s.ErrorPage().Evaluate(ctx) {
			return fmt.Errorf("%w: shop returned an error page at %s", ErrCategoryNotRendered, c.s.Page.URL())
		}
		crumbs, _ := c.BreadcrumbText(ctx)
		return fmt.Errorf("%w: url %s, breadcrumbs %q", ErrCategoryNotRendered, c.s.Page.URL(), crumbs)
	}
	c.s.DismissWidget(ctx)
	return nil
}

// waitSimpleRendered waits for a non-empty grid, then accepts any sign that
// the Simple category is shown.
func (c *CategoryPage) waitSimpleRendered(ctx context.Context) bool {
	if !c.s.Poller.Check(ctx, c.s.Policy, "product grid", detect.CountAtLeast("grid items", c.Items(), 1).Eval) {
		return false
	}
	return detect.Any("on simple",
		detect.Visible("simple heading", c.heading(simpleHeading)),
		detect.URLMatches("simple route", c.s.Page, capsSimpleURL),
		detect.TextMatches("simple breadcrumb", c.Breadcrumbs(), simpleText),
	).Evaluate(ctx)
}

// AssertSimpleBasics checks the Simple heading and at least two cards.
func (c *CategoryPage) AssertSimpleBasics(ctx context.Context) error {
	if err := c.s.WaitVisible(ctx, "simple heading", c.heading(simpleHeading)); err != nil {
		return err
	}
	n, err := poll.WaitValue[int](ctx, c.s.Poller, c.s.Policy, "at least two cards",
		func(context.Context) (int, error) { return c.Items().Count() },
		func(n int) bool { return n >= 2 })
	if err != nil {
		return fmt.Errorf("expected at least 2 cards, found %d: %w", n, err)
	}
	return nil
}

// IsSortedMostExpensive reports whether the listing is already sorted by
// descending price.
func (c *CategoryPage) IsSortedMostExpensive(ctx context.Context) bool {
	if sortedPriceDesc.MatchString(c.s.Page.URL()) {
		return true
	}
	t, err := c.sortButton().InnerText(playwright.LocatorInnerTextOptions{Timeout: stepTimeout(ctx)})
	return err == nil && mostExpensiveName.MatchString(t)
}

func (c *CategoryPage) sortButton() playwright.Locator {
	return c.s.Page.GetByRole(*playwright.AriaRoleButton, playwright.PageGetByRoleOptions{Name: sortButtonName}).First()
}

// sortMenu is the dropdown menu that belongs to the sort button, not the header menu.
func (c *CategoryPage) sortMenu() playwright.Locator {
	return c.sortButton().
		Locator(`xpath=ancestor::div[contains(@class,"dropdown")][1]//div[contains(@class,"dropdown-menu")]`).
		First()
}

// SortByMostExpensive switches the listing to "Most expensive first".
func (c *CategoryPage) SortByMostExpensive(ctx context.Context) error {
	if c.IsSortedMostExpensive(ctx) {
		return c.s.WaitChainVisible(ctx, "product grid", c.Grid())
	}
	return c.sortBy(ctx, mostExpensiveName, sortedPriceDesc)
}

func (c *CategoryPage) sortBy(ctx context.Context, label, route *regexp.Regexp) error {
	if err := c.sortButton().Click(); err != nil {
		return fmt.Errorf("failed to open sort menu: %w", err)
	}
	menu := c.sortMenu()
	if err := c.s.WaitVisible(ctx, "sort menu", menu); err != nil {
		return err
	}
	item := menu.GetByRole(*playwright.AriaRoleLink, playwright.LocatorGetByRoleOptions{Name: label}).First()
	if err := item.Click(); err != nil {
		return fmt.Errorf("failed to pick sort %s: %w", label, err)
	}
	if err := c.s.WaitURL(ctx, "sorted", route.MatchString); err != nil {
		return err
	}
	return c.s.WaitChainVisible(ctx, "product grid", c.Grid())
}

// GoLevelUpToCaps follows "Go level up", or opens Caps directly without it.
func (c *CategoryPage) GoLevelUpToCaps(ctx context.Context) error {
	up := c.s.Page.GetByRole(*playwright.AriaRoleLink, playwright.PageGetByRoleOptions{Name: levelUpName}).First()
	if count(up) > 0 {
		if err := up.Click(); err == nil {
			return c.s.WaitVisible(ctx, "caps heading", c.heading(capsName))
		}
	}
	if err := c.s.GotoPath(RouteCaps); err != nil {
		return err
	}
	return c.s.WaitVisible(ctx, "caps heading", c.heading(capsName))
}

// VisiblePrices waits for more than one price in the grid and returns them
// normalized. Labels that do not parse are dropped.
func (c *CategoryPage) VisiblePrices(ctx context.Context) ([]float64, error) {
	if err := c.s.WaitChainVisible(ctx, "product grid", c.Grid()); err != nil {
		return nil, err
	}
	if _, err := poll.WaitValue[int](ctx, c.s.Poller, c.s.Policy, "more than one price",
		func(context.Context) (int, error) { return c.Prices().Count() },
		func(n int) bool { return n > 1 }); err != nil {
		return nil, err
	}

	res := c.Prices().Resolve(ctx)
	texts, err := res.Locator.AllTextContents()
	if err != nil {
		return nil, fmt.Errorf("failed to read prices: %w", err)
	}
	prices := parsePrices(texts)
	if len(prices) == 0 {
		c.s.Logger.Debug("no parseable prices")
	}
	return prices, nil
}

func parsePrices(texts []string) []float64 {
	out := make([]float64, 0, len(texts))
	for _, t := range texts {
		if t = squash(t); t == "" {
			continue
		}
		if v := money.Normalize(t); !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
