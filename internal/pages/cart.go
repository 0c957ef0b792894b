package pages

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/adyen/storefront-e2e/internal/detect"
	"github.com/adyen/storefront-e2e/internal/locate"
	"github.com/adyen/storefront-e2e/internal/money"
	"github.com/adyen/storefront-e2e/internal/poll"
	"github.com/playwright-community/playwright-go"
)

var (
	emptyCartText  = regexp.MustCompile(`(?i)your cart is empty`)
	itemsTotalText = regexp.MustCompile(`(?i)^\s*items total\s*$`)
	orderTotalText = regexp.MustCompile(`(?i)^\s*order total\s*$`)
	checkoutName   = regexp.MustCompile(`(?i)^\s*checkout\s*$`)
	clearCartName  = regexp.MustCompile(`(?i)clear cart`)
)

// Totals are the amounts shown for the first cart line and the summary.
type Totals struct {
	Row   float64
	Items float64
	Order float64
}

// CartPage is the /cart page.
type CartPage struct {
	s *Session
}

func NewCartPage(s *Session) *CartPage {
	return &CartPage{s: s}
}

// AssertOpened waits for the cart route and its heading.
func (c *CartPage) AssertOpened(ctx context.Context) error {
	if err := c.s.WaitURL(ctx, "cart", cartPageURL.MatchString); err != nil {
		return err
	}
	heading := c.s.Page.GetByRole(*playwright.AriaRoleHeading, playwright.PageGetByRoleOptions{
		Name: regexp.MustCompile(`(?i)shopping cart`),
	})
	return c.s.WaitVisible(ctx, "cart heading", heading.First())
}

// QtyInputAt returns the quantity input of line i.
func (c *CartPage) QtyInputAt(i int) *locate.Chain[playwright.Locator] {
	return locate.NewChain(
		locate.Named("quantity id", func() playwright.Locator {
			return c.s.Page.Locator("#sylius_shop_cart_items_" + strconv.Itoa(i) + "_quantity")
		}),
		locate.Named("quantity name", func() playwright.Locator {
			return c.s.Page.Locator(`input[name="sylius_shop_cart[items][` + strconv.Itoa(i) + `][quantity]"]`)
		}),
		locate.Named("nth number input", func() playwright.Locator {
			return c.rows().Nth(i).Locator(`input[type="number"]`)
		}),
	)
}

// SetQuantity types n into line i and fires change so the cart recalculates.
func (c *CartPage) SetQuantity(ctx context.Context, i, n int) error {
	res := c.QtyInputAt(i).Resolve(ctx)
	if !res.Matched() {
		return fmt.Errorf("quantity input for line %d not found", i)
	}
	input := res.Locator.First()
	want := strconv.Itoa(n)
	if err := input.Fill(want); err != nil {
		return fmt.Errorf("failed to fill quantity: %w", err)
	}
	if err := input.DispatchEvent("change", nil); err != nil {
		return fmt.Errorf("failed to submit quantity: %w", err)
	}
	return c.s.Wait(ctx, "quantity "+want, func(ctx context.Context) (bool, error) {
		// the row is re-rendered after the submit, so resolve again
		r := c.QtyInputAt(i).Resolve(ctx)
		if !r.Matched() {
			return false, nil
		}
		v, err := r.Locator.First().InputValue(playwright.LocatorInputValueOptions{Timeout: stepTimeout(ctx)})
		if err != nil {
			return false, err
		}
		return v == want && cartPageURL.MatchString(c.s.Page.URL()), nil
	})
}

func (c *CartPage) rows() playwright.Locator {
	return c.s.Page.Locator("table.cart-items tbody tr, table tbody tr")
}

// summaryRoots are the containers of the totals block, most specific first.
func (c *CartPage) summaryRoots() []locate.Strategy[playwright.Locator] {
	return []locate.Strategy[playwright.Locator]{
		locate.Named("order summary", func() playwright.Locator {
			return c.s.Page.Locator(".order-summary")
		}),
		locate.Named("summary heading container", func() playwright.Locator {
			return c.s.Page.GetByRole(*playwright.AriaRoleHeading, playwright.PageGetByRoleOptions{
				Name: regexp.MustCompile(`(?i)^summary$`),
			}).Locator("..")
		}),
	}
}

// summaryValue is the value next to a summary label such as "Order total",
// looked up under each summary container in turn.
func (c *CartPage) summaryValue(label *regexp.Regexp) *locate.Chain[playwright.Locator] {
	roots := c.summaryRoots()
	values := make([]locate.Strategy[playwright.Locator], len(roots))
	for i, r := range roots {
		values[i] = locate.Named(r.Name+" value", func() playwright.Locator {
			return r.Build().First().GetByText(label).Locator("..").Locator("div").Last()
		})
	}
	return locate.NewChain(values...)
}

// summaryText reads the value of label, failing when no summary renders it yet.
func (c *CartPage) summaryText(ctx context.Context, label *regexp.Regexp) (string, error) {
	res := c.summaryValue(label).Resolve(ctx)
	if !res.Matched() {
		return "", fmt.Errorf("summary %s not rendered", label)
	}
	return text(ctx, res.Locator.First())
}

// Totals waits until the first line total, the items total and the order
// total can be read, and returns them.
func (c *CartPage) Totals(ctx context.Context) (Totals, error) {
	return poll.WaitValue[Totals](ctx, c.s.Poller, c.s.Policy, "cart totals",
		c.readTotals, func(Totals) bool { return true })
}

// readTotals reads the totals once.
func (c *CartPage) readTotals(ctx context.Context) (Totals, error) {
	var t Totals
	row, err := text(ctx, c.rows().First().Locator("td").Last())
	if err != nil {
		return t, fmt.Errorf("failed to read line total: %w", err)
	}
	if t.Row, err = money.Require(row); err != nil {
		return t, err
	}

	items, err := c.summaryText(ctx, itemsTotalText)
	if err != nil {
		return t, fmt.Errorf("failed to read items total: %w", err)
	}
	if t.Items, err = money.Require(items); err != nil {
		return t, err
	}

	order, err := c.summaryText(ctx, orderTotalText)
	if err != nil {
		return t, fmt.Errorf("failed to read order total: %w", err)
	}
	if t.Order, err = money.Require(order); err != nil {
		return t, err
	}
	return t, nil
}

// WaitTotalsAtLeast waits until the line total reaches minRow, e.g. after a
// quantity change.
func (c *CartPage) WaitTotalsAtLeast(ctx context.Context, minRow float64) (Totals, error) {
	return poll.WaitValue[Totals](ctx, c.s.Poller, c.s.Policy, fmt.Sprintf("line total >= %s", money.Format(minRow)),
		c.readTotals, func(t Totals) bool { return t.Row >= minRow || money.Equal(t.Row, minRow) })
}

// clearCartControl is the "Clear cart" button, or the link some themes render.
func (c *CartPage) clearCartControl() *locate.Chain[playwright.Locator] {
	return locate.Of(
		c.s.Page.GetByRole(*playwright.AriaRoleButton, playwright.PageGetByRoleOptions{Name: clearCartName}),
		c.s.Page.GetByRole(*playwright.AriaRoleLink, playwright.PageGetByRoleOptions{Name: clearCartName}),
	)
}

// ClearCart presses "Clear cart" and reports whether the cart ended empty.
// A cart without the control is reported as already empty when it is.
func (c *CartPage) ClearCart(ctx context.Context) (bool, error) {
	res := c.clearCartControl().Resolve(ctx)
	if !res.Matched() {
		return c.IsEmpty(ctx), nil
	}
	if err := res.Locator.First().Click(); err != nil {
		return false, fmt.Errorf("failed to clear cart: %w", err)
	}
	return c.s.Poller.Check(ctx, c.s.Policy, "cart cleared", c.EmptyDetector().Condition()), nil
}

// EmptyDetector fires on any sign of an empty cart.
func (c *CartPage) EmptyDetector() *detect.Detector {
	page := c.s.Page
	orderTotal := detect.Func("summary order total is 0", func(ctx context.Context) (bool, error) {
		res := c.summaryValue(orderTotalText).Resolve(ctx)
		if !res.Matched() {
			return false, nil
		}
		return detect.MoneyEquals("order total", res.Locator.First(), 0).Eval(ctx)
	})
	return detect.Any("cart empty",
		detect.Visible("empty banner", page.GetByText(emptyCartText).First()),
		detect.CountIs("no item rows", page.Locator("table.cart-items tbody tr"), 0),
		orderTotal,
		detect.Absent("no checkout button", page.GetByRole(*playwright.AriaRoleButton, playwright.PageGetByRoleOptions{Name: checkoutName})),
	)
}

// IsEmpty evaluates the empty detector once.
func (c *CartPage) IsEmpty(ctx context.Context) bool {
	return c.EmptyDetector().Evaluate(ctx)
}

// AssertEmpty hard-waits for the cart to become empty.
func (c *CartPage) AssertEmpty(ctx context.Context) error {
	return c.s.Wait(ctx, "cart empty", c.EmptyDetector().Condition())
}

// CheckoutButton is the summary button that starts checkout.
func (c *CartPage) CheckoutButton() *locate.Chain[playwright.Locator] {
	return locate.Of(
		c.s.Page.GetByRole(*playwright.AriaRoleButton, playwright.PageGetByRoleOptions{Name: checkoutName}),
		c.s.Page.GetByRole(*playwright.AriaRoleLink, playwright.PageGetByRoleOptions{Name: checkoutName}),
		c.s.Page.Locator(`form[action$="/checkout/address"] [type="submit"]`),
	)
}
