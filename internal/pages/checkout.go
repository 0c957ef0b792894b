package pages

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/adyen/storefront-e2e/internal/detect"
	"github.com/adyen/storefront-e2e/internal/locate"
	"github.com/adyen/storefront-e2e/internal/money"
	"github.com/adyen/storefront-e2e/internal/poll"
	"github.com/playwright-community/playwright-go"
)

// ErrNoCountry is returned when no country option matches the requested label.
var ErrNoCountry = errors.New("no country option matches")

var (
	shippingStepURL  = regexp.MustCompile(`/checkout/shipping(\?|$)`)
	paymentStepURL   = regexp.MustCompile(`/checkout/payment(\?|$)`)
	completeStepURL  = regexp.MustCompile(`/checkout/complete(\?|$)`)
	orderNumberText  = regexp.MustCompile(`#\s*(\d+)`)
	nextName         = regexp.MustCompile(`(?i)^\s*next\s*$`)
	placeOrderName   = regexp.MustCompile(`(?i)^\s*place order\s*$`)
	differentShipTxt = regexp.MustCompile(`(?i)use different address for shipping`)
	shippingCostText = regexp.MustCompile(`(?i)^\s*estimated shipping cost\s*$`)
)

// Address is what the address step asks for. Country is matched against the
// option texts of the country select, so /Poland|France/ picks whichever the
// shop offers first.
type Address struct {
	Email     string
	FirstName string
	LastName  string
	Street    string
	Country   *regexp.Regexp
	City      string
	Postcode  string
}

// ShippingTotals are the shipping fee and the order total of the summary.
type ShippingTotals struct {
	Ship  float64
	Order float64
}

// CheckoutPage drives the four checkout steps.
type CheckoutPage struct {
	s *Session
}

func NewCheckoutPage(s *Session) *CheckoutPage {
	return &CheckoutPage{s: s}
}

// FromCartClickCheckout presses the checkout button of the cart summary.
func (c *CheckoutPage) FromCartClickCheckout(ctx context.Context) error {
	res := NewCartPage(c.s).CheckoutButton().Resolve(ctx)
	if !res.Matched() {
		return errors.New("checkout button not found in cart")
	}
	if err := res.Locator.First().Click(); err != nil {
		return fmt.Errorf("failed to start checkout: %w", err)
	}
	return c.s.WaitURL(ctx, "address step", func(u string) bool {
		return strings.Contains(u, "/checkout/address")
	})
}

// field resolves an address input by id first and by label second. Labels
// repeat between the billing and shipping sections, so the label strategy
// takes the first match of the section.
func (c *CheckoutPage) field(section, name, label string) *locate.Chain[playwright.Locator] {
	id := "#sylius_shop_checkout_address_" + section + "_" + name
	return locate.NewChain(
		locate.Named(id, func() playwright.Locator { return c.s.Page.Locator(id) }),
		locate.Named("label "+label, func() playwright.Locator {
			scope := c.s.Page.Locator(sectionSelector(section))
			return scope.GetByLabel(label, playwright.LocatorGetByLabelOptions{Exact: playwright.Bool(true)}).First()
		}),
	)
}

func sectionSelector(section string) string {
	if section == "shippingAddress" {
		return "#shipping-address"
	}
	return "#billing-address, form[name=sylius_shop_checkout_address]"
}

func (c *CheckoutPage) fill(ctx context.Context, section, name, label, value string) error {
	input, err := c.s.WaitFirstVisible(ctx, section+" "+label, c.field(section, name, label))
	if err != nil {
		return err
	}
	if err := input.Fill(value); err != nil {
		return fmt.Errorf("failed to fill %s: %w", label, err)
	}
	return nil
}

// FillAddress fills the billing address and the customer email.
func (c *CheckoutPage) FillAddress(ctx context.Context, a Address) error {
	if a.Email != "" {
		email := locate.Of(
			c.s.Page.Locator("#sylius_shop_checkout_address_customer_email"),
			c.s.Page.GetByLabel("Email", playwright.PageGetByLabelOptions{Exact: playwright.Bool(true)}),
		).Resolve(ctx)
		if !email.Matched() {
			return errors.New("email field not found")
		}
		if err := email.Locator.First().Fill(a.Email); err != nil {
			return fmt.Errorf("failed to fill email: %w", err)
		}
	}
	return c.fillSection(ctx, "billingAddress", a)
}

// FillShippingAddress fills the separate shipping address section.
func (c *CheckoutPage) FillShippingAddress(ctx context.Context, a Address) error {
	return c.fillSection(ctx, "shippingAddress", a)
}

func (c *CheckoutPage) fillSection(ctx context.Context, section string, a Address) error {
	for _, f := range []struct{ name, label, value string }{
		{"firstName", "First name", a.FirstName},
		{"lastName", "Last name", a.LastName},
		{"street", "Street address", a.Street},
		{"city", "City", a.City},
		{"postcode", "Postcode", a.Postcode},
	} {
		if err := c.fill(ctx, section, f.name, f.label, f.value); err != nil {
			return err
		}
	}
	if a.Country == nil {
		return nil
	}
	return c.selectCountry(ctx, section, a.Country)
}

func (c *CheckoutPage) selectCountry(ctx context.Context, section string, country *regexp.Regexp) error {
	res := c.field(section, "countryCode", "Country").Resolve(ctx)
	if !res.Matched() {
		return fmt.Errorf("%s country select not found", section)
	}
	options, err := res.Locator.Locator("option").AllTextContents()
	if err != nil {
		return fmt.Errorf("failed to read country options: %w", err)
	}
	label, ok := matchOption(options, country)
	if !ok {
		return fmt.Errorf("%w %s", ErrNoCountry, country)
	}
	if _, err := res.Locator.SelectOption(playwright.SelectOptionValues{Labels: &[]string{label}}); err != nil {
		return fmt.Errorf("failed to select country %q: %w", label, err)
	}
	return nil
}

// matchOption returns the first option text matching re, trimmed.
func matchOption(options []string, re *regexp.Regexp) (string, bool) {
	for _, o := range options {
		o = squash(o)
		if o != "" && re.MatchString(o) {
			return o, true
		}
	}
	return "", false
}

// ToggleDifferentShipping checks or unchecks "Use different address for shipping".
func (c *CheckoutPage) ToggleDifferentShipping(ctx context.Context, on bool) error {
	res := locate.Of(
		c.s.Page.Locator("#different-shipping"),
		c.s.Page.GetByLabel(differentShipTxt),
		c.s.Page.GetByRole(*playwright.AriaRoleCheckbox, playwright.PageGetByRoleOptions{Name: differentShipTxt}),
	).Resolve(ctx)
	if !res.Matched() {
		return errors.New("different shipping checkbox not found")
	}
	box := res.Locator.First()
	var err error
	if on {
		err = box.Check()
	} else {
		err = box.Uncheck()
	}
	if err != nil {
		return fmt.Errorf("failed to toggle different shipping: %w", err)
	}
	return nil
}

// WaitShippingAddressSection waits for the shipping address section to show
// and for its first name to be populated.
func (c *CheckoutPage) WaitShippingAddressSection(ctx context.Context) error {
	if err := c.s.WaitVisible(ctx, "shipping address section", c.s.Page.Locator("#shipping-address")); err != nil {
		return err
	}
	return c.s.Wait(ctx, "shipping first name populated", func(ctx context.Context) (bool, error) {
		v, err := c.ShippingValue(ctx, "firstName", "First name")
		return v != "", err
	})
}

// ShippingValue reads one input of the shipping address section.
func (c *CheckoutPage) ShippingValue(ctx context.Context, name, label string) (string, error) {
	res := c.field("shippingAddress", name, label).Resolve(ctx)
	if !res.Matched() {
		return "", nil
	}
	return res.Locator.InputValue(playwright.LocatorInputValueOptions{Timeout: stepTimeout(ctx)})
}

// Next submits the current step.
func (c *CheckoutPage) Next(ctx context.Context) error {
	res := locate.Of(
		c.s.Page.Locator("#next-step"),
		c.s.Page.GetByRole(*playwright.AriaRoleButton, playwright.PageGetByRoleOptions{Name: nextName}),
	).Resolve(ctx)
	if !res.Matched() {
		return errors.New("next button not found")
	}
	if err := res.Locator.First().Click(); err != nil {
		return fmt.Errorf("failed to submit step: %w", err)
	}
	return nil
}

func (c *CheckoutPage) onStep(ctx context.Context, name string, route *regexp.Regexp) error {
	if err := c.s.WaitURL(ctx, name+" step", route.MatchString); err != nil {
		return err
	}
	heading := c.s.Page.GetByRole(*playwright.AriaRoleHeading, playwright.PageGetByRoleOptions{
		Name: regexp.MustCompile(`(?i)` + name),
	})
	return c.s.WaitVisible(ctx, name+" heading", heading.First())
}

func (c *CheckoutPage) OnShipping(ctx context.Context) error {
	return c.onStep(ctx, "Shipping", shippingStepURL)
}

func (c *CheckoutPage) OnPayment(ctx context.Context) error {
	return c.onStep(ctx, "Payment", paymentStepURL)
}

func (c *CheckoutPage) OnComplete(ctx context.Context) error {
	return c.onStep(ctx, "Complete", completeStepURL)
}

// shippingOptions is the radio group of shipping methods.
func (c *CheckoutPage) shippingOptions() *locate.Chain[playwright.Locator] {
	return locate.Of(
		c.s.Page.Locator(`#shipping-methods input[type="radio"]`),
		c.s.Page.Locator(`input[name="shipping_method"]`),
		c.s.Page.GetByRole(*playwright.AriaRoleRadio),
	)
}

// ShippingLoaded holds once the page is on the shipping route and a method
// can be picked.
func (c *CheckoutPage) ShippingLoaded() *detect.Detector {
	return detect.All("shipping step loaded",
		detect.URLMatches("shipping route", c.s.Page, shippingStepURL),
		detect.Func("shipping options visible", func(ctx context.Context) (bool, error) {
			res := c.shippingOptions().Resolve(ctx)
			if !res.Matched() {
				return false, nil
			}
			return res.Locator.First().IsVisible()
		}),
	)
}

// AssertShippingLoaded hard-waits for ShippingLoaded.
func (c *CheckoutPage) AssertShippingLoaded(ctx context.Context) error {
	return c.s.Wait(ctx, "shipping step loaded", c.ShippingLoaded().Condition())
}

// SelectShipping picks a method by its label, e.g. "UPS" or "FedEx", and
// waits for the summary to show its fee.
func (c *CheckoutPage) SelectShipping(ctx context.Context, name string) error {
	if err := c.AssertShippingLoaded(ctx); err != nil {
		return err
	}
	label := regexp.MustCompile(`(?i)^\s*` + regexp.QuoteMeta(name) + `\s*$`)
	radio := c.s.Page.Locator("#shipping-methods").GetByLabel(label).First()
	if count(radio) == 0 {
		radio = c.s.Page.GetByLabel(label).First()
	}
	if err := radio.Check(); err != nil {
		return fmt.Errorf("failed to select shipping %s: %w", name, err)
	}

	feeText, err := radio.Locator("xpath=..").Locator(".fee").TextContent(
		playwright.LocatorTextContentOptions{Timeout: ms(c.s.Policy.Timeout)})
	if err != nil {
		return fmt.Errorf("failed to read %s fee: %w", name, err)
	}
	fee, err := money.Require(feeText)
	if err != nil {
		return err
	}
	_, err = poll.WaitValue[ShippingTotals](ctx, c.s.Poller, c.s.Policy, "shipping total "+name,
		c.readShippingTotals, func(t ShippingTotals) bool { return money.Equal(t.Ship, fee) })
	return err
}

// ShippingTotals waits until the estimated shipping cost and the order total
// can be read, and returns them.
func (c *CheckoutPage) ShippingTotals(ctx context.Context) (ShippingTotals, error) {
	return poll.WaitValue[ShippingTotals](ctx, c.s.Poller, c.s.Policy, "shipping totals",
		c.readShippingTotals, func(ShippingTotals) bool { return true })
}

func (c *CheckoutPage) readShippingTotals(ctx context.Context) (ShippingTotals, error) {
	var t ShippingTotals
	ship, err := c.summaryText(ctx, "#shipping-total", shippingCostText)
	if err != nil {
		return t, fmt.Errorf("failed to read shipping total: %w", err)
	}
	if t.Ship, err = money.Require(ship); err != nil {
		return t, err
	}
	order, err := c.summaryText(ctx, "#order-total", orderTotalText)
	if err != nil {
		return t, fmt.Errorf("failed to read order total: %w", err)
	}
	if t.Order, err = money.Require(order); err != nil {
		return t, err
	}
	return t, nil
}

func (c *CheckoutPage) summaryValue(id string, label *regexp.Regexp) *locate.Chain[playwright.Locator] {
	return locate.Of(
		c.s.Page.Locator(id),
		c.s.Page.GetByText(label).Locator("..").Locator("div").Last(),
	)
}

func (c *CheckoutPage) summaryText(ctx context.Context, id string, label *regexp.Regexp) (string, error) {
	res := c.summaryValue(id, label).Resolve(ctx)
	if !res.Matched() {
		return "", fmt.Errorf("summary %s not rendered", label)
	}
	return text(ctx, res.Locator.First())
}

// SelectBankTransfer picks bank transfer when the shop offers it.
func (c *CheckoutPage) SelectBankTransfer(ctx context.Context) error {
	res := locate.Of(
		c.s.Page.Locator("#payment_method_bank_transfer"),
		c.s.Page.GetByLabel(regexp.MustCompile(`(?i)bank transfer`)),
	).Resolve(ctx)
	if !res.Matched() {
		c.s.Logger.Debug("bank transfer not offered")
		return nil
	}
	if err := res.Locator.First().Check(); err != nil {
		return fmt.Errorf("failed to select bank transfer: %w", err)
	}
	return nil
}

// ConfirmOrder places the order and returns the number on the thank-you page.
func (c *CheckoutPage) ConfirmOrder(ctx context.Context) (string, error) {
	res := locate.Of(
		c.s.Page.Locator("#place-order"),
		c.s.Page.GetByRole(*playwright.AriaRoleButton, playwright.PageGetByRoleOptions{Name: placeOrderName}),
	).Resolve(ctx)
	if !res.Matched() {
		return "", errors.New("place order button not found")
	}
	if err := res.Locator.First().Click(); err != nil {
		return "", fmt.Errorf("failed to place order: %w", err)
	}

	thanks := c.s.Page.GetByRole(*playwright.AriaRoleHeading, playwright.PageGetByRoleOptions{
		Name: regexp.MustCompile(`(?i)^thank you`),
	}).First()
	if err := c.s.WaitVisible(ctx, "thank you heading", thanks); err != nil {
		return "", err
	}
	body, err := text(ctx, c.s.Page.Locator(".thank-you, main").First())
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}
	return OrderNumber(body), nil
}

// OrderNumber extracts the digits after the first '#' in text.
func OrderNumber(text string) string {
	m := orderNumberText.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// FieldError returns the validation message shown under the field labelled
// label, or "" when there is none.
func (c *CheckoutPage) FieldError(ctx context.Context, label string) (string, error) {
	holder := c.s.Page.Locator(".field.error").Filter(playwright.LocatorFilterOptions{
		Has: c.s.Page.GetByText(label, playwright.PageGetByTextOptions{Exact: playwright.Bool(true)}),
	}).First()
	if count(holder) == 0 {
		return "", nil
	}
	msg, err := text(ctx, holder.Locator(".invalid-feedback, .sylius-validation-error").First())
	return squash(msg), err
}

// SubmitAddressAndWaitValidation submits the address step and waits for
// validation messages to render.
func (c *CheckoutPage) SubmitAddressAndWaitValidation(ctx context.Context) error {
	if err := c.Next(ctx); err != nil {
		return err
	}
	return c.s.Wait(ctx, "address validation", detect.CountAtLeast("field errors",
		c.s.Page.Locator(".invalid-feedback, .sylius-validation-error"), 1).Eval)
}
