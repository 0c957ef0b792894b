package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// CheckoutStep represents the checkout progress of a cart
type CheckoutStep string

// Checkout steps, in order
const (
	StepCart     CheckoutStep = "cart"
	StepAddress  CheckoutStep = "addressed"
	StepShipping CheckoutStep = "shipping_selected"
	StepPayment  CheckoutStep = "payment_selected"
	StepComplete CheckoutStep = "completed"
)

// Checkout errors
var (
	ErrInvalidStepTransition = errors.New("invalid checkout step transition")
	ErrInvalidAddress        = errors.New("address is incomplete")
	ErrUnknownShipping       = errors.New("unknown shipping method")
	ErrUnknownPayment        = errors.New("unknown payment method")
)

// Address is a billing or shipping address
type Address struct {
	Email     string
	FirstName string
	LastName  string
	Street    string
	Country   string
	City      string
	Postcode  string
}

// FieldError is a validation message attached to one form field
type FieldError struct {
	Field   string
	Message string
}

// FieldErrors validates the address the way the checkout form does and lists
// one message per invalid field, in form order
func (a Address) FieldErrors() []FieldError {
	var errs []FieldError
	required := func(field, value, missing string) bool {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, FieldError{field, missing})
			return false
		}
		return true
	}
	minLen := func(field, value string) {
		if len([]rune(strings.TrimSpace(value))) < 2 {
			errs = append(errs, FieldError{field, field + " must be at least 2 characters long."})
		}
	}

	if required("Email", a.Email, "Please enter your email.") && !ValidEmail(a.Email) {
		errs = append(errs, FieldError{"Email", "This email is invalid."})
	}
	if required("First name", a.FirstName, "Please enter first name.") {
		minLen("First name", a.FirstName)
	}
	if required("Last name", a.LastName, "Please enter last name.") {
		minLen("Last name", a.LastName)
	}
	if required("Street address", a.Street, "Please enter street.") {
		minLen("Street address", a.Street)
	}
	required("Country", a.Country, "Please select country.")
	if required("City", a.City, "Please enter city.") {
		minLen("City", a.City)
	}
	required("Postcode", a.Postcode, "Please enter postcode.")
	return errs
}

// Validate returns ErrInvalidAddress naming the first invalid field
func (a Address) Validate() error {
	if errs := a.FieldErrors(); len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidAddress, errs[0].Message)
	}
	return nil
}

// ValidEmail accepts local@domain.tld with a dot in the domain
func ValidEmail(email string) bool {
	local, domain, ok := strings.Cut(strings.TrimSpace(email), "@")
	if !ok || local == "" || strings.ContainsAny(domain, "@ ") {
		return false
	}
	dot := strings.LastIndex(domain, ".")
	return dot > 0 && dot < len(domain)-1
}

// ShippingMethod is a selectable carrier with a flat fee
type ShippingMethod struct {
	Code string
	Name string
	Fee  int64
}

// PaymentMethod is a selectable way to pay
type PaymentMethod struct {
	Code string
	Name string
}

// ShippingMethods lists the carriers the fixture offers
func ShippingMethods() []ShippingMethod {
	return []ShippingMethod{
		{Code: "ups", Name: "UPS", Fee: 849},
		{Code: "fedex", Name: "FedEx", Fee: 1299},
	}
}

// PaymentMethods lists the payment options the fixture offers
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		{Code: "cash_on_delivery", Name: "Cash on delivery"},
		{Code: "bank_transfer", Name: "Bank transfer"},
	}
}

// ShippingMethodByCode finds a shipping method
func ShippingMethodByCode(code string) (ShippingMethod, bool) {
	for _, m := range ShippingMethods() {
		if m.Code == code {
			return m, true
		}
	}
	return ShippingMethod{}, false
}

func paymentMethodByCode(code string) (PaymentMethod, bool) {
	for _, m := range PaymentMethods() {
		if m.Code == code {
			return m, true
		}
	}
	return PaymentMethod{}, false
}

// Checkout holds the state of the checkout flow
type Checkout struct {
	Step            CheckoutStep
	Billing         Address
	ShippingAddress *Address
	Shipping        string
	Payment         string
	OrderNumber     string
	CompletedAt     time.Time
}

// SetAddress records addresses and moves to the shipping step. A nil ship
// address means shipping to the billing address.
func (c *Cart) SetAddress(billing Address, ship *Address) error {
	if c.IsEmpty() {
		return ErrCartEmpty
	}
	if c.Checkout.Step == StepComplete {
		return fmt.Errorf("%w: checkout already completed", ErrInvalidStepTransition)
	}
	if err := billing.Validate(); err != nil {
		return err
	}
	if ship != nil {
		if err := ship.Validate(); err != nil {
			return fmt.Errorf("shipping %w", err)
		}
	}

	c.Checkout.Billing = billing
	c.Checkout.ShippingAddress = ship
	c.Checkout.Step = StepAddress
	if c.Checkout.Shipping == "" {
		c.Checkout.Shipping = ShippingMethods()[0].Code
	}
	c.touch()
	return nil
}

// SelectShipping picks a shipping method. It is allowed on the shipping step
// and again later, which resets the payment choice.
func (c *Cart) SelectShipping(code string) error {
	if c.Checkout.Step == StepCart || c.Checkout.Step == StepComplete {
		return fmt.Errorf("%w: cannot select shipping at step %s", ErrInvalidStepTransition, c.Checkout.Step)
	}
	if _, ok := ShippingMethodByCode(code); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownShipping, code)
	}
	c.Checkout.Shipping = code
	c.Checkout.Payment = ""
	c.Checkout.Step = StepShipping
	c.touch()
	return nil
}

// SelectPayment picks a payment method after shipping was chosen
func (c *Cart) SelectPayment(code string) error {
	if c.Checkout.Step != StepShipping && c.Checkout.Step != StepPayment {
		return fmt.Errorf("%w: cannot select payment at step %s", ErrInvalidStepTransition, c.Checkout.Step)
	}
	if _, ok := paymentMethodByCode(code); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPayment, code)
	}
	c.Checkout.Payment = code
	c.Checkout.Step = StepPayment
	c.touch()
	return nil
}

// Complete places the order
func (c *Cart) Complete(orderNumber string) error {
	if c.Checkout.Step != StepPayment {
		return fmt.Errorf("%w: cannot complete at step %s", ErrInvalidStepTransition, c.Checkout.Step)
	}
	c.Checkout.Step = StepComplete
	c.Checkout.OrderNumber = orderNumber
	c.Checkout.CompletedAt = time.Now()
	c.touch()
	return nil
}

// IsCompleted returns true once the order was placed
func (c *Cart) IsCompleted() bool {
	return c.Checkout.Step == StepComplete
}
