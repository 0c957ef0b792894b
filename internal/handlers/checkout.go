package handlers

import (
	"errors"
	"net/http"

	"github.com/adyen/storefront-e2e/internal/models"
	"go.uber.org/zap"
)

// CheckoutData represents the data for the checkout step templates
type CheckoutData struct {
	Step            string
	Cart            *models.Cart
	Email           string
	Billing         []FormField
	Shipping        []FormField
	DifferentShip   bool
	ShippingMethods []models.ShippingMethod
	PaymentMethods  []models.PaymentMethod
	BillingSummary  models.Address
	ShipSummary     models.Address
	Error           string
}

// CountryName is used by the summary to print the country label
func (CheckoutData) CountryName(code string) string {
	return countryName(code)
}

// ShippingName is used by the summary to print the carrier
func (CheckoutData) ShippingName(code string) string {
	if m, ok := models.ShippingMethodByCode(code); ok {
		return m.Name
	}
	return code
}

// PaymentName is used by the summary to print the payment method
func (CheckoutData) PaymentName(code string) string {
	for _, m := range models.PaymentMethods() {
		if m.Code == code {
			return m.Name
		}
	}
	return code
}

// CheckoutHandler serves the address, shipping, payment and complete steps
type CheckoutHandler struct {
	s *Storefront
}

// ServeHTTP handles GET and POST /checkout/{step}
func (h *CheckoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := h.s.sessions.ID(w, r)
	cart, err := h.s.carts.Cart(id)
	if err != nil {
		h.s.serverError(w, r, err)
		return
	}
	if cart.IsEmpty() {
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}

	step := r.PathValue("step")
	next, ok := requiredStep(step, cart.Checkout.Step)
	if next == "" {
		h.s.notFound(w, r)
		return
	}
	if !ok {
		http.Redirect(w, r, "/checkout/"+next, http.StatusSeeOther)
		return
	}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}
		switch step {
		case "address":
			h.postAddress(w, r, id, cart)
		case "shipping":
			h.choose(w, r, id, "payment", func() error {
				_, err := h.s.carts.SelectShipping(id, r.PostFormValue("shipping_method"))
				return err
			})
		case "payment":
			h.choose(w, r, id, "complete", func() error {
				_, err := h.s.carts.SelectPayment(id, r.PostFormValue("payment_method"))
				return err
			})
		case "complete":
			h.placeOrder(w, r, id)
		}
		return
	}

	h.render(w, r, http.StatusOK, step, cart, nil)
}

// requiredStep returns the step to show and whether the cart has reached it.
// An unknown step returns ("", true).
func requiredStep(step string, reached models.CheckoutStep) (string, bool) {
	order := map[models.CheckoutStep]int{
		models.StepCart:     0,
		models.StepAddress:  1,
		models.StepShipping: 2,
		models.StepPayment:  3,
		models.StepComplete: 4,
	}
	need := map[string]int{"address": 0, "shipping": 1, "payment": 2, "complete": 3}
	steps := []string{"address", "shipping", "payment", "complete"}

	n, ok := need[step]
	if !ok {
		return "", true
	}
	if order[reached] < n {
		return steps[order[reached]], false
	}
	return step, true
}

func (h *CheckoutHandler) postAddress(w http.ResponseWriter, r *http.Request, id string, cart *models.Cart) {
	billing := addressFromForm(r, "billingAddress")
	var ship *models.Address
	if r.PostFormValue("sylius_shop_checkout_address[differentShippingAddress]") != "" {
		a := addressFromForm(r, "shippingAddress")
		a.Email = billing.Email
		ship = &a
	}

	var errs []models.FieldError
	errs = append(errs, billing.FieldErrors()...)
	var shipErrs []models.FieldError
	if ship != nil {
		shipErrs = ship.FieldErrors()
	}
	if len(errs) > 0 || len(shipErrs) > 0 {
		cart.Checkout.Billing = billing
		cart.Checkout.ShippingAddress = ship
		h.render(w, r, http.StatusUnprocessableEntity, "address", cart, &addressErrors{billing: errs, shipping: shipErrs})
		return
	}

	if _, err := h.s.carts.SetAddress(id, billing, ship); err != nil {
		h.s.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/checkout/shipping", http.StatusSeeOther)
}

func (h *CheckoutHandler) choose(w http.ResponseWriter, r *http.Request, id, next string, apply func() error) {
	err := apply()
	switch {
	case err == nil:
		http.Redirect(w, r, "/checkout/"+next, http.StatusSeeOther)
	case errors.Is(err, models.ErrUnknownShipping), errors.Is(err, models.ErrUnknownPayment):
		h.s.sessions.AddFlash(id, Flash{Kind: "danger", Message: "Please select a method."})
		http.Redirect(w, r, r.URL.Path, http.StatusSeeOther)
	default:
		h.s.serverError(w, r, err)
	}
}

func (h *CheckoutHandler) placeOrder(w http.ResponseWriter, r *http.Request, id string) {
	cart, err := h.s.carts.PlaceOrder(id)
	if err != nil {
		h.s.serverError(w, r, err)
		return
	}
	h.s.logger.Info("order placed",
		zap.String("number", cart.Checkout.OrderNumber),
		zap.Int64("total", cart.OrderTotal()),
	)
	h.s.sessions.SetLastOrder(id, cart.Checkout.OrderNumber)
	if err := h.s.carts.Clear(id); err != nil {
		h.s.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/order/thank-you", http.StatusSeeOther)
}

type addressErrors struct {
	billing  []models.FieldError
	shipping []models.FieldError
}

func (h *CheckoutHandler) render(w http.ResponseWriter, r *http.Request, status int, step string, cart *models.Cart, errs *addressErrors) {
	titles := map[string]string{"address": "Address", "shipping": "Shipping", "payment": "Payment", "complete": "Complete"}
	data := h.s.page(w, r, titles[step])

	billing := cart.Checkout.Billing
	if billing.Email == "" {
		if u := data.User; u != nil {
			billing.Email = u.Email
		}
	}
	ship := billing
	if cart.Checkout.ShippingAddress != nil {
		ship = *cart.Checkout.ShippingAddress
	}
	if errs == nil {
		errs = &addressErrors{}
	}

	data.Page = CheckoutData{
		Step:            step,
		Cart:            cart,
		Email:           billing.Email,
		Billing:         addressFields("billingAddress", billing, fieldErrors(errs.billing), true),
		Shipping:        addressFields("shippingAddress", ship, fieldErrors(errs.shipping), false),
		DifferentShip:   cart.Checkout.ShippingAddress != nil,
		ShippingMethods: models.ShippingMethods(),
		PaymentMethods:  models.PaymentMethods(),
		BillingSummary:  billing,
		ShipSummary:     ship,
	}
	h.s.renderer.Render(w, status, "checkout_"+step, data)
}
