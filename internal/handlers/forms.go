package handlers

import (
	"net/http"
	"strings"

	"github.com/adyen/storefront-e2e/internal/models"
)

// FormField is one rendered input with its label and validation message
type FormField struct {
	ID      string
	Name    string
	Label   string
	Type    string // text, email, password, tel, number, select or checkbox
	Value   string
	Error   string
	Checked bool
	Options []Option
}

// Countries lists the country select of address forms
func Countries() []Option {
	return []Option{
		{Label: "Poland", Value: "PL"},
		{Label: "France", Value: "FR"},
		{Label: "United States", Value: "US"},
		{Label: "Germany", Value: "DE"},
	}
}

func countryName(code string) string {
	for _, c := range Countries() {
		if c.Value == code {
			return c.Label
		}
	}
	return code
}

// fieldErrors indexes validation messages by field label
func fieldErrors(errs []models.FieldError) map[string]string {
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		if _, ok := out[e.Field]; !ok {
			out[e.Field] = e.Message
		}
	}
	return out
}

// addressFields renders an address fieldset; prefix is billingAddress or shippingAddress
func addressFields(prefix string, a models.Address, errs map[string]string, withEmail bool) []FormField {
	id := func(f string) string { return "sylius_shop_checkout_address_" + prefix + "_" + f }
	name := func(f string) string { return "sylius_shop_checkout_address[" + prefix + "][" + f + "]" }

	var fields []FormField
	if withEmail {
		fields = append(fields, FormField{
			ID: "sylius_shop_checkout_address_customer_email", Name: "sylius_shop_checkout_address[customer][email]",
			Label: "Email", Type: "email", Value: a.Email, Error: errs["Email"],
		})
	}
	return append(fields,
		FormField{ID: id("firstName"), Name: name("firstName"), Label: "First name", Type: "text", Value: a.FirstName, Error: errs["First name"]},
		FormField{ID: id("lastName"), Name: name("lastName"), Label: "Last name", Type: "text", Value: a.LastName, Error: errs["Last name"]},
		FormField{ID: id("street"), Name: name("street"), Label: "Street address", Type: "text", Value: a.Street, Error: errs["Street address"]},
		FormField{ID: id("countryCode"), Name: name("countryCode"), Label: "Country", Type: "select", Value: a.Country, Error: errs["Country"], Options: Countries()},
		FormField{ID: id("city"), Name: name("city"), Label: "City", Type: "text", Value: a.City, Error: errs["City"]},
		FormField{ID: id("postcode"), Name: name("postcode"), Label: "Postcode", Type: "text", Value: a.Postcode, Error: errs["Postcode"]},
	)
}

// addressFromForm reads an address fieldset posted by addressFields
func addressFromForm(r *http.Request, prefix string) models.Address {
	get := func(f string) string {
		return strings.TrimSpace(r.PostFormValue("sylius_shop_checkout_address[" + prefix + "][" + f + "]"))
	}
	return models.Address{
		Email:     strings.TrimSpace(r.PostFormValue("sylius_shop_checkout_address[customer][email]")),
		FirstName: get("firstName"),
		LastName:  get("lastName"),
		Street:    get("street"),
		Country:   get("countryCode"),
		City:      get("city"),
		Postcode:  get("postcode"),
	}
}
