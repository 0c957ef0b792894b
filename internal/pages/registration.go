package pages

import (
	"context"
	"fmt"
	"regexp"

	"github.com/adyen/storefront-e2e/internal/detect"
	"github.com/adyen/storefront-e2e/internal/locate"
	"github.com/adyen/storefront-e2e/internal/models"
	"github.com/playwright-community/playwright-go"
)

var (
	registerName       = regexp.MustCompile(`(?i)^register$`)
	registrationTitle  = regexp.MustCompile(`(?i)create (a new )?customer account|create an account`)
	createAccountName  = regexp.MustCompile(`(?i)^create an account$`)
	registeredHeading  = regexp.MustCompile(`(?i)thank you for your registration`)
	registeredFlash    = regexp.MustCompile(`(?i)thank you for register|check your email`)
	registeredRoute    = regexp.MustCompile(`/register/thank-you`)
	registrationPrefix = "#sylius_shop_customer_registration_"
)

// RegistrationPage is the /register form.
type RegistrationPage struct {
	s *Session
}

func NewRegistrationPage(s *Session) *RegistrationPage {
	return &RegistrationPage{s: s}
}

// Open goes home and follows the header Register link.
func (r *RegistrationPage) Open(ctx context.Context) error {
	if err := r.s.GotoPath(RouteHome); err != nil {
		return err
	}
	link := r.s.Page.GetByRole(*playwright.AriaRoleLink, playwright.PageGetByRoleOptions{Name: registerName}).First()
	if err := link.Click(); err != nil {
		return fmt.Errorf("failed to open registration: %w", err)
	}
	heading := r.s.Page.GetByRole(*playwright.AriaRoleHeading, playwright.PageGetByRoleOptions{Name: registrationTitle}).First()
	return r.s.WaitVisible(ctx, "registration heading", heading)
}

func (r *RegistrationPage) input(id, label string) *locate.Chain[playwright.Locator] {
	return locate.Of(
		r.s.Page.Locator(registrationPrefix+id),
		r.s.Page.GetByLabel(label, playwright.PageGetByLabelOptions{Exact: playwright.Bool(true)}),
	)
}

// Fill types every non-empty field of u and sets the newsletter checkbox.
func (r *RegistrationPage) Fill(ctx context.Context, u models.User) error {
	for _, f := range []struct{ id, label, value string }{
		{"firstName", "First name", u.FirstName},
		{"lastName", "Last name", u.LastName},
		{"email", "Email", u.Email},
		{"phoneNumber", "Phone number", u.Phone},
		{"user_plainPassword_first", "Password", u.Password},
		{"user_plainPassword_second", "Verification", u.Verification},
	} {
		if f.value == "" {
			continue
		}
		res := r.input(f.id, f.label).Resolve(ctx)
		if !res.Matched() {
			return fmt.Errorf("registration field %q not found", f.label)
		}
		if err := res.Locator.First().Fill(f.value); err != nil {
			return fmt.Errorf("failed to fill %s: %w", f.label, err)
		}
	}

	newsletter := r.input("subscribedToNewsletter", "Subscribe to the newsletter").Resolve(ctx)
	if !newsletter.Matched() {
		return nil
	}
	box := newsletter.Locator.First()
	var err error
	if u.Subscribe {
		err = box.Check()
	} else {
		err = box.Uncheck()
	}
	if err != nil {
		return fmt.Errorf("failed to set newsletter: %w", err)
	}
	return nil
}

// SubmitForm presses "Create an account".
func (r *RegistrationPage) SubmitForm() error {
	button := r.s.Page.GetByRole(*playwright.AriaRoleButton, playwright.PageGetByRoleOptions{Name: createAccountName}).First()
	if err := button.Click(); err != nil {
		return fmt.Errorf("failed to submit registration: %w", err)
	}
	return nil
}

// Succeeded fires on any sign the account was created.
func (r *RegistrationPage) Succeeded() *detect.Detector {
	return detect.Any("registered",
		detect.URLMatches("thank you route", r.s.Page, registeredRoute),
		detect.Visible("thank you heading", r.s.Page.GetByRole(*playwright.AriaRoleHeading,
			playwright.PageGetByRoleOptions{Name: registeredHeading}).First()),
		detect.Visible("success flash", r.s.Page.GetByRole(*playwright.AriaRoleAlert).
			Filter(playwright.LocatorFilterOptions{HasText: registeredFlash}).First()),
	)
}

// FieldError is the validation message under the field labelled label.
func (r *RegistrationPage) FieldError(ctx context.Context, label string) (string, error) {
	return NewCheckoutPage(r.s).FieldError(ctx, label)
}
