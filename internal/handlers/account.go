package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/adyen/storefront-e2e/internal/models"
	"github.com/adyen/storefront-e2e/internal/services"
	"go.uber.org/zap"
)

// LoginData represents the data for the login template
type LoginData struct {
	DemoUser string
	DemoPass string
	Username FormField
	Password FormField
	Remember FormField
	Failed   bool
}

// RegisterData represents the data for the register template
type RegisterData struct {
	Fields []FormField
}

// ResetData represents the data for the forgotten password template
type ResetData struct {
	Email FormField
	Sent  bool
}

// AccountHandler serves login, logout, registration and the account pages
type AccountHandler struct {
	s *Storefront
}

// Login handles GET and POST /login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := h.s.sessions.ID(w, r)

	page := LoginData{
		DemoUser: h.s.demoUser.Email,
		DemoPass: h.s.demoUser.Password,
		Username: FormField{ID: "_username", Name: "_username", Label: "Username", Type: "text"},
		Password: FormField{ID: "_password", Name: "_password", Label: "Password", Type: "password"},
		Remember: FormField{ID: "_remember_me", Name: "_remember_me", Label: "Remember me", Type: "checkbox"},
	}
	status := http.StatusOK

	if r.Method == http.MethodPost {
		email := strings.TrimSpace(r.PostFormValue("_username"))
		u, err := h.s.accounts.Authenticate(email, r.PostFormValue("_password"))
		switch {
		case err == nil:
			h.s.sessions.SetUser(id, &u)
			h.s.logger.Debug("user logged in", zap.String("email", u.Email))
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		case errors.Is(err, services.ErrInvalidCredentials):
			page.Failed = true
			page.Username.Value = email
			status = http.StatusUnauthorized
		default:
			h.s.serverError(w, r, err)
			return
		}
	}

	data := h.s.page(w, r, "Login")
	data.Page = page
	h.s.renderer.Render(w, status, "login", data)
}

// Logout handles /logout
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	id := h.s.sessions.ID(w, r)
	h.s.sessions.SetUser(id, nil)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Register handles GET and POST /register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := h.s.sessions.ID(w, r)

	var u models.User
	var invalid map[string]string
	status := http.StatusOK

	if r.Method == http.MethodPost {
		u = models.User{
			FirstName:    strings.TrimSpace(r.PostFormValue("sylius_shop_customer_registration[firstName]")),
			LastName:     strings.TrimSpace(r.PostFormValue("sylius_shop_customer_registration[lastName]")),
			Email:        strings.TrimSpace(r.PostFormValue("sylius_shop_customer_registration[email]")),
			Phone:        strings.TrimSpace(r.PostFormValue("sylius_shop_customer_registration[phoneNumber]")),
			Password:     r.PostFormValue("sylius_shop_customer_registration[user][plainPassword][first]"),
			Verification: r.PostFormValue("sylius_shop_customer_registration[user][plainPassword][second]"),
			Subscribe:    r.PostFormValue("sylius_shop_customer_registration[subscribedToNewsletter]") != "",
		}

		err := h.s.accounts.Register(u)
		var verr *services.ValidationError
		switch {
		case err == nil:
			h.s.logger.Debug("user registered", zap.String("email", u.Email))
			h.s.sessions.AddFlash(id, Flash{Kind: "success", Message: "Thank you for registering, check your email to verify your account."})
			http.Redirect(w, r, "/register/thank-you", http.StatusSeeOther)
			return
		case errors.As(err, &verr):
			invalid = fieldErrors(verr.Fields)
			status = http.StatusUnprocessableEntity
		default:
			h.s.serverError(w, r, err)
			return
		}
	}

	field := func(name, label, typ, value string) FormField {
		return FormField{
			ID:    "sylius_shop_customer_registration_" + name,
			Name:  "sylius_shop_customer_registration[" + strings.Replace(name, "_", "][", -1) + "]",
			Label: label, Type: typ, Value: value, Error: invalid[label],
		}
	}
	fields := []FormField{
		field("firstName", "First name", "text", u.FirstName),
		field("lastName", "Last name", "text", u.LastName),
		field("email", "Email", "email", u.Email),
		field("phoneNumber", "Phone number", "tel", u.Phone),
		field("user_plainPassword_first", "Password", "password", ""),
		field("user_plainPassword_second", "Verification", "password", ""),
		field("subscribedToNewsletter", "Subscribe to the newsletter", "checkbox", ""),
	}
	fields[len(fields)-1].Checked = u.Subscribe

	data := h.s.page(w, r, "Register")
	data.Page = RegisterData{Fields: fields}
	h.s.renderer.Render(w, status, "register", data)
}

// Registered handles GET /register/thank-you
func (h *AccountHandler) Registered(w http.ResponseWriter, r *http.Request) {
	data := h.s.page(w, r, "Thank you for your registration")
	h.s.renderer.Render(w, http.StatusOK, "registered", data)
}

// ForgottenPassword handles GET and POST /forgotten-password
func (h *AccountHandler) ForgottenPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	page := ResetData{Email: FormField{
		ID: "sylius_shop_request_password_reset_email", Name: "sylius_shop_request_password_reset[email]",
		Label: "Email", Type: "email",
	}}
	status := http.StatusOK
	if r.Method == http.MethodPost {
		page.Email.Value = strings.TrimSpace(r.PostFormValue(page.Email.Name))
		if models.ValidEmail(page.Email.Value) {
			page.Sent = true
		} else {
			page.Email.Error = "This email is invalid."
			status = http.StatusUnprocessableEntity
		}
	}

	data := h.s.page(w, r, "Reset password")
	data.Page = page
	h.s.renderer.Render(w, status, "forgotten_password", data)
}

// Dashboard handles GET /account
func (h *AccountHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	data := h.s.page(w, r, "My account")
	if data.User == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	h.s.renderer.Render(w, http.StatusOK, "account", data)
}
