package services

import (
	"errors"
	"testing"

	"github.com/adyen/storefront-e2e/internal/models"
	"github.com/adyen/storefront-e2e/internal/repository"
)

func TestAccountService_Authenticate(t *testing.T) {
	service := NewAccountService(repository.NewAccountStore(models.User{Email: "fashion@example.com", Password: "sylius"}))

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "demo credentials", email: "fashion@example.com", password: "sylius"},
		{name: "wrong password", email: "fashion@example.com", password: "nope", wantErr: ErrInvalidCredentials},
		{name: "unknown email", email: "ghost@example.com", password: "sylius", wantErr: ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Authenticate(tt.email, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Authenticate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAccountService_Register(t *testing.T) {
	service := NewAccountService(repository.NewAccountStore())
	existing := models.NewUser()
	if err := service.Register(existing); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tests := []struct {
		name    string
		user    models.User
		wantErr error
		field   string
		message string
	}{
		{name: "fresh user", user: models.NewUser()},
		{
			name:    "password mismatch",
			user:    models.NewUser(models.WithVerification("qwe1")),
			wantErr: ErrInvalidForm,
			field:   "Verification",
			message: "The entered passwords don't match",
		},
		{
			name:    "blank verification",
			user:    models.NewUser(models.WithVerification("")),
			wantErr: ErrInvalidForm,
			field:   "Verification",
			message: "The entered passwords don't match",
		},
		{
			name:    "missing first name",
			user:    models.NewUser(models.WithName("", "Smith")),
			wantErr: ErrInvalidForm,
			field:   "First name",
			message: "Please enter your first name.",
		},
		{
			name:    "short password",
			user:    models.NewUser(models.WithPassword("a")),
			wantErr: ErrInvalidForm,
			field:   "Password",
			message: "Password must be at least 4 characters long.",
		},
		{
			name:    "invalid email",
			user:    models.NewUser(models.WithEmail("sad@d")),
			wantErr: ErrInvalidForm,
			field:   "Email",
			message: "This email is invalid.",
		},
		{
			name:    "duplicate email",
			user:    models.NewUser(models.WithEmail(existing.Email)),
			wantErr: ErrInvalidForm,
			field:   "Email",
			message: "This email is already used.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.Register(tt.user)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Register() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.field == "" {
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if got := verr.Message(tt.field); got != tt.message {
				t.Errorf("Message(%q) = %q, want %q", tt.field, got, tt.message)
			}
		})
	}

	if _, err := service.Authenticate(existing.Email, existing.Password); err != nil {
		t.Errorf("registered user cannot log in: %v", err)
	}
}
