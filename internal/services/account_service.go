package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/adyen/storefront-e2e/internal/models"
	"github.com/adyen/storefront-e2e/internal/repository"
)

// ErrInvalidCredentials is returned for unknown emails and wrong passwords alike
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidForm is matched by every *ValidationError
var ErrInvalidForm = errors.New("form is invalid")

// ValidationError carries the per-field messages of a rejected form
type ValidationError struct {
	Fields []models.FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return "invalid form: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidForm }

// Message returns the message for field, or ""
func (e *ValidationError) Message(field string) string {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}

// AccountRepository defines the interface for account persistence
type AccountRepository interface {
	Create(u models.User) error
	Find(email string) (models.User, error)
}

// AccountService handles fixture login and registration
type AccountService struct {
	accounts AccountRepository
}

// NewAccountService creates a new account service
func NewAccountService(accounts AccountRepository) *AccountService {
	return &AccountService{accounts: accounts}
}

// Authenticate checks an email and password pair
func (s *AccountService) Authenticate(email, password string) (models.User, error) {
	u, err := s.accounts.Find(email)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to find account: %w", err)
	}
	if u.Password != password {
		return models.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Register validates and stores a new account
func (s *AccountService) Register(u models.User) error {
	if errs := u.FieldErrors(); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	err := s.accounts.Create(u)
	if errors.Is(err, repository.ErrAccountExists) {
		return &ValidationError{Fields: []models.FieldError{{Field: "Email", Message: "This email is already used."}}}
	}
	if err != nil {
		return fmt.Errorf("failed to register: %w", err)
	}
	return nil
}
