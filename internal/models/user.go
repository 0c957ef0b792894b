package models

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// User is the data a registration scenario submits
type User struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Password     string
	Verification string
	Subscribe    bool
}

// UserOption overrides one field of a built user
type UserOption func(*User)

// UniqueEmail returns an address that is unique per call, e.g. "anna+1f0c9b7e@example.com"
func UniqueEmail(prefix string) string {
	if prefix == "" {
		prefix = "user"
	}
	tag := strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	return prefix + "+" + tag + "@example.com"
}

// NewUser builds a valid registration with a fresh email
func NewUser(opts ...UserOption) User {
	u := User{
		FirstName:    "Anna",
		LastName:     "Smith",
		Email:        UniqueEmail("anna"),
		Password:     "qwer",
		Verification: "qwer",
	}
	for _, opt := range opts {
		opt(&u)
	}
	return u
}

// WithEmail overrides the email
func WithEmail(email string) UserOption {
	return func(u *User) { u.Email = email }
}

// WithPassword sets password and verification to the same value
func WithPassword(password string) UserOption {
	return func(u *User) {
		u.Password = password
		u.Verification = password
	}
}

// WithVerification sets only the verification, for mismatch scenarios
func WithVerification(v string) UserOption {
	return func(u *User) { u.Verification = v }
}

// WithName overrides first and last name
func WithName(first, last string) UserOption {
	return func(u *User) {
		u.FirstName = first
		u.LastName = last
	}
}

// WithPhone sets the optional phone number
func WithPhone(phone string) UserOption {
	return func(u *User) { u.Phone = phone }
}

// Subscribed opts into the newsletter
func Subscribed() UserOption {
	return func(u *User) { u.Subscribe = true }
}

// FieldErrors validates the registration form, one message per invalid field
func (u User) FieldErrors() []FieldError {
	var errs []FieldError
	text := func(field, value string, least int, missing string) {
		v := strings.TrimSpace(value)
		switch {
		case v == "":
			errs = append(errs, FieldError{field, missing})
		case len([]rune(v)) < least:
			errs = append(errs, FieldError{field, field + " must be at least " + strconv.Itoa(least) + " characters long."})
		}
	}

	text("First name", u.FirstName, 2, "Please enter your first name.")
	text("Last name", u.LastName, 2, "Please enter your last name.")
	if strings.TrimSpace(u.Email) == "" {
		errs = append(errs, FieldError{"Email", "Please enter your email."})
	} else if !ValidEmail(u.Email) {
		errs = append(errs, FieldError{"Email", "This email is invalid."})
	}
	text("Password", u.Password, 4, "Please enter your password.")
	if u.Password != "" && u.Password != u.Verification {
		errs = append(errs, FieldError{"Verification", "The entered passwords don't match"})
	}
	return errs
}
