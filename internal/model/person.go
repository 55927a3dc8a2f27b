// Package model defines domain entities for the application.
package model

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/personvault/personvault/internal/identity"
)

// Validation errors for person construction.
var (
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrBirthDateInFuture = errors.New("birth date is in the future")
	ErrMissingName       = errors.New("first and last name are required")
)

// emailRegex matches the standard mailbox grammar with a dotted domain.
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9](?:[a-zA-Z0-9\-]*[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9\-]*[a-zA-Z0-9])?)*\.[a-zA-Z]{2,}$`)

// Person is an identity record keyed by its identity number.
// Instances are only produced by NewPerson, so a Person in hand is
// always valid. Field changes go through a fresh NewPerson call.
type Person struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	IdentityNumber string `json:"identityNumber"`
	Email          string `json:"email"`
	BirthDate      Date   `json:"birthDate"`

	// Credential fields, present only on records allowed to log in.
	IsAdmin        bool   `json:"isAdmin,omitempty"`
	HashedPassword string `json:"-"` // never serialized
}

// PersonInput carries the raw fields for constructing a Person.
type PersonInput struct {
	FirstName      string
	LastName       string
	IdentityNumber string
	Email          string
	BirthDate      Date
	IsAdmin        bool
	HashedPassword string
}

// NewPerson validates in and produces a Person. Validation stops at
// the first violated invariant. The identity number is normalized to
// its canonical punctuated form.
func NewPerson(in PersonInput) (*Person, error) {
	if in.FirstName == "" || in.LastName == "" {
		return nil, ErrMissingName
	}

	number, err := identity.Validate(in.IdentityNumber)
	if err != nil {
		return nil, err
	}

	if !emailRegex.MatchString(in.Email) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEmail, in.Email)
	}

	if in.BirthDate.After(Today()) {
		return nil, fmt.Errorf("%w: %s", ErrBirthDateInFuture, in.BirthDate)
	}

	return &Person{
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		IdentityNumber: number,
		Email:          in.Email,
		BirthDate:      in.BirthDate,
		IsAdmin:        in.IsAdmin,
		HashedPassword: in.HashedPassword,
	}, nil
}

// HasCredentials reports whether the record carries a password hash
// and can be considered for authentication.
func (p *Person) HasCredentials() bool {
	return p.HashedPassword != ""
}
