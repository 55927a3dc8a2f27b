// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/personvault/personvault/internal/identity"
	"github.com/personvault/personvault/internal/metrics"
	"github.com/personvault/personvault/internal/model"
	"github.com/personvault/personvault/internal/repository"
)

// Service errors.
var (
	ErrPersonNotFound    = errors.New("person not found")
	ErrDuplicateIdentity = errors.New("identity number already registered")
	ErrIdentityMismatch  = errors.New("identity number in path does not match body")
)

// PersonStore is the persistence contract the service depends on.
// *repository.Repository satisfies it.
type PersonStore interface {
	CreatePerson(ctx context.Context, person *model.Person) error
	GetPerson(ctx context.Context, identityNumber string) (*model.Person, error)
	ListPeople(ctx context.Context) ([]*model.Person, error)
	UpdatePerson(ctx context.Context, identityNumber string, person *model.Person) error
	RemovePerson(ctx context.Context, identityNumber string) error
}

// PersonService handles person record business logic.
type PersonService struct {
	store   PersonStore
	metrics metrics.Recorder
}

// NewPersonService creates a new PersonService.
func NewPersonService(store PersonStore, recorder metrics.Recorder) *PersonService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &PersonService{
		store:   store,
		metrics: recorder,
	}
}

// CreatePerson registers a new person record.
// A duplicate identity number yields ErrDuplicateIdentity. The
// existence pre-check and the insert are two separate steps, so two
// concurrent creates can both pass the pre-check; the storage layer's
// unique index is the backstop and its violation is translated to the
// same conflict outcome.
func (s *PersonService) CreatePerson(ctx context.Context, person *model.Person) (*model.Person, error) {
	existing, err := s.store.GetPerson(ctx, person.IdentityNumber)
	if err != nil && !errors.Is(err, repository.ErrPersonNotFound) {
		return nil, fmt.Errorf("failed to check for existing person: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateIdentity
	}

	if err := s.store.CreatePerson(ctx, person); err != nil {
		if errors.Is(err, repository.ErrDuplicateIdentity) {
			return nil, ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("failed to create person: %w", err)
	}

	s.metrics.IncPersonCreated()

	return person, nil
}

// GetPerson retrieves a person by identity number.
func (s *PersonService) GetPerson(ctx context.Context, identityNumber string) (*model.Person, error) {
	person, err := s.store.GetPerson(ctx, s.canonicalKey(identityNumber))
	if err != nil {
		if errors.Is(err, repository.ErrPersonNotFound) {
			return nil, ErrPersonNotFound
		}
		return nil, err
	}

	return person, nil
}

// ListPeople retrieves the capped full listing.
func (s *PersonService) ListPeople(ctx context.Context) ([]*model.Person, error) {
	return s.store.ListPeople(ctx)
}

// UpdatePerson fully replaces the record at pathIdentityNumber.
// The path/body key comparison happens before any storage access:
// a mismatch is reported regardless of whether either key exists.
func (s *PersonService) UpdatePerson(ctx context.Context, pathIdentityNumber string, person *model.Person) (*model.Person, error) {
	key := s.canonicalKey(pathIdentityNumber)
	if key != person.IdentityNumber {
		return nil, ErrIdentityMismatch
	}

	if _, err := s.GetPerson(ctx, key); err != nil {
		return nil, err
	}

	if err := s.store.UpdatePerson(ctx, key, person); err != nil {
		return nil, fmt.Errorf("failed to update person: %w", err)
	}

	s.metrics.IncPersonUpdated()

	return person, nil
}

// DeletePerson removes the record and returns it.
func (s *PersonService) DeletePerson(ctx context.Context, identityNumber string) (*model.Person, error) {
	key := s.canonicalKey(identityNumber)

	person, err := s.GetPerson(ctx, key)
	if err != nil {
		return nil, err
	}

	if err := s.store.RemovePerson(ctx, key); err != nil {
		return nil, fmt.Errorf("failed to remove person: %w", err)
	}

	s.metrics.IncPersonDeleted()

	return person, nil
}

// canonicalKey normalizes a raw identity number to the canonical form
// used as the storage key. Values that fail validation are returned
// as-is: a malformed key simply never matches a stored record.
func (s *PersonService) canonicalKey(raw string) string {
	normalized, err := identity.Validate(raw)
	if err != nil {
		return raw
	}
	return normalized
}
