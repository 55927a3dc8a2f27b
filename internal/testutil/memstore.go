package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/personvault/personvault/internal/model"
	"github.com/personvault/personvault/internal/repository"
)

// MemoryStore is an in-memory person store for tests. It mirrors the
// repository's error contract, including the listing cap.
type MemoryStore struct {
	mu     sync.RWMutex
	people map[string]*model.Person
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{people: make(map[string]*model.Person)}
}

// CreatePerson stores a record, rejecting duplicate identity numbers.
func (m *MemoryStore) CreatePerson(ctx context.Context, person *model.Person) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.people[person.IdentityNumber]; ok {
		return repository.ErrDuplicateIdentity
	}

	clone := *person
	m.people[person.IdentityNumber] = &clone
	return nil
}

// GetPerson retrieves a record by identity number.
func (m *MemoryStore) GetPerson(ctx context.Context, identityNumber string) (*model.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	person, ok := m.people[identityNumber]
	if !ok {
		return nil, repository.ErrPersonNotFound
	}

	clone := *person
	return &clone, nil
}

// ListPeople returns stored records, capped like the real store.
func (m *MemoryStore) ListPeople(ctx context.Context) ([]*model.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.people))
	for key := range m.people {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	if len(keys) > repository.MaxPeopleListed {
		keys = keys[:repository.MaxPeopleListed]
	}

	people := make([]*model.Person, 0, len(keys))
	for _, key := range keys {
		clone := *m.people[key]
		people = append(people, &clone)
	}
	return people, nil
}

// UpdatePerson replaces the record if present; absent keys are a no-op.
func (m *MemoryStore) UpdatePerson(ctx context.Context, identityNumber string, person *model.Person) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.people[identityNumber]; !ok {
		return nil
	}

	clone := *person
	m.people[identityNumber] = &clone
	return nil
}

// RemovePerson deletes the record if present; absent keys are a no-op.
func (m *MemoryStore) RemovePerson(ctx context.Context, identityNumber string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.people, identityNumber)
	return nil
}

// Len reports the number of stored records.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.people)
}
