package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/personvault/personvault/internal/metrics"
	"github.com/personvault/personvault/internal/model"
	"github.com/personvault/personvault/internal/repository"
	"github.com/personvault/personvault/internal/testutil"
)

func newPerson(t *testing.T, identityNumber string) *model.Person {
	t.Helper()
	return testutil.NewTestPerson(t, identityNumber)
}

func TestCreatePerson(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemoryStore()
	recorder := metrics.NewInMemory()
	svc := NewPersonService(store, recorder)

	person := newPerson(t, "609.350.354-27")

	created, err := svc.CreatePerson(context.Background(), person)
	if err != nil {
		t.Fatalf("CreatePerson() error = %v", err)
	}
	if created.IdentityNumber != "609.350.354-27" {
		t.Errorf("IdentityNumber = %q, want %q", created.IdentityNumber, "609.350.354-27")
	}
	if got := recorder.Snapshot().PeopleCreated; got != 1 {
		t.Errorf("PeopleCreated = %d, want 1", got)
	}
}

func TestCreatePersonDuplicate(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemoryStore()
	svc := NewPersonService(store, nil)

	if _, err := svc.CreatePerson(context.Background(), newPerson(t, "609.350.354-27")); err != nil {
		t.Fatalf("CreatePerson() error = %v", err)
	}

	_, err := svc.CreatePerson(context.Background(), newPerson(t, "609.350.354-27"))
	if !errors.Is(err, ErrDuplicateIdentity) {
		t.Errorf("CreatePerson() error = %v, want ErrDuplicateIdentity", err)
	}
}

// raceStore simulates a concurrent insert slipping between the
// existence pre-check and the insert itself.
type raceStore struct {
	*testutil.MemoryStore
	checked bool
}

func (r *raceStore) GetPerson(ctx context.Context, identityNumber string) (*model.Person, error) {
	if !r.checked {
		r.checked = true
		return nil, repository.ErrPersonNotFound
	}
	return r.MemoryStore.GetPerson(ctx, identityNumber)
}

func (r *raceStore) CreatePerson(ctx context.Context, person *model.Person) error {
	return repository.ErrDuplicateIdentity
}

func TestCreatePersonUniqueIndexBackstop(t *testing.T) {
	t.Parallel()

	svc := NewPersonService(&raceStore{MemoryStore: testutil.NewMemoryStore()}, nil)

	_, err := svc.CreatePerson(context.Background(), newPerson(t, "609.350.354-27"))
	if !errors.Is(err, ErrDuplicateIdentity) {
		t.Errorf("CreatePerson() error = %v, want ErrDuplicateIdentity", err)
	}
}

func TestGetPerson(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemoryStore()
	svc := NewPersonService(store, nil)

	if _, err := svc.CreatePerson(context.Background(), newPerson(t, "609.350.354-27")); err != nil {
		t.Fatalf("CreatePerson() error = %v", err)
	}

	got, err := svc.GetPerson(context.Background(), "609.350.354-27")
	if err != nil {
		t.Fatalf("GetPerson() error = %v", err)
	}
	if got.FirstName != "Mickey" {
		t.Errorf("FirstName = %q, want %q", got.FirstName, "Mickey")
	}
}

func TestGetPersonNormalizesKey(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemoryStore()
	svc := NewPersonService(store, nil)

	if _, err := svc.CreatePerson(context.Background(), newPerson(t, "609.350.354-27")); err != nil {
		t.Fatalf("CreatePerson() error = %v", err)
	}

	// Bare digits resolve to the same canonical record.
	got, err := svc.GetPerson(context.Background(), "60935035427")
	if err != nil {
		t.Fatalf("GetPerson() error = %v", err)
	}
	if got.IdentityNumber != "609.350.354-27" {
		t.Errorf("IdentityNumber = %q, want canonical form", got.IdentityNumber)
	}
}

func TestGetPersonNotFound(t *testing.T) {
	t.Parallel()

	svc := NewPersonService(testutil.NewMemoryStore(), nil)

	_, err := svc.GetPerson(context.Background(), "857.545.040-98")
	if !errors.Is(err, ErrPersonNotFound) {
		t.Errorf("GetPerson() error = %v, want ErrPersonNotFound", err)
	}
}

func TestListPeople(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemoryStore()
	svc := NewPersonService(store, nil)

	numbers := []string{"609.350.354-27", "673.810.785-46", "324.453.314-04"}
	for i, number := range numbers {
		person := newPerson(t, number)
		person.Email = fmt.Sprintf("person%d@disney.com", i)
		if _, err := svc.CreatePerson(context.Background(), person); err != nil {
			t.Fatalf("CreatePerson(%s) error = %v", number, err)
		}
	}

	people, err := svc.ListPeople(context.Background())
	if err != nil {
		t.Fatalf("ListPeople() error = %v", err)
	}
	if len(people) != len(numbers) {
		t.Errorf("len(people) = %d, want %d", len(people), len(numbers))
	}
}

func TestUpdatePerson(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemoryStore()
	svc := NewPersonService(store, nil)

	if _, err := svc.CreatePerson(context.Background(), newPerson(t, "609.350.354-27")); err != nil {
		t.Fatalf("CreatePerson() error = %v", err)
	}

	updated := newPerson(t, "609.350.354-27")
	updated.FirstName = "Michael"

	got, err := svc.UpdatePerson(context.Background(), "609.350.354-27", updated)
	if err != nil {
		t.Fatalf("UpdatePerson() error = %v", err)
	}
	if got.FirstName != "Michael" {
		t.Errorf("FirstName = %q, want %q", got.FirstName, "Michael")
	}

	stored, err := svc.GetPerson(context.Background(), "609.350.354-27")
	if err != nil {
		t.Fatalf("GetPerson() error = %v", err)
	}
	if stored.FirstName != "Michael" {
		t.Errorf("stored FirstName = %q, want %q", stored.FirstName, "Michael")
	}
}

func TestUpdatePersonMismatchBeforeExistence(t *testing.T) {
	t.Parallel()

	svc := NewPersonService(testutil.NewMemoryStore(), nil)

	// Neither key exists; the mismatch must still win over not-found.
	person := newPerson(t, "609.350.354-27")
	_, err := svc.UpdatePerson(context.Background(), "673.810.785-46", person)
	if !errors.Is(err, ErrIdentityMismatch) {
		t.Errorf("UpdatePerson() error = %v, want ErrIdentityMismatch", err)
	}
}

func TestUpdatePersonMalformedPathKey(t *testing.T) {
	t.Parallel()

	svc := NewPersonService(testutil.NewMemoryStore(), nil)

	person := newPerson(t, "609.350.354-27")
	_, err := svc.UpdatePerson(context.Background(), "not-a-number", person)
	if !errors.Is(err, ErrIdentityMismatch) {
		t.Errorf("UpdatePerson() error = %v, want ErrIdentityMismatch", err)
	}
}

func TestUpdatePersonAcceptsEquivalentPathKey(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemoryStore()
	svc := NewPersonService(store, nil)

	if _, err := svc.CreatePerson(context.Background(), newPerson(t, "609.350.354-27")); err != nil {
		t.Fatalf("CreatePerson() error = %v", err)
	}

	person := newPerson(t, "609.350.354-27")
	if _, err := svc.UpdatePerson(context.Background(), "60935035427", person); err != nil {
		t.Errorf("UpdatePerson() error = %v, want nil for equivalent key", err)
	}
}

func TestUpdatePersonNotFound(t *testing.T) {
	t.Parallel()

	svc := NewPersonService(testutil.NewMemoryStore(), nil)

	person := newPerson(t, "609.350.354-27")
	_, err := svc.UpdatePerson(context.Background(), "609.350.354-27", person)
	if !errors.Is(err, ErrPersonNotFound) {
		t.Errorf("UpdatePerson() error = %v, want ErrPersonNotFound", err)
	}
}

func TestDeletePersonReturnsRecord(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemoryStore()
	svc := NewPersonService(store, nil)

	if _, err := svc.CreatePerson(context.Background(), newPerson(t, "609.350.354-27")); err != nil {
		t.Fatalf("CreatePerson() error = %v", err)
	}

	deleted, err := svc.DeletePerson(context.Background(), "609.350.354-27")
	if err != nil {
		t.Fatalf("DeletePerson() error = %v", err)
	}
	if deleted.IdentityNumber != "609.350.354-27" {
		t.Errorf("IdentityNumber = %q, want the removed record", deleted.IdentityNumber)
	}

	if _, err := svc.GetPerson(context.Background(), "609.350.354-27"); !errors.Is(err, ErrPersonNotFound) {
		t.Errorf("GetPerson() after delete error = %v, want ErrPersonNotFound", err)
	}
}

func TestDeletePersonNotFound(t *testing.T) {
	t.Parallel()

	svc := NewPersonService(testutil.NewMemoryStore(), nil)

	_, err := svc.DeletePerson(context.Background(), "857.545.040-98")
	if !errors.Is(err, ErrPersonNotFound) {
		t.Errorf("DeletePerson() error = %v, want ErrPersonNotFound", err)
	}
}
