package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"

	"github.com/personvault/personvault/internal/model"
)

// Common errors for person repository operations.
var (
	ErrPersonNotFound    = errors.New("person not found")
	ErrDuplicateIdentity = errors.New("identity number already registered")
)

// MaxPeopleListed caps the full-scan listing. The listing loads every
// row it returns into memory at once, so it is unsuitable for large
// datasets; this is a known, intentional limitation.
const MaxPeopleListed = 100

// CreatePerson inserts a new person document.
// A unique-index violation on the identity number surfaces as
// ErrDuplicateIdentity so the caller can report a conflict.
func (r *Repository) CreatePerson(ctx context.Context, person *model.Person) error {
	if err := r.delay(ctx); err != nil {
		return err
	}

	query := `
		INSERT INTO people (id, identity_number, first_name, last_name, email, birth_date, is_admin, hashed_password)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
	`

	_, err := r.pool.Exec(ctx, query,
		newDocumentID(),
		person.IdentityNumber,
		person.FirstName,
		person.LastName,
		person.Email,
		person.BirthDate.Time,
		person.IsAdmin,
		person.HashedPassword,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateIdentity
		}
		return fmt.Errorf("failed to create person: %w", err)
	}

	return nil
}

// GetPerson retrieves a person by normalized identity number.
func (r *Repository) GetPerson(ctx context.Context, identityNumber string) (*model.Person, error) {
	if err := r.delay(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT identity_number, first_name, last_name, email, birth_date, is_admin, COALESCE(hashed_password, '')
		FROM people
		WHERE identity_number = $1
	`

	person, err := scanPerson(r.pool.QueryRow(ctx, query, identityNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPersonNotFound
		}
		return nil, fmt.Errorf("failed to get person: %w", err)
	}

	return person, nil
}

// ListPeople retrieves up to MaxPeopleListed person documents.
// Order is not guaranteed.
func (r *Repository) ListPeople(ctx context.Context) ([]*model.Person, error) {
	if err := r.delay(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT identity_number, first_name, last_name, email, birth_date, is_admin, COALESCE(hashed_password, '')
		FROM people
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, MaxPeopleListed)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	defer rows.Close()

	var people []*model.Person
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, person)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating people: %w", err)
	}

	return people, nil
}

// UpdatePerson fully replaces the document matching identityNumber.
// A missing key is a silent no-op: callers that must surface
// not-found check existence first.
func (r *Repository) UpdatePerson(ctx context.Context, identityNumber string, person *model.Person) error {
	if err := r.delay(ctx); err != nil {
		return err
	}

	query := `
		UPDATE people
		SET identity_number = $2, first_name = $3, last_name = $4, email = $5,
		    birth_date = $6, is_admin = $7, hashed_password = NULLIF($8, ''),
		    updated_at = NOW()
		WHERE identity_number = $1
	`

	_, err := r.pool.Exec(ctx, query,
		identityNumber,
		person.IdentityNumber,
		person.FirstName,
		person.LastName,
		person.Email,
		person.BirthDate.Time,
		person.IsAdmin,
		person.HashedPassword,
	)
	if err != nil {
		return fmt.Errorf("failed to update person: %w", err)
	}

	return nil
}

// RemovePerson deletes the document matching identityNumber.
// A missing key is a silent no-op.
func (r *Repository) RemovePerson(ctx context.Context, identityNumber string) error {
	if err := r.delay(ctx); err != nil {
		return err
	}

	query := `DELETE FROM people WHERE identity_number = $1`

	if _, err := r.pool.Exec(ctx, query, identityNumber); err != nil {
		return fmt.Errorf("failed to remove person: %w", err)
	}

	return nil
}

// scanPerson scans a row into a Person model.
func scanPerson(row pgx.Row) (*model.Person, error) {
	var person model.Person
	var birthDate time.Time

	err := row.Scan(
		&person.IdentityNumber,
		&person.FirstName,
		&person.LastName,
		&person.Email,
		&birthDate,
		&person.IsAdmin,
		&person.HashedPassword,
	)
	if err != nil {
		return nil, err
	}

	person.BirthDate = model.DateOf(birthDate)
	return &person, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique
// constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// newDocumentID returns a ULID for the physical row id. Records are
// keyed logically by identity number; the row id is only a surrogate.
func newDocumentID() string {
	return ulid.Make().String()
}
