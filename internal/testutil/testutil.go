package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/personvault/personvault/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// TruncatePeople empties the people table between tests.
func TruncatePeople(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, "TRUNCATE TABLE people"); err != nil {
		return fmt.Errorf("truncate people: %w", err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestPerson creates a person record with sensible defaults.
func NewTestPerson(t testing.TB, identityNumber string) *model.Person {
	t.Helper()
	birthDate, err := model.ParseDate("1928-11-18")
	if err != nil {
		t.Fatalf("parse birth date: %v", err)
	}
	person, err := model.NewPerson(model.PersonInput{
		FirstName:      "Mickey",
		LastName:       "Mouse",
		IdentityNumber: identityNumber,
		Email:          "mickey@disney.com",
		BirthDate:      birthDate,
	})
	if err != nil {
		t.Fatalf("build test person: %v", err)
	}
	return person
}

// NewTestAdmin creates an admin person with a hashed password.
func NewTestAdmin(t testing.TB, identityNumber, hashedPassword string) *model.Person {
	t.Helper()
	person := NewTestPerson(t, identityNumber)
	person.IsAdmin = true
	person.HashedPassword = hashedPassword
	return person
}
