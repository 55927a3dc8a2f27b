// Package repository provides database access layer.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/personvault/personvault/internal/repository/migrations"
)

// Repository provides database access methods.
type Repository struct {
	pool        *pgxpool.Pool
	databaseURL string

	// simulatedDelay is applied before every operation touches
	// storage. It exists for latency-injection testing and must not
	// affect correctness.
	simulatedDelay time.Duration
}

// New creates a new Repository with a connection pool.
// simulatedDelay of zero disables latency injection.
func New(ctx context.Context, databaseURL string, simulatedDelay time.Duration) (*Repository, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pool settings
	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{
		pool:           pool,
		databaseURL:    databaseURL,
		simulatedDelay: simulatedDelay,
	}, nil
}

// Migrate applies the embedded schema migrations.
// goose needs a database/sql handle, so a short-lived one is opened
// through the pgx stdlib driver.
func (r *Repository) Migrate(ctx context.Context) error {
	db, err := sql.Open("pgx", r.databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}

// delay sleeps for the configured simulated latency, honoring
// cancellation from the caller's context.
func (r *Repository) delay(ctx context.Context) error {
	if r.simulatedDelay <= 0 {
		return nil
	}

	timer := time.NewTimer(r.simulatedDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool.
func (r *Repository) Close() {
	r.pool.Close()
}

// Pool returns the underlying connection pool.
// Use sparingly - prefer adding methods to Repository.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}
