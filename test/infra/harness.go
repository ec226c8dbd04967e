package infra

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Harness owns the lifecycle of a migrated Postgres database for tests: either
// a throwaway container or an isolated schema inside a shared DSN.
type Harness struct {
	container *Postgres
	pool      *pgxpool.Pool
	dsn       string
	teardown  func(context.Context) error
}

// NewHarness connects to DATABASE_URL (or STRESS_TEST_PG_DSN) when set and
// otherwise boots a Postgres 16 container. The schema is always freshly
// migrated.
func NewHarness(ctx context.Context) (*Harness, error) {
	shared := os.Getenv("DATABASE_URL")
	if shared == "" {
		shared = os.Getenv("STRESS_TEST_PG_DSN")
	}

	pg, err := StartPostgres(ctx, shared)
	if err != nil {
		return nil, err
	}

	pool, teardown, err := ApplyMigrations(ctx, pg.DSN, shared != "")
	if err != nil {
		_ = pg.Terminate(ctx)
		return nil, err
	}

	return &Harness{
		container: pg,
		pool:      pool,
		dsn:       pg.DSN,
		teardown:  teardown,
	}, nil
}

// Pool exposes the configured pgx pool.
func (h *Harness) Pool() *pgxpool.Pool {
	return h.pool
}

// DSN returns the connection string for direct connections (e.g., chaos).
func (h *Harness) DSN() string {
	return h.dsn
}

// Close tears down resources.
func (h *Harness) Close(ctx context.Context) {
	if h.pool != nil {
		h.pool.Close()
	}
	if h.teardown != nil {
		_ = h.teardown(ctx)
	}
	_ = h.container.Terminate(ctx)
}

// Reset empties the managers table and restarts its id sequence.
func (h *Harness) Reset(ctx context.Context) error {
	if _, err := h.pool.Exec(ctx, "TRUNCATE TABLE managers RESTART IDENTITY"); err != nil {
		return fmt.Errorf("truncate managers: %w", err)
	}
	return nil
}
