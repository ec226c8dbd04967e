// Package chaos interrupts database sessions while the stress actors run.
package chaos

import (
	"context"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Fault is the kind of interruption applied to a victim session.
type Fault string

const (
	// CancelQuery aborts whatever statement the victim is running.
	CancelQuery Fault = "cancel"
	// TerminateSession drops the victim's connection.
	TerminateSession Fault = "terminate"
)

var victimSQL = map[Fault]string{
	CancelQuery: `SELECT pg_cancel_backend(pid) FROM pg_stat_activity
		WHERE datname = current_database() AND pid <> pg_backend_pid() AND state = 'active'
		ORDER BY random() LIMIT 1`,
	TerminateSession: `SELECT pg_terminate_backend(pid) FROM pg_stat_activity
		WHERE datname = current_database() AND pid <> pg_backend_pid()
		ORDER BY random() LIMIT 1`,
}

// Monkey fires a random fault every Interval with probability 1/Odds.
type Monkey struct {
	Pool     *pgxpool.Pool
	Interval time.Duration
	Odds     int

	fired atomic.Int64
}

// Fired reports how many faults were issued.
func (m *Monkey) Fired() int64 { return m.fired.Load() }

// Run blocks until ctx is done or stop is closed.
func (m *Monkey) Run(ctx context.Context, seed int64, stop <-chan struct{}) {
	interval := m.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	odds := m.Odds
	if odds <= 0 {
		odds = 5
	}

	rng := rand.New(rand.NewSource(seed))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			if rng.Intn(odds) != 0 {
				continue
			}
			fault := CancelQuery
			if rng.Intn(2) == 0 {
				fault = TerminateSession
			}
			if _, err := m.Pool.Exec(ctx, victimSQL[fault]); err != nil {
				zap.L().Debug("chaos fault failed", zap.String("fault", string(fault)), zap.Error(err))
				continue
			}
			m.fired.Add(1)
		}
	}
}
