// Package actors drives concurrent manager workloads against a shared store.
package actors

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"renewalboard/manager"
	"renewalboard/performance"
)

// transient reports whether err is a store failure the actor should ride out
// (dropped connections under chaos) rather than a broken invariant.
func transient(err error) bool {
	if err == nil {
		return false
	}
	return !manager.IsValidation(err) && !errors.Is(err, manager.ErrNotFound)
}

func pause(rng *rand.Rand, base, jitter int) {
	time.Sleep(time.Duration(base+rng.Intn(jitter)) * time.Millisecond)
}

// Seeder races the initial bulk load; only one caller may insert rows.
func Seeder(ctx context.Context, svc *manager.Service, rows []manager.NewRecord, inserted chan<- int) error {
	n, err := svc.Seed(ctx, rows)
	if err != nil {
		return fmt.Errorf("seeder: %w", err)
	}
	inserted <- n
	return nil
}

// Editor keeps patching random managers with random KPI values.
func Editor(ctx context.Context, svc *manager.Service, ids []int64, seed int64, stop <-chan struct{}) error {
	rng := rand.New(rand.NewSource(seed))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		id := ids[rng.Intn(len(ids))]
		m1, m3 := rng.Intn(25), rng.Intn(25)
		late := float64(rng.Intn(1000)) / 100
		quality := 40 + rng.Intn(61)
		_, err := svc.Update(ctx, id, manager.Patch{
			RenewalsMonth1: &m1,
			RenewalsMonth3: &m3,
			LatePercentage: &late,
			QualityScore:   &quality,
		})
		if manager.IsValidation(err) {
			return fmt.Errorf("editor update %d: %w", id, err)
		}
		pause(rng, 5, 20)
	}
}

// InvalidWriter sends writes that must be rejected and fails if one is accepted.
func InvalidWriter(ctx context.Context, svc *manager.Service, ids []int64, seed int64, stop <-chan struct{}) error {
	rng := rand.New(rand.NewSource(seed))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		bad := -1 - rng.Intn(10)
		_, err := svc.Update(ctx, ids[rng.Intn(len(ids))], manager.Patch{RenewalsMonth2: &bad})
		if err == nil {
			return fmt.Errorf("invalid writer: negative renewals accepted")
		}
		if !manager.IsValidation(err) && !transient(err) {
			return fmt.Errorf("invalid writer: %w", err)
		}
		pause(rng, 20, 30)
	}
}

// Churner creates short-lived managers and deletes them again.
func Churner(ctx context.Context, svc *manager.Service, seed int64, stop <-chan struct{}) error {
	rng := rand.New(rand.NewSource(seed))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		rec, err := svc.Create(ctx, manager.NewRecord{
			Name:           fmt.Sprintf("Temporal %d", rng.Int63()),
			RenewalsMonth1: rng.Intn(15),
			RenewalsMonth2: rng.Intn(15),
			RenewalsMonth3: rng.Intn(15),
			LatePercentage: float64(rng.Intn(500)) / 100,
			ManagedCount:   rng.Intn(300),
			QualityScore:   rng.Intn(101),
		})
		if err != nil {
			if transient(err) {
				pause(rng, 20, 30)
				continue
			}
			return fmt.Errorf("churner create: %w", err)
		}
		if err := svc.Delete(ctx, rec.ID); err != nil && transient(err) {
			pause(rng, 20, 30)
			continue
		}
		pause(rng, 30, 50)
	}
}

// Reporter recomputes dashboard aggregates and checks they stay well formed.
func Reporter(ctx context.Context, svc *manager.Service, strategy performance.ClassificationStrategy, goals performance.Goals, seed int64, stop <-chan struct{}) error {
	rng := rand.New(rand.NewSource(seed))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		recs, err := svc.List(ctx, manager.ListFilter{})
		if err != nil {
			if transient(err) {
				pause(rng, 20, 30)
				continue
			}
			return fmt.Errorf("reporter list: %w", err)
		}

		p := performance.Periods[rng.Intn(len(performance.Periods))]
		stats, err := performance.ComputeTeamStats(recs, p, goals, strategy)
		if err != nil {
			return fmt.Errorf("reporter stats: %w", err)
		}
		q := stats.Quartiles
		if n := len(q.Q1) + len(q.Q2) + len(q.Q3) + len(q.Q4); n != len(recs) {
			return fmt.Errorf("reporter: quartiles hold %d of %d managers", n, len(recs))
		}
		pause(rng, 40, 40)
	}
}
