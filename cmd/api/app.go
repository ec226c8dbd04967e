package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"renewalboard/config"
	"renewalboard/db"
	"renewalboard/manager"
	"renewalboard/performance"
	"renewalboard/plan"
)

// app bundles the collaborators every subcommand needs.
type app struct {
	store       manager.Store
	managers    *manager.Service
	strategy    performance.ImpactIndex
	goals       performance.Goals
	targets     performance.ComplianceTargets
	monthLabels []string
	plan        plan.Plan
}

func strategyFromConfig(c *config.Config) performance.ImpactIndex {
	cc := c.Classification
	return performance.ImpactIndex{
		Weights: performance.Weights{
			Renewals: cc.Weights.Renewals,
			Quality:  cc.Weights.Quality,
			Late:     cc.Weights.Late,
		},
		Thresholds: performance.Thresholds{
			HighPerformer:    cc.Thresholds.HighPerformer,
			OnTrack:          cc.Thresholds.OnTrack,
			NeedsImprovement: cc.Thresholds.NeedsImprovement,
		},
		RenewalTarget: c.Goals.Quarter,
		LateCap:       cc.LateCap,
	}
}

func goalsFromConfig(c *config.Config) performance.Goals {
	return performance.Goals{
		Month1:      c.Goals.Month1,
		Month2:      c.Goals.Month2,
		Month3:      c.Goals.Month3,
		FullQuarter: c.Goals.Quarter,
	}
}

func targetsFromConfig(c *config.Config) performance.ComplianceTargets {
	return performance.ComplianceTargets{
		Renewals:   c.Goals.Quarter,
		MinQuality: c.Compliance.MinQuality,
		MaxLatePct: c.Compliance.MaxLatePct,
		MinManaged: c.Compliance.MinManaged,
	}
}

func openStore(ctx context.Context, sc config.StoreConfig) (manager.Store, error) {
	switch sc.Driver {
	case "sqlite":
		repo, err := manager.NewSQLiteRepository(sc.SQLitePath)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case "postgres":
		pool, err := db.NewPool(ctx, sc.DatabaseURL, db.PoolConfig{MaxConns: sc.MaxConns, MinConns: sc.MinConns})
		if err != nil {
			return nil, err
		}
		return manager.NewPGRepository(pool), nil
	default:
		return nil, eris.Errorf("unknown store driver %q", sc.Driver)
	}
}

// newApp opens and migrates the store, then seeds it when enabled.
func newApp(ctx context.Context, c *config.Config) (*app, error) {
	p, err := plan.Load()
	if err != nil {
		return nil, err
	}

	store, err := openStore(ctx, c.Store)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	strategy := strategyFromConfig(c)
	a := &app{
		store:       store,
		managers:    manager.NewService(store, strategy),
		strategy:    strategy,
		goals:       goalsFromConfig(c),
		targets:     targetsFromConfig(c),
		monthLabels: c.Goals.MonthLabels,
		plan:        p,
	}

	if c.Seed.Enabled {
		if _, err := a.seed(ctx, c.Seed.Path); err != nil {
			store.Close()
			return nil, err
		}
	}

	zap.L().Info("store ready", zap.String("driver", c.Store.Driver))
	return a, nil
}

func (a *app) seed(ctx context.Context, path string) (int, error) {
	rows, err := manager.LoadSeedFile(path)
	if err != nil {
		return 0, err
	}
	n, err := a.managers.Seed(ctx, rows)
	if err != nil {
		return 0, eris.Wrap(err, "seed store")
	}
	return n, nil
}

func (a *app) Close() {
	a.store.Close()
}

func (a *app) server() *Server {
	return &Server{
		managers:    a.managers,
		strategy:    a.strategy,
		goals:       a.goals,
		targets:     a.targets,
		monthLabels: a.monthLabels,
		plan:        a.plan,
	}
}
