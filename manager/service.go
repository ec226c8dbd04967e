package manager

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Classifier assigns the performance label of a record from its KPI fields.
type Classifier interface {
	Classify(rec Record) string
}

// Service exposes business-level manager operations. Every record it returns
// or persists has TotalRenewals and Classification derived from the current
// inputs.
type Service struct {
	store      Store
	classifier Classifier
}

// NewService builds a Service on top of store. classifier must not be nil.
func NewService(store Store, classifier Classifier) *Service {
	return &Service{
		store:      store,
		classifier: classifier,
	}
}

func (s *Service) derive(r Record) Record {
	r.TotalRenewals = r.SumRenewals()
	r.Classification = s.classifier.Classify(r)
	return r
}

// prepare normalizes, validates and derives a record about to be written.
func (s *Service) prepare(r Record) (Record, error) {
	r = normalize(r)
	if err := validate(r); err != nil {
		return Record{}, err
	}
	return s.derive(r), nil
}

// List returns every manager matching filter, ordered by filter.SortKey.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Record, error) {
	records, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Record, 0, len(records))
	for _, r := range records {
		if !matchesQuery(r, filter.Query) {
			continue
		}
		out = append(out, s.derive(r))
	}
	sortRecords(out, filter.SortKey, filter.SortOrder)

	return out, nil
}

// Get returns the manager for the given identifier.
func (s *Service) Get(ctx context.Context, id int64) (Record, error) {
	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return Record{}, err
	}
	return s.derive(rec), nil
}

// Create validates and classifies n before inserting it.
func (s *Service) Create(ctx context.Context, n NewRecord) (Record, error) {
	rec, err := s.prepare(n.record())
	if err != nil {
		return Record{}, err
	}

	created, err := s.store.Insert(ctx, rec)
	if err != nil {
		return Record{}, err
	}

	zap.L().Info("manager created",
		zap.Int64("manager_id", created.ID),
		zap.String("classification", created.Classification),
	)
	return created, nil
}

// Update merges patch into the stored record, reclassifies it and persists
// the result.
func (s *Service) Update(ctx context.Context, id int64, patch Patch) (Record, error) {
	updated, err := s.store.UpdateByID(ctx, id, func(current Record) (Record, error) {
		return s.prepare(patch.Apply(current))
	})
	if err != nil {
		return Record{}, err
	}

	zap.L().Info("manager updated",
		zap.Int64("manager_id", updated.ID),
		zap.String("classification", updated.Classification),
	)
	return updated, nil
}

// Delete removes the manager with the given identifier.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteByID(ctx, id); err != nil {
		return err
	}
	zap.L().Info("manager deleted", zap.Int64("manager_id", id))
	return nil
}

// Seed bulk-loads rows when the store is empty. It returns the number of
// managers inserted, which is zero on every run after the first.
func (s *Service) Seed(ctx context.Context, rows []NewRecord) (int, error) {
	recs := make([]Record, 0, len(rows))
	for i, n := range rows {
		rec, err := s.prepare(n.record())
		if err != nil {
			return 0, fmt.Errorf("manager: seed row %d: %w", i+1, err)
		}
		recs = append(recs, rec)
	}

	inserted, err := s.store.SeedIfEmpty(ctx, recs)
	if err != nil {
		return 0, err
	}

	if inserted > 0 {
		zap.L().Info("manager store seeded", zap.Int("inserted", inserted))
	} else {
		zap.L().Debug("manager store already populated, seed skipped")
	}
	return inserted, nil
}
