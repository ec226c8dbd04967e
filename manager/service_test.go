package manager

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type stubClassifier struct {
	label string
}

func (s stubClassifier) Classify(Record) string { return s.label }

// totalClassifier labels by quarter total so tests can observe reclassification.
type totalClassifier struct{}

func (totalClassifier) Classify(r Record) string {
	if r.TotalRenewals >= 36 {
		return "High Performer"
	}
	return "Critical"
}

type memoryStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]Record
	err    error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{rows: make(map[int64]Record)}
}

func (m *memoryStore) ListAll(context.Context) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]Record, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryStore) GetByID(_ context.Context, id int64) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return r, nil
}

func (m *memoryStore) Insert(_ context.Context, rec Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return Record{}, m.err
	}
	m.nextID++
	rec.ID = m.nextID
	rec.CreatedAt = time.Now().UTC()
	rec.UpdatedAt = rec.CreatedAt
	m.rows[rec.ID] = rec
	return rec, nil
}

func (m *memoryStore) UpdateByID(_ context.Context, id int64, apply func(Record) (Record, error)) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rows[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	next, err := apply(cur)
	if err != nil {
		return Record{}, err
	}
	next.ID = id
	m.rows[id] = next
	return next, nil
}

func (m *memoryStore) DeleteByID(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memoryStore) SeedIfEmpty(ctx context.Context, recs []Record) (int, error) {
	m.mu.Lock()
	empty := len(m.rows) == 0
	m.mu.Unlock()
	if !empty {
		return 0, nil
	}
	for _, r := range recs {
		if _, err := m.Insert(ctx, r); err != nil {
			return 0, err
		}
	}
	return len(recs), nil
}

func (m *memoryStore) Migrate(context.Context) error { return nil }
func (m *memoryStore) Close()                        {}

func intPtr(v int) *int { return &v }

func TestService_CreateDerivesTotalAndLabel(t *testing.T) {
	svc := NewService(newMemoryStore(), totalClassifier{})

	rec, err := svc.Create(context.Background(), NewRecord{
		Name:           "  Ana Torres ",
		RenewalsMonth1: 12,
		RenewalsMonth2: 15,
		RenewalsMonth3: 16,
		LatePercentage: 0.304,
		ManagedCount:   210,
		QualityScore:   88,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.ID)
	assert.Equal(t, "Ana Torres", rec.Name)
	assert.Equal(t, 43, rec.TotalRenewals)
	assert.Equal(t, 0.3, rec.LatePercentage)
	assert.Equal(t, "High Performer", rec.Classification)
}

func TestService_CreateRejectsInvalid(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, totalClassifier{})

	_, err := svc.Create(context.Background(), NewRecord{Name: "X", RenewalsMonth2: -1})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "renewalsMonth2", vErr.Field)
	assert.Empty(t, store.rows)
}

func TestService_UpdateReclassifies(t *testing.T) {
	svc := NewService(newMemoryStore(), totalClassifier{})
	ctx := context.Background()

	rec, err := svc.Create(ctx, NewRecord{Name: "Luis", RenewalsMonth1: 5, RenewalsMonth2: 5, RenewalsMonth3: 5, QualityScore: 70})
	require.NoError(t, err)
	assert.Equal(t, "Critical", rec.Classification)

	updated, err := svc.Update(ctx, rec.ID, Patch{RenewalsMonth3: intPtr(30)})
	require.NoError(t, err)
	assert.Equal(t, 40, updated.TotalRenewals)
	assert.Equal(t, "High Performer", updated.Classification)
	assert.Equal(t, "Luis", updated.Name)
}

func TestService_UpdateValidationKeepsStoredRecord(t *testing.T) {
	svc := NewService(newMemoryStore(), totalClassifier{})
	ctx := context.Background()

	rec, err := svc.Create(ctx, NewRecord{Name: "Luis", RenewalsMonth1: 5, QualityScore: 70})
	require.NoError(t, err)

	_, err = svc.Update(ctx, rec.ID, Patch{QualityScore: intPtr(101)})
	require.True(t, IsValidation(err))

	got, err := svc.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 70, got.QualityScore)
}

func TestService_NotFound(t *testing.T) {
	svc := NewService(newMemoryStore(), totalClassifier{})
	ctx := context.Background()

	_, err := svc.Get(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Update(ctx, 404, Patch{})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, 404), ErrNotFound)
}

func TestService_ListFiltersAndSorts(t *testing.T) {
	svc := NewService(newMemoryStore(), totalClassifier{})
	ctx := context.Background()

	for _, n := range []NewRecord{
		{Name: "Carla Ruiz", RenewalsMonth1: 3, QualityScore: 90},
		{Name: "Andrés Gil", RenewalsMonth1: 20, QualityScore: 60},
		{Name: "Beatriz Ruiz", RenewalsMonth1: 10, QualityScore: 75},
	} {
		_, err := svc.Create(ctx, n)
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Andrés Gil", "Beatriz Ruiz", "Carla Ruiz"}, names(all))

	ruiz, err := svc.List(ctx, ListFilter{Query: "ruiz"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Beatriz Ruiz", "Carla Ruiz"}, names(ruiz))

	byQuality, err := svc.List(ctx, ListFilter{SortKey: "quality", SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Andrés Gil", "Beatriz Ruiz", "Carla Ruiz"}, names(byQuality))

	byName, err := svc.List(ctx, ListFilter{SortKey: "name"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Andrés Gil", "Beatriz Ruiz", "Carla Ruiz"}, names(byName))
}

func TestService_ListRefreshesDerivedFields(t *testing.T) {
	store := newMemoryStore()
	store.rows[1] = Record{ID: 1, Name: "Stale", RenewalsMonth1: 20, RenewalsMonth2: 20, TotalRenewals: 3, Classification: "Critical"}
	store.nextID = 1
	svc := NewService(store, totalClassifier{})

	list, err := svc.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 40, list[0].TotalRenewals)
	assert.Equal(t, "High Performer", list[0].Classification)
}

func TestService_ListPropagatesStoreError(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New("disk full")
	svc := NewService(store, totalClassifier{})

	_, err := svc.List(context.Background(), ListFilter{})
	assert.EqualError(t, err, "disk full")
}

func TestService_SeedOnce(t *testing.T) {
	svc := NewService(newMemoryStore(), totalClassifier{})
	ctx := context.Background()

	rows, err := DefaultSeed()
	require.NoError(t, err)

	n, err := svc.Seed(ctx, rows)
	require.NoError(t, err)
	assert.Equal(t, 23, n)

	n, err = svc.Seed(ctx, rows)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestService_SeedRejectsBadRow(t *testing.T) {
	svc := NewService(newMemoryStore(), totalClassifier{})

	_, err := svc.Seed(context.Background(), []NewRecord{
		{Name: "ok", QualityScore: 50},
		{Name: "", QualityScore: 50},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed row 2")
	assert.True(t, IsValidation(err))
}

func names(recs []Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Name
	}
	return out
}
