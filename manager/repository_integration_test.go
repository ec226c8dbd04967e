package manager

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"renewalboard/test/infra"
)

func TestPGRepositoryIntegration(t *testing.T) {
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set; skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	h, err := infra.NewHarness(ctx)
	require.NoError(t, err)
	defer h.Close(context.Background())

	repo := NewPGRepository(h.Pool())
	svc := NewService(repo, totalClassifier{})

	rows, err := DefaultSeed()
	require.NoError(t, err)

	n, err := svc.Seed(ctx, rows)
	require.NoError(t, err)
	require.Equal(t, 23, n)

	list, err := svc.List(ctx, ListFilter{SortKey: "id"})
	require.NoError(t, err)
	require.Len(t, list, 23)
	for i, r := range list {
		assert.Equal(t, rows[i].Name, r.Name)
		assert.Equal(t, rows[i].LatePercentage, r.LatePercentage)
	}

	target := list[0].ID
	var wg sync.WaitGroup
	for i := 1; i <= 10; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			_, err := svc.Update(ctx, target, Patch{RenewalsMonth2: &v})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := svc.Get(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, got.SumRenewals(), got.TotalRenewals)

	require.NoError(t, svc.Delete(ctx, target))
	_, err = svc.Get(ctx, target)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, h.Reset(ctx))
	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
