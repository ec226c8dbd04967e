// Package oracles holds invariant checks run against a live managers table.
package oracles

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"renewalboard/manager"
	"renewalboard/performance"
)

type Oracle struct {
	Name string
	SQL  string
}

// All returns the SQL oracles. Each query must return no rows.
func All() []Oracle {
	return []Oracle{
		{
			Name: "O1_total_is_month_sum",
			SQL: `SELECT id, total_renewals, renewals_month1, renewals_month2, renewals_month3 FROM managers
                  WHERE total_renewals <> renewals_month1 + renewals_month2 + renewals_month3`,
		},
		{
			Name: "O2_percentages_in_range",
			SQL: `SELECT id, late_percentage, quality_score FROM managers
                  WHERE late_percentage NOT BETWEEN 0 AND 100 OR quality_score NOT BETWEEN 0 AND 100`,
		},
		{
			Name: "O3_counts_non_negative",
			SQL: `SELECT id FROM managers
                  WHERE renewals_month1 < 0 OR renewals_month2 < 0 OR renewals_month3 < 0 OR managed_count < 0`,
		},
		{
			Name: "O4_known_label",
			SQL: `SELECT id, classification FROM managers
                  WHERE classification NOT IN ('High Performer','On Track','Needs Improvement','Critical')`,
		},
		{
			Name: "O5_blank_name",
			SQL:  `SELECT id FROM managers WHERE btrim(name) = ''`,
		},
	}
}

// Run executes all oracles and returns the first failure (name and sample row text) or empty name if all pass.
func Run(ctx context.Context, pool *pgxpool.Pool) (string, string, error) {
	for _, o := range All() {
		rows, err := pool.Query(ctx, o.SQL)
		if err != nil {
			return o.Name, "", fmt.Errorf("oracle %s: %w", o.Name, err)
		}
		has := rows.Next()
		if has {
			vals, err := rows.Values()
			rows.Close()
			if err != nil {
				return o.Name, "", err
			}
			return o.Name, fmt.Sprintf("%v", vals), nil
		}
		rows.Close()
	}
	return "", "", nil
}

// StaleLabels returns the ids whose stored classification differs from what
// strategy assigns to the stored KPI values.
func StaleLabels(ctx context.Context, store manager.Store, strategy performance.ClassificationStrategy) ([]int64, error) {
	recs, err := store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	var stale []int64
	for _, r := range recs {
		if performance.Classify(strategy, r) != r.Classification {
			stale = append(stale, r.ID)
		}
	}
	return stale, nil
}
