package manager

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"renewalboard/db"
	"renewalboard/migrations"
)

// seedLockKey is the advisory lock serializing concurrent SeedIfEmpty calls
// across processes.
const seedLockKey int64 = 0x72656e6577

const selectColumns = `id, name, renewals_month1, renewals_month2, renewals_month3, total_renewals,
	late_percentage, managed_count, quality_score, classification, created_at, updated_at`

var copyColumns = []string{
	"name", "renewals_month1", "renewals_month2", "renewals_month3", "total_renewals",
	"late_percentage", "managed_count", "quality_score", "classification", "created_at", "updated_at",
}

// PGRepository implements Store on Postgres.
type PGRepository struct {
	pool db.Pool
	now  func() time.Time
}

// NewPGRepository wires a pool-backed repository implementation.
func NewPGRepository(pool db.Pool) *PGRepository {
	return &PGRepository{pool: pool, now: time.Now}
}

// Migrate applies the embedded Postgres schema.
func (r *PGRepository) Migrate(ctx context.Context) error {
	scripts, err := migrations.For("postgres")
	if err != nil {
		return err
	}
	for _, s := range scripts {
		if _, err := r.pool.Exec(ctx, s.SQL); err != nil {
			return eris.Wrapf(err, "postgres: apply %s", s.Name)
		}
	}
	return nil
}

// Close releases the pool.
func (r *PGRepository) Close() {
	r.pool.Close()
}

// ListAll fetches every manager ordered by id.
func (r *PGRepository) ListAll(ctx context.Context) ([]Record, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+selectColumns+` FROM managers ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list managers")
	}
	defer rows.Close()

	records := make([]Record, 0, 32)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan manager")
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate managers")
	}

	return records, nil
}

// GetByID fetches a manager by its primary key.
func (r *PGRepository) GetByID(ctx context.Context, id int64) (Record, error) {
	rec, err := scanRecord(r.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM managers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, eris.Wrap(err, "postgres: get manager")
	}
	return rec, nil
}

// Insert stores rec and returns it with the assigned id and timestamps.
func (r *PGRepository) Insert(ctx context.Context, rec Record) (Record, error) {
	const query = `
		INSERT INTO managers (name, renewals_month1, renewals_month2, renewals_month3, total_renewals,
			late_percentage, managed_count, quality_score, classification)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + selectColumns

	created, err := scanRecord(r.pool.QueryRow(ctx, query,
		rec.Name,
		rec.RenewalsMonth1,
		rec.RenewalsMonth2,
		rec.RenewalsMonth3,
		rec.TotalRenewals,
		rec.LatePercentage,
		rec.ManagedCount,
		rec.QualityScore,
		rec.Classification,
	))
	if err != nil {
		return Record{}, eris.Wrap(err, "postgres: insert manager")
	}
	return created, nil
}

// UpdateByID locks the row, applies the change and writes it back.
func (r *PGRepository) UpdateByID(ctx context.Context, id int64, apply func(Record) (Record, error)) (Record, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Record{}, eris.Wrap(err, "postgres: begin tx")
	}
	defer tx.Rollback(ctx)

	current, err := scanRecord(tx.QueryRow(ctx, `SELECT `+selectColumns+` FROM managers WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, eris.Wrap(err, "postgres: lock manager")
	}

	next, err := apply(current)
	if err != nil {
		return Record{}, err
	}

	const query = `
		UPDATE managers
		SET name = $2,
		    renewals_month1 = $3,
		    renewals_month2 = $4,
		    renewals_month3 = $5,
		    total_renewals = $6,
		    late_percentage = $7,
		    managed_count = $8,
		    quality_score = $9,
		    classification = $10,
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + selectColumns

	updated, err := scanRecord(tx.QueryRow(ctx, query,
		id,
		next.Name,
		next.RenewalsMonth1,
		next.RenewalsMonth2,
		next.RenewalsMonth3,
		next.TotalRenewals,
		next.LatePercentage,
		next.ManagedCount,
		next.QualityScore,
		next.Classification,
	))
	if err != nil {
		return Record{}, eris.Wrap(err, "postgres: update manager")
	}

	if err := tx.Commit(ctx); err != nil {
		return Record{}, eris.Wrap(err, "postgres: commit update")
	}
	return updated, nil
}

// DeleteByID removes the manager row.
func (r *PGRepository) DeleteByID(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM managers WHERE id = $1`, id)
	if err != nil {
		return eris.Wrap(err, "postgres: delete manager")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SeedIfEmpty bulk-copies recs when the table is empty. The advisory lock
// keeps two starting processes from both seeing zero rows.
func (r *PGRepository) SeedIfEmpty(ctx context.Context, recs []Record) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: begin seed tx")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, seedLockKey); err != nil {
		return 0, eris.Wrap(err, "postgres: seed lock")
	}

	var count int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM managers`).Scan(&count); err != nil {
		return 0, eris.Wrap(err, "postgres: count managers")
	}
	if count > 0 {
		return 0, nil
	}

	now := r.now().UTC()
	rows := make([][]any, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, []any{
			rec.Name,
			rec.RenewalsMonth1,
			rec.RenewalsMonth2,
			rec.RenewalsMonth3,
			rec.TotalRenewals,
			rec.LatePercentage,
			rec.ManagedCount,
			rec.QualityScore,
			rec.Classification,
			now,
			now,
		})
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"managers"}, copyColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, eris.Wrap(err, "postgres: copy seed rows")
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "postgres: commit seed")
	}
	return int(n), nil
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(
		&rec.ID,
		&rec.Name,
		&rec.RenewalsMonth1,
		&rec.RenewalsMonth2,
		&rec.RenewalsMonth3,
		&rec.TotalRenewals,
		&rec.LatePercentage,
		&rec.ManagedCount,
		&rec.QualityScore,
		&rec.Classification,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	return rec, err
}
