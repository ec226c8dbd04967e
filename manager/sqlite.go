package manager

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"renewalboard/migrations"
)

// SQLiteRepository implements Store on a single SQLite file. Writes are
// serialized through one connection.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// NewSQLiteRepository opens the database at dsn and configures WAL mode.
func NewSQLiteRepository(dsn string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (s *SQLiteRepository) Migrate(ctx context.Context) error {
	scripts, err := migrations.For("sqlite")
	if err != nil {
		return err
	}
	for _, sc := range scripts {
		if _, err := s.db.ExecContext(ctx, sc.SQL); err != nil {
			return eris.Wrapf(err, "sqlite: apply %s", sc.Name)
		}
	}
	return nil
}

func (s *SQLiteRepository) Close() {
	s.db.Close() //nolint:errcheck
}

func (s *SQLiteRepository) ListAll(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM managers ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list managers")
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanSQLRecord(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan manager")
		}
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: iterate managers")
}

func (s *SQLiteRepository) GetByID(ctx context.Context, id int64) (Record, error) {
	rec, err := scanSQLRecord(s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM managers WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, eris.Wrapf(err, "sqlite: get manager %d", id)
	}
	return rec, nil
}

func (s *SQLiteRepository) Insert(ctx context.Context, rec Record) (Record, error) {
	return s.insert(ctx, s.db, rec, s.now().UTC())
}

type sqlQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLiteRepository) insert(ctx context.Context, q sqlQuerier, rec Record, now time.Time) (Record, error) {
	const query = `
		INSERT INTO managers (name, renewals_month1, renewals_month2, renewals_month3, total_renewals,
			late_percentage, managed_count, quality_score, classification, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`

	var id int64
	err := q.QueryRowContext(ctx, query,
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
	).Scan(&id)
	if err != nil {
		return Record{}, eris.Wrap(err, "sqlite: insert manager")
	}

	rec.ID = id
	rec.CreatedAt = now
	rec.UpdatedAt = now
	return rec, nil
}

func (s *SQLiteRepository) UpdateByID(ctx context.Context, id int64, apply func(Record) (Record, error)) (Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	current, err := scanSQLRecord(tx.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM managers WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, eris.Wrapf(err, "sqlite: load manager %d", id)
	}

	next, err := apply(current)
	if err != nil {
		return Record{}, err
	}
	next.ID = current.ID
	next.CreatedAt = current.CreatedAt
	next.UpdatedAt = s.now().UTC()

	_, err = tx.ExecContext(ctx, `
		UPDATE managers
		SET name = ?, renewals_month1 = ?, renewals_month2 = ?, renewals_month3 = ?,
		    total_renewals = ?, late_percentage = ?, managed_count = ?, quality_score = ?,
		    classification = ?, updated_at = ?
		WHERE id = ?`,
		next.Name,
		next.RenewalsMonth1,
		next.RenewalsMonth2,
		next.RenewalsMonth3,
		next.TotalRenewals,
		next.LatePercentage,
		next.ManagedCount,
		next.QualityScore,
		next.Classification,
		next.UpdatedAt,
		id,
	)
	if err != nil {
		return Record{}, eris.Wrapf(err, "sqlite: update manager %d", id)
	}

	if err := tx.Commit(); err != nil {
		return Record{}, eris.Wrap(err, "sqlite: commit update")
	}
	return next, nil
}

func (s *SQLiteRepository) DeleteByID(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM managers WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete manager %d", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteRepository) SeedIfEmpty(ctx context.Context, recs []Record) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin seed tx")
	}
	defer tx.Rollback() //nolint:errcheck

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM managers`).Scan(&count); err != nil {
		return 0, eris.Wrap(err, "sqlite: count managers")
	}
	if count > 0 {
		return 0, nil
	}

	now := s.now().UTC()
	for i, rec := range recs {
		if _, err := s.insert(ctx, tx, rec, now); err != nil {
			return 0, eris.Wrapf(err, "sqlite: seed row %d", i+1)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit seed")
	}
	return len(recs), nil
}

func scanSQLRecord(row scanner) (Record, error) {
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
