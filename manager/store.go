package manager

import "context"

// Store persists manager records. Implementations serialize writers to the
// same id; the last writer wins.
type Store interface {
	ListAll(ctx context.Context) ([]Record, error)
	GetByID(ctx context.Context, id int64) (Record, error)
	Insert(ctx context.Context, rec Record) (Record, error)
	// UpdateByID loads the row under a write lock, passes it to apply and
	// persists the result in the same transaction.
	UpdateByID(ctx context.Context, id int64, apply func(Record) (Record, error)) (Record, error)
	DeleteByID(ctx context.Context, id int64) error
	// SeedIfEmpty inserts recs only when the table has no rows and reports how
	// many were written.
	SeedIfEmpty(ctx context.Context, recs []Record) (int, error)
	Migrate(ctx context.Context) error
	Close()
}
