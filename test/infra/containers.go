package infra

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"
)

const (
	defaultImage = "postgres:16-alpine"
	dbName       = "renewals"
)

// Postgres is either a container started for the test run or an externally
// managed server reached through a DSN. Only the former is terminated.
type Postgres struct {
	container *postgres.PostgresContainer
	DSN       string
}

// External wraps a DSN owned by someone else.
func External(dsn string) *Postgres {
	return &Postgres{DSN: dsn}
}

// StartPostgres reuses overrideDSN (or STRESS_TEST_PG_DSN) when set; otherwise it
// runs a throwaway container. RENEWALS_TEST_PG_IMAGE overrides the image.
func StartPostgres(ctx context.Context, overrideDSN string) (*Postgres, error) {
	if overrideDSN == "" {
		overrideDSN = os.Getenv("STRESS_TEST_PG_DSN")
	}
	if overrideDSN != "" {
		return External(overrideDSN), nil
	}

	image := os.Getenv("RENEWALS_TEST_PG_IMAGE")
	if image == "" {
		image = defaultImage
	}

	c, err := postgres.Run(ctx, image,
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbName),
		postgres.WithPassword(dbName),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "infra: run %s", image)
	}

	dsn, err := c.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, eris.Wrap(err, "infra: container dsn")
	}
	zap.L().Debug("postgres container ready", zap.String("image", image))
	return &Postgres{container: c, DSN: dsn}, nil
}

// Terminate stops the container; a no-op for external servers.
func (p *Postgres) Terminate(ctx context.Context) error {
	if p == nil || p.container == nil {
		return nil
	}
	return p.container.Terminate(ctx)
}
