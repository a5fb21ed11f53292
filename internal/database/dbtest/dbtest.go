// Package dbtest starts a disposable PostgreSQL container with the vinoteca
// schema applied.
package dbtest

import (
	"context"
	"testing"
	"time"

	"vinoteca/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// DB is a migrated test database.
type DB struct {
	Pool    *pgxpool.Pool
	ConnStr string
}

// Start runs a PostgreSQL container, applies the migrations and returns a pool.
// The container is terminated when the test finishes. Skipped with -short.
func Start(t *testing.T) *DB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("vinoteca_test"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = pgContainer.Terminate(ctx)
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, database.Migrate(connStr, zerolog.Nop()))

	pool, err := database.NewPoolFromURL(ctx, connStr, database.PoolOptions{MaxConns: 10})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return &DB{Pool: pool, ConnStr: connStr}
}

// Truncate empties every table between subtests.
func (db *DB) Truncate(t *testing.T) {
	t.Helper()
	_, err := db.Pool.Exec(context.Background(),
		`TRUNCATE reservations, order_lines, orders, customers, products CASCADE`)
	require.NoError(t, err)
}
