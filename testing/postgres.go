package testing

import (
	"context"
	"os"
	stdtesting "testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/onlinestore/onlinestore/internal/platform/db"
)

// PostgresDSNEnv names the variable holding the database used by integration tests.
const PostgresDSNEnv = "ONLINESTORE_TEST_PG_DSN"

// PostgresPool connects to the integration database, applies migrations and
// empties the data tables. The test is skipped when PostgresDSNEnv is unset.
func PostgresPool(t stdtesting.TB) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv(PostgresDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", PostgresDSNEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.New(ctx, dsn, db.PoolOptions{MaxConns: 8})
	if err != nil {
		t.Fatalf("connect postgres: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.Migrate(pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE user_roles, users, orders, customers RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return pool
}
