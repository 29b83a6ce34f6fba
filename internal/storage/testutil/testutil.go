package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/lifehub/studycore/internal/logger"
	"github.com/lifehub/studycore/internal/storage"
)

// Store opens a fresh in-memory sqlite store that is closed when the test ends.
func Store(tb testing.TB) *storage.Store {
	tb.Helper()
	s, err := storage.Open(context.Background(), storage.DriverSQLite, ":memory:", logger.Nop())
	if err != nil {
		tb.Fatalf("failed to open test store: %v", err)
	}
	tb.Cleanup(func() { _ = s.Close() })
	return s
}

// PostgresStore opens TEST_POSTGRES_DSN, skipping the test when it is not set.
func PostgresStore(tb testing.TB) *storage.Store {
	tb.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		tb.Skip("set TEST_POSTGRES_DSN to run postgres integration tests")
	}
	s, err := storage.Open(context.Background(), storage.DriverPostgres, dsn, logger.Nop())
	if err != nil {
		tb.Fatalf("failed to open postgres store: %v", err)
	}
	tb.Cleanup(func() { _ = s.Close() })
	return s
}
