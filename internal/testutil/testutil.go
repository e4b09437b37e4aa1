// Package testutil holds shared helpers for package tests.
package testutil

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ljp-solutions/word-ladder/assets"
	"github.com/ljp-solutions/word-ladder/internal/db"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.Open(db.MemoryDSN)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn, assets.Migrations()))
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}
