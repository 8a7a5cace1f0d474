// Package dbtest opens throwaway migrated databases for tests.
package dbtest

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fyyur/internal/config"
	"github.com/iliyamo/fyyur/internal/database"
)

// Logger returns a logger that discards everything.
func Logger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// Open returns a migrated SQLite database living in t.TempDir().  It is
// closed when the test finishes.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()
	db, err := database.Open(config.DBConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "fyyur.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db, Logger()))
	return db
}
