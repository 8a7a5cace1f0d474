package database_test

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fyyur/internal/config"
	"github.com/iliyamo/fyyur/internal/database"
	"github.com/iliyamo/fyyur/internal/database/dbtest"
)

func TestDSN(t *testing.T) {
	dsn, err := database.DSN(config.DBConfig{
		Driver: config.DriverMySQL, User: "fyyur", Pass: "secret", Host: "db", Port: "3306", Name: "fyyur",
	})
	require.NoError(t, err)
	assert.Equal(t, "fyyur:secret@tcp(db:3306)/fyyur?charset=utf8mb4&parseTime=true&loc=UTC", dsn)

	dsn, err = database.DSN(config.DBConfig{Driver: config.DriverMySQL, User: "root", Host: "h", Port: "1", Name: "n"})
	require.NoError(t, err)
	assert.Equal(t, "root@tcp(h:1)/n?charset=utf8mb4&parseTime=true&loc=UTC", dsn)

	dsn, err = database.DSN(config.DBConfig{Driver: config.DriverSQLite, Path: "/tmp/x.db"})
	require.NoError(t, err)
	assert.Equal(t, "file:/tmp/x.db?_foreign_keys=on&_busy_timeout=5000", dsn)

	_, err = database.DSN(config.DBConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestSQLiteCaseFoldingIsUnicodeAware(t *testing.T) {
	db := dbtest.Open(t)
	assert.Equal(t, config.DriverSQLite, db.DriverName())

	var lower, upper string
	require.NoError(t, db.QueryRow(`SELECT LOWER('ÉCLAIR Hall'), UPPER('éclair')`).Scan(&lower, &upper))
	assert.Equal(t, "éclair hall", lower)
	assert.Equal(t, "ÉCLAIR", upper)
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := dbtest.Open(t)
	require.NoError(t, database.Migrate(context.Background(), db, dbtest.Logger()))

	var applied int
	require.NoError(t, db.Get(&applied, `SELECT COUNT(*) FROM schema_migrations WHERE success = 1`))
	assert.Equal(t, 2, applied)

	for _, table := range []string{"venues", "artists", "shows", "venue_genres", "artist_genres"} {
		var n int
		assert.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM "+table), table)
	}
}

func TestWithTx(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	insert := func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO venues (name) VALUES ('Hall')`)
		return err
	}

	boom := errors.New("boom")
	err := database.WithTx(ctx, db, func(tx *sqlx.Tx) error {
		require.NoError(t, insert(tx))
		return boom
	})
	assert.Equal(t, boom, err)
	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM venues`))
	assert.Equal(t, 0, n, "rolled back")

	require.NoError(t, database.WithTx(ctx, db, insert))
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM venues`))
	assert.Equal(t, 1, n, "committed")

	assert.Panics(t, func() {
		_ = database.WithTx(ctx, db, func(tx *sqlx.Tx) error {
			require.NoError(t, insert(tx))
			panic("kaboom")
		})
	})
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM venues`))
	assert.Equal(t, 1, n, "rolled back after panic")
}

func TestErrorClassification(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `INSERT INTO shows (start_time, artist_id, venue_id) VALUES ('2030-01-01 20:00:00', 42, 42)`)
	require.Error(t, err)
	assert.True(t, database.IsForeignKeyViolation(err))
	assert.True(t, database.IsForeignKeyViolation(errors.Wrap(err, "wrapped")))
	assert.False(t, database.IsUniqueViolation(err))
	assert.False(t, database.IsUnavailable(err))

	_, err = db.ExecContext(ctx, `INSERT INTO venue_genres (venue_id, seq, genre) VALUES (1, 0, 'Jazz')`)
	assert.True(t, database.IsForeignKeyViolation(err))

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = db.BeginTxx(canceled, nil)
	require.Error(t, err)
	assert.True(t, database.IsUnavailable(err))

	assert.False(t, database.IsUnavailable(nil))
	assert.False(t, database.IsForeignKeyViolation(errors.New("other")))
}
