package database

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/fyyur/internal/config"
	"github.com/iliyamo/fyyur/internal/log"
)

type migration struct {
	Version uint
	Queries map[string][]string // driver name -> statements
}

// execute runs the migration unless schema_migrations records it as done.
func (mig *migration) execute(ctx context.Context, db *sqlx.DB, logger *logrus.Entry) error {
	var success bool
	err := db.QueryRowContext(ctx, `SELECT success FROM schema_migrations WHERE version = ?`, mig.Version).Scan(&success)
	if err != nil && err != sql.ErrNoRows {
		return errors.Wrap(err, "fetch migration state")
	}
	if success {
		return nil
	}
	queries, ok := mig.Queries[db.DriverName()]
	if !ok {
		return errors.Errorf("migration %d has no statements for driver %s", mig.Version, db.DriverName())
	}
	logger = logger.WithField(log.FldMigration, mig.Version)
	logger.Info("Executing DB migration")
	for i, query := range queries {
		logger.Debugf("Query %d of %d...", i+1, len(queries))
		if _, err := db.ExecContext(ctx, query); err != nil {
			logger.WithError(err).Errorf("Query #%d failed", i+1)
			_, _ = db.ExecContext(ctx, `REPLACE INTO schema_migrations(version, success) VALUES(?, 0)`, mig.Version)
			return errors.Wrapf(err, "migration %d query %d", mig.Version, i+1)
		}
	}
	_, err = db.ExecContext(ctx, `REPLACE INTO schema_migrations(version, success) VALUES(?, 1)`, mig.Version)
	return errors.Wrap(err, "record migration")
}

// Migrate brings the schema of db up to date.  Every migration runs at
// most once; a failing one aborts the remaining migrations.
func Migrate(ctx context.Context, db *sqlx.DB, logger *logrus.Entry) error {
	const q = `CREATE TABLE IF NOT EXISTS schema_migrations (
                version   INTEGER NOT NULL,
                success   INTEGER NOT NULL DEFAULT 0,
                PRIMARY KEY(version)
            )`
	if _, err := db.ExecContext(ctx, q); err != nil {
		return errors.Wrap(err, "create migrations table")
	}
	for i := range migrations {
		if err := migrations[i].execute(ctx, db, logger); err != nil {
			return err
		}
	}
	return nil
}

var migrations = []migration{
	{
		Version: 1,
		Queries: map[string][]string{
			config.DriverMySQL: {
				`CREATE TABLE venues (
                    id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
                    name VARCHAR(255) NOT NULL,
                    city VARCHAR(120) NOT NULL DEFAULT '',
                    state VARCHAR(120) NOT NULL DEFAULT '',
                    address VARCHAR(120) NOT NULL DEFAULT '',
                    phone VARCHAR(120) NOT NULL DEFAULT '',
                    image_link VARCHAR(500) NULL,
                    facebook_link VARCHAR(120) NOT NULL DEFAULT '',
                    seeking_talent BOOLEAN NOT NULL DEFAULT FALSE,
                    seeking_description VARCHAR(500) NULL,
                    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
                    INDEX idx_venues_area (city, state)
                ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
				`CREATE TABLE artists (
                    id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
                    name VARCHAR(255) NOT NULL,
                    city VARCHAR(120) NOT NULL DEFAULT '',
                    state VARCHAR(120) NOT NULL DEFAULT '',
                    phone VARCHAR(120) NOT NULL DEFAULT '',
                    image_link VARCHAR(500) NULL,
                    facebook_link VARCHAR(120) NOT NULL DEFAULT '',
                    seeking_venue BOOLEAN NOT NULL DEFAULT FALSE,
                    seeking_description VARCHAR(500) NULL,
                    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
                ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
				`CREATE TABLE shows (
                    id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
                    name VARCHAR(255) NULL,
                    start_time DATETIME NOT NULL,
                    image_link VARCHAR(500) NULL,
                    artist_id BIGINT UNSIGNED NOT NULL,
                    venue_id BIGINT UNSIGNED NOT NULL,
                    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
                    INDEX idx_shows_start (start_time),
                    CONSTRAINT fk_shows_artist FOREIGN KEY (artist_id) REFERENCES artists(id),
                    CONSTRAINT fk_shows_venue FOREIGN KEY (venue_id) REFERENCES venues(id)
                ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
				`CREATE TABLE venue_genres (
                    venue_id BIGINT UNSIGNED NOT NULL,
                    seq INT NOT NULL,
                    genre VARCHAR(120) NOT NULL,
                    PRIMARY KEY (venue_id, seq),
                    CONSTRAINT fk_venue_genres_venue FOREIGN KEY (venue_id) REFERENCES venues(id) ON DELETE CASCADE
                ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
				`CREATE TABLE artist_genres (
                    artist_id BIGINT UNSIGNED NOT NULL,
                    seq INT NOT NULL,
                    genre VARCHAR(120) NOT NULL,
                    PRIMARY KEY (artist_id, seq),
                    CONSTRAINT fk_artist_genres_artist FOREIGN KEY (artist_id) REFERENCES artists(id) ON DELETE CASCADE
                ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			},
			config.DriverSQLite: {
				`CREATE TABLE venues (
                    id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
                    name VARCHAR(255) NOT NULL,
                    city VARCHAR(120) NOT NULL DEFAULT '',
                    state VARCHAR(120) NOT NULL DEFAULT '',
                    address VARCHAR(120) NOT NULL DEFAULT '',
                    phone VARCHAR(120) NOT NULL DEFAULT '',
                    image_link VARCHAR(500) NULL,
                    facebook_link VARCHAR(120) NOT NULL DEFAULT '',
                    seeking_talent BOOLEAN NOT NULL DEFAULT 0,
                    seeking_description VARCHAR(500) NULL,
                    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
                )`,
				`CREATE INDEX idx_venues_area ON venues (city, state)`,
				`CREATE TABLE artists (
                    id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
                    name VARCHAR(255) NOT NULL,
                    city VARCHAR(120) NOT NULL DEFAULT '',
                    state VARCHAR(120) NOT NULL DEFAULT '',
                    phone VARCHAR(120) NOT NULL DEFAULT '',
                    image_link VARCHAR(500) NULL,
                    facebook_link VARCHAR(120) NOT NULL DEFAULT '',
                    seeking_venue BOOLEAN NOT NULL DEFAULT 0,
                    seeking_description VARCHAR(500) NULL,
                    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
                )`,
				`CREATE TABLE shows (
                    id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
                    name VARCHAR(255) NULL,
                    start_time DATETIME NOT NULL,
                    image_link VARCHAR(500) NULL,
                    artist_id INTEGER NOT NULL REFERENCES artists(id),
                    venue_id INTEGER NOT NULL REFERENCES venues(id),
                    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
                )`,
				`CREATE INDEX idx_shows_start ON shows (start_time)`,
				`CREATE TABLE venue_genres (
                    venue_id INTEGER NOT NULL REFERENCES venues(id) ON DELETE CASCADE,
                    seq INTEGER NOT NULL,
                    genre VARCHAR(120) NOT NULL,
                    PRIMARY KEY (venue_id, seq)
                )`,
				`CREATE TABLE artist_genres (
                    artist_id INTEGER NOT NULL REFERENCES artists(id) ON DELETE CASCADE,
                    seq INTEGER NOT NULL,
                    genre VARCHAR(120) NOT NULL,
                    PRIMARY KEY (artist_id, seq)
                )`,
			},
		},
	},
	{
		Version: 2,
		Queries: map[string][]string{
			config.DriverMySQL: {
				`ALTER TABLE venues ADD COLUMN website_link VARCHAR(500) NOT NULL DEFAULT ''`,
				`ALTER TABLE artists ADD COLUMN website_link VARCHAR(500) NOT NULL DEFAULT ''`,
				`CREATE INDEX idx_shows_venue_start ON shows (venue_id, start_time)`,
				`CREATE INDEX idx_shows_artist_start ON shows (artist_id, start_time)`,
			},
			config.DriverSQLite: {
				`ALTER TABLE venues ADD COLUMN website_link VARCHAR(500) NOT NULL DEFAULT ''`,
				`ALTER TABLE artists ADD COLUMN website_link VARCHAR(500) NOT NULL DEFAULT ''`,
				`CREATE INDEX idx_shows_venue_start ON shows (venue_id, start_time)`,
				`CREATE INDEX idx_shows_artist_start ON shows (artist_id, start_time)`,
			},
		},
	},
}
