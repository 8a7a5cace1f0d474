// Package repository defines the data access layer and the error values
// shared by every repository.  These sentinels allow handlers to tell the
// failure kinds apart: a missing row, a delete blocked by dependent shows,
// a write rejected by a store constraint, or a store that could not be
// reached at all.
package repository

import (
	"time"

	"github.com/pkg/errors"

	"github.com/iliyamo/fyyur/internal/database"
)

var (
	// ErrVenueNotFound is returned when no venue has the requested id.
	ErrVenueNotFound = errors.New("venue not found")
	// ErrArtistNotFound is returned when no artist has the requested id.
	ErrArtistNotFound = errors.New("artist not found")
	// ErrConflict is returned when a delete cannot be performed because
	// shows still reference the row.  Handlers translate it into 409.
	ErrConflict = errors.New("conflict")
	// ErrConstraint is returned when the store rejects a write because it
	// would break referential integrity or uniqueness.
	ErrConstraint = errors.New("constraint violation")
	// ErrUnavailable is returned when the store connection or the
	// transaction itself failed.
	ErrUnavailable = errors.New("store unavailable")
)

var sentinels = []error{ErrVenueNotFound, ErrArtistNotFound, ErrConflict, ErrConstraint, ErrUnavailable}

// classify wraps a driver error into the matching sentinel.  Errors that
// already carry a sentinel are returned untouched.
func classify(err error, op string) error {
	if err == nil {
		return nil
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return err
		}
	}
	switch {
	case database.IsForeignKeyViolation(err), database.IsUniqueViolation(err):
		return errors.Wrapf(ErrConstraint, "%s: %v", op, err)
	case database.IsUnavailable(err):
		return errors.Wrapf(ErrUnavailable, "%s: %v", op, err)
	}
	return errors.Wrap(err, op)
}

// dbTime normalizes t to the precision and zone the schema stores.
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
