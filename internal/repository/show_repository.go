package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/fyyur/internal/database"
	"github.com/iliyamo/fyyur/internal/log"
	"github.com/iliyamo/fyyur/internal/model"
)

// ShowRepo manages persistence for shows.  Shows are only ever listed and
// created.
type ShowRepo struct {
	db     *sqlx.DB
	logger *logrus.Entry
}

// NewShowRepo returns a ShowRepo backed by db.
func NewShowRepo(db *sqlx.DB, logger *logrus.Entry) *ShowRepo {
	return &ShowRepo{db: db, logger: logger.WithField(log.FldComponent, "shows")}
}

type showListingRow struct {
	ID              uint64    `db:"id"`
	StartTime       time.Time `db:"start_time"`
	VenueID         uint64    `db:"venue_id"`
	VenueName       *string   `db:"venue_name"`
	ArtistID        uint64    `db:"artist_id"`
	ArtistName      *string   `db:"artist_name"`
	ArtistImageLink *string   `db:"artist_image_link"`
}

// List returns every show ordered by start time with the names of its
// venue and artist.  A show whose venue or artist cannot be resolved
// yields ErrConstraint.
func (r *ShowRepo) List(ctx context.Context) ([]model.ShowListing, error) {
	const q = `SELECT s.id, s.start_time, s.venue_id, v.name AS venue_name,
			s.artist_id, a.name AS artist_name, a.image_link AS artist_image_link
		FROM shows s
		LEFT JOIN venues v ON v.id = s.venue_id
		LEFT JOIN artists a ON a.id = s.artist_id
		ORDER BY s.start_time, s.id`
	var rows []showListingRow
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, classify(err, "list shows")
	}
	out := make([]model.ShowListing, 0, len(rows))
	for _, row := range rows {
		if row.VenueName == nil || row.ArtistName == nil {
			return nil, errors.Wrapf(ErrConstraint, "show %d has a dangling reference", row.ID)
		}
		out = append(out, model.ShowListing{
			ID:              row.ID,
			VenueID:         row.VenueID,
			VenueName:       *row.VenueName,
			ArtistID:        row.ArtistID,
			ArtistName:      *row.ArtistName,
			ArtistImageLink: row.ArtistImageLink,
			StartTime:       model.FormatTime(row.StartTime),
		})
	}
	return out, nil
}

// Create inserts s and sets s.ID.  A reference to a missing artist or
// venue yields ErrConstraint and leaves no row behind.
func (r *ShowRepo) Create(ctx context.Context, s *model.Show) error {
	const q = `INSERT INTO shows (name, start_time, image_link, artist_id, venue_id) VALUES (?, ?, ?, ?, ?)`
	s.StartTime = dbTime(s.StartTime)
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, q, s.Name, s.StartTime, s.ImageLink, s.ArtistID, s.VenueID)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		s.ID = uint64(id)
		return nil
	})
	if err != nil {
		s.ID = 0
		return classify(err, "create show")
	}
	r.logger.WithFields(logrus.Fields{
		log.FldID:     s.ID,
		log.FldVenue:  s.VenueID,
		log.FldArtist: s.ArtistID,
	}).Debug("Show created")
	return nil
}
