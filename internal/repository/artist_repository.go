package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/fyyur/internal/database"
	"github.com/iliyamo/fyyur/internal/log"
	"github.com/iliyamo/fyyur/internal/model"
)

const artistColumns = `id, name, city, state, phone, image_link, facebook_link,
	website_link, seeking_venue, seeking_description, created_at`

// artistSummarySelect counts each artist's own shows after the bound time.
const artistSummarySelect = `SELECT a.id, a.name, COUNT(s.id) AS num_upcoming_shows
	FROM artists a
	LEFT JOIN shows s ON s.artist_id = a.id AND s.start_time > ?`

// ArtistRepo manages persistence for artists and their genres.
type ArtistRepo struct {
	db     *sqlx.DB
	logger *logrus.Entry
}

// NewArtistRepo returns an ArtistRepo backed by db.
func NewArtistRepo(db *sqlx.DB, logger *logrus.Entry) *ArtistRepo {
	return &ArtistRepo{db: db, logger: logger.WithField(log.FldComponent, "artists")}
}

// List returns every artist ordered by id.
func (r *ArtistRepo) List(ctx context.Context, now time.Time) ([]model.ArtistSummary, error) {
	out := []model.ArtistSummary{}
	q := artistSummarySelect + ` GROUP BY a.id, a.name ORDER BY a.id`
	if err := r.db.SelectContext(ctx, &out, q, dbTime(now)); err != nil {
		return nil, classify(err, "list artists")
	}
	return out, nil
}

// Search returns every artist whose name contains term, ignoring case.
func (r *ArtistRepo) Search(ctx context.Context, term string, now time.Time) ([]model.ArtistSummary, error) {
	q := artistSummarySelect + ` WHERE LOWER(a.name) LIKE LOWER(?) ESCAPE '` + likeEscape + `'
		GROUP BY a.id, a.name ORDER BY a.id`
	r.logger.WithField(log.FldSearch, term).Debug("Searching artists")
	out := []model.ArtistSummary{}
	if err := r.db.SelectContext(ctx, &out, q, dbTime(now), containsPattern(term)); err != nil {
		return nil, classify(err, "search artists")
	}
	return out, nil
}

// Recent returns the limit most recently created artists, newest first.
func (r *ArtistRepo) Recent(ctx context.Context, limit int, now time.Time) ([]model.ArtistSummary, error) {
	out := []model.ArtistSummary{}
	q := artistSummarySelect + ` GROUP BY a.id, a.name ORDER BY a.id DESC LIMIT ?`
	if err := r.db.SelectContext(ctx, &out, q, dbTime(now), limit); err != nil {
		return nil, classify(err, "recent artists")
	}
	return out, nil
}

// GetByID loads an artist and its genres.
func (r *ArtistRepo) GetByID(ctx context.Context, id uint64) (*model.Artist, error) {
	var a model.Artist
	err := r.db.GetContext(ctx, &a, `SELECT `+artistColumns+` FROM artists WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrArtistNotFound
	}
	if err != nil {
		return nil, classify(err, "get artist")
	}
	if a.Genres, err = artistGenres.load(ctx, r.db, id); err != nil {
		return nil, classify(err, "get artist genres")
	}
	return &a, nil
}

type artistShowRow struct {
	ID        uint64    `db:"id"`
	StartTime time.Time `db:"start_time"`
	VenueID   uint64    `db:"venue_id"`
	VenueName string    `db:"venue_name"`
	ImageLink *string   `db:"image_link"`
}

// Detail loads an artist with its shows split around now.
func (r *ArtistRepo) Detail(ctx context.Context, id uint64, now time.Time) (*model.ArtistDetail, error) {
	a, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	const q = `SELECT s.id, s.start_time, s.venue_id, v.name AS venue_name, v.image_link
		FROM shows s
		JOIN venues v ON v.id = s.venue_id
		WHERE s.artist_id = ?
		ORDER BY s.start_time, s.id`
	var rows []artistShowRow
	if err := r.db.SelectContext(ctx, &rows, q, id); err != nil {
		return nil, classify(err, "artist shows")
	}
	d := &model.ArtistDetail{Artist: *a, PastShows: []model.ShowSummary{}, UpcomingShows: []model.ShowSummary{}}
	now = dbTime(now)
	for _, row := range rows {
		s := model.ShowSummary{
			ID:        row.ID,
			VenueID:   row.VenueID,
			VenueName: row.VenueName,
			ImageLink: row.ImageLink,
			StartTime: model.FormatTime(row.StartTime),
		}
		if row.StartTime.Before(now) {
			d.PastShows = append(d.PastShows, s)
		} else if row.StartTime.After(now) {
			d.UpcomingShows = append(d.UpcomingShows, s)
		}
	}
	d.PastShowsCount = len(d.PastShows)
	d.UpcomingShowsCount = len(d.UpcomingShows)
	return d, nil
}

// Create inserts a and its genres in one transaction and sets a.ID.
func (r *ArtistRepo) Create(ctx context.Context, a *model.Artist) error {
	const q = `INSERT INTO artists (name, city, state, phone, image_link, facebook_link,
		website_link, seeking_venue, seeking_description) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	a.Genres = a.Genres.Normalize()
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, q, a.Name, a.City, a.State, a.Phone, a.ImageLink,
			a.FacebookLink, a.WebsiteLink, a.SeekingVenue, a.SeekingDescription)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		if err := artistGenres.replace(ctx, tx, uint64(id), a.Genres); err != nil {
			return err
		}
		a.ID = uint64(id)
		return nil
	})
	if err != nil {
		a.ID = 0
		return classify(err, "create artist")
	}
	r.logger.WithField(log.FldID, a.ID).Debug("Artist created")
	return nil
}

// Update overwrites the editable columns and the genres of a.
func (r *ArtistRepo) Update(ctx context.Context, a *model.Artist) error {
	const q = `UPDATE artists SET name = ?, city = ?, state = ?, phone = ?, image_link = ?,
		facebook_link = ?, website_link = ?, seeking_venue = ?, seeking_description = ? WHERE id = ?`
	a.Genres = a.Genres.Normalize()
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := exists(ctx, tx, "artists", a.ID, ErrArtistNotFound); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, q, a.Name, a.City, a.State, a.Phone, a.ImageLink,
			a.FacebookLink, a.WebsiteLink, a.SeekingVenue, a.SeekingDescription, a.ID); err != nil {
			return err
		}
		return artistGenres.replace(ctx, tx, a.ID, a.Genres)
	})
	if err != nil {
		return classify(err, "update artist")
	}
	r.logger.WithField(log.FldID, a.ID).Debug("Artist updated")
	return nil
}

// Delete removes an artist and its genres unless shows still reference it.
func (r *ArtistRepo) Delete(ctx context.Context, id uint64) error {
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := exists(ctx, tx, "artists", id, ErrArtistNotFound); err != nil {
			return err
		}
		if err := noShows(ctx, tx, "artist_id", id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM artist_genres WHERE artist_id = ?`, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM artists WHERE id = ?`, id)
		return err
	})
	if err != nil {
		return classify(err, "delete artist")
	}
	r.logger.WithField(log.FldID, id).Debug("Artist deleted")
	return nil
}
