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

const venueColumns = `id, name, city, state, address, phone, image_link, facebook_link,
	website_link, seeking_talent, seeking_description, created_at`

// VenueRepo manages persistence for venues and their genres.
type VenueRepo struct {
	db     *sqlx.DB
	logger *logrus.Entry
}

// NewVenueRepo returns a VenueRepo backed by db.
func NewVenueRepo(db *sqlx.DB, logger *logrus.Entry) *VenueRepo {
	return &VenueRepo{db: db, logger: logger.WithField(log.FldComponent, "venues")}
}

type areaRow struct {
	model.VenueSummary
	City  string `db:"city"`
	State string `db:"state"`
}

// ListAreas groups all venues by their exact (city, state) pair.  Groups
// appear in first-seen order of a city, state, id walk, and every venue
// carries the number of its own shows starting after now.
func (r *VenueRepo) ListAreas(ctx context.Context, now time.Time) ([]model.Area, error) {
	const q = `SELECT v.id, v.name, v.city, v.state, COUNT(s.id) AS num_upcoming_shows
		FROM venues v
		LEFT JOIN shows s ON s.venue_id = v.id AND s.start_time > ?
		GROUP BY v.id, v.name, v.city, v.state
		ORDER BY v.city, v.state, v.id`
	var rows []areaRow
	if err := r.db.SelectContext(ctx, &rows, q, dbTime(now)); err != nil {
		return nil, classify(err, "list venues")
	}
	type areaKey struct{ city, state string }
	index := make(map[areaKey]int)
	areas := []model.Area{}
	for _, row := range rows {
		key := areaKey{row.City, row.State}
		i, ok := index[key]
		if !ok {
			i = len(areas)
			index[key] = i
			areas = append(areas, model.Area{City: row.City, State: row.State, Venues: []model.VenueSummary{}})
		}
		areas[i].Venues = append(areas[i].Venues, row.VenueSummary)
	}
	return areas, nil
}

// Search returns every venue whose name contains term, ignoring case.
func (r *VenueRepo) Search(ctx context.Context, term string, now time.Time) ([]model.VenueSummary, error) {
	const q = `SELECT v.id, v.name, COUNT(s.id) AS num_upcoming_shows
		FROM venues v
		LEFT JOIN shows s ON s.venue_id = v.id AND s.start_time > ?
		WHERE LOWER(v.name) LIKE LOWER(?) ESCAPE '` + likeEscape + `'
		GROUP BY v.id, v.name
		ORDER BY v.id`
	r.logger.WithField(log.FldSearch, term).Debug("Searching venues")
	out := []model.VenueSummary{}
	if err := r.db.SelectContext(ctx, &out, q, dbTime(now), containsPattern(term)); err != nil {
		return nil, classify(err, "search venues")
	}
	return out, nil
}

// Recent returns the limit most recently created venues, newest first.
func (r *VenueRepo) Recent(ctx context.Context, limit int, now time.Time) ([]model.VenueSummary, error) {
	const q = `SELECT v.id, v.name, COUNT(s.id) AS num_upcoming_shows
		FROM venues v
		LEFT JOIN shows s ON s.venue_id = v.id AND s.start_time > ?
		GROUP BY v.id, v.name
		ORDER BY v.id DESC
		LIMIT ?`
	out := []model.VenueSummary{}
	if err := r.db.SelectContext(ctx, &out, q, dbTime(now), limit); err != nil {
		return nil, classify(err, "recent venues")
	}
	return out, nil
}

// GetByID loads a venue and its genres.
func (r *VenueRepo) GetByID(ctx context.Context, id uint64) (*model.Venue, error) {
	var v model.Venue
	err := r.db.GetContext(ctx, &v, `SELECT `+venueColumns+` FROM venues WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVenueNotFound
	}
	if err != nil {
		return nil, classify(err, "get venue")
	}
	if v.Genres, err = venueGenres.load(ctx, r.db, id); err != nil {
		return nil, classify(err, "get venue genres")
	}
	return &v, nil
}

type venueShowRow struct {
	ID         uint64    `db:"id"`
	StartTime  time.Time `db:"start_time"`
	ArtistID   uint64    `db:"artist_id"`
	ArtistName string    `db:"artist_name"`
	ImageLink  *string   `db:"image_link"`
}

// Detail loads a venue with its shows split around now.  Shows starting
// exactly at now are in neither list.
func (r *VenueRepo) Detail(ctx context.Context, id uint64, now time.Time) (*model.VenueDetail, error) {
	v, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	const q = `SELECT s.id, s.start_time, s.artist_id, a.name AS artist_name, a.image_link
		FROM shows s
		JOIN artists a ON a.id = s.artist_id
		WHERE s.venue_id = ?
		ORDER BY s.start_time, s.id`
	var rows []venueShowRow
	if err := r.db.SelectContext(ctx, &rows, q, id); err != nil {
		return nil, classify(err, "venue shows")
	}
	d := &model.VenueDetail{Venue: *v, PastShows: []model.ShowSummary{}, UpcomingShows: []model.ShowSummary{}}
	now = dbTime(now)
	for _, row := range rows {
		s := model.ShowSummary{
			ID:         row.ID,
			ArtistID:   row.ArtistID,
			ArtistName: row.ArtistName,
			ImageLink:  row.ImageLink,
			StartTime:  model.FormatTime(row.StartTime),
		}
		switch {
		case row.StartTime.Before(now):
			d.PastShows = append(d.PastShows, s)
		case row.StartTime.After(now):
			d.UpcomingShows = append(d.UpcomingShows, s)
		}
	}
	d.PastShowsCount = len(d.PastShows)
	d.UpcomingShowsCount = len(d.UpcomingShows)
	return d, nil
}

// Create inserts v and its genres in one transaction and sets v.ID.
func (r *VenueRepo) Create(ctx context.Context, v *model.Venue) error {
	const q = `INSERT INTO venues (name, city, state, address, phone, image_link, facebook_link,
		website_link, seeking_talent, seeking_description) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	v.Genres = v.Genres.Normalize()
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, q, v.Name, v.City, v.State, v.Address, v.Phone, v.ImageLink,
			v.FacebookLink, v.WebsiteLink, v.SeekingTalent, v.SeekingDescription)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		if err := venueGenres.replace(ctx, tx, uint64(id), v.Genres); err != nil {
			return err
		}
		v.ID = uint64(id)
		return nil
	})
	if err != nil {
		v.ID = 0
		return classify(err, "create venue")
	}
	r.logger.WithField(log.FldID, v.ID).Debug("Venue created")
	return nil
}

// Update overwrites the editable columns and the genres of v.
func (r *VenueRepo) Update(ctx context.Context, v *model.Venue) error {
	const q = `UPDATE venues SET name = ?, city = ?, state = ?, address = ?, phone = ?, image_link = ?,
		facebook_link = ?, website_link = ?, seeking_talent = ?, seeking_description = ? WHERE id = ?`
	v.Genres = v.Genres.Normalize()
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := exists(ctx, tx, "venues", v.ID, ErrVenueNotFound); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, q, v.Name, v.City, v.State, v.Address, v.Phone, v.ImageLink,
			v.FacebookLink, v.WebsiteLink, v.SeekingTalent, v.SeekingDescription, v.ID); err != nil {
			return err
		}
		return venueGenres.replace(ctx, tx, v.ID, v.Genres)
	})
	if err != nil {
		return classify(err, "update venue")
	}
	r.logger.WithField(log.FldID, v.ID).Debug("Venue updated")
	return nil
}

// Delete removes a venue and its genres.  A venue still referenced by
// shows is left untouched and ErrConflict is returned.
func (r *VenueRepo) Delete(ctx context.Context, id uint64) error {
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := exists(ctx, tx, "venues", id, ErrVenueNotFound); err != nil {
			return err
		}
		if err := noShows(ctx, tx, "venue_id", id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM venue_genres WHERE venue_id = ?`, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM venues WHERE id = ?`, id)
		return err
	})
	if err != nil {
		return classify(err, "delete venue")
	}
	r.logger.WithField(log.FldID, id).Debug("Venue deleted")
	return nil
}

// exists returns notFound unless table has a row with id.
func exists(ctx context.Context, tx *sqlx.Tx, table string, id uint64, notFound error) error {
	var n int
	if err := tx.GetContext(ctx, &n, `SELECT COUNT(*) FROM `+table+` WHERE id = ?`, id); err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// noShows returns ErrConflict when any show references id through column.
func noShows(ctx context.Context, tx *sqlx.Tx, column string, id uint64) error {
	var n int
	if err := tx.GetContext(ctx, &n, `SELECT COUNT(*) FROM shows WHERE `+column+` = ?`, id); err != nil {
		return err
	}
	if n > 0 {
		return errors.Wrapf(ErrConflict, "%d shows reference it", n)
	}
	return nil
}
