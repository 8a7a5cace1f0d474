package model

import "time"

// Venue represents a physical location that can host shows.  It
// corresponds to a row in the `venues` table; its genres live in
// `venue_genres` and are loaded separately.
type Venue struct {
	ID                 uint64    `db:"id" json:"id"`
	Name               string    `db:"name" json:"name"`
	City               string    `db:"city" json:"city"`
	State              string    `db:"state" json:"state"`
	Address            string    `db:"address" json:"address"`
	Phone              string    `db:"phone" json:"phone"`
	ImageLink          *string   `db:"image_link" json:"image_link"`
	FacebookLink       string    `db:"facebook_link" json:"facebook_link"`
	WebsiteLink        string    `db:"website_link" json:"website_link"`
	SeekingTalent      bool      `db:"seeking_talent" json:"seeking_talent"`
	SeekingDescription *string   `db:"seeking_description" json:"seeking_description"`
	CreatedAt          time.Time `db:"created_at" json:"-"`
	Genres             Genres    `db:"-" json:"genres"`
}

// VenueSummary is a venue entry in listings and search results.
type VenueSummary struct {
	ID               uint64 `db:"id" json:"id"`
	Name             string `db:"name" json:"name"`
	NumUpcomingShows int    `db:"num_upcoming_shows" json:"num_upcoming_shows"`
}

// Area groups the venues sharing one exact (city, state) pair.
type Area struct {
	City   string         `json:"city"`
	State  string         `json:"state"`
	Venues []VenueSummary `json:"venues"`
}

// VenueDetail is a venue with its show schedule split at a single instant.
type VenueDetail struct {
	Venue
	PastShows          []ShowSummary `json:"past_shows"`
	UpcomingShows      []ShowSummary `json:"upcoming_shows"`
	PastShowsCount     int           `json:"past_shows_count"`
	UpcomingShowsCount int           `json:"upcoming_shows_count"`
}
