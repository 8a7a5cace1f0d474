package model

import "time"

// Artist represents a performer who can be booked into shows.  Show
// counts are derived from `shows` on every read and never stored.
type Artist struct {
	ID                 uint64    `db:"id" json:"id"`
	Name               string    `db:"name" json:"name"`
	City               string    `db:"city" json:"city"`
	State              string    `db:"state" json:"state"`
	Phone              string    `db:"phone" json:"phone"`
	ImageLink          *string   `db:"image_link" json:"image_link"`
	FacebookLink       string    `db:"facebook_link" json:"facebook_link"`
	WebsiteLink        string    `db:"website_link" json:"website_link"`
	SeekingVenue       bool      `db:"seeking_venue" json:"seeking_venue"`
	SeekingDescription *string   `db:"seeking_description" json:"seeking_description"`
	CreatedAt          time.Time `db:"created_at" json:"-"`
	Genres             Genres    `db:"-" json:"genres"`
}

// ArtistSummary is an artist entry in listings and search results.
type ArtistSummary struct {
	ID               uint64 `db:"id" json:"id"`
	Name             string `db:"name" json:"name"`
	NumUpcomingShows int    `db:"num_upcoming_shows" json:"num_upcoming_shows"`
}

// ArtistDetail is an artist with its show schedule split at a single instant.
type ArtistDetail struct {
	Artist
	PastShows          []ShowSummary `json:"past_shows"`
	UpcomingShows      []ShowSummary `json:"upcoming_shows"`
	PastShowsCount     int           `json:"past_shows_count"`
	UpcomingShowsCount int           `json:"upcoming_shows_count"`
}
