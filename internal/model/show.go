package model

import "time"

// TimeLayout is the display format for show start times.
const TimeLayout = "2006-01-02 15:04:05"

// Show is a scheduled event linking exactly one artist to exactly one
// venue.  Shows are created once and never edited.
type Show struct {
	ID        uint64    `db:"id" json:"id"`
	Name      *string   `db:"name" json:"name"`
	StartTime time.Time `db:"start_time" json:"start_time"`
	ImageLink *string   `db:"image_link" json:"image_link"`
	ArtistID  uint64    `db:"artist_id" json:"artist_id"`
	VenueID   uint64    `db:"venue_id" json:"venue_id"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}

// ShowListing is one row of the show listing page.
type ShowListing struct {
	ID              uint64  `json:"id"`
	VenueID         uint64  `json:"venue_id"`
	VenueName       string  `json:"venue_name"`
	ArtistID        uint64  `json:"artist_id"`
	ArtistName      string  `json:"artist_name"`
	ArtistImageLink *string `json:"artist_image_link"`
	StartTime       string  `json:"start_time"`
}

// ShowSummary is one entry of a detail page's past or upcoming list.  The
// counterpart is the artist on a venue page and the venue on an artist page.
type ShowSummary struct {
	ID         uint64  `json:"id"`
	VenueID    uint64  `json:"venue_id,omitempty"`
	VenueName  string  `json:"venue_name,omitempty"`
	ArtistID   uint64  `json:"artist_id,omitempty"`
	ArtistName string  `json:"artist_name,omitempty"`
	ImageLink  *string `json:"image_link"`
	StartTime  string  `json:"start_time"`
}

// FormatTime renders t in TimeLayout, in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
