package form

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/fyyur/internal/model"
)

// startTimeLayouts are tried in order when parsing a submitted start time.
// Layouts without a zone are read as UTC.
var startTimeLayouts = []string{
	model.TimeLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// ShowForm is the create show form.  IDs arrive as form strings or JSON
// numbers.
type ShowForm struct {
	Name      string      `form:"name" json:"name"`
	ArtistID  json.Number `form:"artist_id" json:"artist_id"`
	VenueID   json.Number `form:"venue_id" json:"venue_id"`
	StartTime string      `form:"start_time" json:"start_time"`
	ImageLink string      `form:"image_link" json:"image_link"`

	artistID  uint64
	venueID   uint64
	startTime time.Time
}

// Validate checks the references and the start time.  An empty start time
// is replaced by now.
func (f *ShowForm) Validate(now time.Time) error {
	errs := errorSet{}
	f.artistID = parseRef(errs, "artist_id", f.ArtistID)
	f.venueID = parseRef(errs, "venue_id", f.VenueID)

	f.StartTime = strings.TrimSpace(f.StartTime)
	if f.StartTime == "" {
		f.startTime = now
	} else if t, ok := parseStartTime(f.StartTime); ok {
		f.startTime = t
	} else {
		errs.add("start_time", "must look like "+model.TimeLayout)
	}

	f.ImageLink = strings.TrimSpace(f.ImageLink)
	checkLink(errs, "image_link", f.ImageLink)
	return errs.err()
}

// ToShow converts a validated form into a show row.
func (f *ShowForm) ToShow() *model.Show {
	return &model.Show{
		Name:      optional(f.Name),
		StartTime: f.startTime,
		ImageLink: optional(f.ImageLink),
		ArtistID:  f.artistID,
		VenueID:   f.venueID,
	}
}

func parseRef(errs errorSet, field string, n json.Number) uint64 {
	s := strings.TrimSpace(n.String())
	if s == "" {
		errs.add(field, "is required")
		return 0
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		errs.add(field, "must be a positive integer")
		return 0
	}
	return id
}

func parseStartTime(s string) (time.Time, bool) {
	for _, layout := range startTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
