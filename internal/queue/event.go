// Package queue carries listing change events from the web process to the
// activity consumer over RabbitMQ.
package queue

import (
	"fmt"
	"strings"
	"time"
)

// ListingQueue is the durable queue every listing event is published to.
const ListingQueue = "fyyur.listing"

// EventType names a committed change to the listings.
type EventType string

const (
	VenueCreated  EventType = "venue.created"
	VenueUpdated  EventType = "venue.updated"
	VenueDeleted  EventType = "venue.deleted"
	ArtistCreated EventType = "artist.created"
	ArtistUpdated EventType = "artist.updated"
	ArtistDeleted EventType = "artist.deleted"
	ShowCreated   EventType = "show.created"
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case VenueCreated, VenueUpdated, VenueDeleted,
		ArtistCreated, ArtistUpdated, ArtistDeleted, ShowCreated:
		return true
	}
	return false
}

// ListingEvent is published after a command commits.  It carries enough for
// the activity log without a database lookup.
type ListingEvent struct {
	Type       EventType `json:"type"`
	EntityID   uint64    `json:"entity_id"`
	Name       string    `json:"name,omitempty"`
	VenueID    uint64    `json:"venue_id,omitempty"`
	ArtistID   uint64    `json:"artist_id,omitempty"`
	StartTime  string    `json:"start_time,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Line renders e as one activity log line.
func (e ListingEvent) Line() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s | id=%d", e.OccurredAt.UTC().Format(time.RFC3339), e.Type, e.EntityID)
	if e.Name != "" {
		fmt.Fprintf(&b, " | name=%q", e.Name)
	}
	if e.VenueID != 0 {
		fmt.Fprintf(&b, " | venue_id=%d", e.VenueID)
	}
	if e.ArtistID != 0 {
		fmt.Fprintf(&b, " | artist_id=%d", e.ArtistID)
	}
	if e.StartTime != "" {
		fmt.Fprintf(&b, " | start_time=%s", e.StartTime)
	}
	b.WriteByte('\n')
	return b.String()
}
