package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fyyur/internal/repository"
)

const recentLimit = 10

// HomeHandler serves the landing page.
type HomeHandler struct {
	Deps
	Venues  *repository.VenueRepo
	Artists *repository.ArtistRepo
}

// NewHomeHandler returns a HomeHandler.
func NewHomeHandler(venues *repository.VenueRepo, artists *repository.ArtistRepo, deps Deps) *HomeHandler {
	return &HomeHandler{Deps: deps.withDefaults(), Venues: venues, Artists: artists}
}

// Index handles GET / with the newest venues and artists.
func (h *HomeHandler) Index(c echo.Context) error {
	now := h.Clock.Now()
	ctx := c.Request().Context()
	venues, err := h.Venues.Recent(ctx, recentLimit, now)
	if err != nil {
		return h.fail(c, err, "venues could not be loaded")
	}
	artists, err := h.Artists.Recent(ctx, recentLimit, now)
	if err != nil {
		return h.fail(c, err, "artists could not be loaded")
	}
	return c.JSON(http.StatusOK, map[string]any{"recent_venues": venues, "recent_artists": artists})
}
