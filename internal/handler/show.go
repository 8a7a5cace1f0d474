package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/fyyur/internal/form"
	"github.com/iliyamo/fyyur/internal/log"
	"github.com/iliyamo/fyyur/internal/model"
	"github.com/iliyamo/fyyur/internal/queue"
	"github.com/iliyamo/fyyur/internal/repository"
)

// ShowHandler serves the show listing and the create show command.
type ShowHandler struct {
	Deps
	Shows *repository.ShowRepo
}

// NewShowHandler panics when the repository is missing.
func NewShowHandler(shows *repository.ShowRepo, deps Deps) *ShowHandler {
	if shows == nil {
		panic("nil repository passed to NewShowHandler")
	}
	return &ShowHandler{Deps: deps.withDefaults(), Shows: shows}
}

// List handles GET /shows.
func (h *ShowHandler) List(c echo.Context) error {
	shows, err := h.Shows.List(c.Request().Context())
	if err != nil {
		return h.fail(c, err, "shows could not be loaded")
	}
	return c.JSON(http.StatusOK, map[string]any{"shows": shows})
}

// CreateForm handles GET /shows/create.  The start time defaults to now.
func (h *ShowHandler) CreateForm(c echo.Context) error {
	now := h.Clock.Now()
	return c.JSON(http.StatusOK, map[string]any{"form": form.ShowForm{StartTime: model.FormatTime(now)}})
}

// Create handles POST /shows/create.
func (h *ShowHandler) Create(c echo.Context) error {
	now := h.Clock.Now()
	var f form.ShowForm
	if err := c.Bind(&f); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := f.Validate(now); err != nil {
		return h.fail(c, err, "Show could not be listed.")
	}
	s := f.ToShow()
	if err := h.Shows.Create(c.Request().Context(), s); err != nil {
		return h.fail(c, err, "An error occurred. Show could not be listed.")
	}
	h.Logger.WithFields(logrus.Fields{log.FldID: s.ID, log.FldVenue: s.VenueID, log.FldArtist: s.ArtistID}).Info("Show listed")
	h.committed(c, queue.ListingEvent{
		Type:       queue.ShowCreated,
		EntityID:   s.ID,
		VenueID:    s.VenueID,
		ArtistID:   s.ArtistID,
		StartTime:  model.FormatTime(s.StartTime),
		OccurredAt: now,
	})
	return c.JSON(http.StatusCreated, commandResult("Show was successfully listed!", "/", "show", s))
}
