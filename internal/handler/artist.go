package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fyyur/internal/form"
	"github.com/iliyamo/fyyur/internal/log"
	"github.com/iliyamo/fyyur/internal/queue"
	"github.com/iliyamo/fyyur/internal/repository"
)

// ArtistHandler serves the artist pages and commands.
type ArtistHandler struct {
	Deps
	Artists *repository.ArtistRepo
}

// NewArtistHandler panics when the repository is missing.
func NewArtistHandler(artists *repository.ArtistRepo, deps Deps) *ArtistHandler {
	if artists == nil {
		panic("nil repository passed to NewArtistHandler")
	}
	return &ArtistHandler{Deps: deps.withDefaults(), Artists: artists}
}

// List handles GET /artists.
func (h *ArtistHandler) List(c echo.Context) error {
	now := h.Clock.Now()
	artists, err := h.Artists.List(c.Request().Context(), now)
	if err != nil {
		return h.fail(c, err, "artists could not be loaded")
	}
	return c.JSON(http.StatusOK, map[string]any{"artists": artists})
}

// Search handles POST /artists/search.
func (h *ArtistHandler) Search(c echo.Context) error {
	now := h.Clock.Now()
	var body searchForm
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	artists, err := h.Artists.Search(c.Request().Context(), body.SearchTerm, now)
	if err != nil {
		return h.fail(c, err, "search failed")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"search_term": body.SearchTerm,
		"count":       len(artists),
		"data":        artists,
	})
}

// Show handles GET /artists/:id.
func (h *ArtistHandler) Show(c echo.Context) error {
	now := h.Clock.Now()
	id, err := parseID(c)
	if err != nil {
		return err
	}
	d, err := h.Artists.Detail(c.Request().Context(), id, now)
	if err != nil {
		return h.fail(c, err, "artist could not be loaded")
	}
	return c.JSON(http.StatusOK, d)
}

// CreateForm handles GET /artists/create.
func (h *ArtistHandler) CreateForm(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"form": form.ArtistForm{}, "choices": h.Catalog})
}

// Create handles POST /artists/create.
func (h *ArtistHandler) Create(c echo.Context) error {
	now := h.Clock.Now()
	var f form.ArtistForm
	if err := c.Bind(&f); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := f.Validate(h.Catalog); err != nil {
		return h.fail(c, err, "Artist could not be listed.")
	}
	a := f.ToArtist()
	if err := h.Artists.Create(c.Request().Context(), a); err != nil {
		return h.fail(c, err, fmt.Sprintf("An error occurred. Artist %s could not be listed.", f.Name))
	}
	h.Logger.WithField(log.FldArtist, a.ID).Info("Artist listed")
	h.committed(c, queue.ListingEvent{Type: queue.ArtistCreated, EntityID: a.ID, Name: a.Name, OccurredAt: now})
	return c.JSON(http.StatusCreated, commandResult(
		fmt.Sprintf("Artist %s was successfully listed!", a.Name), "/", "artist", a))
}

// EditForm handles GET /artists/:id/edit and prefills the form.
func (h *ArtistHandler) EditForm(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	a, err := h.Artists.GetByID(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err, "artist could not be loaded")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"artist":  a,
		"form":    form.ArtistFormFrom(a),
		"choices": h.Catalog,
	})
}

// Edit handles POST /artists/:id/edit.
func (h *ArtistHandler) Edit(c echo.Context) error {
	now := h.Clock.Now()
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var f form.ArtistForm
	if err := c.Bind(&f); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := f.Validate(h.Catalog); err != nil {
		return h.fail(c, err, "Artist could not be updated.")
	}
	a := f.ToArtist()
	a.ID = id
	if err := h.Artists.Update(c.Request().Context(), a); err != nil {
		return h.fail(c, err, fmt.Sprintf("An error occurred. Artist %s could not be updated.", f.Name))
	}
	h.committed(c, queue.ListingEvent{Type: queue.ArtistUpdated, EntityID: id, Name: a.Name, OccurredAt: now})
	return c.JSON(http.StatusOK, commandResult(
		fmt.Sprintf("Artist %s was successfully updated!", a.Name), fmt.Sprintf("/artists/%d", id), "artist", a))
}

// Delete handles DELETE /artists/:id.  Artists with shows are kept.
func (h *ArtistHandler) Delete(c echo.Context) error {
	now := h.Clock.Now()
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.Artists.Delete(c.Request().Context(), id); err != nil {
		return h.fail(c, err, fmt.Sprintf("An error occurred. Artist %d could not be deleted.", id))
	}
	h.committed(c, queue.ListingEvent{Type: queue.ArtistDeleted, EntityID: id, OccurredAt: now})
	return c.JSON(http.StatusOK, commandResult(
		fmt.Sprintf("Artist %d was successfully deleted.", id), "/", "", nil))
}
