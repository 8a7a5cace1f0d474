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

// VenueHandler serves the venue pages and commands.
type VenueHandler struct {
	Deps
	Venues *repository.VenueRepo
}

// NewVenueHandler panics when the repository is missing.
func NewVenueHandler(venues *repository.VenueRepo, deps Deps) *VenueHandler {
	if venues == nil {
		panic("nil repository passed to NewVenueHandler")
	}
	return &VenueHandler{Deps: deps.withDefaults(), Venues: venues}
}

// List handles GET /venues.
func (h *VenueHandler) List(c echo.Context) error {
	now := h.Clock.Now()
	areas, err := h.Venues.ListAreas(c.Request().Context(), now)
	if err != nil {
		return h.fail(c, err, "venues could not be loaded")
	}
	return c.JSON(http.StatusOK, map[string]any{"areas": areas})
}

// Search handles POST /venues/search.
func (h *VenueHandler) Search(c echo.Context) error {
	now := h.Clock.Now()
	var body searchForm
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	venues, err := h.Venues.Search(c.Request().Context(), body.SearchTerm, now)
	if err != nil {
		return h.fail(c, err, "search failed")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"search_term": body.SearchTerm,
		"count":       len(venues),
		"data":        venues,
	})
}

// Show handles GET /venues/:id.
func (h *VenueHandler) Show(c echo.Context) error {
	now := h.Clock.Now()
	id, err := parseID(c)
	if err != nil {
		return err
	}
	d, err := h.Venues.Detail(c.Request().Context(), id, now)
	if err != nil {
		return h.fail(c, err, "venue could not be loaded")
	}
	return c.JSON(http.StatusOK, d)
}

// CreateForm handles GET /venues/create.
func (h *VenueHandler) CreateForm(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"form": form.VenueForm{}, "choices": h.Catalog})
}

// Create handles POST /venues/create.
func (h *VenueHandler) Create(c echo.Context) error {
	now := h.Clock.Now()
	var f form.VenueForm
	if err := c.Bind(&f); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := f.Validate(h.Catalog); err != nil {
		return h.fail(c, err, "Venue could not be listed.")
	}
	v := f.ToVenue()
	if err := h.Venues.Create(c.Request().Context(), v); err != nil {
		return h.fail(c, err, fmt.Sprintf("An error occurred. Venue %s could not be listed.", f.Name))
	}
	h.Logger.WithField(log.FldVenue, v.ID).Info("Venue listed")
	h.committed(c, queue.ListingEvent{Type: queue.VenueCreated, EntityID: v.ID, Name: v.Name, OccurredAt: now})
	return c.JSON(http.StatusCreated, commandResult(
		fmt.Sprintf("Venue %s was successfully listed!", v.Name), "/", "venue", v))
}

// EditForm handles GET /venues/:id/edit and prefills the form.
func (h *VenueHandler) EditForm(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	v, err := h.Venues.GetByID(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err, "venue could not be loaded")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"venue":   v,
		"form":    form.VenueFormFrom(v),
		"choices": h.Catalog,
	})
}

// Edit handles POST /venues/:id/edit.
func (h *VenueHandler) Edit(c echo.Context) error {
	now := h.Clock.Now()
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var f form.VenueForm
	if err := c.Bind(&f); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := f.Validate(h.Catalog); err != nil {
		return h.fail(c, err, "Venue could not be updated.")
	}
	v := f.ToVenue()
	v.ID = id
	if err := h.Venues.Update(c.Request().Context(), v); err != nil {
		return h.fail(c, err, fmt.Sprintf("An error occurred. Venue %s could not be updated.", f.Name))
	}
	h.committed(c, queue.ListingEvent{Type: queue.VenueUpdated, EntityID: id, Name: v.Name, OccurredAt: now})
	return c.JSON(http.StatusOK, commandResult(
		fmt.Sprintf("Venue %s was successfully updated!", v.Name), venuePath(id), "venue", v))
}

// Delete handles DELETE /venues/:id.  Venues with shows are kept.
func (h *VenueHandler) Delete(c echo.Context) error {
	now := h.Clock.Now()
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.Venues.Delete(c.Request().Context(), id); err != nil {
		return h.fail(c, err, fmt.Sprintf("An error occurred. Venue %d could not be deleted.", id))
	}
	h.committed(c, queue.ListingEvent{Type: queue.VenueDeleted, EntityID: id, OccurredAt: now})
	return c.JSON(http.StatusOK, commandResult(
		fmt.Sprintf("Venue %d was successfully deleted.", id), "/", "", nil))
}

func venuePath(id uint64) string { return fmt.Sprintf("/venues/%d", id) }
