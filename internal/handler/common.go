package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/fyyur/internal/catalog"
	"github.com/iliyamo/fyyur/internal/form"
	"github.com/iliyamo/fyyur/internal/log"
	"github.com/iliyamo/fyyur/internal/queue"
)

// Invalidator drops cached pages after a command changed the listings.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

type nopInvalidator struct{}

func (nopInvalidator) Invalidate(context.Context) error { return nil }

// Deps are the collaborators every handler shares.
type Deps struct {
	Catalog *catalog.Catalog
	Clock   clockwork.Clock
	Cache   Invalidator
	Events  queue.Publisher
	Logger  *logrus.Entry
}

// withDefaults fills the optional collaborators.
func (d Deps) withDefaults() Deps {
	if d.Catalog == nil {
		d.Catalog = catalog.Default()
	}
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}
	if d.Cache == nil {
		d.Cache = nopInvalidator{}
	}
	if d.Events == nil {
		d.Events = queue.NopPublisher{}
	}
	if d.Logger == nil {
		d.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return d
}

// parseID reads the :id path parameter.
func parseID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// fail answers a failed query or command.  Failure kinds get distinct
// statuses; the message is the user-facing one, never the cause.
func (d Deps) fail(c echo.Context, err error, message string) error {
	status := statusOf(err)
	entry := d.Logger.WithError(err).WithField(log.FldRequestID, c.Response().Header().Get(echo.HeaderXRequestID))
	var verr *form.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(status, map[string]any{"error": message, "fields": verr.Fields})
	case status == http.StatusNotFound:
		return c.JSON(status, map[string]string{"error": notFoundMessage(err)})
	case status >= 500:
		entry.Error("Store failure")
	default:
		entry.Warn("Command rejected")
	}
	return c.JSON(status, map[string]string{"error": message})
}

// committed runs the side effects of a successful command.  Neither may
// fail the request: the change is already durable.
func (d Deps) committed(c echo.Context, ev queue.ListingEvent) {
	ctx := c.Request().Context()
	if err := d.Cache.Invalidate(ctx); err != nil {
		d.Logger.WithError(err).Warn("Cache invalidation failed")
	}
	if err := d.Events.Publish(ctx, ev); err != nil {
		d.Logger.WithError(err).WithField(log.FldEvent, ev.Type).Warn("Event publish failed")
	}
}

// commandResult is the body of a successful command.
func commandResult(message, redirect, key string, entity any) map[string]any {
	out := map[string]any{"message": message, "redirect": redirect}
	if key != "" {
		out[key] = entity
	}
	return out
}

// searchForm is the body of the search commands.
type searchForm struct {
	SearchTerm string `form:"search_term" json:"search_term"`
}
