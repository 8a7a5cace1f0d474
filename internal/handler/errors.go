package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/fyyur/internal/form"
	"github.com/iliyamo/fyyur/internal/repository"
)

// JSONErrorHandler renders every error that reaches echo as {"error": ...}.
// Anything that is not an *echo.HTTPError becomes a bare 500 so driver
// messages never reach the client.
func JSONErrorHandler(logger *logrus.Entry) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := http.StatusText(code)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			msg = fmt.Sprint(he.Message)
		}
		if code >= 500 {
			logger.WithError(err).Error("Unhandled error")
		}
		if c.Response().Committed {
			return
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, map[string]string{"error": msg})
		}
		if err != nil {
			logger.WithError(err).Error("Failed to write error response")
		}
	}
}

// statusOf maps a failure to its HTTP status.
func statusOf(err error) int {
	var verr *form.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrVenueNotFound), errors.Is(err, repository.ErrArtistNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, repository.ErrConstraint):
		return http.StatusUnprocessableEntity
	case errors.Is(err, repository.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// notFoundMessage names the missing entity.
func notFoundMessage(err error) string {
	if errors.Is(err, repository.ErrArtistNotFound) {
		return "artist not found"
	}
	return "venue not found"
}
