package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/fyyur/internal/log"
)

// RequestLogger writes one entry per request.  Server errors log at error
// level, client errors at warn, everything else at info.
func RequestLogger(logger *logrus.Entry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// Let the error handler write the response so the status is final.
				c.Error(err)
			}
			req := c.Request()
			res := c.Response()
			entry := logger.WithFields(logrus.Fields{
				log.FldRequestID: res.Header().Get(echo.HeaderXRequestID),
				log.FldMethod:    req.Method,
				log.FldPath:      req.URL.Path,
				log.FldStatus:    res.Status,
				log.FldLatency:   time.Since(start).String(),
				log.FldIP:        c.RealIP(),
			})
			switch {
			case res.Status >= 500:
				entry.WithError(err).Error("Request failed")
			case res.Status >= 400:
				entry.Warn("Request rejected")
			default:
				entry.Info("Request handled")
			}
			return nil
		}
	}
}
