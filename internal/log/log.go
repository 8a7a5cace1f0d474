// Package log holds the logrus field names shared by all packages and the
// process-wide logger setup.
package log

import (
	"os"

	"github.com/sirupsen/logrus"
)

const (
	// FldVersion is the version number of the application
	FldVersion = "ver"
	// FldTransport is the name of the log field for storing a transport name
	FldTransport = "transport"
	// FldComponent names the subsystem that wrote the entry
	FldComponent = "component"
	// FldID is the ID of an entity used in the log entry
	FldID = "id"
	// FldVenue is the ID of a venue
	FldVenue = "venue"
	// FldArtist is the ID of an artist
	FldArtist = "artist"
	// FldSearch is a search term used in a search
	FldSearch = "search"
	// FldRequestID is the request id assigned by the RequestID middleware
	FldRequestID = "request_id"
	// FldMethod is the HTTP method of a request
	FldMethod = "method"
	// FldPath is the route path of a request
	FldPath = "path"
	// FldStatus is the HTTP status sent to the client
	FldStatus = "status"
	// FldLatency is the request handling duration
	FldLatency = "latency"
	// FldIP is the IP address used in the log entry
	FldIP = "ip"
	// FldEvent is the type of a published or consumed listing event
	FldEvent = "event"
	// FldMigration is the version of a database migration
	FldMigration = "migration"
)

// Setup configures the standard logrus logger.  Unknown levels fall back to
// info so a typo in LOG_LEVEL never keeps the service from starting.
func Setup(level, format string) *logrus.Logger {
	logger := logrus.StandardLogger()
	logger.SetOutput(os.Stderr)
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
