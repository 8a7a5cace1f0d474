package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/daemon"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iliyamo/fyyur/internal/catalog"
	"github.com/iliyamo/fyyur/internal/config"
	"github.com/iliyamo/fyyur/internal/handler"
	"github.com/iliyamo/fyyur/internal/log"
	"github.com/iliyamo/fyyur/internal/middleware"
	"github.com/iliyamo/fyyur/internal/queue"
	"github.com/iliyamo/fyyur/internal/repository"
	"github.com/iliyamo/fyyur/internal/router"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	cfg := config.Load()
	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)

	db, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	rdb := config.NewRedisClient(logger.WithField(log.FldComponent, "redis"))
	if rdb != nil {
		defer rdb.Close()
	}

	var events queue.Publisher = queue.NopPublisher{}
	if cfg.EventsEnabled {
		events = queue.NewAMQPPublisher(cfg.RabbitURL, logger)
	}

	e, err := newServer(db, rdb, events, clockwork.NewRealClock(), logger)
	if err != nil {
		return err
	}
	addr := ":" + cfg.Port

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go watchdog(cfg.Port, logger)

	logger.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("Starting listening port")
	return serve(sigCtx, e, addr, logger)
}

// serve binds addr, reports readiness to systemd once the socket is open and
// runs e until ctx is done or the server fails.  A failure to bind or serve
// is returned so the process exits non-zero.
func serve(ctx context.Context, e *echo.Echo, addr string, logger *logrus.Entry) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrap(err, "listen")
	}
	e.Listener = ln

	served := make(chan error, 1)
	go func() { served <- e.Start(addr) }()

	// Notify systemd that we are ready to go (if available)
	_, _ = daemon.SdNotify(false, "READY=1")

	select {
	case err := <-served:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "serve")
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	_, _ = daemon.SdNotify(false, "STOPPING=1")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
	}
	<-served
	logger.Info("Shutdown complete")
	return nil
}

// newServer assembles echo with the middleware stack and every route.
func newServer(db *sqlx.DB, rdb *redis.Client, events queue.Publisher, clock clockwork.Clock, logger *logrus.Entry) (*echo.Echo, error) {
	cacheCfg, err := config.LoadCacheConfig()
	if err != nil {
		return nil, errors.Wrap(err, "cache config")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger = log.NewEchoLogger(logger.Logger)
	e.HTTPErrorHandler = handler.JSONErrorHandler(logger.WithField(log.FldComponent, "http"))

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(logger.WithField(log.FldTransport, "http")))
	e.Use(echomw.Secure())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger))

	cache := middleware.NewPageCache(cacheCfg, rdb, logger)
	deps := handler.Deps{
		Catalog: catalog.Default(),
		Clock:   clock,
		Cache:   cache,
		Events:  events,
		Logger:  logger.WithField(log.FldComponent, "handler"),
	}
	repoLogger := logger.WithField(log.FldComponent, "repository")
	venues := repository.NewVenueRepo(db, repoLogger)
	artists := repository.NewArtistRepo(db, repoLogger)
	shows := repository.NewShowRepo(db, repoLogger)

	router.Register(e, router.Handlers{
		Home:    handler.NewHomeHandler(venues, artists, deps),
		Venues:  handler.NewVenueHandler(venues, deps),
		Artists: handler.NewArtistHandler(artists, deps),
		Shows:   handler.NewShowHandler(shows, deps),
		Health:  handler.Health(db),
	}, cache.Middleware())
	return e, nil
}

// watchdog pings systemd while /healthz answers.  It returns at once when
// the unit has no watchdog configured.
func watchdog(port string, logger *logrus.Entry) {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval == 0 {
		return
	}
	logger.Info("Activating systemd watchdog goroutine")
	url := fmt.Sprintf("http://127.0.0.1:%s/healthz", port)
	client := &http.Client{Timeout: interval / 3}
	for {
		if resp, err := client.Get(url); err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				_, _ = daemon.SdNotify(false, "WATCHDOG=1")
			}
		}
		time.Sleep(interval / 3)
	}
}
