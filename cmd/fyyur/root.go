package main

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iliyamo/fyyur/internal/config"
	"github.com/iliyamo/fyyur/internal/database"
	"github.com/iliyamo/fyyur/internal/log"
)

var rootCmd = &cobra.Command{
	Use:           "fyyur",
	Short:         "Venue, artist and show listings",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
		db, err := openStore(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		logger.Info("Database is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, consumeCmd)
}

func setupLogger(level, format string) *logrus.Entry {
	return log.Setup(level, format).WithField(log.FldVersion, version)
}

// openStore connects to the database and migrates it.  A failed migration
// aborts startup.
func openStore(ctx context.Context, cfg config.Config, logger *logrus.Entry) (*sqlx.DB, error) {
	db, err := database.Open(cfg.DB)
	if err != nil {
		return nil, err
	}
	logger.WithField("driver", cfg.DB.Driver).Info("Connected to database")
	if err := database.Migrate(ctx, db, logger.WithField(log.FldComponent, "migrate")); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "migrate")
	}
	return db, nil
}
