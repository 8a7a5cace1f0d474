package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iliyamo/fyyur/internal/config"
	"github.com/iliyamo/fyyur/internal/queue"
)

var activityLog string

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Append listing events from RabbitMQ to the activity log",
	RunE: func(cmd *cobra.Command, args []string) error {
		// The consumer needs no database, so config.Load and its required
		// DB_* variables are skipped.
		logger := setupLogger(config.LogSettings())
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		c := queue.NewConsumer(config.RabbitURL(), activityLog, logger)
		logger.WithField("path", activityLog).Info("Starting activity consumer")
		return c.Run(ctx)
	},
}

func init() {
	consumeCmd.Flags().StringVar(&activityLog, "log", "logs/activity.log", "activity log file")
}
