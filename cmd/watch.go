package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"library/config"
	"library/events"
	"library/log"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Log loan events from the configured sink",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return watch(ctx, cfg)
	},
}

func watch(ctx context.Context, cfg config.Config) error {
	logger := log.GetLogger(ctx)
	handle := func(m events.Message) {
		entry := logger.WithFields(logrus.Fields{
			"event":   m.Type,
			"loan_id": m.LoanID,
			"user_id": m.UserID,
			"book_id": m.BookID,
		})
		if m.Rate != nil {
			entry = entry.WithField("rate", *m.Rate)
		}
		entry.Info(m.OccurredAt.Format("2006-01-02 15:04:05"))
	}

	switch cfg.Events.Sink {
	case config.SinkRedis:
		client := events.NewRedisClient(cfg.Redis)
		defer func() { _ = client.Close() }()
		return events.Subscribe(ctx, client, cfg.Events.Channel, handle)
	case config.SinkKafka:
		return events.Consume(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Group, handle)
	default:
		return fmt.Errorf("nothing to watch: events.sink is %q", cfg.Events.Sink)
	}
}
