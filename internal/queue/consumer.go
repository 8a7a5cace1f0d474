package queue

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/fyyur/internal/log"
)

const maxBackoff = 30 * time.Second

// Consumer appends every listing event to an activity log file.
type Consumer struct {
	URL     string
	LogPath string
	Logger  *logrus.Entry

	mu sync.Mutex
}

// NewConsumer returns a consumer writing to logPath.
func NewConsumer(url, logPath string, logger *logrus.Entry) *Consumer {
	return &Consumer{URL: url, LogPath: logPath, Logger: logger.WithField(log.FldComponent, "consumer")}
}

// Run consumes until ctx is done, reconnecting with exponential backoff
// whenever the broker is unreachable or the delivery channel closes.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err == nil {
			backoff = time.Second
			err = c.consume(ctx, conn)
			_ = conn.Close()
			if ctx.Err() != nil {
				return nil
			}
			c.Logger.WithError(err).Warn("Consume loop ended; reconnecting")
		} else {
			c.Logger.WithError(err).Warnf("Failed to dial broker; retrying in %s", backoff)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		if backoff < maxBackoff {
			backoff *= 2
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return errors.Wrap(err, "open channel")
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Logger.WithError(err).Warn("Set QoS failed")
	}
	if err := declare(ch); err != nil {
		return err
	}
	msgs, err := ch.ConsumeWithContext(ctx, ListingQueue, "", false, false, false, false, nil)
	if err != nil {
		return errors.Wrap(err, "consume")
	}
	c.Logger.Info("Consuming listing events")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.Handle(d.Body); err != nil {
				c.Logger.WithError(err).Error("Dropping listing event")
				// no requeue: a bad message would loop forever
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Handle decodes one message body and appends it to the activity log.
func (c *Consumer) Handle(body []byte) error {
	var ev ListingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return errors.Wrap(err, "unmarshal")
	}
	if !ev.Type.Valid() {
		return errors.Errorf("unknown event type %q", ev.Type)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(c.LogPath), 0o755); err != nil {
		return errors.Wrap(err, "create log directory")
	}
	f, err := os.OpenFile(c.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "open activity log")
	}
	defer f.Close()
	if _, err := f.WriteString(ev.Line()); err != nil {
		return errors.Wrap(err, "write activity log")
	}
	c.Logger.WithFields(logrus.Fields{log.FldEvent: ev.Type, log.FldID: ev.EntityID}).Debug("Event recorded")
	return nil
}
