package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/fyyur/internal/log"
)

// Publisher sends listing events.  Callers treat failures as non-fatal:
// the change they describe is already committed.
type Publisher interface {
	Publish(ctx context.Context, ev ListingEvent) error
}

// NopPublisher drops every event.  It is used when events are disabled.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, ListingEvent) error { return nil }

// DefaultDialTimeout bounds the connect and AMQP handshake of a publish.
const DefaultDialTimeout = 2 * time.Second

// AMQPPublisher publishes persistent JSON messages to ListingQueue.  It
// dials per publish; commands are rare enough that a held connection and
// its reconnect logic are not worth it.  Publish runs after the command
// committed, so an unreachable broker costs at most DialTimeout.
type AMQPPublisher struct {
	URL         string
	DialTimeout time.Duration
	Logger      *logrus.Entry
}

// NewAMQPPublisher returns a publisher for the broker at url.
func NewAMQPPublisher(url string, logger *logrus.Entry) *AMQPPublisher {
	return &AMQPPublisher{
		URL:         url,
		DialTimeout: DefaultDialTimeout,
		Logger:      logger.WithField(log.FldComponent, "publisher"),
	}
}

// dial connects within DialTimeout or the deadline of ctx, whichever is
// sooner.
func (p *AMQPPublisher) dial(ctx context.Context) (*amqp.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timeout := p.DialTimeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	return amqp.DialConfig(p.URL, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
}

// Publish implements Publisher.
func (p *AMQPPublisher) Publish(ctx context.Context, ev ListingEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}
	conn, err := p.dial(ctx)
	if err != nil {
		return errors.Wrap(err, "dial broker")
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return errors.Wrap(err, "open channel")
	}
	defer func() { _ = ch.Close() }()

	if err := declare(ch); err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx, "", ListingQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    ev.OccurredAt,
		Type:         string(ev.Type),
		Body:         body,
	})
	if err != nil {
		return errors.Wrap(err, "publish")
	}
	p.Logger.WithField(log.FldEvent, ev.Type).Debug("Event published")
	return nil
}

// declare makes sure the durable queue exists.  It is idempotent.
func declare(ch *amqp.Channel) error {
	_, err := ch.QueueDeclare(ListingQueue, true, false, false, false, nil)
	return errors.Wrap(err, "declare queue")
}
