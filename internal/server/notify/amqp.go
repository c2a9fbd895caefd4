package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cloudbank/internal/server/models"
	amqp "github.com/rabbitmq/amqp091-go"
)

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPSink publishes events to a durable topic exchange with the routing key
// "transaction.<status>".
type AMQPSink struct {
	conn     *amqp.Connection
	ch       amqpChannel
	exchange string
	now      func() time.Time
}

// NewAMQPSink connects to url and declares exchange.
func NewAMQPSink(url, exchange string) (*AMQPSink, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	sink := newAMQPSink(ch, exchange)
	sink.conn = conn
	return sink, nil
}

func newAMQPSink(ch amqpChannel, exchange string) *AMQPSink {
	return &AMQPSink{ch: ch, exchange: exchange, now: time.Now}
}

// RoutingKey returns the routing key used for events with status.
func RoutingKey(status models.TransactionStatus) string {
	return "transaction." + string(status)
}

func (s *AMQPSink) Name() string { return "amqp" }

func (s *AMQPSink) Send(ctx context.Context, ev *models.NotificationEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	return s.ch.PublishWithContext(ctx, s.exchange, RoutingKey(ev.Status), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.TransID,
		Timestamp:    s.now().UTC(),
		Body:         body,
	})
}

func (s *AMQPSink) Close() error {
	err := s.ch.Close()
	if s.conn != nil {
		if cerr := s.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
