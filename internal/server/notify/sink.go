// Package notify delivers transaction outcome events to external sinks: the
// notification service webhook, a RabbitMQ exchange and an S3 archive. Events
// reach the sinks through the database outbox and the Dispatcher.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/cloudbank/internal/logging"
	"github.com/dmitrijs2005/cloudbank/internal/server/models"
)

// Sink receives one notification event. Implementations must be safe for
// concurrent use.
type Sink interface {
	Name() string
	Send(ctx context.Context, ev *models.NotificationEvent) error
}

// MultiSink sends every event to all of its sinks and joins their errors.
// A retried event is sent again to sinks that already accepted it.
type MultiSink []Sink

func (m MultiSink) Name() string { return "multi" }

func (m MultiSink) Send(ctx context.Context, ev *models.NotificationEvent) error {
	var errs []error
	for _, s := range m {
		if err := s.Send(ctx, ev); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// LogSink only logs events. It stands in when no other sink is configured.
type LogSink struct {
	logger logging.Logger
}

func NewLogSink(logger logging.Logger) *LogSink {
	return &LogSink{logger: logger.With("module", "notify", "sink", "log")}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Send(ctx context.Context, ev *models.NotificationEvent) error {
	s.logger.Info(ctx, "transaction notification", "trans_id", ev.TransID, "status", string(ev.Status), "reason", ev.Reason)
	return nil
}
