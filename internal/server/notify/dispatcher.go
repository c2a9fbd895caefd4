package notify

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cloudbank/internal/dbx"
	"github.com/dmitrijs2005/cloudbank/internal/logging"
	"github.com/dmitrijs2005/cloudbank/internal/server/config"
	"github.com/dmitrijs2005/cloudbank/internal/server/models"
	"github.com/dmitrijs2005/cloudbank/internal/server/repositories/repomanager"
)

// Dispatcher drains the notification outbox into a Sink. It polls on an
// interval and whenever Wake is called. A message that keeps failing is
// retried with linear backoff and given up after the configured attempts.
// Every send is bounded by the notify timeout.
type Dispatcher struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	sink        Sink
	logger      logging.Logger

	interval    time.Duration
	batchSize   int
	maxAttempts int
	sendTimeout time.Duration
	backoff     func(attempts int) time.Duration
	now         func() time.Time

	wake chan struct{}
}

func NewDispatcher(db *sql.DB, m repomanager.RepositoryManager, sink Sink, cfg *config.Config, logger logging.Logger) *Dispatcher {
	d := &Dispatcher{
		db:          db,
		repomanager: m,
		sink:        sink,
		logger:      logger.With("module", "notify", "sink", sink.Name()),
		interval:    cfg.OutboxPollInterval,
		batchSize:   cfg.OutboxBatchSize,
		maxAttempts: cfg.OutboxMaxAttempts,
		sendTimeout: cfg.NotifyTimeout,
		backoff:     LinearBackoff,
		now:         time.Now,
		wake:        make(chan struct{}, 1),
	}
	if d.interval <= 0 {
		d.interval = 2 * time.Second
	}
	if d.batchSize <= 0 {
		d.batchSize = 20
	}
	if d.maxAttempts <= 0 {
		d.maxAttempts = 5
	}
	if d.sendTimeout <= 0 {
		d.sendTimeout = 5 * time.Second
	}
	return d
}

// LinearBackoff waits ten seconds more after every failed attempt.
func LinearBackoff(attempts int) time.Duration {
	return time.Duration(attempts*10+10) * time.Second
}

// Wake schedules an immediate flush. It never blocks.
func (d *Dispatcher) Wake() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Run flushes the outbox until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.logger.Info(ctx, "notification dispatcher started", "interval", d.interval.String())
	for {
		select {
		case <-ctx.Done():
			d.logger.Info(ctx, "notification dispatcher stopped")
			return nil
		case <-ticker.C:
		case <-d.wake:
		}

		for {
			n, err := d.Flush(ctx)
			if err != nil {
				if ctx.Err() == nil {
					d.logger.Error(ctx, "outbox flush failed", "error", err)
				}
				break
			}
			if n < d.batchSize {
				break
			}
		}
	}
}

// Flush delivers one batch of due messages and returns how many it claimed.
func (d *Dispatcher) Flush(ctx context.Context) (int, error) {
	var claimed int
	err := dbx.WithTx(ctx, d.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := d.repomanager.Outbox(tx)

		msgs, err := repo.ClaimDue(ctx, d.now(), d.batchSize)
		if err != nil {
			return fmt.Errorf("claim outbox: %w", err)
		}
		claimed = len(msgs)

		for _, m := range msgs {
			if err := d.deliver(ctx, repo, m); err != nil {
				return err
			}
		}
		return nil
	})
	return claimed, err
}

type outboxMarker interface {
	MarkDelivered(ctx context.Context, id int64) error
	ScheduleRetry(ctx context.Context, id int64, next time.Time, lastErr string) error
	MarkFailed(ctx context.Context, id int64, lastErr string) error
}

func (d *Dispatcher) deliver(ctx context.Context, repo outboxMarker, m *models.OutboxMessage) error {
	ev := &models.NotificationEvent{}
	if err := json.Unmarshal(m.Payload, ev); err != nil {
		d.logger.Error(ctx, "dropping undecodable notification", "trans_id", m.TransID, "error", err)
		return repo.MarkFailed(ctx, m.ID, err.Error())
	}
	if err := ev.Validate(); err != nil {
		d.logger.Error(ctx, "dropping invalid notification", "trans_id", m.TransID, "error", err)
		return repo.MarkFailed(ctx, m.ID, err.Error())
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	sendErr := d.sink.Send(sendCtx, ev)
	cancel()
	if sendErr == nil {
		d.logger.Info(ctx, "notification delivered", "trans_id", m.TransID, "status", string(ev.Status))
		return repo.MarkDelivered(ctx, m.ID)
	}

	attempts := m.Attempts + 1
	if attempts >= d.maxAttempts {
		d.logger.Error(ctx, "notification failed permanently", "trans_id", m.TransID, "attempts", attempts, "error", sendErr)
		return repo.MarkFailed(ctx, m.ID, sendErr.Error())
	}

	next := d.now().Add(d.backoff(attempts))
	d.logger.Warn(ctx, "notification failed, retry scheduled", "trans_id", m.TransID,
		"attempts", attempts, "next_retry_at", next, "error", sendErr)
	return repo.ScheduleRetry(ctx, m.ID, next, sendErr.Error())
}
