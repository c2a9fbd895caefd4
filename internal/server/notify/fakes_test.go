package notify

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/dmitrijs2005/cloudbank/internal/dbx"
	"github.com/dmitrijs2005/cloudbank/internal/logging"
	"github.com/dmitrijs2005/cloudbank/internal/server/models"
	"github.com/dmitrijs2005/cloudbank/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/cloudbank/internal/server/repositories/outbox"
	"github.com/dmitrijs2005/cloudbank/internal/server/repositories/transactions"
	"github.com/shopspring/decimal"
)

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logging.Logger          { return l }

type sinkFunc func(ctx context.Context, ev *models.NotificationEvent) error

type fakeSink struct {
	name string
	fn   sinkFunc

	mu  sync.Mutex
	got []*models.NotificationEvent
}

func (s *fakeSink) Name() string { return s.name }

func (s *fakeSink) Send(ctx context.Context, ev *models.NotificationEvent) error {
	s.mu.Lock()
	s.got = append(s.got, ev)
	s.mu.Unlock()
	if s.fn != nil {
		return s.fn(ctx, ev)
	}
	return nil
}

func (s *fakeSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.got)
}

type retry struct {
	id   int64
	next time.Time
	err  string
}

type fakeOutbox struct {
	mu        sync.Mutex
	due       []*models.OutboxMessage
	claimErr  error
	delivered []int64
	retries   []retry
	failed    map[int64]string
}

func (f *fakeOutbox) Enqueue(context.Context, string, []byte) (int64, error) { return 0, nil }

func (f *fakeOutbox) ClaimDue(_ context.Context, _ time.Time, limit int) ([]*models.OutboxMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.claimErr != nil {
		return nil, f.claimErr
	}
	n := len(f.due)
	if n > limit {
		n = limit
	}
	out := f.due[:n]
	f.due = f.due[n:]
	return out, nil
}

func (f *fakeOutbox) MarkDelivered(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delivered = append(f.delivered, id)
	return nil
}

func (f *fakeOutbox) ScheduleRetry(_ context.Context, id int64, next time.Time, lastErr string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.retries = append(f.retries, retry{id, next, lastErr})
	return nil
}

func (f *fakeOutbox) MarkFailed(_ context.Context, id int64, lastErr string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failed == nil {
		f.failed = map[int64]string{}
	}
	f.failed[id] = lastErr
	return nil
}

func (f *fakeOutbox) deliveredCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.delivered)
}

type fakeRepoManager struct {
	o *fakeOutbox
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error  { return nil }
func (m *fakeRepoManager) Accounts(dbx.DBTX) accounts.Repository         { return nil }
func (m *fakeRepoManager) Transactions(dbx.DBTX) transactions.Repository { return nil }
func (m *fakeRepoManager) Outbox(dbx.DBTX) outbox.Repository             { return m.o }

func completedEvent(id string) *models.NotificationEvent {
	return &models.NotificationEvent{
		TransID:     id,
		SenderDoc:   &models.AccountDoc{Username: "alice", Phone: "+1"},
		ReceiverDoc: &models.AccountDoc{Username: "bob", Phone: "+2"},
		Amount:      decimal.NewFromInt(100),
		Status:      models.StatusCompleted,
	}
}

func failedEvent(id, reason string) *models.NotificationEvent {
	return &models.NotificationEvent{
		TransID:     id,
		SenderDoc:   &models.AccountDoc{Username: "alice", Phone: "+1"},
		ReceiverDoc: &models.AccountDoc{Username: "bob", Phone: "+2"},
		Amount:      decimal.NewFromInt(50),
		Status:      models.StatusFailed,
		Reason:      reason,
	}
}
