// Package outbox stores notification events written in the same database
// transaction as their audit record, until a dispatcher delivers them.
package outbox

import (
	"context"
	"time"

	"github.com/dmitrijs2005/cloudbank/internal/server/models"
)

type Repository interface {
	Enqueue(ctx context.Context, transID string, payload []byte) (int64, error)

	// ClaimDue locks up to limit pending messages whose retry time has come,
	// skipping rows already locked by another dispatcher. It must run inside
	// a transaction for the locks to hold.
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]*models.OutboxMessage, error)

	MarkDelivered(ctx context.Context, id int64) error
	ScheduleRetry(ctx context.Context, id int64, next time.Time, lastErr string) error
	MarkFailed(ctx context.Context, id int64, lastErr string) error
}
