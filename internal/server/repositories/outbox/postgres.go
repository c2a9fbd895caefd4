package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cloudbank/internal/dbx"
	"github.com/dmitrijs2005/cloudbank/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Enqueue(ctx context.Context, transID string, payload []byte) (int64, error) {
	query := `
		INSERT INTO notification_outbox (trans_id, payload)
		VALUES ($1, $2)
		RETURNING id
	`
	var id int64
	if err := r.db.QueryRowContext(ctx, query, transID, payload).Scan(&id); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*models.OutboxMessage, error) {
	query := `
		SELECT id, trans_id, payload, attempts, created_at
		FROM notification_outbox
		WHERE status = 'pending' AND next_retry_at <= $1
		ORDER BY id
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`
	rows, err := r.db.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.OutboxMessage
	for rows.Next() {
		m := &models.OutboxMessage{Status: models.OutboxPending}
		if err := rows.Scan(&m.ID, &m.TransID, &m.Payload, &m.Attempts, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) MarkDelivered(ctx context.Context, id int64) error {
	query := `
		UPDATE notification_outbox
		SET status = 'delivered', attempts = attempts + 1, delivered_at = now(), last_error = NULL
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ScheduleRetry(ctx context.Context, id int64, next time.Time, lastErr string) error {
	query := `
		UPDATE notification_outbox
		SET attempts = attempts + 1, next_retry_at = $2, last_error = $3
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id, next, lastErr); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) MarkFailed(ctx context.Context, id int64, lastErr string) error {
	query := `
		UPDATE notification_outbox
		SET status = 'failed', attempts = attempts + 1, last_error = $2
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id, lastErr); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
