package transactions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/cloudbank/internal/common"
	"github.com/dmitrijs2005/cloudbank/internal/dbx"
	"github.com/dmitrijs2005/cloudbank/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, tx *models.Transaction) error {
	query := `
		INSERT INTO transactions (id, sender_username, receiver_username, amount, status, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	errText := sql.NullString{String: tx.Error, Valid: tx.Error != ""}
	_, err := r.db.ExecContext(ctx, query,
		tx.ID, tx.SenderUsername, tx.ReceiverUsername, tx.Amount, string(tx.Status), errText, tx.Timestamp)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

const selectColumns = `id, sender_username, receiver_username, amount, status, error, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (*models.Transaction, error) {
	t := &models.Transaction{}
	var status string
	var errText sql.NullString
	if err := s.Scan(&t.ID, &t.SenderUsername, &t.ReceiverUsername, &t.Amount, &status, &errText, &t.Timestamp); err != nil {
		return nil, err
	}
	t.Status = models.TransactionStatus(status)
	t.Error = errText.String
	t.Timestamp = t.Timestamp.UTC()
	return t, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	query := `SELECT ` + selectColumns + ` FROM transactions WHERE id = $1`

	t, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) ListByParticipant(ctx context.Context, username string, limit int) ([]*models.Transaction, error) {
	query := `SELECT ` + selectColumns + ` FROM transactions
		WHERE sender_username = $1 OR receiver_username = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, username, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
