package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/cloudbank/internal/common"
	"github.com/dmitrijs2005/cloudbank/internal/dbx"
	"github.com/dmitrijs2005/cloudbank/internal/server/models"
	"github.com/shopspring/decimal"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := `
		SELECT username, owner_principal, pin_hash, balance, version, updated_at
		FROM accounts
		WHERE username = $1
	`
	a := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, username).
		Scan(&a.Username, &a.OwnerPrincipal, &a.PINHash, &a.Balance, &a.Version, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) Debit(ctx context.Context, username string, amount decimal.Decimal, version int64) error {
	query := `
		UPDATE accounts
		SET balance = balance - $1, version = version + 1, updated_at = now()
		WHERE username = $2 AND version = $3
	`
	res, err := r.db.ExecContext(ctx, query, amount, username, version)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrVersionConflict
	}
	return nil
}

func (r *PostgresRepository) Credit(ctx context.Context, username string, amount decimal.Decimal) error {
	query := `
		UPDATE accounts
		SET balance = balance + $1, version = version + 1, updated_at = now()
		WHERE username = $2
	`
	res, err := r.db.ExecContext(ctx, query, amount, username)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
