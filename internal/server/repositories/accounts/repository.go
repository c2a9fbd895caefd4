// Package accounts declares the account store used by the transfer pipeline.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/cloudbank/internal/server/models"
	"github.com/shopspring/decimal"
)

// Repository reads accounts and mutates their balances.
type Repository interface {
	// GetByUsername returns common.ErrorNotFound when the account is absent.
	GetByUsername(ctx context.Context, username string) (*models.Account, error)

	// Debit subtracts amount from the account if its version still equals
	// version. It returns common.ErrVersionConflict when the row changed
	// since it was read.
	Debit(ctx context.Context, username string, amount decimal.Decimal, version int64) error

	// Credit adds amount to the account. It returns common.ErrorNotFound when
	// no row was updated.
	Credit(ctx context.Context, username string, amount decimal.Decimal) error
}
