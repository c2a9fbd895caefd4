// Package transactions declares the append-only audit log of transfers.
package transactions

import (
	"context"

	"github.com/dmitrijs2005/cloudbank/internal/server/models"
)

// Repository appends and reads transaction records. There is no update or
// delete operation.
type Repository interface {
	Create(ctx context.Context, tx *models.Transaction) error

	// GetByID returns common.ErrorNotFound when no record has the id.
	GetByID(ctx context.Context, id string) (*models.Transaction, error)

	// ListByParticipant returns up to limit records where username is the
	// sender or the receiver, newest first.
	ListByParticipant(ctx context.Context, username string, limit int) ([]*models.Transaction, error)
}
