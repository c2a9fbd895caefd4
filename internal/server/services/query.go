package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/cloudbank/internal/common"
	"github.com/dmitrijs2005/cloudbank/internal/logging"
	"github.com/dmitrijs2005/cloudbank/internal/server/models"
	"github.com/dmitrijs2005/cloudbank/internal/server/repositories/repomanager"
)

// QueryService reads the audit log and applies the visibility rules: a
// receiver never sees failed transfers addressed to them.
type QueryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewQueryService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *QueryService {
	return &QueryService{db: db, repomanager: m, logger: logger.With("module", "query")}
}

// GetTransaction returns one record if caller owns the sender or the
// receiver account. A failed record looked up by the receiver's owner is
// reported as not found.
func (s *QueryService) GetTransaction(ctx context.Context, caller, transID string) (*models.Transaction, error) {
	if caller == "" {
		return nil, common.ErrorUnauthorized
	}

	tx, err := s.repomanager.Transactions(s.db).GetByID(ctx, transID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}

	senderOwner, err := s.ownerOf(ctx, tx.SenderUsername)
	if err != nil {
		return nil, err
	}
	receiverOwner, err := s.ownerOf(ctx, tx.ReceiverUsername)
	if err != nil {
		return nil, err
	}

	if caller != senderOwner && caller != receiverOwner {
		s.logger.Warn(ctx, "transaction access denied", "trans_id", transID)
		return nil, common.ErrorForbidden
	}

	if caller == receiverOwner && tx.Status == models.StatusFailed {
		return nil, common.ErrTransactionNotFound
	}

	return tx, nil
}

// ListTransactions returns the history of username, newest first, if caller
// owns the account. Records sent by the account are all included; records
// received are included unless they failed.
func (s *QueryService) ListTransactions(ctx context.Context, caller, username string) ([]*models.Transaction, error) {
	if caller == "" {
		return nil, common.ErrorUnauthorized
	}

	owner, err := s.ownerOf(ctx, username)
	if err != nil {
		return nil, err
	}
	if owner == "" || owner != caller {
		s.logger.Warn(ctx, "transaction history access denied", "username", username)
		return nil, common.ErrorForbidden
	}

	all, err := s.repomanager.Transactions(s.db).ListByParticipant(ctx, username, common.MaxListedTransactions)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	visible := make([]*models.Transaction, 0, len(all))
	for _, tx := range all {
		switch {
		case tx.SenderUsername == username:
			visible = append(visible, tx)
		case tx.ReceiverUsername == username && tx.Status != models.StatusFailed:
			visible = append(visible, tx)
		}
	}
	return visible, nil
}

// ownerOf returns the owner principal of username, or "" when the account no
// longer exists.
func (s *QueryService) ownerOf(ctx context.Context, username string) (string, error) {
	acc, err := s.repomanager.Accounts(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("lookup account: %w", err)
	}
	return acc.OwnerPrincipal, nil
}
