// Package services contains the transaction service business logic: the
// transfer pipeline and the visibility-filtered read paths.
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/cloudbank/internal/common"
	"github.com/dmitrijs2005/cloudbank/internal/dbx"
	"github.com/dmitrijs2005/cloudbank/internal/logging"
	"github.com/dmitrijs2005/cloudbank/internal/server/auth"
	"github.com/dmitrijs2005/cloudbank/internal/server/config"
	"github.com/dmitrijs2005/cloudbank/internal/server/models"
	"github.com/dmitrijs2005/cloudbank/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// withTx is a seam for tests that need transactional fakes.
var withTx = dbx.WithTx

// Waker is told that new outbox rows were committed.
type Waker interface {
	Wake()
}

// TransferService validates and executes transfers between accounts and
// writes the audit record and notification for each financial outcome.
type TransferService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	maxAttempts int
	waker       Waker

	newID func() string
	now   func() time.Time
}

func NewTransferService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger, waker Waker) *TransferService {
	return &TransferService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "transfer"),
		maxAttempts: cfg.TransferMaxAttempts,
		waker:       waker,
		newID:       newTransactionID,
		now:         time.Now,
	}
}

func newTransactionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// transfer carries the state of one request across retries.
type transfer struct {
	caller   string
	req      models.TransferRequest
	id       string
	ts       time.Time
	sender   *models.Account
	receiver *models.Account
}

// Transfer runs the validation pipeline for req on behalf of caller and moves
// the funds. It returns the transaction ID whenever an audit record was
// written, together with the outcome; a nil error means the transfer completed.
//
// Checks run in a fixed order and stop at the first failure. Lookup,
// ownership, payload and self-transfer failures leave no record. PIN,
// balance and execution failures are recorded as failed transactions and
// notified.
func (s *TransferService) Transfer(ctx context.Context, caller string, req models.TransferRequest) (string, error) {
	t := &transfer{
		caller: caller,
		req:    req,
		id:     s.newID(),
		ts:     s.now().UTC(),
	}

	err := dbx.Retry(ctx, s.maxAttempts, isVersionConflict, func(attempt int) error {
		if attempt > 1 {
			s.logger.Info(ctx, "retrying transfer after concurrent balance change", "trans_id", t.id, "attempt", attempt)
		}
		return s.attempt(ctx, t)
	})

	switch {
	case err == nil:
		return t.id, nil
	case errors.Is(err, dbx.ErrRetriesExhausted):
		s.logger.Error(ctx, "transfer gave up after repeated balance conflicts", "trans_id", t.id, "attempts", s.maxAttempts)
		return s.fail(ctx, t, common.ErrTransferFailed)
	case common.Recorded(err):
		return t.id, err
	default:
		return "", err
	}
}

func isVersionConflict(err error) bool {
	return errors.Is(err, common.ErrVersionConflict)
}

func (s *TransferService) attempt(ctx context.Context, t *transfer) error {
	if err := s.validate(ctx, t); err != nil {
		return err
	}

	amount := *t.req.Amount

	if !auth.VerifyPIN(t.sender.PINHash, t.req.PIN) {
		_, err := s.fail(ctx, t, common.ErrInvalidPIN)
		return err
	}

	if t.sender.Balance.LessThan(amount) {
		_, err := s.fail(ctx, t, common.ErrInsufficientBalance)
		return err
	}

	err := withTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Accounts(tx).Debit(ctx, t.sender.Username, amount, t.sender.Version); err != nil {
			return fmt.Errorf("debit sender: %w", err)
		}
		if err := s.repomanager.Accounts(tx).Credit(ctx, t.receiver.Username, amount); err != nil {
			return fmt.Errorf("credit receiver: %w", err)
		}
		return s.record(ctx, tx, t, models.StatusCompleted, "")
	})
	if err != nil {
		if isVersionConflict(err) {
			return err
		}
		s.logger.Error(ctx, "transfer rolled back", "trans_id", t.id, "error", err)
		_, ferr := s.fail(ctx, t, common.ErrTransferFailed)
		return ferr
	}

	s.logger.Info(ctx, "transfer completed", "trans_id", t.id,
		"sender", t.sender.Username, "receiver", t.receiver.Username, "amount", amount.String())
	s.wake()
	return nil
}

// validate runs the unrecorded checks and loads both accounts.
func (s *TransferService) validate(ctx context.Context, t *transfer) error {
	repo := s.repomanager.Accounts(s.db)

	sender, err := repo.GetByUsername(ctx, t.req.SenderUsername)
	if err != nil {
		return s.reject(ctx, t, lookupError(err, common.ErrSenderNotFound, "sender"))
	}

	receiver, err := repo.GetByUsername(ctx, t.req.ReceiverUsername)
	if err != nil {
		return s.reject(ctx, t, lookupError(err, common.ErrReceiverNotFound, "receiver"))
	}

	if t.caller == "" || t.caller != sender.OwnerPrincipal {
		return s.reject(ctx, t, common.ErrInvalidSender)
	}

	if !validPayload(t.req) {
		return s.reject(ctx, t, common.ErrInvalidPayload)
	}

	if t.req.SenderUsername == t.req.ReceiverUsername {
		return s.reject(ctx, t, common.ErrSelfTransfer)
	}

	t.sender, t.receiver = sender, receiver
	return nil
}

func lookupError(err, notFound error, role string) error {
	if errors.Is(err, common.ErrorNotFound) {
		return notFound
	}
	return fmt.Errorf("lookup %s: %w", role, err)
}

// maxAmount is the largest value a NUMERIC(18,2) column holds.
var maxAmount = decimal.RequireFromString("9999999999999999.99")

// validPayload requires every field and a positive amount with at most two
// fractional digits that fits the amount columns.
func validPayload(req models.TransferRequest) bool {
	if req.SenderUsername == "" || req.ReceiverUsername == "" || req.PIN == "" || req.Amount == nil {
		return false
	}
	amount := *req.Amount
	return amount.IsPositive() && amount.Equal(amount.Round(2)) && amount.LessThanOrEqual(maxAmount)
}

func (s *TransferService) reject(ctx context.Context, t *transfer, err error) error {
	s.logger.Warn(ctx, "transfer rejected", "trans_id", t.id,
		"sender", t.req.SenderUsername, "receiver", t.req.ReceiverUsername, "reason", err.Error())
	return err
}

// fail writes a failed audit record and its notification for reason.
// A failure to record is reported as an internal error.
func (s *TransferService) fail(ctx context.Context, t *transfer, reason error) (string, error) {
	s.logger.Warn(ctx, "transfer failed", "trans_id", t.id,
		"sender", t.req.SenderUsername, "receiver", t.req.ReceiverUsername, "reason", reason.Error())

	err := withTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.record(ctx, tx, t, models.StatusFailed, reason.Error())
	})
	if err != nil {
		s.logger.Error(ctx, "failed to record failed transfer", "trans_id", t.id, "reason", reason.Error(), "error", err)
		return "", errors.Join(common.ErrorInternal, err)
	}

	s.wake()
	return t.id, reason
}

// record appends the audit record and enqueues its notification on tx.
func (s *TransferService) record(ctx context.Context, tx dbx.DBTX, t *transfer, status models.TransactionStatus, reason string) error {
	amount := *t.req.Amount

	rec := &models.Transaction{
		ID:               t.id,
		SenderUsername:   t.sender.Username,
		ReceiverUsername: t.receiver.Username,
		Amount:           amount,
		Status:           status,
		Timestamp:        t.ts,
		Error:            reason,
	}
	if err := s.repomanager.Transactions(tx).Create(ctx, rec); err != nil {
		return fmt.Errorf("write audit record: %w", err)
	}

	payload, err := json.Marshal(newEvent(t, amount, status, reason))
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	if _, err := s.repomanager.Outbox(tx).Enqueue(ctx, t.id, payload); err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	return nil
}

func newEvent(t *transfer, amount decimal.Decimal, status models.TransactionStatus, reason string) *models.NotificationEvent {
	return &models.NotificationEvent{
		TransID:     t.id,
		SenderDoc:   t.sender.Doc(),
		ReceiverDoc: t.receiver.Doc(),
		Amount:      amount,
		Status:      status,
		Reason:      reason,
	}
}

func (s *TransferService) wake() {
	if s.waker != nil {
		s.waker.Wake()
	}
}
