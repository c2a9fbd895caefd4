package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
)

func (s TransactionStatus) Valid() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Transaction is an immutable audit record of one transfer attempt.
type Transaction struct {
	ID               string            `json:"trans_id"`
	SenderUsername   string            `json:"sender_username"`
	ReceiverUsername string            `json:"receiver_username"`
	Amount           decimal.Decimal   `json:"amount"`
	Status           TransactionStatus `json:"status"`
	Timestamp        time.Time         `json:"timestamp"`
	Error            string            `json:"error,omitempty"`
}

// TransferRequest is the body of a transfer call. Amount is nil when the
// caller omitted it.
type TransferRequest struct {
	SenderUsername   string           `json:"sender_username"`
	ReceiverUsername string           `json:"receiver_username"`
	Amount           *decimal.Decimal `json:"amount"`
	PIN              string           `json:"pin"`
}
