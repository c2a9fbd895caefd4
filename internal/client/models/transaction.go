// Package models holds the wire types the CLI exchanges with the transaction
// API.
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

type Transaction struct {
	ID               string            `json:"trans_id"`
	SenderUsername   string            `json:"sender_username"`
	ReceiverUsername string            `json:"receiver_username"`
	Amount           decimal.Decimal   `json:"amount"`
	Status           TransactionStatus `json:"status"`
	Timestamp        time.Time         `json:"timestamp"`
	Error            string            `json:"error,omitempty"`
}

type TransferRequest struct {
	SenderUsername   string           `json:"sender_username"`
	ReceiverUsername string           `json:"receiver_username"`
	Amount           *decimal.Decimal `json:"amount"`
	PIN              string           `json:"pin"`
}
