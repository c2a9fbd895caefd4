package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// NotificationEvent is emitted once for every recorded transfer outcome.
type NotificationEvent struct {
	TransID     string            `json:"trans_id"`
	SenderDoc   *AccountDoc       `json:"sender_doc"`
	ReceiverDoc *AccountDoc       `json:"receiver_doc"`
	Amount      decimal.Decimal   `json:"amount"`
	Status      TransactionStatus `json:"status"`
	Reason      string            `json:"reason,omitempty"`
}

var (
	ErrEventStatus      = errors.New("event status must be completed or failed")
	ErrEventIncomplete  = errors.New("event is missing required fields")
	ErrEventNoReason    = errors.New("failed event needs a reason")
	ErrEventNoRecipient = errors.New("completed event needs a receiver")
)

// Validate applies the checks the notification service performs on receipt.
func (e *NotificationEvent) Validate() error {
	if !e.Status.Valid() {
		return ErrEventStatus
	}
	if e.TransID == "" || e.SenderDoc == nil || !e.Amount.IsPositive() {
		return ErrEventIncomplete
	}
	if e.Status == StatusFailed && e.Reason == "" {
		return ErrEventNoReason
	}
	if e.Status == StatusCompleted && e.ReceiverDoc == nil {
		return ErrEventNoRecipient
	}
	return nil
}

// OutboxStatus is the delivery state of an outbox message.
type OutboxStatus string

const (
	OutboxPending   OutboxStatus = "pending"
	OutboxDelivered OutboxStatus = "delivered"
	OutboxFailed    OutboxStatus = "failed"
)

// OutboxMessage is a notification event waiting for delivery.
type OutboxMessage struct {
	ID          int64
	TransID     string
	Payload     []byte
	Status      OutboxStatus
	Attempts    int
	LastError   string
	NextRetryAt time.Time
	CreatedAt   time.Time
}
