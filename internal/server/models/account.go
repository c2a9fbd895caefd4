// Package models defines the records persisted by the transaction service and
// the events it hands to notification sinks.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a card/account document keyed by username.
type Account struct {
	Username       string
	OwnerPrincipal string
	PINHash        string
	Balance        decimal.Decimal
	// Version grows by one on every balance change and guards the debit.
	Version   int64
	UpdatedAt time.Time
}

// AccountDoc is the public view of an account shared with notification sinks.
type AccountDoc struct {
	Username string `json:"username"`
	Phone    string `json:"phone"`
}

func (a *Account) Doc() *AccountDoc {
	if a == nil {
		return nil
	}
	return &AccountDoc{Username: a.Username, Phone: a.OwnerPrincipal}
}
