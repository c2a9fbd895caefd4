package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/cloudbank/internal/dbx"
	"github.com/dmitrijs2005/cloudbank/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/cloudbank/internal/server/repositories/outbox"
	"github.com/dmitrijs2005/cloudbank/internal/server/repositories/transactions"
)

// RepositoryManager binds repositories to a DBTX so services can use the same
// code on a plain connection or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Transactions(db dbx.DBTX) transactions.Repository
	Outbox(db dbx.DBTX) outbox.Repository
}
