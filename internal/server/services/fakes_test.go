package services

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/cloudbank/internal/common"
	"github.com/dmitrijs2005/cloudbank/internal/dbx"
	"github.com/dmitrijs2005/cloudbank/internal/logging"
	"github.com/dmitrijs2005/cloudbank/internal/server/models"
	"github.com/dmitrijs2005/cloudbank/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/cloudbank/internal/server/repositories/outbox"
	"github.com/dmitrijs2005/cloudbank/internal/server/repositories/transactions"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// --- logger ---

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logging.Logger          { return l }

// --- in-memory store with transactional handles ---

type memState struct {
	accounts map[string]models.Account
	txs      map[string]models.Transaction
	outbox   [][]byte
}

func (s *memState) clone() *memState {
	c := &memState{
		accounts: make(map[string]models.Account, len(s.accounts)),
		txs:      make(map[string]models.Transaction, len(s.txs)),
		outbox:   append([][]byte(nil), s.outbox...),
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.txs {
		c.txs[k] = v
	}
	return c
}

type memStore struct {
	mu    sync.Mutex
	state *memState

	begins, commits, rollbacks int

	// failure injection
	getErr     error
	creditErr  error
	failedErr  error // returned when a failed record is written
	conflicts  int   // debits that report a concurrent change
	debitsSeen int
}

func newMemStore() *memStore {
	return &memStore{state: &memState{
		accounts: map[string]models.Account{},
		txs:      map[string]models.Transaction{},
	}}
}

func (s *memStore) addAccount(t *testing.T, username, owner, pin string, balance int64) {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash pin: %v", err)
	}
	s.state.accounts[username] = models.Account{
		Username:       username,
		OwnerPrincipal: owner,
		PINHash:        string(h),
		Balance:        decimal.NewFromInt(balance),
	}
}

func (s *memStore) balance(username string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.accounts[username].Balance
}

func (s *memStore) records() []models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Transaction, 0, len(s.state.txs))
	for _, v := range s.state.txs {
		out = append(out, v)
	}
	return out
}

func (s *memStore) outboxLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.outbox)
}

// memTx is the DBTX handed to fn by withTx; it is never queried directly.
type memTx struct {
	state *memState
}

var errMemTx = errors.New("memTx does not run SQL")

func (memTx) ExecContext(context.Context, string, ...any) (sql.Result, error) { return nil, errMemTx }
func (memTx) QueryContext(context.Context, string, ...any) (*sql.Rows, error) { return nil, errMemTx }
func (memTx) QueryRowContext(context.Context, string, ...any) *sql.Row        { return nil }

// withTx is a serializable replacement for dbx.WithTx: writes go to a copy
// that replaces the store state on success.
func (s *memStore) withTx(ctx context.Context, _ *sql.DB, _ *sql.TxOptions, fn func(context.Context, dbx.DBTX) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.begins++
	tx := &memTx{state: s.state.clone()}
	if err := fn(ctx, tx); err != nil {
		s.rollbacks++
		return err
	}
	s.state = tx.state
	s.commits++
	return nil
}

// use runs f against the state behind db, locking when db is not a memTx.
func (s *memStore) use(db dbx.DBTX, f func(st *memState) error) error {
	if tx, ok := db.(*memTx); ok {
		return f(tx.state)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return f(s.state)
}

// --- repositories ---

type memAccounts struct {
	s  *memStore
	db dbx.DBTX
}

func (r *memAccounts) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	var out *models.Account
	err := r.s.use(r.db, func(st *memState) error {
		if r.s.getErr != nil {
			return r.s.getErr
		}
		a, ok := st.accounts[username]
		if !ok {
			return common.ErrorNotFound
		}
		out = &a
		return nil
	})
	return out, err
}

func (r *memAccounts) Debit(ctx context.Context, username string, amount decimal.Decimal, version int64) error {
	return r.s.use(r.db, func(st *memState) error {
		r.s.debitsSeen++
		if r.s.conflicts > 0 {
			r.s.conflicts--
			return common.ErrVersionConflict
		}
		a, ok := st.accounts[username]
		if !ok || a.Version != version {
			return common.ErrVersionConflict
		}
		if a.Balance.LessThan(amount) {
			return errors.New("check constraint: balance >= 0")
		}
		a.Balance = a.Balance.Sub(amount)
		a.Version++
		st.accounts[username] = a
		return nil
	})
}

func (r *memAccounts) Credit(ctx context.Context, username string, amount decimal.Decimal) error {
	return r.s.use(r.db, func(st *memState) error {
		if r.s.creditErr != nil {
			return r.s.creditErr
		}
		a, ok := st.accounts[username]
		if !ok {
			return common.ErrorNotFound
		}
		a.Balance = a.Balance.Add(amount)
		a.Version++
		st.accounts[username] = a
		return nil
	})
}

type memTransactions struct {
	s  *memStore
	db dbx.DBTX
}

func (r *memTransactions) Create(ctx context.Context, tx *models.Transaction) error {
	return r.s.use(r.db, func(st *memState) error {
		if tx.Status == models.StatusFailed && r.s.failedErr != nil {
			return r.s.failedErr
		}
		if _, dup := st.txs[tx.ID]; dup {
			return errors.New("duplicate key")
		}
		st.txs[tx.ID] = *tx
		return nil
	})
}

func (r *memTransactions) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	var out *models.Transaction
	err := r.s.use(r.db, func(st *memState) error {
		t, ok := st.txs[id]
		if !ok {
			return common.ErrorNotFound
		}
		out = &t
		return nil
	})
	return out, err
}

func (r *memTransactions) ListByParticipant(ctx context.Context, username string, limit int) ([]*models.Transaction, error) {
	var out []*models.Transaction
	err := r.s.use(r.db, func(st *memState) error {
		for _, t := range st.txs {
			if t.SenderUsername == username || t.ReceiverUsername == username {
				t := t
				out = append(out, &t)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID > out[j].ID
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

type memOutbox struct {
	s  *memStore
	db dbx.DBTX
}

func (r *memOutbox) Enqueue(ctx context.Context, transID string, payload []byte) (int64, error) {
	var id int64
	err := r.s.use(r.db, func(st *memState) error {
		st.outbox = append(st.outbox, payload)
		id = int64(len(st.outbox))
		return nil
	})
	return id, err
}

func (r *memOutbox) ClaimDue(context.Context, time.Time, int) ([]*models.OutboxMessage, error) {
	return nil, nil
}
func (r *memOutbox) MarkDelivered(context.Context, int64) error                    { return nil }
func (r *memOutbox) ScheduleRetry(context.Context, int64, time.Time, string) error { return nil }
func (r *memOutbox) MarkFailed(context.Context, int64, string) error               { return nil }

// --- repository manager ---

type memManager struct {
	s *memStore
}

func (m *memManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memManager) Accounts(db dbx.DBTX) accounts.Repository {
	return &memAccounts{s: m.s, db: db}
}
func (m *memManager) Transactions(db dbx.DBTX) transactions.Repository {
	return &memTransactions{s: m.s, db: db}
}
func (m *memManager) Outbox(db dbx.DBTX) outbox.Repository { return &memOutbox{s: m.s, db: db} }

// --- misc ---

type countingWaker struct {
	mu sync.Mutex
	n  int
}

func (w *countingWaker) Wake() {
	w.mu.Lock()
	w.n++
	w.mu.Unlock()
}

func (w *countingWaker) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.n
}

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// stepClock returns strictly increasing timestamps.
func stepClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}
