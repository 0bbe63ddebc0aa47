package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradesim/account-engine/internal/model"
)

// MemoryStore implements Store with an RWMutex-guarded account value.
// Mutations are serialized by the write lock; reads take copies so callers
// can never alias live state.
type MemoryStore struct {
	mu      sync.RWMutex
	account *model.Account
	clock   func() time.Time
}

// NewMemoryStore creates an empty store. The account does not exist until
// Create is called.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock creates a store with an injectable clock, used by
// tests that need deterministic transaction timestamps.
func NewMemoryStoreWithClock(clock func() time.Time) *MemoryStore {
	return &MemoryStore{clock: clock}
}

func (s *MemoryStore) Create(_ context.Context, openingBalance decimal.Decimal) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.account != nil {
		return model.Account{}, ErrAlreadyInitialized
	}

	now := s.clock().UTC()
	acct := &model.Account{
		ID:               uuid.New().String(),
		CreatedAt:        now,
		Cash:             openingBalance,
		Holdings:         map[string]int64{},
		TotalDeposits:    openingBalance,
		TotalWithdrawals: decimal.Zero,
	}
	acct.Transactions = append(acct.Transactions, model.Transaction{
		ID:                uuid.New().String(),
		Timestamp:         now,
		Type:              model.TxDeposit,
		Amount:            openingBalance,
		ResultingCash:     openingBalance,
		ResultingHoldings: map[string]int64{},
	})

	s.account = acct
	return s.copyAccount(), nil
}

func (s *MemoryStore) Apply(_ context.Context, fn MutateFn) (model.Account, model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.account == nil {
		return model.Account{}, model.Transaction{}, ErrNotInitialized
	}

	mut, err := fn(s.copyAccount())
	if err != nil {
		return model.Account{}, model.Transaction{}, err
	}

	// Commit-time guards. A mutation that violates the core invariants is a
	// programming error in the caller, never something to half-apply.
	if mut.NewCash.IsNegative() {
		return model.Account{}, model.Transaction{}, fmt.Errorf("store: mutation would drive cash negative (%s)", mut.NewCash)
	}
	for sym, qty := range mut.NewHoldings {
		if qty < 0 {
			return model.Account{}, model.Transaction{}, fmt.Errorf("store: mutation would drive %s holding negative (%d)", sym, qty)
		}
	}

	holdings := model.CloneHoldings(mut.NewHoldings)

	// Timestamps never go backwards across the log even if the wall clock does.
	ts := s.clock().UTC()
	if n := len(s.account.Transactions); n > 0 {
		if last := s.account.Transactions[n-1].Timestamp; ts.Before(last) {
			ts = last
		}
	}

	tx := model.Transaction{
		ID:                uuid.New().String(),
		Timestamp:         ts,
		Type:              mut.Tx.Type,
		Symbol:            mut.Tx.Symbol,
		Quantity:          mut.Tx.Quantity,
		PricePerShare:     mut.Tx.PricePerShare,
		Amount:            mut.Tx.Amount,
		ResultingCash:     mut.NewCash,
		ResultingHoldings: model.CloneHoldings(holdings),
	}

	s.account.Cash = mut.NewCash
	s.account.Holdings = holdings
	s.account.TotalDeposits = s.account.TotalDeposits.Add(mut.DeltaDeposits)
	s.account.TotalWithdrawals = s.account.TotalWithdrawals.Add(mut.DeltaWithdrawals)
	s.account.Transactions = append(s.account.Transactions, tx)

	return s.copyAccount(), tx, nil
}

func (s *MemoryStore) Snapshot(_ context.Context) (model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.account == nil {
		return model.Account{}, ErrNotInitialized
	}
	return s.copyAccount(), nil
}

func (s *MemoryStore) Transactions(_ context.Context) ([]model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.account == nil {
		return nil, ErrNotInitialized
	}
	txs := make([]model.Transaction, len(s.account.Transactions))
	copy(txs, s.account.Transactions)
	return txs, nil
}

// copyAccount returns a copy safe to hand outside the lock. Transaction
// records are immutable once committed, so the log is copied shallowly.
// Callers must hold at least the read lock.
func (s *MemoryStore) copyAccount() model.Account {
	acct := *s.account
	acct.Holdings = model.CloneHoldings(s.account.Holdings)
	acct.Transactions = make([]model.Transaction, len(s.account.Transactions))
	copy(acct.Transactions, s.account.Transactions)
	return acct
}
