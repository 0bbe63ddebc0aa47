// Package store owns the mutable state of the single trading account.
// All writes funnel through Apply, the one atomicity primitive: a mutation
// either commits in full (new cash, new holdings, appended transaction) or
// not at all. The account lives and dies with the process.
package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/tradesim/account-engine/internal/model"
)

var (
	// ErrAlreadyInitialized is returned from Create when the account exists.
	ErrAlreadyInitialized = errors.New("store: account already initialized")

	// ErrNotInitialized is returned when an operation runs before Create.
	ErrNotInitialized = errors.New("store: account not initialized")
)

// TxSpec describes the transaction an accepted mutation appends. The store
// fills in the ID, timestamp, and resulting-state snapshot at commit time,
// under the write lock, so timestamps are monotonically non-decreasing.
type TxSpec struct {
	Type          model.TransactionType
	Symbol        string
	Quantity      int64
	PricePerShare *decimal.Decimal
	Amount        decimal.Decimal // signed effect on cash
}

// Mutation is the fully-computed new state returned by an accepted MutateFn.
type Mutation struct {
	NewCash          decimal.Decimal
	NewHoldings      map[string]int64
	DeltaDeposits    decimal.Decimal
	DeltaWithdrawals decimal.Decimal
	Tx               TxSpec
}

// MutateFn reads a point-in-time copy of the account and returns either a
// fully-computed mutation or an error rejecting the operation. It must not
// block on external I/O; price lookups happen before the write path.
type MutateFn func(view model.Account) (Mutation, error)

// Store is the account persistence interface. The in-memory implementation
// is the only one: durable cross-process persistence is out of scope.
type Store interface {
	// Create initializes the account with an opening balance, recorded as
	// the first DEPOSIT transaction. Fails with ErrAlreadyInitialized on a
	// second call.
	Create(ctx context.Context, openingBalance decimal.Decimal) (model.Account, error)

	// Apply runs fn against the current account under the write lock and
	// commits the returned mutation atomically. If fn errors, nothing is
	// observably changed. Returns the committed account state and the
	// appended transaction.
	Apply(ctx context.Context, fn MutateFn) (model.Account, model.Transaction, error)

	// Snapshot returns a consistent copy of the current account.
	Snapshot(ctx context.Context) (model.Account, error)

	// Transactions returns a copy of the transaction log in append order.
	Transactions(ctx context.Context) ([]model.Transaction, error)
}
