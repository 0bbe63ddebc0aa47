package ledger

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/tradesim/account-engine/internal/model"
	"github.com/tradesim/account-engine/internal/store"
)

// AccountService handles account lifecycle. There is exactly one account per
// process; a second Create fails rather than replacing it.
type AccountService struct {
	store store.Store
}

// NewAccountService creates a new account service.
func NewAccountService(st store.Store) *AccountService {
	return &AccountService{store: st}
}

// Create initializes the account with an opening cash balance, recorded as
// the first DEPOSIT transaction so the log replays to the full state.
func (s *AccountService) Create(ctx context.Context, openingBalance decimal.Decimal) (model.Account, error) {
	if openingBalance.LessThanOrEqual(decimal.Zero) {
		return model.Account{}, errOpeningBalance()
	}

	acct, err := s.store.Create(ctx, openingBalance)
	if err != nil {
		if errors.Is(err, store.ErrAlreadyInitialized) {
			return model.Account{}, errAlreadyInitialized()
		}
		return model.Account{}, err
	}

	slog.Info("account created",
		"id", acct.ID,
		"opening_balance", acct.Cash.String(),
	)
	return acct, nil
}

// Get returns a consistent copy of the current account state.
func (s *AccountService) Get(ctx context.Context) (model.Account, error) {
	acct, err := s.store.Snapshot(ctx)
	if err != nil {
		return model.Account{}, mapStoreErr(err)
	}
	return acct, nil
}

// mapStoreErr translates store lifecycle sentinels into the domain taxonomy.
func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, store.ErrNotInitialized):
		return errNotInitialized()
	case errors.Is(err, store.ErrAlreadyInitialized):
		return errAlreadyInitialized()
	default:
		return err
	}
}
