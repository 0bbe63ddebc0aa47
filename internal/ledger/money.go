package ledger

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/tradesim/account-engine/internal/model"
	"github.com/tradesim/account-engine/internal/store"
)

// MoneyService implements deposit and withdrawal flows. These are the only
// operations that move the total_deposits / total_withdrawals aggregates.
type MoneyService struct {
	store store.Store
}

// NewMoneyService creates a new money service.
func NewMoneyService(st store.Store) *MoneyService {
	return &MoneyService{store: st}
}

// MutationResult is the payload returned from every successful mutation.
type MutationResult struct {
	Cash        decimal.Decimal   `json:"cash_balance"`
	Holdings    map[string]int64  `json:"holdings"`
	Transaction model.Transaction `json:"transaction"`
}

// Deposit adds cash to the account.
func (s *MoneyService) Deposit(ctx context.Context, amount decimal.Decimal) (MutationResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return MutationResult{}, errDepositAmount()
	}

	acct, tx, err := s.store.Apply(ctx, func(view model.Account) (store.Mutation, error) {
		return store.Mutation{
			NewCash:       view.Cash.Add(amount),
			NewHoldings:   view.Holdings,
			DeltaDeposits: amount,
			Tx: store.TxSpec{
				Type:   model.TxDeposit,
				Amount: amount,
			},
		}, nil
	})
	if err != nil {
		return MutationResult{}, mapStoreErr(err)
	}

	slog.Info("deposit committed", "amount", amount.String(), "cash", acct.Cash.String())
	return MutationResult{Cash: acct.Cash, Holdings: acct.Holdings, Transaction: tx}, nil
}

// Withdraw removes cash from the account. The withdrawal is rejected, not
// clamped, when it would drive the balance negative.
func (s *MoneyService) Withdraw(ctx context.Context, amount decimal.Decimal) (MutationResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return MutationResult{}, errWithdrawAmount()
	}

	acct, tx, err := s.store.Apply(ctx, func(view model.Account) (store.Mutation, error) {
		if amount.GreaterThan(view.Cash) {
			return store.Mutation{}, errInsufficientFundsWithdrawal(amount, view.Cash)
		}
		return store.Mutation{
			NewCash:          view.Cash.Sub(amount),
			NewHoldings:      view.Holdings,
			DeltaWithdrawals: amount,
			Tx: store.TxSpec{
				Type:   model.TxWithdrawal,
				Amount: amount.Neg(),
			},
		}, nil
	})
	if err != nil {
		return MutationResult{}, mapStoreErr(err)
	}

	slog.Info("withdrawal committed", "amount", amount.String(), "cash", acct.Cash.String())
	return MutationResult{Cash: acct.Cash, Holdings: acct.Holdings, Transaction: tx}, nil
}
