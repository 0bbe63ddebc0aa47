package ledger

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/tradesim/account-engine/internal/model"
	"github.com/tradesim/account-engine/internal/pricing"
	"github.com/tradesim/account-engine/internal/store"
)

// TradingService executes all-or-nothing market orders against the account.
//
// Price lookups are the only external I/O and happen before the store's
// write lock is taken; Apply re-validates affordability/holdings against the
// already-fetched price at commit time. A rejected trade leaves no trace in
// the ledger regardless of any side effects of the oracle call itself.
type TradingService struct {
	store  store.Store
	oracle pricing.Oracle
}

// NewTradingService creates a new trading service.
func NewTradingService(st store.Store, oracle pricing.Oracle) *TradingService {
	return &TradingService{store: st, oracle: oracle}
}

// Buy purchases quantity shares of symbol at the oracle's current price.
func (s *TradingService) Buy(ctx context.Context, symbol string, quantity int64) (MutationResult, error) {
	sym, err := validateOrder(symbol, quantity)
	if err != nil {
		return MutationResult{}, err
	}

	price, err := s.fetchPrice(ctx, sym)
	if err != nil {
		return MutationResult{}, err
	}
	cost := price.Mul(decimal.NewFromInt(quantity))

	acct, tx, err := s.store.Apply(ctx, func(view model.Account) (store.Mutation, error) {
		if cost.GreaterThan(view.Cash) {
			return store.Mutation{}, errInsufficientFundsPurchase(cost, view.Cash)
		}
		holdings := model.CloneHoldings(view.Holdings)
		holdings[sym] += quantity
		return store.Mutation{
			NewCash:     view.Cash.Sub(cost),
			NewHoldings: holdings,
			Tx: store.TxSpec{
				Type:          model.TxBuy,
				Symbol:        sym,
				Quantity:      quantity,
				PricePerShare: &price,
				Amount:        cost.Neg(),
			},
		}, nil
	})
	if err != nil {
		return MutationResult{}, mapStoreErr(err)
	}

	slog.Info("buy executed",
		"symbol", sym,
		"qty", quantity,
		"price", price.String(),
		"cost", cost.String(),
		"cash", acct.Cash.String(),
	)
	return MutationResult{Cash: acct.Cash, Holdings: acct.Holdings, Transaction: tx}, nil
}

// Sell disposes of quantity shares of symbol at the oracle's current price.
// Selling an unheld symbol is the held-quantity-zero case of the same
// insufficient-shares check, not a silent no-op.
func (s *TradingService) Sell(ctx context.Context, symbol string, quantity int64) (MutationResult, error) {
	sym, err := validateOrder(symbol, quantity)
	if err != nil {
		return MutationResult{}, err
	}

	// Holdings check strictly before the price-dependent path, so a doomed
	// sell never even reaches the oracle.
	view, err := s.store.Snapshot(ctx)
	if err != nil {
		return MutationResult{}, mapStoreErr(err)
	}
	if held := view.Quantity(sym); quantity > held {
		return MutationResult{}, errInsufficientShares(sym, quantity, held)
	}

	price, err := s.fetchPrice(ctx, sym)
	if err != nil {
		return MutationResult{}, err
	}
	proceeds := price.Mul(decimal.NewFromInt(quantity))

	acct, tx, err := s.store.Apply(ctx, func(view model.Account) (store.Mutation, error) {
		held := view.Quantity(sym)
		if quantity > held {
			return store.Mutation{}, errInsufficientShares(sym, quantity, held)
		}
		holdings := model.CloneHoldings(view.Holdings)
		if remaining := held - quantity; remaining == 0 {
			delete(holdings, sym)
		} else {
			holdings[sym] = remaining
		}
		return store.Mutation{
			NewCash:     view.Cash.Add(proceeds),
			NewHoldings: holdings,
			Tx: store.TxSpec{
				Type:          model.TxSell,
				Symbol:        sym,
				Quantity:      quantity,
				PricePerShare: &price,
				Amount:        proceeds,
			},
		}, nil
	})
	if err != nil {
		return MutationResult{}, mapStoreErr(err)
	}

	slog.Info("sell executed",
		"symbol", sym,
		"qty", quantity,
		"price", price.String(),
		"proceeds", proceeds.String(),
		"cash", acct.Cash.String(),
	)
	return MutationResult{Cash: acct.Cash, Holdings: acct.Holdings, Transaction: tx}, nil
}

// Quote looks up the current price for one symbol without touching the
// account. Exposed so presentation layers can serve price queries through
// the same error taxonomy.
func (s *TradingService) Quote(ctx context.Context, symbol string) (string, decimal.Decimal, error) {
	sym, err := pricing.Normalize(symbol)
	if err != nil {
		return "", decimal.Decimal{}, errSymbolRequired()
	}
	price, err := s.fetchPrice(ctx, sym)
	if err != nil {
		return "", decimal.Decimal{}, err
	}
	return sym, price, nil
}

func (s *TradingService) fetchPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	price, err := s.oracle.Price(ctx, symbol)
	if err != nil {
		if errors.Is(err, pricing.ErrUnavailable) {
			return decimal.Decimal{}, errPriceUnavailable(symbol)
		}
		return decimal.Decimal{}, err
	}
	return price, nil
}

func validateOrder(symbol string, quantity int64) (string, error) {
	if quantity <= 0 {
		return "", errQuantity()
	}
	sym, err := pricing.Normalize(symbol)
	if err != nil {
		return "", errSymbolRequired()
	}
	return sym, nil
}
