package ledger

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tradesim/account-engine/internal/model"
	"github.com/tradesim/account-engine/internal/pricing"
	"github.com/tradesim/account-engine/internal/store"
)

// BaselinePolicy selects the reference capital figure profit/loss is
// measured against.
type BaselinePolicy string

const (
	// BaselineNetDeposits measures P/L against deposits minus withdrawals.
	// This is the default.
	BaselineNetDeposits BaselinePolicy = "net-deposits"

	// BaselineDepositsOnly measures P/L against total deposits, ignoring
	// withdrawals.
	BaselineDepositsOnly BaselinePolicy = "deposits-only"
)

// ParseBaselinePolicy validates a policy name, falling back to the default
// for the empty string.
func ParseBaselinePolicy(name string) (BaselinePolicy, bool) {
	switch BaselinePolicy(name) {
	case "":
		return BaselineNetDeposits, true
	case BaselineNetDeposits, BaselineDepositsOnly:
		return BaselinePolicy(name), true
	default:
		return "", false
	}
}

func baseline(policy BaselinePolicy, deposits, withdrawals decimal.Decimal) decimal.Decimal {
	if policy == BaselineDepositsOnly {
		return deposits
	}
	return deposits.Sub(withdrawals)
}

// ValuationService computes current holdings value, total portfolio value,
// and profit/loss. It only reads the account and calls the price oracle.
type ValuationService struct {
	store  store.Store
	oracle pricing.Oracle
	policy BaselinePolicy
}

// NewValuationService creates a valuation service with the given baseline
// policy.
func NewValuationService(st store.Store, oracle pricing.Oracle, policy BaselinePolicy) *ValuationService {
	return &ValuationService{store: st, oracle: oracle, policy: policy}
}

// CurrentValue prices every held symbol and totals the portfolio. A symbol
// the oracle cannot price yields an unpriced row and marks the valuation
// partial rather than failing the whole report.
func (s *ValuationService) CurrentValue(ctx context.Context) (model.Valuation, error) {
	acct, err := s.store.Snapshot(ctx)
	if err != nil {
		return model.Valuation{}, mapStoreErr(err)
	}

	rows, total, partial := priceHoldings(ctx, s.oracle, acct.Holdings)
	return model.Valuation{
		Rows:               rows,
		Cash:               acct.Cash,
		TotalHoldingsValue: total,
		TotalValue:         acct.Cash.Add(total),
		Partial:            partial,
	}, nil
}

// ProfitLoss compares total portfolio value against the configured baseline.
// A zero effective baseline yields NO_BASELINE instead of a degenerate ratio.
func (s *ValuationService) ProfitLoss(ctx context.Context) (model.ProfitLoss, error) {
	acct, err := s.store.Snapshot(ctx)
	if err != nil {
		return model.ProfitLoss{}, mapStoreErr(err)
	}

	_, holdingsValue, _ := priceHoldings(ctx, s.oracle, acct.Holdings)
	totalValue := acct.Cash.Add(holdingsValue)

	base := baseline(s.policy, acct.TotalDeposits, acct.TotalWithdrawals)
	if base.IsZero() {
		return model.ProfitLoss{
			Baseline:   decimal.Zero,
			TotalValue: totalValue,
			Status:     model.PLNoBaseline,
		}, nil
	}

	pl := totalValue.Sub(base)
	return model.ProfitLoss{
		Baseline:   base,
		TotalValue: totalValue,
		ProfitLoss: &pl,
		Status:     classify(pl),
	}, nil
}

func classify(pl decimal.Decimal) model.PLStatus {
	switch {
	case pl.IsPositive():
		return model.PLProfit
	case pl.IsNegative():
		return model.PLLoss
	default:
		return model.PLBreakEven
	}
}

// priceHoldings builds the valuation table for a holdings map, in symbol
// order. Unpriced rows are excluded from the total and flag the result
// partial.
func priceHoldings(ctx context.Context, oracle pricing.Oracle, holdings map[string]int64) ([]model.HoldingRow, decimal.Decimal, bool) {
	symbols := make([]string, 0, len(holdings))
	for sym := range holdings {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	rows := make([]model.HoldingRow, 0, len(symbols))
	total := decimal.Zero
	partial := false

	for _, sym := range symbols {
		qty := holdings[sym]
		price, err := oracle.Price(ctx, sym)
		if err != nil {
			// Any oracle failure yields an unpriced row; valuation is a
			// read path and never fails outright over one symbol.
			partial = true
			rows = append(rows, model.HoldingRow{Symbol: sym, Quantity: qty})
			continue
		}
		value := price.Mul(decimal.NewFromInt(qty))
		total = total.Add(value)
		rows = append(rows, model.HoldingRow{Symbol: sym, Quantity: qty, Price: &price, MarketValue: &value})
	}

	return rows, total, partial
}
