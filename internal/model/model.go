// Package model defines the core domain types shared across the account engine.
// All monetary values use shopspring/decimal — never float64 for money.
// Share quantities are whole shares (int64); fractional shares are not supported.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType identifies what a ledger entry did to the account.
type TransactionType string

const (
	TxDeposit    TransactionType = "DEPOSIT"
	TxWithdrawal TransactionType = "WITHDRAWAL"
	TxBuy        TransactionType = "BUY"
	TxSell       TransactionType = "SELL"
)

// Transaction is an immutable record of one ledger-mutating operation.
// Once committed, these are never modified, reordered, or deleted.
//
// Amount is the signed total effect on cash: positive for inflow (deposit,
// sell proceeds), negative for outflow (withdrawal, buy cost).
// ResultingCash and ResultingHoldings snapshot the post-transaction state so
// replays can be verified without recomputation.
type Transaction struct {
	ID                string           `json:"id"`
	Timestamp         time.Time        `json:"timestamp"`
	Type              TransactionType  `json:"type"`
	Symbol            string           `json:"symbol,omitempty"`
	Quantity          int64            `json:"quantity,omitempty"`
	PricePerShare     *decimal.Decimal `json:"price_per_share,omitempty"`
	Amount            decimal.Decimal  `json:"amount"`
	ResultingCash     decimal.Decimal  `json:"resulting_cash_balance"`
	ResultingHoldings map[string]int64 `json:"resulting_holdings"`
}

// Account is the single trading account owned by the store.
type Account struct {
	ID               string           `json:"id"`
	CreatedAt        time.Time        `json:"created_at"`
	Cash             decimal.Decimal  `json:"cash_balance"`
	Holdings         map[string]int64 `json:"holdings"` // symbol → quantity, quantities always > 0
	Transactions     []Transaction    `json:"transactions"`
	TotalDeposits    decimal.Decimal  `json:"total_deposits"`
	TotalWithdrawals decimal.Decimal  `json:"total_withdrawals"`
}

// Quantity returns the held share count for symbol, zero if unheld.
func (a *Account) Quantity(symbol string) int64 {
	return a.Holdings[symbol]
}

// CloneHoldings returns an independent copy of the holdings map with
// zero-quantity entries dropped.
func CloneHoldings(holdings map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(holdings))
	for sym, qty := range holdings {
		if qty > 0 {
			out[sym] = qty
		}
	}
	return out
}

// HoldingRow is one line of a valuation table. Price and MarketValue are nil
// when the oracle has no quote for the symbol; such rows are excluded from
// totals and the containing report is flagged partial.
type HoldingRow struct {
	Symbol      string           `json:"symbol"`
	Quantity    int64            `json:"quantity"`
	Price       *decimal.Decimal `json:"current_price,omitempty"`
	MarketValue *decimal.Decimal `json:"market_value,omitempty"`
}

// Valuation is the current-value view of the account.
type Valuation struct {
	Rows               []HoldingRow    `json:"holdings_table"`
	Cash               decimal.Decimal `json:"cash_balance"`
	TotalHoldingsValue decimal.Decimal `json:"total_holdings_value"`
	TotalValue         decimal.Decimal `json:"total_portfolio_value"`
	Partial            bool            `json:"partial,omitempty"` // true when unpriced rows were excluded
}

// PLStatus classifies a profit/loss figure.
type PLStatus string

const (
	PLProfit     PLStatus = "Profit"
	PLLoss       PLStatus = "Loss"
	PLBreakEven  PLStatus = "Break-even"
	PLNoBaseline PLStatus = "NO_BASELINE"
)

// ProfitLoss reports portfolio performance against the deposit baseline.
// The ProfitLoss field is nil when no baseline exists.
type ProfitLoss struct {
	Baseline   decimal.Decimal  `json:"baseline"`
	TotalValue decimal.Decimal  `json:"total_portfolio_value"`
	ProfitLoss *decimal.Decimal `json:"profit_loss"`
	Status     PLStatus         `json:"status"`
}

// Snapshot is a point-in-time reconstruction of the account, produced by
// replaying the transaction log up to a cutoff. Valuation uses current
// prices; PricedAt records when those prices were fetched.
type Snapshot struct {
	AsOf       time.Time        `json:"as_of"`
	PricedAt   time.Time        `json:"priced_at"`
	Cash       decimal.Decimal  `json:"cash_balance"`
	Holdings   map[string]int64 `json:"holdings"`
	Applied    int              `json:"transactions_applied"`
	Rows       []HoldingRow     `json:"holdings_table"`
	TotalValue decimal.Decimal  `json:"total_portfolio_value"`
	Partial    bool             `json:"partial,omitempty"`
	Baseline   decimal.Decimal  `json:"baseline"`
	ProfitLoss *decimal.Decimal `json:"profit_loss"`
	Status     PLStatus         `json:"status"`
	NoActivity bool             `json:"no_activity,omitempty"`
}
