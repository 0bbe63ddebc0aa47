package ledger_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tradesim/account-engine/internal/ledger"
	"github.com/tradesim/account-engine/internal/model"
	"github.com/tradesim/account-engine/internal/pricing"
	"github.com/tradesim/account-engine/internal/store"
)

func TestCurrentValue(t *testing.T) {
	e := newTestEnv(t)
	e.create(t, 2000)
	if _, err := e.trading.Buy(context.Background(), "ACME", 10); err != nil {
		t.Fatalf("buy failed: %v", err)
	}

	val, err := e.valuation.CurrentValue(context.Background())
	if err != nil {
		t.Fatalf("valuation failed: %v", err)
	}
	if !val.Cash.Equal(d(1000)) {
		t.Errorf("expected cash 1000, got %s", val.Cash)
	}
	if !val.TotalHoldingsValue.Equal(d(1000)) {
		t.Errorf("expected holdings value 1000, got %s", val.TotalHoldingsValue)
	}
	if !val.TotalValue.Equal(d(2000)) {
		t.Errorf("expected total 2000, got %s", val.TotalValue)
	}
	if len(val.Rows) != 1 || val.Rows[0].Symbol != "ACME" {
		t.Fatalf("expected one ACME row, got %+v", val.Rows)
	}
	if val.Partial {
		t.Error("fully priced valuation must not be partial")
	}
}

func TestCurrentValue_UnpricedHoldingIsPartialNotFailure(t *testing.T) {
	// The account holds a symbol the oracle no longer quotes; that row is
	// unpriced and excluded from totals, not an overall failure.
	oracle := pricing.NewFixedOracle(map[string]decimal.Decimal{"ACME": d(100)})
	st := store.NewMemoryStore()
	accounts := ledger.NewAccountService(st)
	trading := ledger.NewTradingService(st, pricing.NewFixedOracle(map[string]decimal.Decimal{
		"ACME": d(100),
		"GONE": d(10),
	}))
	valuation := ledger.NewValuationService(st, oracle, ledger.BaselineNetDeposits)

	if _, err := accounts.Create(context.Background(), d(1000)); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := trading.Buy(context.Background(), "ACME", 2); err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	if _, err := trading.Buy(context.Background(), "GONE", 5); err != nil {
		t.Fatalf("buy failed: %v", err)
	}

	val, err := valuation.CurrentValue(context.Background())
	if err != nil {
		t.Fatalf("valuation failed: %v", err)
	}
	if !val.Partial {
		t.Error("valuation with an unpriced holding must be flagged partial")
	}
	if !val.TotalHoldingsValue.Equal(d(200)) {
		t.Errorf("unpriced row must be excluded from totals, got %s", val.TotalHoldingsValue)
	}
	for _, row := range val.Rows {
		if row.Symbol == "GONE" && (row.Price != nil || row.MarketValue != nil) {
			t.Error("unpriced row must carry nil price and market value")
		}
	}
}

func TestProfitLoss_BreakEven(t *testing.T) {
	// Deposits 1500, withdrawals 500, portfolio 0 cash + 10 shares at 100:
	// baseline 1000, P/L 0 → break-even.
	e := newTestEnv(t)
	e.create(t, 1000)
	if _, err := e.money.Deposit(context.Background(), d(500)); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	if _, err := e.trading.Buy(context.Background(), "ACME", 10); err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	if _, err := e.money.Withdraw(context.Background(), d(500)); err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}

	pl, err := e.valuation.ProfitLoss(context.Background())
	if err != nil {
		t.Fatalf("profit/loss failed: %v", err)
	}
	if !pl.Baseline.Equal(d(1000)) {
		t.Errorf("expected baseline 1000, got %s", pl.Baseline)
	}
	if pl.ProfitLoss == nil || !pl.ProfitLoss.IsZero() {
		t.Errorf("expected P/L 0, got %v", pl.ProfitLoss)
	}
	if pl.Status != model.PLBreakEven {
		t.Errorf("expected Break-even, got %s", pl.Status)
	}
}

func TestProfitLoss_DepositsOnlyPolicy(t *testing.T) {
	e := newTestEnv(t)
	e.create(t, 1000)
	if _, err := e.money.Withdraw(context.Background(), d(400)); err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}

	depositsOnly := ledger.NewValuationService(e.store, e.oracle, ledger.BaselineDepositsOnly)
	pl, err := depositsOnly.ProfitLoss(context.Background())
	if err != nil {
		t.Fatalf("profit/loss failed: %v", err)
	}
	// Baseline stays 1000; portfolio is 600 cash → loss of 400.
	if !pl.Baseline.Equal(d(1000)) {
		t.Errorf("deposits-only baseline must ignore withdrawals, got %s", pl.Baseline)
	}
	if pl.Status != model.PLLoss || pl.ProfitLoss == nil || !pl.ProfitLoss.Equal(d(-400)) {
		t.Errorf("expected Loss of 400, got %s %v", pl.Status, pl.ProfitLoss)
	}
}

func TestProfitLoss_NoBaseline(t *testing.T) {
	e := newTestEnv(t)
	e.create(t, 1000)
	if _, err := e.money.Withdraw(context.Background(), d(1000)); err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}

	// Net deposits are zero; report NO_BASELINE, not a degenerate figure.
	pl, err := e.valuation.ProfitLoss(context.Background())
	if err != nil {
		t.Fatalf("profit/loss failed: %v", err)
	}
	if pl.Status != model.PLNoBaseline {
		t.Errorf("expected NO_BASELINE, got %s", pl.Status)
	}
	if pl.ProfitLoss != nil {
		t.Errorf("no-baseline P/L must be nil, got %s", pl.ProfitLoss)
	}
}

func TestProfitLoss_Profit(t *testing.T) {
	e := newTestEnv(t)
	e.create(t, 1000)
	if _, err := e.money.Deposit(context.Background(), d(200)); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}

	// Value a holding above its purchase by pricing against a richer oracle.
	richer := ledger.NewValuationService(e.store, pricing.NewFixedOracle(map[string]decimal.Decimal{
		"ACME": d(150),
	}), ledger.BaselineNetDeposits)
	if _, err := e.trading.Buy(context.Background(), "ACME", 10); err != nil {
		t.Fatalf("buy failed: %v", err)
	}

	pl, err := richer.ProfitLoss(context.Background())
	if err != nil {
		t.Fatalf("profit/loss failed: %v", err)
	}
	// Cash 200, holdings 10×150=1500, baseline 1200 → profit 500.
	if pl.Status != model.PLProfit || pl.ProfitLoss == nil || !pl.ProfitLoss.Equal(d(500)) {
		t.Errorf("expected Profit of 500, got %s %v", pl.Status, pl.ProfitLoss)
	}
}

func TestParseBaselinePolicy(t *testing.T) {
	if p, ok := ledger.ParseBaselinePolicy(""); !ok || p != ledger.BaselineNetDeposits {
		t.Errorf("empty policy must default to net-deposits, got %s %v", p, ok)
	}
	if p, ok := ledger.ParseBaselinePolicy("deposits-only"); !ok || p != ledger.BaselineDepositsOnly {
		t.Errorf("deposits-only must parse, got %s %v", p, ok)
	}
	if _, ok := ledger.ParseBaselinePolicy("bogus"); ok {
		t.Error("unknown policy must not parse")
	}
}
