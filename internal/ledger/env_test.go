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

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// countingOracle wraps an oracle and counts lookups, so tests can assert the
// oracle is never consulted for a trade that is doomed before pricing.
type countingOracle struct {
	inner pricing.Oracle
	calls int
}

func (o *countingOracle) Price(ctx context.Context, symbol string) (decimal.Decimal, error) {
	o.calls++
	return o.inner.Price(ctx, symbol)
}

type env struct {
	store     *store.MemoryStore
	oracle    *countingOracle
	accounts  *ledger.AccountService
	money     *ledger.MoneyService
	trading   *ledger.TradingService
	valuation *ledger.ValuationService
	history   *ledger.HistoryService
}

// newTestEnv wires the services over an in-memory store and a fixed-price
// oracle quoting ACME at 100 alongside the standard fixture symbols.
func newTestEnv(t *testing.T) *env {
	t.Helper()
	oracle := &countingOracle{inner: pricing.NewFixedOracle(map[string]decimal.Decimal{
		"ACME":  d(100),
		"AAPL":  d(150),
		"TSLA":  d(200),
		"GOOGL": d(180),
	})}
	st := store.NewMemoryStore()
	return &env{
		store:     st,
		oracle:    oracle,
		accounts:  ledger.NewAccountService(st),
		money:     ledger.NewMoneyService(st),
		trading:   ledger.NewTradingService(st, oracle),
		valuation: ledger.NewValuationService(st, oracle, ledger.BaselineNetDeposits),
		history:   ledger.NewHistoryService(st, oracle, ledger.BaselineNetDeposits),
	}
}

func (e *env) create(t *testing.T, opening float64) model.Account {
	t.Helper()
	acct, err := e.accounts.Create(context.Background(), d(opening))
	if err != nil {
		t.Fatalf("create account failed: %v", err)
	}
	return acct
}

func (e *env) live(t *testing.T) model.Account {
	t.Helper()
	acct, err := e.store.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	return acct
}

// wantDomainErr asserts err is a domain error with the given code and, when
// msg is non-empty, exactly that message.
func wantDomainErr(t *testing.T, err error, code, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	de, ok := ledger.AsDomain(err)
	if !ok {
		t.Fatalf("expected domain error, got %v", err)
	}
	if de.Code != code {
		t.Errorf("expected code %s, got %s (%s)", code, de.Code, de.Message)
	}
	if msg != "" && de.Message != msg {
		t.Errorf("expected message %q, got %q", msg, de.Message)
	}
}
