package ledger_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/tradesim/account-engine/internal/ledger"
)

// TestInvariants_RandomOperationSequence drives a long mixed sequence of
// operations, rejected ones included, and checks the core invariants after
// every step: cash never negative, holdings always positive, the log only
// grows, and a full replay reproduces the live state.
func TestInvariants_RandomOperationSequence(t *testing.T) {
	e := newTestEnv(t)
	e.create(t, 1000)
	ctx := context.Background()

	rng := rand.New(rand.NewSource(42))
	symbols := []string{"ACME", "AAPL", "TSLA", "GOOGL", "NOPE"}
	prevLogLen := 1

	for i := 0; i < 500; i++ {
		sym := symbols[rng.Intn(len(symbols))]
		qty := int64(rng.Intn(30) - 5) // includes invalid quantities
		amount := d(float64(rng.Intn(2000) - 200))

		switch rng.Intn(4) {
		case 0:
			e.money.Deposit(ctx, amount)
		case 1:
			e.money.Withdraw(ctx, amount)
		case 2:
			e.trading.Buy(ctx, sym, qty)
		case 3:
			e.trading.Sell(ctx, sym, qty)
		}

		acct := e.live(t)

		if acct.Cash.IsNegative() {
			t.Fatalf("step %d: cash went negative: %s", i, acct.Cash)
		}
		for hsym, hqty := range acct.Holdings {
			if hqty <= 0 {
				t.Fatalf("step %d: holding %s has non-positive quantity %d", i, hsym, hqty)
			}
		}
		if len(acct.Transactions) < prevLogLen {
			t.Fatalf("step %d: transaction log shrank from %d to %d", i, prevLogLen, len(acct.Transactions))
		}
		prevLogLen = len(acct.Transactions)

		for j := 1; j < len(acct.Transactions); j++ {
			if acct.Transactions[j].Timestamp.Before(acct.Transactions[j-1].Timestamp) {
				t.Fatalf("step %d: log timestamps not monotonic at %d", i, j)
			}
		}
	}

	// Round-trip law: replaying the full log reproduces the live state.
	acct := e.live(t)
	replayed := ledger.Replay(acct.Transactions)
	if !replayed.Cash.Equal(acct.Cash) {
		t.Errorf("replayed cash %s != live %s", replayed.Cash, acct.Cash)
	}
	if len(replayed.Holdings) != len(acct.Holdings) {
		t.Errorf("replayed holdings %v != live %v", replayed.Holdings, acct.Holdings)
	}
	for sym, qty := range acct.Holdings {
		if replayed.Holdings[sym] != qty {
			t.Errorf("replayed %s=%d != live %d", sym, replayed.Holdings[sym], qty)
		}
	}

	// The last transaction's stored snapshot agrees with the live state.
	last := acct.Transactions[len(acct.Transactions)-1]
	if !last.ResultingCash.Equal(acct.Cash) {
		t.Errorf("last snapshot cash %s != live %s", last.ResultingCash, acct.Cash)
	}
}
