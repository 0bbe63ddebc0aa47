package ledger

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tradesim/account-engine/internal/model"
	"github.com/tradesim/account-engine/internal/pricing"
	"github.com/tradesim/account-engine/internal/store"
)

// HistoryService reconstructs past account states by replaying the
// transaction log, and serves transaction listings. It is a pure read path:
// it never touches the live account's mutable fields, only the log.
type HistoryService struct {
	store  store.Store
	oracle pricing.Oracle
	policy BaselinePolicy
	now    func() time.Time
}

// NewHistoryService creates a history service. The baseline policy governs
// the P/L figure reported on snapshots.
func NewHistoryService(st store.Store, oracle pricing.Oracle, policy BaselinePolicy) *HistoryService {
	return &HistoryService{store: st, oracle: oracle, policy: policy, now: time.Now}
}

// ReplayState is the account state a fold over the transaction log produces.
type ReplayState struct {
	Cash        decimal.Decimal
	Holdings    map[string]int64
	Deposits    decimal.Decimal
	Withdrawals decimal.Decimal
	Applied     int
}

// Replay folds transactions in log order onto an empty account. Amounts are
// signed effects on cash, so cash accumulation is uniform across types.
// Replaying the full log must reproduce the live state exactly.
func Replay(txs []model.Transaction) ReplayState {
	st := ReplayState{
		Cash:        decimal.Zero,
		Holdings:    map[string]int64{},
		Deposits:    decimal.Zero,
		Withdrawals: decimal.Zero,
	}
	for _, tx := range txs {
		st.Cash = st.Cash.Add(tx.Amount)
		switch tx.Type {
		case model.TxDeposit:
			st.Deposits = st.Deposits.Add(tx.Amount)
		case model.TxWithdrawal:
			st.Withdrawals = st.Withdrawals.Add(tx.Amount.Neg())
		case model.TxBuy:
			st.Holdings[tx.Symbol] += tx.Quantity
		case model.TxSell:
			st.Holdings[tx.Symbol] -= tx.Quantity
			if st.Holdings[tx.Symbol] <= 0 {
				delete(st.Holdings, tx.Symbol)
			}
		}
		st.Applied++
	}
	return st
}

// SnapshotAt reconstructs the account as of ts by replaying every
// transaction with timestamp <= ts, then values the reconstructed holdings
// at current prices. A ts outside [account creation, now] is out of range.
// If no transaction precedes ts the snapshot reports no activity instead of
// failing.
func (s *HistoryService) SnapshotAt(ctx context.Context, ts time.Time) (model.Snapshot, error) {
	acct, err := s.store.Snapshot(ctx)
	if err != nil {
		return model.Snapshot{}, mapStoreErr(err)
	}

	now := s.now().UTC()
	if ts.Before(acct.CreatedAt) || ts.After(now) {
		return model.Snapshot{}, errSnapshotOutOfRange()
	}

	var upTo []model.Transaction
	for _, tx := range acct.Transactions {
		if tx.Timestamp.After(ts) {
			break
		}
		upTo = append(upTo, tx)
	}

	replayed := Replay(upTo)
	snap := model.Snapshot{
		AsOf:     ts,
		PricedAt: now,
		Cash:     replayed.Cash,
		Holdings: replayed.Holdings,
		Applied:  replayed.Applied,
		Status:   model.PLNoBaseline,
	}

	if replayed.Applied == 0 {
		snap.NoActivity = true
		snap.Rows = []model.HoldingRow{}
		return snap, nil
	}

	rows, holdingsValue, partial := priceHoldings(ctx, s.oracle, replayed.Holdings)
	snap.Rows = rows
	snap.Partial = partial
	snap.TotalValue = replayed.Cash.Add(holdingsValue)

	base := baseline(s.policy, replayed.Deposits, replayed.Withdrawals)
	snap.Baseline = base
	if !base.IsZero() {
		pl := snap.TotalValue.Sub(base)
		snap.ProfitLoss = &pl
		snap.Status = classify(pl)
	}
	return snap, nil
}

// TxFilter narrows a transaction listing. Zero values match everything.
type TxFilter struct {
	Type   model.TransactionType
	Symbol string
}

// List returns transactions newest-first, filtered by type and/or symbol.
// The second return is the unfiltered log length, so callers can distinguish
// an empty log from an empty filter match.
func (s *HistoryService) List(ctx context.Context, filter TxFilter) ([]model.Transaction, int, error) {
	txs, err := s.store.Transactions(ctx)
	if err != nil {
		return nil, 0, mapStoreErr(err)
	}
	total := len(txs)

	sym := strings.ToUpper(strings.TrimSpace(filter.Symbol))
	rows := make([]model.Transaction, 0, total)
	for _, tx := range txs {
		if filter.Type != "" && tx.Type != filter.Type {
			continue
		}
		if sym != "" && tx.Symbol != sym {
			continue
		}
		rows = append(rows, tx)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Timestamp.After(rows[j].Timestamp)
	})
	return rows, total, nil
}
