// Package api exposes the ledger services over HTTP. Every response body is
// the uniform envelope {success, message, data, error_code}; this layer adds
// no business rules of its own.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/tradesim/account-engine/internal/ledger"
	"github.com/tradesim/account-engine/internal/metrics"
	"github.com/tradesim/account-engine/internal/model"
)

// SymbolLister is implemented by oracles that can enumerate their supported
// symbols; the static reference oracle does.
type SymbolLister interface {
	Symbols() []string
}

// Handler wires the ledger services to chi routes.
type Handler struct {
	accounts  *ledger.AccountService
	money     *ledger.MoneyService
	trading   *ledger.TradingService
	valuation *ledger.ValuationService
	history   *ledger.HistoryService
	symbols   SymbolLister
	hub       *WSHub // optional; nil disables broadcasting
}

// NewHandler creates the HTTP handler set. Pass nil for hub if WebSocket
// broadcasting is not needed.
func NewHandler(
	accounts *ledger.AccountService,
	money *ledger.MoneyService,
	trading *ledger.TradingService,
	valuation *ledger.ValuationService,
	history *ledger.HistoryService,
	symbols SymbolLister,
	hub *WSHub,
) *Handler {
	return &Handler{
		accounts:  accounts,
		money:     money,
		trading:   trading,
		valuation: valuation,
		history:   history,
		symbols:   symbols,
		hub:       hub,
	}
}

// Register mounts all routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Post("/account", h.CreateAccount)
	r.Get("/account", h.GetPortfolio)
	r.Get("/account/pl", h.GetProfitLoss)
	r.Post("/account/deposit", h.Deposit)
	r.Post("/account/withdraw", h.Withdraw)
	r.Post("/trade/buy", h.Buy)
	r.Post("/trade/sell", h.Sell)
	r.Get("/transactions", h.ListTransactions)
	r.Get("/snapshot", h.SnapshotAt)
	r.Get("/prices/{symbol}", h.GetPrice)
	r.Get("/symbols", h.GetSymbols)
	if h.hub != nil {
		r.Get("/ws", h.hub.HandleWS)
	}
}

// --- Request types ---

// CreateAccountRequest is the JSON body for POST /account.
type CreateAccountRequest struct {
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// AmountRequest is the JSON body for deposits and withdrawals.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// OrderRequest is the JSON body for buys and sells.
type OrderRequest struct {
	Symbol   string `json:"symbol"`
	Quantity int64  `json:"quantity"`
}

// --- Handlers ---

// CreateAccount handles POST /api/v1/account
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadBody(w)
		return
	}

	acct, err := h.accounts.Create(r.Context(), req.OpeningBalance)
	if err != nil {
		writeFailure(w, "create", err, ledger.FallbackCreate)
		return
	}

	record("create")
	metrics.CashBalance.Set(acct.Cash.InexactFloat64())
	writeEnvelope(w, http.StatusCreated, ledger.OK(ledger.MsgAccountCreated, map[string]any{"account": acct}))
}

// Deposit handles POST /api/v1/account/deposit
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadBody(w)
		return
	}

	res, err := h.money.Deposit(r.Context(), req.Amount)
	if err != nil {
		writeFailure(w, "deposit", err, ledger.FallbackDeposit)
		return
	}

	record("deposit")
	h.afterMutation(res)
	writeEnvelope(w, http.StatusOK, ledger.OK(ledger.MsgDeposit, res))
}

// Withdraw handles POST /api/v1/account/withdraw
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadBody(w)
		return
	}

	res, err := h.money.Withdraw(r.Context(), req.Amount)
	if err != nil {
		writeFailure(w, "withdraw", err, ledger.FallbackWithdraw)
		return
	}

	record("withdraw")
	h.afterMutation(res)
	writeEnvelope(w, http.StatusOK, ledger.OK(ledger.MsgWithdrawal, res))
}

// Buy handles POST /api/v1/trade/buy
func (h *Handler) Buy(w http.ResponseWriter, r *http.Request) {
	var req OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadBody(w)
		return
	}

	res, err := h.trading.Buy(r.Context(), req.Symbol, req.Quantity)
	if err != nil {
		writeFailure(w, "buy", err, ledger.FallbackBuy)
		return
	}

	record("buy")
	metrics.TradeVolume.WithLabelValues("buy").Add(float64(req.Quantity))
	h.afterMutation(res)
	writeEnvelope(w, http.StatusOK, ledger.OK(ledger.MsgBuy, res))
}

// Sell handles POST /api/v1/trade/sell
func (h *Handler) Sell(w http.ResponseWriter, r *http.Request) {
	var req OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadBody(w)
		return
	}

	res, err := h.trading.Sell(r.Context(), req.Symbol, req.Quantity)
	if err != nil {
		writeFailure(w, "sell", err, ledger.FallbackSell)
		return
	}

	record("sell")
	metrics.TradeVolume.WithLabelValues("sell").Add(float64(req.Quantity))
	h.afterMutation(res)
	writeEnvelope(w, http.StatusOK, ledger.OK(ledger.MsgSell, res))
}

// portfolioPayload decorates a valuation with the partial-price warning.
type portfolioPayload struct {
	model.Valuation
	Warning string `json:"warning,omitempty"`
}

// GetPortfolio handles GET /api/v1/account
func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	val, err := h.valuation.CurrentValue(r.Context())
	if err != nil {
		writeFailure(w, "portfolio", err, ledger.FallbackValue)
		return
	}

	payload := portfolioPayload{Valuation: val}
	msg := ledger.MsgPortfolioLoaded
	if len(val.Rows) == 0 && val.Cash.IsZero() {
		msg = ledger.MsgEmptyPortfolio
	}
	if val.Partial {
		payload.Warning = ledger.MsgPriceWarning
	}
	writeEnvelope(w, http.StatusOK, ledger.OK(msg, payload))
}

// GetProfitLoss handles GET /api/v1/account/pl
func (h *Handler) GetProfitLoss(w http.ResponseWriter, r *http.Request) {
	pl, err := h.valuation.ProfitLoss(r.Context())
	if err != nil {
		writeFailure(w, "profit_loss", err, ledger.FallbackPL)
		return
	}

	msg := ledger.MsgPLCalculated
	if pl.Status == model.PLNoBaseline {
		msg = ledger.MsgNoBaseline
	}
	writeEnvelope(w, http.StatusOK, ledger.OK(msg, pl))
}

// ListTransactions handles GET /api/v1/transactions?type=&symbol=
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	filter := ledger.TxFilter{
		Type:   model.TransactionType(r.URL.Query().Get("type")),
		Symbol: r.URL.Query().Get("symbol"),
	}

	rows, total, err := h.history.List(r.Context(), filter)
	if err != nil {
		writeFailure(w, "transactions", err, ledger.FallbackHistory)
		return
	}

	msg := ledger.MsgTransactionsLoaded
	switch {
	case total == 0:
		msg = ledger.MsgNoTransactions
	case len(rows) == 0:
		msg = ledger.MsgNoFilterMatch
	}
	writeEnvelope(w, http.StatusOK, ledger.OK(msg, map[string]any{"transactions": rows}))
}

// SnapshotAt handles GET /api/v1/snapshot?t=RFC3339
func (h *Handler) SnapshotAt(w http.ResponseWriter, r *http.Request) {
	ts, err := time.Parse(time.RFC3339Nano, r.URL.Query().Get("t"))
	if err != nil {
		writeEnvelope(w, http.StatusBadRequest, ledger.Envelope{
			Success:   false,
			Message:   "Enter a valid timestamp.",
			ErrorCode: ledger.CodeInvalidAmount,
		})
		return
	}

	snap, err := h.history.SnapshotAt(r.Context(), ts)
	if err != nil {
		writeFailure(w, "snapshot", err, ledger.FallbackSnapshot)
		return
	}

	msg := ledger.MsgSnapshot
	if snap.NoActivity {
		msg = ledger.MsgNoActivity
	}
	writeEnvelope(w, http.StatusOK, ledger.OK(msg, snap))
}

// GetPrice handles GET /api/v1/prices/{symbol}
func (h *Handler) GetPrice(w http.ResponseWriter, r *http.Request) {
	sym, price, err := h.trading.Quote(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		writeFailure(w, "price", err, ledger.FallbackValue)
		return
	}
	writeEnvelope(w, http.StatusOK, ledger.OK(ledger.MsgPriceRetrieved, map[string]any{
		"symbol": sym,
		"price":  price,
	}))
}

// GetSymbols handles GET /api/v1/symbols
func (h *Handler) GetSymbols(w http.ResponseWriter, r *http.Request) {
	var symbols []string
	if h.symbols != nil {
		symbols = h.symbols.Symbols()
	}
	writeEnvelope(w, http.StatusOK, ledger.OK("Symbols loaded.", map[string]any{"symbols": symbols}))
}

// afterMutation updates gauges and broadcasts the committed transaction.
func (h *Handler) afterMutation(res ledger.MutationResult) {
	metrics.CashBalance.Set(res.Cash.InexactFloat64())
	if h.hub != nil {
		h.hub.Broadcast(NewTxMessage(res.Transaction))
	}
}

// --- Envelope plumbing ---

func record(op string) {
	metrics.OperationsTotal.WithLabelValues(op, "ok").Inc()
}

func writeFailure(w http.ResponseWriter, op string, err error, fallback string) {
	env := ledger.Fail(err, fallback)
	if env.ErrorCode == ledger.CodeServerError {
		metrics.OperationsTotal.WithLabelValues(op, "error").Inc()
	} else {
		metrics.OperationsTotal.WithLabelValues(op, "rejected").Inc()
		metrics.RejectionsTotal.WithLabelValues(env.ErrorCode).Inc()
	}
	writeEnvelope(w, statusFor(env.ErrorCode), env)
}

func writeBadBody(w http.ResponseWriter) {
	writeEnvelope(w, http.StatusBadRequest, ledger.Envelope{
		Success:   false,
		Message:   "invalid request body",
		ErrorCode: ledger.CodeInvalidAmount,
	})
}

func writeEnvelope(w http.ResponseWriter, status int, env ledger.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env)
}

// statusFor maps domain error codes to HTTP status codes.
func statusFor(code string) int {
	switch code {
	case ledger.CodeInvalidAmount, ledger.CodeOutOfRange:
		return http.StatusBadRequest
	case ledger.CodePriceUnavailable:
		return http.StatusNotFound
	case ledger.CodeInsufficientFunds, ledger.CodeInsufficientShares,
		ledger.CodeAlreadyInitialized, ledger.CodeNotInitialized:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
