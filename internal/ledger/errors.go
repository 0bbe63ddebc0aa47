// Package ledger implements the single-account trading ledger: money
// movement, trade execution, portfolio valuation, and point-in-time history
// reconstruction over an append-only transaction log.
//
// Every operation returns an explicit error instead of panicking. Expected
// domain failures are *Error values carrying a stable machine code and a
// stable, specific message; anything else is an unexpected internal failure.
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Error codes exposed through the response envelope. Presentation layers
// branch on these instead of string-matching messages.
const (
	CodeInvalidAmount      = "INVALID_AMOUNT"
	CodeInsufficientFunds  = "INSUFFICIENT_FUNDS"
	CodeInsufficientShares = "INSUFFICIENT_SHARES"
	CodePriceUnavailable   = "PRICE_UNAVAILABLE"
	CodeAlreadyInitialized = "ALREADY_INITIALIZED"
	CodeNotInitialized     = "NOT_INITIALIZED"
	CodeOutOfRange         = "OUT_OF_RANGE"
	CodeServerError        = "SERVER_ERROR"
)

// Error is a predictable domain failure that maps to a user-facing message.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

// AsDomain unwraps err into a domain *Error if it is one.
func AsDomain(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

func errOpeningBalance() *Error {
	return &Error{Code: CodeInvalidAmount, Message: "Opening balance must be greater than 0."}
}

func errDepositAmount() *Error {
	return &Error{Code: CodeInvalidAmount, Message: "Deposit amount must be greater than 0."}
}

func errWithdrawAmount() *Error {
	return &Error{Code: CodeInvalidAmount, Message: "Withdrawal amount must be greater than 0."}
}

func errQuantity() *Error {
	return &Error{Code: CodeInvalidAmount, Message: "Quantity must be greater than 0."}
}

func errSymbolRequired() *Error {
	return &Error{Code: CodeInvalidAmount, Message: "Symbol is required."}
}

func errInsufficientFundsWithdrawal(requested, available decimal.Decimal) *Error {
	return &Error{
		Code: CodeInsufficientFunds,
		Message: fmt.Sprintf("Insufficient funds. Withdrawal of %s exceeds available balance of %s.",
			requested.StringFixed(2), available.StringFixed(2)),
	}
}

func errInsufficientFundsPurchase(cost, available decimal.Decimal) *Error {
	return &Error{
		Code: CodeInsufficientFunds,
		Message: fmt.Sprintf("Insufficient funds. Purchase costs %s but only %s is available.",
			cost.StringFixed(2), available.StringFixed(2)),
	}
}

func errInsufficientShares(symbol string, requested, held int64) *Error {
	return &Error{
		Code: CodeInsufficientShares,
		Message: fmt.Sprintf("Insufficient shares. Requested %d of %s but only %d held.",
			requested, symbol, held),
	}
}

func errPriceUnavailable(symbol string) *Error {
	return &Error{
		Code:    CodePriceUnavailable,
		Message: fmt.Sprintf("Unable to retrieve share price for %s.", symbol),
	}
}

func errAlreadyInitialized() *Error {
	return &Error{Code: CodeAlreadyInitialized, Message: "Account already initialized."}
}

func errNotInitialized() *Error {
	return &Error{Code: CodeNotInitialized, Message: "Account not initialized."}
}

func errSnapshotOutOfRange() *Error {
	return &Error{Code: CodeOutOfRange, Message: "Selected time is outside the account history range."}
}
