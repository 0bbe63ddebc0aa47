package ledger

// Envelope is the uniform structure every operation hands to a presentation
// layer. ErrorCode is one of the Code* constants so callers can choose UI
// treatment without string-matching Message.
type Envelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

// OK builds a success envelope.
func OK(message string, data any) Envelope {
	return Envelope{Success: true, Message: message, Data: data}
}

// Fail builds a failure envelope from err. Domain errors keep their code and
// message; anything else collapses to a generic SERVER_ERROR with fallback as
// the message, so internal details never leak to callers.
func Fail(err error, fallback string) Envelope {
	if de, ok := AsDomain(err); ok {
		return Envelope{Success: false, Message: de.Message, ErrorCode: de.Code}
	}
	return Envelope{Success: false, Message: fallback, ErrorCode: CodeServerError}
}

// Stable success and fallback messages shared with the presentation layer.
const (
	MsgAccountCreated     = "Account created successfully."
	MsgDeposit            = "Deposit successful."
	MsgWithdrawal         = "Withdrawal successful."
	MsgBuy                = "Buy order recorded successfully."
	MsgSell               = "Sell order recorded successfully."
	MsgPortfolioLoaded    = "Portfolio loaded."
	MsgEmptyPortfolio     = "You have no holdings yet."
	MsgPLCalculated       = "P/L calculated."
	MsgNoBaseline         = "No deposit baseline available."
	MsgSnapshot           = "Snapshot generated."
	MsgNoActivity         = "No activity before this time."
	MsgTransactionsLoaded = "Transactions loaded."
	MsgNoTransactions     = "No transactions have been recorded yet."
	MsgNoFilterMatch      = "No transactions match the selected filters."
	MsgPriceWarning       = "Some share prices could not be retrieved. Values marked N/A."
	MsgPriceRetrieved     = "Price retrieved."

	FallbackCreate   = "Unable to create account at the moment. Please try again later."
	FallbackDeposit  = "Unable to process deposit at the moment. Please try again later."
	FallbackWithdraw = "Unable to process withdrawal at the moment. Please try again later."
	FallbackBuy      = "Unable to record buy transaction at the moment. Please try again later."
	FallbackSell     = "Unable to record sell transaction at the moment. Please try again later."
	FallbackValue    = "Unable to load portfolio at the moment."
	FallbackPL       = "Unable to compute profit/loss at the moment."
	FallbackSnapshot = "Unable to generate snapshot at the moment."
	FallbackHistory  = "Unable to load transactions at the moment."
)
