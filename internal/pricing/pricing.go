// Package pricing defines the price oracle contract the ledger consumes: a
// symbol maps to a current quote, or the oracle signals the symbol is
// unsupported. The reference oracle serves a small fixed symbol set; a redis
// read-through cache can wrap any oracle.
package pricing

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnavailable signals the oracle has no quote for the symbol.
	ErrUnavailable = errors.New("pricing: no quote available for symbol")

	// ErrBadSymbol signals a malformed ticker symbol.
	ErrBadSymbol = errors.New("pricing: symbol must be 1-5 ASCII letters")
)

// Oracle supplies current share prices. The only external I/O in the system
// goes through here, so implementations take a context.
type Oracle interface {
	Price(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// Normalize upper-cases a ticker symbol and validates its shape.
func Normalize(symbol string) (string, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if len(sym) < 1 || len(sym) > 5 {
		return "", ErrBadSymbol
	}
	for _, c := range sym {
		if c < 'A' || c > 'Z' {
			return "", ErrBadSymbol
		}
	}
	return sym, nil
}

// StaticOracle returns deterministic prices for a fixed symbol set. Used as
// the reference oracle in lieu of real market-data integration.
type StaticOracle struct {
	prices map[string]decimal.Decimal
}

// NewStaticOracle creates the reference oracle with the standard fixture set.
func NewStaticOracle() *StaticOracle {
	return &StaticOracle{prices: map[string]decimal.Decimal{
		"AAPL":  decimal.NewFromInt(150),
		"TSLA":  decimal.NewFromInt(200),
		"GOOGL": decimal.NewFromInt(180),
	}}
}

// NewFixedOracle creates an oracle over an arbitrary price table. Tests use
// this to exercise unavailable-price paths.
func NewFixedOracle(prices map[string]decimal.Decimal) *StaticOracle {
	table := make(map[string]decimal.Decimal, len(prices))
	for sym, p := range prices {
		table[strings.ToUpper(sym)] = p
	}
	return &StaticOracle{prices: table}
}

func (o *StaticOracle) Price(_ context.Context, symbol string) (decimal.Decimal, error) {
	p, ok := o.prices[strings.ToUpper(symbol)]
	if !ok {
		return decimal.Decimal{}, ErrUnavailable
	}
	return p, nil
}

// Symbols returns the supported symbols in sorted order.
func (o *StaticOracle) Symbols() []string {
	syms := make([]string, 0, len(o.prices))
	for sym := range o.prices {
		syms = append(syms, sym)
	}
	sort.Strings(syms)
	return syms
}
