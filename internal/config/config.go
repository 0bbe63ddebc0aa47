// Package config loads the engine's runtime configuration from the
// environment, with an optional .env file for local development.
package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/tradesim/account-engine/internal/ledger"
)

// Config holds everything cmd/server needs to wire the engine.
type Config struct {
	// Port is the HTTP listen port.
	Port string

	// RedisURL enables the redis quote cache when non-empty.
	RedisURL string

	// PriceCacheTTL is how long cached quotes stay fresh.
	PriceCacheTTL time.Duration

	// OpeningBalance, when positive, creates the account at startup.
	// Zero leaves creation to the API.
	OpeningBalance decimal.Decimal

	// BaselinePolicy selects the profit/loss baseline rule.
	BaselinePolicy ledger.BaselinePolicy
}

// Load reads configuration, preferring real environment variables over .env.
// Invalid optional values are logged and replaced with defaults rather than
// aborting startup.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using system environment")
	}

	cfg := Config{
		Port:           envOr("PORT", "8080"),
		RedisURL:       os.Getenv("REDIS_URL"),
		PriceCacheTTL:  30 * time.Second,
		OpeningBalance: decimal.Zero,
		BaselinePolicy: ledger.BaselineNetDeposits,
	}

	if raw := os.Getenv("PRICE_CACHE_TTL"); raw != "" {
		if ttl, err := time.ParseDuration(raw); err == nil && ttl > 0 {
			cfg.PriceCacheTTL = ttl
		} else {
			slog.Warn("invalid PRICE_CACHE_TTL, using default", "value", raw)
		}
	}

	if raw := os.Getenv("OPENING_BALANCE"); raw != "" {
		if amt, err := decimal.NewFromString(raw); err == nil && amt.IsPositive() {
			cfg.OpeningBalance = amt
		} else {
			slog.Warn("invalid OPENING_BALANCE, account must be created via API", "value", raw)
		}
	}

	if raw := os.Getenv("BASELINE_POLICY"); raw != "" {
		if policy, ok := ledger.ParseBaselinePolicy(raw); ok {
			cfg.BaselinePolicy = policy
		} else {
			slog.Warn("unknown BASELINE_POLICY, using net-deposits", "value", raw)
		}
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
