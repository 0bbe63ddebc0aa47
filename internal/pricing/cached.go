package pricing

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// CachedOracle wraps a primary Oracle with a Redis read-through cache.
// Quotes are cached on success with a TTL; unavailable symbols are never
// cached, so a symbol the primary starts supporting is picked up immediately.
// A cache error falls back to the primary rather than failing the lookup.
type CachedOracle struct {
	primary Oracle
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedOracle creates a cached wrapper around a primary oracle.
func NewCachedOracle(primary Oracle, rdb *redis.Client, ttl time.Duration) *CachedOracle {
	return &CachedOracle{primary: primary, rdb: rdb, ttl: ttl}
}

func (o *CachedOracle) Price(ctx context.Context, symbol string) (decimal.Decimal, error) {
	// Try cache.
	if raw, err := o.rdb.Get(ctx, quoteKey(symbol)).Result(); err == nil {
		if p, perr := decimal.NewFromString(raw); perr == nil {
			return p, nil
		}
	}

	// Cache miss: ask the primary.
	p, err := o.primary.Price(ctx, symbol)
	if err != nil {
		return decimal.Decimal{}, err
	}

	o.rdb.Set(ctx, quoteKey(symbol), p.String(), o.ttl)
	return p, nil
}

func quoteKey(symbol string) string { return "quote:" + symbol }
