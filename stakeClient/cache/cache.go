package cache

import (
	"sync"
	"time"

	"cosmossdk.io/math"
	"github.com/rs/zerolog"
)

// RateData holds a fiat price and when it was last updated.
type RateData struct {
	Symbol    string
	Currency  string
	Price     math.LegacyDec
	UpdatedAt time.Time
}

// Cache is a thread-safe store of exchange rates keyed by coin symbol.
type Cache struct {
	mu         sync.RWMutex
	rates      map[string]*RateData
	lastUpdate time.Time
	logger     zerolog.Logger
	now        func() time.Time
}

// New creates a new Cache instance.
func New(logger zerolog.Logger) *Cache {
	return &Cache{
		rates:  make(map[string]*RateData),
		logger: logger.With().Str("component", "rate_cache").Logger(),
		now:    time.Now,
	}
}

// LastUpdated returns the last time any rate was stored.
func (c *Cache) LastUpdated() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastUpdate
}

// Update stores the price of symbol.
func (c *Cache) Update(symbol, currency string, price math.LegacyDec) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.rates[symbol] = &RateData{
		Symbol:    symbol,
		Currency:  currency,
		Price:     price,
		UpdatedAt: now,
	}
	c.lastUpdate = now

	c.logger.Debug().
		Str("symbol", symbol).
		Str("price", price.String()).
		Time("updated_at", now).
		Msg("rate cached")
}

// Get returns a copy of the rate for symbol if it is younger than maxAge.
// maxAge <= 0 accepts any age. Returns nil when absent or stale.
func (c *Cache) Get(symbol string, maxAge time.Duration) *RateData {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, ok := c.rates[symbol]
	if !ok {
		return nil
	}
	if maxAge > 0 && c.now().Sub(data.UpdatedAt) > maxAge {
		return nil
	}
	out := *data
	return &out
}

// All returns a slice copy of every cached rate.
func (c *Cache) All() []*RateData {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*RateData, 0, len(c.rates))
	for _, v := range c.rates {
		cp := *v
		out = append(out, &cp)
	}
	return out
}
