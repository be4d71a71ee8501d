package cache

import (
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_UpdateAndGet(t *testing.T) {
	c := New(zerolog.Nop())
	assert.True(t, c.LastUpdated().IsZero())
	assert.Nil(t, c.Get("ATOM", 0))

	c.Update("ATOM", "usd", math.LegacyMustNewDecFromStr("9.87"))
	got := c.Get("ATOM", time.Minute)
	require.NotNil(t, got)
	assert.Equal(t, "usd", got.Currency)
	assert.Equal(t, "9.870000000000000000", got.Price.String())
	assert.False(t, c.LastUpdated().IsZero())
	assert.Len(t, c.All(), 1)
}

func TestCache_Staleness(t *testing.T) {
	c := New(zerolog.Nop())
	now := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return now }

	c.Update("ATOM", "usd", math.LegacyOneDec())
	now = now.Add(2 * time.Minute)

	assert.Nil(t, c.Get("ATOM", time.Minute))
	assert.NotNil(t, c.Get("ATOM", 5*time.Minute))
	assert.NotNil(t, c.Get("ATOM", 0))
}

func TestCache_GetReturnsCopy(t *testing.T) {
	c := New(zerolog.Nop())
	c.Update("ATOM", "usd", math.LegacyOneDec())

	got := c.Get("ATOM", 0)
	got.Currency = "eur"
	assert.Equal(t, "usd", c.Get("ATOM", 0).Currency)
}
