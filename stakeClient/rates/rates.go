// Package rates looks up fiat exchange rates for the served coin.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/pushchain/push-stake-provider/stakeClient/cache"
	"github.com/pushchain/push-stake-provider/stakeClient/errors"
	"github.com/pushchain/push-stake-provider/stakeClient/httpclient"
)

// Provider returns the fiat price of one whole coin.
type Provider interface {
	GetRate(ctx context.Context, symbol string) (math.LegacyDec, error)
}

// CoinGecko reads prices from a CoinGecko-compatible simple/price endpoint.
type CoinGecko struct {
	client   *httpclient.Client
	currency string
	assetIDs map[string]string
	ttl      time.Duration
	cache    *cache.Cache
	log      zerolog.Logger
}

// NewCoinGecko creates a provider. assetIDs maps coin symbols (e.g. ATOM) to feed ids (e.g. cosmos).
func NewCoinGecko(client *httpclient.Client, currency string, assetIDs map[string]string, ttl time.Duration, log zerolog.Logger) *CoinGecko {
	ids := make(map[string]string, len(assetIDs))
	for sym, id := range assetIDs {
		ids[strings.ToUpper(sym)] = id
	}
	return &CoinGecko{
		client:   client,
		currency: strings.ToLower(currency),
		assetIDs: ids,
		ttl:      ttl,
		cache:    cache.New(log),
		log:      log.With().Str("component", "rates").Logger(),
	}
}

var _ Provider = (*CoinGecko)(nil)

// Currency returns the fiat currency prices are quoted in.
func (p *CoinGecko) Currency() string {
	return p.currency
}

// GetRate implements Provider. Unknown symbols and assets missing from the
// response are NOT_FOUND.
func (p *CoinGecko) GetRate(ctx context.Context, symbol string) (math.LegacyDec, error) {
	symbol = strings.ToUpper(symbol)
	id, ok := p.assetIDs[symbol]
	if !ok {
		return math.LegacyDec{}, errors.NewNotFoundError("GetRate", fmt.Sprintf("no price feed for %s", symbol))
	}

	if cached := p.cache.Get(symbol, p.ttl); cached != nil {
		return cached.Price, nil
	}

	params := url.Values{}
	params.Set("ids", id)
	params.Set("vs_currencies", p.currency)

	var resp map[string]map[string]json.Number
	if err := p.client.GetJSON(ctx, "GetRate", "/simple/price", params, &resp); err != nil {
		return math.LegacyDec{}, err
	}

	raw, ok := resp[id][p.currency]
	if !ok {
		return math.LegacyDec{}, errors.NewNotFoundError("GetRate", fmt.Sprintf("%s price missing for %s", p.currency, id))
	}
	price, err := ParseDecimal(raw.String())
	if err != nil {
		return math.LegacyDec{}, errors.NewRPCError("GetRate", "invalid price", err)
	}

	p.cache.Update(symbol, p.currency, price)
	p.log.Debug().Str("symbol", symbol).Str("price", price.String()).Msg("rate refreshed")
	return price, nil
}

// ParseDecimal parses JSON numbers, including exponent notation, into a
// LegacyDec truncated to 18 decimal places.
func ParseDecimal(s string) (math.LegacyDec, error) {
	if strings.ContainsAny(s, "eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.LegacyDec{}, err
		}
		s = strconv.FormatFloat(f, 'f', -1, 64)
	}
	if i := strings.IndexByte(s, '.'); i >= 0 && len(s)-i-1 > math.LegacyPrecision {
		s = s[:i+1+math.LegacyPrecision]
	}
	return math.LegacyNewDecFromStr(s)
}

// FiatValue converts a base-unit amount into fiat using price per whole coin.
func FiatValue(amount math.Int, decimals uint32, price math.LegacyDec) math.LegacyDec {
	if amount.IsNil() || price.IsNil() {
		return math.LegacyZeroDec()
	}
	whole := math.LegacyNewDecFromInt(amount).Quo(math.LegacyNewDec(10).Power(uint64(decimals)))
	return whole.Mul(price)
}
