package config

import (
	"fmt"

	"cosmossdk.io/math"
)

// KeyringBackend represents the type of keyring backend to use
type KeyringBackend string

const (
	// KeyringBackendTest is the test Cosmos keyring backend (unencrypted)
	KeyringBackendTest KeyringBackend = "test"

	// KeyringBackendFile is the file Cosmos keyring backend (encrypted)
	KeyringBackendFile KeyringBackend = "file"
)

// TxFormat selects the wire shape used when signing stake transactions.
type TxFormat string

const (
	// TxFormatAuto signs the legacy shape first and falls back to the current shape once.
	TxFormatAuto TxFormat = "auto"
	// TxFormatLegacy signs only the legacy single-payload amino-JSON shape.
	TxFormatLegacy TxFormat = "legacy"
	// TxFormatCurrent signs only the current multi-message direct shape.
	TxFormatCurrent TxFormat = "current"
)

// ValidatorSource selects the validator directory implementation.
type ValidatorSource string

const (
	ValidatorSourceBlockatlas ValidatorSource = "blockatlas"
	ValidatorSourceChain      ValidatorSource = "chain"
)

type Config struct {
	// Version is bumped whenever the file is rewritten by Save
	Version int `json:"version"`

	// Log Config
	LogLevel   int    `json:"log_level"`   // e.g., 0 = debug, 1 = info, etc.
	LogFormat  string `json:"log_format"`  // "json" or "console"
	LogSampler bool   `json:"log_sampler"` // if true, samples logs (e.g., 1 in 5)

	// Node Config
	NodeHome string `json:"node_home"` // Home directory (default: ~/.stakerd)

	Coin CoinSettings `json:"coin"`

	// Chain endpoints
	GRPCURLs []string `json:"grpc_urls"` // Cosmos gRPC endpoints (default: ["localhost:9090"])
	LCDURL   string   `json:"lcd_url"`   // REST endpoint used for chain id resolution
	ChainID  string   `json:"chain_id"`  // Static chain id; resolved from lcd_url when empty

	// Keyring configuration
	KeyringBackend  KeyringBackend `json:"keyring_backend"`  // Keyring backend type (file/test)
	KeyringPassword string         `json:"keyring_password"` // Password for file backend keyring encryption
	KeyName         string         `json:"key_name"`         // Name of the signing key in the keyring

	Fee          FeeSettings          `json:"fee"`
	TxFormat     TxFormat             `json:"tx_format"` // auto | legacy | current
	Confirmation ConfirmationSettings `json:"confirmation"`
	Rates        RateSettings         `json:"rates"`
	Validators   ValidatorSettings    `json:"validators"`

	// Query Server Config
	QueryServerPort int `json:"query_server_port"` // Port for HTTP query server (default: 8080)

	RefreshIntervalSeconds int `json:"refresh_interval_seconds"` // Balance/staked refresh period (default: 30)
	RequestTimeoutSeconds  int `json:"request_timeout_seconds"`  // Per-request timeout for upstream calls (default: 10)
}

// CoinSettings describes the single coin this provider serves.
type CoinSettings struct {
	CoinType     uint32 `json:"coin_type"`     // SLIP-44 coin type (118 for ATOM)
	Symbol       string `json:"symbol"`        // Ticker, e.g. ATOM
	Denom        string `json:"denom"`         // Base unit denom, e.g. uatom
	Decimals     uint32 `json:"decimals"`      // Base unit exponent, e.g. 6
	Bech32Prefix string `json:"bech32_prefix"` // Account prefix, e.g. cosmos
	KeyAlgo      string `json:"key_algo"`      // secp256k1 | eth_secp256k1
}

// FeeSettings configures the fee attached to stake transactions.
type FeeSettings struct {
	Denom      string `json:"denom"`       // Fee denom (default: coin denom)
	Amount     string `json:"amount"`      // Fee amount in base units
	StakeGas   uint64 `json:"stake_gas"`   // Gas limit for delegate transactions
	UnstakeGas uint64 `json:"unstake_gas"` // Gas limit for withdraw+undelegate transactions
}

// ConfirmationSettings bounds the confirmation poller. Zero means unbounded.
type ConfirmationSettings struct {
	PollIntervalMillis int `json:"poll_interval_millis"`
	TimeoutSeconds     int `json:"timeout_seconds"`
	MaxAttempts        int `json:"max_attempts"`
}

// RateSettings configures the exchange-rate provider.
type RateSettings struct {
	BaseURL           string            `json:"base_url"`            // CoinGecko-compatible API root
	Currency          string            `json:"currency"`            // Fiat currency, e.g. usd
	AssetIDs          map[string]string `json:"asset_ids"`           // Symbol -> price feed asset id
	RequestsPerSecond float64           `json:"requests_per_second"` // Client-side throttle
	CacheTTLSeconds   int               `json:"cache_ttl_seconds"`
}

// ValidatorSettings configures the validator directory.
type ValidatorSettings struct {
	Source            ValidatorSource `json:"source"`             // blockatlas | chain
	BlockatlasURL     string          `json:"blockatlas_url"`     // Blockatlas API root
	CoinName          string          `json:"coin_name"`          // Blockatlas coin handle, e.g. cosmos
	RequestsPerSecond float64         `json:"requests_per_second"` // Client-side throttle
}

// CoinConfig is the resolved, versioned snapshot passed into every transaction build.
type CoinConfig struct {
	Version    int
	CoinType   uint32
	Symbol     string
	Denom      string
	Decimals   uint32
	FeeDenom   string
	FeeAmount  math.Int
	StakeGas   uint64
	UnstakeGas uint64
	Format     TxFormat
}

// CoinConfig resolves the coin snapshot from the loaded config.
func (c *Config) CoinConfig() (CoinConfig, error) {
	feeAmount, ok := math.NewIntFromString(c.Fee.Amount)
	if !ok || feeAmount.IsNegative() {
		return CoinConfig{}, fmt.Errorf("invalid fee amount %q", c.Fee.Amount)
	}
	feeDenom := c.Fee.Denom
	if feeDenom == "" {
		feeDenom = c.Coin.Denom
	}
	return CoinConfig{
		Version:    c.Version,
		CoinType:   c.Coin.CoinType,
		Symbol:     c.Coin.Symbol,
		Denom:      c.Coin.Denom,
		Decimals:   c.Coin.Decimals,
		FeeDenom:   feeDenom,
		FeeAmount:  feeAmount,
		StakeGas:   c.Fee.StakeGas,
		UnstakeGas: c.Fee.UnstakeGas,
		Format:     c.TxFormat,
	}, nil
}
