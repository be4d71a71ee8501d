package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/spf13/viper"

	"github.com/pushchain/push-stake-provider/stakeClient/constant"
)

//go:embed default_config.json
var defaultConfigJSON []byte

func validateConfig(cfg *Config) error {
	// Validate log level
	if cfg.LogLevel < 0 || cfg.LogLevel > 5 {
		return fmt.Errorf("log level must be between 0 and 5")
	}

	// Validate log format
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		return fmt.Errorf("log format must be 'json' or 'console'")
	}

	if cfg.Version == 0 {
		cfg.Version = 1
	}

	var defaults Config
	if err := json.Unmarshal(defaultConfigJSON, &defaults); err != nil {
		return fmt.Errorf("failed to unmarshal default config: %w", err)
	}

	// Coin must be fully described or left empty for the embedded default
	if cfg.Coin == (CoinSettings{}) {
		cfg.Coin = defaults.Coin
	}
	if cfg.Coin.Denom == "" {
		return fmt.Errorf("coin denom is required")
	}
	if err := sdk.ValidateDenom(cfg.Coin.Denom); err != nil {
		return fmt.Errorf("invalid coin denom: %w", err)
	}
	if cfg.Coin.Symbol == "" {
		return fmt.Errorf("coin symbol is required")
	}
	if cfg.Coin.Bech32Prefix == "" {
		return fmt.Errorf("coin bech32_prefix is required")
	}
	if cfg.Coin.KeyAlgo == "" {
		cfg.Coin.KeyAlgo = "secp256k1"
	}
	if cfg.Coin.KeyAlgo != "secp256k1" && cfg.Coin.KeyAlgo != "eth_secp256k1" {
		return fmt.Errorf("key algo must be 'secp256k1' or 'eth_secp256k1'")
	}

	if len(cfg.GRPCURLs) == 0 {
		// Default to localhost:9090 if no URLs provided
		cfg.GRPCURLs = []string{"localhost:9090"}
	}
	if cfg.ChainID == "" && cfg.LCDURL == "" {
		return fmt.Errorf("either chain_id or lcd_url must be set")
	}

	if cfg.KeyringBackend == "" {
		cfg.KeyringBackend = KeyringBackendTest
	}
	if cfg.KeyringBackend != KeyringBackendTest && cfg.KeyringBackend != KeyringBackendFile {
		return fmt.Errorf("keyring backend must be 'test' or 'file'")
	}
	if cfg.KeyName == "" {
		cfg.KeyName = defaults.KeyName
	}

	// Fee defaults
	if cfg.Fee.Denom == "" {
		cfg.Fee.Denom = cfg.Coin.Denom
	}
	if err := sdk.ValidateDenom(cfg.Fee.Denom); err != nil {
		return fmt.Errorf("invalid fee denom: %w", err)
	}
	if cfg.Fee.Amount == "" {
		cfg.Fee.Amount = defaults.Fee.Amount
	}
	if amt, ok := math.NewIntFromString(cfg.Fee.Amount); !ok || amt.IsNegative() {
		return fmt.Errorf("fee amount must be a non-negative integer")
	}
	if cfg.Fee.StakeGas == 0 {
		cfg.Fee.StakeGas = defaults.Fee.StakeGas
	}
	if cfg.Fee.UnstakeGas == 0 {
		cfg.Fee.UnstakeGas = defaults.Fee.UnstakeGas
	}

	if cfg.TxFormat == "" {
		cfg.TxFormat = TxFormatAuto
	}
	switch cfg.TxFormat {
	case TxFormatAuto, TxFormatLegacy, TxFormatCurrent:
	default:
		return fmt.Errorf("tx format must be 'auto', 'legacy' or 'current'")
	}

	// Confirmation poller
	if cfg.Confirmation.PollIntervalMillis == 0 {
		cfg.Confirmation.PollIntervalMillis = 3000
	}
	if cfg.Confirmation.PollIntervalMillis < 0 || cfg.Confirmation.TimeoutSeconds < 0 || cfg.Confirmation.MaxAttempts < 0 {
		return fmt.Errorf("confirmation settings must not be negative")
	}

	// Rates
	if cfg.Rates.BaseURL == "" {
		cfg.Rates.BaseURL = defaults.Rates.BaseURL
	}
	if cfg.Rates.Currency == "" {
		cfg.Rates.Currency = defaults.Rates.Currency
	}
	if cfg.Rates.AssetIDs == nil {
		cfg.Rates.AssetIDs = defaults.Rates.AssetIDs
	}
	if cfg.Rates.RequestsPerSecond == 0 {
		cfg.Rates.RequestsPerSecond = defaults.Rates.RequestsPerSecond
	}
	if cfg.Rates.CacheTTLSeconds == 0 {
		cfg.Rates.CacheTTLSeconds = defaults.Rates.CacheTTLSeconds
	}

	// Validators
	if cfg.Validators.Source == "" {
		cfg.Validators.Source = ValidatorSourceChain
	}
	switch cfg.Validators.Source {
	case ValidatorSourceChain:
	case ValidatorSourceBlockatlas:
		if cfg.Validators.BlockatlasURL == "" {
			return fmt.Errorf("blockatlas_url is required for blockatlas validator source")
		}
		if cfg.Validators.CoinName == "" {
			cfg.Validators.CoinName = strings.ToLower(cfg.Coin.Symbol)
		}
	default:
		return fmt.Errorf("validator source must be 'blockatlas' or 'chain'")
	}
	if cfg.Validators.RequestsPerSecond == 0 {
		cfg.Validators.RequestsPerSecond = 1
	}

	// Set defaults for query server
	if cfg.QueryServerPort == 0 {
		cfg.QueryServerPort = 8080
	}
	if cfg.RefreshIntervalSeconds == 0 {
		cfg.RefreshIntervalSeconds = 30
	}
	if cfg.RequestTimeoutSeconds == 0 {
		cfg.RequestTimeoutSeconds = 10
	}

	return nil
}

// Validate applies defaults and checks the config.
func Validate(cfg *Config) error {
	return validateConfig(cfg)
}

// Save writes the given config to <NodeHome>/config/stakerd_config.json.
func Save(cfg *Config, basePath string) error {
	if err := validateConfig(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	configDir := filepath.Join(basePath, constant.ConfigSubdir)
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(configDir, constant.ConfigFileName)
	if _, err := os.Stat(configFile); err == nil {
		cfg.Version++
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Load reads the config from <BasePath>/config/stakerd_config.json,
// applies STAKERD_* environment overrides and validates the result.
func Load(basePath string) (Config, error) {
	configFile := filepath.Join(basePath, constant.ConfigSubdir, constant.ConfigFileName)
	data, err := os.ReadFile(filepath.Clean(configFile))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyEnvOverrides(&cfg)
	if cfg.NodeHome == "" {
		cfg.NodeHome = basePath
	}

	if err := validateConfig(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadDefaultConfig loads the default configuration from embedded JSON
func LoadDefaultConfig() (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(defaultConfigJSON, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal default config: %w", err)
	}
	return &cfg, nil
}

// ApplyEnvOverrides overlays STAKERD_* environment variables onto cfg.
// Only the settings that commonly differ per deployment are overridable.
func ApplyEnvOverrides(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix(constant.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	keys := []string{
		"log_level", "log_format", "grpc_urls", "lcd_url", "chain_id",
		"keyring_backend", "keyring_password", "key_name", "tx_format",
		"query_server_port", "validators.source", "validators.blockatlas_url",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	if v.IsSet("log_level") {
		cfg.LogLevel = v.GetInt("log_level")
	}
	if v.IsSet("log_format") {
		cfg.LogFormat = v.GetString("log_format")
	}
	if v.IsSet("grpc_urls") {
		cfg.GRPCURLs = splitList(v.GetString("grpc_urls"))
	}
	if v.IsSet("lcd_url") {
		cfg.LCDURL = v.GetString("lcd_url")
	}
	if v.IsSet("chain_id") {
		cfg.ChainID = v.GetString("chain_id")
	}
	if v.IsSet("keyring_backend") {
		cfg.KeyringBackend = KeyringBackend(v.GetString("keyring_backend"))
	}
	if v.IsSet("keyring_password") {
		cfg.KeyringPassword = v.GetString("keyring_password")
	}
	if v.IsSet("key_name") {
		cfg.KeyName = v.GetString("key_name")
	}
	if v.IsSet("tx_format") {
		cfg.TxFormat = TxFormat(v.GetString("tx_format"))
	}
	if v.IsSet("query_server_port") {
		cfg.QueryServerPort = v.GetInt("query_server_port")
	}
	if v.IsSet("validators.source") {
		cfg.Validators.Source = ValidatorSource(v.GetString("validators.source"))
	}
	if v.IsSet("validators.blockatlas_url") {
		cfg.Validators.BlockatlasURL = v.GetString("validators.blockatlas_url")
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
