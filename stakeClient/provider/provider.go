// Package provider is the coin provider for a single Cosmos staking coin: it
// composes the chain client, signer, exchange rates and validator directory
// into balance, staking and transaction operations.
package provider

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/rs/zerolog"

	"github.com/pushchain/push-stake-provider/stakeClient/authsigner"
	"github.com/pushchain/push-stake-provider/stakeClient/chainid"
	"github.com/pushchain/push-stake-provider/stakeClient/config"
	"github.com/pushchain/push-stake-provider/stakeClient/confirm"
	"github.com/pushchain/push-stake-provider/stakeClient/cosmoscore"
	"github.com/pushchain/push-stake-provider/stakeClient/errors"
	"github.com/pushchain/push-stake-provider/stakeClient/metrics"
	"github.com/pushchain/push-stake-provider/stakeClient/rates"
	"github.com/pushchain/push-stake-provider/stakeClient/store"
	"github.com/pushchain/push-stake-provider/stakeClient/validators"
)

// ChainClient is the RPC surface the provider reads and writes through.
type ChainClient interface {
	GetAccount(ctx context.Context, address string) (*cosmoscore.Account, error)
	GetBalances(ctx context.Context, address string) (sdk.Coins, error)
	ListDelegations(ctx context.Context, address string) ([]cosmoscore.Delegation, error)
	ListUnbondings(ctx context.Context, address string) ([]cosmoscore.Unbonding, error)
	GetRewards(ctx context.Context, address string) (sdk.DecCoins, error)
	GetTx(ctx context.Context, hash string) (*cosmoscore.Transaction, error)
	BroadcastTx(ctx context.Context, txBytes []byte) (*cosmoscore.BroadcastResult, error)
}

// ConfigSource hands out the coin configuration snapshot for one call.
type ConfigSource interface {
	CoinConfig(ctx context.Context) (config.CoinConfig, error)
}

// ConfigFunc adapts a function to ConfigSource.
type ConfigFunc func(ctx context.Context) (config.CoinConfig, error)

// CoinConfig implements ConfigSource.
func (f ConfigFunc) CoinConfig(ctx context.Context) (config.CoinConfig, error) {
	return f(ctx)
}

// StaticConfig always returns cfg.
func StaticConfig(cfg config.CoinConfig) ConfigSource {
	return ConfigFunc(func(context.Context) (config.CoinConfig, error) { return cfg, nil })
}

// Journal records submitted transactions. Optional.
type Journal interface {
	RecordBroadcast(tx *store.StakeTransaction) error
	MarkConfirmed(hash string, height int64, code uint32, rawLog string) error
	MarkFailed(hash, reason string) error
}

// Deps are the collaborators of a Provider. Journal and Metrics may be nil.
type Deps struct {
	Chain        ChainClient
	Auth         authsigner.Authorizer
	Rates        rates.Provider
	Validators   validators.Directory
	ChainID      chainid.Resolver
	Config       ConfigSource
	Journal      Journal
	Metrics      *metrics.Metrics
	Confirmation confirm.Config
	Logger       zerolog.Logger
}

// Provider implements the coin operations.
type Provider struct {
	chain        ChainClient
	auth         authsigner.Authorizer
	rates        rates.Provider
	validators   validators.Directory
	chainID      chainid.Resolver
	config       ConfigSource
	journal      Journal
	metrics      *metrics.Metrics
	confirmation confirm.Config
	log          zerolog.Logger
}

// New validates deps and creates a Provider.
func New(deps Deps) (*Provider, error) {
	switch {
	case deps.Chain == nil:
		return nil, errors.NewConfigError("provider.New", "chain client is required")
	case deps.Auth == nil:
		return nil, errors.NewConfigError("provider.New", "auth provider is required")
	case deps.Rates == nil:
		return nil, errors.NewConfigError("provider.New", "rate provider is required")
	case deps.Validators == nil:
		return nil, errors.NewConfigError("provider.New", "validator directory is required")
	case deps.ChainID == nil:
		return nil, errors.NewConfigError("provider.New", "chain id resolver is required")
	case deps.Config == nil:
		return nil, errors.NewConfigError("provider.New", "config source is required")
	}

	log := deps.Logger.With().Str("component", "coin_provider").Logger()
	conf := deps.Confirmation
	conf.Logger = log

	return &Provider{
		chain:        deps.Chain,
		auth:         deps.Auth,
		rates:        deps.Rates,
		validators:   deps.Validators,
		chainID:      deps.ChainID,
		config:       deps.Config,
		journal:      deps.Journal,
		metrics:      deps.Metrics,
		confirmation: conf,
		log:          log,
	}, nil
}

// coinConfig loads the per-call configuration snapshot.
func (p *Provider) coinConfig(ctx context.Context) (config.CoinConfig, error) {
	cfg, err := p.config.CoinConfig(ctx)
	if err != nil {
		return config.CoinConfig{}, errors.WrapCode(err, errors.ErrCodeConfig, "CoinConfig", "failed to load coin config")
	}
	return cfg, nil
}

// Address returns the delegator address authorised for the coin.
func (p *Provider) Address(ctx context.Context) (string, error) {
	cfg, err := p.coinConfig(ctx)
	if err != nil {
		return "", err
	}
	return p.address(ctx, cfg)
}

func (p *Provider) address(ctx context.Context, cfg config.CoinConfig) (string, error) {
	if !p.auth.HasProvider(cfg.CoinType) {
		return "", errors.NewNotFoundError("Address", "no auth provider for coin").WithCoin(cfg.Symbol)
	}
	return p.auth.GetAddressFromAuthorized(ctx, cfg.CoinType)
}
