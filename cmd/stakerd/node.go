package main

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"cosmossdk.io/math"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/pushchain/push-stake-provider/stakeClient/api"
	"github.com/pushchain/push-stake-provider/stakeClient/authsigner"
	"github.com/pushchain/push-stake-provider/stakeClient/chainid"
	"github.com/pushchain/push-stake-provider/stakeClient/config"
	"github.com/pushchain/push-stake-provider/stakeClient/confirm"
	"github.com/pushchain/push-stake-provider/stakeClient/constant"
	"github.com/pushchain/push-stake-provider/stakeClient/cosmoscore"
	"github.com/pushchain/push-stake-provider/stakeClient/db"
	"github.com/pushchain/push-stake-provider/stakeClient/httpclient"
	"github.com/pushchain/push-stake-provider/stakeClient/keys"
	"github.com/pushchain/push-stake-provider/stakeClient/logger"
	"github.com/pushchain/push-stake-provider/stakeClient/metrics"
	"github.com/pushchain/push-stake-provider/stakeClient/provider"
	"github.com/pushchain/push-stake-provider/stakeClient/rates"
	"github.com/pushchain/push-stake-provider/stakeClient/updatable"
	"github.com/pushchain/push-stake-provider/stakeClient/validators"
)

// node wires every collaborator of the coin provider from the config.
type node struct {
	cfg      config.Config
	log      zerolog.Logger
	chain    *cosmoscore.Client
	database *db.DB
	registry *prometheus.Registry
	provider *provider.Provider
}

func newNode(cfg config.Config) (*node, error) {
	log := logger.Init(cfg)

	coinCfg, err := cfg.CoinConfig()
	if err != nil {
		return nil, err
	}

	chain, err := cosmoscore.New(cfg.GRPCURLs, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to chain: %w", err)
	}

	n := &node{cfg: cfg, log: log, chain: chain}
	ok := false
	defer func() {
		if !ok {
			n.Close()
		}
	}()

	k, err := keys.LoadKeys(keys.KeyringConfig{
		HomeDir:  cfg.NodeHome,
		Backend:  cfg.KeyringBackend,
		KeyName:  cfg.KeyName,
		Password: cfg.KeyringPassword,
	}, cfg.Coin.Bech32Prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to load signing key: %w", err)
	}

	auth := authsigner.New(log)
	if err := auth.Register(coinCfg.CoinType, k, cfg.Coin.Bech32Prefix); err != nil {
		return nil, err
	}

	n.database, err = db.OpenFileDB(filepath.Join(cfg.NodeHome, constant.DatabasesSubdir), constant.JournalDBName, true)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	n.registry = prometheus.NewRegistry()
	n.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	timeout := requestTimeout(cfg)
	rateProvider := rates.NewCoinGecko(httpclient.New(httpclient.Opts{
		BaseURL: cfg.Rates.BaseURL,
		Timeout: timeout,
		RPS:     cfg.Rates.RequestsPerSecond,
	}), cfg.Rates.Currency, cfg.Rates.AssetIDs, time.Duration(cfg.Rates.CacheTTLSeconds)*time.Second, log)

	directory, err := newDirectory(cfg, chain, timeout, log)
	if err != nil {
		return nil, err
	}

	n.provider, err = provider.New(provider.Deps{
		Chain:      chain,
		Auth:       auth,
		Rates:      rateProvider,
		Validators: directory,
		ChainID:    newChainIDResolver(cfg, chain, timeout),
		Config: provider.ConfigFunc(func(context.Context) (config.CoinConfig, error) {
			return cfg.CoinConfig()
		}),
		Journal: n.database.Journal(),
		Metrics: metrics.New(n.registry),
		Confirmation: confirm.Config{
			Interval:    time.Duration(cfg.Confirmation.PollIntervalMillis) * time.Millisecond,
			Timeout:     time.Duration(cfg.Confirmation.TimeoutSeconds) * time.Second,
			MaxAttempts: cfg.Confirmation.MaxAttempts,
		},
		Logger: log,
	})
	if err != nil {
		return nil, err
	}

	ok = true
	return n, nil
}

func newDirectory(cfg config.Config, chain *cosmoscore.Client, timeout time.Duration, log zerolog.Logger) (validators.Directory, error) {
	switch cfg.Validators.Source {
	case config.ValidatorSourceChain:
		return validators.NewChainDirectory(chain, cfg.Coin.CoinType, cfg.Coin.Denom, log), nil
	case config.ValidatorSourceBlockatlas:
		client := httpclient.New(httpclient.Opts{
			BaseURL: cfg.Validators.BlockatlasURL,
			Timeout: timeout,
			RPS:     cfg.Validators.RequestsPerSecond,
		})
		return validators.NewBlockatlasDirectory(client, map[uint32]string{cfg.Coin.CoinType: cfg.Validators.CoinName}, log), nil
	default:
		return nil, fmt.Errorf("unknown validator source %q", cfg.Validators.Source)
	}
}

// newChainIDResolver prefers a configured chain id, then the LCD node info,
// then the gRPC node info.
func newChainIDResolver(cfg config.Config, chain *cosmoscore.Client, timeout time.Duration) chainid.Resolver {
	switch {
	case cfg.ChainID != "":
		return chainid.StaticResolver(cfg.ChainID)
	case cfg.LCDURL != "":
		return chainid.HTTPResolver{Client: &http.Client{Timeout: timeout}, Endpoint: cfg.LCDURL}
	default:
		return chainid.ResolverFunc(chain.GetChainID)
	}
}

// Run refreshes balance and staked amount in the background and serves the
// query API until ctx is cancelled.
func (n *node) Run(ctx context.Context) error {
	interval := time.Duration(n.cfg.RefreshIntervalSeconds) * time.Second
	balance := updatable.New[math.Int]("balance", n.provider.Balance, interval, n.log)
	staked := updatable.New[math.Int]("staked", n.provider.StakedAmount, interval, n.log)
	balance.Start(ctx)
	staked.Start(ctx)

	updates, unsubscribe := staked.Subscribe()
	defer unsubscribe()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-updates:
				if !ok {
					return
				}
				n.log.Info().Str("staked", v.String()).Msg("staked amount updated")
			}
		}
	}()

	server := api.NewServer(n.log, n.cfg.QueryServerPort, api.Options{
		Provider: n.provider,
		Journal:  n.database.Journal(),
		Balance:  balance,
		Staked:   staked,
		Gatherer: n.registry,
	})
	if err := server.Start(); err != nil {
		return err
	}

	n.log.Info().Int("port", n.cfg.QueryServerPort).Msg("stakerd started")
	<-ctx.Done()

	n.log.Info().Msg("shutting down")
	return server.Stop()
}

// Close releases the chain connections and the journal.
func (n *node) Close() {
	if n.chain != nil {
		if err := n.chain.Close(); err != nil {
			n.log.Debug().Err(err).Msg("failed to close chain client")
		}
	}
	if n.database != nil {
		if err := n.database.Close(); err != nil {
			n.log.Debug().Err(err).Msg("failed to close journal")
		}
	}
}
