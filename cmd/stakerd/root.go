package main

import (
	"sync"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/spf13/cobra"

	"github.com/pushchain/push-stake-provider/stakeClient/config"
	"github.com/pushchain/push-stake-provider/stakeClient/constant"
)

var (
	homeFlag      string
	sdkConfigOnce sync.Once
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "stakerd",
		Short:         "Cosmos staking coin provider daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupSDKConfig(bech32PrefixFor(homeFlag))
		},
	}

	rootCmd.PersistentFlags().StringVar(&homeFlag, "home", constant.DefaultNodeHome, "Node home directory")

	InitRootCmd(rootCmd)

	return rootCmd
}

// bech32PrefixFor returns the account prefix of the config under home, or the
// default config's prefix when none has been written yet.
func bech32PrefixFor(home string) string {
	if cfg, err := config.Load(home); err == nil && cfg.Coin.Bech32Prefix != "" {
		return cfg.Coin.Bech32Prefix
	}
	if cfg, err := config.LoadDefaultConfig(); err == nil {
		return cfg.Coin.Bech32Prefix
	}
	return sdk.Bech32MainPrefix
}

func setupSDKConfig(prefix string) {
	sdkConfigOnce.Do(func() {
		sdkConfig := sdk.GetConfig()

		sdkConfig.SetBech32PrefixForAccount(prefix, prefix+sdk.PrefixPublic)
		sdkConfig.SetBech32PrefixForValidator(prefix+sdk.PrefixValidator+sdk.PrefixOperator,
			prefix+sdk.PrefixValidator+sdk.PrefixOperator+sdk.PrefixPublic)
		sdkConfig.SetBech32PrefixForConsensusNode(prefix+sdk.PrefixValidator+sdk.PrefixConsensus,
			prefix+sdk.PrefixValidator+sdk.PrefixConsensus+sdk.PrefixPublic)

		sdkConfig.Seal()
	})
}
