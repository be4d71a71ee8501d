package main

import (
	"context"
	"time"

	"cosmossdk.io/math"
	"github.com/spf13/cobra"

	"github.com/pushchain/push-stake-provider/stakeClient/validators"
)

// AmountOutput is the printed form of a base-unit amount.
type AmountOutput struct {
	Address string `yaml:"address" json:"address"`
	Amount  string `yaml:"amount" json:"amount"`
	Denom   string `yaml:"denom" json:"denom"`
	Fiat    string `yaml:"fiat,omitempty" json:"fiat,omitempty"`
}

// UnbondOutput is one pending unbonding entry.
type UnbondOutput struct {
	Validator      string    `yaml:"validator" json:"validator"`
	Amount         string    `yaml:"amount" json:"amount"`
	CompletionTime time.Time `yaml:"completion_time" json:"completion_time"`
}

// UnbondsOutput lists pending unbonds and their total.
type UnbondsOutput struct {
	Entries []UnbondOutput `yaml:"entries" json:"entries"`
	Total   string         `yaml:"total" json:"total"`
}

// RateOutput is the fiat price of one whole coin.
type RateOutput struct {
	Symbol string `yaml:"symbol" json:"symbol"`
	Rate   string `yaml:"rate" json:"rate"`
}

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "query",
		Aliases: []string{"q"},
		Short:   "Querying commands",
	}

	cmd.AddCommand(
		balanceCmd(),
		stakedCmd(),
		rewardsCmd(),
		unbondsCmd(),
		validatorsCmd(),
		bestValidatorCmd(),
		rateCmd(),
	)

	return cmd
}

// amountQueryCmd builds a command printing one amount of the delegator.
func amountQueryCmd(use, short string, fetch func(ctx context.Context, n *node, validator string) (math.Int, error), withValidator bool) *cobra.Command {
	var (
		outputFormat string
		fiat         bool
		validator    string
	)

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withNode(func(ctx context.Context, n *node) error {
				addr, err := n.provider.Address(ctx)
				if err != nil {
					return err
				}
				amount, err := fetch(ctx, n, validator)
				if err != nil {
					return err
				}

				out := AmountOutput{Address: addr, Amount: amount.String(), Denom: n.cfg.Coin.Denom}
				if fiat {
					value, err := n.provider.FiatValue(ctx, amount)
					if err != nil {
						return err
					}
					out.Fiat = value.String()
				}
				return printOutput(cmd.OutOrStdout(), out, outputFormat)
			})
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", OutputFormatYAML, "Output format (yaml|json)")
	cmd.Flags().BoolVar(&fiat, "fiat", false, "Include the fiat value at the current rate")
	if withValidator {
		cmd.Flags().StringVar(&validator, "validator", "", "Only the amount staked to this validator")
	}
	return cmd
}

func balanceCmd() *cobra.Command {
	return amountQueryCmd("balance", "Query the spendable balance",
		func(ctx context.Context, n *node, _ string) (math.Int, error) {
			return n.provider.Balance(ctx)
		}, false)
}

func stakedCmd() *cobra.Command {
	return amountQueryCmd("staked", "Query the staked amount",
		func(ctx context.Context, n *node, validator string) (math.Int, error) {
			if validator != "" {
				return n.provider.GetStakedToValidator(ctx, validator)
			}
			return n.provider.StakedAmount(ctx)
		}, true)
}

func rewardsCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "rewards",
		Short: "Query pending staking rewards",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withNode(func(ctx context.Context, n *node) error {
				addr, err := n.provider.Address(ctx)
				if err != nil {
					return err
				}
				rewards, err := n.provider.StakingRewards(ctx)
				if err != nil {
					return err
				}
				return printOutput(cmd.OutOrStdout(), AmountOutput{
					Address: addr,
					Amount:  rewards.String(),
					Denom:   n.cfg.Coin.Denom,
				}, outputFormat)
			})
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", OutputFormatYAML, "Output format (yaml|json)")
	return cmd
}

func unbondsCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "unbonds",
		Short: "Query pending unbonding entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withNode(func(ctx context.Context, n *node) error {
				unbonds, err := n.provider.PendingUnbonds(ctx)
				if err != nil {
					return err
				}

				out := UnbondsOutput{Total: unbonds.Total.String(), Entries: []UnbondOutput{}}
				for _, e := range unbonds.Entries {
					out.Entries = append(out.Entries, UnbondOutput{
						Validator:      e.ValidatorAddress,
						Amount:         e.Balance.String(),
						CompletionTime: e.CompletionTime,
					})
				}
				return printOutput(cmd.OutOrStdout(), out, outputFormat)
			})
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", OutputFormatYAML, "Output format (yaml|json)")
	return cmd
}

func validatorsCmd() *cobra.Command {
	var (
		outputFormat string
		activeOnly   bool
	)

	cmd := &cobra.Command{
		Use:   "validators",
		Short: "List validators and their APR",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withNode(func(ctx context.Context, n *node) error {
				vals, err := n.provider.Validators(ctx)
				if err != nil {
					return err
				}
				if activeOnly {
					active := make([]validators.Validator, 0, len(vals))
					for _, v := range vals {
						if v.Active {
							active = append(active, v)
						}
					}
					vals = active
				}
				return printOutput(cmd.OutOrStdout(), vals, outputFormat)
			})
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", OutputFormatYAML, "Output format (yaml|json)")
	cmd.Flags().BoolVar(&activeOnly, "active", false, "Only list active validators")
	return cmd
}

func bestValidatorCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "best-validator",
		Short: "Show the active validator with the highest APR",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withNode(func(ctx context.Context, n *node) error {
				best, err := n.provider.BestValidator(ctx)
				if err != nil {
					return err
				}
				return printOutput(cmd.OutOrStdout(), best, outputFormat)
			})
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", OutputFormatYAML, "Output format (yaml|json)")
	return cmd
}

func rateCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "rate",
		Short: "Query the fiat exchange rate of the coin",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withNode(func(ctx context.Context, n *node) error {
				rate, err := n.provider.Rate(ctx)
				if err != nil {
					return err
				}
				return printOutput(cmd.OutOrStdout(), RateOutput{Symbol: n.cfg.Coin.Symbol, Rate: rate.String()}, outputFormat)
			})
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", OutputFormatYAML, "Output format (yaml|json)")
	return cmd
}
