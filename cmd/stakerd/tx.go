package main

import (
	"context"
	"fmt"
	"time"

	"cosmossdk.io/math"
	"github.com/spf13/cobra"

	"github.com/pushchain/push-stake-provider/stakeClient/cosmoscore"
	"github.com/pushchain/push-stake-provider/stakeClient/provider"
	"github.com/pushchain/push-stake-provider/stakeClient/store"
)

// TxOutput is the printed result of a stake or unstake.
type TxOutput struct {
	TxHash   string `yaml:"tx_hash" json:"tx_hash"`
	Kind     string `yaml:"kind" json:"kind"`
	Format   string `yaml:"format" json:"format"`
	Sequence uint64 `yaml:"sequence" json:"sequence"`
	Height   int64  `yaml:"height,omitempty" json:"height,omitempty"`
	Code     uint32 `yaml:"code" json:"code"`
	RawLog   string `yaml:"raw_log,omitempty" json:"raw_log,omitempty"`
}

// JournalOutput is one journaled transaction.
type JournalOutput struct {
	TxHash    string    `yaml:"tx_hash" json:"tx_hash"`
	Kind      string    `yaml:"kind" json:"kind"`
	Validator string    `yaml:"validator" json:"validator"`
	Amount    string    `yaml:"amount" json:"amount"`
	Format    string    `yaml:"format" json:"format"`
	Status    string    `yaml:"status" json:"status"`
	Height    int64     `yaml:"height,omitempty" json:"height,omitempty"`
	CreatedAt time.Time `yaml:"created_at" json:"created_at"`
}

func txCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Stake transactions",
	}

	cmd.AddCommand(
		submitCmd("stake", "Delegate <amount> base units to <validator>", (*provider.Provider).Stake),
		submitCmd("unstake", "Withdraw rewards from and undelegate <amount> base units from <validator>", (*provider.Provider).Unstake),
		waitCmd(),
		listTxCmd(),
		pruneTxCmd(),
	)

	return cmd
}

type submitFunc func(p *provider.Provider, ctx context.Context, validator string, amount math.Int) (*provider.Submission, error)

func submitCmd(use, short string, submit submitFunc) *cobra.Command {
	var (
		outputFormat string
		wait         bool
	)

	cmd := &cobra.Command{
		Use:   use + " <validator> <amount>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			return withNode(func(ctx context.Context, n *node) error {
				sub, err := submit(n.provider, ctx, args[0], amount)
				if err != nil {
					return err
				}

				out := TxOutput{
					TxHash:   sub.TxHash,
					Kind:     string(sub.Kind),
					Format:   string(sub.Format),
					Sequence: sub.Sequence,
				}
				if wait {
					tx, err := n.provider.WaitForConfirmation(ctx, sub.TxHash)
					if err != nil {
						return err
					}
					withResult(&out, tx)
				}
				return printOutput(cmd.OutOrStdout(), out, outputFormat)
			})
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", OutputFormatYAML, "Output format (yaml|json)")
	cmd.Flags().BoolVar(&wait, "wait", false, "Wait until the transaction is included")
	return cmd
}

func waitCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "wait <tx-hash>",
		Short: "Wait until a broadcast transaction is included",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withNode(func(ctx context.Context, n *node) error {
				tx, err := n.provider.WaitForConfirmation(ctx, args[0])
				if err != nil {
					return err
				}
				out := TxOutput{TxHash: tx.Hash}
				withResult(&out, tx)
				return printOutput(cmd.OutOrStdout(), out, outputFormat)
			})
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", OutputFormatYAML, "Output format (yaml|json)")
	return cmd
}

func listTxCmd() *cobra.Command {
	var (
		outputFormat string
		status       string
		limit        int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journaled transactions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withNode(func(ctx context.Context, n *node) error {
				journal := n.database.Journal()

				var (
					txs []store.StakeTransaction
					err error
				)
				if status != "" {
					txs, err = journal.ListByStatus(status, limit)
				} else {
					txs, err = journal.List(limit)
				}
				if err != nil {
					return err
				}

				out := make([]JournalOutput, 0, len(txs))
				for _, tx := range txs {
					out = append(out, JournalOutput{
						TxHash:    tx.TxHash,
						Kind:      tx.Kind,
						Validator: tx.Validator,
						Amount:    tx.Amount + tx.Denom,
						Format:    tx.Format,
						Status:    tx.Status,
						Height:    tx.Height,
						CreatedAt: tx.CreatedAt,
					})
				}
				return printOutput(cmd.OutOrStdout(), out, outputFormat)
			})
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", OutputFormatYAML, "Output format (yaml|json)")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (pending|confirmed|failed)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of rows")
	return cmd
}

func pruneTxCmd() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete settled journal rows older than --older-than",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withNode(func(ctx context.Context, n *node) error {
				removed, err := n.database.Journal().PruneSettled(olderThan)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d transactions\n", removed)
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Minimum age of pruned rows")
	return cmd
}

func withResult(out *TxOutput, tx *cosmoscore.Transaction) {
	out.Height = tx.Height
	out.Code = tx.Code
	out.RawLog = tx.RawLog
}

// parseAmount parses a positive integer amount in base units.
func parseAmount(s string) (math.Int, error) {
	amount, ok := math.NewIntFromString(s)
	if !ok || !amount.IsPositive() {
		return math.Int{}, fmt.Errorf("amount must be a positive integer in base units, got %q", s)
	}
	return amount, nil
}
