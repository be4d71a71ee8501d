package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkversion "github.com/cosmos/cosmos-sdk/version"
	"github.com/spf13/cobra"

	"github.com/pushchain/push-stake-provider/stakeClient/config"
	"github.com/pushchain/push-stake-provider/stakeClient/constant"
)

func InitRootCmd(rootCmd *cobra.Command) {
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(startCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(keysCmd())
	rootCmd.AddCommand(queryCmd())
	rootCmd.AddCommand(txCmd())
}

func initCmd() *cobra.Command {
	var (
		grpcURLs       []string
		lcdURL         string
		chainID        string
		keyName        string
		keyringBackend string
		txFormat       string
		overwrite      bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration to the home directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.Load(homeFlag); err == nil && !overwrite {
				return fmt.Errorf("config already exists in %s (use --overwrite)", homeFlag)
			}

			cfg, err := config.LoadDefaultConfig()
			if err != nil {
				return err
			}
			cfg.NodeHome = homeFlag

			if len(grpcURLs) > 0 {
				cfg.GRPCURLs = grpcURLs
			}
			if cmd.Flags().Changed("lcd-url") {
				cfg.LCDURL = lcdURL
			}
			if chainID != "" {
				cfg.ChainID = chainID
			}
			if keyName != "" {
				cfg.KeyName = keyName
			}
			if keyringBackend != "" {
				cfg.KeyringBackend = config.KeyringBackend(keyringBackend)
			}
			if txFormat != "" {
				cfg.TxFormat = config.TxFormat(txFormat)
			}

			if err := config.Save(cfg, homeFlag); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s/%s/%s\n", homeFlag, constant.ConfigSubdir, constant.ConfigFileName)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&grpcURLs, "grpc-url", nil, "Cosmos gRPC endpoint (repeatable)")
	cmd.Flags().StringVar(&lcdURL, "lcd-url", "", "LCD endpoint used to resolve the chain id")
	cmd.Flags().StringVar(&chainID, "chain-id", "", "Static chain id")
	cmd.Flags().StringVar(&keyName, "key-name", "", "Signing key name")
	cmd.Flags().StringVar(&keyringBackend, "keyring-backend", "", "Keyring backend (test|file)")
	cmd.Flags().StringVar(&txFormat, "tx-format", "", "Transaction format policy (auto|legacy|current)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing config")

	return cmd
}

func startCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the query server and balance refresh loops",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(homeFlag)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			n, err := newNode(cfg)
			if err != nil {
				return err
			}
			defer n.Close()

			return n.Run(ctx)
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print stakerd version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Name:       %s\n", sdkversion.Name)
			fmt.Printf("App Name:   %s\n", sdkversion.AppName)
			fmt.Printf("Version:    %s\n", sdkversion.Version)
			fmt.Printf("Commit:     %s\n", sdkversion.Commit)
			fmt.Printf("Build Tags: %s\n", sdkversion.BuildTags)
		},
	}
}

// withNode loads the config, builds a node and runs fn with a signal-aware context.
func withNode(fn func(ctx context.Context, n *node) error) error {
	cfg, err := config.Load(homeFlag)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	n, err := newNode(cfg)
	if err != nil {
		return err
	}
	defer n.Close()

	return fn(ctx, n)
}

func requestTimeout(cfg config.Config) time.Duration {
	return time.Duration(cfg.RequestTimeoutSeconds) * time.Second
}
