package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/cosmos/cosmos-sdk/crypto/keyring"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pushchain/push-stake-provider/stakeClient/config"
	"github.com/pushchain/push-stake-provider/stakeClient/keys"
)

var keyringBackendFlag string

// keysCmd returns the keys command with all subcommands
func keysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage the delegator signing key",
		Long: `
The keys commands manage the key that signs stake and unstake transactions.

Available Commands:
  add     Create or recover a key
  list    List all keys
  show    Show key details
`,
	}

	cmd.PersistentFlags().StringVar(&keyringBackendFlag, "keyring-backend", "", "Select keyring backend (test|file); defaults to the config value")

	cmd.AddCommand(keysAddCmd())
	cmd.AddCommand(keysListCmd())
	cmd.AddCommand(keysShowCmd())

	return cmd
}

func keysAddCmd() *cobra.Command {
	var (
		recoverFlag  bool
		noBackupFlag bool
		algoFlag     string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a new key",
		Long: `
Create a new signing key. The key is derived on the coin's HD path.

Examples:
  stakerd keys add delegator
  stakerd keys add delegator --keyring-backend test
  stakerd keys add delegator --recover
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keyName := args[0]

			cfg, err := loadConfigOrDefault()
			if err != nil {
				return err
			}

			kr, err := openKeyring(cfg)
			if err != nil {
				return err
			}

			if err := keys.ValidateKeyExists(kr, keyName); err == nil {
				return fmt.Errorf("key with name '%s' already exists", keyName)
			}

			var mnemonic string
			if recoverFlag {
				fmt.Print("Enter your mnemonic phrase: ")
				mnemonic, err = bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil {
					return fmt.Errorf("failed to read mnemonic: %w", err)
				}
				mnemonic = strings.TrimSpace(mnemonic)
			}

			algo := algoFlag
			if algo == "" {
				algo = cfg.Coin.KeyAlgo
			}

			record, generated, err := keys.CreateNewKey(kr, keyName, mnemonic, algo, cfg.Coin.CoinType)
			if err != nil {
				return err
			}

			info, err := keys.RecordInfo(record, cfg.Coin.Bech32Prefix)
			if err != nil {
				return err
			}

			fmt.Printf("Key created successfully!\n")
			fmt.Printf("Name: %s\n", info.Name)
			fmt.Printf("Address: %s\n", info.Address)
			fmt.Printf("Public Key: %s\n", info.PubKey)

			if !recoverFlag && !noBackupFlag {
				fmt.Printf("\nIMPORTANT: Save this mnemonic phrase securely!\n")
				fmt.Printf("Mnemonic: %s\n", generated)
				fmt.Printf("\nThis is the only time you will see the mnemonic. Keep it safe!\n")
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&recoverFlag, "recover", false, "Import key from mnemonic phrase")
	cmd.Flags().BoolVar(&noBackupFlag, "no-backup", false, "Don't display mnemonic for backup")
	cmd.Flags().StringVar(&algoFlag, "algo", "", "Key algorithm (secp256k1|eth_secp256k1); defaults to the config value")

	return cmd
}

func keysListCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all keys in keyring",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigOrDefault()
			if err != nil {
				return err
			}

			kr, err := openKeyring(cfg)
			if err != nil {
				return err
			}

			infos, err := keys.ListKeys(kr, cfg.Coin.Bech32Prefix)
			if err != nil {
				return err
			}
			return printOutput(cmd.OutOrStdout(), infos, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", OutputFormatYAML, "Output format (yaml|json)")
	return cmd
}

func keysShowCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Show key details; defaults to the configured key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigOrDefault()
			if err != nil {
				return err
			}

			name := cfg.KeyName
			if len(args) == 1 {
				name = args[0]
			}

			kr, err := openKeyring(cfg)
			if err != nil {
				return err
			}

			record, err := kr.Key(name)
			if err != nil {
				return fmt.Errorf("key %s not found: %w", name, err)
			}

			info, err := keys.RecordInfo(record, cfg.Coin.Bech32Prefix)
			if err != nil {
				return err
			}
			return printOutput(cmd.OutOrStdout(), info, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", OutputFormatYAML, "Output format (yaml|json)")
	return cmd
}

// loadConfigOrDefault loads the config under --home, falling back to defaults
// so keys can be created before init.
func loadConfigOrDefault() (config.Config, error) {
	cfg, err := config.Load(homeFlag)
	if err == nil {
		return cfg, nil
	}

	def, derr := config.LoadDefaultConfig()
	if derr != nil {
		return config.Config{}, derr
	}
	def.NodeHome = homeFlag
	config.ApplyEnvOverrides(def)
	if err := config.Validate(def); err != nil {
		return config.Config{}, err
	}
	return *def, nil
}

// openKeyring opens the keyring under the node home, prompting for the file
// backend passphrase when it is not configured.
func openKeyring(cfg config.Config) (keyring.Keyring, error) {
	backend := cfg.KeyringBackend
	if keyringBackendFlag != "" {
		backend = config.KeyringBackend(keyringBackendFlag)
	}

	password := cfg.KeyringPassword
	if backend == config.KeyringBackendFile && password == "" {
		var err error
		password, err = getPassphrase("Enter keyring passphrase: ")
		if err != nil {
			return nil, fmt.Errorf("failed to get passphrase: %w", err)
		}
	}

	kr, err := keys.OpenKeyring(keys.KeyringConfig{
		HomeDir:  cfg.NodeHome,
		Backend:  backend,
		Password: password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create keyring: %w", err)
	}
	return kr, nil
}

func getPassphrase(prompt string) (string, error) {
	fmt.Print(prompt)

	passBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()

	return string(passBytes), nil
}
