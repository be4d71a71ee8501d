package keys

import (
	"fmt"
	"io"
	"strings"

	"github.com/cosmos/cosmos-sdk/codec"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	cryptocodec "github.com/cosmos/cosmos-sdk/crypto/codec"
	"github.com/cosmos/cosmos-sdk/crypto/hd"
	"github.com/cosmos/cosmos-sdk/crypto/keyring"
	cryptotypes "github.com/cosmos/cosmos-sdk/crypto/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	evmcrypto "github.com/cosmos/evm/crypto/ethsecp256k1"
	evmhd "github.com/cosmos/evm/crypto/hd"

	"github.com/pushchain/push-stake-provider/stakeClient/config"
)

const (
	AlgoSecp256k1    = "secp256k1"
	AlgoEthSecp256k1 = "eth_secp256k1"
)

// KeyringConfig holds configuration for keyring initialization
type KeyringConfig struct {
	HomeDir  string
	Backend  config.KeyringBackend
	KeyName  string
	Password string
}

// KeyInfo is the printable summary of a keyring record.
type KeyInfo struct {
	Name    string `json:"name" yaml:"name"`
	Type    string `json:"type" yaml:"type"`
	Address string `json:"address" yaml:"address"`
	PubKey  string `json:"pubkey" yaml:"pubkey"`
}

// SigningAlgo maps a configured algorithm name to its keyring implementation.
func SigningAlgo(name string) (keyring.SignatureAlgo, error) {
	switch name {
	case "", AlgoSecp256k1:
		return hd.Secp256k1, nil
	case AlgoEthSecp256k1:
		return evmhd.EthSecp256k1, nil
	default:
		return nil, fmt.Errorf("unsupported key algorithm %q", name)
	}
}

// HDPath returns the BIP44 derivation path for the first account of coinType.
func HDPath(coinType uint32) string {
	return hd.CreateHDPath(coinType, 0, 0).String()
}

// RegisterKeyTypes registers every key type keyring records may contain.
func RegisterKeyTypes(registry codectypes.InterfaceRegistry) {
	cryptocodec.RegisterInterfaces(registry)
	registry.RegisterImplementations((*cryptotypes.PubKey)(nil), &evmcrypto.PubKey{})
	registry.RegisterImplementations((*cryptotypes.PrivKey)(nil), &evmcrypto.PrivKey{})
}

// NewInterfaceRegistry returns a registry that can decode keyring records.
func NewInterfaceRegistry() codectypes.InterfaceRegistry {
	registry := codectypes.NewInterfaceRegistry()
	RegisterKeyTypes(registry)
	return registry
}

func supportedAlgos(options *keyring.Options) {
	options.SupportedAlgos = keyring.SigningAlgoList{hd.Secp256k1, evmhd.EthSecp256k1}
}

// CreateKeyring opens (or creates) the keyring under homeDir.
func CreateKeyring(homeDir string, reader io.Reader, backend config.KeyringBackend) (keyring.Keyring, error) {
	if len(homeDir) == 0 {
		return nil, fmt.Errorf("home directory is empty")
	}

	cdc := codec.NewProtoCodec(NewInterfaceRegistry())

	var name string
	switch backend {
	case config.KeyringBackendFile:
		name = keyring.BackendFile
	default:
		name = keyring.BackendTest
	}

	return keyring.New(sdk.KeyringServiceName(), name, homeDir, reader, cdc, supportedAlgos)
}

// OpenKeyring opens the keyring described by cfg, feeding the file backend password.
func OpenKeyring(cfg KeyringConfig) (keyring.Keyring, error) {
	var reader io.Reader = strings.NewReader("")
	if cfg.Backend == config.KeyringBackendFile {
		if cfg.Password == "" {
			return nil, fmt.Errorf("password is required for file backend")
		}
		// The file backend may prompt twice (passphrase + confirmation).
		reader = strings.NewReader(fmt.Sprintf("%s\n%s\n", cfg.Password, cfg.Password))
	}
	return CreateKeyring(cfg.HomeDir, reader, cfg.Backend)
}

// LoadKeys opens the keyring and checks that the configured key is present.
func LoadKeys(cfg KeyringConfig, bech32Prefix string) (*Keys, error) {
	if cfg.KeyName == "" {
		return nil, fmt.Errorf("key name is empty")
	}
	kr, err := OpenKeyring(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}
	if err := ValidateKeyExists(kr, cfg.KeyName); err != nil {
		return nil, err
	}
	return NewKeys(kr, cfg.KeyName, bech32Prefix), nil
}

// CreateNewKey creates a key in the keyring and returns the record and mnemonic.
// If mnemonic is provided the key is imported from it; otherwise a new one is generated.
func CreateNewKey(kr keyring.Keyring, name, mnemonic, algoName string, coinType uint32) (*keyring.Record, string, error) {
	algo, err := SigningAlgo(algoName)
	if err != nil {
		return nil, "", err
	}
	path := HDPath(coinType)

	if mnemonic != "" {
		record, err := kr.NewAccount(name, mnemonic, keyring.DefaultBIP39Passphrase, path, algo)
		if err != nil {
			return nil, "", fmt.Errorf("failed to import key: %w", err)
		}
		return record, mnemonic, nil
	}

	record, generated, err := kr.NewMnemonic(name, keyring.English, path, keyring.DefaultBIP39Passphrase, algo)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate new key with mnemonic: %w", err)
	}
	return record, generated, nil
}

// ListKeys summarises every record in the keyring.
func ListKeys(kr keyring.Keyring, bech32Prefix string) ([]KeyInfo, error) {
	records, err := kr.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	out := make([]KeyInfo, 0, len(records))
	for _, rec := range records {
		info, err := RecordInfo(rec, bech32Prefix)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, nil
}

// RecordInfo converts a single record into KeyInfo.
func RecordInfo(rec *keyring.Record, bech32Prefix string) (KeyInfo, error) {
	addr, err := rec.GetAddress()
	if err != nil {
		return KeyInfo{}, fmt.Errorf("failed to get address of %s: %w", rec.Name, err)
	}
	pub, err := rec.GetPubKey()
	if err != nil {
		return KeyInfo{}, fmt.Errorf("failed to get public key of %s: %w", rec.Name, err)
	}
	bech, err := sdk.Bech32ifyAddressBytes(bech32Prefix, addr)
	if err != nil {
		return KeyInfo{}, err
	}
	return KeyInfo{
		Name:    rec.Name,
		Type:    rec.GetType().String(),
		Address: bech,
		PubKey:  fmt.Sprintf("%x", pub.Bytes()),
	}, nil
}

// ValidateKeyExists checks if a key exists in the keyring
func ValidateKeyExists(kr keyring.Keyring, keyName string) error {
	if _, err := kr.Key(keyName); err != nil {
		return fmt.Errorf("key %s not found: %w", keyName, err)
	}
	return nil
}
