// Package authsigner holds the keys allowed to sign for each coin type and
// turns transaction descriptions into broadcastable bytes.
package authsigner

import (
	"context"
	"fmt"
	"sync"

	"github.com/cometbft/cometbft/crypto/tmhash"
	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/tx"
	signingtypes "github.com/cosmos/cosmos-sdk/types/tx/signing"
	"github.com/rs/zerolog"

	"github.com/pushchain/push-stake-provider/stakeClient/errors"
	"github.com/pushchain/push-stake-provider/stakeClient/keys"
	"github.com/pushchain/push-stake-provider/stakeClient/txbuilder"
)

// SignedPayload is a fully signed, encoded transaction.
type SignedPayload struct {
	TxBytes []byte
	TxHash  string
	Format  txbuilder.Format
}

// Authorizer is the signing surface consumed by the coin provider.
type Authorizer interface {
	HasProvider(coinType uint32) bool
	GetAddressFromAuthorized(ctx context.Context, coinType uint32) (string, error)
	SignTransaction(ctx context.Context, coinType uint32, desc *txbuilder.Description) (*SignedPayload, error)
}

type entry struct {
	keys     *keys.Keys
	txConfig client.TxConfig
}

// Provider maps coin types to the key authorised to sign for them.
type Provider struct {
	log     zerolog.Logger
	mu      sync.RWMutex
	entries map[uint32]*entry
}

var _ Authorizer = (*Provider)(nil)

// New creates an empty Provider.
func New(log zerolog.Logger) *Provider {
	return &Provider{
		log:     log.With().Str("component", "auth_signer").Logger(),
		entries: make(map[uint32]*entry),
	}
}

// Register authorises k to sign for coinType using addresses with bech32Prefix.
func (p *Provider) Register(coinType uint32, k *keys.Keys, bech32Prefix string) error {
	registry, err := NewInterfaceRegistry(bech32Prefix)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[coinType] = &entry{keys: k, txConfig: NewTxConfig(registry)}
	p.log.Info().Uint32("coin_type", coinType).Str("key_name", k.GetKeyName()).Msg("registered signing key")
	return nil
}

func (p *Provider) lookup(coinType uint32) (*entry, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.entries[coinType]
	return e, ok
}

// HasProvider reports whether a key is registered for coinType.
func (p *Provider) HasProvider(coinType uint32) bool {
	_, ok := p.lookup(coinType)
	return ok
}

// GetAddressFromAuthorized returns the bech32 address of the key registered for coinType.
func (p *Provider) GetAddressFromAuthorized(_ context.Context, coinType uint32) (string, error) {
	e, ok := p.lookup(coinType)
	if !ok {
		return "", errors.NewNotFoundError("GetAddressFromAuthorized", fmt.Sprintf("no signing key for coin type %d", coinType))
	}
	addr, err := e.keys.GetAddress()
	if err != nil {
		return "", errors.NewSignError("GetAddressFromAuthorized", "failed to read key address", err)
	}
	return addr, nil
}

// TxConfig returns the tx config used for coinType, e.g. for decoding.
func (p *Provider) TxConfig(coinType uint32) (client.TxConfig, bool) {
	e, ok := p.lookup(coinType)
	if !ok {
		return nil, false
	}
	return e.txConfig, true
}

// SignTransaction signs desc with the key registered for coinType. Legacy
// descriptions are signed in amino-JSON mode, current ones in direct mode.
// Every failure is reported as SIGN_FAILED.
func (p *Provider) SignTransaction(ctx context.Context, coinType uint32, desc *txbuilder.Description) (*SignedPayload, error) {
	const op = "SignTransaction"

	e, ok := p.lookup(coinType)
	if !ok {
		return nil, errors.NewSignError(op, fmt.Sprintf("no signing key for coin type %d", coinType), nil)
	}
	if desc == nil {
		return nil, errors.NewSignError(op, "description is nil", nil)
	}

	signMode, err := signModeFor(desc.Format)
	if err != nil {
		return nil, errors.NewSignError(op, "unsupported format", err)
	}

	msgs, err := desc.Msgs()
	if err != nil {
		return nil, errors.NewSignError(op, "failed to expand messages", err)
	}

	txBuilder := e.txConfig.NewTxBuilder()
	if err := txBuilder.SetMsgs(msgs...); err != nil {
		return nil, errors.NewSignError(op, "failed to set messages", err)
	}
	txBuilder.SetMemo(desc.Memo)
	txBuilder.SetGasLimit(desc.Fee.Gas)
	txBuilder.SetFeeAmount(desc.Fee.Coins())

	kr, err := e.keys.GetKeyring()
	if err != nil {
		return nil, errors.NewSignError(op, "failed to get keyring", err)
	}

	txFactory := tx.Factory{}.
		WithChainID(desc.ChainID).
		WithKeybase(kr).
		WithTxConfig(e.txConfig).
		WithAccountNumber(desc.AccountNumber).
		WithSequence(desc.Sequence).
		WithSignMode(signMode)

	if err := tx.Sign(ctx, txFactory, e.keys.GetKeyName(), txBuilder, true); err != nil {
		return nil, errors.NewSignError(op, "failed to sign transaction with keyring", err).
			WithContext("format", string(desc.Format))
	}

	txBytes, err := e.txConfig.TxEncoder()(txBuilder.GetTx())
	if err != nil {
		return nil, errors.NewSignError(op, "failed to encode transaction", err)
	}

	hash := fmt.Sprintf("%X", tmhash.Sum(txBytes))
	p.log.Debug().
		Uint32("coin_type", coinType).
		Str("format", string(desc.Format)).
		Str("sign_mode", signMode.String()).
		Uint64("sequence", desc.Sequence).
		Str("tx_hash", hash).
		Msg("transaction signed")

	return &SignedPayload{TxBytes: txBytes, TxHash: hash, Format: desc.Format}, nil
}

func signModeFor(format txbuilder.Format) (signingtypes.SignMode, error) {
	switch format {
	case txbuilder.FormatLegacy:
		return signingtypes.SignMode_SIGN_MODE_LEGACY_AMINO_JSON, nil
	case txbuilder.FormatCurrent:
		return signingtypes.SignMode_SIGN_MODE_DIRECT, nil
	default:
		return signingtypes.SignMode_SIGN_MODE_UNSPECIFIED, fmt.Errorf("unknown format %q", format)
	}
}
