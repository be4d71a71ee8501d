// Package keys manages the keyring holding the delegator signing key.
package keys

import (
	"fmt"

	"github.com/cosmos/cosmos-sdk/crypto/keyring"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Keys binds one named key in a keyring to the account prefix it is shown under.
type Keys struct {
	keyName      string
	keyring      keyring.Keyring
	bech32Prefix string
}

// NewKeys creates a new instance of Keys
func NewKeys(kr keyring.Keyring, keyName, bech32Prefix string) *Keys {
	return &Keys{
		keyName:      keyName,
		keyring:      kr,
		bech32Prefix: bech32Prefix,
	}
}

// GetAccAddress returns the raw address of the key
func (k *Keys) GetAccAddress() (sdk.AccAddress, error) {
	info, err := k.keyring.Key(k.keyName)
	if err != nil {
		return nil, fmt.Errorf("failed to get key %s: %w", k.keyName, err)
	}

	addr, err := info.GetAddress()
	if err != nil {
		return nil, fmt.Errorf("failed to get address from key info: %w", err)
	}

	return addr, nil
}

// GetAddress returns the bech32 address of the key
func (k *Keys) GetAddress() (string, error) {
	addr, err := k.GetAccAddress()
	if err != nil {
		return "", err
	}
	return sdk.Bech32ifyAddressBytes(k.bech32Prefix, addr)
}

// GetKeyName returns the name of the key in the keyring
func (k *Keys) GetKeyName() string {
	return k.keyName
}

// GetKeyring returns the underlying keyring after checking the key exists.
func (k *Keys) GetKeyring() (keyring.Keyring, error) {
	if _, err := k.keyring.Key(k.keyName); err != nil {
		return nil, fmt.Errorf("key %s not found in keyring: %w", k.keyName, err)
	}
	return k.keyring, nil
}
