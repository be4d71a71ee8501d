package authsigner

import (
	"fmt"

	"cosmossdk.io/x/tx/signing"
	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/codec"
	"github.com/cosmos/cosmos-sdk/codec/address"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	signingtypes "github.com/cosmos/cosmos-sdk/types/tx/signing"
	authtx "github.com/cosmos/cosmos-sdk/x/auth/tx"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	distrtypes "github.com/cosmos/cosmos-sdk/x/distribution/types"
	stakingtypes "github.com/cosmos/cosmos-sdk/x/staking/types"
	"github.com/cosmos/gogoproto/proto"

	"github.com/pushchain/push-stake-provider/stakeClient/keys"
)

// NewInterfaceRegistry builds a registry whose signer extraction uses the
// coin's bech32 prefixes instead of the process-wide SDK config.
func NewInterfaceRegistry(bech32Prefix string) (codectypes.InterfaceRegistry, error) {
	files, err := proto.MergedRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to merge proto registry: %w", err)
	}
	registry, err := codectypes.NewInterfaceRegistryWithOptions(codectypes.InterfaceRegistryOptions{
		ProtoFiles: files,
		SigningOptions: signing.Options{
			AddressCodec:          address.NewBech32Codec(bech32Prefix),
			ValidatorAddressCodec: address.NewBech32Codec(bech32Prefix + sdk.PrefixValidator + sdk.PrefixOperator),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create interface registry: %w", err)
	}

	keys.RegisterKeyTypes(registry)
	authtypes.RegisterInterfaces(registry)
	stakingtypes.RegisterInterfaces(registry)
	distrtypes.RegisterInterfaces(registry)
	return registry, nil
}

// NewTxConfig returns a tx config able to sign in both direct and amino-JSON modes.
func NewTxConfig(registry codectypes.InterfaceRegistry) client.TxConfig {
	cdc := codec.NewProtoCodec(registry)
	return authtx.NewTxConfig(cdc, []signingtypes.SignMode{
		signingtypes.SignMode_SIGN_MODE_DIRECT,
		signingtypes.SignMode_SIGN_MODE_LEGACY_AMINO_JSON,
	})
}
