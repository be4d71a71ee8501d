package txbuilder

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/pushchain/push-stake-provider/stakeClient/config"
	"github.com/pushchain/push-stake-provider/stakeClient/cosmoscore"
)

// Format is the wire version a Description is built for.
type Format string

const (
	// FormatLegacy is the flat single-payload shape signed in amino-JSON mode.
	FormatLegacy Format = "legacy"
	// FormatCurrent is the explicit multi-message shape signed in direct mode.
	FormatCurrent Format = "current"
)

// Kind distinguishes stake from unstake descriptions.
type Kind string

const (
	KindStake   Kind = "stake"
	KindUnstake Kind = "unstake"
)

// Fee attached to a transaction.
type Fee struct {
	Denom  string
	Amount math.Int
	Gas    uint64
}

// Coins returns the fee as sdk.Coins; a zero amount yields no coins.
func (f Fee) Coins() sdk.Coins {
	if f.Amount.IsNil() || f.Amount.IsZero() {
		return sdk.Coins{}
	}
	return sdk.NewCoins(sdk.NewCoin(f.Denom, f.Amount))
}

// LegacyPayload carries the stake fields flat. An unstake payload implies a
// reward withdrawal from the same validator before the undelegation.
type LegacyPayload struct {
	Kind      Kind
	Delegator string
	Validator string
	Amount    sdk.Coin
}

// Message is one typed message of a current-format description.
// Amount is nil for reward withdrawals.
type Message struct {
	TypeURL   string
	Delegator string
	Validator string
	Amount    *sdk.Coin
}

// Description is the signable envelope handed to the signer.
// Exactly one of Legacy and Messages is set, selected by Format.
type Description struct {
	Format        Format
	Kind          Kind
	ChainID       string
	AccountNumber uint64
	Sequence      uint64
	Fee           Fee
	Memo          string
	ConfigVersion int

	Legacy   *LegacyPayload
	Messages []Message
}

// Input is the snapshot every build needs; all three parts are resolved before building.
type Input struct {
	Config  config.CoinConfig
	Account cosmoscore.Account
	ChainID string
}

// StakeFields is the delegator/validator/amount triple both formats encode.
type StakeFields struct {
	Delegator string
	Validator string
	Amount    sdk.Coin
}
