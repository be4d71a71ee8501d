package txbuilder

import (
	"testing"

	"cosmossdk.io/math"
	distrtypes "github.com/cosmos/cosmos-sdk/x/distribution/types"
	stakingtypes "github.com/cosmos/cosmos-sdk/x/staking/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pushchain/push-stake-provider/stakeClient/config"
	"github.com/pushchain/push-stake-provider/stakeClient/constant"
	"github.com/pushchain/push-stake-provider/stakeClient/cosmoscore"
	"github.com/pushchain/push-stake-provider/stakeClient/errors"
)

const (
	delegator = "cosmos1delegator"
	validator = "cosmosvaloper1validator"
)

func testInput() Input {
	return Input{
		Config: config.CoinConfig{
			Version:    3,
			CoinType:   118,
			Symbol:     "ATOM",
			Denom:      "uatom",
			Decimals:   6,
			FeeDenom:   "uatom",
			FeeAmount:  math.NewInt(5000),
			StakeGas:   250000,
			UnstakeGas: 350000,
		},
		Account: cosmoscore.Account{Address: delegator, AccountNumber: 12, Sequence: 4},
		ChainID: "cosmoshub-4",
	}
}

func TestBuildStake(t *testing.T) {
	for _, format := range []Format{FormatLegacy, FormatCurrent} {
		t.Run(string(format), func(t *testing.T) {
			desc, err := BuildStake(testInput(), validator, math.NewInt(1_000_000), format)
			require.NoError(t, err)

			assert.Equal(t, format, desc.Format)
			assert.Equal(t, KindStake, desc.Kind)
			assert.Equal(t, "cosmoshub-4", desc.ChainID)
			assert.Equal(t, uint64(12), desc.AccountNumber)
			assert.Equal(t, uint64(4), desc.Sequence)
			assert.Equal(t, uint64(250000), desc.Fee.Gas)
			assert.Equal(t, "5000uatom", desc.Fee.Coins().String())
			assert.Equal(t, 3, desc.ConfigVersion)

			msgs, err := desc.Msgs()
			require.NoError(t, err)
			require.Len(t, msgs, 1)
			del, ok := msgs[0].(*stakingtypes.MsgDelegate)
			require.True(t, ok)
			assert.Equal(t, delegator, del.DelegatorAddress)
			assert.Equal(t, validator, del.ValidatorAddress)
			assert.Equal(t, "1000000uatom", del.Amount.String())
		})
	}
}

func TestBuildStake_VariantIsExclusive(t *testing.T) {
	legacy, err := BuildStake(testInput(), validator, math.NewInt(1), FormatLegacy)
	require.NoError(t, err)
	assert.NotNil(t, legacy.Legacy)
	assert.Empty(t, legacy.Messages)

	current, err := BuildStake(testInput(), validator, math.NewInt(1), FormatCurrent)
	require.NoError(t, err)
	assert.Nil(t, current.Legacy)
	assert.Len(t, current.Messages, 1)
}

func TestBuildUnstake_MessageOrder(t *testing.T) {
	for _, format := range []Format{FormatLegacy, FormatCurrent} {
		t.Run(string(format), func(t *testing.T) {
			desc, err := BuildUnstake(testInput(), validator, math.NewInt(42), format)
			require.NoError(t, err)
			assert.Equal(t, uint64(350000), desc.Fee.Gas)

			urls, err := desc.TypeURLs()
			require.NoError(t, err)
			assert.Equal(t, []string{constant.MsgWithdrawRewardTypeURL, constant.MsgUndelegateTypeURL}, urls)

			msgs, err := desc.Msgs()
			require.NoError(t, err)
			withdraw, ok := msgs[0].(*distrtypes.MsgWithdrawDelegatorReward)
			require.True(t, ok)
			assert.Equal(t, validator, withdraw.ValidatorAddress)
			undel, ok := msgs[1].(*stakingtypes.MsgUndelegate)
			require.True(t, ok)
			assert.Equal(t, "42uatom", undel.Amount.String())
		})
	}
}

func TestBuildUnstake_CurrentMessagesListed(t *testing.T) {
	desc, err := BuildUnstake(testInput(), validator, math.NewInt(42), FormatCurrent)
	require.NoError(t, err)
	require.Len(t, desc.Messages, 2)
	assert.Equal(t, constant.MsgWithdrawRewardTypeURL, desc.Messages[0].TypeURL)
	assert.Nil(t, desc.Messages[0].Amount)
	assert.Equal(t, constant.MsgUndelegateTypeURL, desc.Messages[1].TypeURL)
}

func TestFormatsEncodeIdenticalFields(t *testing.T) {
	amounts := []int64{1, 999, 1_000_000, 123456789012}
	builders := map[string]func(Input, string, math.Int, Format) (*Description, error){
		"stake":   BuildStake,
		"unstake": BuildUnstake,
	}

	for name, build := range builders {
		for _, amt := range amounts {
			legacy, err := build(testInput(), validator, math.NewInt(amt), FormatLegacy)
			require.NoError(t, err)
			current, err := build(testInput(), validator, math.NewInt(amt), FormatCurrent)
			require.NoError(t, err)

			lf, err := legacy.Fields()
			require.NoError(t, err)
			cf, err := current.Fields()
			require.NoError(t, err)
			assert.Equal(t, lf, cf, "%s %d", name, amt)

			lm, err := legacy.Msgs()
			require.NoError(t, err)
			cm, err := current.Msgs()
			require.NoError(t, err)
			assert.Equal(t, lm, cm, "%s %d", name, amt)
		}
	}
}

func TestRebuild(t *testing.T) {
	legacy, err := BuildUnstake(testInput(), validator, math.NewInt(7), FormatLegacy)
	require.NoError(t, err)

	current, err := legacy.Rebuild(FormatCurrent)
	require.NoError(t, err)
	assert.Equal(t, FormatCurrent, current.Format)
	assert.Nil(t, current.Legacy)
	assert.Len(t, current.Messages, 2)
	assert.Equal(t, legacy.Sequence, current.Sequence)
	assert.Equal(t, legacy.ChainID, current.ChainID)
	assert.Equal(t, FormatLegacy, legacy.Format, "original is untouched")

	_, err = legacy.Rebuild(Format("v3"))
	assert.True(t, errors.Is(err, errors.ErrBuildFailed))
}

func TestBuild_InvalidInput(t *testing.T) {
	noAccount := testInput()
	noAccount.Account = cosmoscore.Account{}
	noChain := testInput()
	noChain.ChainID = ""
	noDenom := testInput()
	noDenom.Config.Denom = ""
	shortDenom := testInput()
	shortDenom.Config.Denom = "ab"
	digitDenom := testInput()
	digitDenom.Config.Denom = "1uatom"
	badFeeDenom := testInput()
	badFeeDenom.Config.FeeDenom = "u"
	badFeeDenom.Config.FeeAmount = math.NewInt(500)

	tests := []struct {
		name      string
		in        Input
		validator string
		amount    math.Int
		format    Format
		errMsg    string
	}{
		{"missing account", noAccount, validator, math.NewInt(1), FormatCurrent, "account is not resolved"},
		{"missing chain id", noChain, validator, math.NewInt(1), FormatCurrent, "chain id is not resolved"},
		{"missing denom", noDenom, validator, math.NewInt(1), FormatCurrent, "denom is not configured"},
		{"short denom", shortDenom, validator, math.NewInt(1), FormatCurrent, "invalid coin denom"},
		{"denom starting with digit", digitDenom, validator, math.NewInt(1), FormatLegacy, "invalid coin denom"},
		{"invalid fee denom", badFeeDenom, validator, math.NewInt(1), FormatCurrent, "invalid fee denom"},
		{"empty validator", testInput(), "", math.NewInt(1), FormatLegacy, "validator is empty"},
		{"zero amount", testInput(), validator, math.ZeroInt(), FormatLegacy, "amount must be positive"},
		{"negative amount", testInput(), validator, math.NewInt(-5), FormatCurrent, "amount must be positive"},
		{"nil amount", testInput(), validator, math.Int{}, FormatCurrent, "amount must be positive"},
		{"unknown format", testInput(), validator, math.NewInt(1), Format("v3"), "unknown format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc, err := BuildStake(tt.in, tt.validator, tt.amount, tt.format)
			require.Error(t, err)
			assert.Nil(t, desc)
			assert.True(t, errors.Is(err, errors.ErrBuildFailed))
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestMsgs_EmptyDescription(t *testing.T) {
	_, err := (&Description{Format: FormatCurrent}).Msgs()
	assert.True(t, errors.Is(err, errors.ErrBuildFailed))

	_, err = (&Description{Format: FormatLegacy}).Msgs()
	assert.True(t, errors.Is(err, errors.ErrBuildFailed))
}
