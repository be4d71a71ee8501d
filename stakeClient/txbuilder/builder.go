// Package txbuilder assembles signable stake and unstake transaction descriptions.
package txbuilder

import (
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	distrtypes "github.com/cosmos/cosmos-sdk/x/distribution/types"
	stakingtypes "github.com/cosmos/cosmos-sdk/x/staking/types"

	"github.com/pushchain/push-stake-provider/stakeClient/constant"
	"github.com/pushchain/push-stake-provider/stakeClient/errors"
)

// BuildStake builds a description wrapping a single delegate message.
func BuildStake(in Input, validator string, amount math.Int, format Format) (*Description, error) {
	return build(in, KindStake, validator, amount, format, in.Config.StakeGas)
}

// BuildUnstake builds a description that withdraws rewards from validator and
// then undelegates amount, in that order.
func BuildUnstake(in Input, validator string, amount math.Int, format Format) (*Description, error) {
	return build(in, KindUnstake, validator, amount, format, in.Config.UnstakeGas)
}

func build(in Input, kind Kind, validator string, amount math.Int, format Format, gas uint64) (*Description, error) {
	op := "Build" + titleKind(kind)

	switch {
	case in.Account.Address == "":
		return nil, errors.NewBuildError(op, "account is not resolved", nil)
	case in.ChainID == "":
		return nil, errors.NewBuildError(op, "chain id is not resolved", nil)
	case in.Config.Denom == "":
		return nil, errors.NewBuildError(op, "coin denom is not configured", nil)
	case validator == "":
		return nil, errors.NewBuildError(op, "validator is empty", nil)
	case amount.IsNil() || !amount.IsPositive():
		return nil, errors.NewBuildError(op, fmt.Sprintf("amount must be positive, got %s", amount), nil)
	}
	// sdk.NewCoin panics on a malformed denom
	if err := sdk.ValidateDenom(in.Config.Denom); err != nil {
		return nil, errors.NewBuildError(op, fmt.Sprintf("invalid coin denom %q", in.Config.Denom), err)
	}
	if feeDenomInvalid(in.Config.FeeDenom, in.Config.FeeAmount) {
		return nil, errors.NewBuildError(op, fmt.Sprintf("invalid fee denom %q", in.Config.FeeDenom), nil)
	}

	coin := sdk.NewCoin(in.Config.Denom, amount)
	desc := &Description{
		Format:        format,
		Kind:          kind,
		ChainID:       in.ChainID,
		AccountNumber: in.Account.AccountNumber,
		Sequence:      in.Account.Sequence,
		Fee: Fee{
			Denom:  in.Config.FeeDenom,
			Amount: in.Config.FeeAmount,
			Gas:    gas,
		},
		ConfigVersion: in.Config.Version,
	}

	fields := StakeFields{Delegator: in.Account.Address, Validator: validator, Amount: coin}
	switch format {
	case FormatLegacy:
		desc.Legacy = &LegacyPayload{
			Kind:      kind,
			Delegator: fields.Delegator,
			Validator: fields.Validator,
			Amount:    fields.Amount,
		}
	case FormatCurrent:
		desc.Messages = messagesFor(kind, fields)
	default:
		return nil, errors.NewBuildError(op, fmt.Sprintf("unknown format %q", format), nil)
	}
	return desc, nil
}

// feeDenomInvalid reports whether a non-zero fee carries a denom sdk.NewCoin rejects.
func feeDenomInvalid(denom string, amount math.Int) bool {
	if amount.IsNil() || amount.IsZero() {
		return false
	}
	return sdk.ValidateDenom(denom) != nil
}

// messagesFor expands a kind into its ordered message list.
func messagesFor(kind Kind, f StakeFields) []Message {
	amount := f.Amount
	switch kind {
	case KindUnstake:
		return []Message{
			{TypeURL: constant.MsgWithdrawRewardTypeURL, Delegator: f.Delegator, Validator: f.Validator},
			{TypeURL: constant.MsgUndelegateTypeURL, Delegator: f.Delegator, Validator: f.Validator, Amount: &amount},
		}
	default:
		return []Message{
			{TypeURL: constant.MsgDelegateTypeURL, Delegator: f.Delegator, Validator: f.Validator, Amount: &amount},
		}
	}
}

// Rebuild returns a copy of d expressed in format, keeping every envelope field.
func (d *Description) Rebuild(format Format) (*Description, error) {
	fields, err := d.Fields()
	if err != nil {
		return nil, err
	}
	out := *d
	out.Format = format
	out.Legacy = nil
	out.Messages = nil
	switch format {
	case FormatLegacy:
		out.Legacy = &LegacyPayload{Kind: d.Kind, Delegator: fields.Delegator, Validator: fields.Validator, Amount: fields.Amount}
	case FormatCurrent:
		out.Messages = messagesFor(d.Kind, fields)
	default:
		return nil, errors.NewBuildError("Rebuild", fmt.Sprintf("unknown format %q", format), nil)
	}
	return &out, nil
}

// Fields returns the delegator, validator and amount the description moves.
func (d *Description) Fields() (StakeFields, error) {
	switch d.Format {
	case FormatLegacy:
		if d.Legacy == nil {
			return StakeFields{}, errors.NewBuildError("Fields", "legacy description has no payload", nil)
		}
		return StakeFields{Delegator: d.Legacy.Delegator, Validator: d.Legacy.Validator, Amount: d.Legacy.Amount}, nil
	case FormatCurrent:
		for _, m := range d.Messages {
			if m.Amount != nil {
				return StakeFields{Delegator: m.Delegator, Validator: m.Validator, Amount: *m.Amount}, nil
			}
		}
		return StakeFields{}, errors.NewBuildError("Fields", "description carries no amount-bearing message", nil)
	default:
		return StakeFields{}, errors.NewBuildError("Fields", fmt.Sprintf("unknown format %q", d.Format), nil)
	}
}

// Msgs returns the ordered SDK messages to sign. A legacy unstake payload
// expands to the same [withdraw-reward, undelegate] pair the current format lists.
func (d *Description) Msgs() ([]sdk.Msg, error) {
	messages := d.Messages
	if d.Format == FormatLegacy {
		if d.Legacy == nil {
			return nil, errors.NewBuildError("Msgs", "legacy description has no payload", nil)
		}
		messages = messagesFor(d.Legacy.Kind, StakeFields{
			Delegator: d.Legacy.Delegator,
			Validator: d.Legacy.Validator,
			Amount:    d.Legacy.Amount,
		})
	}
	if len(messages) == 0 {
		return nil, errors.NewBuildError("Msgs", "description has no messages", nil)
	}

	out := make([]sdk.Msg, 0, len(messages))
	for i, m := range messages {
		msg, err := m.toSDK()
		if err != nil {
			return nil, errors.NewBuildError("Msgs", fmt.Sprintf("message %d", i), err)
		}
		out = append(out, msg)
	}
	return out, nil
}

// TypeURLs lists the message type URLs in signing order.
func (d *Description) TypeURLs() ([]string, error) {
	msgs, err := d.Msgs()
	if err != nil {
		return nil, err
	}
	urls := make([]string, len(msgs))
	for i, m := range msgs {
		urls[i] = sdk.MsgTypeURL(m)
	}
	return urls, nil
}

func (m Message) toSDK() (sdk.Msg, error) {
	switch m.TypeURL {
	case constant.MsgDelegateTypeURL:
		if m.Amount == nil {
			return nil, fmt.Errorf("delegate message without amount")
		}
		return stakingtypes.NewMsgDelegate(m.Delegator, m.Validator, *m.Amount), nil
	case constant.MsgUndelegateTypeURL:
		if m.Amount == nil {
			return nil, fmt.Errorf("undelegate message without amount")
		}
		return stakingtypes.NewMsgUndelegate(m.Delegator, m.Validator, *m.Amount), nil
	case constant.MsgWithdrawRewardTypeURL:
		return distrtypes.NewMsgWithdrawDelegatorReward(m.Delegator, m.Validator), nil
	default:
		return nil, fmt.Errorf("unsupported message type %q", m.TypeURL)
	}
}

func titleKind(k Kind) string {
	if k == KindUnstake {
		return "Unstake"
	}
	return "Stake"
}
