package provider

import (
	"context"
	"fmt"

	"cosmossdk.io/math"

	"github.com/pushchain/push-stake-provider/stakeClient/config"
	"github.com/pushchain/push-stake-provider/stakeClient/cosmoscore"
	"github.com/pushchain/push-stake-provider/stakeClient/errors"
	"github.com/pushchain/push-stake-provider/stakeClient/rates"
	"github.com/pushchain/push-stake-provider/stakeClient/validators"
)

// PendingUnbonds lists unbonding entries and their total in base units.
type PendingUnbonds struct {
	Entries []cosmoscore.Unbonding `json:"entries" yaml:"entries"`
	Total   math.Int               `json:"total" yaml:"total"`
}

// SumShares adds up delegation shares; zero for an empty set.
func SumShares(dels []cosmoscore.Delegation) math.LegacyDec {
	total := math.LegacyZeroDec()
	for _, d := range dels {
		if d.Shares.IsNil() {
			continue
		}
		total = total.Add(d.Shares)
	}
	return total
}

// Stakeholders maps delegations to per-validator staked amounts.
func Stakeholders(dels []cosmoscore.Delegation) []validators.Stakeholder {
	out := make([]validators.Stakeholder, 0, len(dels))
	for _, d := range dels {
		amount := math.ZeroInt()
		if !d.Shares.IsNil() {
			amount = d.Shares.TruncateInt()
		}
		out = append(out, validators.Stakeholder{ValidatorID: d.ValidatorAddress, Amount: amount})
	}
	return out
}

// Balance returns the spendable balance in the coin's base denom. A missing
// denom entry is NOT_FOUND.
func (p *Provider) Balance(ctx context.Context) (math.Int, error) {
	cfg, addr, err := p.configAndAddress(ctx)
	if err != nil {
		return math.Int{}, err
	}
	coins, err := p.chain.GetBalances(ctx, addr)
	if err != nil {
		return math.Int{}, err
	}
	for _, c := range coins {
		if c.Denom == cfg.Denom {
			return c.Amount, nil
		}
	}
	return math.Int{}, errors.NewNotFoundError("Balance", fmt.Sprintf("no %s balance for %s", cfg.Denom, addr)).WithCoin(cfg.Symbol)
}

// StakedAmount returns the sum of delegation shares of the address, truncated
// to base units. No delegations yields zero.
func (p *Provider) StakedAmount(ctx context.Context) (math.Int, error) {
	_, addr, err := p.configAndAddress(ctx)
	if err != nil {
		return math.Int{}, err
	}
	dels, err := p.chain.ListDelegations(ctx, addr)
	if err != nil {
		return math.Int{}, err
	}
	return SumShares(dels).TruncateInt(), nil
}

// StakingRewards returns the outstanding rewards in the base denom.
func (p *Provider) StakingRewards(ctx context.Context) (math.LegacyDec, error) {
	cfg, addr, err := p.configAndAddress(ctx)
	if err != nil {
		return math.LegacyDec{}, err
	}
	total, err := p.chain.GetRewards(ctx, addr)
	if err != nil {
		return math.LegacyDec{}, err
	}
	return total.AmountOf(cfg.Denom), nil
}

// PendingUnbonds returns every unbonding entry of the address.
func (p *Provider) PendingUnbonds(ctx context.Context) (*PendingUnbonds, error) {
	_, addr, err := p.configAndAddress(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := p.chain.ListUnbondings(ctx, addr)
	if err != nil {
		return nil, err
	}
	total := math.ZeroInt()
	for _, e := range entries {
		if !e.Balance.IsNil() {
			total = total.Add(e.Balance)
		}
	}
	return &PendingUnbonds{Entries: entries, Total: total}, nil
}

// Validators lists the validators of the coin.
func (p *Provider) Validators(ctx context.Context) ([]validators.Validator, error) {
	cfg, err := p.coinConfig(ctx)
	if err != nil {
		return nil, err
	}
	return p.validators.GetValidators(ctx, cfg.CoinType)
}

// ValidatorAPR returns the annual percentage rate of validator id.
func (p *Provider) ValidatorAPR(ctx context.Context, id string) (float64, error) {
	cfg, err := p.coinConfig(ctx)
	if err != nil {
		return 0, err
	}
	v, err := p.validators.GetValidator(ctx, cfg.CoinType, id)
	if err != nil {
		return 0, err
	}
	return v.APR, nil
}

// BestValidator returns the active validator with the highest APR.
func (p *Provider) BestValidator(ctx context.Context) (*validators.Validator, error) {
	vals, err := p.Validators(ctx)
	if err != nil {
		return nil, err
	}
	return validators.BestByAPR(vals)
}

// Stakeholders returns the per-validator staked amounts of the address.
func (p *Provider) Stakeholders(ctx context.Context) ([]validators.Stakeholder, error) {
	_, addr, err := p.configAndAddress(ctx)
	if err != nil {
		return nil, err
	}
	dels, err := p.chain.ListDelegations(ctx, addr)
	if err != nil {
		return nil, err
	}
	return Stakeholders(dels), nil
}

// GetStakedToValidator returns the amount staked to validator id, zero when none.
func (p *Provider) GetStakedToValidator(ctx context.Context, id string) (math.Int, error) {
	holders, err := p.Stakeholders(ctx)
	if err != nil {
		return math.Int{}, err
	}
	return validators.StakedToValidator(holders, id), nil
}

// Rate returns the fiat price of one whole coin.
func (p *Provider) Rate(ctx context.Context) (math.LegacyDec, error) {
	cfg, err := p.coinConfig(ctx)
	if err != nil {
		return math.LegacyDec{}, err
	}
	return p.rates.GetRate(ctx, cfg.Symbol)
}

// FiatValue converts a base-unit amount to fiat at the current rate.
func (p *Provider) FiatValue(ctx context.Context, amount math.Int) (math.LegacyDec, error) {
	cfg, err := p.coinConfig(ctx)
	if err != nil {
		return math.LegacyDec{}, err
	}
	price, err := p.rates.GetRate(ctx, cfg.Symbol)
	if err != nil {
		return math.LegacyDec{}, err
	}
	return rates.FiatValue(amount, cfg.Decimals, price), nil
}

func (p *Provider) configAndAddress(ctx context.Context) (config.CoinConfig, string, error) {
	cfg, err := p.coinConfig(ctx)
	if err != nil {
		return config.CoinConfig{}, "", err
	}
	addr, err := p.address(ctx, cfg)
	if err != nil {
		return config.CoinConfig{}, "", err
	}
	return cfg, addr, nil
}
