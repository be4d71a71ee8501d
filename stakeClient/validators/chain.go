package validators

import (
	"context"
	"fmt"
	"time"

	"cosmossdk.io/math"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pushchain/push-stake-provider/stakeClient/cosmoscore"
	"github.com/pushchain/push-stake-provider/stakeClient/errors"
)

// ChainSource is the subset of cosmoscore.Client the on-chain directory reads.
type ChainSource interface {
	GetValidators(ctx context.Context) ([]cosmoscore.ChainValidator, error)
	GetValidator(ctx context.Context, operator string) (*cosmoscore.ChainValidator, error)
	GetStakingPool(ctx context.Context) (*cosmoscore.StakingPool, error)
	GetSupply(ctx context.Context, denom string) (math.Int, error)
	GetInflation(ctx context.Context) (math.LegacyDec, error)
	GetCommunityTax(ctx context.Context) (math.LegacyDec, error)
	GetUnbondingTime(ctx context.Context) (time.Duration, error)
}

// ChainDirectory derives validators and their APR from staking module state.
type ChainDirectory struct {
	src      ChainSource
	coinType uint32
	denom    string
	log      zerolog.Logger
}

// NewChainDirectory serves coinType whose staking denom is denom.
func NewChainDirectory(src ChainSource, coinType uint32, denom string, log zerolog.Logger) *ChainDirectory {
	return &ChainDirectory{
		src:      src,
		coinType: coinType,
		denom:    denom,
		log:      log.With().Str("component", "chain_validators").Logger(),
	}
}

var _ Directory = (*ChainDirectory)(nil)

// economics holds the network-wide inputs of the APR formula.
type economics struct {
	baseAPR  math.LegacyDec
	lockTime time.Duration
}

func (d *ChainDirectory) loadEconomics(ctx context.Context) (economics, error) {
	var (
		pool      *cosmoscore.StakingPool
		supply    math.Int
		inflation math.LegacyDec
		tax       math.LegacyDec
		lockTime  time.Duration
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { pool, err = d.src.GetStakingPool(gctx); return })
	g.Go(func() (err error) { supply, err = d.src.GetSupply(gctx, d.denom); return })
	g.Go(func() (err error) { inflation, err = d.src.GetInflation(gctx); return })
	g.Go(func() (err error) { tax, err = d.src.GetCommunityTax(gctx); return })
	g.Go(func() (err error) { lockTime, err = d.src.GetUnbondingTime(gctx); return })
	if err := g.Wait(); err != nil {
		return economics{}, err
	}

	return economics{
		baseAPR:  NetworkAPR(inflation, tax, pool.BondedTokens, supply),
		lockTime: lockTime,
	}, nil
}

// NetworkAPR is inflation * (1 - communityTax) / bondedRatio. A zero bonded
// ratio yields zero.
func NetworkAPR(inflation, communityTax math.LegacyDec, bonded, supply math.Int) math.LegacyDec {
	if bonded.IsNil() || supply.IsNil() || !bonded.IsPositive() || !supply.IsPositive() {
		return math.LegacyZeroDec()
	}
	ratio := math.LegacyNewDecFromInt(bonded).QuoInt(supply)
	return inflation.Mul(math.LegacyOneDec().Sub(communityTax)).Quo(ratio)
}

// ValidatorAPR applies the validator commission to the network APR.
func ValidatorAPR(networkAPR, commission math.LegacyDec) math.LegacyDec {
	if commission.IsNil() {
		return networkAPR
	}
	return networkAPR.Mul(math.LegacyOneDec().Sub(commission))
}

func (d *ChainDirectory) toValidator(cv cosmoscore.ChainValidator, econ economics) Validator {
	apr := ValidatorAPR(econ.baseAPR, cv.Commission)
	pct, err := apr.MulInt64(100).Float64()
	if err != nil {
		pct = 0
	}
	return Validator{
		ID:            cv.OperatorAddress,
		Name:          cv.Moniker,
		Description:   cv.Details,
		Website:       cv.Website,
		Active:        cv.Bonded && !cv.Jailed,
		APR:           pct,
		LockTime:      econ.lockTime,
		MinimumAmount: math.OneInt(),
	}
}

func (d *ChainDirectory) checkCoin(op string, coinType uint32) error {
	if coinType != d.coinType {
		return errors.NewNotFoundError(op, fmt.Sprintf("coin type %d is not served by this chain", coinType))
	}
	return nil
}

// GetValidators implements Directory.
func (d *ChainDirectory) GetValidators(ctx context.Context, coinType uint32) ([]Validator, error) {
	if err := d.checkCoin("GetValidators", coinType); err != nil {
		return nil, err
	}

	var (
		chainVals []cosmoscore.ChainValidator
		econ      economics
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { chainVals, err = d.src.GetValidators(gctx); return })
	g.Go(func() (err error) { econ, err = d.loadEconomics(gctx); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Validator, 0, len(chainVals))
	for _, cv := range chainVals {
		out = append(out, d.toValidator(cv, econ))
	}
	d.log.Debug().Int("count", len(out)).Str("network_apr", econ.baseAPR.String()).Msg("derived validators")
	return out, nil
}

// GetValidator implements Directory.
func (d *ChainDirectory) GetValidator(ctx context.Context, coinType uint32, id string) (*Validator, error) {
	if err := d.checkCoin("GetValidator", coinType); err != nil {
		return nil, err
	}

	var (
		cv   *cosmoscore.ChainValidator
		econ economics
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { cv, err = d.src.GetValidator(gctx, id); return })
	g.Go(func() (err error) { econ, err = d.loadEconomics(gctx); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	v := d.toValidator(*cv, econ)
	return &v, nil
}
