package validators

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pushchain/push-stake-provider/stakeClient/cosmoscore"
	"github.com/pushchain/push-stake-provider/stakeClient/errors"
)

type mockChainSource struct {
	mock.Mock
}

func (m *mockChainSource) GetValidators(ctx context.Context) ([]cosmoscore.ChainValidator, error) {
	args := m.Called(ctx)
	vals, _ := args.Get(0).([]cosmoscore.ChainValidator)
	return vals, args.Error(1)
}

func (m *mockChainSource) GetValidator(ctx context.Context, operator string) (*cosmoscore.ChainValidator, error) {
	args := m.Called(ctx, operator)
	v, _ := args.Get(0).(*cosmoscore.ChainValidator)
	return v, args.Error(1)
}

func (m *mockChainSource) GetStakingPool(ctx context.Context) (*cosmoscore.StakingPool, error) {
	args := m.Called(ctx)
	p, _ := args.Get(0).(*cosmoscore.StakingPool)
	return p, args.Error(1)
}

func (m *mockChainSource) GetSupply(ctx context.Context, denom string) (math.Int, error) {
	args := m.Called(ctx, denom)
	return args.Get(0).(math.Int), args.Error(1)
}

func (m *mockChainSource) GetInflation(ctx context.Context) (math.LegacyDec, error) {
	args := m.Called(ctx)
	return args.Get(0).(math.LegacyDec), args.Error(1)
}

func (m *mockChainSource) GetCommunityTax(ctx context.Context) (math.LegacyDec, error) {
	args := m.Called(ctx)
	return args.Get(0).(math.LegacyDec), args.Error(1)
}

func (m *mockChainSource) GetUnbondingTime(ctx context.Context) (time.Duration, error) {
	args := m.Called(ctx)
	return args.Get(0).(time.Duration), args.Error(1)
}

// economicsMock: inflation 10%, tax 2%, half the supply bonded -> network APR 19.6%.
func economicsMock() *mockChainSource {
	m := &mockChainSource{}
	m.On("GetStakingPool", mock.Anything).Return(&cosmoscore.StakingPool{BondedTokens: math.NewInt(500), NotBondedTokens: math.NewInt(10)}, nil)
	m.On("GetSupply", mock.Anything, "uatom").Return(math.NewInt(1000), nil)
	m.On("GetInflation", mock.Anything).Return(math.LegacyNewDecWithPrec(10, 2), nil)
	m.On("GetCommunityTax", mock.Anything).Return(math.LegacyNewDecWithPrec(2, 2), nil)
	m.On("GetUnbondingTime", mock.Anything).Return(21*24*time.Hour, nil)
	return m
}

func TestNetworkAPR(t *testing.T) {
	apr := NetworkAPR(math.LegacyNewDecWithPrec(10, 2), math.LegacyNewDecWithPrec(2, 2), math.NewInt(500), math.NewInt(1000))
	assert.Equal(t, "0.196000000000000000", apr.String())

	assert.True(t, NetworkAPR(math.LegacyNewDecWithPrec(10, 2), math.LegacyZeroDec(), math.ZeroInt(), math.NewInt(1)).IsZero())
	assert.True(t, NetworkAPR(math.LegacyNewDecWithPrec(10, 2), math.LegacyZeroDec(), math.NewInt(1), math.Int{}).IsZero())
}

func TestValidatorAPR(t *testing.T) {
	apr := ValidatorAPR(math.LegacyNewDecWithPrec(20, 2), math.LegacyNewDecWithPrec(10, 2))
	assert.Equal(t, "0.180000000000000000", apr.String())
	assert.Equal(t, "0.200000000000000000", ValidatorAPR(math.LegacyNewDecWithPrec(20, 2), math.LegacyDec{}).String())
}

func TestChainDirectory_GetValidators(t *testing.T) {
	m := economicsMock()
	m.On("GetValidators", mock.Anything).Return([]cosmoscore.ChainValidator{
		{OperatorAddress: "val-a", Moniker: "A", Bonded: true, Commission: math.LegacyNewDecWithPrec(5, 2)},
		{OperatorAddress: "val-b", Moniker: "B", Bonded: true, Commission: math.LegacyZeroDec()},
		{OperatorAddress: "val-c", Moniker: "C", Bonded: true, Jailed: true, Commission: math.LegacyZeroDec()},
	}, nil)

	d := NewChainDirectory(m, 118, "uatom", zerolog.Nop())
	vals, err := d.GetValidators(context.Background(), 118)
	require.NoError(t, err)
	require.Len(t, vals, 3)

	assert.InDelta(t, 18.62, vals[0].APR, 1e-9)
	assert.InDelta(t, 19.6, vals[1].APR, 1e-9)
	assert.False(t, vals[2].Active)
	assert.Equal(t, 21*24*time.Hour, vals[0].LockTime)

	best, err := BestByAPR(vals)
	require.NoError(t, err)
	assert.Equal(t, "val-b", best.ID)
	m.AssertExpectations(t)
}

func TestChainDirectory_GetValidator(t *testing.T) {
	m := economicsMock()
	m.On("GetValidator", mock.Anything, "val-a").Return(&cosmoscore.ChainValidator{
		OperatorAddress: "val-a", Bonded: true, Commission: math.LegacyNewDecWithPrec(5, 2),
	}, nil)

	d := NewChainDirectory(m, 118, "uatom", zerolog.Nop())
	v, err := d.GetValidator(context.Background(), 118, "val-a")
	require.NoError(t, err)
	assert.InDelta(t, 18.62, v.APR, 1e-9)
}

func TestChainDirectory_Errors(t *testing.T) {
	d := NewChainDirectory(&mockChainSource{}, 118, "uatom", zerolog.Nop())
	_, err := d.GetValidators(context.Background(), 60)
	assert.True(t, errors.IsNotFound(err))

	m := economicsMock()
	m.On("GetValidators", mock.Anything).Return(nil, fmt.Errorf("node down"))
	d = NewChainDirectory(m, 118, "uatom", zerolog.Nop())
	_, err = d.GetValidators(context.Background(), 118)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node down")
}
