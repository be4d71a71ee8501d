package validators

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pushchain/push-stake-provider/stakeClient/errors"
)

func TestBestByAPR(t *testing.T) {
	tests := []struct {
		name    string
		vals    []Validator
		wantID  string
		wantErr bool
	}{
		{
			name: "highest wins",
			vals: []Validator{
				{ID: "a", Active: true, APR: 7},
				{ID: "b", Active: true, APR: 9.5},
				{ID: "c", Active: true, APR: 8},
			},
			wantID: "b",
		},
		{
			name: "tie keeps first",
			vals: []Validator{
				{ID: "a", Active: true, APR: 9},
				{ID: "b", Active: true, APR: 9},
			},
			wantID: "a",
		},
		{
			name: "inactive skipped",
			vals: []Validator{
				{ID: "jailed", Active: false, APR: 50},
				{ID: "ok", Active: true, APR: 1},
			},
			wantID: "ok",
		},
		{name: "empty", vals: nil, wantErr: true},
		{name: "all inactive", vals: []Validator{{ID: "x"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BestByAPR(tt.vals)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsNotFound(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

func TestBestByAPR_ReturnsCopy(t *testing.T) {
	vals := []Validator{{ID: "a", Active: true, APR: 1}}
	got, err := BestByAPR(vals)
	require.NoError(t, err)
	got.APR = 99
	assert.Equal(t, float64(1), vals[0].APR)
}

func TestStakedToValidator(t *testing.T) {
	holders := []Stakeholder{
		{ValidatorID: "a", Amount: math.NewInt(10)},
		{ValidatorID: "b", Amount: math.NewInt(5)},
		{ValidatorID: "a", Amount: math.NewInt(3)},
		{ValidatorID: "c"},
	}

	assert.Equal(t, int64(13), StakedToValidator(holders, "a").Int64())
	assert.Equal(t, int64(5), StakedToValidator(holders, "b").Int64())
	assert.True(t, StakedToValidator(holders, "c").IsZero())
	assert.True(t, StakedToValidator(holders, "missing").IsZero())
	assert.True(t, StakedToValidator(nil, "a").IsZero())
}

func TestFindByID(t *testing.T) {
	vals := []Validator{{ID: "a"}, {ID: "b", Name: "bee"}}
	got, err := FindByID(vals, "b")
	require.NoError(t, err)
	assert.Equal(t, "bee", got.Name)

	_, err = FindByID(vals, "z")
	assert.True(t, errors.IsNotFound(err))
}
