package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pushchain/push-stake-provider/stakeClient/errors"
	"github.com/pushchain/push-stake-provider/stakeClient/httpclient"
)

const blockatlasBody = `{
  "docs": [
    {
      "id": "cosmosvaloper1alpha",
      "status": true,
      "info": {"name": "Alpha", "description": "first", "image": "https://img/alpha.png", "website": "https://alpha"},
      "details": {"reward": {"annual": 8.25}, "locktime": 1814400, "minimum_amount": "1000", "type": "delegate"}
    },
    {
      "id": "cosmosvaloper1beta",
      "status": false,
      "info": {"name": "Beta"},
      "details": {"reward": {"annual": 12}, "locktime": 1814400, "minimum_amount": ""}
    }
  ]
}`

func newBlockatlas(t *testing.T) *BlockatlasDirectory {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/cosmos/staking/validators" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(blockatlasBody))
	}))
	t.Cleanup(srv.Close)

	client := httpclient.New(httpclient.Opts{BaseURL: srv.URL})
	return NewBlockatlasDirectory(client, map[uint32]string{118: "Cosmos"}, zerolog.Nop())
}

func TestBlockatlas_GetValidators(t *testing.T) {
	d := newBlockatlas(t)

	vals, err := d.GetValidators(context.Background(), 118)
	require.NoError(t, err)
	require.Len(t, vals, 2)

	alpha := vals[0]
	assert.Equal(t, "cosmosvaloper1alpha", alpha.ID)
	assert.Equal(t, "Alpha", alpha.Name)
	assert.True(t, alpha.Active)
	assert.Equal(t, 8.25, alpha.APR)
	assert.Equal(t, 21*24*time.Hour, alpha.LockTime)
	assert.Equal(t, int64(1000), alpha.MinimumAmount.Int64())

	assert.False(t, vals[1].Active)
	assert.True(t, vals[1].MinimumAmount.IsZero())

	best, err := BestByAPR(vals)
	require.NoError(t, err)
	assert.Equal(t, "cosmosvaloper1alpha", best.ID, "inactive beta is ignored despite higher APR")
}

func TestBlockatlas_GetValidator(t *testing.T) {
	d := newBlockatlas(t)

	v, err := d.GetValidator(context.Background(), 118, "cosmosvaloper1beta")
	require.NoError(t, err)
	assert.Equal(t, "Beta", v.Name)

	_, err = d.GetValidator(context.Background(), 118, "cosmosvaloper1gamma")
	assert.True(t, errors.IsNotFound(err))
}

func TestBlockatlas_UnknownCoinType(t *testing.T) {
	d := newBlockatlas(t)
	_, err := d.GetValidators(context.Background(), 60)
	assert.True(t, errors.IsNotFound(err))
}
