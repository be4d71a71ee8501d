package validators

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/pushchain/push-stake-provider/stakeClient/errors"
	"github.com/pushchain/push-stake-provider/stakeClient/httpclient"
)

type blockatlasResponse struct {
	Docs []blockatlasValidator `json:"docs"`
}

type blockatlasValidator struct {
	ID     string `json:"id"`
	Status bool   `json:"status"`
	Info   struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Image       string `json:"image"`
		Website     string `json:"website"`
	} `json:"info"`
	Details struct {
		Reward struct {
			Annual float64 `json:"annual"`
		} `json:"reward"`
		LockTime      int64  `json:"locktime"`
		MinimumAmount string `json:"minimum_amount"`
	} `json:"details"`
}

// BlockatlasDirectory lists validators from a Blockatlas staking API.
type BlockatlasDirectory struct {
	client *httpclient.Client
	coins  map[uint32]string
	log    zerolog.Logger
}

// NewBlockatlasDirectory serves the coin types in coins (coin type -> blockatlas handle).
func NewBlockatlasDirectory(client *httpclient.Client, coins map[uint32]string, log zerolog.Logger) *BlockatlasDirectory {
	return &BlockatlasDirectory{
		client: client,
		coins:  coins,
		log:    log.With().Str("component", "blockatlas_validators").Logger(),
	}
}

var _ Directory = (*BlockatlasDirectory)(nil)

// GetValidators implements Directory.
func (d *BlockatlasDirectory) GetValidators(ctx context.Context, coinType uint32) ([]Validator, error) {
	coin, ok := d.coins[coinType]
	if !ok {
		return nil, errors.NewNotFoundError("GetValidators", fmt.Sprintf("coin type %d is not served by blockatlas", coinType))
	}

	var resp blockatlasResponse
	path := fmt.Sprintf("/v2/%s/staking/validators", strings.ToLower(coin))
	if err := d.client.GetJSON(ctx, "GetValidators", path, nil, &resp); err != nil {
		return nil, err
	}

	out := make([]Validator, 0, len(resp.Docs))
	for _, doc := range resp.Docs {
		minimum, ok := math.NewIntFromString(doc.Details.MinimumAmount)
		if !ok {
			minimum = math.ZeroInt()
		}
		out = append(out, Validator{
			ID:            doc.ID,
			Name:          doc.Info.Name,
			Description:   doc.Info.Description,
			Image:         doc.Info.Image,
			Website:       doc.Info.Website,
			Active:        doc.Status,
			APR:           doc.Details.Reward.Annual,
			LockTime:      time.Duration(doc.Details.LockTime) * time.Second,
			MinimumAmount: minimum,
		})
	}
	d.log.Debug().Str("coin", coin).Int("count", len(out)).Msg("fetched validators")
	return out, nil
}

// GetValidator implements Directory.
func (d *BlockatlasDirectory) GetValidator(ctx context.Context, coinType uint32, id string) (*Validator, error) {
	vals, err := d.GetValidators(ctx, coinType)
	if err != nil {
		return nil, err
	}
	return FindByID(vals, id)
}
