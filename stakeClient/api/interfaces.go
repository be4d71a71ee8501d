package api

import (
	"context"
	"time"

	"cosmossdk.io/math"

	"github.com/pushchain/push-stake-provider/stakeClient/provider"
	"github.com/pushchain/push-stake-provider/stakeClient/store"
	"github.com/pushchain/push-stake-provider/stakeClient/validators"
)

// CoinProvider defines the read operations needed by the API server
type CoinProvider interface {
	Address(ctx context.Context) (string, error)
	Balance(ctx context.Context) (math.Int, error)
	StakedAmount(ctx context.Context) (math.Int, error)
	StakingRewards(ctx context.Context) (math.LegacyDec, error)
	PendingUnbonds(ctx context.Context) (*provider.PendingUnbonds, error)
	Validators(ctx context.Context) ([]validators.Validator, error)
	BestValidator(ctx context.Context) (*validators.Validator, error)
	GetStakedToValidator(ctx context.Context, id string) (math.Int, error)
	Rate(ctx context.Context) (math.LegacyDec, error)
}

// TxJournal defines the journal lookups exposed by the API server
type TxJournal interface {
	Get(hash string) (*store.StakeTransaction, error)
	List(limit int) ([]store.StakeTransaction, error)
	ListByStatus(status string, limit int) ([]store.StakeTransaction, error)
}

// AmountSource is a periodically refreshed amount, see updatable.Value.
type AmountSource interface {
	Get() (math.Int, time.Time, bool)
}
