package cosmoscore

import (
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Account is the signing metadata of an address. Fetched per build, never cached.
type Account struct {
	Address       string
	AccountNumber uint64
	Sequence      uint64
}

// Delegation is one delegator -> validator bond.
type Delegation struct {
	DelegatorAddress string
	ValidatorAddress string
	Shares           math.LegacyDec
	Balance          sdk.Coin
}

// Unbonding is a single unbonding entry still inside its lock-up period.
type Unbonding struct {
	ValidatorAddress string
	CreationHeight   int64
	CompletionTime   time.Time
	InitialBalance   math.Int
	Balance          math.Int
}

// Transaction is a confirmed transaction record as reported by the node.
type Transaction struct {
	Hash      string
	Height    int64
	Code      uint32
	Codespace string
	RawLog    string
	GasWanted int64
	GasUsed   int64
	Timestamp string
}

// Succeeded reports whether the transaction executed with code 0.
func (t *Transaction) Succeeded() bool {
	return t != nil && t.Code == 0
}

// BroadcastResult is the check-tx outcome of a sync broadcast.
type BroadcastResult struct {
	TxHash    string
	Code      uint32
	Codespace string
	RawLog    string
}

// ChainValidator is a validator as stored by the staking module.
type ChainValidator struct {
	OperatorAddress string
	Moniker         string
	Website         string
	Details         string
	Jailed          bool
	Bonded          bool
	Tokens          math.Int
	Commission      math.LegacyDec
}

// StakingPool holds bonded and not-bonded token totals.
type StakingPool struct {
	BondedTokens    math.Int
	NotBondedTokens math.Int
}
