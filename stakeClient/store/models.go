// Package store contains GORM-backed SQLite models for the local transaction journal.
//
// Database Structure (database file: journal.db):
//
//	databases/
//	└── journal.db
//	    └── stake_transactions
package store

import (
	"gorm.io/gorm"
)

// Journal statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusFailed    = "failed"
)

// StakeTransaction records a broadcast stake or unstake and its outcome.
// It is never read back into transaction building.
type StakeTransaction struct {
	gorm.Model
	TxHash    string `gorm:"uniqueIndex;not null"`
	CoinType  uint32 `gorm:"index"`
	Kind      string // "stake" or "unstake"
	Delegator string `gorm:"index"`
	Validator string
	Amount    string // base units
	Denom     string
	Format    string // "legacy" or "current"
	Sequence  uint64
	Status    string `gorm:"index;not null"` // "pending", "confirmed", "failed"
	Height    int64
	Code      uint32
	RawLog    string `gorm:"type:text"`
}
