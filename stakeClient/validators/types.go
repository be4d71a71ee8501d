// Package validators lists staking validators and picks the best-yield one.
package validators

import (
	"context"
	"time"

	"cosmossdk.io/math"
)

// Validator is a staking validator as presented to wallet users.
type Validator struct {
	ID            string        `json:"id" yaml:"id"`
	Name          string        `json:"name" yaml:"name"`
	Description   string        `json:"description,omitempty" yaml:"description,omitempty"`
	Image         string        `json:"image,omitempty" yaml:"image,omitempty"`
	Website       string        `json:"website,omitempty" yaml:"website,omitempty"`
	Active        bool          `json:"active" yaml:"active"`
	APR           float64       `json:"apr" yaml:"apr"` // annual percentage, e.g. 9.5
	LockTime      time.Duration `json:"lock_time" yaml:"lock_time"`
	MinimumAmount math.Int      `json:"minimum_amount" yaml:"minimum_amount"`
}

// Stakeholder is the amount one address has staked to a validator.
type Stakeholder struct {
	ValidatorID string   `json:"validator_id" yaml:"validator_id"`
	Amount      math.Int `json:"amount" yaml:"amount"`
}

// Directory lists validators for a coin type.
type Directory interface {
	GetValidators(ctx context.Context, coinType uint32) ([]Validator, error)
	GetValidator(ctx context.Context, coinType uint32, id string) (*Validator, error)
}
