package validators

import (
	"cosmossdk.io/math"

	"github.com/pushchain/push-stake-provider/stakeClient/errors"
)

// BestByAPR returns the active validator with the highest APR. Ties keep the
// earlier entry.
func BestByAPR(vals []Validator) (*Validator, error) {
	var best *Validator
	for i := range vals {
		v := &vals[i]
		if !v.Active {
			continue
		}
		if best == nil || v.APR > best.APR {
			best = v
		}
	}
	if best == nil {
		return nil, errors.NewNotFoundError("BestByAPR", "no active validators")
	}
	out := *best
	return &out, nil
}

// StakedToValidator sums the stakeholder entries for id; zero when absent.
func StakedToValidator(holders []Stakeholder, id string) math.Int {
	total := math.ZeroInt()
	for _, h := range holders {
		if h.ValidatorID == id && !h.Amount.IsNil() {
			total = total.Add(h.Amount)
		}
	}
	return total
}

// FindByID returns the validator with id from vals.
func FindByID(vals []Validator, id string) (*Validator, error) {
	for i := range vals {
		if vals[i].ID == id {
			out := vals[i]
			return &out, nil
		}
	}
	return nil, errors.NewNotFoundError("FindByID", "validator "+id+" not listed")
}
