package api

import "time"

// QueryResponse represents the standard query response format
type QueryResponse struct {
	Data        interface{} `json:"data"`
	LastFetched time.Time   `json:"last_fetched"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Retryable bool   `json:"retryable,omitempty"` // transient upstream failure
}

// AmountResponse carries a base-unit amount.
type AmountResponse struct {
	Amount string `json:"amount"`
	Denom  string `json:"denom,omitempty"`
}

// ValidatorStakeResponse is the amount staked to one validator.
type ValidatorStakeResponse struct {
	ValidatorID string `json:"validator_id"`
	Amount      string `json:"amount"`
}
