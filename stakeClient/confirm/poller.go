// Package confirm waits for broadcast transactions to be included on chain.
package confirm

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pushchain/push-stake-provider/stakeClient/cosmoscore"
	"github.com/pushchain/push-stake-provider/stakeClient/errors"
)

// State of a transaction as seen by the poller.
type State string

const (
	StatePending   State = "PENDING"
	StateConfirmed State = "CONFIRMED"
)

const defaultInterval = 3 * time.Second

// TxFetcher looks a transaction up by hash.
type TxFetcher interface {
	GetTx(ctx context.Context, hash string) (*cosmoscore.Transaction, error)
}

// PollFunc observes every poll. attempt starts at 1.
type PollFunc func(hash string, attempt int, state State)

// Config bounds the poller. Zero Timeout and MaxAttempts poll until the
// context is cancelled.
type Config struct {
	Interval    time.Duration
	Timeout     time.Duration
	MaxAttempts int
	OnPoll      PollFunc
	Logger      zerolog.Logger
}

// Poller polls a TxFetcher on a fixed interval until the transaction appears.
type Poller struct {
	fetcher     TxFetcher
	interval    time.Duration
	timeout     time.Duration
	maxAttempts int
	onPoll      PollFunc
	logger      zerolog.Logger
}

// NewPoller creates a Poller.
func NewPoller(fetcher TxFetcher, cfg Config) *Poller {
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Poller{
		fetcher:     fetcher,
		interval:    interval,
		timeout:     cfg.Timeout,
		maxAttempts: cfg.MaxAttempts,
		onPoll:      cfg.OnPoll,
		logger:      cfg.Logger.With().Str("component", "confirm_poller").Logger(),
	}
}

// Wait blocks until hash is found and returns that transaction. Fetch errors
// count as "not yet available". The first poll happens one interval after the
// call. ctx cancellation returns ctx.Err(); exceeding Timeout or MaxAttempts
// returns CONFIRMATION_TIMEOUT.
func (p *Poller) Wait(ctx context.Context, hash string) (*cosmoscore.Transaction, error) {
	if hash == "" {
		return nil, errors.NewValidationError("confirm.Wait", "tx hash is empty")
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var deadline <-chan time.Time
	if p.timeout > 0 {
		timer := time.NewTimer(p.timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	started := time.Now()
	attempt := 0
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline:
			return nil, errors.NewTimeoutError("confirm.Wait",
				fmt.Sprintf("tx %s not confirmed within %s", hash, p.timeout)).
				WithContext("attempts", attempt)
		case <-ticker.C:
		}

		attempt++
		tx, err := p.fetcher.GetTx(ctx, hash)
		if err == nil && tx != nil {
			p.observe(hash, attempt, StateConfirmed)
			p.logger.Info().
				Str("tx_hash", hash).
				Int64("height", tx.Height).
				Int("attempts", attempt).
				Dur("elapsed", time.Since(started)).
				Msg("transaction confirmed")
			return tx, nil
		}

		p.observe(hash, attempt, StatePending)
		if err != nil {
			p.logger.Debug().Err(err).Str("tx_hash", hash).Int("attempt", attempt).Msg("tx not yet available")
		}

		if p.maxAttempts > 0 && attempt >= p.maxAttempts {
			return nil, errors.NewTimeoutError("confirm.Wait",
				fmt.Sprintf("tx %s not confirmed after %d polls", hash, attempt)).
				WithContext("attempts", attempt)
		}
	}
}

func (p *Poller) observe(hash string, attempt int, state State) {
	if p.onPoll != nil {
		p.onPoll(hash, attempt, state)
	}
}
