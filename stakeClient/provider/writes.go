package provider

import (
	"context"
	"time"

	"cosmossdk.io/math"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pushchain/push-stake-provider/stakeClient/config"
	"github.com/pushchain/push-stake-provider/stakeClient/confirm"
	"github.com/pushchain/push-stake-provider/stakeClient/cosmoscore"
	"github.com/pushchain/push-stake-provider/stakeClient/errors"
	"github.com/pushchain/push-stake-provider/stakeClient/metrics"
	"github.com/pushchain/push-stake-provider/stakeClient/store"
	"github.com/pushchain/push-stake-provider/stakeClient/txbuilder"
)

// Submission identifies a broadcast transaction.
type Submission struct {
	TxHash   string           `json:"tx_hash" yaml:"tx_hash"`
	Kind     txbuilder.Kind   `json:"kind" yaml:"kind"`
	Format   txbuilder.Format `json:"format" yaml:"format"`
	Sequence uint64           `json:"sequence" yaml:"sequence"`
}

type buildFunc func(in txbuilder.Input, validator string, amount math.Int, format txbuilder.Format) (*txbuilder.Description, error)

// FormatsFor returns the wire formats tried, in order, for a configured policy.
// Auto tries legacy and then current; explicit selections are tried alone.
func FormatsFor(policy config.TxFormat) ([]txbuilder.Format, error) {
	switch policy {
	case "", config.TxFormatAuto:
		return []txbuilder.Format{txbuilder.FormatLegacy, txbuilder.FormatCurrent}, nil
	case config.TxFormatLegacy:
		return []txbuilder.Format{txbuilder.FormatLegacy}, nil
	case config.TxFormatCurrent:
		return []txbuilder.Format{txbuilder.FormatCurrent}, nil
	default:
		return nil, errors.NewConfigError("FormatsFor", "unknown tx format "+string(policy))
	}
}

// Stake delegates amount base units to validator.
func (p *Provider) Stake(ctx context.Context, validator string, amount math.Int) (*Submission, error) {
	return p.submit(ctx, txbuilder.KindStake, txbuilder.BuildStake, validator, amount)
}

// Unstake withdraws rewards from validator and undelegates amount base units.
func (p *Provider) Unstake(ctx context.Context, validator string, amount math.Int) (*Submission, error) {
	return p.submit(ctx, txbuilder.KindUnstake, txbuilder.BuildUnstake, validator, amount)
}

// StakeAndWait stakes and blocks until the transaction is confirmed.
func (p *Provider) StakeAndWait(ctx context.Context, validator string, amount math.Int) (*cosmoscore.Transaction, error) {
	sub, err := p.Stake(ctx, validator, amount)
	if err != nil {
		return nil, err
	}
	return p.WaitForConfirmation(ctx, sub.TxHash)
}

// UnstakeAndWait unstakes and blocks until the transaction is confirmed.
func (p *Provider) UnstakeAndWait(ctx context.Context, validator string, amount math.Int) (*cosmoscore.Transaction, error) {
	sub, err := p.Unstake(ctx, validator, amount)
	if err != nil {
		return nil, err
	}
	return p.WaitForConfirmation(ctx, sub.TxHash)
}

// snapshot resolves config, account and chain id together for one build.
func (p *Provider) snapshot(ctx context.Context) (txbuilder.Input, error) {
	cfg, err := p.coinConfig(ctx)
	if err != nil {
		return txbuilder.Input{}, err
	}

	var (
		account *cosmoscore.Account
		chainID string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr, err := p.address(gctx, cfg)
		if err != nil {
			return err
		}
		account, err = p.chain.GetAccount(gctx, addr)
		return err
	})
	g.Go(func() (err error) {
		chainID, err = p.chainID.ChainID(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return txbuilder.Input{}, errors.WrapCode(err, errors.ErrCodeBuildFailed, "snapshot", "failed to resolve build inputs")
	}

	return txbuilder.Input{Config: cfg, Account: *account, ChainID: chainID}, nil
}

func (p *Provider) submit(ctx context.Context, kind txbuilder.Kind, build buildFunc, validator string, amount math.Int) (*Submission, error) {
	in, err := p.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	formats, err := FormatsFor(in.Config.Format)
	if err != nil {
		return nil, err
	}

	log := p.log.With().
		Str("kind", string(kind)).
		Str("validator", validator).
		Str("amount", amount.String()).
		Uint64("sequence", in.Account.Sequence).
		Logger()

	var (
		desc   *txbuilder.Description
		signed *signedTx
	)
	for i, format := range formats {
		if desc == nil {
			desc, err = build(in, validator, amount, format)
		} else {
			desc, err = desc.Rebuild(format)
		}
		if err != nil {
			return nil, err
		}

		signed, err = p.sign(ctx, in.Config.CoinType, desc)
		if err == nil {
			break
		}

		p.metrics.ObserveSignFailure(string(format))
		if i == len(formats)-1 {
			log.Error().Err(err).Str("format", string(format)).Msg("signing failed")
			return nil, errors.WrapCode(err, errors.ErrCodeSignFailed, "submit", "signing failed")
		}
		p.metrics.ObserveFallback()
		log.Warn().Err(err).Str("format", string(format)).Str("next_format", string(formats[i+1])).
			Msg("signing failed; retrying with next format")
	}

	res, err := p.chain.BroadcastTx(ctx, signed.bytes)
	if err != nil {
		log.Error().Err(err).Str("tx_hash", signed.hash).Msg("broadcast failed")
		return nil, errors.WrapCode(err, errors.ErrCodeBroadcastFailed, "submit", "broadcast failed")
	}

	hash := res.TxHash
	if hash == "" {
		hash = signed.hash
	}
	p.metrics.ObserveBroadcast(string(kind), string(desc.Format))

	if p.journal != nil {
		p.journalBroadcast(log, hash, in.Config.CoinType, desc)
	}

	ev := log.Info().Str("tx_hash", hash).Str("format", string(desc.Format))
	if urls, err := desc.TypeURLs(); err == nil {
		ev = ev.Strs("messages", urls)
	}
	ev.Msg("transaction broadcast")
	return &Submission{TxHash: hash, Kind: kind, Format: desc.Format, Sequence: desc.Sequence}, nil
}

func (p *Provider) journalBroadcast(log zerolog.Logger, hash string, coinType uint32, desc *txbuilder.Description) {
	fields, err := desc.Fields()
	if err != nil {
		log.Warn().Err(err).Str("tx_hash", hash).Msg("broadcast not journaled")
		return
	}
	entry := &store.StakeTransaction{
		TxHash:    hash,
		CoinType:  coinType,
		Kind:      string(desc.Kind),
		Delegator: fields.Delegator,
		Validator: fields.Validator,
		Amount:    fields.Amount.Amount.String(),
		Denom:     fields.Amount.Denom,
		Format:    string(desc.Format),
		Sequence:  desc.Sequence,
	}
	if err := p.journal.RecordBroadcast(entry); err != nil {
		log.Warn().Err(err).Str("tx_hash", hash).Msg("failed to journal broadcast")
	}
}

type signedTx struct {
	bytes []byte
	hash  string
}

func (p *Provider) sign(ctx context.Context, coinType uint32, desc *txbuilder.Description) (*signedTx, error) {
	payload, err := p.auth.SignTransaction(ctx, coinType, desc)
	if err != nil {
		return nil, err
	}
	if payload == nil || len(payload.TxBytes) == 0 {
		return nil, errors.NewSignError("sign", "signer returned an empty payload", nil)
	}
	return &signedTx{bytes: payload.TxBytes, hash: payload.TxHash}, nil
}

// WaitForConfirmation polls until hash is included. Lookup errors are treated
// as "not yet available"; the wait ends on inclusion, ctx cancellation or the
// configured bound.
func (p *Provider) WaitForConfirmation(ctx context.Context, hash string) (*cosmoscore.Transaction, error) {
	cfg := p.confirmation
	userHook := cfg.OnPoll
	cfg.OnPoll = func(h string, attempt int, state confirm.State) {
		if state == confirm.StateConfirmed {
			p.metrics.ObservePoll(metrics.PollConfirmed)
		} else {
			p.metrics.ObservePoll(metrics.PollPending)
		}
		if userHook != nil {
			userHook(h, attempt, state)
		}
	}

	started := time.Now()
	tx, err := confirm.NewPoller(p.chain, cfg).Wait(ctx, hash)
	if err != nil {
		if errors.Is(err, errors.ErrConfirmationTimeout) && p.journal != nil {
			if jerr := p.journal.MarkFailed(hash, err.Error()); jerr != nil {
				p.log.Debug().Err(jerr).Str("tx_hash", hash).Msg("journal not updated")
			}
		}
		return nil, err
	}

	p.metrics.ObserveConfirmation(time.Since(started))
	if p.journal != nil {
		if jerr := p.journal.MarkConfirmed(hash, tx.Height, tx.Code, tx.RawLog); jerr != nil {
			p.log.Debug().Err(jerr).Str("tx_hash", hash).Msg("journal not updated")
		}
	}
	return tx, nil
}
