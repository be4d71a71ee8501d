package confirm

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pushchain/push-stake-provider/stakeClient/cosmoscore"
	"github.com/pushchain/push-stake-provider/stakeClient/errors"
)

// scriptedFetcher fails until call number resolveOn, then returns tx.
type scriptedFetcher struct {
	calls     atomic.Int32
	resolveOn int32 // 0 means never
	tx        *cosmoscore.Transaction
	notFound  bool
}

func (f *scriptedFetcher) GetTx(_ context.Context, hash string) (*cosmoscore.Transaction, error) {
	n := f.calls.Add(1)
	if f.resolveOn > 0 && n >= f.resolveOn {
		return f.tx, nil
	}
	if f.notFound {
		return nil, errors.NewNotFoundError("GetTx", hash)
	}
	return nil, fmt.Errorf("rpc unavailable")
}

func newTestPoller(f TxFetcher, cfg Config) *Poller {
	if cfg.Interval == 0 {
		cfg.Interval = time.Millisecond
	}
	cfg.Logger = zerolog.Nop()
	return NewPoller(f, cfg)
}

func TestWait_ResolvesOnNthPoll(t *testing.T) {
	for _, n := range []int32{1, 2, 5, 12} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			want := &cosmoscore.Transaction{Hash: "ABC", Height: 10}
			f := &scriptedFetcher{resolveOn: n, tx: want, notFound: n%2 == 0}

			got, err := newTestPoller(f, Config{}).Wait(context.Background(), "ABC")
			require.NoError(t, err)
			assert.Same(t, want, got)
			assert.Equal(t, n, f.calls.Load())
		})
	}
}

func TestWait_NeverResolvesUntilCancelled(t *testing.T) {
	f := &scriptedFetcher{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := newTestPoller(f, Config{}).Wait(ctx, "ABC")
		done <- err
	}()

	require.Eventually(t, func() bool { return f.calls.Load() >= 20 }, 2*time.Second, time.Millisecond)
	select {
	case err := <-done:
		t.Fatalf("poller returned before cancellation: %v", err)
	default:
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop after cancellation")
	}
}

func TestWait_MaxAttempts(t *testing.T) {
	f := &scriptedFetcher{}
	_, err := newTestPoller(f, Config{MaxAttempts: 4}).Wait(context.Background(), "ABC")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfirmationTimeout))
	assert.Equal(t, int32(4), f.calls.Load())
}

func TestWait_MaxAttemptsStillReturnsLastHit(t *testing.T) {
	f := &scriptedFetcher{resolveOn: 3, tx: &cosmoscore.Transaction{Hash: "ABC"}}
	got, err := newTestPoller(f, Config{MaxAttempts: 3}).Wait(context.Background(), "ABC")
	require.NoError(t, err)
	assert.Equal(t, "ABC", got.Hash)
}

func TestWait_Timeout(t *testing.T) {
	f := &scriptedFetcher{}
	start := time.Now()
	_, err := newTestPoller(f, Config{Interval: 5 * time.Millisecond, Timeout: 40 * time.Millisecond}).
		Wait(context.Background(), "ABC")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfirmationTimeout))
	assert.Less(t, time.Since(start), time.Second)
}

func TestWait_EmptyHash(t *testing.T) {
	_, err := newTestPoller(&scriptedFetcher{}, Config{}).Wait(context.Background(), "")
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestWait_OnPoll(t *testing.T) {
	var (
		mu     sync.Mutex
		states []State
	)
	f := &scriptedFetcher{resolveOn: 3, tx: &cosmoscore.Transaction{Hash: "ABC"}}
	_, err := newTestPoller(f, Config{OnPoll: func(_ string, attempt int, s State) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, len(states)+1, attempt)
		states = append(states, s)
	}}).Wait(context.Background(), "ABC")
	require.NoError(t, err)
	assert.Equal(t, []State{StatePending, StatePending, StateConfirmed}, states)
}
