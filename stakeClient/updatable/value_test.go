package updatable

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counter() (FetchFunc[int], *atomic.Int32) {
	var n atomic.Int32
	return func(context.Context) (int, error) {
		return int(n.Add(1)), nil
	}, &n
}

func TestValue_Refresh(t *testing.T) {
	fetch, _ := counter()
	v := New("balance", fetch, time.Hour, zerolog.Nop())
	assert.Equal(t, "balance", v.Name())

	_, _, ok := v.Get()
	assert.False(t, ok)

	got, err := v.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	val, at, ok := v.Get()
	assert.True(t, ok)
	assert.Equal(t, 1, val)
	assert.False(t, at.IsZero())
}

func TestValue_FailedRefreshKeepsPrevious(t *testing.T) {
	fail := false
	v := New("staked", func(context.Context) (string, error) {
		if fail {
			return "", fmt.Errorf("upstream down")
		}
		return "100", nil
	}, time.Hour, zerolog.Nop())

	_, err := v.Refresh(context.Background())
	require.NoError(t, err)

	fail = true
	_, err = v.Refresh(context.Background())
	require.Error(t, err)
	assert.EqualError(t, v.Err(), "upstream down")

	val, _, ok := v.Get()
	assert.True(t, ok)
	assert.Equal(t, "100", val)
}

func TestValue_Subscribe(t *testing.T) {
	fetch, _ := counter()
	v := New("balance", fetch, time.Hour, zerolog.Nop())

	ch, unsubscribe := v.Subscribe()
	_, _ = v.Refresh(context.Background())
	_, _ = v.Refresh(context.Background())

	// Only the latest value is retained for a slow reader.
	assert.Equal(t, 2, <-ch)

	unsubscribe()
	unsubscribe()
	_, _ = v.Refresh(context.Background())
	select {
	case got := <-ch:
		t.Fatalf("unexpected value after unsubscribe: %d", got)
	default:
	}

	late, stop := v.Subscribe()
	defer stop()
	assert.Equal(t, 3, <-late, "late subscribers get the current value")
}

func TestValue_Start(t *testing.T) {
	fetch, n := counter()
	v := New("balance", fetch, 5*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	v.Start(ctx)

	require.Eventually(t, func() bool { return n.Load() >= 3 }, 2*time.Second, time.Millisecond)
	cancel()

	time.Sleep(20 * time.Millisecond)
	stopped := n.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, n.Load())
}
