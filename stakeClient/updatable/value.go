// Package updatable keeps values that are periodically re-fetched from upstream.
package updatable

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// FetchFunc loads the current upstream value.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Value caches the last successful fetch and notifies subscribers on change.
// A failed refresh keeps the previous value.
type Value[T any] struct {
	name     string
	fetch    FetchFunc[T]
	interval time.Duration
	logger   zerolog.Logger

	mu        sync.RWMutex
	val       T
	loaded    bool
	updatedAt time.Time
	lastErr   error
	subs      map[int]chan T
	nextSub   int
}

// New creates a Value refreshed every interval once started.
func New[T any](name string, fetch FetchFunc[T], interval time.Duration, logger zerolog.Logger) *Value[T] {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Value[T]{
		name:     name,
		fetch:    fetch,
		interval: interval,
		logger:   logger.With().Str("component", "updatable").Str("value", name).Logger(),
		subs:     make(map[int]chan T),
	}
}

// Name returns the label the value was created with.
func (v *Value[T]) Name() string {
	return v.name
}

// Refresh fetches once and publishes the result.
func (v *Value[T]) Refresh(ctx context.Context) (T, error) {
	val, err := v.fetch(ctx)

	v.mu.Lock()
	if err != nil {
		v.lastErr = err
		v.mu.Unlock()
		v.logger.Warn().Err(err).Msg("refresh failed; keeping previous value")
		var zero T
		return zero, err
	}
	v.val = val
	v.loaded = true
	v.updatedAt = time.Now()
	v.lastErr = nil
	subs := make([]chan T, 0, len(v.subs))
	for _, ch := range v.subs {
		subs = append(subs, ch)
	}
	v.mu.Unlock()

	for _, ch := range subs {
		publish(ch, val)
	}
	return val, nil
}

// publish delivers val to a 1-slot channel, replacing an unread older value.
func publish[T any](ch chan T, val T) {
	for {
		select {
		case ch <- val:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Get returns the cached value, when it was fetched and whether any fetch has succeeded.
func (v *Value[T]) Get() (T, time.Time, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.val, v.updatedAt, v.loaded
}

// Err returns the error of the latest refresh, nil if it succeeded.
func (v *Value[T]) Err() error {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.lastErr
}

// Subscribe returns a channel receiving the latest value after each successful
// refresh, and a func that unsubscribes.
func (v *Value[T]) Subscribe() (<-chan T, func()) {
	ch := make(chan T, 1)

	v.mu.Lock()
	id := v.nextSub
	v.nextSub++
	v.subs[id] = ch
	if v.loaded {
		ch <- v.val
	}
	v.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			v.mu.Lock()
			delete(v.subs, id)
			v.mu.Unlock()
		})
	}
}

// Start refreshes immediately and then every interval until ctx is done.
func (v *Value[T]) Start(ctx context.Context) {
	go v.run(ctx)
}

func (v *Value[T]) run(ctx context.Context) {
	_, _ = v.Refresh(ctx)

	ticker := time.NewTicker(v.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = v.Refresh(ctx)
		}
	}
}
