package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker_Exclusive(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLocker()

	release, err := l.Acquire(ctx, "check-in:u1", time.Minute)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "check-in:u1", time.Minute)
	assert.ErrorIs(t, err, ErrLocked)

	// other keys are independent
	other, err := l.Acquire(ctx, "check-in:u2", time.Minute)
	require.NoError(t, err)
	require.NoError(t, other(ctx))

	require.NoError(t, release(ctx))
	again, err := l.Acquire(ctx, "check-in:u1", time.Minute)
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}

func TestMemoryLocker_ExpiredHoldCanBeTaken(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLocker()
	now := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	stale, err := l.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	fresh, err := l.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)

	// the stale holder must not release the fresh hold
	require.NoError(t, stale(ctx))
	_, err = l.Acquire(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, ErrLocked)

	require.NoError(t, fresh(ctx))
}

func TestMemoryLocker_Concurrent(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLocker()

	var wg sync.WaitGroup
	var granted atomic.Int32
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Acquire(ctx, "same", time.Minute); err == nil {
				granted.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), granted.Load())
}

func TestMemoryLocker_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemoryLocker().Acquire(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}
