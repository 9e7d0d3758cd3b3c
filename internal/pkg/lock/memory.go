package lock

import (
	"context"
	"sync"
	"time"
)

// MemoryLocker is a process-local Locker for single instance deployments and tests.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]hold
	now  func() time.Time
	seq  uint64
}

type hold struct {
	id      uint64
	expires time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]hold), now: time.Now}
}

func (l *MemoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Release, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if h, ok := l.held[key]; ok && now.Before(h.expires) {
		return nil, ErrLocked
	}

	l.seq++
	id := l.seq
	l.held[key] = hold{id: id, expires: now.Add(ttl)}

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		// only drop our own hold, a later holder may own the key after expiry
		if h, ok := l.held[key]; ok && h.id == id {
			delete(l.held, key)
		}
		return nil
	}, nil
}
