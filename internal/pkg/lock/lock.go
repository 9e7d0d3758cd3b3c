package lock

import (
	"context"
	"errors"
	"time"
)

// ErrLocked is returned when the key is already held by someone else.
var ErrLocked = errors.New("lock is held")

// Locker grants short-lived exclusive holds on a key. Holds expire after ttl
// even if never released, so a crashed holder cannot block the key forever.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Release, error)
}

// Release gives up a hold. Calling it after the hold expired is harmless.
type Release func(ctx context.Context) error
