// Package cache provides the cycle locks that keep reminder runs from overlapping.
package cache

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"
)

// ErrLockNotHeld is returned when releasing a lock that expired or was taken over
var ErrLockNotHeld = errors.New("cache: lock not held")

// Lease is a held lock. Release is safe to call once the lease expired.
type Lease interface {
	Release(ctx context.Context) error
}

// Locker hands out leases on named keys. TryLock never blocks: it returns ok=false
// when another holder owns the key.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (lease Lease, ok bool, err error)
}

func newToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
