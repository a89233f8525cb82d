package cache

import (
	"context"
	"sync"
	"time"
)

// InMemoryLocker implements Locker inside one process. It only serializes cycles
// of the same process, which is all a single worker deployment needs.
type InMemoryLocker struct {
	mu    sync.Mutex
	held  map[string]memoryLock
	clock func() time.Time
}

type memoryLock struct {
	token     string
	expiresAt time.Time
}

// NewInMemoryLocker creates an in-process locker
func NewInMemoryLocker() *InMemoryLocker {
	return &InMemoryLocker{held: make(map[string]memoryLock), clock: time.Now}
}

// TryLock takes key unless a live lease holds it
func (l *InMemoryLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (Lease, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if cur, ok := l.held[key]; ok && now.Before(cur.expiresAt) {
		return nil, false, nil
	}
	token := newToken()
	l.held[key] = memoryLock{token: token, expiresAt: now.Add(ttl)}
	return &memoryLease{locker: l, key: key, token: token}, true, nil
}

// Size returns the number of keys currently tracked
func (l *InMemoryLocker) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.held)
}

type memoryLease struct {
	locker *InMemoryLocker
	key    string
	token  string
}

func (m *memoryLease) Release(ctx context.Context) error {
	m.locker.mu.Lock()
	defer m.locker.mu.Unlock()
	cur, ok := m.locker.held[m.key]
	if !ok || cur.token != m.token {
		return ErrLockNotHeld
	}
	delete(m.locker.held, m.key)
	return nil
}
