package concurrency

import (
	"context"
	"sync"
	"time"

	"github.com/osse101/FateProtocol_Go/internal/domain"
)

// Locker hands out named, non-blocking locks. Acquire returns domain.ErrLockHeld
// when another owner holds key. The returned unlock func is safe to call twice.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// LockManager handles named in-process locks
type LockManager struct {
	locks sync.Map
}

// NewLockManager creates a new LockManager
func NewLockManager() *LockManager {
	return &LockManager{}
}

// GetLock returns a mutex for the given key
func (lm *LockManager) GetLock(key string) *sync.Mutex {
	lock, _ := lm.locks.LoadOrStore(key, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// Acquire try-locks key. The ttl is ignored: in-process locks die with the process.
func (lm *LockManager) Acquire(_ context.Context, key string, _ time.Duration) (func(), error) {
	mu := lm.GetLock(key)
	if !mu.TryLock() {
		return nil, domain.ErrLockHeld
	}

	var once sync.Once
	return func() { once.Do(mu.Unlock) }, nil
}

var _ Locker = (*LockManager)(nil)
