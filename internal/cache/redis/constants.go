package redis

import "time"

// DefaultLockPrefix namespaces lock keys
const DefaultLockPrefix = "fate:lock:"

// UnlockTimeout bounds the release script
const UnlockTimeout = 5 * time.Second

const (
	ErrContextPing    = "redis ping failed"
	ErrContextAcquire = "redis: acquire lock"
)
