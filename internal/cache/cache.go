package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned when a key is not found in cache
var ErrCacheMiss = errors.New("cache miss")

// Cache defines the cache interface
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// SetNX stores the value only when the key is absent and reports whether it did
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// VerificationKey is the replay key of a scan submitted with an Idempotency-Key
// header. The scanned code is part of the key, so a reused header only replays
// the verdict of the same pass.
func VerificationKey(tenantID, idempotencyKey, code string) string {
	return "verify:" + tenantID + ":" + idempotencyKey + ":" + code
}
