package cache

import (
	"context"
	"time"
)

// Cache is a key-value store with expiry, used read-aside in front of the
// payment list. It never owns authoritative data: entries may be dropped
// at any time and are rebuilt from the store on the next miss.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}
