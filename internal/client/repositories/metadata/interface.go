// Package metadata is the key/value table backing the local session store.
package metadata

import (
	"context"
)

// Repository reads and writes opaque values by key. Get returns (nil, nil)
// for a missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, keys ...string) error
	Keys(ctx context.Context) ([]string, error)
}
