package repository

import "context"

// KVStore is the key-value half of the durable store. Values are opaque
// JSON bytes. Get returns (nil, nil) on a missing key; a Set is atomic per
// call, either fully visible to subsequent Gets or not visible at all.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
