package models

import "context"

// * KeyValueStore is the persistence behind the response cache.
// * Get returns nil, nil when the key does not exist.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
