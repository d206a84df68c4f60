package interfaces

import (
	"context"
	"errors"
)

// ErrNotFound is returned by KeyValueStore.Get for a missing key.
var ErrNotFound = errors.New("key not found")

// KeyValueStore is durable client storage: the equivalent of browser local
// storage, holding the bearer token and the persisted session.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}
