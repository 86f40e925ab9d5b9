package storage

import (
	"context"
	"errors"
)

// Store is a string key-value slot store. Callers own the encoding of values.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

var ErrKeyNotFound = errors.New("key not found")
