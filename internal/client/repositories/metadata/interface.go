// Package metadata is a small key-value table used for the process state
// that outlives a run: credentials, the sync cursor and app settings.
// A missing key is reported as a nil value, not an error.
package metadata

import (
	"context"
)

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
