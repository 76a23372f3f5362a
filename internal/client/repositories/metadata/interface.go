// Package metadata stores small key/value facts about the local CLI
// installation, such as who was last signed in.
package metadata

import (
	"context"
)

// Repository is a flat key/value store. Get returns (nil, nil) for a key that
// was never set.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Clear(ctx context.Context) error
}
