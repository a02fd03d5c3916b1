// Package slots defines the durable key/value medium that persistent state is
// written to. Each slot holds one JSON document under a fixed name.
package slots

import (
	"context"
	"errors"
)

// ErrSlotNotFound is returned by Read when nothing is stored under the key.
var ErrSlotNotFound = errors.New("slot not found")

// Medium stores raw slot bytes. Implementations must be safe for concurrent use.
type Medium interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
	Remove(ctx context.Context, key string) error
}
