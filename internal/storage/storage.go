// Package storage persists encoded tile documents. Implementations range from
// a directory of JSON files to Redis and Postgres, and can be layered with
// Chain.
package storage

import (
	"context"
	"fmt"
	"strconv"
)

// Key identifies one tile document: the tile coordinate and the fingerprint
// of the options it was generated with.
type Key struct {
	X, Y        float64
	Fingerprint uint64
}

// String returns a stable, filename-safe representation of k.
func (k Key) String() string {
	return fmt.Sprintf("%s_%s_%016x",
		strconv.FormatFloat(k.X, 'g', -1, 64),
		strconv.FormatFloat(k.Y, 'g', -1, 64),
		k.Fingerprint,
	)
}

// Store reads and writes encoded tiles. Get reports found=false with a nil
// error when the key is absent.
type Store interface {
	Get(ctx context.Context, key Key) ([]byte, bool, error)
	Put(ctx context.Context, key Key, doc []byte) error
}
