// Package objectlog is the thin object-store wrapper the replication
// engine uses as its log-shipping backend: conditional get/put rooted
// at a per-database prefix, with the conditional create (`PUT
// if-not-exists`) as the single serialization point across writers.
package objectlog

import (
	"context"
	"strconv"
)

// Store is the contract the replication engine depends on. SegmentKey
// computes the object-store key for a given LSN; Get/PutNew are the
// only two I/O operations the core performs against it.
type Store interface {
	// Get returns the bytes stored at key, or ok=false if no such
	// object exists. Any other failure is returned as err, typically
	// wrapped olserr.TransientIO.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// PutNew creates key with data iff no object currently exists
	// under that key (conditional create). If an object already
	// exists, err wraps olserr.SegmentExists. Any other failure wraps
	// olserr.TransientIO.
	PutNew(ctx context.Context, key string, data []byte) error
}

// SegmentKey computes the object key for LSN n of database db:
// "SQLiteDB/{db}/logs/{n}". LSN 0 has no segment; callers never call
// this with n==0.
func SegmentKey(db string, n int64) string {
	return "SQLiteDB/" + db + "/logs/" + strconv.FormatInt(n, 10)
}
