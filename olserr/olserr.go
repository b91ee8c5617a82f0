// Package olserr defines the error taxonomy shared across olsdb's
// replication engine, object log store, and statement builder.
package olserr

import "github.com/zeebo/errs"

// Error classes from the replication engine's error taxonomy. Each
// class wraps an underlying cause with errs.Wrap so that %w-style
// unwrapping and errs.Is/errs.Class checks both work.
var (
	// TypeMismatch: a parameter value's kind disagrees with its name prefix.
	TypeMismatch = errs.Class("type mismatch")

	// DdlTypeMismatch: rename_column across differing kinds.
	DdlTypeMismatch = errs.Class("ddl type mismatch")

	// SegmentExists: conditional create lost to a peer at this LSN.
	SegmentExists = errs.Class("segment exists")

	// WriterRaced: this node's commit lost the race for the next LSN.
	WriterRaced = errs.Class("writer raced")

	// ReplayFailed: a follower could not apply a fetched segment.
	ReplayFailed = errs.Class("replay failed")

	// TransientIO: a retryable object-store or engine I/O error whose
	// retry budget has been exhausted.
	TransientIO = errs.Class("transient io")

	// InvalidSegment: segment decode failed, or failed the post-decode
	// kind assertion. Treated as ReplayFailed by the replication engine.
	InvalidSegment = errs.Class("invalid segment")
)

// classes lists every taxonomy entry, checked in order by ClassOf.
var classes = []errs.Class{
	TypeMismatch,
	DdlTypeMismatch,
	SegmentExists,
	WriterRaced,
	ReplayFailed,
	TransientIO,
	InvalidSegment,
}

// ClassOf reports the bare name of the first taxonomy class err
// belongs to (e.g. "writer raced"), for CLI-facing diagnostics that
// must not print the full wrapped cause chain. ok is false if err
// does not belong to any class in this taxonomy.
func ClassOf(err error) (name string, ok bool) {
	for _, c := range classes {
		if c.Has(err) {
			return string(c), true
		}
	}
	return "", false
}
