// Package replication implements olsdb's log-shipping core: the commit
// protocol (publish to the object log store, then advance the local
// engine), the sync/catch-up protocol (tail the object log store from
// the local LSN forward), and an optional follower daemon loop.
package replication

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/olsdb/olsdb/objectlog"
	"github.com/olsdb/olsdb/olserr"
	"github.com/olsdb/olsdb/segment"
	"github.com/olsdb/olsdb/store"
)

// Engine orchestrates Commit and Sync for one database name against
// one Store and one objectlog.Store. It is not safe for concurrent
// use by multiple goroutines — a single node holds one active writer
// session at a time, per the at-most-one-writer model.
type Engine struct {
	db    string
	store *store.Store
	ols   objectlog.Store

	lsn  int64
	txns []segment.Statement
}

// Open constructs an Engine bound to db, store, and ols, and syncs
// once to converge the local store to the object log's current head
// before the caller serves any request.
func Open(ctx context.Context, db string, st *store.Store, ols objectlog.Store) (*Engine, error) {
	lsn, err := st.ReadLSN(ctx)
	if err != nil {
		return nil, err
	}
	e := &Engine{db: db, store: st, ols: ols, lsn: lsn}
	if _, err := e.Sync(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// LSN returns the last LSN durably applied locally.
func (e *Engine) LSN() int64 { return e.lsn }

// Append buffers one statement into the pending transaction. It does
// not touch the engine; the session calls Store.Apply separately so
// the buffered SQL and the buffered record stay in lockstep.
func (e *Engine) Append(stmt segment.Statement) {
	e.txns = append(e.txns, stmt)
}

// Pending reports whether any statement is buffered awaiting commit.
func (e *Engine) Pending() bool { return len(e.txns) > 0 }

// Commit publishes the buffered transaction as the next segment and
// advances the local LSN. An empty pending list is a no-op: it
// returns without bumping the LSN or touching the object log.
//
// If a peer already published the next LSN, this writer lost the
// race: the local engine transaction is rolled back, the pending
// statements are discarded, Sync is run to converge, and the error
// returned wraps olserr.WriterRaced.
func (e *Engine) Commit(ctx context.Context) error {
	if !e.Pending() {
		return nil
	}

	next := e.lsn + 1
	data, err := segment.Encode(e.txns)
	if err != nil {
		e.store.Rollback()
		e.txns = nil
		return olserr.InvalidSegment.Wrap(err)
	}

	key := objectlog.SegmentKey(e.db, next)
	if err := e.ols.PutNew(ctx, key, data); err != nil {
		e.store.Rollback()
		e.txns = nil
		if olserr.SegmentExists.Has(err) {
			if _, syncErr := e.Sync(ctx); syncErr != nil {
				return syncErr
			}
			return olserr.WriterRaced.New("lsn %d: %v", next, err)
		}
		return err
	}

	if err := e.store.ApplyCommit(ctx, next); err != nil {
		return err
	}

	slog.Info("committed segment", "db", e.db, "lsn", next, "statements", len(e.txns))
	e.lsn = next
	e.txns = nil
	return nil
}

// Sync pulls and applies every segment after the local LSN until the
// object log reports the next one absent. It is idempotent and safe
// to resume after a crash at any point. On decode or apply failure it
// rolls back the in-flight engine transaction and returns an error
// wrapping olserr.ReplayFailed, a terminal condition requiring
// operator intervention.
func (e *Engine) Sync(ctx context.Context) (int64, error) {
	for {
		next := e.lsn + 1
		key := objectlog.SegmentKey(e.db, next)
		data, ok, err := e.ols.Get(ctx, key)
		if err != nil {
			return e.lsn, err
		}
		if !ok {
			return e.lsn, nil
		}

		statements, err := segment.Decode(data)
		if err != nil {
			e.store.Rollback()
			return e.lsn, olserr.ReplayFailed.New("lsn %d: decode: %v", next, err)
		}

		for _, st := range statements {
			if err := e.store.Apply(ctx, st.SQL, st.Params); err != nil {
				e.store.Rollback()
				return e.lsn, olserr.ReplayFailed.New("lsn %d: apply: %v", next, err)
			}
		}

		if err := e.store.ApplyCommit(ctx, next); err != nil {
			return e.lsn, olserr.ReplayFailed.New("lsn %d: apply_commit: %v", next, err)
		}

		slog.Info("applied segment", "db", e.db, "lsn", next, "statements", len(statements))
		e.lsn = next
	}
}

// FollowOptions configures the follower daemon loop.
type FollowOptions struct {
	MinBackoff time.Duration // default 1s
	MaxBackoff time.Duration // default 60s
}

func (o FollowOptions) withDefaults() FollowOptions {
	if o.MinBackoff <= 0 {
		o.MinBackoff = time.Second
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = 60 * time.Second
	}
	return o
}

// Follow repeatedly calls Sync until ctx is cancelled. When a round
// makes no progress it sleeps with exponential backoff starting at
// MinBackoff, doubling, capped at MaxBackoff; progress resets the
// backoff to MinBackoff. This is the Python original's `sync` CLI
// operation (sqlitedb.py's `while True: ... time.sleep(delay); delay
// = min(60, 2*delay)` loop), backed here by cenkalti/backoff/v4
// instead of a hand-rolled doubling counter.
func Follow(ctx context.Context, e *Engine, opts FollowOptions) error {
	opts = opts.withDefaults()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = opts.MinBackoff
	b.MaxInterval = opts.MaxBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0 // retry forever; only ctx cancellation stops Follow
	b.Reset()            // start the first idle wait at MinBackoff

	for {
		before := e.LSN()
		if _, err := e.Sync(ctx); err != nil {
			return err
		}

		if e.LSN() > before {
			b.Reset()
			continue
		}

		wait := b.NextBackOff()
		slog.Debug("follower idle", "db", e.db, "lsn", e.LSN(), "backoff", wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}
