// Package session is the per-writer front door: it owns one open
// local store, one replication engine, and the eight DDL/DML
// operations a caller drives a transaction through.
package session

import (
	"context"

	"github.com/olsdb/olsdb/objectlog"
	"github.com/olsdb/olsdb/replication"
	"github.com/olsdb/olsdb/segment"
	"github.com/olsdb/olsdb/statement"
	"github.com/olsdb/olsdb/store"
)

// Session ties together a local Store and a replication Engine for
// one database name. Operations build SQL+params via the statement
// package, apply them to the buffered engine transaction, and record
// them for the next Commit.
type Session struct {
	db     string
	store  *store.Store
	engine *replication.Engine
}

// Open opens {db}.sqlite3, binds it to ols, and runs a sync to
// converge the local store to the object log's current head before
// returning. Both the store and the replication engine are owned by
// the returned Session; Close releases them.
func Open(ctx context.Context, db string, ols objectlog.Store) (*Session, error) {
	st, err := store.Open(ctx, db)
	if err != nil {
		return nil, err
	}

	engine, err := replication.Open(ctx, db, st, ols)
	if err != nil {
		st.Close()
		return nil, err
	}

	return &Session{db: db, store: st, engine: engine}, nil
}

// LSN returns the last LSN durably applied locally.
func (s *Session) LSN() int64 { return s.engine.LSN() }

func (s *Session) run(ctx context.Context, stmt segment.Statement, err error) error {
	if err != nil {
		return err
	}
	if err := s.store.Apply(ctx, stmt.SQL, stmt.Params); err != nil {
		return err
	}
	s.engine.Append(stmt)
	return nil
}

// CreateTable buffers a create_table statement.
func (s *Session) CreateTable(ctx context.Context, table string, primaryKey []string) error {
	return s.run(ctx, statement.CreateTable(table, primaryKey))
}

// DropTable buffers a drop_table statement.
func (s *Session) DropTable(ctx context.Context, table string) error {
	return s.run(ctx, statement.DropTable(table))
}

// AddColumn buffers an add_column statement.
func (s *Session) AddColumn(ctx context.Context, table, column string) error {
	return s.run(ctx, statement.AddColumn(table, column))
}

// RenameColumn buffers a rename_column statement.
func (s *Session) RenameColumn(ctx context.Context, table, src, dst string) error {
	return s.run(ctx, statement.RenameColumn(table, src, dst))
}

// DropColumn buffers a drop_column statement.
func (s *Session) DropColumn(ctx context.Context, table, column string) error {
	return s.run(ctx, statement.DropColumn(table, column))
}

// Insert buffers an insert statement.
func (s *Session) Insert(ctx context.Context, table string, row map[string]any) error {
	return s.run(ctx, statement.Insert(table, row))
}

// Update buffers an update statement.
func (s *Session) Update(ctx context.Context, table string, set, where map[string]any) error {
	return s.run(ctx, statement.Update(table, set, where))
}

// Delete buffers a delete statement.
func (s *Session) Delete(ctx context.Context, table string, where map[string]any) error {
	return s.run(ctx, statement.Delete(table, where))
}

// Commit publishes the buffered transaction via the replication
// engine. A no-op if nothing is pending.
func (s *Session) Commit(ctx context.Context) error {
	return s.engine.Commit(ctx)
}

// Sync catches the local store up with any segments a peer has
// published since the last Commit or Sync.
func (s *Session) Sync(ctx context.Context) (int64, error) {
	return s.engine.Sync(ctx)
}

// Follow runs the follower daemon loop (spec.md §4.6): it calls Sync
// repeatedly, sleeping with exponential backoff between idle rounds,
// until ctx is cancelled.
func (s *Session) Follow(ctx context.Context, opts replication.FollowOptions) error {
	return replication.Follow(ctx, s.engine, opts)
}

// Close rolls back any uncommitted pending transaction and closes the
// local store.
func (s *Session) Close() error {
	return s.store.Close()
}
