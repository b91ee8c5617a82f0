// Package store wraps the embedded relational engine file used as
// olsdb's local query surface: WAL journaling, a relaxed synchronous
// mode, and the private _kv bookkeeping table that records the last
// LSN applied locally.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/olsdb/olsdb/value"
)

// Store owns one open engine connection and the in-flight transaction
// a session buffers statements into.
type Store struct {
	name string
	db   *sql.DB
	tx   *sql.Tx
}

// Open opens (creating if absent) name+".sqlite3" with WAL journaling
// and NORMAL synchronous durability, and ensures the _kv bookkeeping
// table and its lsn row exist.
func Open(ctx context.Context, name string) (*Store, error) {
	db, err := sql.Open(driverName, name+".sqlite3")
	if err != nil {
		return nil, fmt.Errorf("open %s.sqlite3: %w", name, err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, `create table if not exists _kv(
		key   text primary key,
		value text)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create _kv: %w", err)
	}
	if _, err := db.ExecContext(ctx, `insert or ignore into _kv(key, value) values('lsn', '0')`); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed _kv.lsn: %w", err)
	}

	slog.Debug("store opened", "db", name)
	return &Store{name: name, db: db}, nil
}

// Apply executes sql within the store's open transaction, beginning
// one if none is in flight, but does not commit.
func (s *Store) Apply(ctx context.Context, sql string, params value.Params) error {
	if s.tx == nil {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		s.tx = tx
	}

	args := namedArgs(params)
	result, err := s.tx.ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("apply %q: %w", sql, err)
	}

	count, _ := result.RowsAffected()
	slog.Debug("applied statement", "db", s.name, "sql", sql, "rows", count)
	return nil
}

// ApplyCommit updates _kv.value for key='lsn' to lsn and commits the
// open transaction, so the bookkeeping advance and the buffered
// statements land durably in the same engine transaction.
func (s *Store) ApplyCommit(ctx context.Context, lsn int64) error {
	if s.tx == nil {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		s.tx = tx
	}

	if _, err := s.tx.ExecContext(ctx, `update _kv set value=? where key='lsn'`, lsn); err != nil {
		s.Rollback()
		return fmt.Errorf("advance lsn: %w", err)
	}

	if err := s.tx.Commit(); err != nil {
		s.tx = nil
		return fmt.Errorf("commit: %w", err)
	}
	s.tx = nil

	slog.Debug("lsn advanced", "db", s.name, "lsn", lsn)
	return nil
}

// ReadLSN reads the durable _kv.lsn value.
func (s *Store) ReadLSN(ctx context.Context) (int64, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `select value from _kv where key='lsn'`).Scan(&raw)
	if err != nil {
		return 0, fmt.Errorf("read lsn: %w", err)
	}
	var lsn int64
	if _, err := fmt.Sscanf(raw, "%d", &lsn); err != nil {
		return 0, fmt.Errorf("parse lsn %q: %w", raw, err)
	}
	return lsn, nil
}

// Rollback discards any open transaction. It is a no-op if nothing is
// in flight, and safe to call from a deferred cleanup.
func (s *Store) Rollback() error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	return tx.Rollback()
}

// Close rolls back any open transaction and closes the engine
// connection.
func (s *Store) Close() error {
	s.Rollback()
	return s.db.Close()
}

// DB exposes the underlying *sql.DB for read-only query paths outside
// the replication core (e.g. the tests' row-count checks).
func (s *Store) DB() *sql.DB {
	return s.db
}

func namedArgs(params value.Params) []any {
	args := make([]any, 0, len(params))
	for name, v := range params {
		args = append(args, sql.Named(name, v.Any()))
	}
	return args
}
