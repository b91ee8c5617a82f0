//go:build !cgo_sqlite

package store

import (
	_ "modernc.org/sqlite"
)

// driverName is the database/sql driver registered for the local
// engine. The pure-Go modernc.org/sqlite driver is the default, same
// as the teacher's own cmd/sqlite3def wiring; a CGo-backed
// mattn/go-sqlite3 driver is available under the cgo_sqlite build tag
// for parity with the teacher's go.mod, which carries both.
const driverName = "sqlite"
