// Package main is olsdb's command-line front end: one cobra subcommand
// per DDL/DML operation, plus sync.
package main

import (
	"fmt"
	"os"

	"github.com/olsdb/olsdb/olserr"
	"github.com/olsdb/olsdb/util"
)

func main() {
	util.InitSlog()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, diagnostic(err))
		os.Exit(1)
	}
}

// diagnostic renders a single-line CLI diagnostic naming the error's
// taxonomy class rather than its full wrapped cause chain.
func diagnostic(err error) string {
	if name, ok := olserr.ClassOf(err); ok {
		return name
	}
	return err.Error()
}
