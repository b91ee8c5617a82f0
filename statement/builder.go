// Package statement renders olsdb's eight DDL/DML shapes into
// parameterized SQL text plus a matching parameter map. Every
// renderer here is a pure function: no I/O, no engine connection.
package statement

import (
	"fmt"
	"sort"
	"strings"

	"github.com/olsdb/olsdb/olserr"
	"github.com/olsdb/olsdb/segment"
	"github.com/olsdb/olsdb/value"
)

// CreateTable renders `create table {T} ({c1 KIND not null, …},
// primary key({pk…}))`. Every entry in primaryKey becomes both a
// column definition and a primary-key member.
func CreateTable(table string, primaryKey []string) (segment.Statement, error) {
	cols := make([]string, len(primaryKey))
	for i, col := range primaryKey {
		kind, ok := value.KindOf(col)
		if !ok {
			return segment.Statement{}, olserr.DdlTypeMismatch.New("column %s: no recognized kind prefix", col)
		}
		cols[i] = fmt.Sprintf("%s %s not null", col, kind.SQLType())
	}

	sql := fmt.Sprintf("create table %s (%s, primary key(%s))",
		table, strings.Join(cols, ", "), strings.Join(primaryKey, ", "))
	return segment.Statement{SQL: sql, Params: value.Params{}}, nil
}

// DropTable renders `drop table {T}`.
func DropTable(table string) (segment.Statement, error) {
	return segment.Statement{SQL: fmt.Sprintf("drop table %s", table), Params: value.Params{}}, nil
}

// AddColumn renders `alter table {T} add column {c} {KIND}`.
func AddColumn(table, column string) (segment.Statement, error) {
	kind, ok := value.KindOf(column)
	if !ok {
		return segment.Statement{}, olserr.DdlTypeMismatch.New("column %s: no recognized kind prefix", column)
	}
	sql := fmt.Sprintf("alter table %s add column %s %s", table, column, kind.SQLType())
	return segment.Statement{SQL: sql, Params: value.Params{}}, nil
}

// RenameColumn renders `alter table {T} rename column {s} to {d}`.
// src and dst must share the same kind prefix, or DdlTypeMismatch is
// returned before any local mutation occurs.
func RenameColumn(table, src, dst string) (segment.Statement, error) {
	srcKind, ok := value.KindOf(src)
	if !ok {
		return segment.Statement{}, olserr.DdlTypeMismatch.New("column %s: no recognized kind prefix", src)
	}
	dstKind, ok := value.KindOf(dst)
	if !ok {
		return segment.Statement{}, olserr.DdlTypeMismatch.New("column %s: no recognized kind prefix", dst)
	}
	if srcKind != dstKind {
		return segment.Statement{}, olserr.DdlTypeMismatch.New("rename %s to %s: kind %s does not match kind %s", src, dst, srcKind, dstKind)
	}

	sql := fmt.Sprintf("alter table %s rename column %s to %s", table, src, dst)
	return segment.Statement{SQL: sql, Params: value.Params{}}, nil
}

// DropColumn renders `alter table {T} drop column {c}`.
func DropColumn(table, column string) (segment.Statement, error) {
	return segment.Statement{SQL: fmt.Sprintf("alter table %s drop column %s", table, column), Params: value.Params{}}, nil
}

// Insert renders `insert into {T}({c1,…}) values(:c1,…)`. row is
// validated against the kind-prefix convention via value.Validate.
func Insert(table string, row map[string]any) (segment.Statement, error) {
	params, err := value.Validate(row)
	if err != nil {
		return segment.Statement{}, err
	}

	cols := sortedKeys(params)
	placeholders := make([]string, len(cols))
	for i, c := range cols {
		placeholders[i] = ":" + c
	}

	sql := fmt.Sprintf("insert into %s(%s) values(%s)", table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	return segment.Statement{SQL: sql, Params: params}, nil
}

// Update renders `update {T} set {ci=:ci_set, …} where {wi=:wi_where,
// …}`. set and where column values are validated independently, then
// their parameter names are suffixed `_set`/`_where` to avoid
// collisions between a column appearing in both.
func Update(table string, set, where map[string]any) (segment.Statement, error) {
	setParams, err := value.Validate(set)
	if err != nil {
		return segment.Statement{}, err
	}
	whereParams, err := value.Validate(where)
	if err != nil {
		return segment.Statement{}, err
	}

	params := make(value.Params, len(setParams)+len(whereParams))
	setCols := sortedKeys(setParams)
	setClauses := make([]string, len(setCols))
	for i, c := range setCols {
		setClauses[i] = fmt.Sprintf("%s=:%s_set", c, c)
		params[c+"_set"] = setParams[c]
	}

	whereCols := sortedKeys(whereParams)
	whereClauses := make([]string, len(whereCols))
	for i, c := range whereCols {
		whereClauses[i] = fmt.Sprintf("%s=:%s_where", c, c)
		params[c+"_where"] = whereParams[c]
	}

	sql := fmt.Sprintf("update %s set %s where %s", table, strings.Join(setClauses, ", "), strings.Join(whereClauses, " and "))
	return segment.Statement{SQL: sql, Params: params}, nil
}

// Delete renders `delete from {T} where {wi=:wi, …}`. where-column
// parameter names are used directly, with no suffix.
func Delete(table string, where map[string]any) (segment.Statement, error) {
	params, err := value.Validate(where)
	if err != nil {
		return segment.Statement{}, err
	}

	cols := sortedKeys(params)
	clauses := make([]string, len(cols))
	for i, c := range cols {
		clauses[i] = fmt.Sprintf("%s=:%s", c, c)
	}

	sql := fmt.Sprintf("delete from %s where %s", table, strings.Join(clauses, " and "))
	return segment.Statement{SQL: sql, Params: params}, nil
}

func sortedKeys(params value.Params) []string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	// Stable, deterministic column ordering in generated SQL; does not
	// affect the segment wire format, which sorts independently.
	sort.Strings(keys)
	return keys
}
