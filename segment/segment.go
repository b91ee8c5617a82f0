// Package segment implements the wire format for a single committed
// transaction: a JSON array of [sql_text, params_object] pairs, with
// sorted parameter keys and a fixed indent, so that log segments
// stored in the object log store are human-inspectable.
package segment

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/olsdb/olsdb/olserr"
	"github.com/olsdb/olsdb/value"
)

// Statement is one (sql, params) pair accumulated in a session's
// pending transaction.
type Statement struct {
	SQL    string
	Params value.Params
}

// jsonPair is the on-wire shape of one Statement: a 2-element array
// of [sql, params].
type jsonPair [2]json.RawMessage

// Encode renders statements as a JSON array of [sql, params] pairs.
// Parameter object keys are sorted and the whole document is indented
// four spaces, per the normative wire format.
func Encode(statements []Statement) ([]byte, error) {
	pairs := make([]any, len(statements))
	for i, st := range statements {
		pairs[i] = []any{st.SQL, value.EncodeForSegment(st.Params)}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(pairs); err != nil {
		return nil, fmt.Errorf("encode segment: %w", err)
	}
	// json.Encoder.Encode appends a trailing newline; keep it, readers
	// must accept any whitespace.
	return buf.Bytes(), nil
}

// Decode parses a segment produced by Encode (or any document in the
// same normative shape) back into an ordered list of Statements.
// Readers accept any parameter key order and any whitespace.
func Decode(data []byte) ([]Statement, error) {
	var raw [][2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, olserr.InvalidSegment.New("decode segment: %w", err)
	}

	statements := make([]Statement, len(raw))
	for i, pair := range raw {
		var sql string
		if err := json.Unmarshal(pair[0], &sql); err != nil {
			return nil, olserr.InvalidSegment.New("decode segment[%d].sql: %w", i, err)
		}

		var rawParams map[string]any
		if err := json.Unmarshal(pair[1], &rawParams); err != nil {
			return nil, olserr.InvalidSegment.New("decode segment[%d].params: %w", i, err)
		}

		params, err := value.DecodeFromSegment(rawParams)
		if err != nil {
			return nil, olserr.InvalidSegment.New("decode segment[%d].params: %w", i, err)
		}

		statements[i] = Statement{SQL: sql, Params: params}
	}
	return statements, nil
}
