// Package value implements olsdb's typed parameter model: the four
// primitive kinds inferred from the first byte of a column or
// parameter name, and the validation/encoding rules the replication
// boundary depends on.
package value

import (
	"encoding/base64"
	"fmt"

	"github.com/olsdb/olsdb/olserr"
)

// Kind is one of the four primitive kinds, identified by the first
// character of a column or parameter name.
type Kind byte

const (
	KindInt   Kind = 'i'
	KindFloat Kind = 'f'
	KindText  Kind = 't'
	KindBlob  Kind = 'b'
)

// SQLType is the engine type token for a kind, used by the statement
// builder's DDL renderers.
func (k Kind) SQLType() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindBlob:
		return "blob"
	default:
		return ""
	}
}

func (k Kind) String() string {
	return string(k)
}

// KindOf returns the kind encoded by name's first byte, and whether
// name carried a recognized kind prefix at all.
func KindOf(name string) (Kind, bool) {
	if name == "" {
		return 0, false
	}
	switch Kind(name[0]) {
	case KindInt, KindFloat, KindText, KindBlob:
		return Kind(name[0]), true
	default:
		return 0, false
	}
}

// Value is a tagged union over the four primitive kinds, plus null.
// Only the field matching Kind is meaningful unless Null is set.
type Value struct {
	Kind Kind
	Null bool

	I int64
	F float64
	T string
	B []byte
}

func Null(k Kind) Value     { return Value{Kind: k, Null: true} }
func Int(v int64) Value     { return Value{Kind: KindInt, I: v} }
func Float(v float64) Value { return Value{Kind: KindFloat, F: v} }
func Text(v string) Value   { return Value{Kind: KindText, T: v} }
func Blob(v []byte) Value   { return Value{Kind: KindBlob, B: v} }

// Any converts v to the interface{} the engine driver expects for a
// bound parameter.
func (v Value) Any() any {
	if v.Null {
		return nil
	}
	switch v.Kind {
	case KindInt:
		return v.I
	case KindFloat:
		return v.F
	case KindText:
		return v.T
	case KindBlob:
		return v.B
	default:
		return nil
	}
}

// Params is the parameter map passed alongside a statement's SQL
// text. Keys are kind-prefixed names; insertion order is not
// semantically significant.
type Params map[string]Value

// Validate checks every (name, raw) pair against the kind implied by
// name's first byte and returns the canonical Params map. Null values
// bypass type checking. A blob value supplied as a base64 string is
// decoded to raw bytes here, matching the Python original's behavior
// for values arriving as JSON (e.g. from CLI stdin).
//
// raw values must be one of: nil, int64, int, float64, string, []byte.
func Validate(raw map[string]any) (Params, error) {
	out := make(Params, len(raw))
	for name, v := range raw {
		kind, ok := KindOf(name)
		if !ok {
			return nil, olserr.TypeMismatch.New("field %s: no recognized kind prefix", name)
		}

		if v == nil {
			out[name] = Null(kind)
			continue
		}

		val, err := coerce(kind, v)
		if err != nil {
			return nil, olserr.TypeMismatch.New("field %s: expected %s, got %T", name, kind, v)
		}
		out[name] = val
	}
	return out, nil
}

func coerce(kind Kind, v any) (Value, error) {
	switch kind {
	case KindInt:
		switch n := v.(type) {
		case int64:
			return Int(n), nil
		case int:
			return Int(int64(n)), nil
		case float64:
			// encoding/json decodes every number into float64 when the
			// target is map[string]any (e.g. CLI stdin bodies); accept an
			// integral float64 the same way DecodeFromSegment does.
			if n == float64(int64(n)) {
				return Int(int64(n)), nil
			}
		}
	case KindFloat:
		switch n := v.(type) {
		case float64:
			return Float(n), nil
		case int64:
			return Float(float64(n)), nil
		case int:
			return Float(float64(n)), nil
		}
	case KindText:
		if s, ok := v.(string); ok {
			return Text(s), nil
		}
	case KindBlob:
		switch b := v.(type) {
		case []byte:
			return Blob(b), nil
		case string:
			decoded, err := base64.StdEncoding.DecodeString(b)
			if err != nil {
				return Value{}, fmt.Errorf("invalid base64 for blob: %w", err)
			}
			return Blob(decoded), nil
		}
	}
	return Value{}, fmt.Errorf("kind mismatch")
}
