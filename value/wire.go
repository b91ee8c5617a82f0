package value

import (
	"encoding/base64"
	"fmt"
)

// EncodeForSegment replaces every non-null blob value with its base64
// text so the params map is ready for json.Marshal; other kinds pass
// through as their native Go types.
func EncodeForSegment(p Params) map[string]any {
	out := make(map[string]any, len(p))
	for name, v := range p {
		if v.Null {
			out[name] = nil
			continue
		}
		switch v.Kind {
		case KindInt:
			out[name] = v.I
		case KindFloat:
			out[name] = v.F
		case KindText:
			out[name] = v.T
		case KindBlob:
			out[name] = base64.StdEncoding.EncodeToString(v.B)
		}
	}
	return out
}

// DecodeFromSegment is the inverse of EncodeForSegment: it decodes a
// JSON-unmarshaled params object (map[string]any, numbers as
// float64) back into typed Params, asserting the decoded value
// matches the kind implied by its name. A mismatch here is fatal: it
// indicates a corrupt or foreign segment.
func DecodeFromSegment(raw map[string]any) (Params, error) {
	out := make(Params, len(raw))
	for name, v := range raw {
		kind, ok := KindOf(name)
		if !ok {
			return nil, fmt.Errorf("field %s: no recognized kind prefix", name)
		}

		if v == nil {
			out[name] = Null(kind)
			continue
		}

		switch kind {
		case KindInt:
			n, ok := v.(float64)
			if !ok || n != float64(int64(n)) {
				return nil, fmt.Errorf("field %s: expected int, got %T", name, v)
			}
			out[name] = Int(int64(n))
		case KindFloat:
			n, ok := v.(float64)
			if !ok {
				return nil, fmt.Errorf("field %s: expected float, got %T", name, v)
			}
			out[name] = Float(n)
		case KindText:
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("field %s: expected text, got %T", name, v)
			}
			out[name] = Text(s)
		case KindBlob:
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("field %s: expected base64 blob, got %T", name, v)
			}
			b, err := base64.StdEncoding.DecodeString(s)
			if err != nil {
				return nil, fmt.Errorf("field %s: invalid base64: %w", name, err)
			}
			out[name] = Blob(b)
		}
	}
	return out, nil
}
