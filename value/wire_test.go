package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	params := Params{
		"iCount": Int(3),
		"fPrice": Float(1.5),
		"tName":  Text("widget"),
		"bData":  Blob([]byte("hi")),
	}

	wire := EncodeForSegment(params)
	assert.Equal(t, "aGk=", wire["bData"])

	decoded, err := DecodeFromSegment(asJSONRoundTrip(t, wire))
	require.NoError(t, err)
	assert.Equal(t, params, decoded)
}

func TestEncodeNullPassesThrough(t *testing.T) {
	wire := EncodeForSegment(Params{"iCount": Null(KindInt)})
	assert.Nil(t, wire["iCount"])
}

func TestDecodeRejectsNonIntegralFloatForIntKind(t *testing.T) {
	_, err := DecodeFromSegment(map[string]any{"iCount": 3.5})
	require.Error(t, err)
}

func TestDecodeRejectsInvalidBase64ForBlob(t *testing.T) {
	_, err := DecodeFromSegment(map[string]any{"bData": "not base64!!"})
	require.Error(t, err)
}

// asJSONRoundTrip simulates what encoding/json.Unmarshal produces for
// a map[string]any: numbers become float64, as DecodeFromSegment
// assumes of its caller (segment.Decode).
func asJSONRoundTrip(t *testing.T, in map[string]any) map[string]any {
	t.Helper()
	out := make(map[string]any, len(in))
	for k, v := range in {
		switch n := v.(type) {
		case int64:
			out[k] = float64(n)
		default:
			out[k] = v
		}
	}
	return out
}
