package value

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		expected Kind
		ok       bool
	}{
		{name: "int prefix", field: "iCount", expected: KindInt, ok: true},
		{name: "float prefix", field: "fPrice", expected: KindFloat, ok: true},
		{name: "text prefix", field: "tName", expected: KindText, ok: true},
		{name: "blob prefix", field: "bData", expected: KindBlob, ok: true},
		{name: "unrecognized prefix", field: "xOther", ok: false},
		{name: "empty name", field: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := KindOf(tt.field)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, kind)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	params, err := Validate(map[string]any{
		"iCount": int64(3),
		"fPrice": 1.5,
		"tName":  "widget",
		"bData":  []byte("hi"),
	})
	require.NoError(t, err)
	assert.Equal(t, Int(3), params["iCount"])
	assert.Equal(t, Float(1.5), params["fPrice"])
	assert.Equal(t, Text("widget"), params["tName"])
	assert.Equal(t, Blob([]byte("hi")), params["bData"])
}

func TestValidateNull(t *testing.T) {
	params, err := Validate(map[string]any{"iCount": nil})
	require.NoError(t, err)
	assert.True(t, params["iCount"].Null)
	assert.Equal(t, KindInt, params["iCount"].Kind)
}

func TestValidateBlobBase64String(t *testing.T) {
	params, err := Validate(map[string]any{"bData": "aGk="})
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), params["bData"].B)
}

func TestValidateRejectsUnknownPrefix(t *testing.T) {
	_, err := Validate(map[string]any{"xField": 1})
	require.Error(t, err)
}

func TestValidateRejectsKindMismatch(t *testing.T) {
	_, err := Validate(map[string]any{"iCount": "not a number"})
	require.Error(t, err)
}

func TestFloatWidensInt(t *testing.T) {
	params, err := Validate(map[string]any{"fPrice": int64(4)})
	require.NoError(t, err)
	assert.Equal(t, Float(4), params["fPrice"])
}

// TestValidateAcceptsJSONDecodedInt exercises the same shape of input
// a CLI/API caller produces: json.Unmarshal into map[string]any
// decodes every number as float64, never int64/int.
func TestValidateAcceptsJSONDecodedInt(t *testing.T) {
	raw := make(map[string]any)
	require.NoError(t, json.Unmarshal([]byte(`{"iCount": 3}`), &raw))

	params, err := Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, Int(3), params["iCount"])
}

func TestValidateRejectsNonIntegralFloatForIntKind(t *testing.T) {
	_, err := Validate(map[string]any{"iCount": 3.5})
	require.Error(t, err)
}

func TestValueAny(t *testing.T) {
	assert.Equal(t, int64(3), Int(3).Any())
	assert.Equal(t, 1.5, Float(1.5).Any())
	assert.Equal(t, "x", Text("x").Any())
	assert.Equal(t, []byte("x"), Blob([]byte("x")).Any())
	assert.Nil(t, Null(KindInt).Any())
}
