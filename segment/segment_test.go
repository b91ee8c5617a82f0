package segment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olsdb/olsdb/value"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	statements := []Statement{
		{
			SQL: "insert into t(iCount, tName) values(:iCount, :tName)",
			Params: value.Params{
				"iCount": value.Int(3),
				"tName":  value.Text("widget"),
			},
		},
		{
			SQL:    "delete from t where bData=:bData",
			Params: value.Params{"bData": value.Blob([]byte("hi"))},
		},
	}

	data, err := Encode(statements)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, statements, decoded)
}

func TestEncodeUsesFourSpaceIndent(t *testing.T) {
	data, err := Encode([]Statement{{SQL: "drop table t", Params: value.Params{}}})
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "\n    ["), "expected 4-space indented array entries, got:\n%s", data)
}

func TestEncodeSortsParamKeys(t *testing.T) {
	data, err := Encode([]Statement{{
		SQL: "noop",
		Params: value.Params{
			"tZeta":  value.Text("z"),
			"tAlpha": value.Text("a"),
		},
	}})
	require.NoError(t, err)

	alpha := strings.Index(string(data), "tAlpha")
	zeta := strings.Index(string(data), "tZeta")
	assert.True(t, alpha < zeta, "expected tAlpha before tZeta in sorted output")
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	_, err := Decode([]byte("not json"))
	require.Error(t, err)
}

func TestDecodeRejectsBadParams(t *testing.T) {
	_, err := Decode([]byte(`[["sql", {"xField": 1}]]`))
	require.Error(t, err)
}
