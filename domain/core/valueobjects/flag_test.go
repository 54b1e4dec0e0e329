package valueobjects

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagCodec(t *testing.T) {
	assert.Equal(t, "1", EncodeFlag(true))
	assert.Equal(t, "0", EncodeFlag(false))

	assert.True(t, DecodeFlag("1", true))
	assert.False(t, DecodeFlag("0", true))
	assert.False(t, DecodeFlag("true", true))
	assert.False(t, DecodeFlag("2", true))
	assert.False(t, DecodeFlag("", false))
	assert.False(t, DecodeFlag("1", false))

	for _, v := range []bool{true, false} {
		assert.Equal(t, v, DecodeFlag(EncodeFlag(v), true))
	}
}

func TestFlagUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    bool
		wantErr bool
	}{
		{name: "true", input: `true`, want: true},
		{name: "false", input: `false`, want: false},
		{name: "null", input: `null`, want: false},
		{name: "one", input: `1`, want: true},
		{name: "zero", input: `0`, want: false},
		{name: "non-zero number", input: `2.5`, want: true},
		{name: "string one", input: `"1"`, want: true},
		{name: "string true", input: `"true"`, want: true},
		{name: "string false", input: `"false"`, want: false},
		{name: "string garbage", input: `"yes please"`, wantErr: true},
		{name: "array", input: `[true]`, wantErr: true},
		{name: "object", input: `{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f Flag
			err := json.Unmarshal([]byte(tt.input), &f)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Bool())
		})
	}
}

func TestFlagAbsentFromObject(t *testing.T) {
	var body struct {
		Checked Flag `json:"checked"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{}`), &body))
	assert.False(t, body.Checked.Bool())

	out, err := json.Marshal(Flag(true))
	require.NoError(t, err)
	assert.JSONEq(t, `true`, string(out))
}
