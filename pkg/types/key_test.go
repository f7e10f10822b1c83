package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSymbolKey(t *testing.T) {
	tests := []struct {
		in   string
		want SymbolKey
	}{
		{"calc:encode/2", FunctionKey("calc", "encode", 2)},
		{"m:f/0", FunctionKey("m", "f", 0)},
		{"?TIMEOUT", MacroKey("TIMEOUT")},
		{"#state", RecordKey("state")},
	}
	for _, tt := range tests {
		got, err := ParseSymbolKey(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.in, got.String(), "String and ParseSymbolKey round-trip")
	}
}

func TestParseSymbolKeyRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "?", "#", "noarity", "calc:encode", "calc:encode/x", ":f/1", "calc:/1"} {
		_, err := ParseSymbolKey(in)
		assert.Error(t, err, in)
	}
}
