package intcode

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		cell  int64
		op    Opcode
		modes [3]Mode
	}{
		{1002, OpMultiply, [3]Mode{ModePosition, ModeImmediate, ModePosition}},
		{1, OpAdd, [3]Mode{ModePosition, ModePosition, ModePosition}},
		{21101, OpAdd, [3]Mode{ModeImmediate, ModeImmediate, ModeRelative}},
		{204, OpOutput, [3]Mode{ModeRelative, ModePosition, ModePosition}},
		{109, OpAdjustBase, [3]Mode{ModeImmediate, ModePosition, ModePosition}},
		{99, OpHalt, [3]Mode{}},
		// Unknown mode digits fall back to position.
		{7305, OpJumpIfTrue, [3]Mode{ModePosition, ModePosition, ModePosition}},
		{91201, OpAdd, [3]Mode{ModeRelative, ModeImmediate, ModePosition}},
	}

	for _, tt := range tests {
		op, modes, err := Decode(big.NewInt(tt.cell))
		require.NoError(t, err, "Decode(%d)", tt.cell)
		assert.Equal(t, tt.op, op, "Decode(%d) opcode", tt.cell)
		assert.Equal(t, tt.modes, modes, "Decode(%d) modes", tt.cell)
	}
}

func TestDecodeBeyondInt64(t *testing.T) {
	tests := []struct {
		cell  string
		op    Opcode
		modes [3]Mode
	}{
		{"100000000000000000000001", OpAdd, [3]Mode{ModePosition, ModePosition, ModePosition}},
		{"100000000000000000021101", OpAdd, [3]Mode{ModeImmediate, ModeImmediate, ModeRelative}},
		{"9223372036854775899", OpHalt, [3]Mode{ModePosition, ModePosition, ModePosition}},
	}

	for _, tt := range tests {
		cell, ok := new(big.Int).SetString(tt.cell, 10)
		require.True(t, ok)
		op, modes, err := Decode(cell)
		require.NoError(t, err, "Decode(%s)", tt.cell)
		assert.Equal(t, tt.op, op, "Decode(%s) opcode", tt.cell)
		assert.Equal(t, tt.modes, modes, "Decode(%s) modes", tt.cell)
	}
}

func TestDecodeLeavesCellAlone(t *testing.T) {
	cell := big.NewInt(21101)
	_, _, err := Decode(cell)
	require.NoError(t, err)
	assert.Equal(t, int64(21101), cell.Int64())
}

func TestDecodeUnknownOpcode(t *testing.T) {
	huge, _ := new(big.Int).SetString("-100000000000000000000001", 10)
	wide, _ := new(big.Int).SetString("100000000000000000000042", 10)
	for _, cell := range []*big.Int{big.NewInt(0), big.NewInt(42), big.NewInt(98), big.NewInt(-1), huge, wide} {
		_, _, err := Decode(cell)
		assert.ErrorIs(t, err, ErrUnknownOpcode, "Decode(%s)", cell)
	}
}

func TestDecodeAt(t *testing.T) {
	mem := NewMemory(MustParse("1002,4,3,4,33"), 0)
	in, err := DecodeAt(mem, 0)
	require.NoError(t, err)

	assert.Equal(t, 0, in.Addr)
	assert.Equal(t, OpMultiply, in.Op)
	assert.Equal(t, 4, in.Len())
	require.Len(t, in.Params, 3)
	assert.Equal(t, ModePosition, in.Params[0].Mode)
	assert.Equal(t, int64(4), in.Params[0].Value.Int64())
	assert.Equal(t, ModeImmediate, in.Params[1].Mode)
	assert.Equal(t, int64(3), in.Params[1].Value.Int64())
	assert.Equal(t, "MUL *4 #3 *4", in.String())
}

func TestDecodeAtTruncated(t *testing.T) {
	mem := NewMemory(MustParse("1,0,0"), 0)
	_, err := DecodeAt(mem, 0)
	assert.ErrorIs(t, err, ErrMalformedProgram)

	_, err = DecodeAt(mem, 3)
	assert.ErrorIs(t, err, ErrMalformedProgram)
	assert.Equal(t, 3, mem.Len(), "decoding must not grow memory")
}

func TestParameterString(t *testing.T) {
	assert.Equal(t, "*7", Parameter{ModePosition, big.NewInt(7)}.String())
	assert.Equal(t, "#-3", Parameter{ModeImmediate, big.NewInt(-3)}.String())
	assert.Equal(t, "@12", Parameter{ModeRelative, big.NewInt(12)}.String())
	assert.Equal(t, "relative", ModeRelative.String())
	assert.Equal(t, "Mode(9)", Mode(9).String())
}
