package intcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllOpcodesHaveMetadata(t *testing.T) {
	for _, op := range AllOpcodes() {
		info := GetOpcodeInfo(op)
		assert.NotEmpty(t, info.Name, "opcode %d", op)
		assert.False(t, strings.HasPrefix(info.Name, "UNKNOWN"), "opcode %d has no metadata", op)
	}
	assert.Equal(t, 10, OpcodeCount())
}

func TestOpcodeParamCount(t *testing.T) {
	tests := []struct {
		op     Opcode
		params int
		writes bool
	}{
		{OpAdd, 3, true},
		{OpMultiply, 3, true},
		{OpInput, 1, true},
		{OpOutput, 1, false},
		{OpJumpIfTrue, 2, false},
		{OpJumpIfFalse, 2, false},
		{OpLessThan, 3, true},
		{OpEquals, 3, true},
		{OpAdjustBase, 1, false},
		{OpHalt, 0, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.params, tt.op.ParamCount(), "%s.ParamCount()", tt.op)
		assert.Equal(t, tt.params+1, tt.op.InstructionLen(), "%s.InstructionLen()", tt.op)
		assert.Equal(t, tt.writes, tt.op.Writes(), "%s.Writes()", tt.op)
	}
}

func TestUnknownOpcodeString(t *testing.T) {
	op := Opcode(42)
	assert.False(t, op.Valid())
	assert.Equal(t, "UNKNOWN(42)", op.String())
	assert.Equal(t, 0, op.ParamCount())
}

func TestOpcodeIsJump(t *testing.T) {
	for _, op := range AllOpcodes() {
		want := op == OpJumpIfTrue || op == OpJumpIfFalse
		assert.Equal(t, want, op.IsJump(), "%s.IsJump()", op)
	}
}

func TestAllOpcodesSorted(t *testing.T) {
	ops := AllOpcodes()
	for i := 1; i < len(ops); i++ {
		assert.Less(t, ops[i-1], ops[i])
	}
	assert.Equal(t, OpHalt, ops[len(ops)-1])
}
