package intcode

import (
	"fmt"
	"sort"
)

// Opcode is the two low decimal digits of an instruction cell.
type Opcode uint8

const (
	// ========================================================================
	// Arithmetic and comparison (three parameters, last is a destination)
	// ========================================================================

	OpAdd      Opcode = 1 // mem[dest] = p1 + p2
	OpMultiply Opcode = 2 // mem[dest] = p1 * p2
	OpLessThan Opcode = 7 // mem[dest] = p1 < p2 ? 1 : 0
	OpEquals   Opcode = 8 // mem[dest] = p1 == p2 ? 1 : 0

	// ========================================================================
	// I/O (one parameter)
	// ========================================================================

	OpInput  Opcode = 3 // mem[dest] = next input, or suspend
	OpOutput Opcode = 4 // emit p1

	// ========================================================================
	// Control flow
	// ========================================================================

	OpJumpIfTrue  Opcode = 5  // if p1 != 0 { ip = p2 }
	OpJumpIfFalse Opcode = 6  // if p1 == 0 { ip = p2 }
	OpAdjustBase  Opcode = 9  // relative base += p1
	OpHalt        Opcode = 99 // stop for good
)

// OpcodeInfo provides metadata about each opcode for decoding and disassembly.
type OpcodeInfo struct {
	Name   string // Human-readable name
	Params int    // Number of parameters following the opcode cell
	Writes bool   // Last parameter is a write destination
}

// opcodeInfoTable maps opcodes to their metadata.
var opcodeInfoTable = map[Opcode]OpcodeInfo{
	OpAdd:      {"ADD", 3, true},
	OpMultiply: {"MUL", 3, true},
	OpLessThan: {"LT", 3, true},
	OpEquals:   {"EQ", 3, true},

	OpInput:  {"IN", 1, true},
	OpOutput: {"OUT", 1, false},

	OpJumpIfTrue:  {"JNZ", 2, false},
	OpJumpIfFalse: {"JZ", 2, false},
	OpAdjustBase:  {"ARB", 1, false},
	OpHalt:        {"HALT", 0, false},
}

// GetOpcodeInfo returns metadata for an opcode.
// Returns a zero OpcodeInfo with name "UNKNOWN" if the opcode is not recognized.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if info, ok := opcodeInfoTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(%d)", uint8(op))}
}

// Valid reports whether op is part of the instruction set.
func (op Opcode) Valid() bool {
	_, ok := opcodeInfoTable[op]
	return ok
}

// String returns the human-readable name of an opcode.
func (op Opcode) String() string {
	return GetOpcodeInfo(op).Name
}

// ParamCount returns the number of parameters for this opcode.
func (op Opcode) ParamCount() int {
	return GetOpcodeInfo(op).Params
}

// InstructionLen returns the total length of an instruction in cells.
func (op Opcode) InstructionLen() int {
	return 1 + op.ParamCount()
}

// Writes reports whether the last parameter is a destination address.
func (op Opcode) Writes() bool {
	return GetOpcodeInfo(op).Writes
}

// IsJump returns true if this opcode may redirect the instruction pointer.
func (op Opcode) IsJump() bool {
	return op == OpJumpIfTrue || op == OpJumpIfFalse
}

// AllOpcodes returns every defined opcode in ascending order.
func AllOpcodes() []Opcode {
	opcodes := make([]Opcode, 0, len(opcodeInfoTable))
	for op := range opcodeInfoTable {
		opcodes = append(opcodes, op)
	}
	sort.Slice(opcodes, func(i, j int) bool { return opcodes[i] < opcodes[j] })
	return opcodes
}

// OpcodeCount returns the number of defined opcodes.
func OpcodeCount() int {
	return len(opcodeInfoTable)
}
