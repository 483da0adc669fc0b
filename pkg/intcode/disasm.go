package intcode

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable listing of the program.
func Disassemble(p Program) string {
	return DisassembleWithName(p, "")
}

// DisassembleWithName returns a listing with a name header.
//
// Intcode freely mixes code and data, so the listing is a linear sweep:
// cells that decode to a complete instruction are shown as one, anything
// else is shown as a single DATA cell.
func DisassembleWithName(p Program, name string) string {
	var sb strings.Builder

	if name != "" {
		sb.WriteString(fmt.Sprintf("; === %s ===\n", name))
	}
	sb.WriteString(fmt.Sprintf("; %d cells, sha256 %s\n\n", len(p), p.Hash()))

	mem := NewMemory(p, len(p)+1)
	for addr := 0; addr < len(p); {
		line, n := disassembleInstruction(mem, addr)
		sb.WriteString(fmt.Sprintf("%04d  %s\n", addr, line))
		addr += n
	}
	return sb.String()
}

// disassembleInstruction formats the instruction at addr and returns how
// many cells it covers.
func disassembleInstruction(mem *Memory, addr int) (string, int) {
	in, err := DecodeAt(mem, addr)
	if err != nil {
		return fmt.Sprintf("%-5s %s", "DATA", mem.cell(addr)), 1
	}
	if len(in.Params) == 0 {
		return in.Op.String(), 1
	}
	args := make([]string, len(in.Params))
	for i, prm := range in.Params {
		args[i] = prm.String()
	}
	return fmt.Sprintf("%-5s %s", in.Op, strings.Join(args, " ")), in.Len()
}
