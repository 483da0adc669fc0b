// Package intcode implements the Intcode virtual machine: a flat sequence of
// unbounded integers that is both the program and its memory.
//
// # Instruction format
//
// The two low decimal digits of a cell select the opcode. The remaining digits,
// read from the hundreds place upward, give the addressing mode of each
// parameter:
//
//	ABCDE
//	 1002,4,3,4
//
//	DE = opcode       = 02 (MUL)
//	C  = mode of p1   = 0  (position)
//	B  = mode of p2   = 1  (immediate)
//	A  = mode of p3   = 0  (position, missing digits default to it)
//
// Modes are position (read memory at the address), immediate (use the value),
// and relative (read memory at relative base + value). Destinations are always
// addresses; an immediate destination is a fault.
//
// # Memory
//
// Memory starts as a copy of the program and grows on demand: touching any
// address extends the store to exactly that address plus one, zero filled.
// Values are math/big integers, so arithmetic never wraps.
//
// # Suspend and resume
//
// RunUntilInput executes until HALT, a fatal fault, or an input instruction
// with no input left. In the last case the VM is suspended with the
// instruction pointer still on the input instruction and memory untouched;
// the next call with fresh input re-executes it. Suspension is a state, not an
// error, and it is what lets several VMs be wired into a feedback loop by a
// single cooperative driver (see package amplifier).
//
// # Images
//
// Programs can be stored as "ICBC" images: a magic prefix followed by a
// canonical CBOR record carrying the cells and their content hash.
package intcode
