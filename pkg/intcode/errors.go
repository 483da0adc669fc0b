package intcode

import (
	"errors"
	"fmt"
)

// Fatal conditions. Each one halts the VM that hit it.
var (
	ErrUnknownOpcode      = errors.New("unknown opcode")
	ErrInvalidAddress     = errors.New("invalid address")
	ErrArithmeticOverflow = errors.New("arithmetic overflow")
	ErrMalformedProgram   = errors.New("malformed program")

	// ErrStepLimit is returned when a VM has executed its instruction budget.
	ErrStepLimit = errors.New("step limit exceeded")
)

var (
	// ErrHalted is returned when a halted VM is asked to run again.
	ErrHalted = errors.New("vm halted")

	// ErrInputExhausted is returned by Run when the VM waits for input
	// and no input was supplied at all.
	ErrInputExhausted = errors.New("input exhausted")

	// ErrParse is returned for program text that is not a list of integers.
	ErrParse = errors.New("parse error")
)

// Fault records a fatal error together with where it happened.
type Fault struct {
	IP  int    // Address of the faulting instruction
	Op  Opcode // Decoded opcode, zero if decoding failed
	Err error  // One of the fatal sentinels, possibly wrapped
}

func (f *Fault) Error() string {
	if f.Op == 0 {
		return fmt.Sprintf("intcode: %v at ip=%d", f.Err, f.IP)
	}
	return fmt.Sprintf("intcode: %v at ip=%d (%s)", f.Err, f.IP, f.Op)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// IsFatal reports whether err is one of the conditions that halt a VM.
func IsFatal(err error) bool {
	return errors.Is(err, ErrUnknownOpcode) ||
		errors.Is(err, ErrInvalidAddress) ||
		errors.Is(err, ErrArithmeticOverflow) ||
		errors.Is(err, ErrMalformedProgram) ||
		errors.Is(err, ErrStepLimit)
}
