package intcode

import (
	"fmt"
	"math"
	"math/big"
)

// State is the run state of a VM between calls.
type State int

const (
	// StateReady means the VM has not hit an input wait or a halt yet.
	StateReady State = iota

	// StateSuspended means the VM stopped on an input instruction with no
	// input available. It resumes on the same instruction.
	StateSuspended

	// StateHalted means the VM executed HALT or hit a fatal error.
	StateHalted
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateSuspended:
		return "suspended"
	case StateHalted:
		return "halted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// VM executes one Intcode program. A VM is not safe for concurrent use and
// never shares its memory with another VM.
type VM struct {
	mem     *Memory
	ip      int
	relBase int
	state   State
	err     error

	steps     int64
	stepLimit int64

	// Trace logs every executed instruction at debug level.
	Trace bool
	// Name tags trace and fault records, e.g. "amp-2".
	Name string
}

// Option configures a VM.
type Option func(*vmConfig)

type vmConfig struct {
	memoryLimit int
	stepLimit   int64
	trace       bool
	name        string
}

// WithMemoryLimit caps the number of addressable cells.
func WithMemoryLimit(cells int) Option {
	return func(c *vmConfig) { c.memoryLimit = cells }
}

// WithStepLimit caps the number of instructions a VM executes over its
// whole life, across every resume. Zero means no limit.
func WithStepLimit(steps int64) Option {
	return func(c *vmConfig) { c.stepLimit = steps }
}

// WithTrace enables instruction tracing.
func WithTrace(on bool) Option {
	return func(c *vmConfig) { c.trace = on }
}

// WithName sets the name used in log records.
func WithName(name string) Option {
	return func(c *vmConfig) { c.name = name }
}

// New creates a VM whose memory is a deep copy of p.
func New(p Program, opts ...Option) *VM {
	cfg := &vmConfig{memoryLimit: DefaultMemoryLimit, name: "vm"}
	for _, opt := range opts {
		opt(cfg)
	}
	return &VM{
		mem:       NewMemory(p, cfg.memoryLimit),
		stepLimit: cfg.stepLimit,
		Trace:     cfg.trace,
		Name:      cfg.name,
	}
}

// State returns the current run state.
func (vm *VM) State() State { return vm.state }

// Halted reports whether the VM has stopped for good.
func (vm *VM) Halted() bool { return vm.state == StateHalted }

// Suspended reports whether the VM is waiting for input.
func (vm *VM) Suspended() bool { return vm.state == StateSuspended }

// Err returns the fatal error that halted the VM, if any.
func (vm *VM) Err() error { return vm.err }

// IP returns the instruction pointer.
func (vm *VM) IP() int { return vm.ip }

// Steps returns how many instructions the VM has executed.
func (vm *VM) Steps() int64 { return vm.steps }

// RelativeBase returns the current relative base.
func (vm *VM) RelativeBase() int { return vm.relBase }

// Memory exposes the VM's memory for inspection.
func (vm *VM) Memory() *Memory { return vm.mem }

// Peek reads a cell.
func (vm *VM) Peek(addr int) (*big.Int, error) { return vm.mem.Read(addr) }

// Poke writes a cell, typically to patch a program before running it.
func (vm *VM) Poke(addr int, v *big.Int) error { return vm.mem.Write(addr, v) }

// Run feeds the full input set on every resume until the VM halts and
// returns all output. A program that waits for input when none was given
// fails with ErrInputExhausted.
func (vm *VM) Run(inputs []*big.Int) ([]*big.Int, error) {
	var output []*big.Int
	for !vm.Halted() {
		out, err := vm.RunUntilInput(inputs)
		output = append(output, out...)
		if err != nil {
			return output, err
		}
		if vm.Suspended() && len(inputs) == 0 {
			return output, fmt.Errorf("%s: %w at ip=%d", vm.Name, ErrInputExhausted, vm.ip)
		}
	}
	return output, nil
}

// RunUntilInput executes until HALT, a fatal error, or an input instruction
// with no remaining input. Inputs are consumed in order. The returned output
// covers this call only.
func (vm *VM) RunUntilInput(inputs []*big.Int) ([]*big.Int, error) {
	if vm.Halted() {
		return nil, ErrHalted
	}
	vm.state = StateReady

	output := []*big.Int{}
	for {
		in, err := DecodeAt(vm.mem, vm.ip)
		if err != nil {
			return output, vm.fault(in.Op, err)
		}

		if vm.Trace {
			log.Debugf("%s [%04d] %-24s rb=%d", vm.Name, vm.ip, in, vm.relBase)
		}

		if in.Op == OpInput && len(inputs) == 0 {
			vm.state = StateSuspended
			if vm.Trace {
				log.Debugf("%s suspended at %d", vm.Name, vm.ip)
			}
			return output, nil
		}

		if vm.stepLimit > 0 && vm.steps >= vm.stepLimit {
			return output, vm.fault(in.Op, fmt.Errorf("%w: %d instructions", ErrStepLimit, vm.stepLimit))
		}
		vm.steps++

		next := vm.ip + in.Len()
		switch in.Op {
		case OpAdd, OpMultiply, OpLessThan, OpEquals:
			a, err := vm.value(in.Params[0])
			if err != nil {
				return output, vm.fault(in.Op, err)
			}
			b, err := vm.value(in.Params[1])
			if err != nil {
				return output, vm.fault(in.Op, err)
			}
			if err := vm.store(in.Params[2], arith(in.Op, a, b)); err != nil {
				return output, vm.fault(in.Op, err)
			}

		case OpInput:
			if err := vm.store(in.Params[0], inputs[0]); err != nil {
				return output, vm.fault(in.Op, err)
			}
			inputs = inputs[1:]

		case OpOutput:
			v, err := vm.value(in.Params[0])
			if err != nil {
				return output, vm.fault(in.Op, err)
			}
			output = append(output, v)

		case OpJumpIfTrue, OpJumpIfFalse:
			cond, err := vm.value(in.Params[0])
			if err != nil {
				return output, vm.fault(in.Op, err)
			}
			if (cond.Sign() != 0) == (in.Op == OpJumpIfTrue) {
				target, err := vm.value(in.Params[1])
				if err != nil {
					return output, vm.fault(in.Op, err)
				}
				if next, err = toAddress(target); err != nil {
					return output, vm.fault(in.Op, err)
				}
			}

		case OpAdjustBase:
			delta, err := vm.value(in.Params[0])
			if err != nil {
				return output, vm.fault(in.Op, err)
			}
			if err := vm.adjustBase(delta); err != nil {
				return output, vm.fault(in.Op, err)
			}

		case OpHalt:
			vm.state = StateHalted
			if vm.Trace {
				log.Debugf("%s halted at %d", vm.Name, vm.ip)
			}
			return output, nil

		default:
			// Decode only yields opcodes from the table.
			return output, vm.fault(in.Op, fmt.Errorf("%w: %d", ErrUnknownOpcode, in.Op))
		}
		vm.ip = next
	}
}

// arith computes the result of a three-operand instruction.
func arith(op Opcode, a, b *big.Int) *big.Int {
	switch op {
	case OpAdd:
		return a.Add(a, b)
	case OpMultiply:
		return a.Mul(a, b)
	case OpLessThan:
		return boolInt(a.Cmp(b) < 0)
	default:
		return boolInt(a.Cmp(b) == 0)
	}
}

func boolInt(b bool) *big.Int {
	if b {
		return big.NewInt(1)
	}
	return new(big.Int)
}

// value resolves a parameter to the value it denotes. The result is a fresh
// copy the caller may mutate.
func (vm *VM) value(p Parameter) (*big.Int, error) {
	switch p.Mode {
	case ModeImmediate:
		return new(big.Int).Set(p.Value), nil
	case ModeRelative:
		addr, err := vm.relative(p.Value)
		if err != nil {
			return nil, err
		}
		return vm.mem.Read(addr)
	default:
		addr, err := toAddress(p.Value)
		if err != nil {
			return nil, err
		}
		return vm.mem.Read(addr)
	}
}

// address resolves a destination parameter.
func (vm *VM) address(p Parameter) (int, error) {
	switch p.Mode {
	case ModeImmediate:
		return 0, fmt.Errorf("%w: immediate destination %s", ErrInvalidAddress, p.Value)
	case ModeRelative:
		return vm.relative(p.Value)
	default:
		return toAddress(p.Value)
	}
}

func (vm *VM) store(p Parameter, v *big.Int) error {
	addr, err := vm.address(p)
	if err != nil {
		return err
	}
	return vm.mem.Write(addr, v)
}

func (vm *VM) relative(offset *big.Int) (int, error) {
	return toAddress(new(big.Int).Add(big.NewInt(int64(vm.relBase)), offset))
}

func (vm *VM) adjustBase(delta *big.Int) error {
	sum := new(big.Int).Add(big.NewInt(int64(vm.relBase)), delta)
	if !sum.IsInt64() || sum.Int64() > math.MaxInt || sum.Int64() < math.MinInt {
		return fmt.Errorf("%w: relative base %d + %s", ErrArithmeticOverflow, vm.relBase, delta)
	}
	vm.relBase = int(sum.Int64())
	return nil
}

// toAddress converts a value to a memory address.
func toAddress(v *big.Int) (int, error) {
	if v.Sign() < 0 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidAddress, v)
	}
	if !v.IsInt64() || v.Int64() > math.MaxInt {
		return 0, fmt.Errorf("%w: %s out of range", ErrInvalidAddress, v)
	}
	return int(v.Int64()), nil
}

// fault halts the VM and records err.
func (vm *VM) fault(op Opcode, err error) error {
	vm.state = StateHalted
	vm.err = &Fault{IP: vm.ip, Op: op, Err: err}
	log.Warningf("%s: %v", vm.Name, vm.err)
	return vm.err
}
