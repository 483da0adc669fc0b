package intcode

import (
	"fmt"
	"math/big"
	"strings"
)

// Mode selects how a parameter is interpreted.
type Mode uint8

const (
	// ModePosition reads the cell at the parameter's address.
	ModePosition Mode = 0

	// ModeImmediate uses the parameter itself.
	ModeImmediate Mode = 1

	// ModeRelative reads the cell at relative base + parameter.
	ModeRelative Mode = 2
)

// String returns a human-readable name for Mode.
func (m Mode) String() string {
	switch m {
	case ModePosition:
		return "position"
	case ModeImmediate:
		return "immediate"
	case ModeRelative:
		return "relative"
	default:
		return fmt.Sprintf("Mode(%d)", m)
	}
}

// modeFromDigit maps a mode digit; unknown digits fall back to position.
func modeFromDigit(d int64) Mode {
	switch d {
	case 1:
		return ModeImmediate
	case 2:
		return ModeRelative
	default:
		return ModePosition
	}
}

// Parameter is one operand of a decoded instruction.
type Parameter struct {
	Mode  Mode
	Value *big.Int
}

// String renders the parameter in listing syntax: *addr, #imm, @rel.
func (p Parameter) String() string {
	switch p.Mode {
	case ModeImmediate:
		return "#" + p.Value.String()
	case ModeRelative:
		return "@" + p.Value.String()
	default:
		return "*" + p.Value.String()
	}
}

// Instruction is an opcode plus its parameters, decoded at Addr.
type Instruction struct {
	Addr   int
	Op     Opcode
	Params []Parameter
}

// Len returns the number of cells the instruction occupies.
func (in Instruction) Len() int {
	return 1 + len(in.Params)
}

func (in Instruction) String() string {
	var sb strings.Builder
	sb.WriteString(in.Op.String())
	for _, p := range in.Params {
		sb.WriteByte(' ')
		sb.WriteString(p.String())
	}
	return sb.String()
}

// Decode splits an instruction cell into its opcode and the modes of up to
// three parameters. Missing mode digits default to position. Cells of any
// size decode positionally; only negative cells are rejected.
func Decode(cell *big.Int) (Opcode, [3]Mode, error) {
	var modes [3]Mode
	if cell.Sign() < 0 {
		return 0, modes, fmt.Errorf("%w: %s", ErrUnknownOpcode, cell)
	}
	rest, low := new(big.Int).QuoRem(cell, hundred, new(big.Int))
	op := Opcode(low.Int64())
	if !op.Valid() {
		return op, modes, fmt.Errorf("%w: %d", ErrUnknownOpcode, low.Int64())
	}
	digit := new(big.Int)
	for i := range modes {
		rest.QuoRem(rest, ten, digit)
		modes[i] = modeFromDigit(digit.Int64())
	}
	return op, modes, nil
}

var (
	ten     = big.NewInt(10)
	hundred = big.NewInt(100)
)

// DecodeAt decodes the full instruction starting at ip. The parameters must
// already lie inside the backing store.
func DecodeAt(m *Memory, ip int) (Instruction, error) {
	if ip < 0 || ip >= m.Len() {
		return Instruction{Addr: ip}, fmt.Errorf("%w: ip %d outside program of %d cells", ErrMalformedProgram, ip, m.Len())
	}
	op, modes, err := Decode(m.cell(ip))
	if err != nil {
		return Instruction{Addr: ip, Op: op}, err
	}
	n := op.ParamCount()
	if ip+n >= m.Len() {
		return Instruction{Addr: ip, Op: op}, fmt.Errorf("%w: %s at %d needs %d parameters, store has %d cells",
			ErrMalformedProgram, op, ip, n, m.Len())
	}
	in := Instruction{Addr: ip, Op: op, Params: make([]Parameter, n)}
	for i := 0; i < n; i++ {
		in.Params[i] = Parameter{Mode: modes[i], Value: new(big.Int).Set(m.cell(ip + 1 + i))}
	}
	return in, nil
}
