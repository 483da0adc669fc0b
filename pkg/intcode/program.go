package intcode

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"
	"unicode"
)

// Program is the immutable cell sequence a VM is loaded from.
type Program []*big.Int

// ParseProgram parses comma and/or whitespace separated integers. Values may
// exceed 64 bits.
func ParseProgram(text string) (Program, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty program", ErrParse)
	}
	p := make(Program, len(fields))
	for i, f := range fields {
		v, ok := new(big.Int).SetString(f, 10)
		if !ok {
			return nil, fmt.Errorf("%w: cell %d: %q is not an integer", ErrParse, i, f)
		}
		p[i] = v
	}
	return p, nil
}

// MustParse is ParseProgram for literals known to be valid.
func MustParse(text string) Program {
	p, err := ParseProgram(text)
	if err != nil {
		panic(err)
	}
	return p
}

// ReadProgram parses a program from r.
func ReadProgram(r io.Reader) (Program, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading program: %w", err)
	}
	return ParseProgram(string(data))
}

// LoadProgramFile reads either a text program or a binary image from path.
func LoadProgramFile(path string) (Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if IsImage(data) {
		img, err := UnmarshalImage(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return img.Program(), nil
	}
	p, err := ParseProgram(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// FromInts builds a program from machine integers.
func FromInts(values ...int64) Program {
	p := make(Program, len(values))
	for i, v := range values {
		p[i] = big.NewInt(v)
	}
	return p
}

// Clone returns a deep copy.
func (p Program) Clone() Program {
	out := make(Program, len(p))
	for i, v := range p {
		out[i] = new(big.Int).Set(v)
	}
	return out
}

// String renders the canonical comma-separated form.
func (p Program) String() string {
	var buf bytes.Buffer
	for i, v := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(v.String())
	}
	return buf.String()
}

// Hash returns the hex SHA-256 of the canonical text form.
func (p Program) Hash() string {
	sum := sha256.Sum256([]byte(p.String()))
	return hex.EncodeToString(sum[:])
}

// Ints converts decimal strings into values, as used for inputs on the wire.
func Ints(values ...string) ([]*big.Int, error) {
	out := make([]*big.Int, len(values))
	for i, s := range values {
		v, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
		if !ok {
			return nil, fmt.Errorf("%w: value %d: %q is not an integer", ErrParse, i, s)
		}
		out[i] = v
	}
	return out, nil
}

// Strings renders values as decimal strings.
func Strings(values []*big.Int) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}
