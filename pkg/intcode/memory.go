package intcode

import (
	"fmt"
	"math/big"
	"slices"
)

// DefaultMemoryLimit caps how many cells a single VM may address.
const DefaultMemoryLimit = 1 << 24

// Memory is the growable cell store of one VM. Any address that has never
// been written reads as zero; touching an address grows the store to exactly
// addr+1 cells.
type Memory struct {
	cells []*big.Int
	limit int
}

// NewMemory returns a memory initialized with a deep copy of p.
func NewMemory(p Program, limit int) *Memory {
	if limit <= 0 {
		limit = DefaultMemoryLimit
	}
	m := &Memory{
		cells: make([]*big.Int, len(p)),
		limit: limit,
	}
	for i, v := range p {
		m.cells[i] = new(big.Int).Set(v)
	}
	return m
}

// Len returns the current size of the backing store.
func (m *Memory) Len() int {
	return len(m.cells)
}

// Read returns a copy of the value at addr.
func (m *Memory) Read(addr int) (*big.Int, error) {
	if err := m.grow(addr); err != nil {
		return nil, err
	}
	return new(big.Int).Set(m.cells[addr]), nil
}

// Write stores a copy of v at addr.
func (m *Memory) Write(addr int, v *big.Int) error {
	if err := m.grow(addr); err != nil {
		return err
	}
	m.cells[addr].Set(v)
	return nil
}

// grow extends the store to addr+1 cells, zero filled.
func (m *Memory) grow(addr int) error {
	if addr < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidAddress, addr)
	}
	if addr >= m.limit {
		return fmt.Errorf("%w: %d exceeds memory limit %d", ErrInvalidAddress, addr, m.limit)
	}
	n := addr + 1 - len(m.cells)
	if n <= 0 {
		return nil
	}
	m.cells = slices.Grow(m.cells, n)
	fresh := make([]big.Int, n)
	for i := range fresh {
		m.cells = append(m.cells, &fresh[i])
	}
	return nil
}

// cell returns the stored value without growing or copying. The caller must
// not retain or mutate it.
func (m *Memory) cell(addr int) *big.Int {
	return m.cells[addr]
}

// Cells returns a deep copy of the backing store.
func (m *Memory) Cells() []*big.Int {
	out := make([]*big.Int, len(m.cells))
	for i, v := range m.cells {
		out[i] = new(big.Int).Set(v)
	}
	return out
}

// Equal reports whether two memories hold the same cells.
func (m *Memory) Equal(other *Memory) bool {
	if len(m.cells) != len(other.cells) {
		return false
	}
	for i := range m.cells {
		if m.cells[i].Cmp(other.cells[i]) != 0 {
			return false
		}
	}
	return true
}
