// Package assist searches for the noun and verb that make a program produce
// a target value.
//
// The program is patched before it runs: cell 1 holds the noun and cell 2
// the verb. After the VM halts, cell 0 holds the program's answer.
package assist

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/chazu/intcode/pkg/intcode"
)

// ErrNotFound is returned when no noun/verb pair in range yields the target.
var ErrNotFound = errors.New("no noun/verb pair produces the target")

// DefaultMax bounds noun and verb when no limit is given.
const DefaultMax = 100

// Pair is a noun/verb assignment.
type Pair struct {
	Noun int64
	Verb int64
}

// Answer encodes the pair as 100*noun + verb.
func (p Pair) Answer() int64 {
	return 100*p.Noun + p.Verb
}

func (p Pair) String() string {
	return fmt.Sprintf("noun=%d verb=%d", p.Noun, p.Verb)
}

// Evaluate runs a fresh copy of p with cells 1 and 2 patched and returns
// cell 0 once the VM halts. The program may not ask for input.
func Evaluate(p intcode.Program, noun, verb int64, opts ...intcode.Option) (*big.Int, error) {
	vm := intcode.New(p, opts...)
	if err := vm.Poke(1, big.NewInt(noun)); err != nil {
		return nil, err
	}
	if err := vm.Poke(2, big.NewInt(verb)); err != nil {
		return nil, err
	}
	if _, err := vm.Run(nil); err != nil {
		return nil, fmt.Errorf("%s: %w", Pair{noun, verb}, err)
	}
	return vm.Peek(0)
}

// Search scans nouns and then verbs in [0, max) and returns the first pair
// whose result equals target. Pairs that fault are skipped.
func Search(p intcode.Program, target *big.Int, max int64, opts ...intcode.Option) (Pair, error) {
	if max <= 0 {
		max = DefaultMax
	}
	for noun := int64(0); noun < max; noun++ {
		for verb := int64(0); verb < max; verb++ {
			got, err := Evaluate(p, noun, verb, opts...)
			if err != nil {
				if intcode.IsFatal(err) {
					continue
				}
				return Pair{}, err
			}
			if got.Cmp(target) == 0 {
				return Pair{noun, verb}, nil
			}
		}
	}
	return Pair{}, fmt.Errorf("%w: target %s, range [0, %d)", ErrNotFound, target, max)
}
