package amplifier

import (
	"fmt"
	"math/big"

	"github.com/chazu/intcode/pkg/intcode"
)

// Result is the best phase assignment found by Search.
type Result struct {
	Signal *big.Int
	Phases []int64
	Mode   Mode

	// Evaluated counts the assignments that were tried.
	Evaluated int
}

// Permutations returns every ordering of values. Orderings are produced in
// lexicographic order of the original indices, so the input order comes
// first and its reverse comes last.
func Permutations(values []int64) [][]int64 {
	n := len(values)
	if n == 0 {
		return nil
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	var out [][]int64
	for {
		perm := make([]int64, n)
		for i, j := range idx {
			perm[i] = values[j]
		}
		out = append(out, perm)

		if !nextPermutation(idx) {
			return out
		}
	}
}

// nextPermutation advances idx to the next ordering and reports false once
// the last ordering has been reached.
func nextPermutation(idx []int) bool {
	i := len(idx) - 2
	for i >= 0 && idx[i] >= idx[i+1] {
		i--
	}
	if i < 0 {
		return false
	}
	j := len(idx) - 1
	for idx[j] <= idx[i] {
		j--
	}
	idx[i], idx[j] = idx[j], idx[i]
	for l, r := i+1, len(idx)-1; l < r; l, r = l+1, r-1 {
		idx[l], idx[r] = idx[r], idx[l]
	}
	return true
}

// Search tries every ordering of phases and returns the one that yields the
// strongest signal. When several orderings tie, the first one found wins.
// Any VM fault aborts the search.
func Search(p intcode.Program, phases []int64, mode Mode, opts ...intcode.Option) (*Result, error) {
	if len(phases) == 0 {
		return nil, ErrNoPhases
	}
	seen := make(map[int64]bool, len(phases))
	for _, ph := range phases {
		if seen[ph] {
			return nil, fmt.Errorf("%w: phase %d repeats", ErrNoPhases, ph)
		}
		seen[ph] = true
	}

	var best *Result
	perms := Permutations(phases)
	for _, perm := range perms {
		signal, err := Run(p, perm, mode, opts...)
		if err != nil {
			return nil, fmt.Errorf("phases %v: %w", perm, err)
		}
		log.Debugf("%s %v -> %s", mode, perm, signal)

		if best == nil || signal.Cmp(best.Signal) > 0 {
			best = &Result{Signal: signal, Phases: perm, Mode: mode}
		}
	}
	best.Evaluated = len(perms)

	log.Infof("%s search over %d orderings: best %s with %v", mode, best.Evaluated, best.Signal, best.Phases)
	return best, nil
}
