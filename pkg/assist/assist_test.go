package assist

import (
	"math/big"
	"testing"

	"github.com/chazu/intcode/pkg/intcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cell0 = cell[noun] + cell[verb]; cells 5 and 6 hold 10 and 20.
const adder = "1,0,0,0,99,10,20"

func TestEvaluate(t *testing.T) {
	p := intcode.MustParse(adder)

	got, err := Evaluate(p, 5, 6)
	require.NoError(t, err)
	assert.Equal(t, int64(30), got.Int64())

	got, err = Evaluate(p, 0, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.Int64())

	assert.Equal(t, adder, p.String(), "the program itself is never patched")
}

func TestEvaluateDayTwo(t *testing.T) {
	p := intcode.MustParse("1,9,10,3,2,3,11,0,99,30,40,50")
	got, err := Evaluate(p, 9, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3500), got.Int64())
}

func TestSearch(t *testing.T) {
	pair, err := Search(intcode.MustParse(adder), big.NewInt(40), 7)
	require.NoError(t, err)
	assert.Equal(t, Pair{Noun: 6, Verb: 6}, pair)
	assert.Equal(t, int64(606), pair.Answer())
	assert.Equal(t, "noun=6 verb=6", pair.String())
}

func TestSearchSkipsFaults(t *testing.T) {
	// Reading past the five-cell limit faults for verbs 5 and 6.
	p := intcode.MustParse("2,0,0,0,99")
	pair, err := Search(p, big.NewInt(99*99), 7, intcode.WithMemoryLimit(5))
	require.NoError(t, err)
	assert.Equal(t, Pair{Noun: 4, Verb: 4}, pair)
}

func TestSearchNotFound(t *testing.T) {
	_, err := Search(intcode.MustParse(adder), big.NewInt(12345), 7)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearchNeedsNoInput(t *testing.T) {
	_, err := Search(intcode.MustParse("3,0,99"), big.NewInt(1), 2)
	assert.ErrorIs(t, err, intcode.ErrInputExhausted)
}
