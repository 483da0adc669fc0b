package intcode

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUnwrittenReadsZero(t *testing.T) {
	mem := NewMemory(FromInts(1, 2, 3), 0)
	for _, addr := range []int{3, 4, 100, 5000} {
		v, err := mem.Read(addr)
		require.NoError(t, err)
		assert.Equal(t, 0, v.Sign(), "read(%d)", addr)
	}
}

func TestMemoryWriteThenRead(t *testing.T) {
	mem := NewMemory(FromInts(1, 2, 3), 0)
	big1, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	for _, addr := range []int{0, 2, 3, 1000, 65536} {
		require.NoError(t, mem.Write(addr, big1))
		v, err := mem.Read(addr)
		require.NoError(t, err)
		assert.Equal(t, 0, v.Cmp(big1), "read(%d)", addr)
	}
}

func TestMemoryGrowsToExactAddress(t *testing.T) {
	mem := NewMemory(nil, 0)
	assert.Equal(t, 0, mem.Len())

	require.NoError(t, mem.Write(0, big.NewInt(9)))
	assert.Equal(t, 1, mem.Len())

	_, err := mem.Read(1)
	require.NoError(t, err)
	assert.Equal(t, 2, mem.Len())

	_, err = mem.Read(10)
	require.NoError(t, err)
	assert.Equal(t, 11, mem.Len())

	_, err = mem.Read(4)
	require.NoError(t, err)
	assert.Equal(t, 11, mem.Len(), "reading inside the store does not grow it")
}

func TestMemoryLargeGrowth(t *testing.T) {
	mem := NewMemory(FromInts(1, 2, 3), 0)
	const far = 10_000_000

	require.NoError(t, mem.Write(far, big.NewInt(9)))
	assert.Equal(t, far+1, mem.Len())

	v, err := mem.Read(far - 1)
	require.NoError(t, err)
	assert.Zero(t, v.Sign())
	assert.Equal(t, far+1, mem.Len(), "reading below the end must not grow")

	// Grown cells are independent of each other.
	require.NoError(t, mem.Write(far-1, big.NewInt(4)))
	v, _ = mem.Read(far - 2)
	assert.Zero(t, v.Sign())
	v, _ = mem.Read(far)
	assert.Equal(t, int64(9), v.Int64())
	v, _ = mem.Read(2)
	assert.Equal(t, int64(3), v.Int64())
}

func TestMemoryInvalidAddress(t *testing.T) {
	mem := NewMemory(FromInts(1), 8)

	_, err := mem.Read(-1)
	assert.ErrorIs(t, err, ErrInvalidAddress)
	assert.ErrorIs(t, mem.Write(-5, big.NewInt(1)), ErrInvalidAddress)
	assert.ErrorIs(t, mem.Write(8, big.NewInt(1)), ErrInvalidAddress)
	assert.Equal(t, 1, mem.Len())
}

func TestMemoryIsolation(t *testing.T) {
	p := FromInts(5, 6)
	mem := NewMemory(p, 0)

	require.NoError(t, mem.Write(0, big.NewInt(50)))
	assert.Equal(t, int64(5), p[0].Int64(), "program must not alias memory")

	v, err := mem.Read(1)
	require.NoError(t, err)
	v.SetInt64(60)
	again, _ := mem.Read(1)
	assert.Equal(t, int64(6), again.Int64(), "read must return a copy")

	cells := mem.Cells()
	cells[0].SetInt64(0)
	again, _ = mem.Read(0)
	assert.Equal(t, int64(50), again.Int64(), "Cells must return copies")
}

func TestMemoryEqual(t *testing.T) {
	a := NewMemory(FromInts(1, 2), 0)
	b := NewMemory(FromInts(1, 2), 0)
	assert.True(t, a.Equal(b))

	_, _ = b.Read(2)
	assert.False(t, a.Equal(b))
	_, _ = a.Read(2)
	assert.True(t, a.Equal(b))

	_ = a.Write(0, big.NewInt(7))
	assert.False(t, a.Equal(b))
}
