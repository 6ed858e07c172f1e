package hll

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_SparseToDense_ExactMultipleOfP(t *testing.T) {
	c, err := Config{P: 14, HashBits: 64}.toInternal()
	require.NoError(t, err)

	dense := newDenseRegister(c)

	// idxP packs an index at pPrime=25 bits whose low (pPrime-p) bits are
	// all zero, so the discarded bits are zero and val = valP + shift.
	shift := byte(pPrime - c.p)
	idxP := uint32(7) << shift
	entries := []uint32{packSparse(idxP, 3)}

	sparseToDense(entries, dense, c.p)

	assert.Equal(t, byte(3+shift), dense.get(7))
}

func Test_SparseToDense_NonzeroDiscardedBits(t *testing.T) {
	c, err := Config{P: 14, HashBits: 64}.toInternal()
	require.NoError(t, err)

	dense := newDenseRegister(c)

	shift := uint(pPrime - c.p)
	idxP := uint32(9)<<shift | 0x2 // low `shift` bits = 0b10 -> trailingZeros=1 -> val=2

	entries := []uint32{packSparse(idxP, 5)}
	sparseToDense(entries, dense, c.p)

	assert.Equal(t, byte(2), dense.get(9))
}

func Test_SparseToDense_OnlyRaises(t *testing.T) {
	c, err := Config{P: 14, HashBits: 64}.toInternal()
	require.NoError(t, err)

	dense := newDenseRegister(c)
	dense.set(3, 50)

	shift := byte(pPrime - c.p)
	idxP := uint32(3) << shift
	entries := []uint32{packSparse(idxP, 1)}

	sparseToDense(entries, dense, c.p)

	assert.Equal(t, byte(50), dense.get(3), "projection must go through the same strictly-greater guard as a normal set")
}

func Test_SparseToDense_DoesNotMutateEntries(t *testing.T) {
	c, err := Config{P: 14, HashBits: 64}.toInternal()
	require.NoError(t, err)

	dense := newDenseRegister(c)
	entries := []uint32{packSparse(1, 1), packSparse(2, 2)}
	before := append([]uint32(nil), entries...)

	sparseToDense(entries, dense, c.p)

	assert.Equal(t, before, entries)
}
