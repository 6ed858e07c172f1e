package hll

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func denseTestConfig(t *testing.T, bitPack bool) *config {
	t.Helper()
	c, err := Config{P: 10, HashBits: 64, BitPack: bitPack}.toInternal()
	require.NoError(t, err)
	return c
}

func Test_NewDenseRegister_AllZero(t *testing.T) {
	for _, bitPack := range []bool{true, false} {
		c := denseTestConfig(t, bitPack)
		d := newDenseRegister(c)

		assert.Equal(t, int(c.m), d.numZeros)
		assert.Equal(t, byte(0), d.maxValue)
		for i := uint64(0); i < c.m; i++ {
			assert.Equal(t, byte(0), d.get(i))
		}
		assert.InDelta(t, float64(c.m), d.sumInversePow2(), 1e-9)
	}
}

func Test_DenseRegister_SetGetRoundTrip(t *testing.T) {
	for _, bitPack := range []bool{true, false} {
		c := denseTestConfig(t, bitPack)
		d := newDenseRegister(c)

		maxVal := byte(1<<uint(d.width) - 1)

		ok := d.set(0, maxVal)
		assert.True(t, ok)
		assert.Equal(t, maxVal, d.get(0))

		ok = d.set(5, 3)
		assert.True(t, ok)
		assert.Equal(t, byte(3), d.get(5))

		// unrelated slots are unaffected
		assert.Equal(t, byte(0), d.get(1))
	}
}

func Test_DenseRegister_Set_OnlyRaises(t *testing.T) {
	c := denseTestConfig(t, true)
	d := newDenseRegister(c)

	require.True(t, d.set(2, 5))
	assert.False(t, d.set(2, 3), "a lower value must not overwrite a higher one")
	assert.Equal(t, byte(5), d.get(2))

	assert.True(t, d.set(2, 9), "a strictly higher value must overwrite")
	assert.Equal(t, byte(9), d.get(2))
}

func Test_DenseRegister_Set_UpdatesNumZeros(t *testing.T) {
	c := denseTestConfig(t, true)
	d := newDenseRegister(c)

	before := d.numZeros
	d.set(7, 4)
	assert.Equal(t, before-1, d.numZeros)

	// re-raising an already-nonzero slot doesn't change numZeros again
	d.set(7, 6)
	assert.Equal(t, before-1, d.numZeros)
}

func Test_DenseRegister_Set_UpdatesMaxValue(t *testing.T) {
	c := denseTestConfig(t, true)
	d := newDenseRegister(c)

	d.set(0, 3)
	assert.Equal(t, byte(3), d.maxValue)

	d.set(1, 7)
	assert.Equal(t, byte(7), d.maxValue)

	d.set(2, 2)
	assert.Equal(t, byte(7), d.maxValue, "a lower insertion elsewhere must not lower maxValue")
}

func Test_DenseRegister_SumInversePow2_TracksSetValues(t *testing.T) {
	c := denseTestConfig(t, true)
	d := newDenseRegister(c)

	d.set(0, 1)
	d.set(1, 2)

	expected := float64(c.m-2) + 0.5 + 0.25
	assert.InDelta(t, expected, d.sumInversePow2(), 1e-9)
}

func Test_DenseRegister_Add_SelectsIndexAndRunLength(t *testing.T) {
	c := denseTestConfig(t, true)
	d := newDenseRegister(c)

	// p=10: index is the low 10 bits, run length comes from the remaining
	// high bits' trailing zero count + 1.
	hash := uint64(0b101) << 10 // low 10 bits all zero -> idx 0; w=0b101 -> tz=0 -> lr=1
	d.add(hash, c.p)
	assert.Equal(t, byte(1), d.get(0))

	hash2 := uint64(0b100)<<10 | 7 // idx 7; w=0b100 -> tz=2 -> lr=3
	d.add(hash2, c.p)
	assert.Equal(t, byte(3), d.get(7))
}

func Test_DenseRegister_Merge_KeepsPerSlotMax(t *testing.T) {
	c := denseTestConfig(t, true)
	a := newDenseRegister(c)
	b := newDenseRegister(c)

	a.set(0, 5)
	a.set(1, 2)
	b.set(0, 3)
	b.set(1, 9)
	b.set(2, 4)

	require.NoError(t, a.merge(b))

	assert.Equal(t, byte(5), a.get(0))
	assert.Equal(t, byte(9), a.get(1))
	assert.Equal(t, byte(4), a.get(2))
	assert.Equal(t, byte(9), a.maxValue)
}

func Test_DenseRegister_Merge_SizeMismatch(t *testing.T) {
	small, err := Config{P: 8, HashBits: 64}.toInternal()
	require.NoError(t, err)
	big, err := Config{P: 10, HashBits: 64}.toInternal()
	require.NoError(t, err)

	a := newDenseRegister(small)
	b := newDenseRegister(big)

	err = a.merge(b)
	require.Error(t, err)
	var sizeErr *SizeMismatchError
	require.ErrorAs(t, err, &sizeErr)
}

func Test_DenseRegister_ExportImportBytes_RoundTrip(t *testing.T) {
	c := denseTestConfig(t, true)
	a := newDenseRegister(c)

	a.set(0, 5)
	a.set(10, 12)
	a.set(1000, 63)

	exported := a.exportBytes()
	require.Len(t, exported, int(c.m))

	b := newDenseRegister(c)
	require.NoError(t, b.importBytes(exported))

	assert.Equal(t, byte(5), b.get(0))
	assert.Equal(t, byte(12), b.get(10))
	assert.Equal(t, byte(63), b.get(1000))
}

func Test_DenseRegister_ImportBytes_SizeMismatch(t *testing.T) {
	c := denseTestConfig(t, true)
	d := newDenseRegister(c)

	err := d.importBytes(make([]byte, 3))
	require.Error(t, err)
	var sizeErr *SizeMismatchError
	require.ErrorAs(t, err, &sizeErr)
}
