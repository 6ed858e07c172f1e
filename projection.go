package hll

// sparseToDense projects every (index, value) pair held at sparse precision
// pPrime down to dense precision p and applies it to dense. It is a pure
// transformation over its entries argument: dense is the only thing
// written.
//
// The discarded bits between p and pPrime carry their own run length: if
// they're all zero the original run extends through them, so the dense
// value is valP plus the discarded width; otherwise the run stopped inside
// the discarded bits and their own trailing-zero count (plus one) becomes
// the dense value.
func sparseToDense(entries []uint32, dense *denseRegister, p int) {
	shift := uint(pPrime - p)
	discardMask := uint32(1<<shift) - 1

	for _, packed := range entries {
		idxP, valP := unpackSparse(packed)

		idx := idxP >> shift
		rBits := idxP & discardMask

		var val byte
		if rBits != 0 {
			val = byte(trailingZeros(uint64(rBits), shift) + 1)
		} else {
			val = valP + byte(shift)
		}

		dense.set(uint64(idx), val)
	}
}
