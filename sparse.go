package hll

import "sort"

// packSparse combines a sparse-precision index and register value into a
// single integer: value occupies the low qPrime bits, index the next
// pPrime bits.
func packSparse(idx uint32, val byte) uint32 {
	return idx<<qPrime | uint32(val)
}

func unpackSparse(packed uint32) (idx uint32, val byte) {
	val = byte(packed & ((1 << qPrime) - 1))
	idx = packed >> qPrime
	return idx, val
}

// sparseRegister is an ordered collection of (index, value) pairs at the
// fixed higher precision pPrime, with a temporary append-only staging
// buffer that is periodically folded into a compact, sorted, per-index-
// deduplicated run.
type sparseRegister struct {
	tempList        []uint32
	sparseList      []uint32 // sorted ascending by index, unique per index
	tempListMaxSize int
}

func newSparseRegister(c *config) *sparseRegister {
	max := int(c.m / 4)
	if max < 1 {
		max = 1
	}
	return &sparseRegister{tempListMaxSize: max}
}

// add encodes hash at precision pPrime and appends it to tempList,
// compacting if the staging buffer has grown past its soft limit. It
// reports whether the insertion could plausibly have raised the estimate
// (a new index, or a value higher than whatever this index already holds
// in the compacted list).
func (s *sparseRegister) add(hash uint64) bool {
	idxP := uint32(hash & ((1 << pPrime) - 1))
	wP := hash >> pPrime
	lrP := trailingZeros(wP, 64-pPrime) + 1

	changed := s.wouldRaise(idxP, byte(lrP))

	s.tempList = append(s.tempList, packSparse(idxP, byte(lrP)))
	if len(s.tempList) > s.tempListMaxSize {
		s.compact()
	}

	return changed
}

// wouldRaise reports whether val is higher than whatever this register
// currently holds for idx in the compacted sparseList. It does not inspect
// the not-yet-compacted tempList, matching size()'s upper-bound semantics.
func (s *sparseRegister) wouldRaise(idx uint32, val byte) bool {
	i := sort.Search(len(s.sparseList), func(i int) bool {
		existingIdx, _ := unpackSparse(s.sparseList[i])
		return existingIdx >= idx
	})
	if i >= len(s.sparseList) {
		return true
	}
	existingIdx, existingVal := unpackSparse(s.sparseList[i])
	if existingIdx != idx {
		return true
	}
	return val > existingVal
}

// set packs (idx, val) and routes it through the same compaction path as
// add. It is used by external deserializers bulk-loading a previously
// externalized sparse register.
func (s *sparseRegister) set(idx uint32, val byte) bool {
	changed := s.wouldRaise(idx, val)
	s.tempList = append(s.tempList, packSparse(idx, val))
	s.compact()
	return changed
}

// compact merges tempList into sparseList: the union is sorted by index
// ascending, ties broken by keeping the maximum value, and the
// deduplicated run replaces sparseList. tempList is cleared.
func (s *sparseRegister) compact() {
	if len(s.tempList) == 0 {
		return
	}
	s.sparseList = mergeSparseEntries(s.sparseList, s.tempList)
	s.tempList = nil
}

// mergeSparseEntries returns the sorted, per-index-deduplicated (keeping
// the maximum value) union of a and b as a freshly allocated slice,
// touching neither input. Shared by compact (which folds the result back
// into sparseList) and peekEntries (which must not mutate its receiver,
// for use against a merge peer).
func mergeSparseEntries(a, b []uint32) []uint32 {
	combined := make([]uint32, 0, len(a)+len(b))
	combined = append(combined, a...)
	combined = append(combined, b...)

	sort.Slice(combined, func(i, j int) bool {
		idxI, _ := unpackSparse(combined[i])
		idxJ, _ := unpackSparse(combined[j])
		return idxI < idxJ
	})

	out := combined[:0]
	for _, packed := range combined {
		idx, val := unpackSparse(packed)
		if n := len(out); n > 0 {
			lastIdx, lastVal := unpackSparse(out[n-1])
			if lastIdx == idx {
				if val > lastVal {
					out[n-1] = packed
				}
				continue
			}
		}
		out = append(out, packed)
	}

	return out
}

// size returns an upper bound on the number of unique indices held, usable
// for promotion-threshold checks without forcing a compaction.
func (s *sparseRegister) size() int {
	return len(s.sparseList) + len(s.tempList)
}

// entries forces a compaction and returns the compacted, sorted, unique
// (index, value) pairs as packed integers, per the sparse wire format.
func (s *sparseRegister) entries() []uint32 {
	s.compact()
	return s.sparseList
}

// peekEntries returns the same compacted, sorted, unique entries as
// entries, without mutating the receiver. Used when reading a merge peer,
// which must be left untouched.
func (s *sparseRegister) peekEntries() []uint32 {
	if len(s.tempList) == 0 {
		return s.sparseList
	}
	return mergeSparseEntries(s.sparseList, s.tempList)
}

// merge unions other's staged and compacted entries into s and compacts,
// keeping the per-index maximum.
func (s *sparseRegister) merge(other *sparseRegister) {
	s.tempList = append(s.tempList, other.tempList...)
	s.tempList = append(s.tempList, other.sparseList...)
	s.compact()
}
