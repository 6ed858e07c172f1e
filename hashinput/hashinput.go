// Package hashinput hashes raw values before they are submitted to an
// hll.Estimator. The core hll package is deliberately hash-agnostic (see
// hll's package doc); this package is the only place in this module that
// imports a hash library.
package hashinput

import (
	"encoding/binary"

	"github.com/cespare/xxhash"
	farm "github.com/dgryski/go-farm"
	"github.com/spaolacci/murmur3"
)

// Algorithm selects which 64-bit hash function a Hasher applies.
type Algorithm int

const (
	// XXHash uses github.com/cespare/xxhash, the default.
	XXHash Algorithm = iota
	// Murmur3 uses github.com/spaolacci/murmur3's 64-bit variant.
	Murmur3
	// FarmHash uses github.com/dgryski/go-farm's Hash64.
	FarmHash
)

// Hasher hashes raw values down to the uint64 an hll.Estimator's Add
// expects. The zero value uses XXHash.
type Hasher struct {
	Algorithm Algorithm
}

// New returns a Hasher using the given algorithm.
func New(algo Algorithm) Hasher {
	return Hasher{Algorithm: algo}
}

// HashBytes hashes b.
func (h Hasher) HashBytes(b []byte) uint64 {
	switch h.Algorithm {
	case Murmur3:
		return murmur3.Sum64(b)
	case FarmHash:
		return farm.Hash64(b)
	default:
		return xxhash.Sum64(b)
	}
}

// HashString hashes the bytes of s, converting s to a []byte and passing it
// to HashBytes.
func (h Hasher) HashString(s string) uint64 {
	return h.HashBytes([]byte(s))
}

// HashUint64 hashes the big-endian encoding of v. Submitting v directly to
// Estimator.Add would bias the register selection because Add consumes its
// low bits as an index; hashing first restores the uniform-hash assumption
// the estimator relies on.
func (h Hasher) HashUint64(v uint64) uint64 {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return h.HashBytes(buf[:])
}
