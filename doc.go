// Package hll implements a HyperLogLog cardinality estimator with dual
// sparse/dense encoding, bias-corrected estimation, and mergeability.
//
// The estimator consumes 64-bit hash values (see the sibling hashinput
// package for a thin wrapper that hashes raw values) and approximates the
// number of distinct values seen using sub-linear memory, with a bounded
// relative standard error of approximately 1.04/sqrt(m) where m = 2^p.
//
// By default an Estimator starts in the sparse encoding, which favors accuracy at low
// cardinalities, and is promoted irreversibly to the dense encoding once its
// sparse representation grows past a configured threshold. Hashing,
// serialization, and concurrency are all left to the caller: an Estimator is
// a plain mutable value and must not be shared across goroutines without
// external synchronization.
package hll
