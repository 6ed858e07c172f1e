package hll

import "math"

// Estimator owns either a sparse or a dense register (never both) and
// tracks a cached cardinality estimate that mutation invalidates. The zero
// value is a valid empty Estimator provided Defaults has installed a
// Config; otherwise operations on the zero value panic.
type Estimator struct {
	cfg      *config
	encoding Encoding

	sparse *sparseRegister
	dense  *denseRegister

	cachedCount     uint64
	haveCachedCount bool
}

// New constructs an Estimator with the given Config, validating it first.
func New(cfg Config) (*Estimator, error) {
	internal, err := cfg.toInternal()
	if err != nil {
		return nil, err
	}

	return &Estimator{cfg: internal, encoding: cfg.Encoding}, nil
}

// initOrPanic lazily adopts the installed default Config for a zero-value
// Estimator, or panics if none has been installed.
func (e *Estimator) initOrPanic() {
	if e.cfg != nil {
		return
	}

	d := getDefaults()
	if d == nil {
		panic("hll: operation on zero-value Estimator without installed defaults (see Defaults)")
	}
	e.cfg = d
	e.encoding = Sparse
}

func (e *Estimator) ensureRegister() {
	if e.sparse != nil || e.dense != nil {
		return
	}
	if e.encoding == Dense {
		e.dense = newDenseRegister(e.cfg)
	} else {
		e.sparse = newSparseRegister(e.cfg)
	}
}

// Add submits a 64-bit hash value for counting. Hashing the caller's
// original value is out of scope for this package; see the hashinput
// package for a thin wrapper.
func (e *Estimator) Add(hash uint64) {
	e.initOrPanic()
	e.ensureRegister()

	switch e.encoding {
	case Sparse:
		e.sparse.add(hash)
		if e.sparse.size() > e.cfg.promotionThreshold {
			e.promote()
		}
	case Dense:
		e.dense.add(hash, e.cfg.p)
	}

	e.haveCachedCount = false
}

// promote runs the sparse-to-dense projection and irreversibly switches
// encoding to Dense, releasing the prior sparse storage.
func (e *Estimator) promote() {
	dense := newDenseRegister(e.cfg)
	sparseToDense(e.sparse.entries(), dense, e.cfg.p)

	e.dense = dense
	e.sparse = nil
	e.encoding = Dense
}

// linearCount implements the short-range estimator: round(size*ln(size/zeros)).
func linearCount(size, zeros uint64) uint64 {
	return uint64(math.Floor(float64(size)*math.Log(float64(size)/float64(zeros)) + 0.5))
}

// Count returns the current cardinality estimate, consulting the cache
// unless a mutation has invalidated it.
func (e *Estimator) Count() uint64 {
	e.initOrPanic()

	if e.haveCachedCount {
		return e.cachedCount
	}

	var result uint64

	switch e.encoding {
	case Sparse:
		result = e.countSparse()
	case Dense:
		result = e.countDense()
	}

	e.cachedCount = result
	e.haveCachedCount = true
	return result
}

func (e *Estimator) countSparse() uint64 {
	if e.sparse == nil {
		return 0
	}

	mPrime := uint64(1) << pPrime
	size := uint64(len(e.sparse.entries()))
	if size >= mPrime {
		return mPrime
	}

	zeros := mPrime - size
	return linearCount(mPrime, zeros)
}

func (e *Estimator) countDense() uint64 {
	if e.dense == nil {
		return 0
	}

	sum := e.dense.sumInversePow2()
	zeros := e.dense.numZeros

	raw := e.cfg.alphaMM / sum
	est := math.Trunc(raw)

	if est <= 2.5*float64(e.cfg.m) && zeros > 0 {
		est = float64(linearCount(e.cfg.m, uint64(zeros)))
	}

	if e.cfg.countingBits < 64 {
		pow := math.Pow(2, float64(e.cfg.countingBits))
		// pow/30 is the larger threshold here (1/30 > 0.033333), so this
		// inner comparison is the one that actually gates the correction.
		if est > 0.033333*pow && est > pow/30 {
			est = -pow * math.Log(1-est/pow)
		}
	}

	return uint64(est + 0.5)
}

// StandardError returns the bounded relative standard error, 1.04/sqrt(m).
func (e *Estimator) StandardError() float64 {
	e.initOrPanic()
	return e.cfg.standardError()
}

// Encoding returns the estimator's current register encoding.
func (e *Estimator) Encoding() Encoding {
	e.initOrPanic()
	return e.encoding
}

// P returns the configured register-index bit count.
func (e *Estimator) P() int {
	e.initOrPanic()
	return e.cfg.p
}

// HashBits returns the configured effective hash width.
func (e *Estimator) HashBits() int {
	e.initOrPanic()
	return e.cfg.hashBits
}

// Clear resets the estimator to an empty state in the sparse encoding,
// releasing both register arrays, whichever Encoding it was constructed
// with. The configuration is preserved.
func (e *Estimator) Clear() {
	e.initOrPanic()
	e.sparse = nil
	e.dense = nil
	e.encoding = Sparse
	e.cachedCount = 0
	e.haveCachedCount = false
}

// DenseRegisterBytes returns the m-byte dense register array in index
// order, for an external serializer. It returns nil if the estimator is
// not currently in the dense encoding.
func (e *Estimator) DenseRegisterBytes() []byte {
	e.initOrPanic()
	if e.dense == nil {
		return nil
	}
	return e.dense.exportBytes()
}

// SetDenseRegister bulk-loads an m-byte dense register array, switching the
// estimator to the dense encoding. Each byte is applied through the same
// strictly-greater guard as a normal Add, so invariants hold regardless of
// prior state.
func (e *Estimator) SetDenseRegister(bytes []byte) error {
	e.initOrPanic()

	if e.dense == nil {
		e.dense = newDenseRegister(e.cfg)
	}
	if err := e.dense.importBytes(bytes); err != nil {
		return err
	}

	e.sparse = nil
	e.encoding = Dense
	e.haveCachedCount = false
	return nil
}

// SparseEntries returns the compacted, sorted sparse packed entries, for an
// external serializer. It returns nil if the estimator is not currently in
// the sparse encoding.
func (e *Estimator) SparseEntries() []uint32 {
	e.initOrPanic()
	if e.sparse == nil {
		return nil
	}
	return e.sparse.entries()
}

// SetSparseRegister bulk-loads packed sparse entries. A sparse estimator
// takes them into its sparse register (promoting immediately to dense if the
// loaded data exceeds the promotion threshold); a dense estimator stays
// dense and has the entries projected into its dense register.
func (e *Estimator) SetSparseRegister(packed []uint32) {
	e.initOrPanic()

	if e.encoding == Dense {
		e.ensureRegister()
		sparseToDense(packed, e.dense, e.cfg.p)
		e.haveCachedCount = false
		return
	}

	e.dense = nil
	if e.sparse == nil {
		e.sparse = newSparseRegister(e.cfg)
	}
	e.encoding = Sparse

	for _, p := range packed {
		idx, val := unpackSparse(p)
		e.sparse.set(idx, val)
	}

	e.haveCachedCount = false

	if e.sparse.size() > e.cfg.promotionThreshold {
		e.promote()
	}
}

// SetCount seeds the cardinality cache with n, for an external
// deserializer. The seeded value is returned by the next Count call but is
// invalidated, like any other cached count, by the next mutation.
func (e *Estimator) SetCount(n uint64) {
	e.initOrPanic()
	e.cachedCount = n
	e.haveCachedCount = true
}
