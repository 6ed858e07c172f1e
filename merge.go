package hll

// Merge folds other into e, keeping the per-slot/per-index maximum. It
// rejects estimators built with a different P or HashBits. e's encoding may
// be promoted to Dense as a result; other is read but never mutated.
//
// The four cases dispatch on the pair of encodings: same-encoding merges
// fold directly, a sparse receiver facing a dense peer promotes itself
// first, and a dense receiver facing a sparse peer projects the peer's
// entries into a throwaway dense register rather than touching the peer.
func (e *Estimator) Merge(other *Estimator) error {
	e.initOrPanic()
	other.initOrPanic()

	if e.cfg.p != other.cfg.p {
		return &MergeMismatchError{Field: "P", This: e.cfg.p, Other: other.cfg.p}
	}
	if e.cfg.hashBits != other.cfg.hashBits {
		return &MergeMismatchError{Field: "HashBits", This: e.cfg.hashBits, Other: other.cfg.hashBits}
	}

	e.ensureRegister()
	other.ensureRegister()

	if (e.encoding == Dense && e.dense == nil) || (e.encoding == Sparse && e.sparse == nil) {
		panic(errNilRegister)
	}
	if (other.encoding == Dense && other.dense == nil) || (other.encoding == Sparse && other.sparse == nil) {
		panic(errNilRegister)
	}

	switch {
	case e.encoding == Sparse && other.encoding == Sparse:
		e.sparse.merge(other.sparse)
		if e.sparse.size() > e.cfg.promotionThreshold {
			e.promote()
		}

	case e.encoding == Dense && other.encoding == Dense:
		if err := e.dense.merge(other.dense); err != nil {
			return err
		}

	case e.encoding == Sparse && other.encoding == Dense:
		e.promote()
		if err := e.dense.merge(other.dense); err != nil {
			return err
		}

	case e.encoding == Dense && other.encoding == Sparse:
		projected := newDenseRegister(e.cfg)
		sparseToDense(other.sparse.peekEntries(), projected, e.cfg.p)
		if err := e.dense.merge(projected); err != nil {
			return err
		}
	}

	e.haveCachedCount = false
	return nil
}
