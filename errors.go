package hll

import (
	"fmt"

	"github.com/pkg/errors"
)

// errNilRegister guards against operating on an Estimator whose live
// register was never allocated, which indicates a bug in this package
// rather than caller misuse.
var errNilRegister = errors.New("hll: live register is nil")

// ConfigurationError is returned by New when a Config field is outside its
// documented bounds.
type ConfigurationError struct {
	Field    string
	Min, Max int
	Got      int
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("hll: %s must be in [%d, %d], got %d", e.Field, e.Min, e.Max, e.Got)
}

// MergeMismatchError is returned by Estimator.Merge when the two estimators
// were built with incompatible parameters.
type MergeMismatchError struct {
	Field       string
	This, Other int
}

func (e *MergeMismatchError) Error() string {
	return fmt.Sprintf("hll: cannot merge estimators with different %s (%d != %d)", e.Field, e.This, e.Other)
}

// SizeMismatchError is returned when two dense register arrays have
// different lengths, which can arise from SetDenseRegister as well as from
// Merge.
type SizeMismatchError struct {
	LenA, LenB int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("hll: dense register size mismatch (%d != %d)", e.LenA, e.LenB)
}
