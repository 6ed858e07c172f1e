package hll

import (
	"math"
	"sync"
)

// Encoding identifies which register representation an Estimator currently
// uses. Transitions are monotone: Sparse can promote to Dense, never back;
// only Clear, which empties the estimator, returns it to Sparse.
type Encoding int

const (
	// Sparse stores (index, value) pairs at a higher addressing precision
	// than the configured p, favoring accuracy at low cardinalities.
	Sparse Encoding = iota
	// Dense stores one register per slot across the full m = 2^p array.
	Dense
)

func (e Encoding) String() string {
	switch e {
	case Sparse:
		return "sparse"
	case Dense:
		return "dense"
	default:
		return "unknown"
	}
}

const (
	minP = 4
	maxP = 16

	// pPrime and qPrime are fixed per spec: sparse addressing precision and
	// sparse value-field bit width, respectively.
	pPrime = 25
	qPrime = 6
)

// Config configures a new Estimator. The zero value is not valid; use New
// or install process-wide defaults with Defaults and construct the zero
// value Estimator.
type Config struct {
	// P is the register-index bit count. m = 2^P registers are allocated in
	// the dense encoding. Must be in [4, 16].
	P int

	// HashBits is the effective width of the hash values that will be
	// submitted. One of 16, 32, 64, 128. Values >= 64 are treated as 64 for
	// counting purposes. Zero defaults to 64.
	HashBits int

	// Encoding is the initial register encoding. Zero value is Sparse.
	Encoding Encoding

	// BitPack controls whether dense registers are packed at 6 bits each
	// (true) or stored one full byte per register (false, the zero value).
	// This only affects the promotion threshold and the nominal register
	// value ceiling, not the counting semantics.
	BitPack bool
}

// config is the validated, precomputed counterpart to Config. Building one
// is not free (it derives alphaMM and promotionThreshold), so validated
// configs are cached by their originating Config value.
type config struct {
	p        int
	m        uint64
	hashBits int
	// countingBits is min(hashBits, 64): the long-range saturation
	// correction only ever applies below the 64-bit boundary.
	countingBits int

	bitPack bool

	alphaMM            float64
	promotionThreshold int
}

var (
	defaultConfig     *config
	defaultConfigLock sync.RWMutex

	configCache     = map[Config]*config{}
	configCacheLock sync.RWMutex
)

// Defaults installs the Config that will be used to lazily initialize a
// zero-value Estimator. It is meant to be called once, at startup. It
// returns an error if cfg is invalid.
func Defaults(cfg Config) error {
	c, err := cfg.toInternal()
	if err != nil {
		return err
	}

	defaultConfigLock.Lock()
	defer defaultConfigLock.Unlock()
	defaultConfig = c
	return nil
}

func getDefaults() *config {
	defaultConfigLock.RLock()
	defer defaultConfigLock.RUnlock()
	return defaultConfig
}

// toInternal validates cfg and returns its cached, precomputed internal
// form, computing and caching it on the first call for a given Config.
func (cfg Config) toInternal() (*config, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	configCacheLock.RLock()
	cached := configCache[cfg]
	configCacheLock.RUnlock()
	if cached != nil {
		return cached, nil
	}

	hashBits := cfg.HashBits
	if hashBits == 0 {
		hashBits = 64
	}

	countingBits := hashBits
	if countingBits > 64 {
		countingBits = 64
	}

	m := uint64(1) << uint(cfg.P)

	c := &config{
		p:                  cfg.P,
		m:                  m,
		hashBits:           hashBits,
		countingBits:       countingBits,
		bitPack:            cfg.BitPack,
		alphaMM:            alphaMM(hashBits, m),
		promotionThreshold: promotionThreshold(m, cfg.BitPack),
	}

	configCacheLock.Lock()
	configCache[cfg] = c
	configCacheLock.Unlock()

	return c, nil
}

func (cfg Config) validate() error {
	if cfg.P < minP || cfg.P > maxP {
		return &ConfigurationError{Field: "P", Min: minP, Max: maxP, Got: cfg.P}
	}
	return nil
}

// alphaMM computes alpha * m^2, where alpha is a bias constant selected by
// the effective hash width.
func alphaMM(hashBits int, m uint64) float64 {
	mf := float64(m)

	var alpha float64
	switch {
	case hashBits <= 16:
		alpha = 0.673
	case hashBits <= 32:
		alpha = 0.697
	case hashBits <= 64:
		alpha = 0.709
	default:
		alpha = 0.7213 / (1 + 1.079/mf)
	}

	return alpha * mf * mf
}

// promotionThreshold computes the sparse-list size above which the
// estimator promotes to dense.
func promotionThreshold(m uint64, bitPack bool) int {
	if bitPack {
		return int((m * 6 / 8) / 5)
	}
	return int(m / 3)
}

// registerWidth returns the number of bits used to store one dense register
// for this config: 6 when bit-packed, 8 otherwise.
func (c *config) registerWidth() int {
	if c.bitPack {
		return 6
	}
	return 8
}

// standardError returns the estimator's bounded relative standard error,
// 1.04/sqrt(m).
func (c *config) standardError() float64 {
	return 1.04 / math.Sqrt(float64(c.m))
}
