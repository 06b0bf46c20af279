// Package crypto adapts the BLS12-381 pairing group from gnark-crypto to the
// operations needed by the anonymous token schemes in this module: fixed
// generators, scalar sampling, domain-separated hashing to the scalar field,
// transcript serialization, multi-scalar multiplication and pairing checks.
//
// The engine must be initialized once per process before any group operation.
// Init is idempotent and safe to call from multiple goroutines; every exported
// helper that needs the generators initializes the engine lazily.
package crypto

import (
	"sync"
	"sync/atomic"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
)

// Domain separation tags for hashing into the groups and the scalar field.
var (
	G1DST     = []byte("DNTAT-V01-CS01-with-BLS12381G1_XMD:SHA-256_SSWU_RO_")
	G2DST     = []byte("DNTAT-V01-CS01-with-BLS12381G2_XMD:SHA-256_SSWU_RO_")
	ScalarDST = []byte("DNTAT-V01-CS01-with-BLS12381FR_XMD:SHA-256_")
)

// Labels hashed to obtain the fixed generators.
const (
	g1Label = "G1"
	g2Label = "G2"
)

// engine holds the process-wide generators. It is written exactly once by
// Init and read-only afterwards.
var engine struct {
	once sync.Once
	err  error
	g1   bls12381.G1Affine
	g2   bls12381.G2Affine
	done atomic.Bool
}

// Init derives the fixed generators g1 = H1("G1") and g2 = H2("G2"). Repeated
// calls are no-ops and return the result of the first call.
func Init() error {
	engine.once.Do(func() {
		g1, err := bls12381.HashToG1([]byte(g1Label), G1DST)
		if err != nil {
			engine.err = err
			return
		}
		g2, err := bls12381.HashToG2([]byte(g2Label), G2DST)
		if err != nil {
			engine.err = err
			return
		}
		engine.g1, engine.g2 = g1, g2
		engine.done.Store(true)
	})
	return engine.err
}

// MustInit is like Init but panics on failure. Hashing a constant label can
// only fail on a broken build of the curve library.
func MustInit() {
	if err := Init(); err != nil {
		panic("crypto: engine initialization failed: " + err.Error())
	}
}

// Initialized reports whether Init has completed successfully.
func Initialized() bool {
	return engine.done.Load()
}

// Generators returns copies of the fixed G1 and G2 generators.
func Generators() (bls12381.G1Affine, bls12381.G2Affine) {
	MustInit()
	return engine.g1, engine.g2
}

// G1Generator returns a copy of the fixed G1 generator.
func G1Generator() bls12381.G1Affine {
	MustInit()
	return engine.g1
}

// G2Generator returns a copy of the fixed G2 generator.
func G2Generator() bls12381.G2Affine {
	MustInit()
	return engine.g2
}
