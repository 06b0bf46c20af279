// Pairing backends for the token verification equation.
//
// Verification reduces to a single product-of-pairings check
//
//	e(a, b) == e(c, d)
//
// which the gnark backend evaluates as e(a, b) * e(-c, d) == 1 with one shared
// final exponentiation. A native blst backend is available with the "blst"
// build tag and can be selected at runtime via SetPairingBackend.
package crypto

import (
	"sync"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
)

// PairingBackend evaluates pairing equations over BLS12-381.
type PairingBackend interface {
	// PairEqual reports whether e(a, b) == e(c, d). Implementations must not
	// panic on malformed points; they return false instead.
	PairEqual(a *bls12381.G1Affine, b *bls12381.G2Affine, c *bls12381.G1Affine, d *bls12381.G2Affine) bool

	// Name returns a human-readable name for the backend.
	Name() string
}

var (
	activePairingMu      sync.RWMutex
	activePairingBackend PairingBackend = &GnarkPairingBackend{}
)

// DefaultPairingBackend returns the currently active backend.
func DefaultPairingBackend() PairingBackend {
	activePairingMu.RLock()
	defer activePairingMu.RUnlock()
	return activePairingBackend
}

// SetPairingBackend replaces the active backend. A nil backend is ignored.
func SetPairingBackend(b PairingBackend) {
	if b == nil {
		return
	}
	activePairingMu.Lock()
	defer activePairingMu.Unlock()
	activePairingBackend = b
}

// PairEqual evaluates e(a, b) == e(c, d) with the active backend.
func PairEqual(a *bls12381.G1Affine, b *bls12381.G2Affine, c *bls12381.G1Affine, d *bls12381.G2Affine) bool {
	return DefaultPairingBackend().PairEqual(a, b, c, d)
}

// GnarkPairingBackend evaluates pairings with gnark-crypto in pure Go.
type GnarkPairingBackend struct{}

// Name returns the backend identifier.
func (GnarkPairingBackend) Name() string { return "gnark" }

// PairEqual implements PairingBackend.
func (GnarkPairingBackend) PairEqual(a *bls12381.G1Affine, b *bls12381.G2Affine, c *bls12381.G1Affine, d *bls12381.G2Affine) bool {
	if a == nil || b == nil || c == nil || d == nil {
		return false
	}
	var negC bls12381.G1Affine
	negC.Neg(c)
	ok, err := bls12381.PairingCheck(
		[]bls12381.G1Affine{*a, negC},
		[]bls12381.G2Affine{*b, *d},
	)
	return err == nil && ok
}
