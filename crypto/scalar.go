package crypto

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// Scalar sampling and hashing errors.
var (
	ErrRandomness     = errors.New("crypto: scalar sampling failed")
	ErrHashToScalar   = errors.New("crypto: hash to scalar failed")
	ErrScalarEncoding = errors.New("crypto: non-canonical scalar encoding")
)

// maxZeroDraws bounds rejection sampling of the zero scalar. Drawing zero
// even once has probability 2^-255, so hitting the bound means the entropy
// source is broken.
const maxZeroDraws = 4

// RandomScalar samples a uniformly random non-zero scalar from the system
// CSPRNG.
func RandomScalar() (fr.Element, error) {
	var s fr.Element
	for i := 0; i < maxZeroDraws; i++ {
		if _, err := s.SetRandom(); err != nil {
			return fr.Element{}, fmt.Errorf("%w: %v", ErrRandomness, err)
		}
		if !s.IsZero() {
			return s, nil
		}
	}
	return fr.Element{}, ErrRandomness
}

// RandomScalars fills n fresh non-zero scalars.
func RandomScalars(n int) ([]fr.Element, error) {
	out := make([]fr.Element, n)
	for i := range out {
		s, err := RandomScalar()
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// HashToScalar maps msg to the scalar field with expand_message_xmd over
// SHA-256 under ScalarDST.
func HashToScalar(msg []byte) (fr.Element, error) {
	out, err := fr.Hash(msg, ScalarDST, 1)
	if err != nil {
		return fr.Element{}, fmt.Errorf("%w: %v", ErrHashToScalar, err)
	}
	return out[0], nil
}

// ScalarBytes returns the canonical 32-byte big-endian encoding of s.
func ScalarBytes(s *fr.Element) []byte {
	b := s.Bytes()
	return b[:]
}

// ScalarFromBytes decodes a canonical 32-byte big-endian scalar.
func ScalarFromBytes(b []byte) (fr.Element, error) {
	var s fr.Element
	if len(b) != fr.Bytes {
		return s, ErrScalarEncoding
	}
	if err := s.SetBytesCanonical(b); err != nil {
		return s, fmt.Errorf("%w: %v", ErrScalarEncoding, err)
	}
	return s, nil
}

// bigInt converts s to the big.Int expected by gnark scalar multiplication.
func bigInt(s *fr.Element) *big.Int {
	return s.BigInt(new(big.Int))
}
