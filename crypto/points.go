package crypto

import (
	"errors"

	"github.com/consensys/gnark-crypto/ecc"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// Serialized point sizes. Transcripts use the uncompressed encodings so every
// point contributes a fixed number of bytes; wire formats use compression.
const (
	G1Size           = bls12381.SizeOfG1AffineUncompressed
	G2Size           = bls12381.SizeOfG2AffineUncompressed
	G1CompressedSize = bls12381.SizeOfG1AffineCompressed
	G2CompressedSize = bls12381.SizeOfG2AffineCompressed
)

// Point errors.
var (
	ErrPointEncoding  = errors.New("crypto: invalid point encoding")
	ErrPointIdentity  = errors.New("crypto: point is the identity")
	ErrLengthMismatch = errors.New("crypto: points and scalars differ in length")
)

// G1Bytes returns the fixed-size uncompressed encoding of p.
func G1Bytes(p *bls12381.G1Affine) []byte {
	b := p.RawBytes()
	return b[:]
}

// G2Bytes returns the fixed-size uncompressed encoding of p.
func G2Bytes(p *bls12381.G2Affine) []byte {
	b := p.RawBytes()
	return b[:]
}

// G1FromBytes decodes a compressed or uncompressed G1 point and checks that
// it lies in the prime-order subgroup.
func G1FromBytes(b []byte) (bls12381.G1Affine, error) {
	var p bls12381.G1Affine
	if len(b) != G1CompressedSize && len(b) != G1Size {
		return p, ErrPointEncoding
	}
	if _, err := p.SetBytes(b); err != nil {
		return p, ErrPointEncoding
	}
	return p, nil
}

// G2FromBytes decodes a compressed or uncompressed G2 point and checks that
// it lies in the prime-order subgroup.
func G2FromBytes(b []byte) (bls12381.G2Affine, error) {
	var p bls12381.G2Affine
	if len(b) != G2CompressedSize && len(b) != G2Size {
		return p, ErrPointEncoding
	}
	if _, err := p.SetBytes(b); err != nil {
		return p, ErrPointEncoding
	}
	return p, nil
}

// ValidG1 reports whether p is a non-identity point of the G1 subgroup.
func ValidG1(p *bls12381.G1Affine) bool {
	return p != nil && !p.IsInfinity() && p.IsOnCurve() && p.IsInSubGroup()
}

// ValidG2 reports whether p is a non-identity point of the G2 subgroup.
func ValidG2(p *bls12381.G2Affine) bool {
	return p != nil && !p.IsInfinity() && p.IsOnCurve() && p.IsInSubGroup()
}

// MulG1 returns s*p.
func MulG1(p *bls12381.G1Affine, s *fr.Element) bls12381.G1Affine {
	var r bls12381.G1Affine
	r.ScalarMultiplication(p, bigInt(s))
	return r
}

// MulG2 returns s*p.
func MulG2(p *bls12381.G2Affine, s *fr.Element) bls12381.G2Affine {
	var r bls12381.G2Affine
	r.ScalarMultiplication(p, bigInt(s))
	return r
}

// AddG1 returns a+b.
func AddG1(a, b *bls12381.G1Affine) bls12381.G1Affine {
	var r bls12381.G1Affine
	r.Add(a, b)
	return r
}

// AddG2 returns a+b.
func AddG2(a, b *bls12381.G2Affine) bls12381.G2Affine {
	var r bls12381.G2Affine
	r.Add(a, b)
	return r
}

// MultiExpG1 returns sum(scalars[i]*points[i]). tasks bounds the goroutines
// used by the library; values <= 0 let it pick. The zero value of an affine
// point is the identity, which is returned for empty input.
func MultiExpG1(points []bls12381.G1Affine, scalars []fr.Element, tasks int) (bls12381.G1Affine, error) {
	var r bls12381.G1Affine
	if len(points) != len(scalars) {
		return r, ErrLengthMismatch
	}
	if len(points) == 0 {
		return r, nil
	}
	if _, err := r.MultiExp(points, scalars, multiExpConfig(tasks)); err != nil {
		return r, err
	}
	return r, nil
}

// MultiExpG2 returns sum(scalars[i]*points[i]) in G2.
func MultiExpG2(points []bls12381.G2Affine, scalars []fr.Element, tasks int) (bls12381.G2Affine, error) {
	var r bls12381.G2Affine
	if len(points) != len(scalars) {
		return r, ErrLengthMismatch
	}
	if len(points) == 0 {
		return r, nil
	}
	if _, err := r.MultiExp(points, scalars, multiExpConfig(tasks)); err != nil {
		return r, err
	}
	return r, nil
}

func multiExpConfig(tasks int) ecc.MultiExpConfig {
	if tasks <= 0 {
		return ecc.MultiExpConfig{}
	}
	return ecc.MultiExpConfig{NbTasks: tasks}
}
