//go:build blst

// Native pairing backend using the supranational/blst library via CGO.
//
// gnark-crypto and blst share the ZCash serialization for BLS12-381, so points
// cross the boundary through their 96/192-byte uncompressed encodings.
//
// Build with: go build -tags blst
// Test with:  go test -tags blst ./crypto/ -run Blst
package crypto

import (
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	blst "github.com/supranational/blst/bindings/go"
)

// BlstPairingBackend implements PairingBackend with blst Miller loops and a
// single final exponentiation check.
type BlstPairingBackend struct{}

// Name returns the backend identifier.
func (BlstPairingBackend) Name() string { return "blst" }

// PairEqual implements PairingBackend.
func (BlstPairingBackend) PairEqual(a *bls12381.G1Affine, b *bls12381.G2Affine, c *bls12381.G1Affine, d *bls12381.G2Affine) bool {
	if a == nil || b == nil || c == nil || d == nil {
		return false
	}
	pa, qb := toBlstP1(a), toBlstP2(b)
	pc, qd := toBlstP1(c), toBlstP2(d)
	if pa == nil || qb == nil || pc == nil || qd == nil {
		return false
	}
	lhs := blst.Fp12MillerLoop(qb, pa)
	rhs := blst.Fp12MillerLoop(qd, pc)
	return blst.Fp12FinalVerify(lhs, rhs)
}

func toBlstP1(p *bls12381.G1Affine) *blst.P1Affine {
	raw := p.RawBytes()
	q := new(blst.P1Affine).Deserialize(raw[:])
	if q == nil || !q.InG1() {
		return nil
	}
	return q
}

func toBlstP2(p *bls12381.G2Affine) *blst.P2Affine {
	raw := p.RawBytes()
	q := new(blst.P2Affine).Deserialize(raw[:])
	if q == nil || !q.InG2() {
		return nil
	}
	return q
}
