package dntat

import (
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/eth2030/dntat/crypto"
)

// Width is the length of the signed message vector (1, theta, sku, omega),
// and therefore the number of components in every signer key.
const Width = 4

// SignerSecretKey holds one signer's secret exponents x_1..x_4.
type SignerSecretKey struct {
	X [Width]fr.Element
}

// SignerPublicKey holds g1^x_j and g2^x_j for j = 1..4. The G1 half is used
// by the signer to strip the request blinding; the G2 half is aggregated
// into the verification key.
type SignerPublicKey struct {
	G1 [Width]bls12381.G1Affine
	G2 [Width]bls12381.G2Affine
}

// GenerateSignerKeyPair samples a fresh signer key pair.
func GenerateSignerKeyPair() (*SignerPublicKey, *SignerSecretKey, error) {
	xs, err := crypto.RandomScalars(Width)
	if err != nil {
		return nil, nil, err
	}
	sk := new(SignerSecretKey)
	copy(sk.X[:], xs)
	return sk.Public(), sk, nil
}

// Public derives the public key from the fixed generators.
func (sk *SignerSecretKey) Public() *SignerPublicKey {
	g1, g2 := crypto.Generators()
	pk := new(SignerPublicKey)
	for j := range sk.X {
		pk.G1[j] = crypto.MulG1(&g1, &sk.X[j])
		pk.G2[j] = crypto.MulG2(&g2, &sk.X[j])
	}
	return pk
}

// Matches reports whether pk is the public key of sk.
func (pk *SignerPublicKey) Matches(sk *SignerSecretKey) bool {
	if pk == nil || sk == nil {
		return false
	}
	return pk.Equal(sk.Public())
}

// Equal reports whether both keys have identical components.
func (pk *SignerPublicKey) Equal(other *SignerPublicKey) bool {
	if pk == nil || other == nil {
		return pk == other
	}
	for j := 0; j < Width; j++ {
		if !pk.G1[j].Equal(&other.G1[j]) || !pk.G2[j].Equal(&other.G2[j]) {
			return false
		}
	}
	return true
}

// Validate checks that every component is a non-identity subgroup point and
// that each G1 component carries the same exponent as its G2 counterpart,
// i.e. e(G1[j], g2) == e(g1, G2[j]).
func (pk *SignerPublicKey) Validate() error {
	if pk == nil {
		return ErrNilKey
	}
	g1, g2 := crypto.Generators()
	for j := 0; j < Width; j++ {
		if !crypto.ValidG1(&pk.G1[j]) || !crypto.ValidG2(&pk.G2[j]) {
			return fmt.Errorf("%w: component %d not in subgroup", ErrInvalidPublicKey, j)
		}
		if !crypto.PairEqual(&pk.G1[j], &g2, &g1, &pk.G2[j]) {
			return fmt.Errorf("%w: component %d differs between G1 and G2", ErrInvalidPublicKey, j)
		}
	}
	return nil
}

// GenerateUserKeyPair samples the user secret sku and returns pku = g1^sku
// together with it.
func GenerateUserKeyPair() (bls12381.G1Affine, fr.Element, error) {
	sku, err := crypto.RandomScalar()
	if err != nil {
		return bls12381.G1Affine{}, fr.Element{}, err
	}
	g1 := crypto.G1Generator()
	return crypto.MulG1(&g1, &sku), sku, nil
}
