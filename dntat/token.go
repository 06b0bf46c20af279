package dntat

import (
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/eth2030/dntat/crypto"
	"github.com/eth2030/dntat/metrics"
)

// Token is the aggregated anonymous token. It does not reveal which signers
// took part beyond what the aggregate key already fixes.
type Token struct {
	Omega fr.Element
	HBar  bls12381.G1Affine
	Sigma bls12381.G1Affine
}

// AggregateToken combines partial signatures into sigma = sum_i a_i *
// partials[i], using the same ordered list pks that built the aggregate key.
func AggregateToken(partials []bls12381.G1Affine, hbar *bls12381.G1Affine, omega *fr.Element, pks []*SignerPublicKey) (*Token, error) {
	if len(pks) == 0 {
		return nil, ErrNoSigners
	}
	if len(partials) != len(pks) {
		return nil, fmt.Errorf("%w: %d partials, %d public keys", ErrPartialCountMismatch, len(partials), len(pks))
	}
	if hbar == nil || omega == nil {
		return nil, ErrNilKey
	}
	timer := metrics.NewTimer(metrics.TokenAggregateTime)
	defer timer.Stop()

	coeffs, err := Coefficients(pks)
	if err != nil {
		return nil, err
	}
	sigma, err := crypto.MultiExpG1(partials, coeffs, 0)
	if err != nil {
		return nil, fmt.Errorf("dntat: aggregate token: %w", err)
	}
	metrics.TokensAggregated.Inc()
	return &Token{Omega: *omega, HBar: *hbar, Sigma: sigma}, nil
}

// Aggregate is shorthand for AggregateToken over the session outputs.
func (r *SignResult) Aggregate(pks []*SignerPublicKey) (*Token, error) {
	return AggregateToken(r.Partials, &r.HBar, &r.Omega, pks)
}

// Equal reports whether both tokens have identical fields.
func (t *Token) Equal(other *Token) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.Omega.Equal(&other.Omega) && t.HBar.Equal(&other.HBar) && t.Sigma.Equal(&other.Sigma)
}
