package dntat

import (
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/eth2030/dntat/crypto"
	"github.com/eth2030/dntat/metrics"
)

// Verify reports whether token is valid for the user secret sku under apk:
//
//	e(sigma, g2) == e(hbar, apk0 * apk1^theta * apk2^sku * apk3^omega)
//
// with theta = H(hbar || "3"). Malformed input yields false, never a panic.
func Verify(token *Token, apk *AggregatePublicKey, sku *fr.Element) bool {
	timer := metrics.NewTimer(metrics.VerifyTime)
	defer timer.Stop()

	ok := token != nil && apk != nil &&
		checkSignature(&token.Sigma, &apk.Keys, &token.HBar, &token.Omega, sku)
	if ok {
		metrics.VerifyAccepted.Inc()
	} else {
		metrics.VerifyRejected.Inc()
	}
	return ok
}

// VerifyPartial checks a single signer's partial signature against that
// signer's own key. It lets the user locate a faulty signer before
// aggregating; Verify on the token is the check that matters.
func VerifyPartial(partial *bls12381.G1Affine, pk *SignerPublicKey, hbar *bls12381.G1Affine, omega, sku *fr.Element) bool {
	if pk == nil {
		return false
	}
	return checkSignature(partial, &pk.G2, hbar, omega, sku)
}

func checkSignature(sig *bls12381.G1Affine, keys *[Width]bls12381.G2Affine, hbar *bls12381.G1Affine, omega, sku *fr.Element) bool {
	if sig == nil || hbar == nil || omega == nil || sku == nil {
		return false
	}
	// An identity hbar satisfies the equation with an identity signature.
	if !crypto.ValidG1(hbar) || !crypto.ValidG1(sig) {
		return false
	}
	theta, err := challengeTheta(hbar)
	if err != nil {
		return false
	}
	var one fr.Element
	one.SetOne()
	rhs, err := crypto.MultiExpG2(keys[:], []fr.Element{one, theta, *sku, *omega}, 0)
	if err != nil {
		return false
	}
	g2 := crypto.G2Generator()
	return crypto.PairEqual(sig, &g2, hbar, &rhs)
}
