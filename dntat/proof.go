package dntat

import (
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/eth2030/dntat/crypto"
)

// proofWidth is the number of witnesses: r1..r5, theta, sku and omega.
const proofWidth = 8

// Request is the blinded request a user hands to the signers: the base h
// with hbar = h^r1 and the commitments T1..T4.
type Request struct {
	H bls12381.G1Affine
	T [Width]bls12381.G1Affine
}

// RequestProof is a Fiat-Shamir proof of knowledge of (r1..r5, theta, sku,
// omega) such that
//
//	T1 = h^r1 * g1^r2
//	T2 = T1^theta * g1^r3
//	T3 = T1^sku * g1^r4
//	T4 = T1^omega * g1^r5
//	pku = g1^sku
//
// Responses are s_k = k_k - c*w_k for nonces k and witnesses w in that order.
type RequestProof struct {
	Challenge fr.Element
	Responses [proofWidth]fr.Element
}

// proveRequest proves the session's request is well formed for pku.
func proveRequest(sess *session, pku *bls12381.G1Affine) (*RequestProof, error) {
	ks, err := crypto.RandomScalars(proofWidth)
	if err != nil {
		return nil, err
	}
	var k [proofWidth]fr.Element
	copy(k[:], ks)

	g1 := crypto.G1Generator()
	t1 := sess.t[0]
	rows := [4]struct {
		points  []bls12381.G1Affine
		scalars []fr.Element
	}{
		{[]bls12381.G1Affine{sess.h, g1}, []fr.Element{k[0], k[1]}},
		{[]bls12381.G1Affine{t1, g1}, []fr.Element{k[5], k[2]}},
		{[]bls12381.G1Affine{t1, g1}, []fr.Element{k[6], k[3]}},
		{[]bls12381.G1Affine{t1, g1}, []fr.Element{k[7], k[4]}},
	}
	var comms [5]bls12381.G1Affine
	for i, row := range rows {
		c, err := crypto.MultiExpG1(row.points, row.scalars, 1)
		if err != nil {
			return nil, err
		}
		comms[i] = c
	}
	comms[4] = crypto.MulG1(&g1, &k[6])

	req := sess.request()
	ch, err := requestChallenge(req, &comms, pku)
	if err != nil {
		return nil, err
	}

	witness := [proofWidth]fr.Element{
		sess.r[0], sess.r[1], sess.r[2], sess.r[3], sess.r[4],
		sess.theta, sess.sku, sess.omega,
	}
	proof := &RequestProof{Challenge: ch}
	for i := range witness {
		var cw fr.Element
		cw.Mul(&ch, &witness[i])
		proof.Responses[i].Sub(&k[i], &cw)
	}
	return proof, nil
}

// VerifyRequest checks proof against req and the user public key. It
// recomputes each commitment from the responses and the challenge and
// compares the rehashed challenge.
func VerifyRequest(req *Request, proof *RequestProof, pku *bls12381.G1Affine) bool {
	if req == nil || proof == nil || pku == nil {
		return false
	}
	if !crypto.ValidG1(&req.H) || !crypto.ValidG1(pku) {
		return false
	}
	for j := range req.T {
		if !crypto.ValidG1(&req.T[j]) {
			return false
		}
	}

	g1 := crypto.G1Generator()
	s := &proof.Responses
	c := proof.Challenge
	t1 := req.T[0]
	rows := [5]struct {
		points  []bls12381.G1Affine
		scalars []fr.Element
	}{
		{[]bls12381.G1Affine{req.H, g1, t1}, []fr.Element{s[0], s[1], c}},
		{[]bls12381.G1Affine{t1, g1, req.T[1]}, []fr.Element{s[5], s[2], c}},
		{[]bls12381.G1Affine{t1, g1, req.T[2]}, []fr.Element{s[6], s[3], c}},
		{[]bls12381.G1Affine{t1, g1, req.T[3]}, []fr.Element{s[7], s[4], c}},
		{[]bls12381.G1Affine{g1, *pku}, []fr.Element{s[6], c}},
	}
	var comms [5]bls12381.G1Affine
	for i, row := range rows {
		p, err := crypto.MultiExpG1(row.points, row.scalars, 1)
		if err != nil {
			return false
		}
		comms[i] = p
	}
	ch, err := requestChallenge(req, &comms, pku)
	if err != nil {
		return false
	}
	return ch.Equal(&proof.Challenge)
}

// requestChallenge hashes g1 || h || comm1..comm5 || T1..T4 || pku || "1".
func requestChallenge(req *Request, comms *[5]bls12381.G1Affine, pku *bls12381.G1Affine) (fr.Element, error) {
	g1 := crypto.G1Generator()
	t := crypto.NewTranscript(12*crypto.G1Size + len(tagRequest))
	t.AppendG1(&g1, &req.H)
	for i := range comms {
		t.AppendG1(&comms[i])
	}
	for j := range req.T {
		t.AppendG1(&req.T[j])
	}
	t.AppendG1(pku)
	return t.Challenge(tagRequest)
}
