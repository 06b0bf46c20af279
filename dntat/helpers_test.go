package dntat

import (
	"testing"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/eth2030/dntat/crypto"
)

// fixture is a signer set with its aggregate key and one user.
type fixture struct {
	sks []*SignerSecretKey
	pks []*SignerPublicKey
	apk *AggregatePublicKey
	sku fr.Element
	pku bls12381.G1Affine
}

func newFixture(t testing.TB, n int) *fixture {
	t.Helper()
	f := &fixture{
		sks: make([]*SignerSecretKey, n),
		pks: make([]*SignerPublicKey, n),
	}
	for i := 0; i < n; i++ {
		pk, sk, err := GenerateSignerKeyPair()
		if err != nil {
			t.Fatalf("GenerateSignerKeyPair: %v", err)
		}
		f.pks[i], f.sks[i] = pk, sk
	}
	apk, err := AggregateKeys(f.pks)
	if err != nil {
		t.Fatalf("AggregateKeys: %v", err)
	}
	f.apk = apk
	pku, sku, err := GenerateUserKeyPair()
	if err != nil {
		t.Fatalf("GenerateUserKeyPair: %v", err)
	}
	f.pku, f.sku = pku, sku
	return f
}

// issue signs and aggregates one token for the fixture's user.
func (f *fixture) issue(t testing.TB, s *Signer) (*Token, *SignResult) {
	t.Helper()
	res, err := s.Sign(f.sks, f.pks, &f.sku, &f.pku)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	tok, err := res.Aggregate(f.pks)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	return tok, res
}

func randScalar(t testing.TB) fr.Element {
	t.Helper()
	s, err := crypto.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	return s
}

// permute returns a copy of xs reordered by idx.
func permute[T any](xs []T, idx []int) []T {
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = xs[j]
	}
	return out
}
