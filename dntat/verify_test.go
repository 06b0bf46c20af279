package dntat

import (
	"errors"
	"fmt"
	"testing"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/eth2030/dntat/crypto"
	"github.com/eth2030/dntat/metrics"
)

// ---------------------------------------------------------------------------
// Round trip
// ---------------------------------------------------------------------------

func TestVerify_RoundTrip(t *testing.T) {
	for _, n := range []int{1, 2, 4, 7} {
		t.Run(fmt.Sprintf("signers=%d", n), func(t *testing.T) {
			f := newFixture(t, n)
			tok, _ := f.issue(t, NewSigner())
			if !Verify(tok, f.apk, &f.sku) {
				t.Fatal("honest token rejected")
			}
		})
	}
}

func TestVerify_WrongUserSecret(t *testing.T) {
	f := newFixture(t, 3)
	tok, _ := f.issue(t, NewSigner())
	other := randScalar(t)
	if Verify(tok, f.apk, &other) {
		t.Fatal("token accepted under a different user secret")
	}
}

func TestVerify_Metrics(t *testing.T) {
	f := newFixture(t, 2)
	tok, _ := f.issue(t, NewSigner())
	acc, rej := metrics.VerifyAccepted.Value(), metrics.VerifyRejected.Value()
	Verify(tok, f.apk, &f.sku)
	Verify(nil, f.apk, &f.sku)
	if got := metrics.VerifyAccepted.Value() - acc; got != 1 {
		t.Fatalf("accepted delta = %d, want 1", got)
	}
	if got := metrics.VerifyRejected.Value() - rej; got != 1 {
		t.Fatalf("rejected delta = %d, want 1", got)
	}
}

// ---------------------------------------------------------------------------
// Tampering
// ---------------------------------------------------------------------------

func TestVerify_TamperedToken(t *testing.T) {
	f := newFixture(t, 4)
	tok, _ := f.issue(t, NewSigner())
	g1 := crypto.G1Generator()
	var one fr.Element
	one.SetOne()

	tests := []struct {
		name   string
		mutate func(*Token)
	}{
		{"sigma", func(tk *Token) { tk.Sigma = crypto.AddG1(&tk.Sigma, &g1) }},
		{"hbar", func(tk *Token) { tk.HBar = crypto.AddG1(&tk.HBar, &tk.HBar) }},
		{"omega", func(tk *Token) { tk.Omega.Add(&tk.Omega, &one) }},
		{"identity hbar", func(tk *Token) { tk.HBar = bls12381.G1Affine{} }},
		{"identity sigma", func(tk *Token) { tk.Sigma = bls12381.G1Affine{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := *tok
			tt.mutate(&bad)
			if Verify(&bad, f.apk, &f.sku) {
				t.Fatal("tampered token accepted")
			}
		})
	}
	if !Verify(tok, f.apk, &f.sku) {
		t.Fatal("original token rejected after copies were mutated")
	}
}

func TestVerify_IdentityTokenRejected(t *testing.T) {
	f := newFixture(t, 2)
	var zero Token
	if Verify(&zero, f.apk, &f.sku) {
		t.Fatal("identity token accepted")
	}
}

func TestVerify_NilInputs(t *testing.T) {
	f := newFixture(t, 1)
	tok, _ := f.issue(t, NewSigner())
	if Verify(nil, f.apk, &f.sku) || Verify(tok, nil, &f.sku) || Verify(tok, f.apk, nil) {
		t.Fatal("nil input accepted")
	}
}

func TestVerify_ForeignKey(t *testing.T) {
	f := newFixture(t, 3)
	other := newFixture(t, 3)
	tok, _ := f.issue(t, NewSigner())
	if Verify(tok, other.apk, &f.sku) {
		t.Fatal("token accepted under another signer set")
	}
}

// ---------------------------------------------------------------------------
// Ordering
// ---------------------------------------------------------------------------

func TestVerify_OrderSensitive(t *testing.T) {
	f := newFixture(t, 3)
	order := []int{2, 0, 1}
	permPks := permute(f.pks, order)
	permApk, err := AggregateKeys(permPks)
	if err != nil {
		t.Fatalf("AggregateKeys: %v", err)
	}

	tok, _ := f.issue(t, NewSigner())
	if Verify(tok, permApk, &f.sku) {
		t.Fatal("token accepted under a reordered aggregate key")
	}

	// Partials in original order aggregated against the permuted list.
	res, err := Sign(f.sks, f.pks, &f.sku, &f.pku)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	mixed, err := AggregateToken(res.Partials, &res.HBar, &res.Omega, permPks)
	if err != nil {
		t.Fatalf("AggregateToken: %v", err)
	}
	if Verify(mixed, f.apk, &f.sku) {
		t.Fatal("token aggregated in the wrong order accepted")
	}

	// Permuting everything together is consistent.
	permSks := permute(f.sks, order)
	res, err = Sign(permSks, permPks, &f.sku, &f.pku)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	consistent, err := res.Aggregate(permPks)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if !Verify(consistent, permApk, &f.sku) {
		t.Fatal("consistently permuted token rejected")
	}
}

// ---------------------------------------------------------------------------
// Token aggregation and issuance
// ---------------------------------------------------------------------------

func TestAggregateToken_Errors(t *testing.T) {
	f := newFixture(t, 3)
	res, err := Sign(f.sks, f.pks, &f.sku, &f.pku)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := AggregateToken(res.Partials[:2], &res.HBar, &res.Omega, f.pks); !errors.Is(err, ErrPartialCountMismatch) {
		t.Fatalf("short partials: err = %v, want ErrPartialCountMismatch", err)
	}
	if _, err := AggregateToken(nil, &res.HBar, &res.Omega, nil); !errors.Is(err, ErrNoSigners) {
		t.Fatalf("empty: err = %v, want ErrNoSigners", err)
	}
	if _, err := AggregateToken(res.Partials, nil, &res.Omega, f.pks); !errors.Is(err, ErrNilKey) {
		t.Fatalf("nil hbar: err = %v, want ErrNilKey", err)
	}
}

func TestIssue(t *testing.T) {
	f := newFixture(t, 4)
	tok, err := Issue(f.sks, f.pks, f.apk, &f.sku, &f.pku)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !Verify(tok, f.apk, &f.sku) {
		t.Fatal("issued token rejected")
	}

	order := []int{3, 2, 1, 0}
	_, err = Issue(permute(f.sks, order), permute(f.pks, order), f.apk, &f.sku, &f.pku)
	if !errors.Is(err, ErrParticipantMismatch) {
		t.Fatalf("reordered Issue: err = %v, want ErrParticipantMismatch", err)
	}
	if _, err := Issue(f.sks, f.pks, nil, &f.sku, &f.pku); !errors.Is(err, ErrNilKey) {
		t.Fatalf("nil apk: err = %v, want ErrNilKey", err)
	}
}

// A partial from a signer whose G1 half does not match its secret passes the
// session but fails VerifyPartial and the aggregate check.
func TestVerifyPartial_LocatesBadSigner(t *testing.T) {
	f := newFixture(t, 3)
	rogue, _, err := GenerateSignerKeyPair()
	if err != nil {
		t.Fatalf("GenerateSignerKeyPair: %v", err)
	}
	bad := *f.pks[1]
	bad.G1 = rogue.G1
	pks := []*SignerPublicKey{f.pks[0], &bad, f.pks[2]}

	res, err := Sign(f.sks, pks, &f.sku, &f.pku)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	for i := range res.Partials {
		ok := VerifyPartial(&res.Partials[i], f.pks[i], &res.HBar, &res.Omega, &f.sku)
		if ok != (i != 1) {
			t.Fatalf("VerifyPartial(%d) = %v", i, ok)
		}
	}
	tok, err := res.Aggregate(f.pks)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if Verify(tok, f.apk, &f.sku) {
		t.Fatal("token with a bad partial accepted")
	}
}

func TestIssue_KeyValidation(t *testing.T) {
	f := newFixture(t, 3)
	rogue, _, err := GenerateSignerKeyPair()
	if err != nil {
		t.Fatalf("GenerateSignerKeyPair: %v", err)
	}
	split := *f.pks[2]
	split.G1 = rogue.G1
	pks := []*SignerPublicKey{f.pks[0], f.pks[1], &split}
	apk, err := AggregateKeys(pks)
	if err != nil {
		t.Fatalf("AggregateKeys: %v", err)
	}

	s := NewSigner(WithKeyValidation(true))
	if _, _, err := s.Issue(f.sks, pks, apk, &f.sku, &f.pku); !errors.Is(err, ErrInvalidPublicKey) {
		t.Fatalf("split key: err = %v, want ErrInvalidPublicKey", err)
	}

	empty := []*SignerPublicKey{{}}
	emptyApk, err := AggregateKeys(empty)
	if err != nil {
		t.Fatalf("AggregateKeys(identity key): %v", err)
	}
	if _, _, err := s.Issue(f.sks[:1], empty, emptyApk, &f.sku, &f.pku); !errors.Is(err, ErrInvalidPublicKey) {
		t.Fatalf("identity key: err = %v, want ErrInvalidPublicKey", err)
	}

	// Without the option the session runs and the bad partial surfaces at
	// verification.
	tok, _, err := NewSigner().Issue(f.sks, pks, apk, &f.sku, &f.pku)
	if err != nil {
		t.Fatalf("Issue without validation: %v", err)
	}
	if Verify(tok, apk, &f.sku) {
		t.Fatal("token from a split key verified")
	}

	tok, _, err = s.Issue(f.sks, f.pks, f.apk, &f.sku, &f.pku)
	if err != nil {
		t.Fatalf("Issue with valid keys: %v", err)
	}
	if !Verify(tok, f.apk, &f.sku) {
		t.Fatal("validated issuance rejected")
	}
}
